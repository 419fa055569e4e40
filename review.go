package recall

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Reviewer applies ratings to items under a fixed settings object,
// producing updated item copies and review logs. Construct one per
// effective settings value (containers with overrides get their own).
type Reviewer struct {
	settings Settings
	rng      *rand.Rand
}

// NewReviewer validates the settings and returns a Reviewer. Interval
// fuzzing, when enabled, draws from a time-seeded source; use
// NewReviewerWithRand for determinism.
func NewReviewer(settings Settings) (*Reviewer, error) {
	return NewReviewerWithRand(settings, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewReviewerWithRand is NewReviewer with an injected random source.
func NewReviewerWithRand(settings Settings, rng *rand.Rand) (*Reviewer, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &Reviewer{settings: settings, rng: rng}, nil
}

// Review processes a review of the item at the given time under the active
// scheduler. The input item is not mutated; a deep copy with the updated
// memory slot is returned together with a review log. An item whose slot
// for the active scheduler is missing (imported, or the deck's scheduler
// changed mid-use) is treated as new rather than rejected.
func (rv *Reviewer) Review(item Item, rating Rating, now time.Time) (Item, ReviewLog, error) {
	if !rating.IsValid() {
		return Item{}, ReviewLog{}, fmt.Errorf("%w: %d", ErrInvalidRating, int(rating))
	}

	it := item.clone()
	var state CardState
	var elapsed, scheduled float64

	switch rv.settings.Scheduler {
	case SchedulerFSRS, SchedulerFSRS6:
		state, elapsed, scheduled = rv.reviewFSRS(&it, rating, now)
	case SchedulerSM2:
		state, elapsed, scheduled = rv.reviewSM2(&it, rating, now)
	default:
		return Item{}, ReviewLog{}, fmt.Errorf("%w: %q", ErrInvalidScheduler, rv.settings.Scheduler)
	}

	log := ReviewLog{
		ItemID:        it.ID,
		Rating:        rating,
		Scheduler:     rv.settings.Scheduler,
		State:         state,
		ElapsedDays:   elapsed,
		ScheduledDays: scheduled,
		ReviewedAt:    now,
	}
	return it, log, nil
}

// Preview returns the would-be item state for each possible rating.
func (rv *Reviewer) Preview(item Item, now time.Time) map[Rating]Item {
	out := make(map[Rating]Item, 4)
	for _, r := range []Rating{Again, Hard, Good, Easy} {
		it, _, err := rv.Review(item, r, now)
		if err == nil {
			out[r] = it
		}
	}
	return out
}

// Retrievability returns the forecast probability of recall for the item
// at the given time under the active FSRS variant. It returns 0 for items
// never reviewed and for the SM-2 scheduler, which has no forgetting curve.
func (rv *Reviewer) Retrievability(item Item, now time.Time) float64 {
	sched := rv.settings.Scheduler
	if sched == SchedulerSM2 {
		return 0
	}
	mem := (&item).fsrsMemory(sched)
	if mem == nil || mem.LastReview == nil || mem.Stability <= 0 {
		return 0
	}
	a := newFSRSAlgo(sched, rv.settings.fsrsWeights(sched))
	elapsed := now.Sub(*mem.LastReview).Hours() / 24.0
	if elapsed < 0 {
		elapsed = 0
	}
	return a.forecast(elapsed, mem.Stability)
}

// reviewFSRS updates the FSRS-family slot in place and returns the
// resulting state plus elapsed/scheduled days for the log.
func (rv *Reviewer) reviewFSRS(it *Item, rating Rating, now time.Time) (CardState, float64, float64) {
	sched := rv.settings.Scheduler
	mem := it.fsrsMemory(sched).clone()
	if mem == nil {
		mem = newFSRSMemory(now)
	}

	var elapsed float64
	if mem.LastReview != nil {
		elapsed = now.Sub(*mem.LastReview).Hours() / 24.0
		if elapsed < 0 {
			elapsed = 0
		}
	}

	a := newFSRSAlgo(sched, rv.settings.fsrsWeights(sched))
	maxIvl := rv.settings.MaximumInterval

	switch {
	case mem.State == StateNew || mem.Stability == 0:
		mem.Stability = clampStability(a.initStability(rating), maxIvl)
		mem.Difficulty = a.initDifficulty(rating)
	case a.sameDay && elapsed < 1:
		// Same-day review: stability only, difficulty unchanged.
		mem.Stability = clampStability(a.shortTermStability(mem.Stability, rating), maxIvl)
	default:
		retr := a.retrievability(elapsed, mem.Stability)
		next := a.nextStability(mem.Difficulty, mem.Stability, retr, rating)
		mem.Difficulty = a.nextDifficulty(mem.Difficulty, rating)
		mem.Stability = clampStability(next, maxIvl)
	}

	days := func() int { return a.nextInterval(mem.Stability, rv.settings.DesiredRetention, maxIvl) }
	interval := rv.transition(fsrsSteps{mem}, rating, days)

	if rv.settings.FuzzIntervals && mem.State == StateReview {
		if d := int(interval.Hours() / 24.0); d > 0 {
			interval = time.Duration(fuzzInterval(d, maxIvl, rv.rng)) * 24 * time.Hour
		}
	}

	mem.Reps++
	mem.ElapsedDays = elapsed
	mem.ScheduledDays = interval.Hours() / 24.0
	mem.Due = now.Add(interval)
	mem.LastReview = &now
	it.setFSRSMemory(sched, mem)
	return mem.State, elapsed, mem.ScheduledDays
}

// reviewSM2 updates the SM-2 slot in place.
func (rv *Reviewer) reviewSM2(it *Item, rating Rating, now time.Time) (CardState, float64, float64) {
	a := newSM2Algo(rv.settings)
	mem := it.SM2.clone()
	if mem == nil {
		mem = newSM2Memory(now, a.startingEase)
	}
	if mem.EasinessFactor < minEaseFactor {
		// Externally constructed states may carry no ease at all.
		mem.EasinessFactor = a.startingEase
	}
	elapsed := rv.sm2Elapsed(mem, now)

	quality := rating.Quality()
	mem.EasinessFactor = a.nextEase(mem.EasinessFactor, quality)

	days := func() int {
		d := a.nextInterval(mem.Repetitions, mem.Interval, mem.EasinessFactor, rating)
		mem.Interval = d
		mem.Repetitions++
		return d
	}

	var interval time.Duration
	if mem.State == StateReview && rating == Again {
		// Lapse: reset repetitions, shrink the interval, relearn.
		mem.Lapses++
		mem.Repetitions = 0
		mem.Interval = a.lapseInterval(mem.Interval)
		steps := rv.settings.learningStepsFor(StateRelearning)
		if len(steps) > 0 {
			mem.State = StateRelearning
			mem.LearningStep = 0
			interval = steps[0]
		} else {
			interval = time.Duration(mem.Interval) * 24 * time.Hour
		}
	} else {
		interval = rv.transition(sm2Steps{mem}, rating, days)
	}

	mem.Due = now.Add(interval)
	it.SM2 = mem
	return mem.State, elapsed, interval.Hours() / 24.0
}

// sm2Elapsed estimates the days since the previous review. SM-2 state keeps
// no review timestamp, so the previous review instant is reconstructed from
// the prior due date minus the interval (or learning step) that produced it.
func (rv *Reviewer) sm2Elapsed(m *SM2Memory, now time.Time) float64 {
	var span time.Duration
	switch m.State {
	case StateReview:
		span = time.Duration(m.Interval) * 24 * time.Hour
	case StateLearning, StateRelearning:
		steps := rv.settings.learningStepsFor(m.State)
		if len(steps) == 0 {
			return 0
		}
		span = steps[min(m.LearningStep, len(steps)-1)]
	default:
		return 0
	}
	elapsed := now.Sub(m.Due.Add(-span)).Hours() / 24.0
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// stepped abstracts the learning-step bookkeeping shared by the FSRS and
// SM-2 memory shapes so one transition routine serves both.
type stepped interface {
	state() CardState
	setState(CardState)
	step() int
	setStep(int)
	lapse()
}

type fsrsSteps struct{ m *FSRSMemory }

func (f fsrsSteps) state() CardState     { return f.m.State }
func (f fsrsSteps) setState(s CardState) { f.m.State = s }
func (f fsrsSteps) step() int            { return f.m.LearningStep }
func (f fsrsSteps) setStep(n int)        { f.m.LearningStep = n }
func (f fsrsSteps) lapse()               { f.m.Lapses++ }

type sm2Steps struct{ m *SM2Memory }

func (s sm2Steps) state() CardState      { return s.m.State }
func (s sm2Steps) setState(st CardState) { s.m.State = st }
func (s sm2Steps) step() int             { return s.m.LearningStep }
func (s sm2Steps) setStep(n int)         { s.m.LearningStep = n }
func (s sm2Steps) lapse()                { s.m.Lapses++ }

// transition advances the learning state machine and returns the interval
// until the next review. graduateDays computes (and commits) the day
// interval used when the item enters or stays in the Review state.
func (rv *Reviewer) transition(m stepped, rating Rating, graduateDays func() int) time.Duration {
	if m.state() == StateNew {
		m.setState(StateLearning)
		m.setStep(0)
	}

	switch m.state() {
	case StateLearning, StateRelearning:
		return rv.transitionLearning(m, rating, graduateDays)
	default:
		return rv.transitionReview(m, rating, graduateDays)
	}
}

// transitionLearning handles Learning and Relearning items.
func (rv *Reviewer) transitionLearning(m stepped, rating Rating, graduateDays func() int) time.Duration {
	steps := rv.settings.learningStepsFor(m.state())
	step := m.step()

	// No steps configured, or resumed past the last step: graduate unless
	// the item was forgotten outright.
	if len(steps) == 0 || (step >= len(steps) && rating != Again) {
		return rv.graduate(m, graduateDays)
	}
	if step >= len(steps) {
		step = len(steps) - 1
	}

	switch rating {
	case Again:
		m.setStep(0)
		return steps[0]

	case Hard:
		if step == 0 && len(steps) == 1 {
			return time.Duration(float64(steps[0]) * 1.5)
		}
		if step == 0 && len(steps) >= 2 {
			return (steps[0] + steps[1]) / 2
		}
		return steps[step]

	case Good:
		next := step + 1
		if next >= len(steps) {
			return rv.graduate(m, graduateDays)
		}
		m.setStep(next)
		return steps[next]

	default: // Easy skips the remaining steps.
		return rv.graduate(m, graduateDays)
	}
}

// transitionReview handles items already in the long-term review cycle.
// SM-2 lapses are special-cased by the caller; here Again means relearn
// under FSRS.
func (rv *Reviewer) transitionReview(m stepped, rating Rating, graduateDays func() int) time.Duration {
	if rating == Again {
		m.lapse()
		steps := rv.settings.learningStepsFor(StateRelearning)
		if len(steps) > 0 {
			m.setState(StateRelearning)
			m.setStep(0)
			return steps[0]
		}
		// No relearning steps: stay in Review on the short post-lapse interval.
	}
	return time.Duration(graduateDays()) * 24 * time.Hour
}

// graduate moves the item into the Review state.
func (rv *Reviewer) graduate(m stepped, graduateDays func() int) time.Duration {
	m.setState(StateReview)
	m.setStep(0)
	return time.Duration(graduateDays()) * 24 * time.Hour
}

// Interval fuzzing: the fuzz delta grows through three interval bands so
// long intervals spread more than short ones. Intervals under 2.5 days are
// never fuzzed.
var fuzzBands = []struct {
	start, end, factor float64
}{
	{2.5, 7.0, 0.15},
	{7.0, 20.0, 0.10},
	{20.0, math.Inf(1), 0.05},
}

func fuzzDelta(interval float64) float64 {
	delta := 1.0
	for _, b := range fuzzBands {
		delta += b.factor * math.Max(math.Min(interval, b.end)-b.start, 0)
	}
	return delta
}

// fuzzInterval randomizes the interval within its fuzz window, bounded by
// [2, maximumInterval].
func fuzzInterval(days, maximumInterval int, rng *rand.Rand) int {
	if float64(days) < 2.5 {
		return days
	}
	ivl := float64(days)
	delta := fuzzDelta(ivl)
	lo := max(2, int(math.Round(ivl-delta)))
	hi := min(int(math.Round(ivl+delta)), maximumInterval)
	lo = min(lo, hi)
	fuzzed := lo + int(rng.Float64()*float64(hi-lo+1))
	return min(fuzzed, maximumInterval)
}
