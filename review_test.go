package recall

import (
	"math/rand"
	"testing"
	"time"
)

func mustReviewer(t *testing.T, s Settings) *Reviewer {
	t.Helper()
	rv, err := NewReviewerWithRand(s, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("NewReviewer: %v", err)
	}
	return rv
}

func TestReviewInvalidRating(t *testing.T) {
	rv := mustReviewer(t, DefaultSettings())
	if _, _, err := rv.Review(NewFlashcard(""), Rating(9), time.Now()); err == nil {
		t.Fatal("expected error for invalid rating")
	}
}

func TestReviewDoesNotMutateInput(t *testing.T) {
	rv := mustReviewer(t, DefaultSettings())
	card := NewFlashcard("c1")
	now := time.Now()

	updated, _, err := rv.Review(card, Good, now)
	if err != nil {
		t.Fatal(err)
	}
	if card.FSRS6 != nil {
		t.Error("input card gained a memory slot")
	}
	if updated.FSRS6 == nil {
		t.Fatal("updated card missing FSRS6 slot")
	}
}

func TestReviewWritesOnlyActiveSlot(t *testing.T) {
	s := DefaultSettings()
	s.Scheduler = SchedulerSM2
	rv := mustReviewer(t, s)

	card, _, err := rv.Review(NewFlashcard("c1"), Good, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if card.SM2 == nil {
		t.Fatal("SM2 slot not written")
	}
	if card.FSRS != nil || card.FSRS6 != nil {
		t.Error("inactive FSRS slots were written")
	}
}

// --- learning step machine ---

func TestLearningStepsGood(t *testing.T) {
	rv := mustReviewer(t, DefaultSettings()) // steps "1 10"
	now := time.Now()

	card, _, _ := rv.Review(NewFlashcard("c1"), Good, now)
	m := card.FSRS6
	if m.State != StateLearning || m.LearningStep != 1 {
		t.Fatalf("after first Good: state=%v step=%d, want Learning step 1", m.State, m.LearningStep)
	}
	if want := now.Add(10 * time.Minute); !m.Due.Equal(want) {
		t.Errorf("due = %v, want %v", m.Due, want)
	}

	card, _, _ = rv.Review(card, Good, now.Add(10*time.Minute))
	if card.FSRS6.State != StateReview {
		t.Errorf("after second Good: state=%v, want Review", card.FSRS6.State)
	}
}

func TestLearningStepsAgainResets(t *testing.T) {
	rv := mustReviewer(t, DefaultSettings())
	now := time.Now()

	card, _, _ := rv.Review(NewFlashcard("c1"), Good, now)
	card, _, _ = rv.Review(card, Again, now.Add(10*time.Minute))
	m := card.FSRS6
	if m.State != StateLearning || m.LearningStep != 0 {
		t.Errorf("state=%v step=%d, want Learning step 0", m.State, m.LearningStep)
	}
}

func TestLearningHardRepeatsHalfway(t *testing.T) {
	rv := mustReviewer(t, DefaultSettings())
	now := time.Now()

	card, _, _ := rv.Review(NewFlashcard("c1"), Hard, now)
	m := card.FSRS6
	// Step 0 with two steps: (1m + 10m) / 2.
	if want := now.Add(5*time.Minute + 30*time.Second); !m.Due.Equal(want) {
		t.Errorf("due = %v, want %v", m.Due, want)
	}
}

func TestEasySkipsSteps(t *testing.T) {
	rv := mustReviewer(t, DefaultSettings())
	card, _, _ := rv.Review(NewFlashcard("c1"), Easy, time.Now())
	if card.FSRS6.State != StateReview {
		t.Errorf("state = %v, want Review", card.FSRS6.State)
	}
}

func TestNoStepsGraduatesImmediately(t *testing.T) {
	s := DefaultSettings()
	s.Scheduler = SchedulerFSRS
	s.LearningSteps = ""
	rv := mustReviewer(t, s)

	card, rlog, _ := rv.Review(NewFlashcard("c1"), Good, time.Now())
	if card.FSRS.State != StateReview {
		t.Fatalf("state = %v, want Review", card.FSRS.State)
	}
	// New FSRS-4.5 card rated Good: stability 2.4 → a 1-day interval.
	assertFloat(t, "scheduled days", rlog.ScheduledDays, 1)
}

func TestReviewLapseRelearns(t *testing.T) {
	rv := mustReviewer(t, DefaultSettings())
	now := time.Now()

	card := NewFlashcard("c1")
	card.FSRS6 = &FSRSMemory{
		Due: now, Stability: 20, Difficulty: 5,
		State: StateReview, LastReview: timePtr(now.Add(-20 * 24 * time.Hour)),
	}

	card, _, _ = rv.Review(card, Again, now)
	m := card.FSRS6
	if m.State != StateRelearning {
		t.Errorf("state = %v, want Relearning", m.State)
	}
	if m.Lapses != 1 {
		t.Errorf("lapses = %d, want 1", m.Lapses)
	}
	// Relearning steps "10": due in 10 minutes.
	if want := now.Add(10 * time.Minute); !m.Due.Equal(want) {
		t.Errorf("due = %v, want %v", m.Due, want)
	}
}

// --- due monotonicity ---

func TestDueNeverBeforeNow(t *testing.T) {
	for _, sched := range []Scheduler{SchedulerFSRS, SchedulerFSRS6, SchedulerSM2} {
		s := DefaultSettings()
		s.Scheduler = sched
		rv := mustReviewer(t, s)
		now := time.Now()
		card := NewFlashcard("c1")
		for i := 0; i < 20; i++ {
			r := []Rating{Again, Hard, Good, Easy}[i%4]
			var err error
			card, _, err = rv.Review(card, r, now)
			if err != nil {
				t.Fatal(err)
			}
			due, ok := itemDue(&card, sched)
			if !ok || due.Before(now) {
				t.Fatalf("%s: due %v before now %v", sched, due, now)
			}
			now = due
		}
	}
}

// --- mixed-scheduler tolerance ---

// An item carrying only an SM-2 state is treated as new when a deck
// switches to FSRS, not rejected.
func TestForeignStateTreatedAsNew(t *testing.T) {
	rv := mustReviewer(t, DefaultSettings()) // fsrs6
	now := time.Now()

	card := NewFlashcard("c1")
	card.SM2 = &SM2Memory{Due: now, EasinessFactor: 2.1, Interval: 30, Repetitions: 8, State: StateReview}

	updated, rlog, err := rv.Review(card, Good, now)
	if err != nil {
		t.Fatal(err)
	}
	if updated.FSRS6 == nil || rlog.State != StateLearning {
		t.Fatalf("foreign-state item not treated as new: %+v", rlog)
	}
	// The SM-2 history is untouched.
	if updated.SM2.Interval != 30 {
		t.Errorf("SM2 slot modified: %+v", updated.SM2)
	}
}

// An imported SM-2 state resumes where the other application left off.
func TestResumeImportedSM2State(t *testing.T) {
	s := DefaultSettings()
	s.Scheduler = SchedulerSM2
	rv := mustReviewer(t, s)
	now := time.Now()

	card := NewFlashcard("c1")
	card.SM2 = &SM2Memory{Due: now, EasinessFactor: 2.0, Interval: 10, Repetitions: 4, State: StateReview}

	card, _, err := rv.Review(card, Good, now)
	if err != nil {
		t.Fatal(err)
	}
	m := card.SM2
	if m.Repetitions != 5 {
		t.Errorf("repetitions = %d, want 5", m.Repetitions)
	}
	if m.Interval != 20 { // round(10 * 2.0)
		t.Errorf("interval = %d, want 20", m.Interval)
	}
}

// The SM-2 shape records no review timestamp, so the log's elapsed days are
// reconstructed from the prior due date and interval.
func TestSM2LogCarriesElapsedDays(t *testing.T) {
	s := DefaultSettings()
	s.Scheduler = SchedulerSM2
	rv := mustReviewer(t, s)
	now := time.Now()

	card := NewFlashcard("c1")
	card.SM2 = &SM2Memory{Due: now, EasinessFactor: 2.0, Interval: 10, Repetitions: 4, State: StateReview}

	_, rlog, err := rv.Review(card, Good, now)
	if err != nil {
		t.Fatal(err)
	}
	// Reviewed exactly on time: the elapsed days equal the interval.
	assertFloat(t, "elapsed days on time", rlog.ElapsedDays, 10)

	// Two days overdue.
	card.SM2.Due = now.Add(-2 * 24 * time.Hour)
	_, rlog, err = rv.Review(card, Good, now)
	if err != nil {
		t.Fatal(err)
	}
	assertFloat(t, "elapsed days overdue", rlog.ElapsedDays, 12)

	// A brand-new card has nothing to elapse from.
	_, rlog, err = rv.Review(NewFlashcard("c2"), Good, now)
	if err != nil {
		t.Fatal(err)
	}
	assertFloat(t, "elapsed days new", rlog.ElapsedDays, 0)
}

// --- same-day handling (FSRS-6 only) ---

func TestSameDayReviewKeepsDifficulty(t *testing.T) {
	rv := mustReviewer(t, DefaultSettings())
	now := time.Now()

	card := NewFlashcard("c1")
	card.FSRS6 = &FSRSMemory{
		Due: now, Stability: 3, Difficulty: 6,
		State: StateReview, LastReview: timePtr(now.Add(-2 * time.Hour)),
	}

	card, _, _ = rv.Review(card, Good, now)
	assertFloat(t, "difficulty", card.FSRS6.Difficulty, 6)
}

func TestFSRS45HasNoSameDayBranch(t *testing.T) {
	s := DefaultSettings()
	s.Scheduler = SchedulerFSRS
	rv := mustReviewer(t, s)
	now := time.Now()

	card := NewFlashcard("c1")
	card.FSRS = &FSRSMemory{
		Due: now, Stability: 3, Difficulty: 6,
		State: StateReview, LastReview: timePtr(now.Add(-2 * time.Hour)),
	}

	card, _, _ = rv.Review(card, Easy, now)
	// Cross-day formula applies even for short gaps: difficulty moves.
	if card.FSRS.Difficulty == 6 {
		t.Error("difficulty unchanged; FSRS-4.5 should apply the full update")
	}
}

// --- preview and retrievability ---

func TestPreviewCoversAllRatings(t *testing.T) {
	rv := mustReviewer(t, DefaultSettings())
	out := rv.Preview(NewFlashcard("c1"), time.Now())
	if len(out) != 4 {
		t.Fatalf("preview returned %d entries, want 4", len(out))
	}
	if out[Easy].FSRS6.Stability <= out[Again].FSRS6.Stability {
		t.Error("Easy preview should have higher stability than Again")
	}
}

func TestRetrievabilityNeverReviewed(t *testing.T) {
	rv := mustReviewer(t, DefaultSettings())
	if got := rv.Retrievability(NewFlashcard("c1"), time.Now()); got != 0 {
		t.Errorf("retrievability = %v, want 0", got)
	}
}

// --- fuzzing ---

func TestFuzzDeltaBands(t *testing.T) {
	// 3 days: only the first band. 1.0 + 0.15*(3-2.5) = 1.075.
	assertFloat(t, "fuzzDelta(3)", fuzzDelta(3.0), 1.075)
	// 10 days: first band full, second partial. 1.0 + 0.675 + 0.3.
	assertFloat(t, "fuzzDelta(10)", fuzzDelta(10.0), 1.975)
	// 50 days: all three. 1.0 + 0.675 + 1.3 + 1.5.
	assertFloat(t, "fuzzDelta(50)", fuzzDelta(50.0), 4.475)
}

func TestFuzzIntervalSmallUnchanged(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	if got := fuzzInterval(1, 36500, rng); got != 1 {
		t.Errorf("fuzzInterval(1) = %d, want 1", got)
	}
	if got := fuzzInterval(2, 36500, rng); got != 2 {
		t.Errorf("fuzzInterval(2) = %d, want 2", got)
	}
}

func TestFuzzIntervalBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		got := fuzzInterval(10, 12, rng)
		if got < 2 || got > 12 {
			t.Fatalf("fuzzInterval(10, 12) = %d out of bounds", got)
		}
	}
}

func timePtr(t time.Time) *time.Time { return &t }
