package recall

import (
	"math/rand"
	"sort"
	"time"
)

// QueueRequest carries everything the session-queue builder needs. The
// builder never mutates the request: the introduced-today set is read as an
// immutable snapshot and queue entries are deep copies of tree items.
type QueueRequest struct {
	// Containers is the sub-forest selected for study.
	Containers []*Container

	// Forest is the full container forest, required for settings
	// inheritance even when only part of it is studied.
	Forest Forest

	// Settings is the global configuration; containers may override it.
	Settings Settings

	// IntroducedToday holds ids of items whose first review happened today,
	// so rebuilding the queue mid-session does not re-introduce them.
	// Day-rollover of this set is the caller's responsibility.
	IntroducedToday map[string]bool

	// Exams, when present, reprioritize new items ahead of their deadlines.
	Exams []Exam

	// Now is the queue-build instant. Zero means time.Now().
	Now time.Time

	// Rand drives the shuffle policies. Nil means a time-seeded source;
	// inject a seeded one for deterministic output.
	Rand *rand.Rand
}

// SessionQueue is the ordered list of items to present in a study session,
// plus the exam attribution for items that were admitted by an exam's
// daily quota.
type SessionQueue struct {
	Items []Item

	// ExamSources maps item id to the id of the exam that claimed it.
	// Claims are exclusive: the earliest-deadline exam wins.
	ExamSources map[string]string
}

// BuildQueue assembles the daily study queue: an exam-priority pass over
// upcoming exams, a recursive budget-constrained gather over the selected
// containers, then per-class ordering and combination per the settings'
// policies. An empty selection yields an empty queue.
func BuildQueue(req QueueRequest) (SessionQueue, error) {
	if err := req.Settings.Validate(); err != nil {
		return SessionQueue{}, err
	}
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	rng := req.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	b := &queueBuilder{
		forest:      req.Forest,
		studied:     req.Containers,
		global:      req.Settings,
		introduced:  req.IntroducedToday,
		now:         now,
		rng:         rng,
		seen:        make(map[string]bool),
		examSources: make(map[string]string),
	}
	b.remainingNew[KindFlashcard] = clampBudget(req.Settings.NewCardsPerDay)
	b.remainingNew[KindMCQ] = clampBudget(req.Settings.NewMCQsPerDay)
	b.remainingReview[KindFlashcard] = clampBudget(req.Settings.MaxReviewsPerDay)
	b.remainingReview[KindMCQ] = clampBudget(req.Settings.MaxMCQReviewsPerDay)

	b.examPass(req.Exams)
	for _, c := range req.Containers {
		b.gather(c)
	}

	return SessionQueue{Items: b.assemble(), ExamSources: b.examSources}, nil
}

// queueEntry pairs a gathered item with the due timestamp recorded under
// the effective scheduler of its container, so ordering survives
// mixed-scheduler forests.
type queueEntry struct {
	item Item
	due  time.Time
}

type queueBuilder struct {
	forest     Forest
	studied    []*Container
	global     Settings
	introduced map[string]bool
	now        time.Time
	rng        *rand.Rand

	remainingNew    [2]int // indexed by ItemKind.
	remainingReview [2]int

	seen        map[string]bool
	examSources map[string]string

	examNew  []Item
	learning []queueEntry
	reviews  []queueEntry
	news     []Item
}

func clampBudget(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// examPass claims new items for upcoming exams, earliest deadline first.
// Each claim consumes the day's global new budget, so the hierarchical
// gather sees only what is left.
func (b *queueBuilder) examPass(exams []Exam) {
	if len(exams) == 0 {
		return
	}
	ordered := make([]Exam, len(exams))
	copy(ordered, exams)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	for _, exam := range ordered {
		pool := b.examPool(exam)
		if len(pool) == 0 {
			continue
		}
		quota := exam.dailyQuota(len(pool), b.now)
		for _, e := range pool {
			if b.introduced[e.item.ID] {
				// Already introduced today: it consumed quota this morning.
				quota--
			}
		}
		for _, e := range pool {
			if quota <= 0 {
				break
			}
			id := e.item.ID
			if b.introduced[id] || b.seen[id] {
				continue
			}
			if b.remainingNew[e.item.Kind] <= 0 {
				continue
			}
			b.remainingNew[e.item.Kind]--
			b.seen[id] = true
			b.examSources[id] = exam.ID
			b.examNew = append(b.examNew, e.item.clone())
			quota--
		}
	}
}

// examPool resolves the exam's scope against the studied sub-forest in
// encounter order: every currently-new, unsuspended, unclaimed item in the
// exam's containers (subtrees included) that passes the tag and difficulty
// filters. Unknown container ids are skipped.
func (b *queueBuilder) examPool(exam Exam) []queueEntry {
	var pool []queueEntry
	studied := Forest(b.studied)
	for _, cid := range exam.ContainerIDs {
		c := studied.Find(cid)
		if c == nil {
			continue
		}
		b.walkExamScope(exam, c, &pool)
	}
	return pool
}

func (b *queueBuilder) walkExamScope(exam Exam, c *Container, pool *[]queueEntry) {
	eff := EffectiveSettings(b.forest, c.ID, b.global)
	for i := range c.Items {
		it := &c.Items[i]
		if it.Suspended || b.examSources[it.ID] != "" {
			continue
		}
		if it.stateFor(eff.Scheduler) != StateNew {
			continue
		}
		if !exam.matches(it, eff.Scheduler) {
			continue
		}
		*pool = append(*pool, queueEntry{item: *it})
	}
	for _, child := range c.Children {
		b.walkExamScope(exam, child, pool)
	}
}

// gather walks one studied container: intraday learning items are collected
// unconditionally, reviews and interday learning up to the review budget,
// new items up to the new budget (gated on the review budget unless the
// ignore flag is set), then children with whatever budget remains.
func (b *queueBuilder) gather(c *Container) {
	if c == nil {
		return
	}
	eff := EffectiveSettings(b.forest, c.ID, b.global)

	// Local caps: this container may take at most min(remaining, local).
	var localReview, localNew [2]int
	for _, k := range []ItemKind{KindFlashcard, KindMCQ} {
		localReview[k] = min(b.remainingReview[k], clampBudget(eff.reviewLimit(k)))
		localNew[k] = min(b.remainingNew[k], clampBudget(eff.newLimit(k)))
	}

	var localNewItems []queueEntry
	for i := range c.Items {
		it := &c.Items[i]
		if it.Suspended || b.seen[it.ID] {
			continue
		}
		switch it.stateFor(eff.Scheduler) {
		case StateNew:
			if !b.introduced[it.ID] {
				localNewItems = append(localNewItems, queueEntry{item: *it})
			}

		case StateLearning, StateRelearning:
			due, ok := itemDue(it, eff.Scheduler)
			if !ok || due.After(b.now) {
				continue
			}
			if intradayLearning(it, eff) {
				// Intraday steps never consume a budget; their timing is
				// too fine-grained to defer.
				b.seen[it.ID] = true
				b.learning = append(b.learning, queueEntry{item: it.clone(), due: due})
			} else if localReview[it.Kind] > 0 {
				localReview[it.Kind]--
				b.remainingReview[it.Kind]--
				b.seen[it.ID] = true
				b.reviews = append(b.reviews, queueEntry{item: it.clone(), due: due})
			}

		case StateReview:
			due, ok := itemDue(it, eff.Scheduler)
			if !ok || due.After(b.now) {
				continue
			}
			if localReview[it.Kind] > 0 {
				localReview[it.Kind]--
				b.remainingReview[it.Kind]--
				b.seen[it.ID] = true
				b.reviews = append(b.reviews, queueEntry{item: it.clone(), due: due})
			}
		}
	}

	// New items come last within the container so reviews claim the shared
	// budget first.
	if eff.NewCardGatherOrder == GatherRandom {
		b.rng.Shuffle(len(localNewItems), func(i, j int) {
			localNewItems[i], localNewItems[j] = localNewItems[j], localNewItems[i]
		})
	}
	for _, e := range localNewItems {
		k := e.item.Kind
		if !eff.NewCardsIgnoreReviewLimit && b.remainingReview[k] <= 0 {
			continue
		}
		if localNew[k] <= 0 || b.remainingNew[k] <= 0 {
			continue
		}
		localNew[k]--
		b.remainingNew[k]--
		b.seen[e.item.ID] = true
		b.news = append(b.news, e.item.clone())
	}

	for _, child := range c.Children {
		if b.exhausted(eff) {
			break
		}
		b.gather(child)
	}
}

// exhausted reports whether both budgets are spent for both kinds, which
// ends the descent early unless new items ignore the review limit.
func (b *queueBuilder) exhausted(eff Settings) bool {
	if eff.NewCardsIgnoreReviewLimit {
		return false
	}
	for _, k := range []ItemKind{KindFlashcard, KindMCQ} {
		if b.remainingNew[k] > 0 || b.remainingReview[k] > 0 {
			return false
		}
	}
	return true
}

// intradayLearning reports whether the item's current learning step is
// shorter than a day. Such items never consume the review budget — their
// timing is too fine-grained to defer. Items without step information
// count as intraday.
func intradayLearning(it *Item, eff Settings) bool {
	switch eff.Scheduler {
	case SchedulerSM2:
		m := it.SM2
		if m == nil {
			return true
		}
		steps := eff.learningStepsFor(m.State)
		if len(steps) == 0 {
			return false
		}
		idx := min(m.LearningStep, len(steps)-1)
		return steps[idx] < 24*time.Hour
	default:
		m := it.fsrsMemory(eff.Scheduler)
		if m == nil {
			return true
		}
		return m.ScheduledDays < 1
	}
}

// assemble orders each class and concatenates them: exam-priority new items
// first (already in deadline order), then learning items by due time, then
// new and review items combined per the newReviewOrder policy.
func (b *queueBuilder) assemble() []Item {
	sort.SliceStable(b.learning, func(i, j int) bool {
		return b.learning[i].due.Before(b.learning[j].due)
	})

	switch b.global.ReviewSortOrder {
	case ReviewSortDueDateRandom:
		b.rng.Shuffle(len(b.reviews), func(i, j int) {
			b.reviews[i], b.reviews[j] = b.reviews[j], b.reviews[i]
		})
	default:
		sort.SliceStable(b.reviews, func(i, j int) bool {
			return b.reviews[i].due.Before(b.reviews[j].due)
		})
	}

	switch b.global.NewCardSortOrder {
	case NewSortDescending:
		sort.SliceStable(b.news, func(i, j int) bool {
			return b.news[i].NewOrder > b.news[j].NewOrder
		})
	case NewSortRandom:
		b.rng.Shuffle(len(b.news), func(i, j int) {
			b.news[i], b.news[j] = b.news[j], b.news[i]
		})
	default:
		sort.SliceStable(b.news, func(i, j int) bool {
			return b.news[i].NewOrder < b.news[j].NewOrder
		})
	}

	queue := make([]Item, 0, len(b.examNew)+len(b.learning)+len(b.reviews)+len(b.news))
	queue = append(queue, b.examNew...)
	for _, e := range b.learning {
		queue = append(queue, e.item)
	}

	reviewItems := make([]Item, 0, len(b.reviews))
	for _, e := range b.reviews {
		reviewItems = append(reviewItems, e.item)
	}

	switch b.global.NewReviewOrder {
	case NewReviewBefore:
		queue = append(queue, b.news...)
		queue = append(queue, reviewItems...)
	case NewReviewAfter:
		queue = append(queue, reviewItems...)
		queue = append(queue, b.news...)
	default: // mix
		combined := make([]Item, 0, len(b.news)+len(reviewItems))
		combined = append(combined, b.news...)
		combined = append(combined, reviewItems...)
		b.rng.Shuffle(len(combined), func(i, j int) {
			combined[i], combined[j] = combined[j], combined[i]
		})
		queue = append(queue, combined...)
	}
	return queue
}
