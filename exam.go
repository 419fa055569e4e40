package recall

import (
	"math"
	"time"
)

// TagMatch selects how an exam's tag filter combines multiple tags.
type TagMatch string

const (
	TagMatchAny TagMatch = "any" // At least one tag present (default).
	TagMatchAll TagMatch = "all" // Every tag present.
)

// Exam is an upcoming deadline that reprioritizes which new items are
// introduced before its date. It never alters memory-state computation:
// exam-claimed items are ordinary new items that jump the queue.
type Exam struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Date time.Time `json:"date"`

	// Scope: items inside these containers (subtrees included), optionally
	// narrowed by tags and an FSRS difficulty range. Ids not present in the
	// studied containers are ignored.
	ContainerIDs []string `json:"containerIds"`
	Tags         []string `json:"tags,omitempty"`
	TagMatch     TagMatch `json:"tagMatch,omitempty"`

	// Optional difficulty window. Items without a difficulty (new items,
	// foreign-scheduler states) always pass: the filter cannot judge them.
	MinDifficulty *float64 `json:"minDifficulty,omitempty"`
	MaxDifficulty *float64 `json:"maxDifficulty,omitempty"`
}

// daysLeft returns the whole days remaining until the exam, rounded up.
// Zero or negative means the exam date has arrived: catch-up mode.
func (e Exam) daysLeft(now time.Time) int {
	return int(math.Ceil(e.Date.Sub(now).Hours() / 24.0))
}

// dailyQuota is today's new-item admission for the exam: the remaining new
// pool spread evenly over the remaining days, or everything once the
// deadline has arrived.
func (e Exam) dailyQuota(poolSize int, now time.Time) int {
	days := e.daysLeft(now)
	if days <= 0 {
		return poolSize
	}
	return int(math.Ceil(float64(poolSize) / float64(days)))
}

// matches reports whether the item passes the exam's tag and difficulty
// filters. Container membership is the caller's concern.
func (e Exam) matches(it *Item, sched Scheduler) bool {
	return e.matchesTags(it) && e.matchesDifficulty(it, sched)
}

func (e Exam) matchesTags(it *Item) bool {
	if len(e.Tags) == 0 {
		return true
	}
	if e.TagMatch == TagMatchAll {
		for _, tag := range e.Tags {
			if !it.hasTag(tag) {
				return false
			}
		}
		return true
	}
	for _, tag := range e.Tags {
		if it.hasTag(tag) {
			return true
		}
	}
	return false
}

func (e Exam) matchesDifficulty(it *Item, sched Scheduler) bool {
	if e.MinDifficulty == nil && e.MaxDifficulty == nil {
		return true
	}
	m := it.fsrsMemory(sched)
	if m == nil || m.State == StateNew {
		return true
	}
	if e.MinDifficulty != nil && m.Difficulty < *e.MinDifficulty {
		return false
	}
	if e.MaxDifficulty != nil && m.Difficulty > *e.MaxDifficulty {
		return false
	}
	return true
}
