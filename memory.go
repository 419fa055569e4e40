package recall

import "time"

// FSRSMemory is the per-item memory state maintained by the FSRS-4.5 and
// FSRS-6 schedulers. An item keeps one slot per scheduler family; only the
// slot matching the container's active scheduler is read or written on a
// review.
type FSRSMemory struct {
	Due           time.Time  `json:"due"`
	Stability     float64    `json:"stability"`
	Difficulty    float64    `json:"difficulty"`
	ElapsedDays   float64    `json:"elapsed_days"`
	ScheduledDays float64    `json:"scheduled_days"`
	Reps          int        `json:"reps"`
	Lapses        int        `json:"lapses"`
	State         CardState  `json:"state"`
	LastReview    *time.Time `json:"last_review"` // nil before first review.
	LearningStep  int        `json:"learning_steps"`
}

// newFSRSMemory returns a fresh state for a never-reviewed item,
// due immediately.
func newFSRSMemory(now time.Time) *FSRSMemory {
	return &FSRSMemory{Due: now, State: StateNew}
}

// clone returns a deep copy. Pointer fields are copied by value.
func (m *FSRSMemory) clone() *FSRSMemory {
	if m == nil {
		return nil
	}
	out := *m
	if m.LastReview != nil {
		v := *m.LastReview
		out.LastReview = &v
	}
	return &out
}

// SM2Memory is the per-item memory state maintained by the SM-2 scheduler.
// The shape matches what the Anki import path produces, so externally
// constructed states resume cleanly.
type SM2Memory struct {
	Due            time.Time `json:"due"`
	EasinessFactor float64   `json:"easinessFactor"` // never below 1.3.
	Interval       int       `json:"interval"`       // days.
	Repetitions    int       `json:"repetitions"`
	Lapses         int       `json:"lapses"`
	State          CardState `json:"state"`
	LearningStep   int       `json:"learning_step"`
}

// newSM2Memory returns a fresh state for a never-reviewed item.
func newSM2Memory(now time.Time, startingEase float64) *SM2Memory {
	return &SM2Memory{Due: now, EasinessFactor: startingEase, State: StateNew}
}

func (m *SM2Memory) clone() *SM2Memory {
	if m == nil {
		return nil
	}
	out := *m
	return &out
}
