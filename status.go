package recall

import (
	"encoding"
	"fmt"
)

// Status is the coarse display status derived from an item's memory state.
// It is a pure projection: nothing stores it, and classifying the same
// state twice always yields the same answer.
type Status int

const (
	StatusNew Status = iota + 1
	StatusLearning
	StatusRelearning
	StatusYoung  // In Review, below the maturity threshold.
	StatusMature // In Review, at or above the maturity threshold.
	StatusSuspended
)

var statusNames = [...]string{
	StatusNew:        "New",
	StatusLearning:   "Learning",
	StatusRelearning: "Relearning",
	StatusYoung:      "Young",
	StatusMature:     "Mature",
	StatusSuspended:  "Suspended",
}

// Compile-time interface checks.
var (
	_ fmt.Stringer           = Status(0)
	_ encoding.TextMarshaler = Status(0)
)

// String returns the status name. For invalid values it returns "Status(n)".
func (s Status) String() string {
	if s >= StatusNew && s <= StatusSuspended {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if s < StatusNew || s > StatusSuspended {
		return nil, fmt.Errorf("recall: invalid status: %d", int(s))
	}
	return []byte(statusNames[s]), nil
}

// ClassifyItem derives the item's status under the given settings. The
// suspended flag short-circuits everything else. Review items split into
// Young and Mature by comparing stability (FSRS) or interval (SM-2), in
// days, against the settings' maturity threshold.
func ClassifyItem(item Item, settings Settings) Status {
	if item.Suspended {
		return StatusSuspended
	}

	switch (&item).stateFor(settings.Scheduler) {
	case StateLearning:
		return StatusLearning
	case StateRelearning:
		return StatusRelearning
	case StateReview:
		if maturityMetric(&item, settings.Scheduler) >= float64(settings.MaturityThreshold) {
			return StatusMature
		}
		return StatusYoung
	default:
		return StatusNew
	}
}

// maturityMetric returns the days-denominated growth measure of the active
// scheduler: FSRS stability or the SM-2 interval.
func maturityMetric(item *Item, sched Scheduler) float64 {
	switch sched {
	case SchedulerSM2:
		if item.SM2 != nil {
			return float64(item.SM2.Interval)
		}
	default:
		if m := item.fsrsMemory(sched); m != nil {
			return m.Stability
		}
	}
	return 0
}
