package recall

import (
	"encoding"
	"fmt"

	"github.com/google/uuid"
)

// ItemKind distinguishes flashcards from multiple-choice questions.
// Daily budgets are tracked separately per kind.
type ItemKind int

const (
	KindFlashcard ItemKind = iota
	KindMCQ
)

var (
	itemKindNames  = [...]string{KindFlashcard: "flashcard", KindMCQ: "mcq"}
	itemKindByName = map[string]ItemKind{
		"flashcard": KindFlashcard,
		"mcq":       KindMCQ,
	}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = ItemKind(0)
	_ encoding.TextMarshaler   = ItemKind(0)
	_ encoding.TextUnmarshaler = (*ItemKind)(nil)
)

func (k ItemKind) String() string {
	if k == KindFlashcard || k == KindMCQ {
		return itemKindNames[k]
	}
	return fmt.Sprintf("ItemKind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k ItemKind) MarshalText() ([]byte, error) {
	if k != KindFlashcard && k != KindMCQ {
		return nil, fmt.Errorf("recall: invalid item kind: %d", int(k))
	}
	return []byte(itemKindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ItemKind) UnmarshalText(text []byte) error {
	v, ok := itemKindByName[string(text)]
	if !ok {
		return fmt.Errorf("recall: invalid item kind: %q", text)
	}
	*k = v
	return nil
}

// Item is a single studyable unit: a flashcard or an MCQ. It carries up to
// three memory-state slots, one per scheduler family; schedulers only touch
// the slot matching the container's active scheduler, so a deck can switch
// algorithms without destroying history.
type Item struct {
	ID        string   `json:"id"`
	Kind      ItemKind `json:"kind"`
	Tags      []string `json:"tags,omitempty"`
	Suspended bool     `json:"isSuspended,omitempty"`

	// NewOrder is the stable tie-break used when ordering new items.
	NewOrder int `json:"newCardOrder,omitempty"`

	FSRS  *FSRSMemory `json:"fsrs,omitempty"`
	FSRS6 *FSRSMemory `json:"fsrs6,omitempty"`
	SM2   *SM2Memory  `json:"sm2,omitempty"`
}

// NewFlashcard creates a flashcard item. An empty id is replaced with a
// generated UUID. Memory slots start nil: the item is treated as new by
// every scheduler until first reviewed.
func NewFlashcard(id string) Item {
	if id == "" {
		id = uuid.NewString()
	}
	return Item{ID: id, Kind: KindFlashcard}
}

// NewMCQ creates a multiple-choice item, generating a UUID when id is empty.
func NewMCQ(id string) Item {
	if id == "" {
		id = uuid.NewString()
	}
	return Item{ID: id, Kind: KindMCQ}
}

// clone returns a deep copy of the item. Memory slots and tags are copied,
// so mutating the copy never touches the caller's tree.
func (it Item) clone() Item {
	out := it
	if it.Tags != nil {
		out.Tags = append([]string(nil), it.Tags...)
	}
	out.FSRS = it.FSRS.clone()
	out.FSRS6 = it.FSRS6.clone()
	out.SM2 = it.SM2.clone()
	return out
}

// hasTag reports whether the item carries the given tag.
func (it Item) hasTag(tag string) bool {
	for _, t := range it.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// fsrsMemory returns the FSRS-family slot for the given scheduler, or nil.
func (it *Item) fsrsMemory(s Scheduler) *FSRSMemory {
	switch s {
	case SchedulerFSRS:
		return it.FSRS
	case SchedulerFSRS6:
		return it.FSRS6
	default:
		return nil
	}
}

// setFSRSMemory stores the FSRS-family slot for the given scheduler.
func (it *Item) setFSRSMemory(s Scheduler, m *FSRSMemory) {
	switch s {
	case SchedulerFSRS:
		it.FSRS = m
	case SchedulerFSRS6:
		it.FSRS6 = m
	}
}

// stateFor returns the card state recorded for the given scheduler.
// Items with no slot for the scheduler are new by definition: a state
// written by a different algorithm is never reinterpreted.
func (it *Item) stateFor(s Scheduler) CardState {
	switch s {
	case SchedulerFSRS, SchedulerFSRS6:
		if m := it.fsrsMemory(s); m != nil {
			return m.State
		}
	case SchedulerSM2:
		if it.SM2 != nil {
			return it.SM2.State
		}
	}
	return StateNew
}
