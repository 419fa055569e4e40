package recall

import (
	"encoding"
	"encoding/json"
	"fmt"
)

// CardState represents the learning stage recorded in an item's memory state.
type CardState int

const (
	StateNew        CardState = iota + 1 // Never reviewed.
	StateLearning                        // In initial learning steps.
	StateReview                          // Entered long-term review cycle.
	StateRelearning                      // Forgotten, relearning.
)

var (
	cardStateNames = [...]string{
		StateNew:        "New",
		StateLearning:   "Learning",
		StateReview:     "Review",
		StateRelearning: "Relearning",
	}
	cardStateByName = map[string]CardState{
		"New":        StateNew,
		"Learning":   StateLearning,
		"Review":     StateReview,
		"Relearning": StateRelearning,
	}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = CardState(0)
	_ json.Marshaler           = CardState(0)
	_ json.Unmarshaler         = (*CardState)(nil)
	_ encoding.TextMarshaler   = CardState(0)
	_ encoding.TextUnmarshaler = (*CardState)(nil)
)

func (s CardState) isValid() bool {
	return s >= StateNew && s <= StateRelearning
}

// String returns the name of the state ("New", "Learning", "Review",
// "Relearning"). For invalid values it returns "CardState(n)".
func (s CardState) String() string {
	if s.isValid() {
		return cardStateNames[s]
	}
	return fmt.Sprintf("CardState(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s CardState) MarshalText() ([]byte, error) {
	if !s.isValid() {
		return nil, fmt.Errorf("recall: invalid card state: %d", int(s))
	}
	return []byte(cardStateNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *CardState) UnmarshalText(text []byte) error {
	v, ok := cardStateByName[string(text)]
	if !ok {
		return fmt.Errorf("recall: invalid card state: %q", text)
	}
	*s = v
	return nil
}

// MarshalJSON implements json.Marshaler. CardState serializes as a JSON string.
func (s CardState) MarshalJSON() ([]byte, error) {
	text, err := s.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler. Expects a JSON string.
func (s *CardState) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("recall: invalid card state: %s", data)
	}
	return s.UnmarshalText([]byte(str))
}
