package recall

import (
	"encoding"
	"encoding/json"
	"fmt"
)

// Rating is the answer button pressed after a recall attempt. The four
// grades feed the FSRS formulas directly; the SM-2 path consumes them
// through Quality.
type Rating int

const (
	Again Rating = iota + 1 // forgot
	Hard                    // recalled, barely
	Good                    // recalled
	Easy                    // recalled without effort
)

var (
	_ fmt.Stringer             = Rating(0)
	_ json.Marshaler           = Rating(0)
	_ json.Unmarshaler         = (*Rating)(nil)
	_ encoding.TextMarshaler   = Rating(0)
	_ encoding.TextUnmarshaler = (*Rating)(nil)
)

// IsValid reports whether r is one of the four defined grades.
func (r Rating) IsValid() bool {
	return r >= Again && r <= Easy
}

func (r Rating) String() string {
	switch r {
	case Again:
		return "Again"
	case Hard:
		return "Hard"
	case Good:
		return "Good"
	case Easy:
		return "Easy"
	default:
		return fmt.Sprintf("Rating(%d)", int(r))
	}
}

// Quality maps the rating onto the SM-2 quality scale [0, 5].
// Again→1, Hard→3, Good→4, Easy→5. Anything below 3 counts as a lapse
// under SM-2, so Again is the only failing rating.
func (r Rating) Quality() int {
	switch r {
	case Again:
		return 1
	case Hard:
		return 3
	case Good:
		return 4
	case Easy:
		return 5
	default:
		return 0
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Rating) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRating, int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rating) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Again":
		*r = Again
	case "Hard":
		*r = Hard
	case "Good":
		*r = Good
	case "Easy":
		*r = Easy
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRating, text)
	}
	return nil
}

// MarshalJSON implements json.Marshaler. Ratings serialize as strings, not
// numbers, so review logs stay readable.
func (r Rating) MarshalJSON() ([]byte, error) {
	text, err := r.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Rating) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRating, data)
	}
	return r.UnmarshalText([]byte(s))
}
