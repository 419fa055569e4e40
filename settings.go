package recall

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Scheduler selects the memory-state update algorithm for a container.
type Scheduler string

const (
	SchedulerFSRS  Scheduler = "fsrs"  // FSRS-4.5, 17 parameters.
	SchedulerFSRS6 Scheduler = "fsrs6" // FSRS-6, 21 parameters, same-day handling.
	SchedulerSM2   Scheduler = "sm2"   // SuperMemo-2.
)

// IsValid reports whether s names a known scheduler.
func (s Scheduler) IsValid() bool {
	return s == SchedulerFSRS || s == SchedulerFSRS6 || s == SchedulerSM2
}

// GatherOrder controls how new items fill the daily budget during the
// hierarchical gather.
type GatherOrder string

const (
	GatherDeck   GatherOrder = "deck"   // Tree order (default).
	GatherRandom GatherOrder = "random" // Shuffle candidates per container.
)

// NewSortOrder controls ordering of gathered new items.
type NewSortOrder string

const (
	NewSortAscending  NewSortOrder = "ascending" // By NewOrder, ascending (default).
	NewSortDescending NewSortOrder = "descending"
	NewSortRandom     NewSortOrder = "random"
)

// ReviewSortOrder controls ordering of gathered review items.
type ReviewSortOrder string

const (
	ReviewSortDueDate       ReviewSortOrder = "dueDate" // Due date ascending (default).
	ReviewSortDueDateRandom ReviewSortOrder = "dueDateRandom"
)

// NewReviewOrder controls how the new and review classes combine in the
// final queue.
type NewReviewOrder string

const (
	NewReviewMix    NewReviewOrder = "mix"    // Shuffled together (default).
	NewReviewAfter  NewReviewOrder = "after"  // Reviews first, then new.
	NewReviewBefore NewReviewOrder = "before" // New first, then reviews.
)

// Settings is the scheduling configuration for a container or for the whole
// collection. Zero values fill with defaults via DefaultSettings; containers
// that declare HasCustomSettings override the global object wholesale.
type Settings struct {
	Scheduler Scheduler `json:"scheduler" yaml:"scheduler" validate:"oneof=fsrs fsrs6 sm2"`

	// Daily budgets, tracked separately per item kind.
	NewCardsPerDay      int `json:"newCardsPerDay" yaml:"newCardsPerDay" validate:"min=0"`
	MaxReviewsPerDay    int `json:"maxReviewsPerDay" yaml:"maxReviewsPerDay" validate:"min=0"`
	NewMCQsPerDay       int `json:"newMcqsPerDay" yaml:"newMcqsPerDay" validate:"min=0"`
	MaxMCQReviewsPerDay int `json:"maxMcqReviewsPerDay" yaml:"maxMcqReviewsPerDay" validate:"min=0"`

	// FSRS tuning. Weights holds the 17-element FSRS-4.5 vector, Weights6
	// the 21-element FSRS-6 vector. Nil means package defaults.
	Weights          []float64 `json:"w,omitempty" yaml:"w,omitempty"`
	Weights6         []float64 `json:"w6,omitempty" yaml:"w6,omitempty"`
	DesiredRetention float64   `json:"desiredRetention" yaml:"desiredRetention" validate:"gt=0,lte=1"`
	MaximumInterval  int       `json:"maximumInterval" yaml:"maximumInterval" validate:"min=1"`

	// SM-2 tuning.
	StartingEase     float64 `json:"startingEase" yaml:"startingEase" validate:"min=1.3"`
	IntervalModifier float64 `json:"intervalModifier" yaml:"intervalModifier" validate:"gt=0"`
	EasyBonus        float64 `json:"easyBonus" yaml:"easyBonus" validate:"min=1"`
	LapseMultiplier  float64 `json:"lapseMultiplier" yaml:"lapseMultiplier" validate:"min=0,lt=1"`
	MinimumInterval  int     `json:"minimumInterval" yaml:"minimumInterval" validate:"min=1"`

	// Learning steps as whitespace-separated duration tokens. The default
	// unit is minutes; suffixes d, h and s are recognized ("1 10", "1d 3d").
	LearningSteps   string `json:"learningSteps" yaml:"learningSteps"`
	RelearningSteps string `json:"relearningSteps" yaml:"relearningSteps"`

	// Ordering policies for the session queue.
	NewCardGatherOrder GatherOrder     `json:"newCardGatherOrder" yaml:"newCardGatherOrder" validate:"oneof=deck random"`
	NewCardSortOrder   NewSortOrder    `json:"newCardSortOrder" yaml:"newCardSortOrder" validate:"oneof=ascending descending random"`
	NewReviewOrder     NewReviewOrder  `json:"newReviewOrder" yaml:"newReviewOrder" validate:"oneof=mix after before"`
	ReviewSortOrder    ReviewSortOrder `json:"reviewSortOrder" yaml:"reviewSortOrder" validate:"oneof=dueDate dueDateRandom"`

	// NewCardsIgnoreReviewLimit admits new items even when the review
	// budget is exhausted.
	NewCardsIgnoreReviewLimit bool `json:"newCardsIgnoreReviewLimit" yaml:"newCardsIgnoreReviewLimit"`

	// MaturityThreshold is the stability (FSRS, days) or interval (SM-2,
	// days) at which a Review item counts as Mature.
	MaturityThreshold int `json:"maturityThreshold" yaml:"maturityThreshold" validate:"min=1"`

	// FuzzIntervals randomizes computed review intervals slightly to avoid
	// review clustering. Off by default so intervals stay exact.
	FuzzIntervals bool `json:"fuzzIntervals" yaml:"fuzzIntervals"`
}

// DefaultSettings returns the global defaults: FSRS-6, 20 new / 200 reviews
// per day for both kinds, retention 0.9, steps "1 10" / "10", deck gather,
// ascending new sort, mixed combination, 21-day maturity.
func DefaultSettings() Settings {
	return Settings{
		Scheduler:           SchedulerFSRS6,
		NewCardsPerDay:      20,
		MaxReviewsPerDay:    200,
		NewMCQsPerDay:       20,
		MaxMCQReviewsPerDay: 200,
		DesiredRetention:    0.9,
		MaximumInterval:     36500,
		StartingEase:        2.5,
		IntervalModifier:    1.0,
		EasyBonus:           1.3,
		LapseMultiplier:     0,
		MinimumInterval:     1,
		LearningSteps:       "1 10",
		RelearningSteps:     "10",
		NewCardGatherOrder:  GatherDeck,
		NewCardSortOrder:    NewSortAscending,
		NewReviewOrder:      NewReviewMix,
		ReviewSortOrder:     ReviewSortDueDate,
		MaturityThreshold:   21,
	}
}

// validate is the package singleton; Settings has no custom tag validators.
var validate = validator.New()

// Validate checks the settings before any computation runs. Structural
// rules come from the validate struct tags; cross-field rules (parameter
// vector length for the active scheduler, step syntax) are checked by hand.
func (s Settings) Validate() error {
	if !s.Scheduler.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidScheduler, s.Scheduler)
	}
	if s.NewCardsPerDay < 0 || s.MaxReviewsPerDay < 0 || s.NewMCQsPerDay < 0 || s.MaxMCQReviewsPerDay < 0 {
		return fmt.Errorf("%w: new=%d/%d reviews=%d/%d", ErrInvalidBudget,
			s.NewCardsPerDay, s.NewMCQsPerDay, s.MaxReviewsPerDay, s.MaxMCQReviewsPerDay)
	}
	if s.DesiredRetention <= 0 || s.DesiredRetention > 1 {
		return fmt.Errorf("%w: %f", ErrInvalidRetention, s.DesiredRetention)
	}
	if s.Weights != nil && len(s.Weights) != fsrsWeightCount {
		return fmt.Errorf("%w: fsrs wants %d weights, got %d", ErrInvalidParameters, fsrsWeightCount, len(s.Weights))
	}
	if s.Weights6 != nil && len(s.Weights6) != fsrs6WeightCount {
		return fmt.Errorf("%w: fsrs6 wants %d weights, got %d", ErrInvalidParameters, fsrs6WeightCount, len(s.Weights6))
	}
	if _, err := ParseSteps(s.LearningSteps); err != nil {
		return err
	}
	if _, err := ParseSteps(s.RelearningSteps); err != nil {
		return err
	}
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return nil
}

// ParseSteps parses a whitespace-separated list of step duration tokens.
// A bare number is minutes; the suffixes d, h and s select days, hours and
// seconds ("1 10", "1d 3d", "30s 2h"). An empty string yields no steps.
func ParseSteps(steps string) ([]time.Duration, error) {
	fields := strings.Fields(steps)
	if len(fields) == 0 {
		return nil, nil
	}
	out := make([]time.Duration, 0, len(fields))
	for _, tok := range fields {
		unit := time.Minute
		num := tok
		switch {
		case strings.HasSuffix(tok, "d"):
			unit, num = 24*time.Hour, strings.TrimSuffix(tok, "d")
		case strings.HasSuffix(tok, "h"):
			unit, num = time.Hour, strings.TrimSuffix(tok, "h")
		case strings.HasSuffix(tok, "s"):
			unit, num = time.Second, strings.TrimSuffix(tok, "s")
		}
		v, err := strconv.ParseFloat(num, 64)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSteps, tok)
		}
		out = append(out, time.Duration(v*float64(unit)))
	}
	return out, nil
}

// ParseSettings decodes YAML over the package defaults and validates the
// result. Fields absent from the document keep their default values.
func ParseSettings(data []byte) (Settings, error) {
	s := DefaultSettings()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// LoadSettings reads a YAML settings document from r. See ParseSettings.
func LoadSettings(r io.Reader) (Settings, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return ParseSettings(data)
}

// newLimit returns the local daily new-item budget for the given kind.
func (s Settings) newLimit(k ItemKind) int {
	if k == KindMCQ {
		return s.NewMCQsPerDay
	}
	return s.NewCardsPerDay
}

// reviewLimit returns the local daily review budget for the given kind.
func (s Settings) reviewLimit(k ItemKind) int {
	if k == KindMCQ {
		return s.MaxMCQReviewsPerDay
	}
	return s.MaxReviewsPerDay
}

// learningStepsFor returns the parsed step durations for the given state.
// Settings are validated before use, so parse errors are ignored here.
func (s Settings) learningStepsFor(state CardState) []time.Duration {
	switch state {
	case StateRelearning:
		steps, _ := ParseSteps(s.RelearningSteps)
		return steps
	default:
		steps, _ := ParseSteps(s.LearningSteps)
		return steps
	}
}
