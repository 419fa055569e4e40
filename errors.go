package recall

import "errors"

// Sentinel errors for the recall package.
// Use errors.Is to check: errors.Is(err, recall.ErrInvalidRating)
//
// Configuration problems (undersized parameter vectors, unknown scheduler,
// malformed step strings, negative budgets) are reported before any
// computation runs. Lookup misses during settings or exam-scope resolution
// are recovered internally and never surface as errors; the same goes for
// items whose memory state does not match the active scheduler, which are
// treated as new.
var (
	ErrConfig            = errors.New("recall: invalid settings")
	ErrInvalidRating     = errors.New("recall: invalid rating")
	ErrInvalidScheduler  = errors.New("recall: invalid scheduler")
	ErrInvalidParameters = errors.New("recall: parameters out of bounds")
	ErrInvalidSteps      = errors.New("recall: malformed learning steps")
	ErrInvalidBudget     = errors.New("recall: negative daily budget")
	ErrInvalidRetention  = errors.New("recall: desired retention out of range")
)
