package recall

import "time"

// ReviewLog records a single review event for an item. The storage
// collaborator appends these to its review history; the optimizer path of
// the host application trains parameters from them.
type ReviewLog struct {
	ItemID        string    `json:"item_id"`
	Rating        Rating    `json:"rating"`
	Scheduler     Scheduler `json:"scheduler"`
	State         CardState `json:"state"` // state after the review.
	ElapsedDays   float64   `json:"elapsed_days"`
	ScheduledDays float64   `json:"scheduled_days"`
	ReviewedAt    time.Time `json:"reviewed_at"`
	Duration      *int      `json:"duration,omitempty"` // milliseconds, optional.
}
