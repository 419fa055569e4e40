package recall

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifySuspendedWins(t *testing.T) {
	s := DefaultSettings()
	card := NewFlashcard("c1")
	card.Suspended = true
	card.FSRS6 = &FSRSMemory{State: StateReview, Stability: 100}
	assert.Equal(t, StatusSuspended, ClassifyItem(card, s))
}

func TestClassifyNew(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, StatusNew, ClassifyItem(NewFlashcard("c1"), s))

	card := NewFlashcard("c2")
	card.FSRS6 = &FSRSMemory{State: StateNew}
	assert.Equal(t, StatusNew, ClassifyItem(card, s))
}

func TestClassifyLearningStates(t *testing.T) {
	s := DefaultSettings()
	card := NewFlashcard("c1")
	card.FSRS6 = &FSRSMemory{State: StateLearning}
	assert.Equal(t, StatusLearning, ClassifyItem(card, s))
	card.FSRS6.State = StateRelearning
	assert.Equal(t, StatusRelearning, ClassifyItem(card, s))
}

// Review items split into Young and Mature at the maturity threshold,
// measured on stability for FSRS and interval for SM-2.
func TestClassifyYoungMature(t *testing.T) {
	s := DefaultSettings() // threshold 21 days

	card := NewFlashcard("c1")
	card.FSRS6 = &FSRSMemory{State: StateReview, Stability: 5}
	assert.Equal(t, StatusYoung, ClassifyItem(card, s))
	card.FSRS6.Stability = 30
	assert.Equal(t, StatusMature, ClassifyItem(card, s))

	s.Scheduler = SchedulerSM2
	mcq := NewMCQ("q1")
	mcq.SM2 = &SM2Memory{State: StateReview, Interval: 10}
	assert.Equal(t, StatusYoung, ClassifyItem(mcq, s))
	mcq.SM2.Interval = 21
	assert.Equal(t, StatusMature, ClassifyItem(mcq, s))
}

// Classification is a pure projection: repeated calls agree.
func TestClassifyIdempotent(t *testing.T) {
	s := DefaultSettings()
	card := NewFlashcard("c1")
	card.FSRS6 = &FSRSMemory{State: StateReview, Stability: 12, Due: time.Now()}
	first := ClassifyItem(card, s)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, ClassifyItem(card, s))
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "Mature", StatusMature.String())
	assert.Equal(t, "Status(99)", Status(99).String())
}
