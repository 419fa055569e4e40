// Package recall implements the scheduling core of a spaced-repetition
// study application: per-item memory-state updates (FSRS-4.5, FSRS-6,
// SM-2) and a budget-constrained session-queue builder over a hierarchy
// of decks and question banks.
//
// The package is a pure in-process library. It performs no I/O: callers
// supply the container forest, settings, exams and the set of item ids
// already introduced today, and receive updated item copies, review logs,
// due counts and session queues back as plain values.
//
// Basic usage:
//
//	settings := recall.DefaultSettings()
//	rev, err := recall.NewReviewer(settings)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	card := recall.NewFlashcard("")
//	card, rlog, err := rev.Review(card, recall.Good, time.Now())
//
// Building a study session:
//
//	queue, err := recall.BuildQueue(recall.QueueRequest{
//	    Containers: selected,
//	    Forest:     forest,
//	    Settings:   settings,
//	    Now:        time.Now(),
//	})
package recall
