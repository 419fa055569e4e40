package recall

import (
	"runtime"
	"time"

	"github.com/sourcegraph/conc/pool"
)

// DueCounts aggregates how much work a container subtree holds right now.
type DueCounts struct {
	New      int `json:"new"`      // Never-introduced items.
	Learning int `json:"learning"` // Learning/Relearning items due now.
	Due      int `json:"due"`      // Review items due now.
}

// Total returns the sum of all three buckets.
func (d DueCounts) Total() int {
	return d.New + d.Learning + d.Due
}

func (d *DueCounts) add(o DueCounts) {
	d.New += o.New
	d.Learning += o.Learning
	d.Due += o.Due
}

// CountContainer computes the due counts for the container and its whole
// subtree at the given time. The full forest is needed because each
// container resolves its own effective settings against its ancestors.
// Suspended items are excluded entirely; new items count regardless of
// their due timestamp.
func CountContainer(forest Forest, c *Container, global Settings, now time.Time) DueCounts {
	if c == nil {
		return DueCounts{}
	}
	eff := EffectiveSettings(forest, c.ID, global)

	var counts DueCounts
	for i := range c.Items {
		it := &c.Items[i]
		if it.Suspended {
			continue
		}
		switch it.stateFor(eff.Scheduler) {
		case StateNew:
			counts.New++
		case StateLearning, StateRelearning:
			if due, ok := itemDue(it, eff.Scheduler); ok && !due.After(now) {
				counts.Learning++
			}
		case StateReview:
			if due, ok := itemDue(it, eff.Scheduler); ok && !due.After(now) {
				counts.Due++
			}
		}
	}
	for _, child := range c.Children {
		counts.add(CountContainer(forest, child, global, now))
	}
	return counts
}

// CountForest sums the due counts of every root in the forest. Roots are
// counted concurrently; the walk is read-only, so sharing the tree across
// goroutines is safe.
func CountForest(forest Forest, global Settings, now time.Time) DueCounts {
	results := make([]DueCounts, len(forest))
	p := pool.New().WithMaxGoroutines(runtime.NumCPU())
	for i, root := range forest {
		i, root := i, root
		p.Go(func() {
			results[i] = CountContainer(forest, root, global, now)
		})
	}
	p.Wait()

	var total DueCounts
	for _, r := range results {
		total.add(r)
	}
	return total
}

// itemDue returns the due timestamp recorded for the active scheduler.
// Items with no slot for the scheduler have no due time.
func itemDue(it *Item, sched Scheduler) (time.Time, bool) {
	switch sched {
	case SchedulerSM2:
		if it.SM2 != nil {
			return it.SM2.Due, true
		}
	default:
		if m := it.fsrsMemory(sched); m != nil {
			return m.Due, true
		}
	}
	return time.Time{}, false
}
