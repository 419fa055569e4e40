package recall

import "math"

// stabilityFloor is the minimum stability either FSRS variant produces.
const stabilityFloor = 0.1

// fsrsAlgo holds an FSRS weight vector plus constants precomputed from it.
// It covers both variants: FSRS-4.5 (17 weights) and FSRS-6 (21 weights,
// same-day review handling, trainable forgetting-curve decay).
type fsrsAlgo struct {
	w       []float64
	sameDay bool    // FSRS-6 only: short-term update for elapsed < 1 day.
	decay   float64 // forecast curve exponent: -w[20] for FSRS-6, -1 for FSRS-4.5.
	factor  float64 // forecast curve factor: 0.9^(1/decay) - 1.
}

// newFSRSAlgo builds the algorithm for the given variant. The weight
// vector's length must already be validated.
func newFSRSAlgo(sched Scheduler, w []float64) fsrsAlgo {
	a := fsrsAlgo{w: w, decay: -1, factor: 1.0 / 9.0}
	if sched == SchedulerFSRS6 {
		a.sameDay = true
		a.decay = -w[20]
		a.factor = math.Pow(0.9, 1.0/a.decay) - 1.0
	}
	return a
}

// retrievability is the recall probability used inside the stability
// update: r = (1 + t / (9 S))^-1.
func (a *fsrsAlgo) retrievability(elapsedDays, stability float64) float64 {
	return 1.0 / (1.0 + elapsedDays/(9.0*stability))
}

// forecast is the forgetting-curve probability used for display and
// analytics, never for gating scheduling:
// r(t, S) = (1 + FACTOR * t / S)^DECAY.
func (a *fsrsAlgo) forecast(elapsedDays, stability float64) float64 {
	return math.Pow(1.0+a.factor*elapsedDays/stability, a.decay)
}

// initStability returns S₀(G) = w[G-1] for a first review.
func (a *fsrsAlgo) initStability(r Rating) float64 {
	return math.Max(a.w[r-1], stabilityFloor)
}

// initDifficulty returns D₀(G) = clamp(w[4] - (G-3) * w[5], 1, 10).
func (a *fsrsAlgo) initDifficulty(r Rating) float64 {
	return clampDifficulty(a.w[4] - float64(r-3)*a.w[5])
}

// nextDifficulty returns D' = clamp(D - w[6] * (G-3), 1, 10).
func (a *fsrsAlgo) nextDifficulty(difficulty float64, r Rating) float64 {
	return clampDifficulty(difficulty - a.w[6]*float64(r-3))
}

// nextStability computes the post-review stability for a cross-day review.
// The difficulty argument is the pre-update value; retr is retrievability
// at review time.
func (a *fsrsAlgo) nextStability(difficulty, stability, retr float64, r Rating) float64 {
	switch r {
	case Again:
		return a.w[15] * math.Pow(difficulty, -a.w[16])
	case Hard:
		return stability * (1 + math.Exp(a.w[11])*
			(11-difficulty)*
			math.Pow(stability, -a.w[12])*
			(math.Exp((1-retr)*a.w[13])-1))
	case Easy:
		return a.nextStability(difficulty, stability, retr, Good) * a.w[14]
	default: // Good
		return stability * (1 + math.Exp(a.w[8])*
			(11-difficulty)*
			math.Pow(stability, -a.w[9])*
			(math.Exp((1-retr)*a.w[10])-1))
	}
}

// shortTermStability is the FSRS-6 same-day update (elapsed < 1 day).
// Difficulty is left unchanged by same-day reviews.
// S' = S * e^(w[17] * (G - 3 + w[18])) * S^(-w[19])
func (a *fsrsAlgo) shortTermStability(stability float64, r Rating) float64 {
	return stability *
		math.Exp(a.w[17]*(float64(r)-3+a.w[18])) *
		math.Pow(stability, -a.w[19])
}

// clampStability applies the final bound: [0.1, maximumInterval].
func clampStability(s float64, maximumInterval int) float64 {
	return math.Min(math.Max(s, stabilityFloor), float64(maximumInterval))
}

// nextInterval converts stability to a review interval in whole days:
// I = clamp(round(S * (1/retention - 1)), 1, maximumInterval).
func (a *fsrsAlgo) nextInterval(stability, desiredRetention float64, maximumInterval int) int {
	ivl := int(math.Round(stability * (1.0/desiredRetention - 1.0)))
	if ivl < 1 {
		ivl = 1
	}
	if ivl > maximumInterval {
		ivl = maximumInterval
	}
	return ivl
}

// clampDifficulty bounds difficulty to [1, 10].
func clampDifficulty(d float64) float64 {
	return math.Min(math.Max(d, 1), 10)
}
