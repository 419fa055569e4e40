package recall

// Weight vector lengths per FSRS variant. Vectors shorter than these index
// into undefined behavior, so Settings.Validate rejects them up front.
const (
	fsrsWeightCount  = 17
	fsrs6WeightCount = 21
)

// DefaultWeights are the default FSRS-4.5 parameters.
// w[0..3] initial stability per rating, w[4..5] initial difficulty,
// w[6] difficulty delta, w[8..10] recall stability (Good),
// w[11..13] recall stability (Hard), w[14] easy bonus,
// w[15..16] post-lapse stability.
var DefaultWeights = [fsrsWeightCount]float64{
	0.4, 0.6, 2.4, 5.8,
	4.93, 0.94, 0.86, 0.01,
	1.49, 0.14, 0.94, 2.18,
	0.05, 0.34, 1.26, 0.29,
	2.61,
}

// DefaultWeights6 are the default FSRS-6 parameters: the FSRS-4.5 head plus
// w[17..19] for same-day reviews and w[20], the trainable decay exponent of
// the forgetting curve.
var DefaultWeights6 = [fsrs6WeightCount]float64{
	0.4, 0.6, 2.4, 5.8,
	4.93, 0.94, 0.86, 0.01,
	1.49, 0.14, 0.94, 2.18,
	0.05, 0.34, 1.26, 0.29,
	2.61, 0.5425, 0.0912, 0.0658,
	0.1542,
}

// fsrsWeights returns the weight vector for the given FSRS variant,
// substituting package defaults when the settings carry none.
func (s Settings) fsrsWeights(sched Scheduler) []float64 {
	if sched == SchedulerFSRS6 {
		if s.Weights6 != nil {
			return s.Weights6
		}
		return DefaultWeights6[:]
	}
	if s.Weights != nil {
		return s.Weights
	}
	return DefaultWeights[:]
}
