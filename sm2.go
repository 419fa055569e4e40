package recall

import "math"

// minEaseFactor is the SM-2 easiness floor. No sequence of failing reviews
// pushes the ease factor below it.
const minEaseFactor = 1.3

// sm2Algo bundles the SM-2 tunables resolved from settings.
type sm2Algo struct {
	startingEase     float64
	intervalModifier float64
	easyBonus        float64
	lapseMultiplier  float64
	minInterval      int
	maxInterval      int
}

func newSM2Algo(s Settings) sm2Algo {
	return sm2Algo{
		startingEase:     s.StartingEase,
		intervalModifier: s.IntervalModifier,
		easyBonus:        s.EasyBonus,
		lapseMultiplier:  s.LapseMultiplier,
		minInterval:      s.MinimumInterval,
		maxInterval:      s.MaximumInterval,
	}
}

// nextEase applies the SM-2 easiness update for a quality response in
// [0, 5]: EF' = EF + 0.1 - (5-q) * (0.08 + (5-q) * 0.02), floored at 1.3.
func (a sm2Algo) nextEase(ease float64, quality int) float64 {
	q := float64(quality)
	ease += 0.1 - (5-q)*(0.08+(5-q)*0.02)
	return math.Max(ease, minEaseFactor)
}

// nextInterval computes the post-review interval in days for a successful
// review (quality >= 3): 1 day on the first success, 6 on the second,
// round(interval * EF) after that. The interval modifier always applies;
// the easy bonus applies to Easy ratings only.
func (a sm2Algo) nextInterval(repetitions, interval int, ease float64, r Rating) int {
	var days float64
	switch repetitions {
	case 0:
		days = 1
	case 1:
		days = 6
	default:
		days = math.Round(float64(interval) * ease)
	}
	days = math.Round(days * a.intervalModifier)
	if r == Easy {
		days = math.Round(days * a.easyBonus)
	}
	return a.clampInterval(int(days))
}

// lapseInterval computes the interval after a failed review. With a zero
// lapse multiplier the interval resets to one day.
func (a sm2Algo) lapseInterval(interval int) int {
	days := int(math.Round(float64(interval) * a.lapseMultiplier))
	if days < 1 {
		days = 1
	}
	return a.clampInterval(days)
}

func (a sm2Algo) clampInterval(days int) int {
	if days < a.minInterval {
		days = a.minInterval
	}
	if days > a.maxInterval {
		days = a.maxInterval
	}
	if days < 1 {
		days = 1
	}
	return days
}
