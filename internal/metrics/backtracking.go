// Backtracking detection: peak → valley → higher-peak episodes in the
// monotonicity series, filtered through a hysteresis threshold so numerical
// jitter is never double-counted. Implemented as a fold over the completed
// series rather than incrementally during the run.
package metrics

// DefaultEpsilon is the hysteresis threshold applied when a run does not
// configure one.
const DefaultEpsilon = 0.01

// Episode is one detected (peak, valley, higher-peak) triple.
type Episode struct {
	Start   int     `json:"start"` // step index of the prior peak
	End     int     `json:"end"`   // step index of the later peak
	Peak    float64 `json:"peak"`
	Valley  float64 `json:"valley"`
	NewPeak float64 `json:"new_peak"`
}

// Score is the episode's contribution to the backtracking index:
// how much was regained relative to how much was given up.
func (e Episode) Score() float64 {
	return (e.NewPeak - e.Valley) / (e.Peak - e.Valley)
}

type extremum struct {
	peak  bool
	value float64
	index int
}

// Backtracking folds the monotonicity series into its episodes and their
// summed index. A negative epsilon falls back to DefaultEpsilon; an explicit
// zero disables hysteresis, so every strict direction change registers. A
// series with no confirmed drop yields no episodes and an index of exactly 0.
func Backtracking(series []float64, epsilon float64) ([]Episode, float64) {
	if epsilon < 0 {
		epsilon = DefaultEpsilon
	}
	extrema := findExtrema(series, epsilon)

	var episodes []Episode
	total := 0.0
	for k := 0; k+2 < len(extrema); k++ {
		p1, v, p2 := extrema[k], extrema[k+1], extrema[k+2]
		if !p1.peak || v.peak || !p2.peak {
			continue
		}
		// Only count recoveries that ended strictly above the prior peak.
		if p2.value <= p1.value {
			continue
		}
		// Zero-width drop: ratio undefined, skip rather than fault.
		if p1.value <= v.value {
			continue
		}
		ep := Episode{
			Start:   p1.index,
			End:     p2.index,
			Peak:    p1.value,
			Valley:  v.value,
			NewPeak: p2.value,
		}
		episodes = append(episodes, ep)
		total += ep.Score()
	}
	return episodes, total
}

// findExtrema walks the series with hysteresis epsilon: a peak is confirmed
// only after the series falls epsilon below the running maximum, a valley
// only after it rises epsilon above the running minimum. The pending
// extremum at series end is emitted too — its phase was already confirmed
// by the epsilon move that started it.
func findExtrema(series []float64, epsilon float64) []extremum {
	if len(series) < 3 {
		return nil
	}

	// Initial direction: the first epsilon-sized move away from the start.
	direction := 0
	for _, v := range series {
		if v > series[0]+epsilon {
			direction = 1
			break
		}
		if v < series[0]-epsilon {
			direction = -1
			break
		}
	}
	if direction == 0 {
		return nil
	}

	var extrema []extremum
	curVal := series[0]
	curIdx := 0
	for i, v := range series {
		switch direction {
		case 1: // climbing, tracking a peak
			if v > curVal {
				curVal, curIdx = v, i
			} else if v < curVal-epsilon {
				extrema = append(extrema, extremum{peak: true, value: curVal, index: curIdx})
				direction = -1
				curVal, curIdx = v, i
			}
		case -1: // descending, tracking a valley
			if v < curVal {
				curVal, curIdx = v, i
			} else if v > curVal+epsilon {
				extrema = append(extrema, extremum{peak: false, value: curVal, index: curIdx})
				direction = 1
				curVal, curIdx = v, i
			}
		}
	}
	extrema = append(extrema, extremum{peak: direction == 1, value: curVal, index: curIdx})
	return extrema
}
