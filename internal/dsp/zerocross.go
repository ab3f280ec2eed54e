package dsp

// RisingCrossings returns the indices where x crosses zero from negative to
// positive. A crossing needs x to have fallen to -hysteresis or below, and
// is confirmed once x reaches +hysteresis; the reported index is the first
// sample >= 0 on that rise. Dipping back below zero before confirmation
// discards the candidate.
func RisingCrossings(x []float64, hysteresis float64) []int {
	if hysteresis < 0 {
		hysteresis = -hysteresis
	}
	var out []int
	armed := false
	candidate := -1
	for i, v := range x {
		switch {
		case v <= -hysteresis:
			armed = true
			candidate = -1
		case v < 0:
			candidate = -1
		default:
			if !armed {
				continue
			}
			if candidate < 0 {
				candidate = i
			}
			if v >= hysteresis {
				out = append(out, candidate)
				armed = false
				candidate = -1
			}
		}
	}
	return out
}

// LocalMaxima returns the indices of strict interior peaks of x. A plateau
// reports its first sample.
func LocalMaxima(x []float64) []int {
	var out []int
	for i := 1; i+1 < len(x); i++ {
		if x[i] <= x[i-1] {
			continue
		}
		j := i
		for j+1 < len(x) && x[j+1] == x[i] {
			j++
		}
		if j+1 < len(x) && x[j+1] < x[i] {
			out = append(out, i)
		}
		i = j
	}
	return out
}
