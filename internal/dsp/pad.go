package dsp

import "fmt"

// PadMode is the boundary policy used when a kernel reaches past either end
// of a signal.
type PadMode int

const (
	// PadReflect mirrors about the edge, repeating the edge sample:
	// d c b a | a b c d | d c b a.
	PadReflect PadMode = iota
	// PadNearest repeats the edge sample: a a a | a b c d | d d d.
	PadNearest
)

func (m PadMode) String() string {
	switch m {
	case PadReflect:
		return "reflect"
	case PadNearest:
		return "nearest"
	default:
		return fmt.Sprintf("PadMode(%d)", int(m))
	}
}

// ParsePadMode is the inverse of PadMode.String.
func ParsePadMode(s string) (PadMode, error) {
	switch s {
	case "reflect":
		return PadReflect, nil
	case "nearest":
		return PadNearest, nil
	}
	return 0, fmt.Errorf("unknown pad mode %q", s)
}

// padIndex maps any integer index onto [0, n) under the given mode.
func padIndex(i, n int, mode PadMode) int {
	if i >= 0 && i < n {
		return i
	}
	if mode == PadNearest {
		if i < 0 {
			return 0
		}
		return n - 1
	}
	period := 2 * n
	m := i % period
	if m < 0 {
		m += period
	}
	if m >= n {
		m = period - 1 - m
	}
	return m
}

// oddExtend returns x with padlen samples of odd (point-symmetric) extension
// on each side: 2*x[0]-x[padlen..1] | x | 2*x[n-1]-x[n-2..n-1-padlen].
// padlen must be at most len(x)-1.
func oddExtend(x []float64, padlen int) []float64 {
	n := len(x)
	ext := make([]float64, n+2*padlen)
	for j := 1; j <= padlen; j++ {
		ext[padlen-j] = 2*x[0] - x[j]
		ext[padlen+n-1+j] = 2*x[n-1] - x[n-1-j]
	}
	copy(ext[padlen:], x)
	return ext
}

func clampPadlen(padlen, n int) int {
	if padlen > n-1 {
		padlen = n - 1
	}
	if padlen < 0 {
		padlen = 0
	}
	return padlen
}

func reversed(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[len(x)-1-i] = v
	}
	return out
}
