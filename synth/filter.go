package synth

import "math"

// reconFilter is a single one-pole lowpass. Two of these run in cascade on
// every PCM value read from sample memory, smoothing the steps left by the
// integer-rate consumption loop. The cursor builds both filters with the
// fixed (corner, gain) pair (32000, 15).
type reconFilter struct {
	coeff float64
	z     float64
}

func newReconFilter(corner, gain float64) reconFilter {
	return reconFilter{coeff: math.Exp(-2 * math.Pi * gain * 1e3 / corner)}
}

func (f *reconFilter) apply(in float64) float64 {
	f.z = in + (f.z-in)*f.coeff
	return f.z
}
