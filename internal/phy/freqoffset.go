package phy

import (
	"math"
	"math/cmplx"
)

const (
	coarseLag          = 16
	coarseBoxcar       = 32
	coarseSampleOffset = -50 // relative to falling_edge

	fineLag          = 64
	fineBoxcar       = 64
	fineSampleOffset = 125 // relative to falling_edge
)

// smoothedAutocorr computes the lag/boxcar smoothed auto-correlation
// C[i] = sum over the trailing `boxcar` samples of x[n]*conj(x[n-lag]),
// with zero-padded history for n-lag < 0. Used by the coarse/fine offset
// stages; PacketDetector computes the same lag-16 sum inline.
func smoothedAutocorr(x []complex128, lag, boxcar int) []complex128 {
	n := len(x)
	c := make([]complex128, n)
	for i := 0; i < n; i++ {
		if i >= lag {
			c[i] = x[i] * cmplx.Conj(x[i-lag])
		}
	}
	out := make([]complex128, n)
	var running complex128
	for i := 0; i < n; i++ {
		running += c[i]
		if i >= boxcar {
			running -= c[i-boxcar]
		}
		out[i] = running
	}
	return out
}

// CoarseFreqOffset measures the carrier offset from the lag-16 smoothed
// auto-correlation sampled at falling_edge-50, a stable point inside the
// short-training plateau.
func CoarseFreqOffset(x []complex128, fallingEdge int) float64 {
	idx := fallingEdge + coarseSampleOffset
	if idx < 0 || idx >= len(x) {
		return 0
	}
	c16 := smoothedAutocorr(x, coarseLag, coarseBoxcar)
	theta := cmplx.Phase(c16[idx])
	return theta * Fs / (2 * math.Pi * coarseLag)
}

// FineFreqOffset measures the residual offset from the lag-64 smoothed
// auto-correlation sampled at falling_edge+125, inside the second long
// training symbol. The lag-64 measurement has 4x the resolution of the
// coarse one but a 4x smaller unambiguous range, so the coarse correction
// must already have been applied to x.
func FineFreqOffset(x []complex128, fallingEdge int) float64 {
	idx := fallingEdge + fineSampleOffset
	if idx < 0 || idx >= len(x) {
		return 0
	}
	c64 := smoothedAutocorr(x, fineLag, fineBoxcar)
	theta := cmplx.Phase(c64[idx])
	return theta * Fs / (2 * math.Pi * fineLag)
}

// FreqOffsetEstimator runs both offset stages without mutating x: coarse is
// measured on x as given, then a scratch copy is derotated by the coarse
// estimate before the fine stage is measured, since the fine stage's
// unambiguous range assumes a mostly-corrected carrier. The receive
// pipeline instead rotates
// its working buffer in place between the two calls.
func FreqOffsetEstimator(x []complex128, fallingEdge int) (coarseHz, fineHz float64) {
	coarseHz = CoarseFreqOffset(x, fallingEdge)
	scratch := make([]complex128, len(x))
	copy(scratch, x)
	NcoRotator(scratch, coarseHz)
	fineHz = FineFreqOffset(scratch, fallingEdge)
	return coarseHz, fineHz
}

// NcoRotator nulls the estimated offset f_hz by multiplying x[n] by
// exp(-j*2*pi*n*f_hz/Fs), in place, over the full slice.
func NcoRotator(x []complex128, fHz float64) {
	step := -2 * math.Pi * fHz / Fs
	for n := range x {
		x[n] *= cmplx.Exp(complex(0, step*float64(n)))
	}
}
