package phy

import "math/cmplx"

// Packet detection thresholds.
const (
	detectorLag      = 16
	detectorBoxcar   = 32
	hysteresisHigh   = 0.85
	hysteresisLow    = 0.65
	fallingEdgeLimit = 1000
	epsilon          = 1e-12
)

// DetectionResult holds the full per-sample diagnostics from PacketDetector,
// plus the single scalar falling_edge the rest of the pipeline consumes.
type DetectionResult struct {
	Ratio       []float64
	Flag        []bool
	FallingEdge int
}

// PacketDetector finds the coarse frame start via sliding lag-16
// auto-correlation. Indices before the lag/boxcar window use
// zero-padded history, matching a causal streaming implementation.
func PacketDetector(x []complex128) DetectionResult {
	n := len(x)
	ratio := make([]float64, n)
	flag := make([]bool, n)

	c := make([]complex128, n) // c[i] = x[i] * conj(x[i-16])
	p := make([]float64, n)    // p[i] = |x[i]|^2
	for i := 0; i < n; i++ {
		if i >= detectorLag {
			c[i] = x[i] * cmplx.Conj(x[i-detectorLag])
		}
		p[i] = real(x[i])*real(x[i]) + imag(x[i])*imag(x[i])
	}

	var runningC complex128
	var runningP float64
	fallingEdge := -1
	flagState := false

	for i := 0; i < n; i++ {
		runningC += c[i]
		runningP += p[i]
		if i >= detectorBoxcar {
			runningC -= c[i-detectorBoxcar]
			runningP -= p[i-detectorBoxcar]
		}

		denom := runningP
		if denom < epsilon {
			denom = epsilon
		}
		r := cmplx.Abs(runningC) / denom
		ratio[i] = r

		if !flagState && r > hysteresisHigh {
			flagState = true
		} else if flagState && r < hysteresisLow {
			flagState = false
			if fallingEdge == -1 && i < fallingEdgeLimit {
				fallingEdge = i
			}
		}
		flag[i] = flagState
	}

	return DetectionResult{Ratio: ratio, Flag: flag, FallingEdge: fallingEdge}
}
