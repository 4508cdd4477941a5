package phy

// Long-symbol correlator search window, relative to falling_edge. The
// detector's falling edge lags the true STS end by the hysteresis drain of
// its 32-tap boxcar, which puts the end of T1 roughly 75..100 samples
// after it; the window is widened on both sides to cover detector jitter
// and multipath delay while still excluding the equal-magnitude peak at
// the end of T2, 64 samples later.
const (
	ltSearchLo = 40
	ltSearchHi = 110
)

// CorrelatorResult is LongSymbolCorrelator's diagnostic output.
type CorrelatorResult struct {
	PeakValue   complex128
	PeakIndex   int
	Correlation []complex128
}

// LongSymbolCorrelator produces sample-accurate timing by cross-correlating
// a 1-bit-per-axis quantized version of the ideal long training symbol
// against the received signal. lts is the 64-sample ideal long
// training symbol in the time domain; quantizing it to sign bits keeps the
// kernel flat-spectrum so the peak stays sharp through an uncorrected
// channel. The reported peak is the index of the last sample of T1 (one
// before the first sample of T2), pulled back by sampleAdvance into the
// cyclic prefix.
func LongSymbolCorrelator(lts []complex128, x []complex128, fallingEdge int, sampleAdvance int) CorrelatorResult {
	n := len(lts)
	// Sliding the FIR kernel conj(reverse(lhat)) over x is the same as the
	// inner product of conj(lhat) with the most recent n samples in forward
	// order, which is the form computed here.
	k := make([]complex128, n)
	for i, v := range lts {
		k[i] = complex(signOf(real(v)), -signOf(imag(v)))
	}

	lo := fallingEdge + ltSearchLo
	hi := fallingEdge + ltSearchHi
	if lo < n-1 {
		lo = n - 1
	}
	if hi > len(x)-1 {
		hi = len(x) - 1
	}

	corr := make([]complex128, len(x))
	bestIdx := -1
	var bestVal complex128
	bestMag := -1.0

	for idx := lo; idx <= hi; idx++ {
		var sum complex128
		for m := 0; m < n; m++ {
			sum += k[m] * x[idx-n+1+m]
		}
		corr[idx] = sum
		mag := real(sum)*real(sum) + imag(sum)*imag(sum)
		if mag > bestMag {
			bestMag = mag
			bestVal = sum
			bestIdx = idx
		}
	}

	peakIdx := -1
	if bestIdx >= 0 {
		peakIdx = bestIdx - sampleAdvance
	}

	return CorrelatorResult{PeakValue: bestVal, PeakIndex: peakIdx, Correlation: corr}
}

func signOf(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
