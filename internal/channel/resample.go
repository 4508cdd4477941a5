package channel

import "math"

// Upsample2x doubles the sample rate: zero-stuff then low-pass with a
// 62nd-order windowed-sinc filter cutting at a quarter of the new rate.
// Used when a transmit waveform generated at 20 MS/s must be pushed
// through defects modeled at 40 MS/s.
func Upsample2x(x []complex128) []complex128 {
	stuffed := make([]complex128, len(x)*2)
	for i, v := range x {
		stuffed[2*i] = 2 * v // gain of 2 restores the passband level
	}
	return firFilter(stuffed, lowpassTaps)
}

// Decimate2x halves the sample rate by taking every other sample, bringing
// a 40 MS/s waveform back to the 20 MS/s the receive chain works at; no
// pre-filter is applied since the OFDM signal occupies under half the
// decimated bandwidth.
func Decimate2x(x []complex128) []complex128 {
	out := make([]complex128, (len(x)+1)/2)
	for i := range out {
		out[i] = x[2*i]
	}
	return out
}

// lowpassTaps is the interpolation filter: cutoff 0.25 of the sample rate.
var lowpassTaps = lowPassTaps(62, 0.25)

// lowPassTaps designs a low-pass FIR by the windowed-sinc method: the
// ideal response 2*fc*sinc(2*fc*n) shaped by a Hamming window, then
// normalized to exactly unit DC gain so zero-stuffed interpolation does
// not shift the signal level. cutoff is in cycles per sample.
func lowPassTaps(order int, cutoff float64) []float64 {
	halfOrder := order / 2
	taps := make([]float64, order+1)
	var sum float64
	for i := range taps {
		n := i - halfOrder
		taps[i] = 2 * cutoff * sinc(2*cutoff*float64(n)) * hamming(i, order+1)
		sum += taps[i]
	}
	for i := range taps {
		taps[i] /= sum
	}
	return taps
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	return math.Sin(math.Pi*x) / (math.Pi * x)
}

// hamming computes the Hamming window function.
func hamming(n, total int) float64 {
	return 0.54 - 0.46*math.Cos(2*math.Pi*float64(n)/float64(total-1))
}

func firFilter(x []complex128, taps []float64) []complex128 {
	out := make([]complex128, len(x))
	for i := range x {
		var sum complex128
		kmax := len(taps)
		if i+1 < kmax {
			kmax = i + 1
		}
		for k := 0; k < kmax; k++ {
			sum += complex(taps[k], 0) * x[i-k]
		}
		out[i] = sum
	}
	return out
}
