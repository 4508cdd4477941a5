package phy

import "math/cmplx"

const channelFloor = 1e-9

// ChannelEstimator extracts the two long training symbols around
// fc.LTPeakIndex, averages them, and fills fc with the per-subcarrier
// channel response H and equalizer coefficients eq = 1/H.
// It also derives the pilot-bin MRC weights used later by SymbolEqualizer.
func ChannelEstimator(fc *FrameContext, x []complex128) error {
	if fc.LTPeakIndex < FFTSize || fc.LTPeakIndex+FFTSize > len(x) {
		return ErrTimingMiss
	}

	t1 := x[fc.LTPeakIndex-FFTSize : fc.LTPeakIndex]
	t2 := x[fc.LTPeakIndex : fc.LTPeakIndex+FFTSize]
	lBar := make([]complex128, FFTSize)
	for i := range lBar {
		lBar[i] = (t1[i] + t2[i]) / 2
	}

	y := FFT(lBar)
	for i := range y {
		y[i] /= complex(FFTSize, 0)
	}

	ltx := LTSFreq()

	for k := 0; k < FFTSize; k++ {
		if ltx[k] != 0 {
			fc.H[k] = y[k] / ltx[k]
		} else {
			fc.H[k] = complex(channelFloor, 0)
		}
		fc.Eq[k] = 1 / fc.H[k]
	}

	computeMRCWeights(fc)
	return nil
}

// computeMRCWeights sets fc.MRCWeights from pilot-bin channel magnitudes:
// w_i = |H[pilot_i]| / sum_j |H[pilot_j]|, falling back to equal-gain
// (0.25 each) when the pilot magnitudes sum to zero. Weights
// are indexed in pilotSignedOrder ([-21,-7,+7,+21]), the same canonical
// order SymbolEqualizer uses for PilotBasePolarity and the pilot vector.
func computeMRCWeights(fc *FrameContext) {
	var sum float64
	var mags [NumPilotCarriers]float64
	for i, signed := range pilotSignedOrder {
		mags[i] = cmplx.Abs(fc.H[signedToBin(signed)])
		sum += mags[i]
	}
	if sum == 0 {
		for i := range fc.MRCWeights {
			fc.MRCWeights[i] = 0.25
		}
		return
	}
	for i := range fc.MRCWeights {
		fc.MRCWeights[i] = mags[i] / sum
	}
}
