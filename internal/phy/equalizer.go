package phy

import "math/cmplx"

const (
	slopeRingSize = 8
	trackingGain  = 8 // 1/8 first-order low-pass on theta/slope updates
)

// SymbolEqualizer equalizes one OFDM data symbol at a time, tracking
// residual common phase and phase-slope via pilot subcarriers and slowly
// adapting the channel equalizer between symbols. One instance
// is scoped to a single frame; its ring buffer of slope history does not
// survive past the frame.
//
// Symbol index 0 is the SIGNAL symbol; the counter advances on every
// ProcessSymbol call, so a single instance must see SIGNAL first and the
// data symbols after it, in order.
type SymbolEqualizer struct {
	fc        *FrameContext
	slopeRing [slopeRingSize]float64
	ringFill  int
	ringPos   int
	symIndex  int
}

// NewSymbolEqualizer wraps a channel-estimated FrameContext for per-symbol
// equalization. fc.Eq must already hold the channel estimator's 1/H.
func NewSymbolEqualizer(fc *FrameContext) *SymbolEqualizer {
	return &SymbolEqualizer{fc: fc}
}

// binToSigned maps an FFT bin (0..63) to its signed subcarrier index
// (0..31 -> 0..31, 32..63 -> -32..-1).
func binToSigned(bin int) int {
	if bin < FFTSize/2 {
		return bin
	}
	return bin - FFTSize
}

// ProcessSymbol equalizes the 64 time-domain samples of one OFDM symbol
// (CP already stripped by the caller) and returns the 48 corrected
// data-subcarrier values, in DataCarriersIdx order.
func (se *SymbolEqualizer) ProcessSymbol(symbolSamples []complex128) []complex128 {
	i := se.symIndex
	se.symIndex++

	y := FFT(symbolSamples)
	for k := range y {
		y[k] /= complex(FFTSize, 0)
	}

	z := make([]complex128, FFTSize)
	for k := range z {
		z[k] = y[k] * se.fc.Eq[k]
	}

	// Derotate the 4 pilots by the expected polarity for symbol i; a clean
	// channel leaves each near 1+0j, so their phases measure the residual.
	polaritySym := PilotPolarity[i%len(PilotPolarity)]
	var p [NumPilotCarriers]complex128
	for idx, signed := range pilotSignedOrder {
		bin := signedToBin(signed)
		expected := PilotBasePolarity[idx] * polaritySym
		p[idx] = z[bin] * complex(expected, 0)
	}

	// Weighted-average pilot gives the common-phase estimate.
	var aBar complex128
	for idx := range p {
		aBar += complex(se.fc.MRCWeights[idx], 0) * p[idx]
	}
	theta := cmplx.Phase(aBar)

	// Weighted phase-slope across frequency. With equal pilot weights the
	// symmetric pilot positions cancel the common theta out of the slope;
	// with unequal MRC weights a theta-proportional term remains in it.
	var slope float64
	for idx, signed := range pilotSignedOrder {
		phi := cmplx.Phase(p[idx])
		slope += se.fc.MRCWeights[idx] * (phi / float64(signed))
	}

	se.pushSlope(slope)
	sBar := se.averageSlope()

	// Common-phase then phase-slope correction, per FFT bin.
	corrected := make([]complex128, FFTSize)
	for bin := range z {
		signed := binToSigned(bin)
		phase := -theta - float64(signed)*sBar
		corrected[bin] = z[bin] * cmplx.Exp(complex(0, phase))
	}

	// Slow equalizer tracking update, 1/8 loop gain.
	thetaUpdate := cmplx.Exp(complex(0, -theta/trackingGain))
	for bin := range se.fc.Eq {
		signed := binToSigned(bin)
		slopeUpdate := cmplx.Exp(complex(0, -float64(signed)*sBar/trackingGain))
		se.fc.Eq[bin] *= thetaUpdate * slopeUpdate
	}

	out := make([]complex128, NumDataCarriers)
	for idx, bin := range DataCarriersIdx {
		out[idx] = corrected[bin]
	}
	return out
}

func (se *SymbolEqualizer) pushSlope(s float64) {
	se.slopeRing[se.ringPos] = s
	se.ringPos = (se.ringPos + 1) % slopeRingSize
	if se.ringFill < slopeRingSize {
		se.ringFill++
	}
}

func (se *SymbolEqualizer) averageSlope() float64 {
	if se.ringFill == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < se.ringFill; i++ {
		sum += se.slopeRing[i]
	}
	return sum / float64(se.ringFill)
}

// ProcessAll equalizes up to maxSymbols consecutive OFDM symbols of the
// full received slice x, resuming from wherever the equalizer's symbol
// counter left off. Symbol i's FFT window starts at
// fc.LTPeakIndex + 64 + 16 + 80*i; the loop stops early
// once the next window would exceed the input.
func (se *SymbolEqualizer) ProcessAll(x []complex128, maxSymbols int) [][]complex128 {
	out := make([][]complex128, 0, maxSymbols)
	base := se.fc.LTPeakIndex + FFTSize + CPLen
	for n := 0; n < maxSymbols; n++ {
		start := base + SymbolLen*se.symIndex
		if start+FFTSize > len(x) {
			break
		}
		out = append(out, se.ProcessSymbol(x[start:start+FFTSize]))
	}
	return out
}
