package phy

import "math"

// stsSignedSeq is the standard 802.11a short-training-symbol frequency
// sequence for signed subcarriers -26..26, unscaled.
var stsSignedSeq = [53]complex128{
	0, 0, 1 + 1i, 0, 0, 0, -1 - 1i, 0, 0, 0, 1 + 1i, 0, 0, 0, -1 - 1i, 0, 0, 0, -1 - 1i, 0, 0, 0, 1 + 1i, 0, 0, 0,
	0,
	0, 0, 0, -1 - 1i, 0, 0, 0, -1 - 1i, 0, 0, 0, 1 + 1i, 0, 0, 0, 1 + 1i, 0, 0, 0, 1 + 1i, 0, 0, 0, 1 + 1i, 0, 0,
}

var stsScale = complex(math.Sqrt(13.0/6.0), 0)

// STSFreq returns the short-training frequency-domain sequence in natural
// FFT-bin order, scaled by sqrt(13/6) per the standard.
func STSFreq() []complex128 {
	out := make([]complex128, FFTSize)
	for i, v := range stsSignedSeq {
		signed := i - 26
		out[signedToBin(signed)] = v * stsScale
	}
	return out
}

// ShortTrainingSequence builds the 160-sample short training field: the
// 64-point IFFT of STSFreq() has period 16 (every 4th bin is nonzero), so
// the field is its first 16 samples tiled NumSTS times.
func ShortTrainingSequence() []complex128 {
	td := TransmitIFFT(STSFreq())
	period := td[:STSLen]
	out := make([]complex128, 0, NumSTS*STSLen)
	for i := 0; i < NumSTS; i++ {
		out = append(out, period...)
	}
	return out
}

// LongTrainingField builds the 160-sample long training field: a 32-sample
// cyclic prefix (the last half of one LTS period) followed by two back to
// back 64-sample LTS repetitions.
func LongTrainingField() []complex128 {
	td := TransmitIFFT(LTSFreq())
	out := make([]complex128, 0, GI2Len+NumLTS*FFTSize)
	out = append(out, td[FFTSize-GI2Len:]...)
	out = append(out, td...)
	out = append(out, td...)
	return out
}

// Preamble builds the full 320-sample preamble: short training field
// followed by the long training field.
func Preamble() []complex128 {
	out := make([]complex128, 0, PreambleLen)
	out = append(out, ShortTrainingSequence()...)
	out = append(out, LongTrainingField()...)
	return out
}
