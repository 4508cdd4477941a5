package phy

import (
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
)

// fft64 pools 64-point complex FFT engines. 802.11a/g OFDM symbols are
// fixed at 64 subcarriers, so the pool covers every caller; an engine's
// scratch storage is not safe for concurrent use, and pooling keeps
// callers processing independent frames in parallel from sharing one.
var fft64 = sync.Pool{New: func() any { return fourier.NewCmplxFFT(FFTSize) }}

// FFT computes the unnormalized 64-point discrete Fourier transform:
// X[k] = sum_n x[n] * exp(-2*pi*i*k*n/64). Callers on the receive path
// that want the Y = FFT(x)/64 convention divide the result themselves
// (see ChannelEstimator, SymbolEqualizer).
func FFT(x []complex128) []complex128 {
	if len(x) != FFTSize {
		return fftN(x, false)
	}
	eng := fft64.Get().(*fourier.CmplxFFT)
	out := eng.Coefficients(nil, x)
	fft64.Put(eng)
	return out
}

// IFFT computes the normalized inverse transform, so IFFT(FFT(x)) == x.
// gonum's Sequence is unnormalized (Sequence(Coefficients(x)) == N*x), so
// the 1/N scale is applied here.
func IFFT(x []complex128) []complex128 {
	var td []complex128
	if len(x) != FFTSize {
		td = fftN(x, true)
	} else {
		eng := fft64.Get().(*fourier.CmplxFFT)
		td = eng.Sequence(nil, x)
		fft64.Put(eng)
	}
	scale := complex(float64(len(td)), 0)
	for i := range td {
		td[i] /= scale
	}
	return td
}

// fftN handles the rare non-64 case, building a throwaway engine sized to
// the input. The inverse path returns gonum's unnormalized sequence.
func fftN(x []complex128, inverse bool) []complex128 {
	if len(x) == 0 {
		return nil
	}
	eng := fourier.NewCmplxFFT(len(x))
	if inverse {
		return eng.Sequence(nil, x)
	}
	return eng.Coefficients(nil, x)
}

// TransmitIFFT performs the OFDM transmit-side inverse transform. It is the
// N-scaled (unnormalized) inverse, mirroring the 1/64 the receive side
// applies on its forward transforms; this is exactly gonum's Sequence.
func TransmitIFFT(spectrum []complex128) []complex128 {
	if len(spectrum) != FFTSize {
		return fftN(spectrum, true)
	}
	eng := fft64.Get().(*fourier.CmplxFFT)
	out := eng.Sequence(nil, spectrum)
	fft64.Put(eng)
	return out
}
