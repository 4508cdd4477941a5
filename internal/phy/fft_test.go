package phy

import (
	"math"
	"math/cmplx"
	"math/rand"
	"testing"
)

func approxEqual(a, b complex128, tol float64) bool {
	return cmplx.Abs(a-b) <= tol
}

func TestFFT_IFFT_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	x := make([]complex128, FFTSize)
	for i := range x {
		x[i] = complex(rng.NormFloat64(), rng.NormFloat64())
	}
	back := IFFT(FFT(x))
	for i := range x {
		if !approxEqual(back[i], x[i], 1e-9) {
			t.Fatalf("sample %d: %v != %v", i, back[i], x[i])
		}
	}
}

// Transmit applies the 64x-scaled inverse; receive divides the forward
// transform by 64. The two conventions must cancel exactly.
func TestTransmitIFFT_ScalingMatchesReceive(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	spectrum := make([]complex128, FFTSize)
	for i := range spectrum {
		spectrum[i] = complex(rng.NormFloat64(), rng.NormFloat64())
	}
	td := TransmitIFFT(spectrum)
	fd := FFT(td)
	for i := range fd {
		fd[i] /= complex(FFTSize, 0)
		if !approxEqual(fd[i], spectrum[i], 1e-9) {
			t.Fatalf("bin %d: %v != %v", i, fd[i], spectrum[i])
		}
	}
}

func TestFFT_SingleTone(t *testing.T) {
	x := make([]complex128, FFTSize)
	for n := range x {
		x[n] = cmplx.Exp(complex(0, 2*math.Pi*5*float64(n)/FFTSize))
	}
	fd := FFT(x)
	for k := range fd {
		want := complex(0, 0)
		if k == 5 {
			want = complex(FFTSize, 0)
		}
		if !approxEqual(fd[k], want, 1e-9) {
			t.Fatalf("bin %d: got %v, want %v", k, fd[k], want)
		}
	}
}

func TestShortTrainingSequence_Periodicity(t *testing.T) {
	sts := ShortTrainingSequence()
	if len(sts) != NumSTS*STSLen {
		t.Fatalf("STS length %d, want %d", len(sts), NumSTS*STSLen)
	}
	for i := STSLen; i < len(sts); i++ {
		if !approxEqual(sts[i], sts[i-STSLen], 1e-9) {
			t.Fatalf("STS not 16-periodic at %d", i)
		}
	}
}

func TestLongTrainingField_Structure(t *testing.T) {
	ltf := LongTrainingField()
	if len(ltf) != GI2Len+NumLTS*FFTSize {
		t.Fatalf("LTF length %d", len(ltf))
	}
	// GI2 is the tail of the symbol; T1 and T2 are identical.
	for i := 0; i < GI2Len; i++ {
		if !approxEqual(ltf[i], ltf[i+FFTSize], 1e-9) {
			t.Fatalf("GI2 sample %d is not a cyclic extension", i)
		}
	}
	for i := 0; i < FFTSize; i++ {
		if !approxEqual(ltf[GI2Len+i], ltf[GI2Len+FFTSize+i], 1e-9) {
			t.Fatalf("T1/T2 differ at %d", i)
		}
	}
	// The frequency content must be the +-1 pattern on 52 tones.
	fd := FFT(ltf[GI2Len : GI2Len+FFTSize])
	want := LTSFreq()
	for k := range fd {
		if !approxEqual(fd[k]/FFTSize, want[k], 1e-9) {
			t.Fatalf("LTS bin %d: got %v, want %v", k, fd[k]/FFTSize, want[k])
		}
	}
}

func TestLTSFreq_TonesAndNulls(t *testing.T) {
	lts := LTSFreq()
	nonzero := 0
	for _, v := range lts {
		if v != 0 {
			nonzero++
			if v != 1 && v != -1 {
				t.Fatalf("LTS tone value %v", v)
			}
		}
	}
	if nonzero != 52 {
		t.Errorf("LTS has %d active tones, want 52", nonzero)
	}
	if lts[0] != 0 {
		t.Errorf("DC bin must be null")
	}
}
