package phy

import (
	"math"
	"math/cmplx"
	"math/rand"
	"testing"
)

// identityContext builds a frame context for a flat unit channel.
func identityContext() *FrameContext {
	fc := NewFrameContext()
	for k := 0; k < FFTSize; k++ {
		fc.H[k] = 1
		fc.Eq[k] = 1
	}
	for i := range fc.MRCWeights {
		fc.MRCWeights[i] = 0.25
	}
	return fc
}

func randomQPSKSymbols(rng *rand.Rand, n int) []complex128 {
	c := NewConstellation(ModQPSK)
	bits := make([]byte, 2*n)
	for i := range bits {
		bits[i] = byte(rng.Intn(2))
	}
	return c.MapBits(bits)
}

func TestSymbolEqualizer_FlatChannelIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	data := randomQPSKSymbols(rng, NumDataCarriers)
	td := ModulateSymbol(data, 0)

	se := NewSymbolEqualizer(identityContext())
	out := se.ProcessSymbol(td[CPLen:])
	for i := range data {
		if cmplx.Abs(out[i]-data[i]) > 1e-9 {
			t.Fatalf("subcarrier %d: %v != %v", i, out[i], data[i])
		}
	}
}

// A constant phase rotation on the whole symbol shows up on all four
// pilots and must be removed by the common-phase correction.
func TestSymbolEqualizer_RemovesCommonPhase(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	data := randomQPSKSymbols(rng, NumDataCarriers)
	td := ModulateSymbol(data, 0)

	rot := cmplx.Exp(complex(0, 0.4))
	body := make([]complex128, FFTSize)
	for i := range body {
		body[i] = td[CPLen+i] * rot
	}

	se := NewSymbolEqualizer(identityContext())
	out := se.ProcessSymbol(body)
	for i := range data {
		if cmplx.Abs(out[i]-data[i]) > 1e-9 {
			t.Fatalf("subcarrier %d: residual rotation %v vs %v", i, out[i], data[i])
		}
	}
}

// A one-sample circular delay of the FFT window is a pure phase slope
// exp(-j*2*pi*k/64) across subcarriers; pilot slope tracking must take
// most of it out. The ring average only sees this one symbol, so the
// correction is exact up to the pilot-fit approximation.
func TestSymbolEqualizer_TracksPhaseSlope(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	data := randomQPSKSymbols(rng, NumDataCarriers)
	td := ModulateSymbol(data, 0)

	// Rotate the window one sample into the cyclic prefix.
	body := make([]complex128, FFTSize)
	copy(body, td[CPLen-1:CPLen-1+FFTSize])

	se := NewSymbolEqualizer(identityContext())
	out := se.ProcessSymbol(body)
	for i := range data {
		if cmplx.Abs(out[i]-data[i]) > 1e-6 {
			t.Fatalf("subcarrier %d: slope not removed: %v vs %v", i, out[i], data[i])
		}
	}
}

// The equalizer update is a 1/8 low-pass: after one symbol with phase
// error theta, eq picks up exp(-j*theta/8).
func TestSymbolEqualizer_SlowTrackingUpdate(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	data := randomQPSKSymbols(rng, NumDataCarriers)
	td := ModulateSymbol(data, 0)

	theta := 0.3
	rot := cmplx.Exp(complex(0, theta))
	body := make([]complex128, FFTSize)
	for i := range body {
		body[i] = td[CPLen+i] * rot
	}

	fc := identityContext()
	se := NewSymbolEqualizer(fc)
	se.ProcessSymbol(body)

	wantPhase := -theta / trackingGain
	for _, bin := range PilotCarriersIdx {
		got := cmplx.Phase(fc.Eq[bin])
		if math.Abs(got-wantPhase) > 1e-9 {
			t.Fatalf("bin %d: eq phase %g, want %g", bin, got, wantPhase)
		}
	}
}

func TestComputeMRCWeights_ZeroFallback(t *testing.T) {
	fc := NewFrameContext()
	computeMRCWeights(fc)
	for i, w := range fc.MRCWeights {
		if w != 0.25 {
			t.Errorf("weight %d = %g, want 0.25 fallback", i, w)
		}
	}
}

func TestComputeMRCWeights_SumToOne(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	fc := NewFrameContext()
	for k := range fc.H {
		fc.H[k] = complex(rng.NormFloat64(), rng.NormFloat64())
	}
	computeMRCWeights(fc)
	var sum float64
	for _, w := range fc.MRCWeights {
		if w < 0 {
			t.Fatalf("negative weight %g", w)
		}
		sum += w
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Errorf("weights sum to %g", sum)
	}
}

func TestChannelEstimator_FlatChannel(t *testing.T) {
	// A clean preamble through no channel at all: H must come back 1 on
	// every active tone and the floor value on nulls.
	clean := make([]complex128, 0, 600)
	clean = append(clean, make([]complex128, 100)...)
	clean = append(clean, Preamble()...)
	clean = append(clean, make([]complex128, 100)...)

	fc := NewFrameContext()
	fc.LTPeakIndex = 100 + PreambleLen - FFTSize // end of T1
	if err := ChannelEstimator(fc, clean); err != nil {
		t.Fatalf("estimate: %v", err)
	}

	lts := LTSFreq()
	for k := 0; k < FFTSize; k++ {
		if lts[k] != 0 {
			if cmplx.Abs(fc.H[k]-1) > 1e-9 {
				t.Fatalf("bin %d: H = %v, want 1", k, fc.H[k])
			}
		} else if fc.H[k] != complex(channelFloor, 0) {
			t.Fatalf("null bin %d: H = %v, want floor", k, fc.H[k])
		}
	}
}

func TestChannelEstimator_RejectsShortBuffer(t *testing.T) {
	fc := NewFrameContext()
	fc.LTPeakIndex = 10
	if err := ChannelEstimator(fc, make([]complex128, 512)); err != ErrTimingMiss {
		t.Fatalf("got %v, want ErrTimingMiss", err)
	}
}
