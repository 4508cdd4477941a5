package phy

import (
	"math"
	"math/rand"
	"testing"
)

// Map-then-demap must restore the bits under hard decision, for the two
// mandatory modulations, over random lengths.
func TestMapDemap_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, mod := range []Modulation{ModBPSK, ModQPSK} {
		c := NewConstellation(mod)
		nbpsc := c.BitsPerSymbol()
		for trial := 0; trial < 128; trial++ {
			l := 1 + rng.Intn(1024)
			l -= l % nbpsc
			if l == 0 {
				l = nbpsc
			}
			bits := make([]byte, l)
			for i := range bits {
				bits[i] = byte(rng.Intn(2))
			}

			symbols := c.MapBits(bits)
			llrs, err := SoftDemapper(symbols, mod)
			if err != nil {
				t.Fatalf("%s: demap: %v", mod, err)
			}
			hard := HardDecision(llrs)
			if len(hard) != l {
				t.Fatalf("%s trial %d: %d bits out, want %d", mod, trial, len(hard), l)
			}
			for i := range bits {
				if hard[i] != bits[i] {
					t.Fatalf("%s trial %d: bit %d wrong", mod, trial, i)
				}
			}
		}
	}
}

func TestConstellation_UnitAveragePower(t *testing.T) {
	for _, mod := range []Modulation{ModBPSK, ModQPSK, Mod16QAM, Mod64QAM} {
		c := NewConstellation(mod)
		var sum float64
		for _, p := range c.points {
			sum += real(p)*real(p) + imag(p)*imag(p)
		}
		avg := sum / float64(len(c.points))
		if math.Abs(avg-1) > 1e-12 {
			t.Errorf("%s: average power %g, want 1", mod, avg)
		}
	}
}

func TestSoftDemapper_QPSKOrdering(t *testing.T) {
	s := complex(0.5, -0.25)
	llrs, err := SoftDemapper([]complex128{s}, ModQPSK)
	if err != nil {
		t.Fatal(err)
	}
	if len(llrs) != 2 || llrs[0] != 0.5 || llrs[1] != -0.25 {
		t.Errorf("QPSK LLR order got %v, want [Re Im]", llrs)
	}
}

func TestSoftDemapper_RejectsQAM(t *testing.T) {
	for _, mod := range []Modulation{Mod16QAM, Mod64QAM} {
		if _, err := SoftDemapper([]complex128{1}, mod); err != ErrUnsupportedModulation {
			t.Errorf("%s: got %v, want ErrUnsupportedModulation", mod, err)
		}
	}
}
