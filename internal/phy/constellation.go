package phy

import "math"

// Constellation holds the mapper LUT for one modulation order: generated
// Gray-coded square constellations, normalized to unit average power.
type Constellation struct {
	mod    Modulation
	bpsc   int
	points []complex128
}

// sqrt2, sqrt10, sqrt42 are the standard normalization divisors.
var (
	sqrt2  = math.Sqrt(2)
	sqrt10 = math.Sqrt(10)
	sqrt42 = math.Sqrt(42)
)

// NewConstellation builds the LUT for a given modulation.
func NewConstellation(mod Modulation) *Constellation {
	c := &Constellation{mod: mod}
	switch mod {
	case ModBPSK:
		c.bpsc = 1
		c.points = []complex128{-1, 1}
	case ModQPSK:
		c.bpsc = 2
		c.points = []complex128{
			complex(-1, -1) / complex(sqrt2, 0),
			complex(-1, 1) / complex(sqrt2, 0),
			complex(1, -1) / complex(sqrt2, 0),
			complex(1, 1) / complex(sqrt2, 0),
		}
	case Mod16QAM:
		c.bpsc = 4
		c.points = qamPoints(4, sqrt10)
	case Mod64QAM:
		c.bpsc = 6
		c.points = qamPoints(8, sqrt42)
	default:
		c.bpsc = 1
		c.points = []complex128{-1, 1}
	}
	return c
}

// qamPoints builds a Gray-coded side x side square QAM constellation with
// levels {..-5,-3,-1,1,3,5..} on each axis, normalized by div.
func qamPoints(side int, div float64) []complex128 {
	levels := make([]float64, side)
	for i := range levels {
		levels[i] = float64(2*i - side + 1)
	}
	// Gray code over log2(side) bits per axis.
	bits := 0
	for (1 << bits) < side {
		bits++
	}
	points := make([]complex128, side*side)
	for row := 0; row < side; row++ {
		grayRow := row ^ (row >> 1)
		for col := 0; col < side; col++ {
			grayCol := col ^ (col >> 1)
			idx := (grayRow << bits) | grayCol
			points[idx] = complex(levels[col], levels[row]) / complex(div, 0)
		}
	}
	return points
}

// Map maps bpsc bits (MSB-first, 0/1 bytes) to one constellation symbol.
func (c *Constellation) Map(bits []byte) complex128 {
	idx := 0
	for _, b := range bits {
		idx = (idx << 1) | int(b&1)
	}
	if idx >= len(c.points) {
		idx = 0
	}
	return c.points[idx]
}

// MapBits maps a full bit stream (length a multiple of BitsPerSymbol) to symbols.
func (c *Constellation) MapBits(bits []byte) []complex128 {
	n := len(bits) / c.bpsc
	out := make([]complex128, n)
	for i := 0; i < n; i++ {
		out[i] = c.Map(bits[i*c.bpsc : (i+1)*c.bpsc])
	}
	return out
}

// BitsPerSymbol is n_bpsc for this modulation.
func (c *Constellation) BitsPerSymbol() int { return c.bpsc }
