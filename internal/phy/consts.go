package phy

// Fixed parameters and lookup tables for the 802.11a/g OFDM PHY.
// Every value here is an IEEE 802.11a Clause 17 invariant, not a tunable.

const (
	// Fs is the receive sample rate in Hz.
	Fs = 20e6

	// FFTSize is the OFDM subcarrier count.
	FFTSize = 64
	// CPLen is the cyclic-prefix length in samples.
	CPLen = 16
	// SymbolLen is a full OFDM symbol: CP + body.
	SymbolLen = CPLen + FFTSize // 80

	// NumSTS is the short training symbol count, each STSLen samples.
	NumSTS = 10
	STSLen = 16
	// GI2Len is the long-training guard interval.
	GI2Len = 32
	// NumLTS is the long training symbol count, each FFTSize samples.
	NumLTS = 2

	// PreambleLen is STS + GI2 + 2*LTS = 160 + 32 + 128 = 320 samples.
	PreambleLen = NumSTS*STSLen + GI2Len + NumLTS*FFTSize

	// NumDataCarriers is the count of non-pilot, non-DC active subcarriers.
	NumDataCarriers = 48
	// NumPilotCarriers is the count of pilot subcarriers.
	NumPilotCarriers = 4

	// SampleAdvance is the default number of samples the FFT window is
	// pulled back into the cyclic prefix to guard against pre-cursor ISI.
	SampleAdvance = 1
)

// DATA_CARRIERS_IDX: the 48 FFT-bin indices carrying data, in ascending
// signed-subcarrier order (-26..-1, skipping pilots, then 1..26, skipping
// pilots), the order subcarriers are mapped on transmit and receive.
var DataCarriersIdx = buildDataCarriers()

// PILOT_CARRIERS_IDX: FFT bins {7, 21, 43, 57}, i.e. signed subcarriers
// {+7, +21, -21, -7}.
var PilotCarriersIdx = []int{7, 21, 43, 57}

// pilotSignedOrder is PilotCarriersIdx re-expressed as signed subcarrier
// indices in ascending order: -21, -7, +7, +21.
var pilotSignedOrder = []int{-21, -7, 7, 21}

// PilotBasePolarity aligns 1:1 with pilotSignedOrder ([-21,-7,+7,+21]).
var PilotBasePolarity = []float64{1, 1, 1, -1}

// PilotPolarity is the standard 127-symbol pseudo-random polarity sequence.
// Per the standard it is generated by the same x^7+x^4+1 scrambler LFSR used
// for data scrambling, seeded to all-ones, with no input XORed in;
// the feedback bit alone determines the polarity: 0 -> +1, 1 -> -1.
var PilotPolarity = buildPilotPolarity()

func buildPilotPolarity() [127]float64 {
	var seq [127]float64
	state := [7]byte{1, 1, 1, 1, 1, 1, 1}
	for i := range seq {
		feedback := state[6] ^ state[3]
		if feedback == 0 {
			seq[i] = 1
		} else {
			seq[i] = -1
		}
		for j := 6; j > 0; j-- {
			state[j] = state[j-1]
		}
		state[0] = feedback
	}
	return seq
}

func signedToBin(signed int) int {
	if signed < 0 {
		return signed + FFTSize
	}
	return signed
}

func isPilotSigned(signed int) bool {
	for _, p := range pilotSignedOrder {
		if p == signed {
			return true
		}
	}
	return false
}

func buildDataCarriers() []int {
	idx := make([]int, 0, NumDataCarriers)
	for s := -26; s <= 26; s++ {
		if s == 0 || isPilotSigned(s) {
			continue
		}
		idx = append(idx, signedToBin(s))
	}
	return idx
}

// ltsSignedSeq is the standard 802.11a long-training-symbol frequency
// sequence for signed subcarriers -26..26 (53 values, DC null at index 26).
var ltsSignedSeq = [53]float64{
	1, 1, -1, -1, 1, 1, -1, 1, -1, 1, 1, 1, 1, 1, 1, -1, -1, 1, 1, -1, 1, -1, 1, 1, 1, 1,
	0,
	1, -1, -1, 1, 1, -1, 1, -1, 1, -1, -1, -1, -1, -1, 1, 1, -1, -1, 1, -1, 1, -1, 1, 1, 1, 1,
}

// LTSFreq returns the long-training sequence in natural FFT-bin order
// (fftshift of the signed-index table), length 64, zero on guard/DC bins.
func LTSFreq() []complex128 {
	out := make([]complex128, FFTSize)
	for i, v := range ltsSignedSeq {
		signed := i - 26
		out[signedToBin(signed)] = complex(v, 0)
	}
	return out
}

// Modulation identifies a constellation scheme, keyed off the SIGNAL rate field.
type Modulation int

const (
	ModBPSK Modulation = iota
	ModQPSK
	Mod16QAM
	Mod64QAM
)

func (m Modulation) String() string {
	switch m {
	case ModBPSK:
		return "BPSK"
	case ModQPSK:
		return "QPSK"
	case Mod16QAM:
		return "16-QAM"
	case Mod64QAM:
		return "64-QAM"
	default:
		return "unknown"
	}
}

// RateInfo is one RATE_MAP entry: modulation plus its n_bpsc, n_cbps
// and n_dbps bit geometry.
type RateInfo struct {
	Modulation Modulation
	Mbps       float64
	NBPSC      int // coded bits per subcarrier
	NCBPS      int // coded bits per OFDM symbol
	NDBPS      int // data bits per OFDM symbol
	name       string
}

func (r RateInfo) Name() string { return r.name }

// RateMap is the 4-bit SIGNAL rate key lookup table (IEEE 802.11a Table 17-6).
var RateMap = map[int]RateInfo{
	0b1101: {ModBPSK, 6, 1, 48, 24, "BPSK 1/2"},
	0b1111: {ModBPSK, 9, 1, 48, 36, "BPSK 3/4"},
	0b0101: {ModQPSK, 12, 2, 96, 48, "QPSK 1/2"},
	0b0111: {ModQPSK, 18, 2, 96, 72, "QPSK 3/4"},
	0b1001: {Mod16QAM, 24, 4, 192, 96, "16-QAM 1/2"},
	0b1011: {Mod16QAM, 36, 4, 192, 144, "16-QAM 3/4"},
	0b0001: {Mod64QAM, 48, 6, 288, 192, "64-QAM 2/3"},
	0b0011: {Mod64QAM, 54, 6, 288, 216, "64-QAM 3/4"},
}

// SignalFieldRate is the rate_info used for the SIGNAL symbol itself: always
// BPSK rate-1/2, regardless of the payload's own RATE_MAP entry.
var SignalFieldRate = RateMap[0b1101]
