package phy

import (
	"math"
	"slices"
)

// ReceiveOptions are the caller-tunable knobs of the receive chain,
// mirroring the CLI flag surface.
type ReceiveOptions struct {
	// CorrectFrequencyOffset enables the two-stage CFO estimate/correct
	// pass. Disabling it is only useful on recordings already corrected
	// upstream.
	CorrectFrequencyOffset bool

	// UseMaxRatioCombining weights the 4 pilot estimates by channel
	// magnitude; when false, equal-gain combining (0.25 each) is used.
	UseMaxRatioCombining bool

	// SampleAdvance pulls the FFT window back into the cyclic prefix by
	// this many samples, guarding against pre-cursor ISI.
	SampleAdvance int
}

// DefaultReceiveOptions matches the CLI defaults.
func DefaultReceiveOptions() ReceiveOptions {
	return ReceiveOptions{
		CorrectFrequencyOffset: true,
		UseMaxRatioCombining:   true,
		SampleAdvance:          SampleAdvance,
	}
}

// ReceivedFrame is the outcome of decoding one frame through the full
// receive chain.
type ReceivedFrame struct {
	Signal SignalField
	Data   DataField

	// Symbols is the corrected data-subcarrier stream (SIGNAL symbol
	// first, 48 values per OFDM symbol), retained so callers can compute
	// EVM against a known transmit stream.
	Symbols []complex128

	Context *FrameContext
}

// ReceiveFrame runs the full acquisition-to-PSDU chain over one
// captured slice: packet detection, coarse/fine CFO correction, long-symbol
// timing, channel estimation, per-symbol equalization with pilot tracking,
// then the SIGNAL and DATA decode paths. The input slice is not modified;
// rotation happens on an internal copy.
//
// Failures return a nil or partially-filled frame plus one of the
// sentinel errors; parity/tail/CRC failures are reported through the
// frame's flags instead, with decoding carried as far as it can go.
func ReceiveFrame(x []complex128, opt ReceiveOptions) (*ReceivedFrame, error) {
	work := slices.Clone(x)

	det := PacketDetector(work)
	if det.FallingEdge <= 0 || det.FallingEdge > fallingEdgeMax {
		return nil, ErrDetectionMiss
	}

	fc := NewFrameContext()
	fc.FallingEdge = det.FallingEdge

	if opt.CorrectFrequencyOffset {
		fc.CoarseOffsetHz = CoarseFreqOffset(work, fc.FallingEdge)
		NcoRotator(work, fc.CoarseOffsetHz)
		fc.FineOffsetHz = FineFreqOffset(work, fc.FallingEdge)
		NcoRotator(work, fc.FineOffsetHz)
	}

	ltsTime := IFFT(LTSFreq())
	corr := LongSymbolCorrelator(ltsTime, work, fc.FallingEdge, opt.SampleAdvance)
	fc.LTPeakIndex = corr.PeakIndex
	if fc.LTPeakIndex < FFTSize {
		return nil, ErrTimingMiss
	}

	if err := ChannelEstimator(fc, work); err != nil {
		return nil, err
	}
	if !opt.UseMaxRatioCombining {
		for i := range fc.MRCWeights {
			fc.MRCWeights[i] = 0.25
		}
	}

	eq := NewSymbolEqualizer(fc)
	rf := &ReceivedFrame{Context: fc}

	signalSyms := eq.ProcessAll(work, 1)
	if len(signalSyms) == 0 {
		return nil, ErrTimingMiss
	}
	rf.Symbols = append(rf.Symbols, signalSyms[0]...)

	sf, err := DecodeSignalField(signalSyms[0])
	rf.Signal = sf
	if err != nil {
		return rf, err
	}

	numDataSyms := neededSymbols(sf.Length, sf.Rate.NDBPS)
	dataSyms := eq.ProcessAll(work, numDataSyms)
	flat := make([]complex128, 0, len(dataSyms)*NumDataCarriers)
	for _, s := range dataSyms {
		flat = append(flat, s...)
	}
	rf.Symbols = append(rf.Symbols, flat...)

	df, err := DecodeDataSymbols(flat, sf.Rate, sf.Length)
	rf.Data = df
	if err != nil {
		return rf, err
	}
	return rf, nil
}

// fallingEdgeMax is the upper bound of the valid falling-edge range
// (0, 600]; anything later means the detector latched onto something that
// cannot be a preamble near the start of the slice.
const fallingEdgeMax = 600

// neededSymbols is the number of n_dbps-wide OFDM symbols a psduLen-byte
// PSDU (CRC included) plus SERVICE and tail occupies, rounded up.
func neededSymbols(psduLen, nDBPS int) int {
	bits := serviceBits + psduLen*8 + tailBits
	return (bits + nDBPS - 1) / nDBPS
}

// EVM is the error vector magnitude between a reference symbol stream and
// the received one: 10*log10(mean |rx-ref|^2) in dB, over the shorter of
// the two streams. A perfect match is floored to avoid log of zero.
func EVM(ref, rx []complex128) float64 {
	n := len(ref)
	if len(rx) < n {
		n = len(rx)
	}
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := rx[i] - ref[i]
		sum += real(d)*real(d) + imag(d)*imag(d)
	}
	avg := sum / float64(n)
	if avg == 0 {
		avg = 1e-12
	}
	return 10 * math.Log10(avg)
}
