package phy

// FrameContext is the mutable record built up through the receive
// pipeline. It is created per input waveform slice and discarded once the
// frame's PSDU is produced or the frame is dropped — no state survives
// across frames, and nothing here is shared between concurrent callers.
type FrameContext struct {
	FallingEdge int // -1 sentinel: not found

	CoarseOffsetHz float64
	FineOffsetHz   float64

	LTPeakIndex int

	H          [FFTSize]complex128 // channel frequency response, FFT-bin order
	Eq         [FFTSize]complex128 // 1/H, floored on null reference tones
	MRCWeights [NumPilotCarriers]float64
}

// NewFrameContext returns a zero-valued context with the sentinel falling
// edge set, ready for PacketDetector.
func NewFrameContext() *FrameContext {
	return &FrameContext{FallingEdge: -1, LTPeakIndex: -1}
}
