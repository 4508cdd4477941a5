package phy

import "errors"

// Sentinel errors for the frame-local failure modes of the receiver. None of
// these ever abort the process; they are returned per-frame so a caller
// processing many frames can log and continue.
var (
	// ErrDetectionMiss: no falling edge in the first 1000 samples, or the
	// edge found is outside (0, 600].
	ErrDetectionMiss = errors.New("phy: packet detection miss")

	// ErrTimingMiss: lt_peak_index < 64 or an extraction window ran past
	// the end of the buffer.
	ErrTimingMiss = errors.New("phy: long-symbol timing miss")

	// ErrUnknownRate: the SIGNAL field's 4-bit rate key has no RATE_MAP entry.
	ErrUnknownRate = errors.New("phy: unknown rate key")

	// ErrUnsupportedModulation: SoftDemapper asked to demap 16-QAM/64-QAM,
	// which is recognized in RATE_MAP but out of the mandatory decode path.
	ErrUnsupportedModulation = errors.New("phy: unsupported modulation for soft demapping")
)
