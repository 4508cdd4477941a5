package phy

// SoftDemapper maps equalized data-subcarrier symbols to log-likelihood
// ratios. Only BPSK and QPSK are in the mandatory decode path;
// 16-/64-QAM are recognized by RATE_MAP but return ErrUnsupportedModulation.
func SoftDemapper(symbols []complex128, mod Modulation) ([]float64, error) {
	switch mod {
	case ModBPSK:
		llrs := make([]float64, len(symbols))
		for i, s := range symbols {
			llrs[i] = real(s)
		}
		return llrs, nil
	case ModQPSK:
		llrs := make([]float64, 0, len(symbols)*2)
		for _, s := range symbols {
			llrs = append(llrs, real(s), imag(s))
		}
		return llrs, nil
	default:
		return nil, ErrUnsupportedModulation
	}
}

// HardDecision converts a soft-bit (LLR) stream to hard 0/1 bits: positive
// sign is 1, negative (or zero) is 0.
func HardDecision(llrs []float64) []byte {
	bits := make([]byte, len(llrs))
	for i, v := range llrs {
		if v > 0 {
			bits[i] = 1
		}
	}
	return bits
}
