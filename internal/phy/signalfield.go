package phy

import "github.com/jeongseonghan/ieee80211ag-phy/internal/fec"

// SignalField holds the decoded contents of the 24-bit SIGNAL field: a
// 4-bit rate key, 12-bit little-endian length, even parity, and a 6-bit
// all-zero tail, plus the two validity flags a receiver uses to decide
// whether to trust the rest of the frame.
type SignalField struct {
	RateKey  int
	Length   int
	ParityOK bool
	TailOK   bool
	Rate     RateInfo
}

// ParseSignalField decodes 24 hard bits in the SIGNAL field's wire order:
// bits[0:4] rate, bits[4] reserved, bits[5:17] length (LSB first),
// bits[17] parity, bits[18:24] tail. Parity and tail failures are reported
// via the flags, not as errors, so a caller can still attempt the data
// decode for diagnostics; an unknown rate key is an error since
// nothing downstream can proceed without n_cbps/n_dbps.
func ParseSignalField(bits []byte) (SignalField, error) {
	var sf SignalField
	if len(bits) < 24 {
		return sf, ErrUnknownRate
	}

	rateKey := 0
	for i := 3; i >= 0; i-- {
		rateKey = (rateKey << 1) | int(bits[i])
	}
	sf.RateKey = rateKey

	length := 0
	for i := 0; i < 12; i++ {
		length |= int(bits[5+i]) << i
	}
	sf.Length = length

	ones := 0
	for i := 0; i < 17; i++ {
		ones += int(bits[i])
	}
	sf.ParityOK = (ones % 2) == int(bits[17])

	sf.TailOK = true
	for i := 18; i < 24; i++ {
		if bits[i] != 0 {
			sf.TailOK = false
			break
		}
	}

	rate, ok := RateMap[rateKey]
	if !ok {
		return sf, ErrUnknownRate
	}
	sf.Rate = rate
	return sf, nil
}

// DecodeSignalField takes the 48 equalized data-subcarrier values of the
// SIGNAL symbol and runs the BPSK-1/2 decode path: soft demap,
// deinterleave, Viterbi, parse. The SIGNAL field is always BPSK rate-1/2
// regardless of the payload rate.
func DecodeSignalField(symbols []complex128) (SignalField, error) {
	llrs, err := SoftDemapper(symbols, ModBPSK)
	if err != nil {
		return SignalField{}, err
	}
	deint := Deinterleave(llrs, SignalFieldRate.NCBPS, SignalFieldRate.NBPSC)
	// The SIGNAL field's own 6 tail bits (bits 18..23 of the 24) flush the
	// encoder, so all 24 bits come straight out of the trellis.
	bits := ViterbiDecoder(deint)
	return ParseSignalField(bits)
}

// BuildSignalField encodes rate/length into the 24 wire bits a transmitter
// sends, with even parity over bits[0:17] and a zero 6-bit tail.
func BuildSignalField(rateKey, length int) []byte {
	bits := make([]byte, 24)
	for i := 0; i < 4; i++ {
		bits[i] = byte((rateKey >> i) & 1)
	}
	for i := 0; i < 12; i++ {
		bits[5+i] = byte((length >> i) & 1)
	}
	ones := 0
	for i := 0; i < 17; i++ {
		ones += int(bits[i])
	}
	bits[17] = byte(ones % 2)
	return bits
}

// DataField holds the decoded PSDU payload and the two validity flags of
// the DATA decode path: tail_ok covers the 6 pre-descramble
// tail bits, crc_ok the trailing CRC-32 comparison.
type DataField struct {
	Service []byte
	PSDU    []byte
	TailOK  bool
	CRCOK   bool
}

const serviceBits = 16

// DecodeDataSymbols runs the DATA-field decode path over the
// equalized data-subcarrier values of the DATA symbols (48 per OFDM
// symbol, SIGNAL excluded): per-symbol soft demap and deinterleave,
// Viterbi over the full stream, tail check on the pre-descramble bits,
// scrambler-seed recovery from the known-zero service bits, descramble,
// and PSDU/CRC split.
func DecodeDataSymbols(symbols []complex128, rate RateInfo, psduLen int) (DataField, error) {
	var df DataField

	llrs := make([]float64, 0, len(symbols)/NumDataCarriers*rate.NCBPS)
	for off := 0; off+NumDataCarriers <= len(symbols); off += NumDataCarriers {
		l, err := SoftDemapper(symbols[off:off+NumDataCarriers], rate.Modulation)
		if err != nil {
			return df, err
		}
		llrs = append(llrs, Deinterleave(l, rate.NCBPS, rate.NBPSC)...)
	}

	decoded := ViterbiDecoder(llrs)
	if len(decoded) < serviceBits+psduLen*8+tailBits {
		return df, ErrTimingMiss
	}

	// The transmitter sends the 6 tail bits unscrambled, so they must be
	// zero before descrambling.
	df.TailOK = true
	for _, b := range decoded[serviceBits+psduLen*8 : serviceBits+psduLen*8+tailBits] {
		if b != 0 {
			df.TailOK = false
			break
		}
	}

	seed := SeedFromService(decoded[:serviceBits])
	descrambled := NewScrambler(seed).Descramble(decoded)

	parseDataBits(&df, descrambled, psduLen)
	return df, nil
}

// parseDataBits splits descrambled DATA bits into SERVICE, PSDU payload
// and trailing little-endian CRC-32, verifying the CRC.
func parseDataBits(df *DataField, bits []byte, psduLen int) {
	df.Service = bits[:serviceBits]

	psduRaw := bits[serviceBits : serviceBits+psduLen*8]
	psdu := make([]byte, psduLen)
	for i := 0; i < psduLen; i++ {
		var v byte
		for b := 0; b < 8; b++ {
			v |= psduRaw[i*8+b] << b
		}
		psdu[i] = v
	}

	if psduLen < 4 {
		df.PSDU = psdu
		return
	}
	var ok bool
	df.PSDU, ok = fec.SplitCRC32(psdu)
	df.CRCOK = ok
}

// BuildDataBits assembles the pre-scrambling DATA bit stream: SERVICE
// (16 zero bits) + PSDU bytes (trailing CRC-32 already in place) + 6 zero
// tail bits, zero-padded so the total bit count is a multiple of
// n_dbps. Bytes go out LSB first.
func BuildDataBits(psdu []byte, nDBPS int) []byte {
	bitLen := serviceBits + len(psdu)*8 + tailBits
	bits := make([]byte, bitLen)
	for i, v := range psdu {
		for b := 0; b < 8; b++ {
			bits[serviceBits+i*8+b] = (v >> b) & 1
		}
	}

	if rem := len(bits) % nDBPS; rem != 0 {
		bits = append(bits, make([]byte, nDBPS-rem)...)
	}
	return bits
}
