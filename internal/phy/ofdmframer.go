package phy

import "github.com/jeongseonghan/ieee80211ag-phy/internal/fec"

// ModulateSymbol places 48 data-subcarrier values and the 4 pilots for
// OFDM symbol index symIdx into a 64-bin spectrum, IFFTs it, and adds the
// cyclic prefix, producing one 80-sample transmit symbol. symIdx 0 is the
// SIGNAL symbol, which anchors the pilot-polarity sequence.
func ModulateSymbol(dataSyms []complex128, symIdx int) []complex128 {
	spectrum := make([]complex128, FFTSize)
	for i, bin := range DataCarriersIdx {
		spectrum[bin] = dataSyms[i]
	}

	polaritySym := PilotPolarity[symIdx%len(PilotPolarity)]
	for idx, signed := range pilotSignedOrder {
		bin := signedToBin(signed)
		spectrum[bin] = complex(PilotBasePolarity[idx]*polaritySym, 0)
	}

	td := TransmitIFFT(spectrum)
	out := make([]complex128, SymbolLen)
	copy(out, td[FFTSize-CPLen:])
	copy(out[CPLen:], td)
	return out
}

// defaultScramblerSeed stands in when a caller passes seed 0; real
// transmitters draw a fresh nonzero seed per frame (cmd/ofdm80211 does).
const defaultScramblerSeed = 0b1011101

// TransmitFrame assembles a complete baseband frame at 20 MS/s for the
// given MAC payload, appending the little-endian CRC-32 to form the PSDU.
// See TransmitPSDU for the returned values.
func TransmitFrame(payload []byte, rateKey int, scramblerSeed int) (samples, symbolStream []complex128, err error) {
	return TransmitPSDU(fec.AppendCRC32(payload), rateKey, scramblerSeed)
}

// TransmitPSDU assembles a complete baseband frame at 20 MS/s: preamble,
// SIGNAL symbol (always BPSK 1/2), and the DATA field at rateKey —
// scrambled, convolutionally encoded, interleaved, mapped, and
// OFDM-framed. The PSDU is sent as given, trailing CRC included,
// so a caller can deliberately transmit a corrupted frame. The returned
// symbol stream is every mapped data-subcarrier value (SIGNAL first, 48
// per OFDM symbol), the reference a receiver's corrected symbols are
// measured against for EVM.
//
// scramblerSeed is the transmitter's nonzero 7-bit scrambler state; 0
// selects a fixed default so synthetic tests stay deterministic.
func TransmitPSDU(psdu []byte, rateKey int, scramblerSeed int) (samples, symbolStream []complex128, err error) {
	rate, ok := RateMap[rateKey]
	if !ok {
		return nil, nil, ErrUnknownRate
	}
	if scramblerSeed == 0 {
		scramblerSeed = defaultScramblerSeed
	}

	samples = make([]complex128, 0, PreambleLen+SymbolLen*8)
	samples = append(samples, Preamble()...)

	// SIGNAL: the 24 bits carry their own 6-bit zero tail, which flushes
	// the encoder; 24 bits encode to exactly one BPSK OFDM symbol.
	signalBits := BuildSignalField(rateKey, len(psdu))
	signalCoded := ConvolutionalEncoder(signalBits)
	signalInterleaved := Interleave(signalCoded, SignalFieldRate.NCBPS, SignalFieldRate.NBPSC)
	signalSyms := NewConstellation(SignalFieldRate.Modulation).MapBits(signalInterleaved)
	samples = append(samples, ModulateSymbol(signalSyms, 0)...)
	symbolStream = append(symbolStream, signalSyms...)

	dataBits := BuildDataBits(psdu, rate.NDBPS)
	scrambled := NewScrambler(scramblerSeed).Scramble(dataBits)
	// The 6 tail bits go out unscrambled (forced back to zero) so the
	// decoder lands in the zero state and the receiver can verify them
	// before descrambling.
	tailStart := serviceBits + len(psdu)*8
	for i := 0; i < tailBits; i++ {
		scrambled[tailStart+i] = 0
	}

	coded := ConvolutionalEncoder(scrambled)
	interleavedBits := make([]byte, 0, len(coded))
	dataConst := NewConstellation(rate.Modulation)
	for off := 0; off+rate.NCBPS <= len(coded); off += rate.NCBPS {
		interleavedBits = append(interleavedBits, Interleave(coded[off:off+rate.NCBPS], rate.NCBPS, rate.NBPSC)...)
	}
	numSyms := len(interleavedBits) / rate.NCBPS
	for i := 0; i < numSyms; i++ {
		symBits := interleavedBits[i*rate.NCBPS : (i+1)*rate.NCBPS]
		dataSyms := dataConst.MapBits(symBits)
		samples = append(samples, ModulateSymbol(dataSyms, i+1)...)
		symbolStream = append(symbolStream, dataSyms...)
	}

	return samples, symbolStream, nil
}
