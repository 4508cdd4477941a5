package fec

import (
	"encoding/binary"
	"hash/crc32"
)

// CRC32 computes the frame check sequence over data: the standard IEEE 802
// polynomial 0xEDB88320 (reversed), initial value all-ones, final XOR
// all-ones. This is exactly hash/crc32's IEEE table.
func CRC32(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// AppendCRC32 appends the 4-byte little-endian CRC-32 to data, the wire
// order the PSDU carries it in.
func AppendCRC32(data []byte) []byte {
	result := make([]byte, len(data)+4)
	copy(result, data)
	binary.LittleEndian.PutUint32(result[len(data):], CRC32(data))
	return result
}

// SplitCRC32 strips the trailing little-endian CRC-32 from dataWithCRC.
// Returns the payload and whether the transmitted checksum matches the one
// recomputed over the payload.
func SplitCRC32(dataWithCRC []byte) ([]byte, bool) {
	if len(dataWithCRC) < 4 {
		return nil, false
	}
	data := dataWithCRC[:len(dataWithCRC)-4]
	expected := binary.LittleEndian.Uint32(dataWithCRC[len(dataWithCRC)-4:])
	return data, CRC32(data) == expected
}

// CRC32Bytes returns the CRC-32 as a 4-byte little-endian slice.
func CRC32Bytes(data []byte) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, CRC32(data))
	return buf
}
