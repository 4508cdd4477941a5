package iqfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/klauspost/compress/zstd"
)

// Frame archive: a zstd-compressed stream of named complex vectors,
// holding pre-sliced per-frame captures for the test suite. Layout inside
// the compressed stream:
//
//	magic "IQAR" | u32 record count
//	per record: u16 name length | name bytes | u32 sample count |
//	            interleaved float64 I/Q pairs
//
// All integers and floats little-endian. Names keep their written order so
// a reference-vector archive lines up index-for-index with its companion.

var archiveMagic = [4]byte{'I', 'Q', 'A', 'R'}

const maxArchiveRecords = 1 << 20

// WriteArchive writes frames to path in the order given by names. Every
// name must be present in frames.
func WriteArchive(path string, names []string, frames map[string][]complex128) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("zstd writer: %w", err)
	}

	if _, err := zw.Write(archiveMagic[:]); err != nil {
		return err
	}
	if err := binary.Write(zw, binary.LittleEndian, uint32(len(names))); err != nil {
		return err
	}
	for _, name := range names {
		samples, ok := frames[name]
		if !ok {
			zw.Close()
			return fmt.Errorf("archive record %q has no frame data", name)
		}
		if len(name) > math.MaxUint16 {
			zw.Close()
			return fmt.Errorf("archive record name too long (%d bytes)", len(name))
		}
		if err := binary.Write(zw, binary.LittleEndian, uint16(len(name))); err != nil {
			return err
		}
		if _, err := io.WriteString(zw, name); err != nil {
			return err
		}
		if err := binary.Write(zw, binary.LittleEndian, uint32(len(samples))); err != nil {
			return err
		}
		for _, s := range samples {
			if err := binary.Write(zw, binary.LittleEndian, [2]float64{real(s), imag(s)}); err != nil {
				return err
			}
		}
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return f.Close()
}

// ReadArchive reads a frame archive, returning the record names in their
// stored order alongside the name-to-samples mapping.
func ReadArchive(path string) ([]string, map[string][]complex128, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer zr.Close()

	var magic [4]byte
	if _, err := io.ReadFull(zr, magic[:]); err != nil {
		return nil, nil, fmt.Errorf("read archive magic: %w", err)
	}
	if magic != archiveMagic {
		return nil, nil, fmt.Errorf("not a frame archive (magic %q)", magic[:])
	}

	var count uint32
	if err := binary.Read(zr, binary.LittleEndian, &count); err != nil {
		return nil, nil, fmt.Errorf("read record count: %w", err)
	}
	if count > maxArchiveRecords {
		return nil, nil, fmt.Errorf("archive claims %d records", count)
	}

	names := make([]string, 0, count)
	frames := make(map[string][]complex128, count)
	for i := uint32(0); i < count; i++ {
		var nameLen uint16
		if err := binary.Read(zr, binary.LittleEndian, &nameLen); err != nil {
			return nil, nil, fmt.Errorf("record %d: read name length: %w", i, err)
		}
		nameBuf := make([]byte, nameLen)
		if _, err := io.ReadFull(zr, nameBuf); err != nil {
			return nil, nil, fmt.Errorf("record %d: read name: %w", i, err)
		}
		var sampleCount uint32
		if err := binary.Read(zr, binary.LittleEndian, &sampleCount); err != nil {
			return nil, nil, fmt.Errorf("record %q: read sample count: %w", nameBuf, err)
		}
		samples := make([]complex128, sampleCount)
		for j := range samples {
			var pair [2]float64
			if err := binary.Read(zr, binary.LittleEndian, &pair); err != nil {
				return nil, nil, fmt.Errorf("record %q: read samples: %w", nameBuf, err)
			}
			samples[j] = complex(pair[0], pair[1])
		}
		name := string(nameBuf)
		names = append(names, name)
		frames[name] = samples
	}
	return names, frames, nil
}
