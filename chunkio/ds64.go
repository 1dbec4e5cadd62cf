package chunkio

import (
	"encoding/binary"
	"fmt"
	"io"
)

// DS64TableEntry is one entry in the ds64 chunk's table of chunk sizes that
// overflowed their native 32-bit field (spec §4.9 RF64 upgrade path).
type DS64TableEntry struct {
	ID   string
	Size uint64
}

// DS64Chunk is the RF64 sidecar that carries 64-bit sizes for riff, data,
// and fact (sample count), plus an overflow table for any other chunk whose
// 32-bit size field was set to 0xFFFFFFFF.
type DS64Chunk struct {
	RiffSize    uint64
	DataSize    uint64
	SampleCount uint64
	Table       []DS64TableEntry
}

const ds64FixedSize = 8 + 8 + 8 + 4 // riffSize, dataSize, sampleCount, tableLength

// ParseDS64 decodes a ds64 chunk body.
func ParseDS64(body []byte) (DS64Chunk, error) {
	if len(body) < ds64FixedSize {
		return DS64Chunk{}, &ErrInvalidData{Reason: fmt.Sprintf("ds64 chunk too short: %d bytes", len(body))}
	}

	var d DS64Chunk

	d.RiffSize = binary.LittleEndian.Uint64(body[0:8])
	d.DataSize = binary.LittleEndian.Uint64(body[8:16])
	d.SampleCount = binary.LittleEndian.Uint64(body[16:24])

	tableLen := binary.LittleEndian.Uint32(body[24:28])
	off := 28

	for i := uint32(0); i < tableLen; i++ {
		if off+12 > len(body) {
			return d, &ErrInvalidData{Reason: "ds64 table entry truncated"}
		}

		d.Table = append(d.Table, DS64TableEntry{
			ID:   string(body[off : off+4]),
			Size: binary.LittleEndian.Uint64(body[off+4 : off+12]),
		})
		off += 12
	}

	return d, nil
}

// WriteTo encodes the ds64 chunk body.
func (d DS64Chunk) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, ds64FixedSize+12*len(d.Table))

	binary.LittleEndian.PutUint64(buf[0:8], d.RiffSize)
	binary.LittleEndian.PutUint64(buf[8:16], d.DataSize)
	binary.LittleEndian.PutUint64(buf[16:24], d.SampleCount)
	binary.LittleEndian.PutUint32(buf[24:28], uint32(len(d.Table))) //nolint:gosec // table length bounded in practice.

	off := 28
	for _, e := range d.Table {
		copy(buf[off:off+4], e.ID)
		binary.LittleEndian.PutUint64(buf[off+4:off+12], e.Size)
		off += 12
	}

	n, err := w.Write(buf)
	if err != nil {
		return int64(n), fmt.Errorf("chunkio: writing ds64 chunk: %w", err)
	}

	return int64(n), nil
}

// Lookup returns the 64-bit size of a chunk named id from the overflow
// table, if present.
func (d DS64Chunk) Lookup(id string) (uint64, bool) {
	for _, e := range d.Table {
		if e.ID == id {
			return e.Size, true
		}
	}

	return 0, false
}
