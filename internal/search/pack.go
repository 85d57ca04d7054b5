package search

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrCorruptVector is returned when packed bytes cannot be decoded.
var ErrCorruptVector = errors.New("corrupt packed vector")

const (
	packHeaderSize = 8
	packEntrySize  = 12
)

// PackVector converts a sparse vector to compact bytes.
// Format: [dim uint32][count uint32] then count × (index uint32, value float64),
// little endian.
func PackVector(v Vector, dim int) []byte {
	buf := make([]byte, packHeaderSize+len(v)*packEntrySize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(dim))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(v)))

	offset := packHeaderSize
	for _, t := range v {
		binary.LittleEndian.PutUint32(buf[offset:offset+4], uint32(t.Index))
		binary.LittleEndian.PutUint64(buf[offset+4:offset+12], math.Float64bits(t.Weight))
		offset += packEntrySize
	}

	return buf
}

// UnpackVector converts packed bytes back to a sparse vector and the dimension
// it was packed with.
func UnpackVector(b []byte) (Vector, int, error) {
	if len(b) < packHeaderSize {
		return nil, 0, ErrCorruptVector
	}

	dim := int(binary.LittleEndian.Uint32(b[0:4]))
	count := int(binary.LittleEndian.Uint32(b[4:8]))
	if len(b) != packHeaderSize+count*packEntrySize {
		return nil, 0, ErrCorruptVector
	}
	if count == 0 {
		return nil, dim, nil
	}

	vec := make(Vector, count)
	offset := packHeaderSize
	for i := 0; i < count; i++ {
		idx := int(binary.LittleEndian.Uint32(b[offset : offset+4]))
		if idx >= dim || (i > 0 && idx <= vec[i-1].Index) {
			return nil, 0, ErrCorruptVector
		}
		vec[i] = Term{
			Index:  idx,
			Weight: math.Float64frombits(binary.LittleEndian.Uint64(b[offset+4 : offset+12])),
		}
		offset += packEntrySize
	}

	return vec, dim, nil
}
