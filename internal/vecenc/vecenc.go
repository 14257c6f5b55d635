// Package vecenc encodes float32 vectors as BLOBs: a little-endian sequence
// of IEEE 754 values with no length prefix.
package vecenc

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Encode returns the BLOB form of vec.
func Encode(vec []float32) []byte {
	buf := make([]byte, len(vec)*4)
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// Decode converts a BLOB produced by Encode back into a vector.
func Decode(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("vecenc: invalid blob length %d (not multiple of 4)", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
