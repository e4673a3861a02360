package persistence

import (
	"database/sql/driver"
	"encoding/binary"
	"fmt"
	"math"
)

// Vector stores a float32 embedding as a little-endian binary BLOB.
type Vector []float32

// Value implements driver.Valuer.
func (v Vector) Value() (driver.Value, error) {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf, nil
}

// Scan implements sql.Scanner.
func (v *Vector) Scan(src any) error {
	if src == nil {
		*v = nil
		return nil
	}
	buf, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into Vector", src)
	}
	if len(buf)%4 != 0 {
		return fmt.Errorf("vector blob length %d is not a multiple of 4", len(buf))
	}
	out := make(Vector, len(buf)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	*v = out
	return nil
}
