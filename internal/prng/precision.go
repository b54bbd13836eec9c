package prng

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Precision is the scalar type a stream emits.
type Precision uint8

const (
	Uint32 Precision = iota + 1
	Uint64
	Float32
	Float64
)

// ParsePrecision accepts canonical names and the OpenCL C spellings
// (uint, ulong, float, double).
func ParsePrecision(name string) (Precision, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "uint32", "uint", "u32":
		return Uint32, nil
	case "uint64", "ulong", "u64":
		return Uint64, nil
	case "float32", "float", "f32":
		return Float32, nil
	case "float64", "double", "f64":
		return Float64, nil
	default:
		return 0, fmt.Errorf("unknown precision %q (expected uint32, uint64, float32 or float64)", name)
	}
}

func (p Precision) String() string {
	switch p {
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return fmt.Sprintf("precision(%d)", uint8(p))
	}
}

// CType is the OpenCL C type name of one element.
func (p Precision) CType() string {
	switch p {
	case Uint32:
		return "uint"
	case Uint64:
		return "ulong"
	case Float32:
		return "float"
	case Float64:
		return "double"
	default:
		return ""
	}
}

// Size is the element size in bytes.
func (p Precision) Size() int {
	switch p {
	case Uint32, Float32:
		return 4
	case Uint64, Float64:
		return 8
	default:
		return 0
	}
}

// Bits is the number of random bits one element needs from a state advance.
func (p Precision) Bits() int {
	return p.Size() * 8
}

func (p Precision) IsFloat() bool {
	return p == Float32 || p == Float64
}

func (p Precision) Valid() bool {
	return p >= Uint32 && p <= Float64
}

const (
	float32Scale = 1.0 / (1 << 24)
	float64Scale = 1.0 / (1 << 53)
)

// Put converts one native draw of the given width into an element and writes
// it little-endian into dst. Narrowing keeps the high bits; floats take the
// top 24 or 53 bits scaled into [0, 1).
func (p Precision) Put(dst []byte, native uint64, bits int) {
	if bits < 64 {
		native <<= 64 - bits
	}
	switch p {
	case Uint32:
		binary.LittleEndian.PutUint32(dst, uint32(native>>32))
	case Uint64:
		binary.LittleEndian.PutUint64(dst, native)
	case Float32:
		v := float32(native>>40) * float32Scale
		binary.LittleEndian.PutUint32(dst, math.Float32bits(v))
	case Float64:
		v := float64(native>>11) * float64Scale
		binary.LittleEndian.PutUint64(dst, math.Float64bits(v))
	}
}
