package convert

import (
	"encoding/binary"
	"math"

	"github.com/x448/float16"

	"github.com/ironsheep/pixel-marshal/internal/marshalerr"
)

// DType is the element type of an external array.
type DType int

const (
	Float32 DType = iota // default
	Float64
	Float16
	BFloat16
	Bool
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
)

var dtypeNames = map[DType]string{
	Float32:  "float32",
	Float64:  "float64",
	Float16:  "float16",
	BFloat16: "bfloat16",
	Bool:     "bool",
	Int8:     "int8",
	Int16:    "int16",
	Int32:    "int32",
	Int64:    "int64",
	Uint8:    "uint8",
	Uint16:   "uint16",
	Uint32:   "uint32",
	Uint64:   "uint64",
}

func (d DType) String() string {
	if s, ok := dtypeNames[d]; ok {
		return s
	}
	return "unknown"
}

// Valid reports whether d is one of the supported element types.
func (d DType) Valid() bool {
	_, ok := dtypeNames[d]
	return ok
}

// Size returns the element size in bytes.
func (d DType) Size() int {
	switch d {
	case Bool, Int8, Uint8:
		return 1
	case Float16, BFloat16, Int16, Uint16:
		return 2
	case Float32, Int32, Uint32:
		return 4
	case Float64, Int64, Uint64:
		return 8
	}
	return 0
}

// ParseDType maps a type name such as "uint8" or "float32" to a DType.
func ParseDType(name string) (DType, error) {
	for d, s := range dtypeNames {
		if s == name {
			return d, nil
		}
	}
	return 0, marshalerr.New(marshalerr.TypeMismatch, "convert.ParseDType",
		"unsupported dtype %q, expected a bool, integer or floating point type", name)
}

// load reads element i of data as float32.
func (d DType) load(data []byte, i int) float32 {
	le := binary.LittleEndian
	switch d {
	case Float32:
		return math.Float32frombits(le.Uint32(data[i*4:]))
	case Float64:
		return float32(math.Float64frombits(le.Uint64(data[i*8:])))
	case Float16:
		return float16.Frombits(le.Uint16(data[i*2:])).Float32()
	case BFloat16:
		return math.Float32frombits(uint32(le.Uint16(data[i*2:])) << 16)
	case Bool:
		if data[i] != 0 {
			return 1
		}
		return 0
	case Int8:
		return float32(int8(data[i]))
	case Int16:
		return float32(int16(le.Uint16(data[i*2:])))
	case Int32:
		return float32(int32(le.Uint32(data[i*4:])))
	case Int64:
		return float32(int64(le.Uint64(data[i*8:])))
	case Uint8:
		return float32(data[i])
	case Uint16:
		return float32(le.Uint16(data[i*2:]))
	case Uint32:
		return float32(le.Uint32(data[i*4:]))
	case Uint64:
		return float32(le.Uint64(data[i*8:]))
	}
	return 0
}

// store writes v as element i of data, narrowing as described on ToExternal.
func (d DType) store(data []byte, i int, v float32) {
	le := binary.LittleEndian
	switch d {
	case Float32:
		le.PutUint32(data[i*4:], math.Float32bits(v))
	case Float64:
		le.PutUint64(data[i*8:], math.Float64bits(float64(v)))
	case Float16:
		le.PutUint16(data[i*2:], float16.Fromfloat32(v).Bits())
	case BFloat16:
		le.PutUint16(data[i*2:], bfloat16Bits(v))
	case Bool:
		data[i] = 0
		if v != 0 {
			data[i] = 1
		}
	case Int8:
		data[i] = byte(int8(narrow(v, math.MinInt8, math.MaxInt8)))
	case Int16:
		le.PutUint16(data[i*2:], uint16(int16(narrow(v, math.MinInt16, math.MaxInt16))))
	case Int32:
		le.PutUint32(data[i*4:], uint32(int32(narrow(v, math.MinInt32, math.MaxInt32))))
	case Int64:
		le.PutUint64(data[i*8:], uint64(narrowInt64(v)))
	case Uint8:
		data[i] = uint8(narrow(v, 0, math.MaxUint8))
	case Uint16:
		le.PutUint16(data[i*2:], uint16(narrow(v, 0, math.MaxUint16)))
	case Uint32:
		le.PutUint32(data[i*4:], uint32(narrow(v, 0, math.MaxUint32)))
	case Uint64:
		le.PutUint64(data[i*8:], narrowUint64(v))
	}
}

// narrow rounds half away from zero and saturates to [lo, hi]. NaN becomes 0.
func narrow(v float32, lo, hi float64) int64 {
	if v != v {
		return 0
	}
	r := math.Round(float64(v))
	if r < lo {
		r = lo
	}
	if r > hi {
		r = hi
	}
	return int64(r)
}

func narrowInt64(v float32) int64 {
	if v != v {
		return 0
	}
	r := math.Round(float64(v))
	switch {
	case r >= math.MaxInt64:
		return math.MaxInt64
	case r <= math.MinInt64:
		return math.MinInt64
	}
	return int64(r)
}

func narrowUint64(v float32) uint64 {
	if v != v || v <= 0 {
		return 0
	}
	r := math.Round(float64(v))
	if r >= math.MaxUint64 {
		return math.MaxUint64
	}
	return uint64(r)
}

// bfloat16Bits keeps the upper half of the float32 bits, rounding to nearest
// even. NaN stays a quiet NaN.
func bfloat16Bits(v float32) uint16 {
	bits := math.Float32bits(v)
	if v != v {
		return uint16(bits>>16) | 0x40
	}
	bits += 0x7fff + (bits>>16)&1
	return uint16(bits >> 16)
}
