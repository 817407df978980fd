package transport

import (
	"math"

	"github.com/nattery/edge-bridge/internal/registry"
)

// DecodeValue converts the raw words read for a register into a scaled
// real number. A short word buffer (fewer words than the data type
// requires) yields (0, false) rather than a panic or error; decoding
// failures are absent values, not thrown exceptions.
func DecodeValue(words []uint16, dt registry.DataType, scale float64) (float64, bool) {
	switch dt {
	case registry.U16:
		if len(words) < 1 {
			return 0, false
		}
		return float64(words[0]) * scale, true

	case registry.I16:
		if len(words) < 1 {
			return 0, false
		}
		return float64(int16(words[0])) * scale, true

	case registry.U32:
		if len(words) < 2 {
			return 0, false
		}
		v := uint32(words[0])<<16 | uint32(words[1])
		return float64(v) * scale, true

	case registry.I32:
		if len(words) < 2 {
			return 0, false
		}
		v := uint32(words[0])<<16 | uint32(words[1])
		return float64(int32(v)) * scale, true

	case registry.F32:
		if len(words) < 2 {
			return 0, false
		}
		bits := uint32(words[0])<<16 | uint32(words[1])
		return float64(math.Float32frombits(bits)) * scale, true

	case registry.Bool:
		if len(words) < 1 {
			return 0, false
		}
		if words[0] != 0 {
			return 1, true
		}
		return 0, true

	default:
		return 0, false
	}
}

// EncodeU16OrI16 converts a caller-supplied value into the on-wire word
// for a write. Only U16 and I16 are supported for writes; callers must
// reject wider types before calling this.
func EncodeU16OrI16(value float64, dt registry.DataType, scale float64) uint16 {
	scaled := int64(value / scale)
	if dt == registry.I16 {
		return uint16(int16(scaled))
	}
	return uint16(uint32(scaled))
}
