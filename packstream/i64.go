package packstream

import (
	"math"
	"math/big"
)

// I64 is a lossless carrier for a signed 64-bit integer. Go's native int64
// already has the full 64 bits of precision PackStream's INTEGER type
// needs, so I64 is a thin value type over int64 rather than the two
// 32-bit-word struct a lossy host language would require. The High/Low
// accessors and the construction-from-big.Int path are kept because the
// wire format itself is defined in terms of a high/low word split, and
// because callers who asked for UseBigInteger semantics need a conversion
// target.
type I64 int64

// NewI64 wraps a native int64.
func NewI64(v int64) I64 { return I64(v) }

// NewI64FromBigInt converts an arbitrary-precision integer into an I64,
// wrapping (not saturating) if it doesn't fit. Callers that need
// out-of-range detection should check FitsI64 first.
func NewI64FromBigInt(v *big.Int) I64 {
	return I64(v.Int64())
}

// FitsI64 reports whether v is representable without loss as an I64.
func FitsI64(v *big.Int) bool {
	return v.IsInt64()
}

// Int64 returns the value as a native int64.
func (v I64) Int64() int64 { return int64(v) }

// High returns the high 32 bits of the two's-complement representation.
func (v I64) High() int32 { return int32(int64(v) >> 32) }

// Low returns the low 32 bits of the two's-complement representation.
func (v I64) Low() int32 { return int32(int64(v)) }

// BigInt converts to an arbitrary-precision integer.
func (v I64) BigInt() *big.Int { return big.NewInt(int64(v)) }

// Float64 converts to a host double, saturating to +/-Inf when the value
// falls outside the range a float64 can represent exactly without losing
// integer semantics. This mirrors the lossy-integer policy's
// toNumberOrInfinity rule: values in [-(2^53-1), 2^53-1] convert exactly,
// everything else saturates.
func (v I64) Float64() float64 {
	const maxSafeInteger = 1<<53 - 1
	n := int64(v)
	switch {
	case n > maxSafeInteger:
		return math.Inf(1)
	case n < -maxSafeInteger:
		return math.Inf(-1)
	default:
		return float64(n)
	}
}

// GreaterThanOrEqual reports whether v >= other.
func (v I64) GreaterThanOrEqual(other I64) bool { return v >= other }

// LessThan reports whether v < other.
func (v I64) LessThan(other I64) bool { return v < other }

// IsInt reports whether x is representable as an I64 without loss: any
// Go integer type, or a *big.Int that fits in 64 bits.
func IsInt(x interface{}) bool {
	switch t := x.(type) {
	case int, int8, int16, int32, int64, uint8, uint16, uint32, I64:
		return true
	case uint:
		return uint64(t) <= math.MaxInt64
	case uint64:
		return t <= math.MaxInt64
	case *big.Int:
		return t.IsInt64()
	default:
		return false
	}
}
