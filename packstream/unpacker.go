package packstream

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"math/big"
)

// Unpacker reads PackStream-encoded values from an underlying
// io.Reader. An Unpacker is not safe for concurrent use.
type Unpacker struct {
	r     io.Reader
	hooks *Hooks

	// disableLosslessIntegers, when true, decodes every INTEGER marker
	// to a float64 instead of an I64 wrapper, saturating to +/-Inf
	// outside the exactly-representable range. This trades losslessness
	// for callers that never need values outside the float64-safe range
	// and find unwrapping I64 everywhere tedious.
	disableLosslessIntegers bool

	// useBigInteger, when true, decodes every INTEGER marker to
	// *big.Int regardless of magnitude, for callers that want a single
	// integer representation across the full range.
	useBigInteger bool

	scratch [8]byte
}

// UnpackerOption configures an Unpacker at construction time.
type UnpackerOption func(*Unpacker)

// WithUnpackerHooks installs the Hydrate hook used to translate decoded
// Structures into application values.
func WithUnpackerHooks(h *Hooks) UnpackerOption {
	return func(u *Unpacker) { u.hooks = h }
}

// WithDisableLosslessIntegers decodes integers to float64 instead of
// I64, saturating to +/-Inf outside the exactly-representable range.
func WithDisableLosslessIntegers(disable bool) UnpackerOption {
	return func(u *Unpacker) { u.disableLosslessIntegers = disable }
}

// WithUseBigInteger decodes integers to *big.Int regardless of
// magnitude.
func WithUseBigInteger(use bool) UnpackerOption {
	return func(u *Unpacker) { u.useBigInteger = use }
}

// NewUnpacker returns an Unpacker that reads from r.
func NewUnpacker(r io.Reader, opts ...UnpackerOption) *Unpacker {
	u := &Unpacker{r: r, hooks: DefaultHooks()}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *Unpacker) readFull(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(u.r, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, errUnexpectedEOF("value payload")
		}
		return nil, err
	}
	return buf, nil
}

func (u *Unpacker) readByte() (byte, error) {
	if _, err := io.ReadFull(u.r, u.scratch[:1]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return 0, errUnexpectedEOF("marker")
		}
		return 0, err
	}
	return u.scratch[0], nil
}

// Unpack reads one complete value and returns its decoded form, passed
// through the Unpacker's hydrate hook when the value is a Structure.
func (u *Unpacker) Unpack() (interface{}, error) {
	marker, err := u.readByte()
	if err != nil {
		return nil, err
	}
	return u.unpack(marker)
}

// unpack dispatches on an already-read marker byte, per the decode
// algorithm: Null, Boolean, Float-or-Integer, String, List, Bytes, Map,
// Structure, in that order, first match wins.
func (u *Unpacker) unpack(marker byte) (interface{}, error) {
	switch marker {
	case NULL:
		return nil, nil
	case TRUETHY:
		return true, nil
	case FALSEY:
		return false, nil
	case FLOAT_64:
		return u.unpackFloat()
	case INT_8, INT_16, INT_32, INT_64:
		return u.unpackSizedInt(marker)
	case STRING_8, STRING_16, STRING_32:
		return u.unpackString(marker)
	case LIST_8, LIST_16, LIST_32:
		return u.unpackList(marker)
	case BYTES_8_MARKER, BYTES_16_MARKER, BYTES_32_MARKER:
		return u.unpackBytes(marker)
	case MAP_8, MAP_16, MAP_32:
		return u.unpackMap(marker)
	case STRUCT_8_MARKER, STRUCT_16_MARKER:
		return u.unpackStructure(marker)
	}

	// Tiny integers occupy both the bottom of the byte range (0x00-0x7F,
	// positive) and the top (0xF0-0xFF, negative); every other marker
	// value was handled by the exact-match switch above, so whatever
	// remains here that reinterprets as int8 in [-16, 127] is a tiny
	// int.
	if isTinyIntMarker(marker) {
		return u.wrapInt(int64(int8(marker)))
	}

	high := marker & MARKER_HIGH_NIBBLE_MASK
	low := marker & MARKER_LOW_NIBBLE_MASK

	switch high {
	case TINY_STRING_MARKER_BASE:
		return u.unpackStringOfSize(int(low))
	case TINY_LIST_MARKER_BASE:
		return u.unpackListOfSize(int(low))
	case TINY_MAP_MARKER_BASE:
		return u.unpackMapOfSize(int(low))
	case TINY_STRUCT_MARKER_BASE:
		return u.unpackStructureOfSize(int(low))
	}

	return nil, errUnknownMarker(marker)
}

// Additional named markers for the fixed-width forms not already in the
// shared constant block (kept local since unpacking is the only place
// that needs to name them individually for the marker switch).
const (
	STRING_8  = STRING_8_MARKER
	STRING_16 = STRING_16_MARKER
	STRING_32 = STRING_32_MARKER
	LIST_8    = LIST_8_MARKER
	LIST_16   = LIST_16_MARKER
	LIST_32   = LIST_32_MARKER
	MAP_8     = MAP_8_MARKER
	MAP_16    = MAP_16_MARKER
	MAP_32    = MAP_32_MARKER
)

// isTinyIntMarker reports whether marker, reinterpreted as int8, falls
// in the tiny-integer range (-16..127). Every byte value reinterprets
// to some int8 in [-128, 127], so this also excludes int8 values in
// [-128, -17], which instead belong to a type marker (e.g. 0xC8 = -56
// as int8, which is INT_8, not a tiny int).
func isTinyIntMarker(marker byte) bool {
	switch marker {
	case NULL, FLOAT_64, FALSEY, TRUETHY, INT_8, INT_16, INT_32, INT_64,
		STRING_8_MARKER, STRING_16_MARKER, STRING_32_MARKER,
		LIST_8_MARKER, LIST_16_MARKER, LIST_32_MARKER,
		MAP_8_MARKER, MAP_16_MARKER, MAP_32_MARKER,
		STRUCT_8_MARKER, STRUCT_16_MARKER,
		BYTES_8_MARKER, BYTES_16_MARKER, BYTES_32_MARKER:
		return false
	}
	v := int8(marker)
	return int64(v) >= TINY_INT_MIN && int64(v) <= TINY_INT_MAX
}

func (u *Unpacker) unpackFloat() (interface{}, error) {
	b, err := u.readFull(8)
	if err != nil {
		return nil, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

func (u *Unpacker) unpackSizedInt(marker byte) (interface{}, error) {
	switch marker {
	case INT_8:
		b, err := u.readFull(1)
		if err != nil {
			return nil, err
		}
		return u.wrapInt(int64(int8(b[0])))
	case INT_16:
		b, err := u.readFull(2)
		if err != nil {
			return nil, err
		}
		return u.wrapInt(int64(int16(binary.BigEndian.Uint16(b))))
	case INT_32:
		b, err := u.readFull(4)
		if err != nil {
			return nil, err
		}
		return u.wrapInt(int64(int32(binary.BigEndian.Uint32(b))))
	default: // INT_64
		b, err := u.readFull(8)
		if err != nil {
			return nil, err
		}
		return u.wrapInt(int64(binary.BigEndian.Uint64(b)))
	}
}

// wrapInt applies the integer representation policy: lossless I64 by
// default, a saturating float64 when disableLosslessIntegers is set,
// *big.Int when useBigInteger is set (useBigInteger takes precedence if
// both are set, since it's the strictly more general representation).
func (u *Unpacker) wrapInt(n int64) (interface{}, error) {
	switch {
	case u.useBigInteger:
		return big.NewInt(n), nil
	case u.disableLosslessIntegers:
		return I64(n).Float64(), nil
	default:
		return I64(n), nil
	}
}

func (u *Unpacker) readSize(marker byte, m8, m16, m32 byte) (int, error) {
	switch marker {
	case m8:
		b, err := u.readFull(1)
		if err != nil {
			return 0, err
		}
		return int(b[0]), nil
	case m16:
		b, err := u.readFull(2)
		if err != nil {
			return 0, err
		}
		// The high byte contributes bits 8-15, the low byte bits 0-7.
		// An earlier in-progress version of this codec masked both bytes
		// to the same 0xFF range without shifting the high byte into
		// place, silently truncating any STRING_16/MAP_16 size above
		// 255; that bug is not reproduced here.
		return int(binary.BigEndian.Uint16(b)), nil
	case m32:
		b, err := u.readFull(4)
		if err != nil {
			return 0, err
		}
		return int(binary.BigEndian.Uint32(b)), nil
	}
	return 0, errUnknownMarker(marker)
}

func (u *Unpacker) unpackString(marker byte) (interface{}, error) {
	size, err := u.readSize(marker, STRING_8, STRING_16, STRING_32)
	if err != nil {
		return nil, err
	}
	return u.unpackStringOfSize(size)
}

func (u *Unpacker) unpackStringOfSize(size int) (interface{}, error) {
	if size == 0 {
		return "", nil
	}
	b, err := u.readFull(size)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (u *Unpacker) unpackBytes(marker byte) (interface{}, error) {
	size, err := u.readSize(marker, BYTES_8_MARKER, BYTES_16_MARKER, BYTES_32_MARKER)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return []byte{}, nil
	}
	return u.readFull(size)
}

func (u *Unpacker) unpackList(marker byte) (interface{}, error) {
	size, err := u.readSize(marker, LIST_8, LIST_16, LIST_32)
	if err != nil {
		return nil, err
	}
	return u.unpackListOfSize(size)
}

func (u *Unpacker) unpackListOfSize(size int) (interface{}, error) {
	out := make([]interface{}, size)
	for i := 0; i < size; i++ {
		marker, err := u.readByte()
		if err != nil {
			return nil, err
		}
		v, err := u.unpack(marker)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (u *Unpacker) unpackMap(marker byte) (interface{}, error) {
	size, err := u.readSize(marker, MAP_8, MAP_16, MAP_32)
	if err != nil {
		return nil, err
	}
	return u.unpackMapOfSize(size)
}

func (u *Unpacker) unpackMapOfSize(size int) (interface{}, error) {
	out := NewOrderedMap()
	for i := 0; i < size; i++ {
		keyMarker, err := u.readByte()
		if err != nil {
			return nil, err
		}
		key, err := u.unpack(keyMarker)
		if err != nil {
			return nil, err
		}
		keyStr, ok := key.(string)
		if !ok {
			// Well-formed input always has string keys. A malformed key
			// is not rejected here; it is coerced to its printed form so
			// decoding can continue over the remaining entries.
			keyStr = fmt.Sprint(key)
		}
		valMarker, err := u.readByte()
		if err != nil {
			return nil, err
		}
		val, err := u.unpack(valMarker)
		if err != nil {
			return nil, err
		}
		// Duplicate keys on decode: last write wins.
		out.Set(keyStr, val)
	}
	return out, nil
}

// unpackStructure reads a Structure's size header. There is no
// STRUCT_32: a Structure's field count is capped at MaxStructFields, so
// only the 8-bit and 16-bit headers exist.
func (u *Unpacker) unpackStructure(marker byte) (interface{}, error) {
	var size int
	var err error
	switch marker {
	case STRUCT_8_MARKER:
		var b []byte
		b, err = u.readFull(1)
		if err == nil {
			size = int(b[0])
		}
	case STRUCT_16_MARKER:
		var b []byte
		b, err = u.readFull(2)
		if err == nil {
			size = int(binary.BigEndian.Uint16(b))
		}
	default:
		return nil, errUnknownMarker(marker)
	}
	if err != nil {
		return nil, err
	}
	return u.unpackStructureOfSize(size)
}

func (u *Unpacker) unpackStructureOfSize(size int) (interface{}, error) {
	signature, err := u.readByte()
	if err != nil {
		return nil, err
	}
	fields := make([]interface{}, size)
	for i := 0; i < size; i++ {
		marker, err := u.readByte()
		if err != nil {
			return nil, err
		}
		v, err := u.unpack(marker)
		if err != nil {
			return nil, err
		}
		fields[i] = v
	}
	s := Structure{Signature: signature, Fields: fields}
	return u.hooks.hydrate(s)
}
