package packstream

import (
	"encoding/binary"
	"io"
	"math"
	"math/big"
	"reflect"
)

// Packer writes Go values to an underlying io.Writer in PackStream's
// marker-prefixed wire form. A Packer is not safe for concurrent use.
type Packer struct {
	w     io.Writer
	hooks *Hooks

	// byteArraysSupported gates whether []byte is written as PackStream's
	// BYTES type or rejected outright. Some peers negotiate byte arrays
	// off and must never see a BYTES marker.
	byteArraysSupported bool

	scratch [9]byte
}

// PackerOption configures a Packer at construction time.
type PackerOption func(*Packer)

// WithPackerHooks installs the Dehydrate hook used to translate
// application values into values the codec already understands.
func WithPackerHooks(h *Hooks) PackerOption {
	return func(p *Packer) { p.hooks = h }
}

// WithByteArraysSupported toggles whether []byte values may be packed as
// BYTES. Defaults to true.
func WithByteArraysSupported(supported bool) PackerOption {
	return func(p *Packer) { p.byteArraysSupported = supported }
}

// NewPacker returns a Packer that writes to w.
func NewPacker(w io.Writer, opts ...PackerOption) *Packer {
	p := &Packer{w: w, hooks: DefaultHooks(), byteArraysSupported: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Packer) write(b []byte) error {
	_, err := p.w.Write(b)
	return err
}

func (p *Packer) writeByte(b byte) error {
	p.scratch[0] = b
	return p.write(p.scratch[:1])
}

// Pack encodes v and writes its PackStream wire form. v is first passed
// through the Packer's dehydrate hook, then dispatched in this order:
// Null (a bare Undefined packs as Null), Boolean, floats, fixed-width and
// arbitrary-precision integers, strings, byte arrays (gated), Structure,
// OrderedMap, any type implementing Marshaler, and finally, by
// reflection, other slices and arrays as lists and string-keyed maps as
// maps. A value that matches nothing is a fatal encode error.
func (p *Packer) Pack(v interface{}) error {
	dehydrated, err := p.hooks.dehydrate(v)
	if err != nil {
		return err
	}
	return p.pack(dehydrated)
}

func (p *Packer) pack(v interface{}) error {
	switch t := v.(type) {
	case nil:
		return p.packNull()
	case undefinedType:
		// A bare top-level Undefined has no list/map context to be
		// elided or substituted within; treat it as Null.
		return p.packNull()
	case bool:
		return p.packBool(t)
	case float32:
		return p.packFloat(float64(t))
	case float64:
		return p.packFloat(t)
	case int:
		return p.packInt(int64(t))
	case int8:
		return p.packInt(int64(t))
	case int16:
		return p.packInt(int64(t))
	case int32:
		return p.packInt(int64(t))
	case int64:
		return p.packInt(t)
	case uint:
		return p.packUint(uint64(t))
	case uint8:
		return p.packInt(int64(t))
	case uint16:
		return p.packInt(int64(t))
	case uint32:
		return p.packInt(int64(t))
	case uint64:
		return p.packUint(t)
	case I64:
		return p.packInt(t.Int64())
	case *big.Int:
		return p.packBigInt(t)
	case string:
		return p.packString(t)
	case []byte:
		return p.packBytes(t)
	case Structure:
		return p.packStructure(t)
	case *Structure:
		return p.packStructure(*t)
	case *OrderedMap:
		return p.packOrderedMap(t)
	case Marshaler:
		bytes, err := t.MarshalPackStream()
		if err != nil {
			return err
		}
		return p.write(bytes)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return p.packSequence(rv)
	case reflect.Map:
		return p.packMapping(rv)
	}

	return errUnpackable(v)
}

func (p *Packer) packNull() error {
	return p.writeByte(NULL)
}

func (p *Packer) packBool(b bool) error {
	if b {
		return p.writeByte(TRUETHY)
	}
	return p.writeByte(FALSEY)
}

func (p *Packer) packFloat(f float64) error {
	p.scratch[0] = FLOAT_64
	binary.BigEndian.PutUint64(p.scratch[1:9], math.Float64bits(f))
	return p.write(p.scratch[:9])
}

func (p *Packer) packUint(u uint64) error {
	if u <= math.MaxInt64 {
		return p.packInt(int64(u))
	}
	return p.packBigInt(new(big.Int).SetUint64(u))
}

func (p *Packer) packBigInt(n *big.Int) error {
	if n.IsInt64() {
		return p.packInt(n.Int64())
	}
	// Out of I64 range: the wire format has no arbitrary-precision
	// integer type, so this is a fatal encode error rather than a
	// silent truncation.
	return errIntegerOutOfRange(n)
}

// packInt selects the narrowest marker that represents n exactly, per
// the size-class cascade: tiny range inlined into the marker byte, then
// INT_8, INT_16, INT_32, falling back to INT_64.
func (p *Packer) packInt(n int64) error {
	switch {
	case n >= TINY_INT_MIN && n <= TINY_INT_MAX:
		return p.writeByte(byte(int8(n)))
	case n >= INT_8_MIN && n <= INT_8_MAX:
		p.scratch[0] = INT_8
		p.scratch[1] = byte(int8(n))
		return p.write(p.scratch[:2])
	case n >= INT_16_MIN && n <= INT_16_MAX:
		p.scratch[0] = INT_16
		binary.BigEndian.PutUint16(p.scratch[1:3], uint16(int16(n)))
		return p.write(p.scratch[:3])
	case n >= INT_32_MIN && n <= INT_32_MAX:
		p.scratch[0] = INT_32
		binary.BigEndian.PutUint32(p.scratch[1:5], uint32(int32(n)))
		return p.write(p.scratch[:5])
	default:
		p.scratch[0] = INT_64
		binary.BigEndian.PutUint64(p.scratch[1:9], uint64(n))
		return p.write(p.scratch[:9])
	}
}

func (p *Packer) packString(s string) error {
	size := len(s)
	if err := p.writeSizeHeader(size,
		TINY_STRING_MARKER_BASE, STRING_8_MARKER, STRING_16_MARKER, STRING_32_MARKER,
		"string"); err != nil {
		return err
	}
	return p.write([]byte(s))
}

func (p *Packer) packBytes(b []byte) error {
	if !p.byteArraysSupported {
		return errBytesDisabled()
	}
	size := len(b)
	if err := p.writeByteSizeHeader(size, BYTES_8_MARKER, BYTES_16_MARKER, BYTES_32_MARKER); err != nil {
		return err
	}
	return p.write(b)
}

// writeSizeHeader emits the marker for a sized type that has a tiny
// form (string, list, map): tinyBase|size for size < 16, then 8/16/32
// bit headers as size grows.
func (p *Packer) writeSizeHeader(size int, tinyBase, m8, m16, m32 byte, kind string) error {
	switch {
	case size < 16:
		return p.writeByte(tinyBase | byte(size))
	case size <= math.MaxUint8:
		p.scratch[0] = m8
		p.scratch[1] = byte(size)
		return p.write(p.scratch[:2])
	case size <= math.MaxUint16:
		p.scratch[0] = m16
		binary.BigEndian.PutUint16(p.scratch[1:3], uint16(size))
		return p.write(p.scratch[:3])
	case size <= MaxSize:
		p.scratch[0] = m32
		binary.BigEndian.PutUint32(p.scratch[1:5], uint32(size))
		return p.write(p.scratch[:5])
	default:
		return errValueTooLarge(kind, size)
	}
}

// writeByteSizeHeader emits the marker for BYTES, which has no tiny
// form: every size uses an explicit 8/16/32 bit header.
func (p *Packer) writeByteSizeHeader(size int, m8, m16, m32 byte) error {
	switch {
	case size <= math.MaxUint8:
		p.scratch[0] = m8
		p.scratch[1] = byte(size)
		return p.write(p.scratch[:2])
	case size <= math.MaxUint16:
		p.scratch[0] = m16
		binary.BigEndian.PutUint16(p.scratch[1:3], uint16(size))
		return p.write(p.scratch[:3])
	case size <= MaxSize:
		p.scratch[0] = m32
		binary.BigEndian.PutUint32(p.scratch[1:5], uint32(size))
		return p.write(p.scratch[:5])
	default:
		return errValueTooLarge("byte array", size)
	}
}

func (p *Packer) packSequence(rv reflect.Value) error {
	n := rv.Len()
	if err := p.writeSizeHeader(n, TINY_LIST_MARKER_BASE, LIST_8_MARKER, LIST_16_MARKER, LIST_32_MARKER, "list"); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		elem := rv.Index(i).Interface()
		dehydrated, err := p.hooks.dehydrate(elem)
		if err != nil {
			return err
		}
		if _, ok := dehydrated.(undefinedType); ok {
			// A list preserves its length, so an elided element
			// becomes an explicit Null rather than vanishing.
			if err := p.packNull(); err != nil {
				return err
			}
			continue
		}
		if err := p.pack(dehydrated); err != nil {
			return err
		}
	}
	return nil
}

// packStructure writes a Structure envelope: a size header carrying the
// field count (STRUCT_8 / STRUCT_16; there is no STRUCT_32, a
// Structure is capped at MaxStructFields fields), followed by the
// signature byte, followed by each field in order. The signature byte
// is always emitted after the size header regardless of which width was
// chosen.
func (p *Packer) packStructure(s Structure) error {
	n := len(s.Fields)
	if n > MaxStructFields {
		return errTooManyFields(n)
	}
	switch {
	case n < 16:
		if err := p.writeByte(TINY_STRUCT_MARKER_BASE | byte(n)); err != nil {
			return err
		}
	case n <= math.MaxUint8:
		p.scratch[0] = STRUCT_8_MARKER
		p.scratch[1] = byte(n)
		if err := p.write(p.scratch[:2]); err != nil {
			return err
		}
	default:
		p.scratch[0] = STRUCT_16_MARKER
		binary.BigEndian.PutUint16(p.scratch[1:3], uint16(n))
		if err := p.write(p.scratch[:3]); err != nil {
			return err
		}
	}
	if err := p.writeByte(s.Signature); err != nil {
		return err
	}
	for _, f := range s.Fields {
		if err := p.pack(f); err != nil {
			return err
		}
	}
	return nil
}

// packOrderedMap writes an OrderedMap preserving its insertion order,
// dropping entries whose dehydrated value is Undefined.
func (p *Packer) packOrderedMap(m *OrderedMap) error {
	type entry struct {
		key   string
		value interface{}
	}
	entries := make([]entry, 0, m.Len())
	var dehydrateErr error
	m.Range(func(key string, value interface{}) bool {
		dehydrated, err := p.hooks.dehydrate(value)
		if err != nil {
			dehydrateErr = err
			return false
		}
		if _, ok := dehydrated.(undefinedType); ok {
			return true
		}
		entries = append(entries, entry{key: key, value: dehydrated})
		return true
	})
	if dehydrateErr != nil {
		return dehydrateErr
	}

	if err := p.writeSizeHeader(len(entries), TINY_MAP_MARKER_BASE, MAP_8_MARKER, MAP_16_MARKER, MAP_32_MARKER, "map"); err != nil {
		return err
	}
	for _, e := range entries {
		if err := p.packString(e.key); err != nil {
			return err
		}
		if err := p.pack(e.value); err != nil {
			return err
		}
	}
	return nil
}

func (p *Packer) packMapping(rv reflect.Value) error {
	if rv.Type().Key().Kind() != reflect.String {
		return errUnpackable(rv.Interface())
	}
	keys := rv.MapKeys()

	// Count entries after dehydration, since an Undefined value omits
	// the entry entirely and the size header must reflect that.
	type entry struct {
		key   string
		value interface{}
	}
	entries := make([]entry, 0, len(keys))
	for _, k := range keys {
		val := rv.MapIndex(k).Interface()
		dehydrated, err := p.hooks.dehydrate(val)
		if err != nil {
			return err
		}
		if _, ok := dehydrated.(undefinedType); ok {
			continue
		}
		entries = append(entries, entry{key: k.String(), value: dehydrated})
	}

	if err := p.writeSizeHeader(len(entries), TINY_MAP_MARKER_BASE, MAP_8_MARKER, MAP_16_MARKER, MAP_32_MARKER, "map"); err != nil {
		return err
	}
	for _, e := range entries {
		if err := p.packString(e.key); err != nil {
			return err
		}
		if err := p.pack(e.value); err != nil {
			return err
		}
	}
	return nil
}
