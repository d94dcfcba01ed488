/*
Package packstream implements the PackStream v1 binary codec: a typed,
self-describing serialisation format built for graph-database wire
protocols. The design is based heavily on MessagePack but the wire grammar
and integer-width rules are PackStream's own.

A Packer writes Go values to an io.Writer in PackStream's marker-prefixed
form. An Unpacker reads them back from an io.Reader. Application-specific
record types (nodes, relationships, temporal values, spatial points, ...)
are carried as Structure envelopes and are opaque to the codec; callers
supply Hooks to translate between their own types and Structure.
*/
package packstream

// Version identifies the codec release, injected at build time via
// -ldflags (matching the host driver's own LibraryVersion convention).
var Version = "dev"

const (
	// Tiny forms inline a size 0..15 into the marker's low nibble.
	TINY_STRING_MARKER_BASE = 0x80
	TINY_LIST_MARKER_BASE   = 0x90
	TINY_MAP_MARKER_BASE    = 0xA0
	TINY_STRUCT_MARKER_BASE = 0xB0

	STRING_8_MARKER  = 0xD0
	STRING_16_MARKER = 0xD1
	STRING_32_MARKER = 0xD2

	LIST_8_MARKER  = 0xD4
	LIST_16_MARKER = 0xD5
	LIST_32_MARKER = 0xD6

	MAP_8_MARKER  = 0xD8
	MAP_16_MARKER = 0xD9
	MAP_32_MARKER = 0xDA

	STRUCT_8_MARKER  = 0xDC
	STRUCT_16_MARKER = 0xDD

	BYTES_8_MARKER  = 0xCC
	BYTES_16_MARKER = 0xCD
	BYTES_32_MARKER = 0xCE

	NULL     = 0xC0
	FLOAT_64 = 0xC1
	FALSEY   = 0xC2
	TRUETHY  = 0xC3

	INT_8  = 0xC8
	INT_16 = 0xC9
	INT_32 = 0xCA
	INT_64 = 0xCB

	TINY_INT_MIN = -16
	TINY_INT_MAX = 127
	INT_8_MIN    = -128
	INT_8_MAX    = 127
	INT_16_MIN   = -32768
	INT_16_MAX   = 32767
	INT_32_MIN   = -2147483648
	INT_32_MAX   = 2147483647

	MARKER_HIGH_NIBBLE_MASK = 0xF0
	MARKER_LOW_NIBBLE_MASK  = 0x0F

	// MaxStructFields is the hard cap on Structure field count: a
	// STRUCT_16 header carries the size in a uint16, so 65535 is the most
	// fields a Structure can ever declare.
	MaxStructFields = 65535

	// MaxSize is the hard cap on string/list/map/bytes length: the *_32
	// headers carry the size in a uint32.
	MaxSize = 1<<32 - 1
)
