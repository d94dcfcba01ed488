package packstream

import (
	"fmt"
	"math/big"
)

// ProtocolError is the single error kind raised for every codec failure:
// unknown marker, out-of-range size, disabled byte arrays, a value that
// cannot be encoded, or a stream that ends mid-value. Errors carry a
// descriptive message including the offending marker or size where that's
// meaningful.
type ProtocolError struct {
	Message string
}

func (e *ProtocolError) Error() string {
	return e.Message
}

func newProtocolError(format string, args ...interface{}) *ProtocolError {
	return &ProtocolError{Message: fmt.Sprintf(format, args...)}
}

func errUnknownMarker(marker byte) error {
	return newProtocolError("unknown PackStream marker: 0x%02X", marker)
}

func errValueTooLarge(kind string, size int) error {
	return newProtocolError("%s too large to pack (size: %d)", kind, size)
}

func errIntegerOutOfRange(n *big.Int) error {
	return newProtocolError("integer out of 64-bit signed range: %s", n.String())
}

func errTooManyFields(n int) error {
	return newProtocolError("structure has too many fields to pack (size: %d, max %d)", n, MaxStructFields)
}

func errBytesDisabled() error {
	return newProtocolError("cannot pack byte array: byte arrays are disabled for this connection")
}

func errUnpackable(v interface{}) error {
	return newProtocolError("cannot pack value of type %T", v)
}

func errUnexpectedEOF(context string) error {
	return newProtocolError("unexpected end of stream while reading %s", context)
}
