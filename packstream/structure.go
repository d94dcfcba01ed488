package packstream

// Structure is the transparent envelope the codec uses to carry
// application-defined record types: a one-byte signature plus an ordered
// list of fields. PackStream assigns it no semantics of its own; the
// signature-to-type mapping lives entirely in the caller's Hooks (see
// registry.Registry for a concrete signature-keyed implementation).
type Structure struct {
	Signature byte
	Fields    []interface{}
}

// NewStructure returns a new Structure with the given signature and
// optional fields.
func NewStructure(signature byte, fields ...interface{}) Structure {
	return Structure{Signature: signature, Fields: fields}
}
