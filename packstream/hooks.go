package packstream

// DehydrateFunc maps an application value to a codec-recognized value
// (one Pack already knows how to dispatch: nil, bool, a number, string,
// []byte, a slice, a map, I64, *big.Int, or a Structure). It is total:
// implementations that don't recognize v should return it unchanged so
// the dispatch cascade can try its own built-in cases.
type DehydrateFunc func(v interface{}) (interface{}, error)

// HydrateFunc maps a decoded Structure to an application value. Returning
// the Structure unchanged (the default) leaves it as a raw envelope for
// the caller to interpret.
type HydrateFunc func(s Structure) (interface{}, error)

// Hooks is the capability pair a Packer/Unpacker consults to translate
// between application types and the codec's recognized value domain.
// Hooks is a plain configuration value passed explicitly into
// NewPacker/NewUnpacker; there is no process-global registry.
type Hooks struct {
	Dehydrate DehydrateFunc
	Hydrate   HydrateFunc
}

// DefaultHooks returns identity hooks: Dehydrate returns its input
// unchanged, Hydrate returns the Structure unchanged.
func DefaultHooks() *Hooks {
	return &Hooks{
		Dehydrate: func(v interface{}) (interface{}, error) { return v, nil },
		Hydrate:   func(s Structure) (interface{}, error) { return s, nil },
	}
}

func (h *Hooks) dehydrate(v interface{}) (interface{}, error) {
	if h == nil || h.Dehydrate == nil {
		return v, nil
	}
	return h.Dehydrate(v)
}

func (h *Hooks) hydrate(s Structure) (interface{}, error) {
	if h == nil || h.Hydrate == nil {
		return s, nil
	}
	return h.Hydrate(s)
}

// undefinedType is a missing-value sentinel distinct from an explicit
// Null: map entries whose value is Undefined are omitted from the wire,
// while list elements that are Undefined are substituted with Null so
// the list's length is preserved.
type undefinedType struct{}

// Undefined is the sentinel value recognized by Pack in map values and
// list elements.
var Undefined = undefinedType{}

// Marshaler is implemented by types that want to encode themselves
// directly, bypassing the rest of the dispatch cascade. Checked after the
// built-in concrete type cases and before the reflection-based slice and
// map cases, as a lower-ceremony alternative to a Dehydrate hook for
// types that already know their own wire form.
type Marshaler interface {
	MarshalPackStream() ([]byte, error)
}
