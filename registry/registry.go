// Package registry implements a signature-keyed hydrate/dehydrate
// registry for the application-defined record types PackStream carries
// as Structure envelopes: graph nodes and relationships, spatial
// points, and temporal values. It is adapted from the host driver's
// Bolt message registry (RegisterMessage/CreateMessage keyed by
// message signature), retargeted from protocol messages onto graph
// record types keyed by structure signature.
package registry

import (
	"fmt"

	"github.com/seuros/gopher-packstream/packstream"
)

// Hydrator builds an application value from a Structure's fields.
type Hydrator func(fields []interface{}) (interface{}, error)

// Dehydrator converts an application value into Structure fields. It
// returns ok=false when v is not a type this entry owns.
type Dehydrator func(v interface{}) (fields []interface{}, ok bool)

type entry struct {
	signature byte
	hydrate   Hydrator
	dehydrate Dehydrator
}

// Registry maps Structure signatures to hydrate/dehydrate functions for
// application record types, and produces the packstream.Hooks pair a
// Packer/Unpacker consults.
type Registry struct {
	bySignature map[byte]entry
	dehydrators []entry
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{bySignature: make(map[byte]entry)}
}

// NewDefault returns a Registry pre-populated with the graph, spatial,
// and temporal record types this codec's domain stack carries.
func NewDefault() *Registry {
	r := New()
	RegisterGraphTypes(r)
	RegisterSpatialTypes(r)
	RegisterTemporalTypes(r)
	return r
}

// Register adds a hydrate/dehydrate pair for signature. Registering the
// same signature twice replaces the previous entry.
func (r *Registry) Register(signature byte, hydrate Hydrator, dehydrate Dehydrator) {
	e := entry{signature: signature, hydrate: hydrate, dehydrate: dehydrate}
	if _, exists := r.bySignature[signature]; exists {
		for i := range r.dehydrators {
			if r.dehydrators[i].signature == signature {
				r.dehydrators[i] = e
			}
		}
	} else {
		r.dehydrators = append(r.dehydrators, e)
	}
	r.bySignature[signature] = e
}

// Hooks returns a packstream.Hooks pair backed by this registry: Hydrate
// looks up the Structure's signature and calls the matching Hydrator
// (passing the Structure through unchanged if none is registered);
// Dehydrate tries every registered Dehydrator in registration order and
// returns v unchanged if none claims it.
func (r *Registry) Hooks() *packstream.Hooks {
	return &packstream.Hooks{
		Hydrate: func(s packstream.Structure) (interface{}, error) {
			e, ok := r.bySignature[s.Signature]
			if !ok {
				return s, nil
			}
			v, err := e.hydrate(s.Fields)
			if err != nil {
				return nil, fmt.Errorf("registry: hydrating signature 0x%02X: %w", s.Signature, err)
			}
			return v, nil
		},
		Dehydrate: func(v interface{}) (interface{}, error) {
			for _, e := range r.dehydrators {
				if fields, ok := e.dehydrate(v); ok {
					return packstream.NewStructure(e.signature, fields...), nil
				}
			}
			return v, nil
		},
	}
}
