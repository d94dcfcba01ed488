package packstream

// OrderedMap is a String-keyed mapping that preserves insertion order.
// Go's built-in map has no stable iteration order, so packing a plain
// map[string]interface{} emits its entries in whatever order the
// runtime happens to produce; callers that need reproducible wire
// bytes for a given logical map should build one of these instead.
// The Unpacker also decodes every wire map into an OrderedMap so the
// peer's entry order stays observable.
type OrderedMap struct {
	keys   []string
	values map[string]interface{}
}

// NewOrderedMap returns an empty OrderedMap.
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{values: make(map[string]interface{})}
}

// Set inserts or updates key. Updating an existing key does not move
// it; the last write wins without disturbing insertion order.
func (m *OrderedMap) Set(key string, value interface{}) *OrderedMap {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
	return m
}

// Get returns the value for key and whether it was present.
func (m *OrderedMap) Get(key string) (interface{}, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Len returns the number of entries.
func (m *OrderedMap) Len() int { return len(m.keys) }

// Keys returns the keys in insertion order.
func (m *OrderedMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Range calls fn for each entry in insertion order. Iteration stops
// early if fn returns false.
func (m *OrderedMap) Range(fn func(key string, value interface{}) bool) {
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}
