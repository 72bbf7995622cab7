package oasbind

import (
	"encoding/json"
	"iter"
)

// Map is a read-only JSON object. Nested objects are Maps and nested arrays
// are Lists. The zero value is an empty Map.
type Map struct {
	m map[string]any
}

// List is a read-only JSON array.
type List struct {
	items []any
}

// Freeze deep-copies v into read-only containers: map[string]any becomes
// Map and []any becomes List. Scalars are returned as is.
func Freeze(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return freezeMap(t)
	case []any:
		items := make([]any, len(t))
		for i, item := range t {
			items[i] = Freeze(item)
		}
		return List{items: items}
	case Map, List:
		return t
	}
	return v
}

func freezeMap(src map[string]any) Map {
	m := make(map[string]any, len(src))
	for k, item := range src {
		m[k] = Freeze(item)
	}
	return Map{m: m}
}

// Thaw returns a mutable deep copy of a frozen value.
func Thaw(v any) any {
	switch t := v.(type) {
	case Map:
		out := make(map[string]any, len(t.m))
		for k, item := range t.m {
			out[k] = Thaw(item)
		}
		return out
	case List:
		out := make([]any, len(t.items))
		for i, item := range t.items {
			out[i] = Thaw(item)
		}
		return out
	}
	return v
}

// Get returns the value stored under key.
func (m Map) Get(key string) (any, bool) {
	v, ok := m.m[key]
	return v, ok
}

// String returns the value under key when it is a string.
func (m Map) String(key string) (string, bool) {
	s, ok := m.m[key].(string)
	return s, ok
}

// Map returns the nested object under key.
func (m Map) Map(key string) (Map, bool) {
	v, ok := m.m[key].(Map)
	return v, ok
}

// List returns the nested array under key.
func (m Map) List(key string) (List, bool) {
	v, ok := m.m[key].(List)
	return v, ok
}

func (m Map) Len() int { return len(m.m) }

// Keys returns the keys in sorted order.
func (m Map) Keys() []string {
	return sortedKeys(m.m)
}

// All iterates over entries in key order.
func (m Map) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, k := range m.Keys() {
			if !yield(k, m.m[k]) {
				return
			}
		}
	}
}

func (m Map) MarshalJSON() ([]byte, error) {
	if m.m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m.m)
}

// Get returns the item at index i. It panics when i is out of range.
func (l List) Get(i int) any { return l.items[i] }

func (l List) Len() int { return len(l.items) }

// All iterates over items in order.
func (l List) All() iter.Seq2[int, any] {
	return func(yield func(int, any) bool) {
		for i, item := range l.items {
			if !yield(i, item) {
				return
			}
		}
	}
}

func (l List) MarshalJSON() ([]byte, error) {
	if l.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.items)
}

