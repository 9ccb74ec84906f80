package flatmap

import (
	"iter"
	"strings"
)

// Map is an insertion-ordered string map.
type Map struct {
	keys   []string
	values []string
	index  map[string]int
}

// New returns an empty map sized for capacity entries.
func New(capacity int) *Map {
	if capacity < 0 {
		capacity = 0
	}
	return &Map{
		keys:   make([]string, 0, capacity),
		values: make([]string, 0, capacity),
		index:  make(map[string]int, capacity),
	}
}

// Of builds a map from alternating key/value arguments. A trailing key without
// a value is stored with an empty value.
func Of(kv ...string) *Map {
	m := New(len(kv) / 2)
	for i := 0; i < len(kv); i += 2 {
		v := ""
		if i+1 < len(kv) {
			v = kv[i+1]
		}
		m.Put(kv[i], v)
	}
	return m
}

// Put stores value under key. An existing key keeps its position.
func (m *Map) Put(key, value string) {
	if i, ok := m.index[key]; ok {
		m.values[i] = value
		return
	}
	m.index[key] = len(m.keys)
	m.keys = append(m.keys, key)
	m.values = append(m.values, value)
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	i, ok := m.index[key]
	if !ok {
		return "", false
	}
	return m.values[i], true
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete removes key and reports whether it was present. Later entries shift
// up by one position.
func (m *Map) Delete(key string) bool {
	i, ok := m.index[key]
	if !ok {
		return false
	}
	delete(m.index, key)
	m.keys = append(m.keys[:i], m.keys[i+1:]...)
	m.values = append(m.values[:i], m.values[i+1:]...)
	for j := i; j < len(m.keys); j++ {
		m.index[m.keys[j]] = j
	}
	return true
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns a copy of the keys in order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// All iterates entries in order.
func (m *Map) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		if m == nil {
			return
		}
		for i, k := range m.keys {
			if !yield(k, m.values[i]) {
				return
			}
		}
	}
}

// Clone returns an independent copy.
func (m *Map) Clone() *Map {
	out := New(m.Len())
	for k, v := range m.All() {
		out.Put(k, v)
	}
	return out
}

// Equal compares contents, ignoring order.
func (m *Map) Equal(other *Map) bool {
	if m.Len() != other.Len() {
		return false
	}
	for k, v := range m.All() {
		ov, ok := other.Get(k)
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// String renders the map as {k=v, ...} for test failures and debugging.
func (m *Map) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	for k, v := range m.All() {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(v)
	}
	sb.WriteByte('}')
	return sb.String()
}
