// Package ordered provides an insertion-ordered string-keyed map.
//
// Documents are decoded into ordered maps so that the order keys appeared in
// the source survives the trip through the builder. Writers never rely on
// that order: they iterate SortedKeys and insert into fresh maps, which the
// JSON encoder then emits in insertion order.
package ordered

import (
	"bytes"
	"fmt"
	"iter"
	"sort"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Map is a string-keyed map that remembers insertion order.
type Map[V any] struct {
	keys  []string
	index map[string]V
}

// New creates an empty Map.
func New[V any]() *Map[V] {
	return &Map[V]{index: make(map[string]V)}
}

// Set stores value under key. A new key is appended; an existing key keeps its position.
func (m *Map[V]) Set(key string, value V) {
	if m.index == nil {
		m.index = make(map[string]V)
	}
	if _, ok := m.index[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.index[key] = value
}

// Get returns the value stored under key.
func (m *Map[V]) Get(key string) (V, bool) {
	var zero V
	if m == nil || m.index == nil {
		return zero, false
	}
	v, ok := m.index[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Map[V]) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete removes key, keeping the relative order of the remaining keys.
func (m *Map[V]) Delete(key string) {
	if m == nil || m.index == nil {
		return
	}
	if _, ok := m.index[key]; !ok {
		return
	}
	delete(m.index, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of entries.
func (m *Map[V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Map[V]) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// SortedKeys returns the keys in lexicographic order.
func (m *Map[V]) SortedKeys() []string {
	keys := m.Keys()
	sort.Strings(keys)
	return keys
}

// All iterates entries in insertion order.
func (m *Map[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		if m == nil {
			return
		}
		for _, k := range m.keys {
			if !yield(k, m.index[k]) {
				return
			}
		}
	}
}

// Sorted iterates entries in lexicographic key order.
func (m *Map[V]) Sorted() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		for _, k := range m.SortedKeys() {
			if !yield(k, m.index[k]) {
				return
			}
		}
	}
}

// Clone returns a shallow copy.
func (m *Map[V]) Clone() *Map[V] {
	if m == nil {
		return nil
	}
	out := &Map[V]{
		keys:  append([]string(nil), m.keys...),
		index: make(map[string]V, len(m.index)),
	}
	for k, v := range m.index {
		out.index[k] = v
	}
	return out
}

// MarshalJSON encodes the map as a JSON object in insertion order.
func (m *Map[V]) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m.index[k])
		if err != nil {
			return nil, fmt.Errorf("ordered: encode %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping key order. JSON is parsed as
// YAML so the same node walk serves both formats.
func (m *Map[V]) UnmarshalJSON(data []byte) error {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return err
	}
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		return m.UnmarshalYAML(node.Content[0])
	}
	return m.UnmarshalYAML(&node)
}

// UnmarshalYAML decodes a mapping node keeping key order.
func (m *Map[V]) UnmarshalYAML(node *yaml.Node) error {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	m.keys = nil
	m.index = make(map[string]V)
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("ordered: line %d: expected a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		if keyNode.Tag == "!!merge" {
			return fmt.Errorf("ordered: line %d: merge keys are not supported", keyNode.Line)
		}
		var value V
		if err := valueNode.Decode(&value); err != nil {
			return fmt.Errorf("ordered: key %q: %w", keyNode.Value, err)
		}
		m.Set(keyNode.Value, value)
	}
	return nil
}
