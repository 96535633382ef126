package ir

import (
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/castr-dev/castr/internal/ordered"
)

// Container kinds used in the persisted wrapper `{dataType, value}`.
const (
	DataTypeProperties = "CastrSchemaProperties"
	DataTypeMap        = "Map"
)

// CastrSchemaProperties is an ordered property-name → schema container.
// Storage keeps insertion order; writers emit SortedKeys.
type CastrSchemaProperties struct {
	ordered.Map[*CastrSchema]
}

// NewProperties creates an empty container.
func NewProperties() *CastrSchemaProperties {
	return &CastrSchemaProperties{Map: *ordered.New[*CastrSchema]()}
}

// Len is nil-safe.
func (p *CastrSchemaProperties) Len() int {
	if p == nil {
		return 0
	}
	return p.Map.Len()
}

// Get is nil-safe.
func (p *CastrSchemaProperties) Get(key string) (*CastrSchema, bool) {
	if p == nil {
		return nil, false
	}
	return p.Map.Get(key)
}

// Keys is nil-safe.
func (p *CastrSchemaProperties) Keys() []string {
	if p == nil {
		return nil
	}
	return p.Map.Keys()
}

// SortedKeys is nil-safe.
func (p *CastrSchemaProperties) SortedKeys() []string {
	if p == nil {
		return nil
	}
	return p.Map.SortedKeys()
}

// MarshalJSON writes `{"dataType":"CastrSchemaProperties","value":[[k,v],...]}`
// in insertion order.
func (p *CastrSchemaProperties) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	pairs := make([][2]any, 0, p.Len())
	for k, v := range p.All() {
		pairs = append(pairs, [2]any{k, v})
	}
	return json.Marshal(wrapper{DataType: DataTypeProperties, Value: pairs})
}

// UnmarshalJSON reads the tagged wrapper written by MarshalJSON.
func (p *CastrSchemaProperties) UnmarshalJSON(data []byte) error {
	fresh := NewProperties()
	err := decodePairs(data, DataTypeProperties, func(key string, raw json.RawMessage) error {
		var s *CastrSchema
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		fresh.Set(key, s)
		return nil
	})
	if err != nil {
		return err
	}
	*p = *fresh
	return nil
}

type wrapper struct {
	DataType string `json:"dataType"`
	Value    any    `json:"value"`
}

type rawWrapper struct {
	DataType string               `json:"dataType"`
	Value    [][2]json.RawMessage `json:"value"`
}

// decodePairs validates the wrapper's dataType and feeds each pair to fn.
func decodePairs(data []byte, dataType string, fn func(string, json.RawMessage) error) error {
	var w rawWrapper
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode %s: %w", dataType, err)
	}
	if w.DataType != dataType {
		return fmt.Errorf("%w: got %q, want %q", ErrUnknownDataType, w.DataType, dataType)
	}
	for i, pair := range w.Value {
		var key string
		if err := json.Unmarshal(pair[0], &key); err != nil {
			return fmt.Errorf("decode %s entry %d key: %w", dataType, i, err)
		}
		if err := fn(key, pair[1]); err != nil {
			return fmt.Errorf("decode %s entry %q: %w", dataType, key, err)
		}
	}
	return nil
}
