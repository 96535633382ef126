package oas

import (
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// TypeSet holds the `type` keyword. OpenAPI 3.0 only allows a single string,
// 3.1 also accepts an array such as ["string", "null"].
type TypeSet []string

// UnmarshalYAML accepts a scalar or a sequence of scalars.
func (t *TypeSet) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*t = TypeSet{node.Value}
		return nil
	case yaml.SequenceNode:
		out := make(TypeSet, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: type entries must be strings", item.Line)
			}
			out = append(out, item.Value)
		}
		*t = out
		return nil
	default:
		return fmt.Errorf("line %d: type must be a string or an array of strings", node.Line)
	}
}

// MarshalJSON writes a single type as a string and multiple types as an array.
func (t TypeSet) MarshalJSON() ([]byte, error) {
	if len(t) == 1 {
		return json.Marshal(t[0])
	}
	return json.Marshal([]string(t))
}

// Has reports whether name is one of the types.
func (t TypeSet) Has(name string) bool {
	for _, v := range t {
		if v == name {
			return true
		}
	}
	return false
}

// ExclusiveBound is exclusiveMinimum/exclusiveMaximum in either of its two
// forms: the 3.0 boolean flag that modifies minimum/maximum, or the 3.1
// numeric bound.
type ExclusiveBound struct {
	Flag  *bool
	Value *float64
}

// UnmarshalYAML accepts a boolean or a number.
func (b *ExclusiveBound) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: exclusive bound must be a boolean or a number", node.Line)
	}
	switch node.Tag {
	case "!!bool":
		v, err := strconv.ParseBool(node.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		b.Flag = &v
	case "!!int", "!!float":
		v, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		b.Value = &v
	default:
		return fmt.Errorf("line %d: exclusive bound must be a boolean or a number", node.Line)
	}
	return nil
}

// MarshalJSON writes whichever form is set, preferring the numeric one.
func (b ExclusiveBound) MarshalJSON() ([]byte, error) {
	switch {
	case b.Value != nil:
		return json.Marshal(*b.Value)
	case b.Flag != nil:
		return json.Marshal(*b.Flag)
	default:
		return []byte("null"), nil
	}
}

// NumericBound returns a bound in the 3.1 numeric form.
func NumericBound(v float64) *ExclusiveBound { return &ExclusiveBound{Value: &v} }

// FlagBound returns a bound in the 3.0 boolean form.
func FlagBound(v bool) *ExclusiveBound { return &ExclusiveBound{Flag: &v} }

// SchemaOrBool is used by keywords that accept either a boolean or a schema:
// additionalProperties, items (3.1), unevaluatedProperties, unevaluatedItems.
type SchemaOrBool struct {
	Allows bool
	Schema *Schema
}

// UnmarshalYAML accepts a boolean scalar or a schema mapping.
func (s *SchemaOrBool) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!bool" {
		v, err := strconv.ParseBool(node.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		s.Allows = v
		s.Schema = nil
		return nil
	}
	var schema Schema
	if err := node.Decode(&schema); err != nil {
		return err
	}
	s.Allows = true
	s.Schema = &schema
	return nil
}

// MarshalJSON writes the schema when set, otherwise the boolean.
func (s SchemaOrBool) MarshalJSON() ([]byte, error) {
	if s.Schema != nil {
		return json.Marshal(s.Schema)
	}
	return json.Marshal(s.Allows)
}

// BoolSchema returns a boolean SchemaOrBool.
func BoolSchema(allows bool) *SchemaOrBool { return &SchemaOrBool{Allows: allows} }

// SchemaValue wraps a schema as a SchemaOrBool.
func SchemaValue(s *Schema) *SchemaOrBool { return &SchemaOrBool{Allows: true, Schema: s} }
