package openapi

import (
	"strconv"

	"github.com/castr-dev/castr/internal/diag"
	"github.com/castr-dev/castr/internal/ir"
	"github.com/castr-dev/castr/internal/oas"
	"github.com/castr-dev/castr/internal/ordered"
)

// schema projects an IR schema onto the target dialect.
//
// 3.0: nullable flag, boolean exclusive bounds, const as enum, first example
// only; 3.1-only keywords dropped with a warning.
// 3.1: type arrays with "null", numeric exclusive bounds, everything else as is.
func (c *writeContext) schema(s *ir.CastrSchema, path string) (*oas.Schema, error) {
	if s == nil {
		return nil, nil
	}
	if s.Ref != "" {
		if err := c.resolve(s.Ref, path, ir.ComponentSchema); err != nil {
			return nil, err
		}
	}

	cs := s.Constraints
	out := &oas.Schema{
		Ref:           s.Ref,
		Format:        s.Format,
		Title:         s.Title,
		Description:   s.Description,
		Example:       s.Example,
		Enum:          append([]any(nil), s.Enum...),
		Deprecated:    s.Deprecated,
		ReadOnly:      s.ReadOnly,
		WriteOnly:     s.WriteOnly,
		MultipleOf:    cs.MultipleOf,
		MaxLength:     cs.MaxLength,
		MinLength:     cs.MinLength,
		Pattern:       cs.Pattern,
		MaxItems:      cs.MaxItems,
		MinItems:      cs.MinItems,
		UniqueItems:   cs.UniqueItems,
		MaxProperties: cs.MaxProperties,
		MinProperties: cs.MinProperties,
		Required:      copyStrings(s.Required),
		Extra:         copyMap(s.Extensions),
	}
	if s.HasDefault {
		out.Default = s.Default
	}
	if d := s.Discriminator; d != nil {
		out.Discriminator = &oas.Discriminator{PropertyName: d.PropertyName, Mapping: copyStringMap(d.Mapping)}
	}

	if err := c.objectKeywords(s, out, path); err != nil {
		return nil, err
	}
	if err := c.arrayKeywords(s, out, path); err != nil {
		return nil, err
	}
	if err := c.compositionKeywords(s, out, path); err != nil {
		return nil, err
	}

	if c.is31 {
		c.bounds31(cs, out)
		c.annotations31(s, out)
		return c.types31(s, out), nil
	}
	c.bounds30(cs, out)
	c.annotations30(s, out, path)
	return c.types30(s, out, path), nil
}

func (c *writeContext) objectKeywords(s *ir.CastrSchema, out *oas.Schema, path string) error {
	var err error
	if out.Properties, err = c.schemaMap(s.Properties, join(path, "properties")); err != nil {
		return err
	}
	if out.AdditionalProperties, err = c.additional(s.AdditionalProperties, join(path, "additionalProperties")); err != nil {
		return err
	}

	if s.PatternProperties != nil {
		if c.is31 {
			if out.PatternProperties, err = c.schemaMap(s.PatternProperties, join(path, "patternProperties")); err != nil {
				return err
			}
		} else {
			c.warn(diag.WarnDownlevelPatternProperties, path, "patternProperties is not supported in 3.0; dropped")
		}
	}
	if s.UnevaluatedProperties != nil {
		if c.is31 {
			if out.UnevaluatedProperties, err = c.additional(s.UnevaluatedProperties, join(path, "unevaluatedProperties")); err != nil {
				return err
			}
		} else {
			c.warn(diag.WarnDownlevelUnevaluatedProperties, path, "unevaluatedProperties is not supported in 3.0; dropped")
		}
	}
	if s.DependentSchemas != nil || s.DependentRequired != nil {
		if !c.is31 {
			c.warn(diag.WarnDownlevelDependentSchemas, path, "dependentSchemas and dependentRequired are not supported in 3.0; dropped")
			return nil
		}
		if out.DependentSchemas, err = c.schemaMap(s.DependentSchemas, join(path, "dependentSchemas")); err != nil {
			return err
		}
		if s.DependentRequired != nil {
			out.DependentRequired = make(map[string][]string, len(s.DependentRequired))
			for k, v := range s.DependentRequired {
				out.DependentRequired[k] = append([]string{}, v...)
			}
		}
	}
	return nil
}

func (c *writeContext) arrayKeywords(s *ir.CastrSchema, out *oas.Schema, path string) error {
	if s.Items != nil {
		items, err := c.schema(s.Items, join(path, "items"))
		if err != nil {
			return err
		}
		out.Items = oas.SchemaValue(items)
	}

	tuple := len(s.PrefixItems) > 0 || s.ItemsClosed
	if tuple && !c.is31 {
		c.warn(diag.WarnDownlevelPrefixItems, path, "tuple arrays (prefixItems, items: false) are not supported in 3.0; dropped")
	}
	if c.is31 {
		if s.ItemsClosed {
			out.Items = oas.BoolSchema(false)
		}
		for i, p := range s.PrefixItems {
			item, err := c.schema(p, join(path, "prefixItems", strconv.Itoa(i)))
			if err != nil {
				return err
			}
			out.PrefixItems = append(out.PrefixItems, item)
		}
	}

	if s.UnevaluatedItems != nil {
		if !c.is31 {
			c.warn(diag.WarnDownlevelUnevaluatedItems, path, "unevaluatedItems is not supported in 3.0; dropped")
			return nil
		}
		var err error
		if out.UnevaluatedItems, err = c.additional(s.UnevaluatedItems, join(path, "unevaluatedItems")); err != nil {
			return err
		}
	}
	return nil
}

func (c *writeContext) compositionKeywords(s *ir.CastrSchema, out *oas.Schema, path string) error {
	var err error
	if out.AllOf, err = c.schemaList(s.AllOf, join(path, "allOf")); err != nil {
		return err
	}
	if out.OneOf, err = c.schemaList(s.OneOf, join(path, "oneOf")); err != nil {
		return err
	}
	if out.AnyOf, err = c.schemaList(s.AnyOf, join(path, "anyOf")); err != nil {
		return err
	}
	if s.Not != nil {
		if out.Not, err = c.schema(s.Not, join(path, "not")); err != nil {
			return err
		}
	}
	return nil
}

func (c *writeContext) schemaList(list []*ir.CastrSchema, path string) ([]*oas.Schema, error) {
	if len(list) == 0 {
		return nil, nil
	}
	out := make([]*oas.Schema, len(list))
	for i, s := range list {
		v, err := c.schema(s, join(path, strconv.Itoa(i)))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// schemaMap converts a property container, inserting keys in sorted order.
func (c *writeContext) schemaMap(props *ir.CastrSchemaProperties, path string) (*ordered.Map[*oas.Schema], error) {
	if props == nil {
		return nil, nil
	}
	out := ordered.New[*oas.Schema]()
	for _, name := range props.SortedKeys() {
		s, _ := props.Get(name)
		v, err := c.schema(s, join(path, name))
		if err != nil {
			return nil, err
		}
		out.Set(name, v)
	}
	return out, nil
}

func (c *writeContext) additional(a *ir.Additional, path string) (*oas.SchemaOrBool, error) {
	if a == nil {
		return nil, nil
	}
	if a.Schema == nil {
		return oas.BoolSchema(a.Allows), nil
	}
	s, err := c.schema(a.Schema, path)
	if err != nil {
		return nil, err
	}
	return oas.SchemaValue(s), nil
}

func (c *writeContext) bounds31(cs ir.Constraints, out *oas.Schema) {
	out.Minimum = cs.Minimum
	out.Maximum = cs.Maximum
	if cs.ExclusiveMinimum != nil {
		out.ExclusiveMinimum = oas.NumericBound(*cs.ExclusiveMinimum)
	}
	if cs.ExclusiveMaximum != nil {
		out.ExclusiveMaximum = oas.NumericBound(*cs.ExclusiveMaximum)
	}
}

// bounds30 folds an exclusive bound into minimum/maximum with the boolean
// flag. When both an inclusive and an exclusive bound are set the stricter
// one wins.
func (c *writeContext) bounds30(cs ir.Constraints, out *oas.Schema) {
	out.Minimum = cs.Minimum
	if ex := cs.ExclusiveMinimum; ex != nil && (cs.Minimum == nil || *ex >= *cs.Minimum) {
		v := *ex
		out.Minimum = &v
		out.ExclusiveMinimum = oas.FlagBound(true)
	}
	out.Maximum = cs.Maximum
	if ex := cs.ExclusiveMaximum; ex != nil && (cs.Maximum == nil || *ex <= *cs.Maximum) {
		v := *ex
		out.Maximum = &v
		out.ExclusiveMaximum = oas.FlagBound(true)
	}
}

func (c *writeContext) annotations31(s *ir.CastrSchema, out *oas.Schema) {
	out.Examples = append([]any(nil), s.Examples...)
	if s.HasConst {
		out.Const = s.Const
	}
}

func (c *writeContext) annotations30(s *ir.CastrSchema, out *oas.Schema, path string) {
	if len(s.Examples) > 0 {
		if out.Example == nil {
			out.Example = s.Examples[0]
		}
		if len(s.Examples) > 1 {
			c.warn(diag.WarnDownlevelMultipleExamples, path, "3.0 allows a single example; kept the first of %d", len(s.Examples))
		}
	}
	if s.HasConst {
		if len(out.Enum) == 0 {
			out.Enum = []any{s.Const}
			c.warn(diag.WarnDownlevelConstToEnum, path, "const is not supported in 3.0; converted to a single-value enum")
		} else {
			c.warn(diag.WarnDownlevelConstToEnum, path, "const is not supported in 3.0; enum kept, const dropped")
		}
	}
}

// types31 writes nullability as a "null" member of the type array. A
// nullable schema without a type is wrapped in anyOf with a null schema.
func (c *writeContext) types31(s *ir.CastrSchema, out *oas.Schema) *oas.Schema {
	types := oas.TypeSet(copyStrings(s.Type))
	if !s.Metadata.Nullable || types.Has(ir.TypeNull) {
		out.Type = types
		return out
	}
	if len(types) > 0 {
		out.Type = append(types, ir.TypeNull)
		return out
	}
	return &oas.Schema{AnyOf: []*oas.Schema{out, {Type: oas.TypeSet{ir.TypeNull}}}}
}

// types30 writes nullability as the nullable flag. Type arrays become an
// anyOf of single types; a nullable $ref moves into allOf so the flag is
// not a sibling the ref would shadow.
func (c *writeContext) types30(s *ir.CastrSchema, out *oas.Schema, path string) *oas.Schema {
	out.Nullable = s.Metadata.Nullable
	switch {
	case len(s.Type) == 1 && s.Type[0] == ir.TypeNull:
		c.warn(diag.WarnDownlevelNullable, path, "type null is not supported in 3.0; written as nullable")
		out.Nullable = true
	case len(s.Type) == 1:
		out.Type = oas.TypeSet{s.Type[0]}
	case len(s.Type) > 1:
		c.warn(diag.WarnDownlevelMultipleTypes, path, "type arrays are not supported in 3.0; written as anyOf")
		members := make([]*oas.Schema, len(s.Type))
		for i, t := range s.Type {
			members[i] = &oas.Schema{Type: oas.TypeSet{t}}
		}
		if len(out.AnyOf) == 0 {
			out.AnyOf = members
		} else {
			out.AllOf = append(out.AllOf, &oas.Schema{AnyOf: members})
		}
	}
	if out.Ref != "" && out.Nullable {
		ref := &oas.Schema{Ref: out.Ref}
		out.Ref = ""
		out.AllOf = append([]*oas.Schema{ref}, out.AllOf...)
	}
	return out
}

func copyStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
