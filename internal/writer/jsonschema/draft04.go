package jsonschema

import (
	"strconv"

	"github.com/go-openapi/spec"

	"github.com/castr-dev/castr/internal/diag"
	"github.com/castr-dev/castr/internal/ir"
)

// schema04 renders s with the draft-04 vocabulary: boolean exclusive flags,
// tuple items with additionalItems, and dependencies in place of
// dependentSchemas/dependentRequired.
func (c *writeContext) schema04(s *ir.CastrSchema, path string) (*spec.Schema, error) {
	out := &spec.Schema{}
	if s == nil {
		return out, nil
	}
	if s.Ref != "" {
		target, err := c.target(s.Ref, path)
		if err != nil {
			return nil, err
		}
		out.Ref = spec.MustCreateRef(target)
	}

	typeList, wrapNull := types(s)
	out.Type = spec.StringOrArray(typeList)
	out.Format = s.Format
	out.Title = s.Title
	out.Description = s.Description
	if s.HasDefault {
		out.Default = s.Default
	}
	out.Enum = append([]interface{}(nil), s.Enum...)
	if s.HasConst {
		if len(out.Enum) == 0 {
			out.Enum = []interface{}{s.Const}
		}
		c.warn(diag.WarnDownlevelConstToEnum, path, "const is not part of draft-04; written as enum")
	}

	cs := s.Constraints
	bounds04(cs, out)
	out.MultipleOf = cs.MultipleOf
	out.MinLength = int64Ptr(cs.MinLength)
	out.MaxLength = int64Ptr(cs.MaxLength)
	out.Pattern = cs.Pattern
	out.MinItems = int64Ptr(cs.MinItems)
	out.MaxItems = int64Ptr(cs.MaxItems)
	out.UniqueItems = cs.UniqueItems
	out.MinProperties = int64Ptr(cs.MinProperties)
	out.MaxProperties = int64Ptr(cs.MaxProperties)

	if err := c.array04(s, out, path); err != nil {
		return nil, err
	}
	if err := c.object04(s, out, path); err != nil {
		return nil, err
	}

	var err error
	if out.AllOf, err = c.list04(s.AllOf, join(path, "allOf")); err != nil {
		return nil, err
	}
	if out.OneOf, err = c.list04(s.OneOf, join(path, "oneOf")); err != nil {
		return nil, err
	}
	if out.AnyOf, err = c.list04(s.AnyOf, join(path, "anyOf")); err != nil {
		return nil, err
	}
	if s.Not != nil {
		if out.Not, err = c.schema04(s.Not, join(path, "not")); err != nil {
			return nil, err
		}
	}
	if len(s.Extensions) > 0 {
		out.Extensions = make(spec.Extensions, len(s.Extensions))
		for k, v := range s.Extensions {
			out.Extensions[k] = v
		}
	}

	if wrapNull {
		null := spec.Schema{}
		null.Type = spec.StringOrArray{ir.TypeNull}
		return &spec.Schema{SchemaProps: spec.SchemaProps{AnyOf: []spec.Schema{*out, null}}}, nil
	}
	return out, nil
}

// bounds04 folds numeric exclusive bounds into minimum/maximum with the
// boolean flag; the stricter of an inclusive and exclusive pair wins.
func bounds04(cs ir.Constraints, out *spec.Schema) {
	out.Minimum = cs.Minimum
	if ex := cs.ExclusiveMinimum; ex != nil && (cs.Minimum == nil || *ex >= *cs.Minimum) {
		v := *ex
		out.Minimum = &v
		out.ExclusiveMinimum = true
	}
	out.Maximum = cs.Maximum
	if ex := cs.ExclusiveMaximum; ex != nil && (cs.Maximum == nil || *ex <= *cs.Maximum) {
		v := *ex
		out.Maximum = &v
		out.ExclusiveMaximum = true
	}
}

func (c *writeContext) array04(s *ir.CastrSchema, out *spec.Schema, path string) error {
	var items *spec.Schema
	if s.Items != nil {
		var err error
		if items, err = c.schema04(s.Items, join(path, "items")); err != nil {
			return err
		}
	}

	if len(s.PrefixItems) == 0 {
		if items != nil {
			out.Items = &spec.SchemaOrArray{Schema: items}
		}
	} else {
		prefix, err := c.list04(s.PrefixItems, join(path, "prefixItems"))
		if err != nil {
			return err
		}
		out.Items = &spec.SchemaOrArray{Schemas: prefix}
		switch {
		case s.ItemsClosed:
			out.AdditionalItems = &spec.SchemaOrBool{Allows: false}
		case items != nil:
			out.AdditionalItems = &spec.SchemaOrBool{Allows: true, Schema: items}
		}
	}

	if s.UnevaluatedItems != nil {
		c.warn(diag.WarnDownlevelUnevaluatedItems, path, "unevaluatedItems is not part of draft-04; dropped")
	}
	return nil
}

func (c *writeContext) object04(s *ir.CastrSchema, out *spec.Schema, path string) error {
	var err error
	if out.Properties, err = c.map04(s.Properties, join(path, "properties")); err != nil {
		return err
	}
	out.Required = append([]string(nil), s.Required...)
	if out.PatternProperties, err = c.map04(s.PatternProperties, join(path, "patternProperties")); err != nil {
		return err
	}
	if a := s.AdditionalProperties; a != nil {
		out.AdditionalProperties = &spec.SchemaOrBool{Allows: a.Allows}
		if a.Schema != nil {
			if out.AdditionalProperties.Schema, err = c.schema04(a.Schema, join(path, "additionalProperties")); err != nil {
				return err
			}
		}
	}
	if s.UnevaluatedProperties != nil {
		c.warn(diag.WarnDownlevelUnevaluatedProperties, path, "unevaluatedProperties is not part of draft-04; dropped")
	}

	if s.DependentSchemas.Len() == 0 && len(s.DependentRequired) == 0 {
		return nil
	}
	out.Dependencies = make(spec.Dependencies)
	for _, name := range s.DependentSchemas.SortedKeys() {
		dep, _ := s.DependentSchemas.Get(name)
		v, err := c.schema04(dep, join(path, "dependentSchemas", name))
		if err != nil {
			return err
		}
		out.Dependencies[name] = spec.SchemaOrStringArray{Schema: v}
	}
	for name, props := range s.DependentRequired {
		if existing, ok := out.Dependencies[name]; ok {
			// draft-04 allows one entry per property; fold the list into the schema.
			existing.Schema.Required = append(existing.Schema.Required, props...)
			continue
		}
		out.Dependencies[name] = spec.SchemaOrStringArray{Property: append([]string{}, props...)}
	}
	return nil
}

func (c *writeContext) list04(list []*ir.CastrSchema, path string) ([]spec.Schema, error) {
	if len(list) == 0 {
		return nil, nil
	}
	out := make([]spec.Schema, len(list))
	for i, s := range list {
		v, err := c.schema04(s, join(path, strconv.Itoa(i)))
		if err != nil {
			return nil, err
		}
		out[i] = *v
	}
	return out, nil
}

func (c *writeContext) map04(props *ir.CastrSchemaProperties, path string) (spec.SchemaProperties, error) {
	if props == nil {
		return nil, nil
	}
	out := make(spec.SchemaProperties, props.Len())
	for _, name := range props.SortedKeys() {
		s, _ := props.Get(name)
		v, err := c.schema04(s, join(path, name))
		if err != nil {
			return nil, err
		}
		out[name] = *v
	}
	return out, nil
}

func int64Ptr(v *int) *int64 {
	if v == nil {
		return nil
	}
	out := int64(*v)
	return &out
}
