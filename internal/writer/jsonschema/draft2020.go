package jsonschema

import (
	"strconv"

	"github.com/castr-dev/castr/internal/diag"
	"github.com/castr-dev/castr/internal/ir"
	"github.com/castr-dev/castr/internal/ordered"
)

// schema2020 renders s as a draft 2020-12 keyword map. Keywords are inserted
// in a fixed order so equal schemas encode to equal bytes.
func (c *writeContext) schema2020(s *ir.CastrSchema, path string) (*ordered.Map[any], error) {
	out := ordered.New[any]()
	if s == nil {
		return out, nil
	}
	if s.Ref != "" {
		target, err := c.target(s.Ref, path)
		if err != nil {
			return nil, err
		}
		out.Set("$ref", target)
	}

	typeList, wrapNull := types(s)
	switch len(typeList) {
	case 0:
	case 1:
		out.Set("type", typeList[0])
	default:
		out.Set("type", typeList)
	}
	setString(out, "format", s.Format)
	setString(out, "title", s.Title)
	setString(out, "description", s.Description)
	if s.HasDefault {
		out.Set("default", s.Default)
	}
	if ex := examples(s); len(ex) > 0 {
		out.Set("examples", ex)
	}
	if len(s.Enum) > 0 {
		out.Set("enum", s.Enum)
	}
	if s.HasConst {
		out.Set("const", s.Const)
	}
	setBool(out, "deprecated", s.Deprecated)
	setBool(out, "readOnly", s.ReadOnly)
	setBool(out, "writeOnly", s.WriteOnly)

	cs := s.Constraints
	setFloat(out, "minimum", cs.Minimum)
	setFloat(out, "exclusiveMinimum", cs.ExclusiveMinimum)
	setFloat(out, "maximum", cs.Maximum)
	setFloat(out, "exclusiveMaximum", cs.ExclusiveMaximum)
	setFloat(out, "multipleOf", cs.MultipleOf)
	setInt(out, "minLength", cs.MinLength)
	setInt(out, "maxLength", cs.MaxLength)
	setString(out, "pattern", cs.Pattern)

	if err := c.array2020(s, out, path); err != nil {
		return nil, err
	}
	if err := c.object2020(s, out, path); err != nil {
		return nil, err
	}

	for _, kw := range []struct {
		name string
		list []*ir.CastrSchema
	}{{"allOf", s.AllOf}, {"oneOf", s.OneOf}, {"anyOf", s.AnyOf}} {
		if len(kw.list) == 0 {
			continue
		}
		members, err := c.list2020(kw.list, join(path, kw.name))
		if err != nil {
			return nil, err
		}
		out.Set(kw.name, members)
	}
	if s.Not != nil {
		not, err := c.schema2020(s.Not, join(path, "not"))
		if err != nil {
			return nil, err
		}
		out.Set("not", not)
	}
	for _, k := range ir.SortedKeys(s.Extensions) {
		out.Set(k, s.Extensions[k])
	}

	if wrapNull {
		null := ordered.New[any]()
		null.Set("type", ir.TypeNull)
		wrapped := ordered.New[any]()
		wrapped.Set("anyOf", []any{out, null})
		return wrapped, nil
	}
	return out, nil
}

// array2020 writes tuples as prefixItems with items as the trailing schema.
// unevaluatedItems is only kept when nothing else closes the array.
func (c *writeContext) array2020(s *ir.CastrSchema, out *ordered.Map[any], path string) error {
	if len(s.PrefixItems) > 0 {
		prefix, err := c.list2020(s.PrefixItems, join(path, "prefixItems"))
		if err != nil {
			return err
		}
		out.Set("prefixItems", prefix)
	}
	switch {
	case s.ItemsClosed:
		out.Set("items", false)
	case s.Items != nil:
		items, err := c.schema2020(s.Items, join(path, "items"))
		if err != nil {
			return err
		}
		out.Set("items", items)
	}
	if s.UnevaluatedItems != nil {
		if out.Has("items") {
			c.warn(diag.WarnDownlevelUnevaluatedItems, path, "unevaluatedItems is redundant next to items; dropped")
		} else {
			v, err := c.additional2020(s.UnevaluatedItems, join(path, "unevaluatedItems"))
			if err != nil {
				return err
			}
			out.Set("unevaluatedItems", v)
		}
	}
	setInt(out, "minItems", s.Constraints.MinItems)
	setInt(out, "maxItems", s.Constraints.MaxItems)
	setBool(out, "uniqueItems", s.Constraints.UniqueItems)
	return nil
}

func (c *writeContext) object2020(s *ir.CastrSchema, out *ordered.Map[any], path string) error {
	if s.Properties != nil {
		props, err := c.map2020(s.Properties, join(path, "properties"))
		if err != nil {
			return err
		}
		out.Set("properties", props)
	}
	if len(s.Required) > 0 {
		out.Set("required", append([]string(nil), s.Required...))
	}
	if s.AdditionalProperties != nil {
		v, err := c.additional2020(s.AdditionalProperties, join(path, "additionalProperties"))
		if err != nil {
			return err
		}
		out.Set("additionalProperties", v)
	}
	if s.PatternProperties != nil {
		props, err := c.map2020(s.PatternProperties, join(path, "patternProperties"))
		if err != nil {
			return err
		}
		out.Set("patternProperties", props)
	}
	if s.UnevaluatedProperties != nil {
		if s.AdditionalProperties != nil {
			c.warn(diag.WarnDownlevelUnevaluatedProperties, path, "unevaluatedProperties is redundant next to additionalProperties; dropped")
		} else {
			v, err := c.additional2020(s.UnevaluatedProperties, join(path, "unevaluatedProperties"))
			if err != nil {
				return err
			}
			out.Set("unevaluatedProperties", v)
		}
	}
	if s.DependentSchemas != nil {
		deps, err := c.map2020(s.DependentSchemas, join(path, "dependentSchemas"))
		if err != nil {
			return err
		}
		out.Set("dependentSchemas", deps)
	}
	if len(s.DependentRequired) > 0 {
		deps := ordered.New[any]()
		for _, k := range ir.SortedKeys(s.DependentRequired) {
			deps.Set(k, append([]string{}, s.DependentRequired[k]...))
		}
		out.Set("dependentRequired", deps)
	}
	setInt(out, "minProperties", s.Constraints.MinProperties)
	setInt(out, "maxProperties", s.Constraints.MaxProperties)
	return nil
}

func (c *writeContext) list2020(list []*ir.CastrSchema, path string) ([]any, error) {
	out := make([]any, len(list))
	for i, s := range list {
		v, err := c.schema2020(s, join(path, strconv.Itoa(i)))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (c *writeContext) map2020(props *ir.CastrSchemaProperties, path string) (*ordered.Map[any], error) {
	out := ordered.New[any]()
	for _, name := range props.SortedKeys() {
		s, _ := props.Get(name)
		v, err := c.schema2020(s, join(path, name))
		if err != nil {
			return nil, err
		}
		out.Set(name, v)
	}
	return out, nil
}

func (c *writeContext) additional2020(a *ir.Additional, path string) (any, error) {
	if a.Schema == nil {
		return a.Allows, nil
	}
	return c.schema2020(a.Schema, path)
}

func setString(m *ordered.Map[any], key, v string) {
	if v != "" {
		m.Set(key, v)
	}
}

func setBool(m *ordered.Map[any], key string, v bool) {
	if v {
		m.Set(key, true)
	}
}

func setFloat(m *ordered.Map[any], key string, v *float64) {
	if v != nil {
		m.Set(key, *v)
	}
}

func setInt(m *ordered.Map[any], key string, v *int) {
	if v != nil {
		m.Set(key, *v)
	}
}
