package swagger

import (
	"strconv"

	"github.com/go-openapi/spec"

	"github.com/castr-dev/castr/internal/diag"
	"github.com/castr-dev/castr/internal/ir"
)

// schema projects an IR schema onto the Swagger 2.0 schema object: a single
// type, boolean exclusive bounds, allOf as the only composition, and
// `x-nullable` in place of null types.
func (c *writeContext) schema(s *ir.CastrSchema, path string) (*spec.Schema, error) {
	if s == nil {
		return nil, nil
	}
	out := &spec.Schema{}
	if s.Ref != "" {
		_, target, err := c.target(s.Ref, path, ir.ComponentSchema)
		if err != nil {
			return nil, err
		}
		out.Ref = spec.MustCreateRef(target)
	}

	if t := c.singleType(s, path); t != "" {
		out.Type = spec.StringOrArray{t}
	}
	if nullable(s) {
		out.AddExtension("x-nullable", true)
		c.warn(diag.WarnDownlevelNullable, path, "null is not a 2.0 type; written as x-nullable")
	}
	out.Format = s.Format
	out.Title = s.Title
	out.Description = s.Description
	out.ReadOnly = s.ReadOnly
	if s.HasDefault {
		out.Default = s.Default
	}
	out.Example = c.example(s, path)
	if d := s.Discriminator; d != nil {
		out.Discriminator = d.PropertyName
	}
	out.Enum = c.enum(s, path)

	v := validations(s)
	out.Minimum, out.ExclusiveMinimum = v.Minimum, v.ExclusiveMinimum
	out.Maximum, out.ExclusiveMaximum = v.Maximum, v.ExclusiveMaximum
	out.MultipleOf = v.MultipleOf
	out.MinLength, out.MaxLength, out.Pattern = v.MinLength, v.MaxLength, v.Pattern
	out.MinItems, out.MaxItems, out.UniqueItems = v.MinItems, v.MaxItems, v.UniqueItems
	out.MinProperties = int64Ptr(s.Constraints.MinProperties)
	out.MaxProperties = int64Ptr(s.Constraints.MaxProperties)

	if err := c.array(s, out, path); err != nil {
		return nil, err
	}
	if err := c.object(s, out, path); err != nil {
		return nil, err
	}

	var err error
	if out.AllOf, err = c.list(s.AllOf, join(path, "allOf")); err != nil {
		return nil, err
	}
	if len(s.OneOf) > 0 || len(s.AnyOf) > 0 || s.Not != nil {
		c.warn(diag.WarnDownlevelComposition, path, "oneOf, anyOf and not are not supported in 2.0; dropped")
	}
	for k, v := range s.Extensions {
		out.AddExtension(k, v)
	}
	return out, nil
}

func nullable(s *ir.CastrSchema) bool {
	return s.Metadata.Nullable || s.HasType(ir.TypeNull)
}

// singleType returns the first non-null type; 2.0 has no type lists.
func (c *writeContext) singleType(s *ir.CastrSchema, path string) string {
	var types []string
	for _, t := range s.Type {
		if t != ir.TypeNull {
			types = append(types, t)
		}
	}
	if len(types) == 0 {
		return ""
	}
	if len(types) > 1 {
		c.warn(diag.WarnDownlevelMultipleTypes, path, "2.0 allows a single type; kept %q of %v", types[0], types)
	}
	return types[0]
}

func (c *writeContext) example(s *ir.CastrSchema, path string) any {
	if s.Example != nil {
		return s.Example
	}
	if len(s.Examples) == 0 {
		return nil
	}
	if len(s.Examples) > 1 {
		c.warn(diag.WarnDownlevelMultipleExamples, path, "2.0 allows a single example; kept the first of %d", len(s.Examples))
	}
	return s.Examples[0]
}

func (c *writeContext) enum(s *ir.CastrSchema, path string) []any {
	out := append([]any(nil), s.Enum...)
	if s.HasConst {
		if len(out) == 0 {
			out = []any{s.Const}
		}
		c.warn(diag.WarnDownlevelConstToEnum, path, "const is not supported in 2.0; written as enum")
	}
	return out
}

// validations returns the keywords shared by schemas, parameters, headers
// and items. Exclusive bounds fold into minimum/maximum with the boolean
// flag; the stricter of an inclusive and exclusive pair wins.
func validations(s *ir.CastrSchema) spec.CommonValidations {
	cs := s.Constraints
	v := spec.CommonValidations{
		Minimum:     cs.Minimum,
		Maximum:     cs.Maximum,
		MultipleOf:  cs.MultipleOf,
		MinLength:   int64Ptr(cs.MinLength),
		MaxLength:   int64Ptr(cs.MaxLength),
		Pattern:     cs.Pattern,
		MinItems:    int64Ptr(cs.MinItems),
		MaxItems:    int64Ptr(cs.MaxItems),
		UniqueItems: cs.UniqueItems,
	}
	if ex := cs.ExclusiveMinimum; ex != nil && (cs.Minimum == nil || *ex >= *cs.Minimum) {
		n := *ex
		v.Minimum, v.ExclusiveMinimum = &n, true
	}
	if ex := cs.ExclusiveMaximum; ex != nil && (cs.Maximum == nil || *ex <= *cs.Maximum) {
		n := *ex
		v.Maximum, v.ExclusiveMaximum = &n, true
	}
	return v
}

func (c *writeContext) array(s *ir.CastrSchema, out *spec.Schema, path string) error {
	if len(s.PrefixItems) > 0 {
		c.warn(diag.WarnDownlevelPrefixItems, path, "tuple items are not supported in 2.0; dropped %d prefixItems", len(s.PrefixItems))
	}
	if s.UnevaluatedItems != nil {
		c.warn(diag.WarnDownlevelUnevaluatedItems, path, "unevaluatedItems is not supported in 2.0; dropped")
	}
	if s.Items == nil {
		return nil
	}
	items, err := c.schema(s.Items, join(path, "items"))
	if err != nil {
		return err
	}
	out.Items = &spec.SchemaOrArray{Schema: items}
	return nil
}

func (c *writeContext) object(s *ir.CastrSchema, out *spec.Schema, path string) error {
	if s.Properties.Len() > 0 {
		out.Properties = make(spec.SchemaProperties, s.Properties.Len())
		for _, name := range s.Properties.SortedKeys() {
			prop, _ := s.Properties.Get(name)
			v, err := c.schema(prop, join(path, "properties", name))
			if err != nil {
				return err
			}
			out.Properties[name] = *v
		}
	}
	out.Required = append([]string(nil), s.Required...)

	if a := s.AdditionalProperties; a != nil {
		out.AdditionalProperties = &spec.SchemaOrBool{Allows: a.Allows}
		if a.Schema != nil {
			v, err := c.schema(a.Schema, join(path, "additionalProperties"))
			if err != nil {
				return err
			}
			out.AdditionalProperties.Schema = v
		}
	}

	if s.PatternProperties.Len() > 0 {
		c.warn(diag.WarnDownlevelPatternProperties, path, "patternProperties is not supported in 2.0; dropped")
	}
	if s.UnevaluatedProperties != nil {
		c.warn(diag.WarnDownlevelUnevaluatedProperties, path, "unevaluatedProperties is not supported in 2.0; dropped")
	}
	if s.DependentSchemas.Len() > 0 || len(s.DependentRequired) > 0 {
		c.warn(diag.WarnDownlevelDependentSchemas, path, "dependentSchemas and dependentRequired are not supported in 2.0; dropped")
	}
	return nil
}

func (c *writeContext) list(list []*ir.CastrSchema, path string) ([]spec.Schema, error) {
	if len(list) == 0 {
		return nil, nil
	}
	out := make([]spec.Schema, len(list))
	for i, s := range list {
		v, err := c.schema(s, join(path, strconv.Itoa(i)))
		if err != nil {
			return nil, err
		}
		out[i] = *v
	}
	return out, nil
}

// resolve follows a schema ref to its component schema. Non-ref schemas are
// returned as is.
func (c *writeContext) resolve(s *ir.CastrSchema, path string) (*ir.CastrSchema, error) {
	seen := map[string]bool{}
	for s != nil && s.Ref != "" {
		if seen[s.Ref] {
			return nil, nil
		}
		seen[s.Ref] = true
		comp, _, err := c.target(s.Ref, path, ir.ComponentSchema)
		if err != nil {
			return nil, err
		}
		s = comp.Schema
	}
	return s, nil
}

// simple fills the SimpleSchema and validations of a non-body parameter,
// header or items object. It reports false when s is not a primitive or an
// array of primitives, after a ref has been followed.
func (c *writeContext) simple(s *ir.CastrSchema, path string, out *spec.SimpleSchema, v *spec.CommonValidations) (bool, error) {
	resolved, err := c.resolve(s, path)
	if err != nil {
		return false, err
	}
	if resolved == nil {
		return false, nil
	}
	switch resolved.Kind() {
	case ir.KindPrimitive, ir.KindArray:
	default:
		return false, nil
	}
	t := c.singleType(resolved, path)
	if t == ir.TypeObject || t == ir.TypeNull || t == "" {
		return false, nil
	}

	out.Type = t
	out.Format = resolved.Format
	if resolved.HasDefault {
		out.Default = resolved.Default
	}
	*v = validations(resolved)
	v.Enum = c.enum(resolved, path)

	if t == ir.TypeArray {
		if resolved.Items == nil {
			return false, nil
		}
		items := &spec.Items{}
		ok, err := c.simple(resolved.Items, join(path, "items"), &items.SimpleSchema, &items.CommonValidations)
		if err != nil || !ok {
			return false, err
		}
		out.Items = items
	}
	return true, nil
}

func int64Ptr(v *int) *int64 {
	if v == nil {
		return nil
	}
	out := int64(*v)
	return &out
}
