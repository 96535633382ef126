// Package chain extracts validation constraints from source schemas and
// renders them as ordered, target-agnostic chain tokens.
//
// Token order is fixed: numeric bounds, multipleOf, int; string length,
// pattern, format; array bounds, uniqueItems; property counts. Presence is
// computed separately and defaults always come last.
package chain

import (
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/castr-dev/castr/internal/ir"
	"github.com/castr-dev/castr/internal/oas"
)

// ExtractConstraints copies the recognized validation keywords of s.
//
// A numeric exclusive bound is taken as is. A legacy boolean `true` flag turns
// the matching inclusive bound into the exclusive one and drops the inclusive
// bound; a `false` flag is ignored.
func ExtractConstraints(s *oas.Schema) ir.Constraints {
	if s == nil {
		return ir.Constraints{}
	}
	c := ir.Constraints{
		Minimum:       copyFloat(s.Minimum),
		Maximum:       copyFloat(s.Maximum),
		MultipleOf:    copyFloat(s.MultipleOf),
		MinLength:     copyInt(s.MinLength),
		MaxLength:     copyInt(s.MaxLength),
		Pattern:       s.Pattern,
		MinItems:      copyInt(s.MinItems),
		MaxItems:      copyInt(s.MaxItems),
		UniqueItems:   s.UniqueItems,
		MinProperties: copyInt(s.MinProperties),
		MaxProperties: copyInt(s.MaxProperties),
	}
	c.ExclusiveMinimum, c.Minimum = exclusive(s.ExclusiveMinimum, c.Minimum)
	c.ExclusiveMaximum, c.Maximum = exclusive(s.ExclusiveMaximum, c.Maximum)
	return c
}

// exclusive resolves one exclusive bound against its inclusive partner and
// returns the new (exclusive, inclusive) pair.
func exclusive(b *oas.ExclusiveBound, inclusive *float64) (*float64, *float64) {
	switch {
	case b == nil:
		return nil, inclusive
	case b.Value != nil:
		return copyFloat(b.Value), inclusive
	case b.Flag != nil && *b.Flag && inclusive != nil:
		return inclusive, nil
	default:
		return nil, inclusive
	}
}

// Validations returns the ordered validation tokens of s.
func Validations(s *ir.CastrSchema) []string {
	if s == nil || s.Ref != "" {
		return []string{}
	}
	c := s.Constraints
	out := []string{}

	if c.Minimum != nil {
		out = append(out, "minimum:"+formatNumber(*c.Minimum))
	}
	if c.ExclusiveMinimum != nil {
		out = append(out, "exclusiveMinimum:"+formatNumber(*c.ExclusiveMinimum))
	}
	if c.Maximum != nil {
		out = append(out, "maximum:"+formatNumber(*c.Maximum))
	}
	if c.ExclusiveMaximum != nil {
		out = append(out, "exclusiveMaximum:"+formatNumber(*c.ExclusiveMaximum))
	}
	if c.MultipleOf != nil {
		out = append(out, "multipleOf:"+formatNumber(*c.MultipleOf))
	}
	if s.HasType(ir.TypeInteger) {
		out = append(out, "int")
	}

	if c.MinLength != nil {
		out = append(out, "minLength:"+strconv.Itoa(*c.MinLength))
	}
	if c.MaxLength != nil {
		out = append(out, "maxLength:"+strconv.Itoa(*c.MaxLength))
	}
	if c.Pattern != "" {
		out = append(out, "pattern:"+c.Pattern)
	}
	if s.Format != "" {
		out = append(out, "format:"+s.Format)
	}

	if c.MinItems != nil {
		out = append(out, "minItems:"+strconv.Itoa(*c.MinItems))
	}
	if c.MaxItems != nil {
		out = append(out, "maxItems:"+strconv.Itoa(*c.MaxItems))
	}
	if c.UniqueItems {
		out = append(out, "uniqueItems")
	}

	if c.MinProperties != nil {
		out = append(out, "minProperties:"+strconv.Itoa(*c.MinProperties))
	}
	if c.MaxProperties != nil {
		out = append(out, "maxProperties:"+strconv.Itoa(*c.MaxProperties))
	}
	return out
}

// PresenceOf maps required/nullable to the presence token.
func PresenceOf(required, nullable bool) ir.Presence {
	switch {
	case !required && !nullable:
		return ir.PresenceOptional
	case !required && nullable:
		return ir.PresenceNullish
	case required && nullable:
		return ir.PresenceNullable
	default:
		return ir.PresenceNone
	}
}

// Defaults returns the default-value tokens of s.
func Defaults(s *ir.CastrSchema) ([]string, error) {
	if s == nil || !s.HasDefault {
		return []string{}, nil
	}
	data, err := json.Marshal(s.Default)
	if err != nil {
		return nil, err
	}
	return []string{"default:" + string(data)}, nil
}

// Build computes the full chain of s from its constraints and metadata.
func Build(s *ir.CastrSchema) (ir.ZodChain, error) {
	defaults, err := Defaults(s)
	if err != nil {
		return ir.ZodChain{}, err
	}
	return ir.ZodChain{
		Presence:    PresenceOf(s.Metadata.Required, s.Metadata.Nullable),
		Validations: Validations(s),
		Defaults:    defaults,
	}, nil
}

// Render flattens a chain into its emission order: validations, presence,
// defaults. The `none` presence produces no token.
func Render(c ir.ZodChain) []string {
	out := make([]string, 0, len(c.Validations)+1+len(c.Defaults))
	out = append(out, c.Validations...)
	if c.Presence != "" && c.Presence != ir.PresenceNone {
		out = append(out, string(c.Presence))
	}
	return append(out, c.Defaults...)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
