package oas

import "github.com/castr-dev/castr/internal/ordered"

// Schema is an OpenAPI 3.0/3.1 Schema Object as found in a bundled document.
//
// Keys the model does not name are kept in Extra so that nothing the source
// document says is silently discarded.
type Schema struct {
	Ref         string  `yaml:"$ref,omitempty" json:"$ref,omitempty"`
	Type        TypeSet `yaml:"type,omitempty" json:"type,omitempty"`
	Format      string  `yaml:"format,omitempty" json:"format,omitempty"`
	Title       string  `yaml:"title,omitempty" json:"title,omitempty"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty"`
	Default     any     `yaml:"default,omitempty" json:"default,omitempty"`
	Example     any     `yaml:"example,omitempty" json:"example,omitempty"`
	Examples    []any   `yaml:"examples,omitempty" json:"examples,omitempty"`
	Enum        []any   `yaml:"enum,omitempty" json:"enum,omitempty"`
	Const       any     `yaml:"const,omitempty" json:"const,omitempty"`
	Nullable    bool    `yaml:"nullable,omitempty" json:"nullable,omitempty"`
	ReadOnly    bool    `yaml:"readOnly,omitempty" json:"readOnly,omitempty"`
	WriteOnly   bool    `yaml:"writeOnly,omitempty" json:"writeOnly,omitempty"`
	Deprecated  bool    `yaml:"deprecated,omitempty" json:"deprecated,omitempty"`

	MultipleOf       *float64        `yaml:"multipleOf,omitempty" json:"multipleOf,omitempty"`
	Maximum          *float64        `yaml:"maximum,omitempty" json:"maximum,omitempty"`
	ExclusiveMaximum *ExclusiveBound `yaml:"exclusiveMaximum,omitempty" json:"exclusiveMaximum,omitempty"`
	Minimum          *float64        `yaml:"minimum,omitempty" json:"minimum,omitempty"`
	ExclusiveMinimum *ExclusiveBound `yaml:"exclusiveMinimum,omitempty" json:"exclusiveMinimum,omitempty"`

	MaxLength *int   `yaml:"maxLength,omitempty" json:"maxLength,omitempty"`
	MinLength *int   `yaml:"minLength,omitempty" json:"minLength,omitempty"`
	Pattern   string `yaml:"pattern,omitempty" json:"pattern,omitempty"`

	Items            *SchemaOrBool `yaml:"items,omitempty" json:"items,omitempty"`
	PrefixItems      []*Schema     `yaml:"prefixItems,omitempty" json:"prefixItems,omitempty"`
	UnevaluatedItems *SchemaOrBool `yaml:"unevaluatedItems,omitempty" json:"unevaluatedItems,omitempty"`
	MaxItems         *int          `yaml:"maxItems,omitempty" json:"maxItems,omitempty"`
	MinItems         *int          `yaml:"minItems,omitempty" json:"minItems,omitempty"`
	UniqueItems      bool          `yaml:"uniqueItems,omitempty" json:"uniqueItems,omitempty"`

	Properties            *ordered.Map[*Schema] `yaml:"properties,omitempty" json:"properties,omitempty"`
	Required              []string              `yaml:"required,omitempty" json:"required,omitempty"`
	AdditionalProperties  *SchemaOrBool         `yaml:"additionalProperties,omitempty" json:"additionalProperties,omitempty"`
	PatternProperties     *ordered.Map[*Schema] `yaml:"patternProperties,omitempty" json:"patternProperties,omitempty"`
	UnevaluatedProperties *SchemaOrBool         `yaml:"unevaluatedProperties,omitempty" json:"unevaluatedProperties,omitempty"`
	DependentSchemas      *ordered.Map[*Schema] `yaml:"dependentSchemas,omitempty" json:"dependentSchemas,omitempty"`
	DependentRequired     map[string][]string   `yaml:"dependentRequired,omitempty" json:"dependentRequired,omitempty"`
	MaxProperties         *int                  `yaml:"maxProperties,omitempty" json:"maxProperties,omitempty"`
	MinProperties         *int                  `yaml:"minProperties,omitempty" json:"minProperties,omitempty"`

	AllOf         []*Schema      `yaml:"allOf,omitempty" json:"allOf,omitempty"`
	OneOf         []*Schema      `yaml:"oneOf,omitempty" json:"oneOf,omitempty"`
	AnyOf         []*Schema      `yaml:"anyOf,omitempty" json:"anyOf,omitempty"`
	Not           *Schema        `yaml:"not,omitempty" json:"not,omitempty"`
	Discriminator *Discriminator `yaml:"discriminator,omitempty" json:"discriminator,omitempty"`

	Extra map[string]any `yaml:",inline" json:"-"`
}

// Discriminator supports polymorphism in oneOf/anyOf/allOf compositions.
type Discriminator struct {
	PropertyName string            `yaml:"propertyName" json:"propertyName"`
	Mapping      map[string]string `yaml:"mapping,omitempty" json:"mapping,omitempty"`
}

// MarshalJSON inlines Extra next to the named keywords.
func (s Schema) MarshalJSON() ([]byte, error) {
	type alias Schema
	a := alias(s)
	return marshalWithExtra(&a, s.Extra)
}

// HasComposition reports whether any composition keyword is present.
func (s *Schema) HasComposition() bool {
	return len(s.AllOf) > 0 || len(s.OneOf) > 0 || len(s.AnyOf) > 0 || s.Not != nil
}

// IsRequiredOnlyFragment reports the shape some generators emit inside allOf:
// a member that carries a required list and nothing that describes a schema.
func (s *Schema) IsRequiredOnlyFragment() bool {
	return s != nil &&
		len(s.Required) > 0 &&
		len(s.Type) == 0 &&
		s.Properties.Len() == 0 &&
		s.Ref == "" &&
		!s.HasComposition()
}
