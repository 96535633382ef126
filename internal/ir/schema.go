// Package ir defines the canonical intermediate representation every input
// document is normalized into and every writer reads from.
//
// Schemas never point at other components directly; cross-component links are
// `$ref` strings resolved through the owning CastrDocument, which is what
// lets cyclic type graphs exist as plain trees.
package ir

// SchemaKind is the variant of a CastrSchema.
type SchemaKind string

const (
	KindRef         SchemaKind = "ref"
	KindPrimitive   SchemaKind = "primitive"
	KindObject      SchemaKind = "object"
	KindArray       SchemaKind = "array"
	KindComposition SchemaKind = "composition"
	KindAny         SchemaKind = "any"
)

// Primitive type names.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeNull    = "null"
	TypeObject  = "object"
	TypeArray   = "array"
)

// CastrSchema is one schema site. Fields that do not apply to the schema's
// kind stay at their zero value.
//
// Slices and maps are serialized without omitempty so nil and empty survive
// a persisted round trip unchanged.
type CastrSchema struct {
	Ref    string   `json:"$ref,omitempty"`
	Type   []string `json:"type"`
	Format string   `json:"format,omitempty"`

	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Default     any    `json:"default,omitempty"`
	HasDefault  bool   `json:"hasDefault,omitempty"`
	Example     any    `json:"example,omitempty"`
	Examples    []any  `json:"examples"`
	Enum        []any  `json:"enum"`
	Const       any    `json:"const,omitempty"`
	HasConst    bool   `json:"hasConst,omitempty"`
	Deprecated  bool   `json:"deprecated,omitempty"`
	ReadOnly    bool   `json:"readOnly,omitempty"`
	WriteOnly   bool   `json:"writeOnly,omitempty"`

	Constraints Constraints `json:"constraints"`

	Properties            *CastrSchemaProperties `json:"properties,omitempty"`
	Required              []string               `json:"required"`
	AdditionalProperties  *Additional            `json:"additionalProperties,omitempty"`
	PatternProperties     *CastrSchemaProperties `json:"patternProperties,omitempty"`
	DependentSchemas      *CastrSchemaProperties `json:"dependentSchemas,omitempty"`
	DependentRequired     map[string][]string    `json:"dependentRequired"`
	UnevaluatedProperties *Additional            `json:"unevaluatedProperties,omitempty"`

	Items            *CastrSchema   `json:"items,omitempty"`
	PrefixItems      []*CastrSchema `json:"prefixItems"`
	ItemsClosed      bool           `json:"itemsClosed,omitempty"`
	UnevaluatedItems *Additional    `json:"unevaluatedItems,omitempty"`

	AllOf         []*CastrSchema `json:"allOf"`
	OneOf         []*CastrSchema `json:"oneOf"`
	AnyOf         []*CastrSchema `json:"anyOf"`
	Not           *CastrSchema   `json:"not,omitempty"`
	Discriminator *Discriminator `json:"discriminator,omitempty"`

	Extensions map[string]any `json:"extensions"`

	Metadata SchemaMetadata `json:"metadata"`
}

// Constraints are the validation keywords recognized by the chain extractor,
// already normalized: exclusive bounds are always numeric.
type Constraints struct {
	Minimum          *float64 `json:"minimum,omitempty"`
	Maximum          *float64 `json:"maximum,omitempty"`
	ExclusiveMinimum *float64 `json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum *float64 `json:"exclusiveMaximum,omitempty"`
	MultipleOf       *float64 `json:"multipleOf,omitempty"`
	MinLength        *int     `json:"minLength,omitempty"`
	MaxLength        *int     `json:"maxLength,omitempty"`
	Pattern          string   `json:"pattern,omitempty"`
	MinItems         *int     `json:"minItems,omitempty"`
	MaxItems         *int     `json:"maxItems,omitempty"`
	UniqueItems      bool     `json:"uniqueItems,omitempty"`
	MinProperties    *int     `json:"minProperties,omitempty"`
	MaxProperties    *int     `json:"maxProperties,omitempty"`
}

// IsZero reports whether no constraint is set.
func (c Constraints) IsZero() bool {
	return c == Constraints{}
}

// Additional is a boolean-or-schema keyword such as additionalProperties.
type Additional struct {
	Allows bool         `json:"allows"`
	Schema *CastrSchema `json:"schema,omitempty"`
}

// Discriminator mirrors the OpenAPI discriminator object.
type Discriminator struct {
	PropertyName string            `json:"propertyName"`
	Mapping      map[string]string `json:"mapping"`
}

// Kind returns the schema's variant.
func (s *CastrSchema) Kind() SchemaKind {
	switch {
	case s == nil:
		return KindAny
	case s.Ref != "":
		return KindRef
	case len(s.AllOf) > 0 || len(s.OneOf) > 0 || len(s.AnyOf) > 0 || s.Not != nil:
		return KindComposition
	case s.HasType(TypeObject) || s.Properties.Len() > 0 || s.AdditionalProperties != nil:
		return KindObject
	case s.HasType(TypeArray) || s.Items != nil || len(s.PrefixItems) > 0:
		return KindArray
	case len(s.Type) > 0:
		return KindPrimitive
	default:
		return KindAny
	}
}

// HasType reports whether name is one of the schema's types.
func (s *CastrSchema) HasType(name string) bool {
	if s == nil {
		return false
	}
	for _, t := range s.Type {
		if t == name {
			return true
		}
	}
	return false
}

// IsRequired reports whether name is in the required list.
func (s *CastrSchema) IsRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// Meta returns the metadata node.
func (s *CastrSchema) Meta() *SchemaMetadata {
	return &s.Metadata
}
