package schema

import (
	"github.com/castr-dev/castr/internal/ir"
	"github.com/castr-dev/castr/internal/oas"
	"github.com/castr-dev/castr/internal/ordered"
)

// IsPrimitiveType determines whether the type name is one of the JSON-Schema types.
func IsPrimitiveType(typeName string) bool {
	switch typeName {
	case ir.TypeString, ir.TypeNumber, ir.TypeInteger, ir.TypeBoolean, ir.TypeNull, ir.TypeArray, ir.TypeObject:
		return true
	}
	return false
}

// PrimitiveSchema builds a source schema of a single type.
func PrimitiveSchema(typeName string) *oas.Schema {
	return &oas.Schema{Type: oas.TypeSet{typeName}}
}

// RefSchema builds a source schema referencing a schema component.
func RefSchema(name string) *oas.Schema {
	return &oas.Schema{Ref: oas.SchemaRef(name)}
}

func newSchemaMap() *ordered.Map[*oas.Schema] {
	return ordered.New[*oas.Schema]()
}
