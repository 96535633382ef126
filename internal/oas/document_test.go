package oas

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const petstore = `
openapi: 3.1.0
info:
  title: Pets
  version: "1.0"
x-owner: platform
paths:
  /pets:
    get:
      operationId: listPets
      responses:
        "200":
          description: ok
components:
  schemas:
    Pet:
      type: [object, "null"]
      x-go-name: PetModel
      properties:
        name:
          type: string
        age:
          type: integer
          exclusiveMinimum: 0
      additionalProperties: false
    Legacy:
      type: number
      minimum: 1
      exclusiveMinimum: true
x-ext:
  abc123:
    components:
      schemas:
        Remote:
          type: string
`

// ==================== Decoding ====================

func TestDocument_Decode(t *testing.T) {
	var doc Document
	require.NoError(t, yaml.Unmarshal([]byte(petstore), &doc))

	assert.Equal(t, "3.1.0", doc.OpenAPI)
	assert.True(t, doc.Is31())
	assert.Equal(t, "platform", doc.Extra["x-owner"])
	assert.Equal(t, []string{"Legacy", "Pet"}, doc.SchemaNames())

	pet, ok := doc.LookupSchema("#/components/schemas/Pet")
	require.True(t, ok)
	assert.Equal(t, TypeSet{"object", "null"}, pet.Type)
	assert.Equal(t, []string{"name", "age"}, pet.Properties.Keys())
	assert.Equal(t, "PetModel", pet.Extra["x-go-name"])
	require.NotNil(t, pet.AdditionalProperties)
	assert.False(t, pet.AdditionalProperties.Allows)
	assert.Nil(t, pet.AdditionalProperties.Schema)

	age, _ := pet.Properties.Get("age")
	require.NotNil(t, age.ExclusiveMinimum)
	require.NotNil(t, age.ExclusiveMinimum.Value)
	assert.Equal(t, 0.0, *age.ExclusiveMinimum.Value)

	legacy, ok := doc.LookupSchema("#/components/schemas/Legacy")
	require.True(t, ok)
	require.NotNil(t, legacy.ExclusiveMinimum.Flag)
	assert.True(t, *legacy.ExclusiveMinimum.Flag)

	remote, ok := doc.LookupSchema("#/x-ext/abc123/components/schemas/Remote")
	require.True(t, ok)
	assert.Equal(t, TypeSet{"string"}, remote.Type)

	item, ok := doc.Paths.Get("/pets")
	require.True(t, ok)
	require.NotNil(t, item.Operation("get"))
	assert.Equal(t, "listPets", item.Operation("get").OperationID)
	assert.Nil(t, item.Operation("post"))
}

func TestDocument_DecodeJSON(t *testing.T) {
	src := `{"openapi":"3.0.3","info":{"title":"t","version":"1"},"paths":{},
	  "components":{"schemas":{"B":{"type":"string"},"A":{"type":"integer","nullable":true}}}}`
	var doc Document
	require.NoError(t, yaml.Unmarshal([]byte(src), &doc))
	assert.False(t, doc.Is31())
	assert.Equal(t, []string{"B", "A"}, doc.Components.Schemas.Keys())
	a, _ := doc.Components.Schemas.Get("A")
	assert.True(t, a.Nullable)
}

// ==================== Encoding ====================

func TestSchema_MarshalInlinesExtra(t *testing.T) {
	s := Schema{
		Type:  TypeSet{"string"},
		Extra: map[string]any{"x-b": 2, "x-a": "one"},
	}
	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `{"type":"string","x-a":"one","x-b":2}`, string(data))
}

func TestSchema_MarshalExtraOnly(t *testing.T) {
	s := Schema{Extra: map[string]any{"x-a": true}}
	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `{"x-a":true}`, string(data))
}

func TestUnionForms_Marshal(t *testing.T) {
	data, err := json.Marshal(Schema{
		Type:             TypeSet{"integer", "null"},
		ExclusiveMaximum: NumericBound(10),
		Items:            BoolSchema(false),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":["integer","null"],"exclusiveMaximum":10,"items":false}`, string(data))
}

func TestSchema_IsRequiredOnlyFragment(t *testing.T) {
	tests := []struct {
		name   string
		schema *Schema
		want   bool
	}{
		{"nil", nil, false},
		{"required only", &Schema{Required: []string{"id"}}, true},
		{"typed", &Schema{Type: TypeSet{"object"}, Required: []string{"id"}}, false},
		{"ref", &Schema{Ref: "#/components/schemas/A", Required: []string{"id"}}, false},
		{"no required", &Schema{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.schema.IsRequiredOnlyFragment())
		})
	}
}

// ==================== Refs ====================

func TestParseRef(t *testing.T) {
	ref, err := ParseRef("#/components/schemas/a~1b")
	require.NoError(t, err)
	assert.Equal(t, "schemas", ref.Kind)
	assert.Equal(t, "a/b", ref.Name)
	assert.Empty(t, ref.Hash)

	ref, err = ParseRef("#/x-ext/f00/components/parameters/Limit")
	require.NoError(t, err)
	assert.Equal(t, "f00", ref.Hash)
	assert.Equal(t, "parameters", ref.Kind)
	assert.Equal(t, "Limit", ref.Name)

	for _, bad := range []string{"other.yaml#/A", "#/definitions/A", "#/components/schemas", "#/components/schemas/"} {
		_, err := ParseRef(bad)
		assert.ErrorIs(t, err, ErrNotInternalRef, bad)
	}
}

func TestComponentRef_Escapes(t *testing.T) {
	assert.Equal(t, "#/components/schemas/a~1b~0c", SchemaRef("a/b~c"))
}
