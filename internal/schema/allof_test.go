package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castr-dev/castr/internal/diag"
	"github.com/castr-dev/castr/internal/ir"
	"github.com/castr-dev/castr/internal/oas"
)

const malformedDoc = `
openapi: 3.0.3
info: {title: t, version: "1"}
paths: {}
components:
  schemas:
    Base:
      type: object
      properties:
        id: {type: string, format: uuid}
        createdAt: {type: string, format: date-time}
    Named:
      allOf:
        - $ref: '#/components/schemas/Base'
    User:
      allOf:
        - $ref: '#/components/schemas/Named'
        - type: object
          properties:
            email: {type: string, format: email}
        - required: [id, email, ghost]
`

func TestMergeFragment_SynthesizesFromSiblings(t *testing.T) {
	// Arrange
	doc := loadDoc(t, malformedDoc)

	// Act
	user, warnings := buildComponent(t, doc, "User")

	// Assert
	require.Len(t, user.AllOf, 3)
	merged := user.AllOf[2]
	assert.Equal(t, ir.KindObject, merged.Kind())
	assert.Equal(t, []string{"id", "email", "ghost"}, merged.Required)
	assert.Equal(t, []string{"id", "email"}, merged.Properties.Keys())

	id, _ := merged.Properties.Get("id")
	assert.Equal(t, "uuid", id.Format)
	assert.True(t, id.Metadata.Required)

	ws := warnings.Warnings()
	require.Len(t, ws, 1)
	assert.Equal(t, diag.WarnMalformedCompositionFragment, ws[0].Code)
	assert.Equal(t, "#/components/schemas/User/allOf/2", ws[0].Path)
	assert.Contains(t, ws[0].Message, "ghost")
}

func TestMergeFragment_Disabled(t *testing.T) {
	doc := loadDoc(t, malformedDoc)
	warnings := &diag.Collector{}
	b := NewBuilder(doc)
	b.SetWarnings(warnings)
	b.SetMergeMalformedAllOf(false)

	src, _ := doc.Components.Schemas.Get("User")
	user, err := b.BuildComponent(oas.SchemaRef("User"), src)
	require.NoError(t, err)

	fragment := user.AllOf[2]
	assert.Equal(t, ir.KindAny, fragment.Kind())
	assert.Equal(t, []string{"id", "email", "ghost"}, fragment.Required)
	assert.Nil(t, fragment.Properties)
	assert.Equal(t, 0, warnings.Len())
}

func TestMergeFragment_CyclicSiblingRefs(t *testing.T) {
	doc := loadDoc(t, `
openapi: 3.0.3
info: {title: t, version: "1"}
paths: {}
components:
  schemas:
    Loop:
      allOf:
        - $ref: '#/components/schemas/Loop'
        - required: [name]
`)
	loop, warnings := buildComponent(t, doc, "Loop")
	require.Len(t, loop.AllOf, 2)
	assert.Nil(t, loop.AllOf[1].Properties)
	assert.Equal(t, 1, warnings.Len())
}
