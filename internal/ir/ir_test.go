package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==================== Kind ====================

func TestCastrSchema_Kind(t *testing.T) {
	props := NewProperties()
	props.Set("a", &CastrSchema{Type: []string{TypeString}})

	tests := []struct {
		name   string
		schema *CastrSchema
		want   SchemaKind
	}{
		{"nil", nil, KindAny},
		{"empty", &CastrSchema{}, KindAny},
		{"ref", &CastrSchema{Ref: "#/components/schemas/A", Type: []string{TypeObject}}, KindRef},
		{"primitive", &CastrSchema{Type: []string{TypeString}}, KindPrimitive},
		{"object by type", &CastrSchema{Type: []string{TypeObject}}, KindObject},
		{"object by properties", &CastrSchema{Properties: props}, KindObject},
		{"array by items", &CastrSchema{Items: &CastrSchema{}}, KindArray},
		{"composition wins over object", &CastrSchema{Type: []string{TypeObject}, AllOf: []*CastrSchema{{}}}, KindComposition},
		{"not", &CastrSchema{Not: &CastrSchema{}}, KindComposition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.schema.Kind())
		})
	}
}

// ==================== Walk ====================

func TestWalk_SortedPreOrder(t *testing.T) {
	props := NewProperties()
	props.Set("zeta", &CastrSchema{Type: []string{TypeString}})
	props.Set("alpha", &CastrSchema{
		Type:  []string{TypeArray},
		Items: &CastrSchema{Ref: "#/components/schemas/Item"},
	})
	root := &CastrSchema{
		Type:       []string{TypeObject},
		Properties: props,
		AllOf:      []*CastrSchema{{Ref: "#/components/schemas/Base"}},
	}

	var paths []string
	Walk(root, "#", func(path string, _ *CastrSchema) bool {
		paths = append(paths, path)
		return true
	})

	assert.Equal(t, []string{
		"#",
		"#/properties/alpha",
		"#/properties/alpha/items",
		"#/properties/zeta",
		"#/allOf/0",
	}, paths)
}

func TestWalk_SkipChildren(t *testing.T) {
	root := &CastrSchema{Type: []string{TypeArray}, Items: &CastrSchema{Type: []string{TypeString}}}
	count := 0
	Walk(root, "#", func(string, *CastrSchema) bool {
		count++
		return false
	})
	assert.Equal(t, 1, count)
}

func TestWalk_DeepNestingIsIterative(t *testing.T) {
	root := &CastrSchema{}
	cur := root
	for i := 0; i < 5000; i++ {
		next := &CastrSchema{}
		cur.Items = next
		cur = next
	}
	count := 0
	Walk(root, "", func(string, *CastrSchema) bool {
		count++
		return true
	})
	assert.Equal(t, 5001, count)
}

// ==================== Components ====================

func TestComponentRef(t *testing.T) {
	c := &IRComponent{Type: ComponentSchema, Name: "a/b"}
	assert.Equal(t, "#/components/schemas/a~1b", c.Ref())

	ext := &IRComponent{Type: ComponentParameter, Name: "Limit", Origin: "f00"}
	assert.Equal(t, "#/x-ext/f00/components/parameters/Limit", ext.Ref())

	kind, ok := ComponentTypeForSection("requestBodies")
	require.True(t, ok)
	assert.Equal(t, ComponentRequestBody, kind)
}

func TestCastrDocument_Lookup(t *testing.T) {
	pet := &CastrSchema{Type: []string{TypeObject}}
	doc := &CastrDocument{Components: []*IRComponent{
		{Type: ComponentSchema, Name: "Pet", Schema: pet},
		{Type: ComponentParameter, Name: "Pet", Parameter: &Parameter{Name: "pet", In: InQuery}},
	}}

	got, ok := doc.Schema("#/components/schemas/Pet")
	require.True(t, ok)
	assert.Same(t, pet, got)

	_, ok = doc.Schema("#/components/parameters/Pet")
	assert.False(t, ok)
	assert.Len(t, doc.ComponentsOf(ComponentParameter), 1)
}

// ==================== Status codes ====================

func TestSortStatusCodes(t *testing.T) {
	codes := []string{"default", "4XX", "500", "200", "2XX", "201", "404"}
	SortStatusCodes(codes)
	assert.Equal(t, []string{"200", "201", "404", "500", "2XX", "4XX", "default"}, codes)
}

func TestIsSuccessStatus(t *testing.T) {
	assert.True(t, IsSuccessStatus("204"))
	assert.True(t, IsSuccessStatus("2XX"))
	assert.True(t, IsSuccessStatus("2xx"))
	assert.False(t, IsSuccessStatus("302"))
	assert.False(t, IsSuccessStatus("default"))
}
