package loader

import (
	"io"
	"log"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadFile(t *testing.T) {
	t.Run("loads yaml document", func(t *testing.T) {
		// Arrange
		service := NewService(WithDebugger(log.New(io.Discard, "", 0)))

		// Act
		doc, err := service.LoadFile("../../testdata/petstore.yaml")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "3.0.3", doc.OpenAPI)
		assert.Equal(t, "Petstore", doc.Info.Title)
		assert.Equal(t, []string{"Pet", "NewPet", "Status", "Owner", "Error"}, doc.Components.Schemas.Keys())
		assert.Equal(t, []string{"/pets", "/pets/{petId}"}, doc.Paths.Keys())
	})

	t.Run("loads json document", func(t *testing.T) {
		doc, err := NewService().LoadFile("../../testdata/specs/nested/b.json")
		require.NoError(t, err)
		assert.Equal(t, "3.1.0", doc.OpenAPI)
		assert.True(t, doc.Is31())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewService().LoadFile("../../testdata/nope.yaml")
		assert.Error(t, err)
	})
}

func TestLoadBytes(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		strict  bool
		wantErr string
	}{
		{
			name: "valid 3.1",
			src:  "openapi: 3.1.0\ninfo: {title: t, version: '1'}\npaths: {}\n",
		},
		{
			name:    "empty input",
			src:     "",
			wantErr: "empty input",
		},
		{
			name: "swagger 2 tolerated when not strict",
			src:  "swagger: '2.0'\ninfo: {title: t, version: '1'}\n",
		},
		{
			name:    "swagger 2 rejected when strict",
			src:     "swagger: '2.0'\ninfo: {title: t, version: '1'}\n",
			strict:  true,
			wantErr: "unsupported openapi version",
		},
		{
			name:    "external ref rejected when strict",
			src:     "openapi: 3.0.3\ninfo: {title: t, version: '1'}\npaths: {}\ncomponents:\n  schemas:\n    A: {$ref: 'other.yaml#/A'}\n",
			strict:  true,
			wantErr: `external reference "other.yaml#/A"`,
		},
		{
			name:    "malformed yaml",
			src:     "openapi: [",
			wantErr: "decode document",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewService(WithStrict(tt.strict))
			doc, err := service.LoadBytes([]byte(tt.src))
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, doc)
		})
	}
}

func TestExternalRefs(t *testing.T) {
	var root yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(`
a: {$ref: 'b.yaml#/X'}
list:
  - $ref: '#/components/schemas/Local'
  - $ref: 'a.yaml'
  - $ref: 'b.yaml#/X'
`), &root))
	assert.Equal(t, []string{"a.yaml", "b.yaml#/X"}, ExternalRefs(&root))
}

func TestLoadSearchDirs(t *testing.T) {
	t.Run("loads documents recursively, skipping hidden dirs", func(t *testing.T) {
		// Arrange
		service := NewService()

		// Act
		result, err := service.LoadSearchDirs([]string{"../../testdata/specs"})

		// Assert
		require.NoError(t, err)
		var titles []string
		for _, doc := range result.Documents {
			titles = append(titles, doc.Info.Title)
		}
		assert.ElementsMatch(t, []string{"A", "B"}, titles)
	})

	t.Run("excludes by directory name", func(t *testing.T) {
		service := NewService(WithExcludes(map[string]struct{}{"nested": {}}))
		result, err := service.LoadSearchDirs([]string{"../../testdata/specs"})
		require.NoError(t, err)
		require.Len(t, result.Documents, 1)
		for path := range result.Documents {
			assert.Equal(t, "a.yaml", filepath.Base(path))
		}
	})

	t.Run("extension filter", func(t *testing.T) {
		service := NewService(WithExtensions([]string{".json"}))
		result, err := service.LoadSearchDirs([]string{"../../testdata/specs"})
		require.NoError(t, err)
		assert.Len(t, result.Documents, 1)
	})
}
