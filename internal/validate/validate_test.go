package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimal30 = `{
  "openapi": "3.0.3",
  "info": {"title": "t", "version": "1"},
  "paths": {
    "/pets": {
      "get": {
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "integer"}}],
        "responses": {"200": {"description": "ok", "content": {"application/json": {"schema": {"type": "string", "nullable": true}}}}}
      }
    }
  }
}`

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name    string
		version string
		doc     string
		wantErr bool
	}{
		{name: "valid 3.0", version: "3.0.3", doc: minimal30},
		{
			name:    "valid 3.1 with webhooks only",
			version: "3.1.0",
			doc:     `{"openapi":"3.1.0","info":{"title":"t","summary":"s","version":"1"},"webhooks":{"ping":{"post":{"responses":{"200":{"description":"ok"}}}}}}`,
		},
		{
			name:    "3.0 missing paths",
			version: "3.0.3",
			doc:     `{"openapi":"3.0.3","info":{"title":"t","version":"1"}}`,
			wantErr: true,
		},
		{
			name:    "3.0 rejects info summary",
			version: "3.0.3",
			doc:     `{"openapi":"3.0.3","info":{"title":"t","summary":"s","version":"1"},"paths":{}}`,
			wantErr: true,
		},
		{
			name:    "3.0 rejects type arrays",
			version: "3.0.3",
			doc:     `{"openapi":"3.0.3","info":{"title":"t","version":"1"},"paths":{},"components":{"schemas":{"A":{"type":["string","null"]}}}}`,
			wantErr: true,
		},
		{
			name:    "3.0 rejects const",
			version: "3.0.3",
			doc:     `{"openapi":"3.0.3","info":{"title":"t","version":"1"},"paths":{},"components":{"schemas":{"A":{"const":1}}}}`,
			wantErr: true,
		},
		{
			name:    "3.1 rejects nullable",
			version: "3.1.0",
			doc:     `{"openapi":"3.1.0","info":{"title":"t","version":"1"},"paths":{},"components":{"schemas":{"A":{"type":"string","nullable":true}}}}`,
			wantErr: true,
		},
		{
			name:    "path parameter must be required",
			version: "3.1.0",
			doc:     `{"openapi":"3.1.0","info":{"title":"t","version":"1"},"paths":{"/a/{id}":{"get":{"parameters":[{"name":"id","in":"path","schema":{"type":"string"}}]}}}}`,
			wantErr: true,
		},
		{
			name:    "response needs description",
			version: "3.0.3",
			doc:     `{"openapi":"3.0.3","info":{"title":"t","version":"1"},"paths":{"/a":{"get":{"responses":{"200":{}}}}}}`,
			wantErr: true,
		},
		{
			name:    "valid swagger 2.0",
			version: "2.0",
			doc:     `{"swagger":"2.0","info":{"title":"t","version":"1"},"host":"api.example.com","basePath":"/v1","paths":{"/a":{"post":{"parameters":[{"name":"body","in":"body","schema":{"type":"object"}},{"name":"q","in":"query","type":"integer","minimum":1,"exclusiveMinimum":true}],"responses":{"200":{"description":"ok"}}}}}}`,
		},
		{
			name:    "swagger body parameter needs schema",
			version: "2.0",
			doc:     `{"swagger":"2.0","info":{"title":"t","version":"1"},"paths":{"/a":{"post":{"parameters":[{"name":"body","in":"body","type":"string"}],"responses":{"200":{"description":"ok"}}}}}}`,
			wantErr: true,
		},
		{
			name:    "swagger rejects oneOf",
			version: "2.0",
			doc:     `{"swagger":"2.0","info":{"title":"t","version":"1"},"paths":{},"definitions":{"A":{"oneOf":[{"type":"string"}]}}}`,
			wantErr: true,
		},
		{
			name:    "unknown version",
			version: "1.2",
			doc:     `{}`,
			wantErr: true,
		},
	}
	service := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.ValidateDocument(tt.version, []byte(tt.doc))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateDocument_CachesCompiledMetaSchema(t *testing.T) {
	service := New()
	require.NoError(t, service.ValidateDocument("3.0.3", []byte(minimal30)))
	require.NoError(t, service.ValidateDocument("3.0.1", []byte(minimal30)))
	assert.Len(t, service.compiled, 1)
}

func TestCompileSchema(t *testing.T) {
	service := New()

	t.Run("2020-12", func(t *testing.T) {
		err := service.CompileSchema("pet.json", []byte(`{
			"$schema": "https://json-schema.org/draft/2020-12/schema",
			"$defs": {"Pet": {"type": "object", "properties": {"next": {"$ref": "#/$defs/Pet"}}}},
			"$ref": "#/$defs/Pet"
		}`))
		assert.NoError(t, err)
	})

	t.Run("draft-04", func(t *testing.T) {
		err := service.CompileSchema("pet.json", []byte(`{
			"$schema": "http://json-schema.org/draft-04/schema#",
			"definitions": {"N": {"type": "number", "minimum": 0, "exclusiveMinimum": true}},
			"$ref": "#/definitions/N"
		}`))
		assert.NoError(t, err)
	})

	t.Run("dangling ref", func(t *testing.T) {
		err := service.CompileSchema("pet.json", []byte(`{"$ref": "#/$defs/Missing"}`))
		assert.Error(t, err)
	})
}

func TestValidateInstance(t *testing.T) {
	service := New()
	schema := []byte(`{"type": "object", "required": ["name"], "properties": {"name": {"type": "string", "minLength": 1}}}`)

	assert.NoError(t, service.ValidateInstance("pet.json", schema, []byte(`{"name": "Rex"}`)))
	assert.Error(t, service.ValidateInstance("pet.json", schema, []byte(`{"name": ""}`)))
	assert.Error(t, service.ValidateInstance("pet.json", schema, []byte(`{}`)))
}
