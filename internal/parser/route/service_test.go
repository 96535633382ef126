package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/castr-dev/castr/internal/diag"
	"github.com/castr-dev/castr/internal/ir"
	"github.com/castr-dev/castr/internal/oas"
	"github.com/castr-dev/castr/internal/parser/base"
	"github.com/castr-dev/castr/internal/schema"
)

func newTestService(t *testing.T, src string) (*Service, *diag.Collector) {
	t.Helper()
	var doc oas.Document
	require.NoError(t, yaml.Unmarshal([]byte(src), &doc))
	warnings := &diag.Collector{}
	builder := schema.NewBuilder(&doc)
	builder.SetWarnings(warnings)
	service := NewService(&doc, builder, base.NewService(&doc))
	service.SetWarnings(warnings)
	return service, warnings
}

const petsAPI = `
openapi: 3.0.3
info: {title: Pets, version: "1"}
paths:
  /pets/{id}:
    summary: Single pet
    x-owner: pets-team
    parameters:
      - name: id
        in: path
        required: true
        schema: {type: string}
      - name: trace
        in: header
        schema: {type: string}
    delete:
      operationId: deletePet
      responses:
        "204": {description: gone}
    get:
      operationId: getPet
      tags: [pets]
      parameters:
        - name: trace
          in: header
          required: true
          schema: {type: string, format: uuid}
        - $ref: '#/components/parameters/Verbose'
        - name: session
          in: cookie
          schema: {type: string}
      responses:
        default:
          $ref: '#/components/responses/Problem'
        "404": {description: missing}
        "200":
          description: ok
          headers:
            X-Rate:
              schema: {type: integer}
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Pet'
        4XX: {description: client}
      security:
        - apiKey: []
  /pets:
    post:
      operationId: createPet
      security: []
      requestBody:
        required: true
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/Pet'
      responses:
        "201": {description: created}
        default: {description: failure}
    get:
      operationId: listPets
      requestBody:
        $ref: '#/components/requestBodies/Filter'
      responses:
        default: {description: everything}
components:
  schemas:
    Pet:
      type: object
      properties:
        name: {type: string}
  parameters:
    Verbose:
      name: verbose
      in: query
      schema: {type: boolean}
  requestBodies:
    Filter:
      content:
        application/json:
          schema: {type: object}
  responses:
    Problem:
      description: problem
      content:
        application/problem+json:
          schema: {type: object}
  headers:
    Limit:
      required: true
      schema: {type: integer}
  examples:
    Cat:
      value: {name: Tom}
  securitySchemes:
    apiKey: {type: apiKey, name: key, in: header}
`

// ==================== Operations ====================

func TestParseRoutes_Ordering(t *testing.T) {
	// Arrange
	service, _ := newTestService(t, petsAPI)

	// Act
	ops, err := service.ParseRoutes()

	// Assert
	require.NoError(t, err)
	var got []string
	for _, op := range ops {
		got = append(got, op.Method+" "+op.Path)
	}
	assert.Equal(t, []string{
		"get /pets",
		"post /pets",
		"get /pets/{id}",
		"delete /pets/{id}",
	}, got)
}

func TestParseRoutes_Parameters(t *testing.T) {
	service, _ := newTestService(t, petsAPI)
	ops, err := service.ParseRoutes()
	require.NoError(t, err)
	getPet := ops[2]
	require.Equal(t, "getPet", getPet.OperationID)

	t.Run("path level merged, operation wins", func(t *testing.T) {
		var names []string
		for _, p := range getPet.Parameters {
			names = append(names, p.In+":"+p.Name)
		}
		assert.Equal(t, []string{"path:id", "header:trace", "query:verbose", "cookie:session"}, names)

		trace := getPet.Parameters[1]
		assert.True(t, trace.Required)
		assert.Equal(t, "uuid", trace.Schema.Format)
		assert.Equal(t, ir.PresenceNone, trace.Schema.Metadata.ZodChain.Presence)
	})

	t.Run("ref kept with resolved fields", func(t *testing.T) {
		verbose := getPet.Parameters[2]
		assert.Equal(t, "#/components/parameters/Verbose", verbose.Ref)
		assert.Equal(t, "verbose", verbose.Name)
		assert.Equal(t, ir.PresenceOptional, verbose.Schema.Metadata.ZodChain.Presence)
	})

	t.Run("grouped by location", func(t *testing.T) {
		assert.Len(t, getPet.ByLocation.Path, 1)
		assert.Len(t, getPet.ByLocation.Query, 1)
		assert.Len(t, getPet.ByLocation.Header, 1)
		assert.Len(t, getPet.ByLocation.Cookie, 1)
	})

	t.Run("path item fields repeated", func(t *testing.T) {
		assert.Equal(t, "Single pet", getPet.PathSummary)
		assert.Equal(t, map[string]any{"x-owner": "pets-team"}, getPet.PathExtensions)
	})
}

func TestParseRoutes_Responses(t *testing.T) {
	service, warnings := newTestService(t, petsAPI)
	ops, err := service.ParseRoutes()
	require.NoError(t, err)
	getPet := ops[2]

	var codes []string
	var roles []ir.ResponseRole
	for _, r := range getPet.Responses {
		codes = append(codes, r.StatusCode)
		roles = append(roles, r.Role)
	}
	assert.Equal(t, []string{"200", "404", "4XX", "default"}, codes)
	assert.Equal(t, []ir.ResponseRole{ir.RoleSuccess, ir.RoleError, ir.RoleError, ir.RoleDefault}, roles)

	ok := getPet.Responses[0].Response
	assert.Equal(t, "#/components/schemas/Pet", ok.Content["application/json"].Schema.Ref)
	assert.True(t, ok.Content["application/json"].Schema.Metadata.Required)
	assert.Contains(t, ok.Headers, "X-Rate")

	problem := getPet.Responses[3].Response
	assert.Equal(t, "#/components/responses/Problem", problem.Ref)
	assert.Equal(t, "problem", problem.Description)

	assert.Equal(t, 0, warnings.Len(), "spec-compliant mode does not warn")
}

func TestParseRoutes_RequestBodyAndSecurity(t *testing.T) {
	service, _ := newTestService(t, petsAPI)
	ops, err := service.ParseRoutes()
	require.NoError(t, err)

	listPets, createPet, getPet := ops[0], ops[1], ops[2]

	require.NotNil(t, createPet.RequestBody)
	assert.True(t, createPet.RequestBody.Required)
	body := createPet.RequestBody.Content["application/json"].Schema
	assert.Equal(t, ir.PresenceNone, body.Metadata.ZodChain.Presence)

	require.NotNil(t, listPets.RequestBody)
	assert.Equal(t, "#/components/requestBodies/Filter", listPets.RequestBody.Ref)
	filter := listPets.RequestBody.Content["application/json"].Schema
	assert.Equal(t, ir.PresenceOptional, filter.Metadata.ZodChain.Presence)

	require.NotNil(t, createPet.Security)
	assert.Empty(t, *createPet.Security, "explicit empty security is kept")
	require.NotNil(t, getPet.Security)
	assert.Equal(t, []ir.SecurityRequirement{{"apiKey": {}}}, *getPet.Security)
	assert.Nil(t, listPets.Security)
}

// ==================== Default status behavior ====================

func TestDefaultStatusBehavior(t *testing.T) {
	tests := []struct {
		name      string
		behavior  DefaultStatusBehavior
		opIndex   int
		wantRole  ir.ResponseRole
		wantWarns int
	}{
		{"spec-compliant keeps default", DefaultStatusSpecCompliant, 1, ir.RoleDefault, 0},
		{"auto-correct with 2xx is error", DefaultStatusAutoCorrect, 1, ir.RoleError, 1},
		{"auto-correct without 2xx is success", DefaultStatusAutoCorrect, 0, ir.RoleSuccess, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, warnings := newTestService(t, petsAPI)
			service.SetDefaultStatusBehavior(tt.behavior)
			ops, err := service.ParseRoutes()
			require.NoError(t, err)

			responses := ops[tt.opIndex].Responses
			last := responses[len(responses)-1]
			assert.Equal(t, "default", last.StatusCode)
			assert.Equal(t, tt.wantRole, last.Role)

			// getPet also has a default response.
			ws := warnings.Warnings().Filter(diag.WarnAmbiguousDefaultResponse)
			if tt.wantWarns == 0 {
				assert.Empty(t, ws)
			} else {
				assert.Len(t, ws, 3)
			}
		})
	}
}

func TestParseDefaultStatusBehavior(t *testing.T) {
	b, err := ParseDefaultStatusBehavior("")
	require.NoError(t, err)
	assert.Equal(t, DefaultStatusSpecCompliant, b)

	b, err = ParseDefaultStatusBehavior("auto-correct")
	require.NoError(t, err)
	assert.Equal(t, DefaultStatusAutoCorrect, b)

	_, err = ParseDefaultStatusBehavior("guess")
	assert.Error(t, err)
}

// ==================== Errors ====================

func TestParseRoutes_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		ref  string
	}{
		{
			name: "parameter ref",
			src: `
openapi: 3.0.3
info: {title: t, version: "1"}
paths:
  /a:
    get:
      parameters:
        - $ref: '#/components/parameters/Nope'
      responses: {"200": {description: ok}}
`,
			ref: "#/components/parameters/Nope",
		},
		{
			name: "schema ref in body",
			src: `
openapi: 3.0.3
info: {title: t, version: "1"}
paths:
  /a:
    post:
      requestBody:
        content:
          application/json:
            schema: {$ref: '#/components/schemas/Nope'}
      responses: {"200": {description: ok}}
`,
			ref: "#/components/schemas/Nope",
		},
		{
			name: "security scheme",
			src: `
openapi: 3.0.3
info: {title: t, version: "1"}
paths:
  /a:
    get:
      security: [{nope: []}]
      responses: {"200": {description: ok}}
`,
			ref: "#/components/securitySchemes/nope",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := newTestService(t, tt.src)
			_, err := service.ParseRoutes()
			var unresolved *diag.UnresolvableReferenceError
			require.ErrorAs(t, err, &unresolved)
			assert.Equal(t, tt.ref, unresolved.Ref)
		})
	}
}

func TestParseRoutes_UnknownLocation(t *testing.T) {
	service, _ := newTestService(t, `
openapi: 3.0.3
info: {title: t, version: "1"}
paths:
  /a:
    get:
      parameters:
        - {name: x, in: body}
      responses: {"200": {description: ok}}
`)
	_, err := service.ParseRoutes()
	assert.ErrorContains(t, err, "unknown location")
}

// ==================== Webhooks & components ====================

func TestParseWebhooks(t *testing.T) {
	service, _ := newTestService(t, `
openapi: 3.1.0
info: {title: t, version: "1"}
webhooks:
  petAdded:
    post:
      requestBody:
        content:
          application/json:
            schema: {type: object}
      responses: {"200": {description: ok}}
`)
	hooks, err := service.ParseWebhooks()
	require.NoError(t, err)
	require.Len(t, hooks, 1)
	assert.Equal(t, "petAdded", hooks[0].Path)
	assert.Equal(t, "post", hooks[0].Method)
}

func TestParseComponents(t *testing.T) {
	service, _ := newTestService(t, petsAPI)
	comps, err := service.ParseComponents("", service.doc.Components)
	require.NoError(t, err)

	var refs []string
	for _, c := range comps {
		refs = append(refs, c.Ref())
	}
	assert.Equal(t, []string{
		"#/components/parameters/Verbose",
		"#/components/responses/Problem",
		"#/components/requestBodies/Filter",
		"#/components/headers/Limit",
		"#/components/examples/Cat",
	}, refs)

	assert.Equal(t, "verbose", comps[0].Parameter.Name)
	assert.Equal(t, ir.PresenceNone, comps[3].Header.Schema.Metadata.ZodChain.Presence)
	assert.Equal(t, map[string]any{"value": map[string]any{"name": "Tom"}}, comps[4].Value)
}
