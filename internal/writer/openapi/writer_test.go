package openapi

import (
	"io"
	"log"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castr-dev/castr/internal/diag"
	"github.com/castr-dev/castr/internal/ir"
	"github.com/castr-dev/castr/internal/loader"
	"github.com/castr-dev/castr/internal/oas"
	"github.com/castr-dev/castr/internal/orchestrator"
)

const (
	petstore   = "../../../testdata/petstore.yaml"
	webhooks31 = "../../../testdata/webhooks31.yaml"
)

func buildDoc(t *testing.T, doc *oas.Document) *ir.CastrDocument {
	t.Helper()
	config := orchestrator.DefaultConfig()
	config.Debug = log.New(io.Discard, "", 0)
	out, _, err := orchestrator.New(config).Build(doc)
	require.NoError(t, err)
	return out
}

func buildFile(t *testing.T, path string) *ir.CastrDocument {
	t.Helper()
	doc, err := loader.NewService().LoadFile(path)
	require.NoError(t, err)
	return buildDoc(t, doc)
}

func buildSource(t *testing.T, src string) *ir.CastrDocument {
	t.Helper()
	doc, err := loader.NewService().LoadBytes([]byte(src))
	require.NoError(t, err)
	return buildDoc(t, doc)
}

func componentRefs(doc *ir.CastrDocument) []string {
	refs := make([]string, len(doc.Components))
	for i, c := range doc.Components {
		refs[i] = c.Ref()
	}
	return refs
}

// requiredSets maps every schema site below root to its sorted required list.
func requiredSets(root *ir.CastrSchema) map[string][]string {
	out := map[string][]string{}
	ir.Walk(root, "#", func(path string, s *ir.CastrSchema) bool {
		if len(s.Required) > 0 {
			req := append([]string(nil), s.Required...)
			sort.Strings(req)
			out[path] = req
		}
		return true
	})
	return out
}

func codes(ws diag.Warnings) []diag.WarningCode {
	out := make([]diag.WarningCode, len(ws))
	for i, w := range ws {
		out[i] = w.Code
	}
	return out
}

// ==================== Round trip ====================

func TestWrite_RoundTripFidelity(t *testing.T) {
	// Arrange
	source, err := loader.NewService().LoadFile(petstore)
	require.NoError(t, err)
	first := buildDoc(t, source)

	// Act
	data, warnings, err := NewWriter().WriteJSON(first)
	require.NoError(t, err)
	reloaded, err := loader.NewService().LoadBytes(data)
	require.NoError(t, err)
	second := buildDoc(t, reloaded)

	// Assert
	assert.Empty(t, warnings)
	assert.Equal(t, "3.0.3", reloaded.OpenAPI)
	assert.ElementsMatch(t, source.Paths.Keys(), reloaded.Paths.Keys())
	assert.Equal(t, componentRefs(first), componentRefs(second))
	for _, c := range first.ComponentsOf(ir.ComponentSchema) {
		other, ok := second.Schema(c.Ref())
		require.True(t, ok, c.Ref())
		assert.Equal(t, requiredSets(c.Schema), requiredSets(other), c.Ref())
	}
	assert.Equal(t, len(first.Operations), len(second.Operations))
	assert.Equal(t, first.DependencyGraph.CircularReferences, second.DependencyGraph.CircularReferences)

	again, _, err := NewWriter().WriteJSON(second)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
}

func TestWrite_PetstoreShape(t *testing.T) {
	doc := buildFile(t, petstore)

	out, _, err := NewWriter().Write(doc)
	require.NoError(t, err)

	t.Run("path level parameters are written per operation", func(t *testing.T) {
		item, ok := out.Paths.Get("/pets/{petId}")
		require.True(t, ok)
		assert.Empty(t, item.Parameters)
		require.Len(t, item.Get.Parameters, 1)
		assert.Equal(t, "petId", item.Get.Parameters[0].Name)
		assert.True(t, item.Get.Parameters[0].Required)
	})

	t.Run("component refs kept", func(t *testing.T) {
		item, _ := out.Paths.Get("/pets")
		require.Len(t, item.Get.Parameters, 2)
		assert.Equal(t, "#/components/parameters/Limit", item.Get.Parameters[0].Ref)
		def, ok := item.Get.Responses.Get("default")
		require.True(t, ok)
		assert.Equal(t, "#/components/responses/Error", def.Ref)
	})

	t.Run("3.0 nullable flag", func(t *testing.T) {
		newPet, ok := out.Components.Schemas.Get("NewPet")
		require.True(t, ok)
		tag, _ := newPet.Properties.Get("tag")
		assert.Equal(t, oas.TypeSet{"string"}, tag.Type)
		assert.True(t, tag.Nullable)
	})

	t.Run("allOf composition", func(t *testing.T) {
		pet, _ := out.Components.Schemas.Get("Pet")
		require.Len(t, pet.AllOf, 2)
		assert.Equal(t, "#/components/schemas/NewPet", pet.AllOf[0].Ref)
		assert.Equal(t, []string{"id"}, pet.AllOf[1].Required)
	})
}

// ==================== Ordering ====================

const permutedA = `
openapi: 3.1.0
info: {title: Perm, version: "1"}
paths:
  /b:
    post:
      operationId: postB
      responses:
        "201": {description: created}
        "200":
          description: ok
          headers:
            X-Rate: {schema: {type: integer}}
            X-Id: {schema: {type: string}}
          content:
            text/plain: {schema: {type: string}}
            application/json: {schema: {$ref: '#/components/schemas/Thing'}}
    get:
      operationId: getB
      responses:
        default: {description: error}
        4XX: {description: client error}
        "200": {description: ok}
  /a:
    get:
      operationId: getA
      responses:
        "200": {description: ok}
components:
  schemas:
    Thing:
      type: object
      required: [name]
      properties:
        zeta: {type: integer}
        name: {type: string}
        alpha: {type: boolean}
    Other:
      type: string
`

const permutedB = `
components:
  schemas:
    Other:
      type: string
    Thing:
      properties:
        alpha: {type: boolean}
        name: {type: string}
        zeta: {type: integer}
      required: [name]
      type: object
paths:
  /a:
    get:
      responses:
        "200": {description: ok}
      operationId: getA
  /b:
    get:
      responses:
        "200": {description: ok}
        4XX: {description: client error}
        default: {description: error}
      operationId: getB
    post:
      responses:
        "200":
          content:
            application/json: {schema: {$ref: '#/components/schemas/Thing'}}
            text/plain: {schema: {type: string}}
          headers:
            X-Id: {schema: {type: string}}
            X-Rate: {schema: {type: integer}}
          description: ok
        "201": {description: created}
      operationId: postB
info: {version: "1", title: Perm}
openapi: 3.1.0
`

func TestWrite_DeterministicUnderKeyPermutation(t *testing.T) {
	a, _, err := NewWriter().WriteJSON(buildSource(t, permutedA))
	require.NoError(t, err)
	b, _, err := NewWriter().WriteJSON(buildSource(t, permutedB))
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestWrite_CanonicalOrder(t *testing.T) {
	out, _, err := NewWriter().Write(buildSource(t, permutedA))
	require.NoError(t, err)

	assert.Equal(t, []string{"/a", "/b"}, out.Paths.Keys())
	assert.Equal(t, []string{"Other", "Thing"}, out.Components.Schemas.Keys())

	b, _ := out.Paths.Get("/b")
	assert.Equal(t, []string{"200", "4XX", "default"}, b.Get.Responses.Keys())
	assert.Equal(t, []string{"200", "201"}, b.Post.Responses.Keys())

	ok, _ := b.Post.Responses.Get("200")
	assert.Equal(t, []string{"application/json", "text/plain"}, ok.Content.Keys())
	assert.Equal(t, []string{"X-Id", "X-Rate"}, ok.Headers.Keys())

	thing, _ := out.Components.Schemas.Get("Thing")
	assert.Equal(t, []string{"alpha", "name", "zeta"}, thing.Properties.Keys())

	data, _, err := NewWriter().WriteJSON(buildSource(t, permutedA))
	require.NoError(t, err)
	text := string(data)
	pathB := strings.Index(text, `"/b"`)
	require.Positive(t, pathB)
	assert.Less(t, strings.Index(text[pathB:], `"get"`), strings.Index(text[pathB:], `"post"`))
}

// ==================== Dialects ====================

func TestWrite_Downlevel31To30(t *testing.T) {
	// Arrange
	doc := buildFile(t, webhooks31)
	writer := NewWriter()
	writer.SetTargetVersion("3.0.3")

	// Act
	out, warnings, err := writer.Write(doc)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "3.0.3", out.OpenAPI)
	assert.ElementsMatch(t, []diag.WarningCode{
		diag.WarnDownlevelWebhooks,
		diag.WarnDownlevelInfoSummary,
		diag.WarnDownlevelLicenseIdentifier,
		diag.WarnDownlevelConstToEnum,
		diag.WarnDownlevelPrefixItems,
		diag.WarnDownlevelPatternProperties,
		diag.WarnDownlevelUnevaluatedProperties,
	}, codes(warnings))
	assert.Nil(t, out.Webhooks)
	assert.Empty(t, out.Info.Summary)
	assert.Empty(t, out.Info.License.Identifier)

	order, ok := out.Components.Schemas.Get("Order")
	require.True(t, ok)
	assert.Nil(t, order.PatternProperties)
	assert.Nil(t, order.UnevaluatedProperties)

	kind, _ := order.Properties.Get("kind")
	assert.Equal(t, []any{"order"}, kind.Enum)
	assert.Nil(t, kind.Const)

	note, _ := order.Properties.Get("note")
	assert.Equal(t, oas.TypeSet{"string"}, note.Type)
	assert.True(t, note.Nullable)

	total, _ := order.Properties.Get("total")
	require.NotNil(t, total.Minimum)
	assert.Equal(t, 0.0, *total.Minimum)
	require.NotNil(t, total.ExclusiveMinimum)
	assert.True(t, *total.ExclusiveMinimum.Flag)

	point, _ := order.Properties.Get("point")
	assert.Nil(t, point.PrefixItems)
	assert.Nil(t, point.Items)
}

func TestWrite_StrictDownlevel(t *testing.T) {
	writer := NewWriter()
	writer.SetTargetVersion("3.0.3")
	writer.SetStrict(true)

	_, warnings, err := writer.Write(buildFile(t, webhooks31))

	require.ErrorIs(t, err, diag.ErrDownlevel)
	var downlevel *diag.DownlevelError
	require.ErrorAs(t, err, &downlevel)
	assert.Equal(t, diag.WarnDownlevelPatternProperties, downlevel.Warning.Code)
	assert.Equal(t, "#/components/schemas/Order", downlevel.Warning.Path)
	assert.Len(t, warnings, 7)
}

func TestWrite_31PassThrough(t *testing.T) {
	out, warnings, err := NewWriter().Write(buildFile(t, webhooks31))
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, "Event delivery", out.Info.Summary)
	assert.Equal(t, []string{"orderPlaced"}, out.Webhooks.Keys())

	order, _ := out.Components.Schemas.Get("Order")
	assert.Equal(t, []string{"^x-"}, order.PatternProperties.Keys())
	require.NotNil(t, order.UnevaluatedProperties)
	assert.False(t, order.UnevaluatedProperties.Allows)

	note, _ := order.Properties.Get("note")
	assert.Equal(t, oas.TypeSet{"string", "null"}, note.Type)
	assert.False(t, note.Nullable)

	total, _ := order.Properties.Get("total")
	require.NotNil(t, total.ExclusiveMinimum)
	assert.Equal(t, 0.0, *total.ExclusiveMinimum.Value)
	assert.Nil(t, total.Minimum)

	kind, _ := order.Properties.Get("kind")
	assert.Equal(t, "order", kind.Const)

	point, _ := order.Properties.Get("point")
	assert.Len(t, point.PrefixItems, 2)
	require.NotNil(t, point.Items)
	assert.False(t, point.Items.Allows)
	assert.Nil(t, point.Items.Schema)
}

func TestWrite_Uplevel30To31(t *testing.T) {
	writer := NewWriter()
	writer.SetTargetVersion("3.1.0")

	out, warnings, err := writer.Write(buildFile(t, petstore))
	require.NoError(t, err)
	assert.Empty(t, warnings)

	newPet, _ := out.Components.Schemas.Get("NewPet")
	tag, _ := newPet.Properties.Get("tag")
	assert.Equal(t, oas.TypeSet{"string", "null"}, tag.Type)
	assert.False(t, tag.Nullable)
}

func TestWrite_UnsupportedTargetVersion(t *testing.T) {
	writer := NewWriter()
	writer.SetTargetVersion("2.0")
	_, _, err := writer.Write(buildFile(t, petstore))
	assert.ErrorContains(t, err, "unsupported target version")
}

// ==================== Schema projection ====================

func float(v float64) *float64 { return &v }

func TestSchema_Nullable(t *testing.T) {
	target := &ir.IRComponent{Type: ir.ComponentSchema, Name: "A", Schema: &ir.CastrSchema{Type: []string{"string"}}}
	nullable := func(s *ir.CastrSchema) *ir.CastrSchema {
		s.Metadata.Nullable = true
		return s
	}

	tests := []struct {
		name     string
		version  string
		schema   *ir.CastrSchema
		want     *oas.Schema
		warnings []diag.WarningCode
	}{
		{
			name:    "3.0 primitive",
			version: "3.0.3",
			schema:  nullable(&ir.CastrSchema{Type: []string{"string"}}),
			want:    &oas.Schema{Type: oas.TypeSet{"string"}, Nullable: true},
		},
		{
			name:    "3.1 primitive",
			version: "3.1.0",
			schema:  nullable(&ir.CastrSchema{Type: []string{"string"}}),
			want:    &oas.Schema{Type: oas.TypeSet{"string", "null"}},
		},
		{
			name:    "3.0 ref",
			version: "3.0.3",
			schema:  nullable(&ir.CastrSchema{Ref: "#/components/schemas/A"}),
			want:    &oas.Schema{AllOf: []*oas.Schema{{Ref: "#/components/schemas/A"}}, Nullable: true},
		},
		{
			name:    "3.1 ref",
			version: "3.1.0",
			schema:  nullable(&ir.CastrSchema{Ref: "#/components/schemas/A"}),
			want: &oas.Schema{AnyOf: []*oas.Schema{
				{Ref: "#/components/schemas/A"},
				{Type: oas.TypeSet{"null"}},
			}},
		},
		{
			name:     "3.0 null type",
			version:  "3.0.3",
			schema:   nullable(&ir.CastrSchema{Type: []string{"null"}}),
			want:     &oas.Schema{Nullable: true},
			warnings: []diag.WarningCode{diag.WarnDownlevelNullable},
		},
		{
			name:    "3.0 type array",
			version: "3.0.3",
			schema:  &ir.CastrSchema{Type: []string{"string", "integer"}},
			want: &oas.Schema{AnyOf: []*oas.Schema{
				{Type: oas.TypeSet{"string"}},
				{Type: oas.TypeSet{"integer"}},
			}},
			warnings: []diag.WarningCode{diag.WarnDownlevelMultipleTypes},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &ir.CastrDocument{Components: []*ir.IRComponent{target}}
			ctx := newWriteContext(doc, tt.version)

			got, err := ctx.schema(tt.schema, "#/x")

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if tt.warnings == nil {
				tt.warnings = []diag.WarningCode{}
			}
			assert.Equal(t, tt.warnings, codes(ctx.warnings.Warnings()))
		})
	}
}

func TestSchema_ExclusiveBounds(t *testing.T) {
	tests := []struct {
		name    string
		version string
		in      ir.Constraints
		wantMin *float64
		wantMax *float64
		exMin   *oas.ExclusiveBound
		exMax   *oas.ExclusiveBound
	}{
		{
			name:    "3.1 numeric",
			version: "3.1.0",
			in:      ir.Constraints{ExclusiveMinimum: float(0)},
			exMin:   oas.NumericBound(0),
		},
		{
			name:    "3.0 flag",
			version: "3.0.3",
			in:      ir.Constraints{ExclusiveMinimum: float(0), ExclusiveMaximum: float(10)},
			wantMin: float(0),
			wantMax: float(10),
			exMin:   oas.FlagBound(true),
			exMax:   oas.FlagBound(true),
		},
		{
			name:    "3.0 stricter inclusive bound wins",
			version: "3.0.3",
			in:      ir.Constraints{Minimum: float(5), ExclusiveMinimum: float(1)},
			wantMin: float(5),
		},
		{
			name:    "3.0 stricter exclusive bound wins",
			version: "3.0.3",
			in:      ir.Constraints{Maximum: float(10), ExclusiveMaximum: float(3)},
			wantMax: float(3),
			exMax:   oas.FlagBound(true),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newWriteContext(&ir.CastrDocument{}, tt.version)
			got, err := ctx.schema(&ir.CastrSchema{Type: []string{"number"}, Constraints: tt.in}, "#/x")
			require.NoError(t, err)
			assert.Equal(t, tt.wantMin, got.Minimum)
			assert.Equal(t, tt.wantMax, got.Maximum)
			assert.Equal(t, tt.exMin, got.ExclusiveMinimum)
			assert.Equal(t, tt.exMax, got.ExclusiveMaximum)
		})
	}
}

// ==================== Errors ====================

func minimalDoc() *ir.CastrDocument {
	return &ir.CastrDocument{
		TargetVersion: "3.1.0",
		Info:          ir.Info{Title: "t", Version: "1"},
	}
}

func TestWrite_UnresolvableReference(t *testing.T) {
	t.Run("missing schema", func(t *testing.T) {
		props := ir.NewProperties()
		props.Set("b", &ir.CastrSchema{Ref: "#/components/schemas/Missing"})
		doc := minimalDoc()
		doc.Components = []*ir.IRComponent{{
			Type:   ir.ComponentSchema,
			Name:   "A",
			Schema: &ir.CastrSchema{Type: []string{"object"}, Properties: props},
		}}

		_, _, err := NewWriter().Write(doc)

		var unresolved *diag.UnresolvableReferenceError
		require.ErrorAs(t, err, &unresolved)
		assert.Equal(t, "#/components/schemas/Missing", unresolved.Ref)
		assert.Equal(t, "#/components/schemas/A/properties/b", unresolved.Path)
	})

	t.Run("ref to a component of another type", func(t *testing.T) {
		doc := minimalDoc()
		doc.Components = []*ir.IRComponent{{Type: ir.ComponentSchema, Name: "Error", Schema: &ir.CastrSchema{}}}
		doc.Operations = []*ir.CastrOperation{{
			Method: "get",
			Path:   "/a",
			Responses: []*ir.OperationResponse{{
				StatusCode: "200",
				Role:       ir.RoleSuccess,
				Response:   &ir.Response{Ref: "#/components/schemas/Error"},
			}},
		}}

		_, _, err := NewWriter().Write(doc)

		assert.ErrorIs(t, err, diag.ErrUnresolvableReference)
		assert.ErrorContains(t, err, "#/paths/~1a/get/responses/200")
	})
}

func TestWrite_InvalidReconstructedDocument(t *testing.T) {
	doc := minimalDoc()
	doc.Operations = []*ir.CastrOperation{{
		Method:     "get",
		Path:       "/a",
		Parameters: []*ir.Parameter{{Name: "id", In: "body"}},
		Responses: []*ir.OperationResponse{{
			StatusCode: "200",
			Role:       ir.RoleSuccess,
			Response:   &ir.Response{Description: "ok"},
		}},
	}}

	_, _, err := NewWriter().Write(doc)
	assert.ErrorIs(t, err, diag.ErrInvalidReconstructedDocument)

	writer := NewWriter()
	writer.SetValidation(false)
	_, _, err = writer.Write(doc)
	assert.NoError(t, err)
}

func TestWrite_XExtComponents(t *testing.T) {
	doc := buildSource(t, `
openapi: 3.0.3
info: {title: t, version: "1"}
paths:
  /a:
    get:
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema: {$ref: '#/x-ext/9f2c/components/schemas/Remote'}
x-ext:
  9f2c:
    components:
      schemas:
        Remote: {type: string}
`)
	out, _, err := NewWriter().Write(doc)
	require.NoError(t, err)
	assert.Nil(t, out.Components)
	require.Contains(t, out.XExt, "9f2c")
	assert.Equal(t, []string{"Remote"}, out.XExt["9f2c"].Components.Schemas.Keys())
}
