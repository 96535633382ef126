package irjson

import (
	"errors"
	"io"
	"log"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castr-dev/castr/internal/ir"
	"github.com/castr-dev/castr/internal/orchestrator"
)

func buildFile(t *testing.T, path string) *ir.CastrDocument {
	t.Helper()
	config := orchestrator.DefaultConfig()
	config.Debug = log.New(io.Discard, "", 0)
	doc, _, err := orchestrator.New(config).ParseFile(path)
	require.NoError(t, err)
	return doc
}

func orderDocument() *ir.CastrDocument {
	props := ir.NewProperties()
	props.Set("zeta", &ir.CastrSchema{Type: []string{ir.TypeString}})
	props.Set("alpha", &ir.CastrSchema{Type: []string{ir.TypeInteger}, Default: float64(3), HasDefault: true})
	props.Set("mid", &ir.CastrSchema{Ref: "#/components/schemas/Line"})

	nodes := ir.NewNodeMap()
	nodes.Set("#/components/schemas/Order", &ir.DependencyNode{
		Dependencies: []string{"#/components/schemas/Line"},
		Depth:        1,
	})
	nodes.Set("#/components/schemas/Line", &ir.DependencyNode{
		Dependents: []string{"#/components/schemas/Order"},
	})

	return &ir.CastrDocument{
		Version:        ir.FormatVersion,
		OpenAPIVersion: "3.1.0",
		Info:           ir.Info{Title: "Orders", Version: "1"},
		Components: []*ir.IRComponent{
			{Type: ir.ComponentSchema, Name: "Order", Schema: &ir.CastrSchema{
				Type:       []string{ir.TypeObject},
				Properties: props,
				Required:   []string{"zeta"},
			}},
			{Type: ir.ComponentSchema, Name: "Line", Schema: &ir.CastrSchema{Type: []string{ir.TypeString}}},
			{Type: ir.ComponentExample, Name: "Sample", Value: map[string]any{"value": "x"}},
		},
		DependencyGraph: &ir.DependencyGraph{
			Nodes:            nodes,
			TopologicalOrder: []string{"#/components/schemas/Line", "#/components/schemas/Order"},
		},
		SchemaNames: []string{"Line", "Order"},
	}
}

// ==================== Round trip ====================

func TestRoundTrip_KeepsInsertionOrder(t *testing.T) {
	doc := orderDocument()
	data, err := Serialize(doc)
	require.NoError(t, err)

	back, err := Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, doc, back)

	order, ok := back.Schema("#/components/schemas/Order")
	require.True(t, ok)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, order.Properties.Keys())
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, order.Properties.SortedKeys())
	assert.Equal(t, []string{"#/components/schemas/Order", "#/components/schemas/Line"}, back.DependencyGraph.Nodes.Keys())
}

func TestRoundTrip_BuiltDocuments(t *testing.T) {
	for _, path := range []string{"../../testdata/petstore.yaml", "../../testdata/webhooks31.yaml"} {
		t.Run(path, func(t *testing.T) {
			doc := buildFile(t, path)
			data, err := SerializeIndent(doc)
			require.NoError(t, err)

			back, err := Deserialize(data)
			require.NoError(t, err)
			assert.Equal(t, doc, back)

			again, err := SerializeIndent(back)
			require.NoError(t, err)
			assert.Equal(t, string(data), string(again))
		})
	}
}

// ==================== Wire format ====================

func TestSerialize_TaggedWrappers(t *testing.T) {
	data, err := Serialize(orderDocument())
	require.NoError(t, err)

	var raw struct {
		Components []struct {
			Payload struct {
				Properties struct {
					DataType string  `json:"dataType"`
					Value    [][]any `json:"value"`
				} `json:"properties"`
			} `json:"payload"`
		} `json:"components"`
		DependencyGraph struct {
			Nodes struct {
				DataType string `json:"dataType"`
			} `json:"nodes"`
		} `json:"dependencyGraph"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))

	props := raw.Components[0].Payload.Properties
	assert.Equal(t, ir.DataTypeProperties, props.DataType)
	require.Len(t, props.Value, 3)
	assert.Equal(t, "zeta", props.Value[0][0])
	assert.Equal(t, "alpha", props.Value[1][0])
	assert.Equal(t, "mid", props.Value[2][0])
	assert.Equal(t, ir.DataTypeMap, raw.DependencyGraph.Nodes.DataType)
}

// ==================== Errors ====================

func TestDeserialize_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "unknown container",
			input: `{"version":"1.0.0","dependencyGraph":{"nodes":{"dataType":"Set","value":[]}}}`,
			want:  "unknown dataType",
		},
		{
			name:  "unknown nested container",
			input: `{"components":[{"type":"schema","name":"A","payload":{"type":["object"],"properties":{"dataType":"Object","value":[]}}}]}`,
			want:  "unknown dataType",
		},
		{
			name:  "unknown component type",
			input: `{"components":[{"type":"widget","name":"A","payload":{}}]}`,
			want:  "unknown dataType",
		},
		{
			name:  "not json",
			input: `openapi: 3.1.0`,
			want:  "deserialize IR",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Deserialize([]byte(tt.input))
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestDeserialize_Version(t *testing.T) {
	_, err := Deserialize([]byte(`{"version":"0.9.0"}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrVersion))

	doc, err := Deserialize([]byte(`{"info":{"title":"t","version":"1"}}`))
	require.NoError(t, err)
	assert.Equal(t, "t", doc.Info.Title)
}

func TestSerialize_Nil(t *testing.T) {
	_, err := Serialize(nil)
	assert.Error(t, err)
}
