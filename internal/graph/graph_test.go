package graph

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castr-dev/castr/internal/diag"
	"github.com/castr-dev/castr/internal/ir"
)

func ref(name string) string { return "#/components/schemas/" + name }

func object(props map[string]*ir.CastrSchema) *ir.CastrSchema {
	p := ir.NewProperties()
	for _, k := range ir.SortedKeys(props) {
		p.Set(k, props[k])
	}
	return &ir.CastrSchema{Type: []string{ir.TypeObject}, Properties: p}
}

func refTo(name string) *ir.CastrSchema { return &ir.CastrSchema{Ref: ref(name)} }

// ==================== Cycles ====================

func TestBuild_SelfReference(t *testing.T) {
	schemas := map[string]*ir.CastrSchema{
		ref("Node"): object(map[string]*ir.CastrSchema{"next": refTo("Node"), "value": {Type: []string{ir.TypeString}}}),
	}
	g, err := Build(schemas)
	require.NoError(t, err)

	node, ok := g.Node(ref("Node"))
	require.True(t, ok)
	assert.True(t, node.IsCircular)
	assert.Equal(t, []string{ref("Node")}, g.CircularReferences)
	assert.Empty(t, g.TopologicalOrder)
	assert.Equal(t, []string{ref("Node")}, Cycles(schemas, g)[ref("Node")])
}

func TestBuild_MutualReference(t *testing.T) {
	schemas := map[string]*ir.CastrSchema{
		ref("Author"): object(map[string]*ir.CastrSchema{"books": {Type: []string{ir.TypeArray}, Items: refTo("Book")}}),
		ref("Book"):   object(map[string]*ir.CastrSchema{"author": refTo("Author")}),
		ref("Tag"):    {Type: []string{ir.TypeString}},
	}
	g, err := Build(schemas)
	require.NoError(t, err)

	assert.Equal(t, []string{ref("Author"), ref("Book")}, g.CircularReferences)
	assert.Equal(t, []string{ref("Tag")}, g.TopologicalOrder)

	cycles := Cycles(schemas, g)
	assert.Equal(t, []string{ref("Author"), ref("Book")}, cycles[ref("Author")])
	assert.Equal(t, []string{ref("Author"), ref("Book")}, cycles[ref("Book")])
	_, tagCircular := cycles[ref("Tag")]
	assert.False(t, tagCircular)
}

// ==================== Ordering ====================

func TestBuild_TopologicalOrderRespectsDependencies(t *testing.T) {
	schemas := map[string]*ir.CastrSchema{
		ref("Order"):    object(map[string]*ir.CastrSchema{"customer": refTo("Customer"), "items": {Type: []string{ir.TypeArray}, Items: refTo("Line")}}),
		ref("Customer"): object(map[string]*ir.CastrSchema{"address": refTo("Address")}),
		ref("Line"):     object(map[string]*ir.CastrSchema{"product": refTo("Product")}),
		ref("Product"):  {Type: []string{ir.TypeString}},
		ref("Address"):  {Type: []string{ir.TypeString}},
	}
	g, err := Build(schemas)
	require.NoError(t, err)
	require.Len(t, g.TopologicalOrder, 5)

	pos := make(map[string]int)
	for i, r := range g.TopologicalOrder {
		pos[r] = i
	}
	for from, node := range g.Nodes.All() {
		for _, to := range node.Dependencies {
			assert.Less(t, pos[to], pos[from], "%s must come before %s", to, from)
		}
	}

	order, _ := g.Node(ref("Order"))
	assert.Equal(t, 2, order.Depth)
	product, _ := g.Node(ref("Product"))
	assert.Equal(t, 0, product.Depth)
	assert.Equal(t, []string{ref("Line")}, product.Dependents)
}

func TestBuild_DepthIgnoresCycleEdges(t *testing.T) {
	schemas := map[string]*ir.CastrSchema{
		ref("A"):    object(map[string]*ir.CastrSchema{"b": refTo("B"), "leaf": refTo("Leaf")}),
		ref("B"):    object(map[string]*ir.CastrSchema{"a": refTo("A")}),
		ref("Leaf"): {Type: []string{ir.TypeBoolean}},
	}
	g, err := Build(schemas)
	require.NoError(t, err)
	a, _ := g.Node(ref("A"))
	b, _ := g.Node(ref("B"))
	assert.Equal(t, 1, a.Depth)
	assert.Equal(t, 0, b.Depth)
}

func TestBuild_NodesSorted(t *testing.T) {
	schemas := map[string]*ir.CastrSchema{
		ref("Zed"):   {Type: []string{ir.TypeString}},
		ref("Alpha"): {Type: []string{ir.TypeString}},
	}
	g, err := Build(schemas)
	require.NoError(t, err)
	assert.Equal(t, []string{ref("Alpha"), ref("Zed")}, g.Nodes.Keys())
}

func TestBuild_LongChainIsIterative(t *testing.T) {
	schemas := make(map[string]*ir.CastrSchema)
	const length = 20000
	for i := 0; i < length; i++ {
		name := fmt.Sprintf("S%05d", i)
		if i == length-1 {
			schemas[ref(name)] = &ir.CastrSchema{Type: []string{ir.TypeString}}
			continue
		}
		schemas[ref(name)] = refTo(fmt.Sprintf("S%05d", i+1))
	}
	g, err := Build(schemas)
	require.NoError(t, err)
	assert.Len(t, g.TopologicalOrder, length)
	assert.Equal(t, ref(fmt.Sprintf("S%05d", length-1)), g.TopologicalOrder[0])
	first, _ := g.Node(ref("S00000"))
	assert.Equal(t, length-1, first.Depth)
}

// ==================== Errors ====================

func TestBuild_UnresolvableReference(t *testing.T) {
	schemas := map[string]*ir.CastrSchema{
		ref("Pet"): object(map[string]*ir.CastrSchema{"owner": refTo("Missing")}),
	}
	_, err := Build(schemas)
	require.Error(t, err)
	assert.ErrorIs(t, err, diag.ErrUnresolvableReference)

	var unresolved *diag.UnresolvableReferenceError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, ref("Missing"), unresolved.Ref)
	assert.Equal(t, ref("Pet")+"/properties/owner", unresolved.Path)
}

func TestBuild_NoDependenciesIsValid(t *testing.T) {
	g, err := Build(map[string]*ir.CastrSchema{})
	require.NoError(t, err)
	assert.Empty(t, g.TopologicalOrder)
	assert.Empty(t, g.CircularReferences)
}

// ==================== Annotate ====================

func TestAnnotate_FillsMetadata(t *testing.T) {
	node := object(map[string]*ir.CastrSchema{"next": refTo("Node")})
	leaf := &ir.CastrSchema{Type: []string{ir.TypeString}}
	schemas := map[string]*ir.CastrSchema{ref("Node"): node, ref("Leaf"): leaf}
	g, err := Build(schemas)
	require.NoError(t, err)

	doc := &ir.CastrDocument{
		Components: []*ir.IRComponent{
			{Type: ir.ComponentSchema, Name: "Leaf", Schema: leaf},
			{Type: ir.ComponentSchema, Name: "Node", Schema: node},
		},
		DependencyGraph: g,
	}
	Annotate(doc, schemas)

	assert.Equal(t, []string{ref("Node")}, node.Metadata.CircularReferences)
	assert.Equal(t, []string{ref("Node")}, node.Metadata.DependencyGraph.References)
	assert.Equal(t, []string{ref("Node")}, node.Metadata.DependencyGraph.ReferencedBy)

	next, _ := node.Properties.Get("next")
	assert.Equal(t, []string{ref("Node")}, next.Metadata.CircularReferences)

	assert.Empty(t, leaf.Metadata.CircularReferences)
	assert.Equal(t, 0, leaf.Metadata.DependencyGraph.Depth)
}

func TestAnnotate_NestedRefsMergeUpward(t *testing.T) {
	inner := object(map[string]*ir.CastrSchema{"c": refTo("B"), "d": refTo("A")})
	root := object(map[string]*ir.CastrSchema{"a": refTo("A"), "b": inner, "e": {Type: []string{ir.TypeString}}})
	a := &ir.CastrSchema{Type: []string{ir.TypeString}}
	b := &ir.CastrSchema{Type: []string{ir.TypeNumber}}
	schemas := map[string]*ir.CastrSchema{ref("Root"): root, ref("A"): a, ref("B"): b}
	g, err := Build(schemas)
	require.NoError(t, err)

	doc := &ir.CastrDocument{
		Components: []*ir.IRComponent{
			{Type: ir.ComponentSchema, Name: "A", Schema: a},
			{Type: ir.ComponentSchema, Name: "B", Schema: b},
			{Type: ir.ComponentSchema, Name: "Root", Schema: root},
		},
		DependencyGraph: g,
	}
	Annotate(doc, schemas)

	assert.Equal(t, []string{ref("A"), ref("B")}, inner.Metadata.DependencyGraph.References)
	assert.Equal(t, 1, inner.Metadata.DependencyGraph.Depth)
	e, _ := root.Properties.Get("e")
	assert.Equal(t, []string{}, e.Metadata.DependencyGraph.References)
	assert.Equal(t, 0, e.Metadata.DependencyGraph.Depth)
	c, _ := inner.Properties.Get("c")
	assert.Equal(t, []string{ref("B")}, c.Metadata.DependencyGraph.References)
}

func TestAnnotate_DeepNesting(t *testing.T) {
	const depth = 2000
	bottom := refTo("Leaf")
	root := bottom
	for i := 0; i < depth; i++ {
		root = object(map[string]*ir.CastrSchema{"child": root})
	}
	leaf := &ir.CastrSchema{Type: []string{ir.TypeString}}
	schemas := map[string]*ir.CastrSchema{ref("Deep"): root, ref("Leaf"): leaf}
	g, err := Build(schemas)
	require.NoError(t, err)

	doc := &ir.CastrDocument{
		Components: []*ir.IRComponent{
			{Type: ir.ComponentSchema, Name: "Deep", Schema: root},
			{Type: ir.ComponentSchema, Name: "Leaf", Schema: leaf},
		},
		DependencyGraph: g,
	}
	Annotate(doc, schemas)

	visited := 0
	ir.Walk(root, ref("Deep"), func(_ string, s *ir.CastrSchema) bool {
		visited++
		assert.Equal(t, []string{ref("Leaf")}, s.Metadata.DependencyGraph.References)
		return true
	})
	assert.Equal(t, depth+1, visited)
	assert.Equal(t, 1, bottom.Metadata.DependencyGraph.Depth)
}
