package graph

import (
	"sort"

	"github.com/castr-dev/castr/internal/ir"
)

// Annotate copies the document-level graph into schema metadata.
//
// Component roots receive their node's dependencies, dependents, depth and
// cycle members. A nested schema inside a component records the refs in its
// own subtree, a depth one above the deepest of them, and the subset of its
// refs that belong to the owning component's cycle. Schemas outside
// components (parameters, bodies, responses) record refs and depth only.
func Annotate(doc *ir.CastrDocument, schemas map[string]*ir.CastrSchema) {
	g := doc.DependencyGraph
	cycles := Cycles(schemas, g)
	memo := make(map[*ir.CastrSchema][]string)

	for _, c := range doc.Components {
		if c.Type != ir.ComponentSchema || c.Schema == nil {
			continue
		}
		owner := c.Ref()
		cycle := cycles[owner]
		inCycle := make(map[string]bool, len(cycle))
		for _, r := range cycle {
			inCycle[r] = true
		}

		ir.Walk(c.Schema, owner, func(_ string, s *ir.CastrSchema) bool {
			if s == c.Schema {
				node, ok := g.Node(owner)
				if !ok {
					node = &ir.DependencyNode{}
				}
				s.Metadata.DependencyGraph = ir.DependencyInfo{
					References:   append([]string{}, node.Dependencies...),
					ReferencedBy: append([]string{}, node.Dependents...),
					Depth:        node.Depth,
				}
				s.Metadata.CircularReferences = append([]string{}, cycle...)
				return true
			}
			refs := subtreeRefs(s, memo)
			s.Metadata.DependencyGraph = ir.DependencyInfo{
				References:   refs,
				ReferencedBy: []string{},
				Depth:        depthOf(g, refs),
			}
			circular := []string{}
			for _, r := range refs {
				if inCycle[r] {
					circular = append(circular, r)
				}
			}
			sort.Strings(circular)
			s.Metadata.CircularReferences = circular
			return true
		})
	}

	annotateSite := func(_ string, s *ir.CastrSchema) bool {
		refs := subtreeRefs(s, memo)
		s.Metadata.DependencyGraph = ir.DependencyInfo{
			References:   refs,
			ReferencedBy: []string{},
			Depth:        depthOf(g, refs),
		}
		s.Metadata.CircularReferences = []string{}
		return true
	}
	for _, c := range doc.Components {
		if c.Type == ir.ComponentSchema {
			continue
		}
		single := &ir.CastrDocument{Components: []*ir.IRComponent{c}}
		ir.WalkDocument(single, annotateSite)
	}
	ir.WalkDocument(&ir.CastrDocument{Operations: doc.Operations, Webhooks: doc.Webhooks}, annotateSite)
}

// subtreeRefs returns the distinct refs under root, sorted. It fills memo for
// root and every schema below it in one post-order pass, so each schema's set
// is merged from its children's instead of re-walking the subtree.
func subtreeRefs(root *ir.CastrSchema, memo map[*ir.CastrSchema][]string) []string {
	if refs, ok := memo[root]; ok {
		return refs
	}
	type frame struct {
		schema   *ir.CastrSchema
		expanded bool
	}
	stack := []frame{{schema: root}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if _, ok := memo[top.schema]; ok {
			stack = stack[:len(stack)-1]
			continue
		}
		if !top.expanded {
			top.expanded = true
			for _, child := range ir.Children(top.schema) {
				if _, ok := memo[child.Schema]; !ok && child.Schema != nil {
					stack = append(stack, frame{schema: child.Schema})
				}
			}
			continue
		}
		s := top.schema
		stack = stack[:len(stack)-1]

		seen := map[string]struct{}{}
		refs := []string{}
		add := func(r string) {
			if _, ok := seen[r]; !ok {
				seen[r] = struct{}{}
				refs = append(refs, r)
			}
		}
		if s.Ref != "" {
			add(s.Ref)
		}
		for _, child := range ir.Children(s) {
			for _, r := range memo[child.Schema] {
				add(r)
			}
		}
		sort.Strings(refs)
		memo[s] = refs
	}
	return memo[root]
}

func depthOf(g *ir.DependencyGraph, refs []string) int {
	if len(refs) == 0 {
		return 0
	}
	depth := 0
	for _, r := range refs {
		if node, ok := g.Node(r); ok && node.Depth+1 > depth {
			depth = node.Depth + 1
		}
	}
	return depth
}
