package graph

import (
	"sort"

	"github.com/castr-dev/castr/internal/diag"
	"github.com/castr-dev/castr/internal/ir"
)

// Build computes the dependency graph over the given schema components,
// keyed by their refs.
//
// Strongly connected components are found with an iterative Tarjan search
// (explicit call stack, children in lexicographic order), so arbitrarily deep
// reference chains never grow the Go stack. Tarjan emits components
// dependencies-first, which is the topological order for non-circular refs.
func Build(schemas map[string]*ir.CastrSchema) (*ir.DependencyGraph, error) {
	refs := ir.SortedKeys(schemas)

	deps := make(map[string][]string, len(refs))
	dependents := make(map[string][]string, len(refs))
	for _, ref := range refs {
		sites := CollectRefs(schemas[ref], ref)
		for _, site := range sites {
			if _, ok := schemas[site.Ref]; !ok {
				return nil, &diag.UnresolvableReferenceError{Ref: site.Ref, Path: site.Path}
			}
		}
		deps[ref] = UniqueRefs(sites)
		for _, d := range deps[ref] {
			dependents[d] = append(dependents[d], ref)
		}
	}

	sccs := stronglyConnected(refs, deps)

	g := &ir.DependencyGraph{
		Nodes:              ir.NewNodeMap(),
		TopologicalOrder:   []string{},
		CircularReferences: []string{},
	}
	sccOf := make(map[string]int, len(refs))
	for i, scc := range sccs {
		for _, ref := range scc {
			sccOf[ref] = i
		}
	}

	nodes := make(map[string]*ir.DependencyNode, len(refs))
	for _, scc := range sccs {
		circular := len(scc) > 1 || selfLoop(scc[0], deps)
		for _, ref := range scc {
			depth := 0
			for _, d := range deps[ref] {
				if sccOf[d] == sccOf[ref] {
					continue
				}
				if nd := nodes[d].Depth + 1; nd > depth {
					depth = nd
				}
			}
			dependsOn := append([]string{}, deps[ref]...)
			dependedBy := append([]string{}, dependents[ref]...)
			sort.Strings(dependedBy)
			nodes[ref] = &ir.DependencyNode{
				Dependencies: dependsOn,
				Dependents:   dependedBy,
				Depth:        depth,
				IsCircular:   circular,
			}
			if circular {
				g.CircularReferences = append(g.CircularReferences, ref)
			} else {
				g.TopologicalOrder = append(g.TopologicalOrder, ref)
			}
		}
	}
	sort.Strings(g.CircularReferences)
	for _, ref := range refs {
		g.Nodes.Set(ref, nodes[ref])
	}
	return g, nil
}

// Cycles returns, for each circular ref, the sorted members of its cycle.
func Cycles(schemas map[string]*ir.CastrSchema, g *ir.DependencyGraph) map[string][]string {
	refs := ir.SortedKeys(schemas)
	deps := make(map[string][]string, len(refs))
	for ref, node := range g.Nodes.All() {
		deps[ref] = node.Dependencies
	}
	out := make(map[string][]string)
	for _, scc := range stronglyConnected(refs, deps) {
		if len(scc) == 1 && !selfLoop(scc[0], deps) {
			continue
		}
		members := append([]string{}, scc...)
		sort.Strings(members)
		for _, ref := range scc {
			out[ref] = members
		}
	}
	return out
}

func selfLoop(ref string, deps map[string][]string) bool {
	for _, d := range deps[ref] {
		if d == ref {
			return true
		}
	}
	return false
}

// stronglyConnected runs Tarjan's algorithm without recursion. Roots and
// children are visited in the order given, which callers keep sorted.
func stronglyConnected(nodes []string, deps map[string][]string) [][]string {
	type frame struct {
		node string
		next int
	}
	var (
		counter int
		index   = make(map[string]int, len(nodes))
		low     = make(map[string]int, len(nodes))
		onStack = make(map[string]bool, len(nodes))
		stack   []string
		out     [][]string
	)

	for _, root := range nodes {
		if _, seen := index[root]; seen {
			continue
		}
		index[root], low[root] = counter, counter
		counter++
		stack = append(stack, root)
		onStack[root] = true
		calls := []frame{{node: root}}

		for len(calls) > 0 {
			top := &calls[len(calls)-1]
			v := top.node
			if top.next < len(deps[v]) {
				w := deps[v][top.next]
				top.next++
				if _, seen := index[w]; !seen {
					index[w], low[w] = counter, counter
					counter++
					stack = append(stack, w)
					onStack[w] = true
					calls = append(calls, frame{node: w})
				} else if onStack[w] && index[w] < low[v] {
					low[v] = index[w]
				}
				continue
			}

			calls = calls[:len(calls)-1]
			if len(calls) > 0 {
				parent := calls[len(calls)-1].node
				if low[v] < low[parent] {
					low[parent] = low[v]
				}
			}
			if low[v] != index[v] {
				continue
			}
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sort.Strings(scc)
			out = append(out, scc)
		}
	}
	return out
}
