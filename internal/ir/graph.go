package ir

import (
	json "github.com/goccy/go-json"

	"github.com/castr-dev/castr/internal/ordered"
)

// DependencyGraph is the component-level reference graph of a document.
type DependencyGraph struct {
	Nodes              *NodeMap `json:"nodes"`
	TopologicalOrder   []string `json:"topologicalOrder"`
	CircularReferences []string `json:"circularReferences"`
}

// DependencyNode is one component ref in the graph.
type DependencyNode struct {
	Dependencies []string `json:"dependencies"`
	Dependents   []string `json:"dependents"`
	Depth        int      `json:"depth"`
	IsCircular   bool     `json:"isCircular"`
}

// Node returns the node for ref.
func (g *DependencyGraph) Node(ref string) (*DependencyNode, bool) {
	if g == nil || g.Nodes == nil {
		return nil, false
	}
	return g.Nodes.Get(ref)
}

// NodeMap is an ordered ref → node container persisted as
// `{"dataType":"Map","value":[[ref,node],...]}`.
type NodeMap struct {
	ordered.Map[*DependencyNode]
}

// NewNodeMap creates an empty container.
func NewNodeMap() *NodeMap {
	return &NodeMap{Map: *ordered.New[*DependencyNode]()}
}

// MarshalJSON writes the tagged wrapper in insertion order.
func (m *NodeMap) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	pairs := make([][2]any, 0, m.Len())
	for k, v := range m.All() {
		pairs = append(pairs, [2]any{k, v})
	}
	return json.Marshal(wrapper{DataType: DataTypeMap, Value: pairs})
}

// UnmarshalJSON reads the tagged wrapper written by MarshalJSON.
func (m *NodeMap) UnmarshalJSON(data []byte) error {
	fresh := NewNodeMap()
	err := decodePairs(data, DataTypeMap, func(key string, raw json.RawMessage) error {
		var n *DependencyNode
		if err := json.Unmarshal(raw, &n); err != nil {
			return err
		}
		fresh.Set(key, n)
		return nil
	})
	if err != nil {
		return err
	}
	*m = *fresh
	return nil
}
