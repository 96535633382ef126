package types

import (
	"regexp"
	"strings"

	json "github.com/goccy/go-json"
)

// Kind is the shape of a type node.
type Kind string

const (
	KindUnknown      Kind = "unknown"
	KindRef          Kind = "ref"
	KindPrimitive    Kind = "primitive"
	KindLiteral      Kind = "literal"
	KindObject       Kind = "object"
	KindArray        Kind = "array"
	KindTuple        Kind = "tuple"
	KindIntersection Kind = "intersection"
	KindUnion        Kind = "union"
)

// Node is a resolved type. Refs carry the declared name of their target, so
// a Node can be rendered without the document.
type Node struct {
	Kind Kind

	// Name is the declared name for refs and the type name for primitives.
	Name string
	// Lazy marks a ref into a reference cycle.
	Lazy bool

	Literals []any    // literal values, rendered as a union
	Fields   []Field  // object properties, sorted by name
	Closed   bool     // object rejects unknown keys
	Rest     *Node    // object index signature or tuple rest element
	Members  []*Node  // array element, tuple prefix, or union/intersection members
	Nullable bool

	// Chain holds the rendered validation chain tokens of the schema site.
	Chain []string
}

// Field is one object property.
type Field struct {
	Name     string
	Optional bool
	Node     *Node
}

var identifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// PropertyKey returns name as a bare key when it is an identifier and as a
// quoted string otherwise.
func PropertyKey(name string) string {
	if identifier.MatchString(name) {
		return name
	}
	return quote(name)
}

func quote(s string) string {
	data, err := json.Marshal(s)
	if err != nil {
		return `"` + s + `"`
	}
	return string(data)
}

// Text renders n as type text.
func Text(n *Node) string {
	text, _ := render(n)
	return text
}

// render returns the text and whether its outermost operator is a union.
func render(n *Node) (string, bool) {
	if n == nil {
		return "unknown", false
	}
	text, union := renderBase(n)
	if n.Nullable {
		return text + " | null", true
	}
	return text, union
}

func renderBase(n *Node) (string, bool) {
	switch n.Kind {
	case KindRef, KindPrimitive:
		return n.Name, false
	case KindLiteral:
		if len(n.Literals) == 0 {
			return "never", false
		}
		parts := make([]string, len(n.Literals))
		for i, v := range n.Literals {
			data, err := json.Marshal(v)
			if err != nil {
				data = []byte("unknown")
			}
			parts[i] = string(data)
		}
		return strings.Join(parts, " | "), len(parts) > 1
	case KindObject:
		return renderObject(n), false
	case KindArray:
		elem, compound := render(first(n.Members))
		if compound || (len(n.Members) > 0 && n.Members[0].Kind == KindIntersection) {
			elem = "(" + elem + ")"
		}
		return elem + "[]", false
	case KindTuple:
		parts := make([]string, 0, len(n.Members)+1)
		for _, m := range n.Members {
			parts = append(parts, Text(m))
		}
		if n.Rest != nil {
			rest, union := render(n.Rest)
			if union {
				rest = "(" + rest + ")"
			}
			parts = append(parts, "..."+rest+"[]")
		}
		return "[" + strings.Join(parts, ", ") + "]", false
	case KindIntersection:
		parts := make([]string, len(n.Members))
		for i, m := range n.Members {
			text, union := render(m)
			if union {
				text = "(" + text + ")"
			}
			parts[i] = text
		}
		return strings.Join(parts, " & "), false
	case KindUnion:
		parts := make([]string, len(n.Members))
		for i, m := range n.Members {
			parts[i] = Text(m)
		}
		return strings.Join(parts, " | "), len(parts) > 1
	}
	return "unknown", false
}

func renderObject(n *Node) string {
	if len(n.Fields) == 0 {
		switch {
		case n.Rest != nil:
			return "Record<string, " + Text(n.Rest) + ">"
		case n.Closed:
			return "{}"
		default:
			return "Record<string, unknown>"
		}
	}
	parts := make([]string, 0, len(n.Fields)+1)
	for _, f := range n.Fields {
		key := PropertyKey(f.Name)
		if f.Optional {
			key += "?"
		}
		parts = append(parts, key+": "+Text(f.Node))
	}
	if n.Rest != nil {
		parts = append(parts, "[key: string]: "+Text(n.Rest))
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

func first(list []*Node) *Node {
	if len(list) == 0 {
		return nil
	}
	return list[0]
}
