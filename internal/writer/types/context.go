package types

import (
	"sort"
	"strconv"
	"strings"

	"github.com/castr-dev/castr/internal/chain"
	"github.com/castr-dev/castr/internal/diag"
	"github.com/castr-dev/castr/internal/ir"
	"github.com/castr-dev/castr/internal/registry"
)

// site is where a schema is used; declarations are never extracted again.
type site int

const (
	siteDeclaration site = iota
	siteInline
)

// writeContext is the state of one Write call.
type writeContext struct {
	doc        *ir.CastrDocument
	threshold  int
	reg        *registry.Service
	components map[string]*ir.IRComponent
	names      map[string]string // component ref -> declared name
	declared   map[string]bool
	extracted  int
	result     *Result
}

func newWriteContext(doc *ir.CastrDocument, threshold int) *writeContext {
	c := &writeContext{
		doc:        doc,
		threshold:  threshold,
		reg:        registry.NewService(),
		components: make(map[string]*ir.IRComponent),
		names:      make(map[string]string),
		declared:   make(map[string]bool),
		result:     &Result{},
	}
	schemas := doc.ComponentsOf(ir.ComponentSchema)
	sort.SliceStable(schemas, func(i, j int) bool {
		if schemas[i].Origin != schemas[j].Origin {
			return schemas[i].Origin < schemas[j].Origin
		}
		return schemas[i].Name < schemas[j].Name
	})
	for _, comp := range schemas {
		c.components[comp.Ref()] = comp
		c.names[comp.Ref()] = c.reg.Register(comp.Ref(), comp.Name, comp.Schema)
	}
	return c
}

// ordered returns schema components with dependencies first, visiting in
// name order. Inside a reference cycle the back edge is skipped, so only
// cyclic refs are used before their declaration.
func (c *writeContext) ordered() []*ir.IRComponent {
	refs := make([]string, 0, len(c.components))
	for ref := range c.components {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return c.names[refs[i]] < c.names[refs[j]] })

	// frame is one component on the explicit DFS stack and the index of its
	// next dependency.
	type frame struct {
		ref  string
		deps []string
		next int
	}
	seen := make(map[string]bool, len(refs))
	out := make([]*ir.IRComponent, 0, len(refs))
	for _, root := range refs {
		if seen[root] {
			continue
		}
		seen[root] = true
		stack := []*frame{{ref: root, deps: c.dependencies(root)}}
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if top.next < len(top.deps) {
				dep := top.deps[top.next]
				top.next++
				if !seen[dep] {
					seen[dep] = true
					stack = append(stack, &frame{ref: dep, deps: c.dependencies(dep)})
				}
				continue
			}
			stack = stack[:len(stack)-1]
			out = append(out, c.components[top.ref])
		}
	}
	return out
}

// dependencies lists the schema components ref points at, in walk order.
func (c *writeContext) dependencies(ref string) []string {
	var out []string
	seen := map[string]bool{}
	ir.Walk(c.components[ref].Schema, ref, func(_ string, s *ir.CastrSchema) bool {
		if _, ok := c.components[s.Ref]; ok && !seen[s.Ref] {
			seen[s.Ref] = true
			out = append(out, s.Ref)
		}
		return true
	})
	return out
}

func (c *writeContext) circular(ref string) bool {
	node, ok := c.doc.DependencyGraph.Node(ref)
	return ok && node.IsCircular
}

func (c *writeContext) declare(d Declaration) {
	c.declared[d.Name] = true
	c.result.Declarations = append(c.result.Declarations, d)
}

// node builds the type node of s. base is the phrase extracted declarations
// are named after.
func (c *writeContext) node(s *ir.CastrSchema, path, base string, at site) (*Node, error) {
	if s == nil {
		return &Node{Kind: KindUnknown}, nil
	}
	if at == siteInline && c.extractable(s) {
		return c.extract(s, path, base)
	}

	out := &Node{Chain: chain.Render(s.Metadata.ZodChain)}
	if s.Metadata.Nullable && !s.HasType(ir.TypeNull) {
		out.Nullable = true
	}

	switch {
	case s.Ref != "":
		name, ok := c.names[s.Ref]
		if !ok {
			return nil, &diag.UnresolvableReferenceError{Ref: s.Ref, Path: path}
		}
		out.Kind, out.Name, out.Lazy = KindRef, name, c.circular(s.Ref)
		return out, nil
	case s.HasConst:
		out.Kind, out.Literals = KindLiteral, []any{s.Const}
		return out, nil
	case len(s.Enum) > 0:
		out.Kind, out.Literals = KindLiteral, append([]any(nil), s.Enum...)
		if s.Metadata.Nullable || s.HasType(ir.TypeNull) {
			out.Literals, out.Nullable = withoutNull(out.Literals)
			if len(out.Literals) == 0 {
				out.Kind, out.Name, out.Literals, out.Nullable = KindPrimitive, primitiveName(ir.TypeNull), nil, false
			}
		}
		return out, nil
	}

	switch s.Kind() {
	case ir.KindComposition:
		return c.composition(s, out, path, base)
	case ir.KindObject:
		return out, c.object(s, out, path, base)
	case ir.KindArray:
		return out, c.array(s, out, path, base)
	case ir.KindPrimitive:
		c.primitive(s, out)
		return out, nil
	}
	out.Kind = KindUnknown
	return out, nil
}

func withoutNull(values []any) ([]any, bool) {
	out := values[:0:0]
	for _, v := range values {
		if v != nil {
			out = append(out, v)
		}
	}
	return out, true
}

// extractable reports whether an inline schema crosses the threshold.
func (c *writeContext) extractable(s *ir.CastrSchema) bool {
	switch s.Kind() {
	case ir.KindObject, ir.KindArray, ir.KindComposition:
	default:
		return false
	}
	return registry.Decide(registry.Score(s), c.threshold) == registry.Extract
}

// extract declares s under a name derived from base and returns a ref to it.
// The ref keeps the site's presence; the declaration keeps the rest of the
// chain.
func (c *writeContext) extract(s *ir.CastrSchema, path, base string) (*Node, error) {
	name := c.reg.Register(base, base, s)
	if !c.declared[name] {
		c.declared[name] = true
		decl := *s
		decl.Metadata.ZodChain.Presence = ""
		decl.Metadata.Nullable = false
		node, err := c.node(&decl, path, name, siteDeclaration)
		if err != nil {
			return nil, err
		}
		c.extracted++
		c.result.Declarations = append(c.result.Declarations, Declaration{Name: name, Node: node, Type: Text(node)})
	}

	ref := &Node{Kind: KindRef, Name: name}
	if p := s.Metadata.ZodChain.Presence; p != "" && p != ir.PresenceNone {
		ref.Chain = []string{string(p)}
	}
	ref.Nullable = s.Metadata.Nullable && !s.HasType(ir.TypeNull)
	return ref, nil
}

func (c *writeContext) primitive(s *ir.CastrSchema, out *Node) {
	if len(s.Type) == 1 {
		out.Kind, out.Name = KindPrimitive, primitiveName(s.Type[0])
		return
	}
	out.Kind = KindUnion
	for _, t := range s.Type {
		out.Members = append(out.Members, &Node{Kind: KindPrimitive, Name: primitiveName(t)})
	}
}

func primitiveName(t string) string {
	switch t {
	case ir.TypeInteger, ir.TypeNumber:
		return "number"
	case ir.TypeString, ir.TypeBoolean, ir.TypeNull:
		return t
	}
	return "unknown"
}

func (c *writeContext) object(s *ir.CastrSchema, out *Node, path, base string) error {
	out.Kind = KindObject
	for _, name := range s.Properties.SortedKeys() {
		prop, _ := s.Properties.Get(name)
		n, err := c.node(prop, join(path, "properties", name), base+" "+name, siteInline)
		if err != nil {
			return err
		}
		out.Fields = append(out.Fields, Field{Name: name, Optional: !s.IsRequired(name), Node: n})
	}
	if a := s.AdditionalProperties; a != nil {
		switch {
		case a.Schema != nil:
			rest, err := c.node(a.Schema, join(path, "additionalProperties"), base+" value", siteInline)
			if err != nil {
				return err
			}
			out.Rest = rest
		case !a.Allows:
			out.Closed = true
		}
	}
	return nil
}

func (c *writeContext) array(s *ir.CastrSchema, out *Node, path, base string) error {
	var items *Node
	if s.Items != nil {
		var err error
		if items, err = c.node(s.Items, join(path, "items"), base+" item", siteInline); err != nil {
			return err
		}
	}
	if len(s.PrefixItems) == 0 {
		out.Kind = KindArray
		if items == nil {
			items = &Node{Kind: KindUnknown}
		}
		out.Members = []*Node{items}
		return nil
	}

	out.Kind = KindTuple
	for i, p := range s.PrefixItems {
		n, err := c.node(p, join(path, "prefixItems", strconv.Itoa(i)), base+" item "+strconv.Itoa(i+1), siteInline)
		if err != nil {
			return err
		}
		out.Members = append(out.Members, n)
	}
	switch {
	case s.ItemsClosed:
	case items != nil:
		out.Rest = items
	default:
		out.Rest = &Node{Kind: KindUnknown}
	}
	return nil
}

// composition renders allOf as an intersection and oneOf/anyOf as a union.
// Sibling object keywords join the intersection; `not` has no type form.
func (c *writeContext) composition(s *ir.CastrSchema, out *Node, path, base string) (*Node, error) {
	if s.Not != nil {
		return nil, &diag.UnsupportedCompositionError{Path: join(path, "not"), Reason: "negated schemas have no type equivalent"}
	}

	var parts []*Node
	if s.Properties.Len() > 0 || s.AdditionalProperties != nil {
		body := &Node{}
		if err := c.object(s, body, path, base); err != nil {
			return nil, err
		}
		parts = append(parts, body)
	}
	for i, m := range s.AllOf {
		n, err := c.node(m, join(path, "allOf", strconv.Itoa(i)), base+" part "+strconv.Itoa(i+1), siteInline)
		if err != nil {
			return nil, err
		}
		parts = append(parts, n)
	}
	for _, kw := range []struct {
		name string
		list []*ir.CastrSchema
	}{{"oneOf", s.OneOf}, {"anyOf", s.AnyOf}} {
		if len(kw.list) == 0 {
			continue
		}
		union := &Node{Kind: KindUnion}
		for i, m := range kw.list {
			n, err := c.node(m, join(path, kw.name, strconv.Itoa(i)), base+" option "+strconv.Itoa(i+1), siteInline)
			if err != nil {
				return nil, err
			}
			union.Members = append(union.Members, n)
		}
		if len(union.Members) == 1 {
			union = union.Members[0]
		}
		parts = append(parts, union)
	}

	if len(parts) == 1 {
		only := parts[0]
		only.Chain = out.Chain
		only.Nullable = only.Nullable || out.Nullable
		return only, nil
	}
	out.Kind, out.Members = KindIntersection, parts
	return out, nil
}

func (c *writeContext) operation(op *ir.CastrOperation) (Operation, error) {
	path := join("#/paths", op.Path, op.Method)
	id := op.OperationID
	if id == "" {
		id = op.Method + " " + op.Path
	}
	out := Operation{OperationID: op.OperationID, Method: op.Method, Path: op.Path}

	for i, p := range op.Parameters {
		var schema *ir.CastrSchema
		if p.Schema != nil {
			schema = p.Schema
		} else if m := preferredMedia(p.Content); m != nil {
			schema = m.Schema
		}
		n, err := c.node(schema, join(path, "parameters", strconv.Itoa(i)), c.reg.ContextName(id, p.Name+" parameter"), siteInline)
		if err != nil {
			return Operation{}, err
		}
		out.Parameters = append(out.Parameters, Parameter{Name: p.Name, In: p.In, Required: p.Required, Node: n})
	}

	if b := op.RequestBody; b != nil {
		if m := preferredMedia(b.Content); m != nil {
			n, err := c.node(m.Schema, join(path, "requestBody"), c.reg.ContextName(id, "body"), siteInline)
			if err != nil {
				return Operation{}, err
			}
			out.Body = n
		}
	}

	for _, r := range op.Responses {
		resp := Response{StatusCode: r.StatusCode, Role: r.Role}
		if r.Response != nil {
			if m := preferredMedia(r.Response.Content); m != nil {
				role := "response"
				if r.Role != ir.RoleSuccess {
					role = "error " + r.StatusCode
				}
				n, err := c.node(m.Schema, join(path, "responses", r.StatusCode), c.reg.ContextName(id, role), siteInline)
				if err != nil {
					return Operation{}, err
				}
				resp.Node = n
			}
		}
		out.Responses = append(out.Responses, resp)
	}
	return out, nil
}

// preferredMedia picks application/json, then any JSON-like type, then the
// first media type in sorted order.
func preferredMedia(content map[string]*ir.MediaType) *ir.MediaType {
	if len(content) == 0 {
		return nil
	}
	if m, ok := content["application/json"]; ok {
		return m
	}
	keys := ir.SortedKeys(content)
	for _, k := range keys {
		if strings.HasSuffix(k, "+json") || strings.HasSuffix(k, "/json") {
			return content[k]
		}
	}
	return content[keys[0]]
}

func join(base string, segments ...string) string {
	var b strings.Builder
	b.WriteString(base)
	for _, s := range segments {
		b.WriteByte('/')
		s = strings.ReplaceAll(s, "~", "~0")
		b.WriteString(strings.ReplaceAll(s, "/", "~1"))
	}
	return b.String()
}
