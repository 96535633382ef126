package ir

import "strconv"

// Child is a direct subschema with the JSON-pointer segment(s) leading to it.
type Child struct {
	Segment string
	Schema  *CastrSchema
}

// Children returns the direct subschemas of s in a deterministic order:
// properties (sorted), pattern properties (sorted), additional properties,
// dependent schemas (sorted), items, prefix items, unevaluated keywords,
// composition members, not. Refs are not followed.
func Children(s *CastrSchema) []Child {
	if s == nil {
		return nil
	}
	var out []Child
	for _, k := range s.Properties.SortedKeys() {
		v, _ := s.Properties.Get(k)
		out = append(out, Child{Segment: "properties/" + escapePointer(k), Schema: v})
	}
	for _, k := range s.PatternProperties.SortedKeys() {
		v, _ := s.PatternProperties.Get(k)
		out = append(out, Child{Segment: "patternProperties/" + escapePointer(k), Schema: v})
	}
	if s.AdditionalProperties != nil && s.AdditionalProperties.Schema != nil {
		out = append(out, Child{Segment: "additionalProperties", Schema: s.AdditionalProperties.Schema})
	}
	for _, k := range s.DependentSchemas.SortedKeys() {
		v, _ := s.DependentSchemas.Get(k)
		out = append(out, Child{Segment: "dependentSchemas/" + escapePointer(k), Schema: v})
	}
	if s.UnevaluatedProperties != nil && s.UnevaluatedProperties.Schema != nil {
		out = append(out, Child{Segment: "unevaluatedProperties", Schema: s.UnevaluatedProperties.Schema})
	}
	if s.Items != nil {
		out = append(out, Child{Segment: "items", Schema: s.Items})
	}
	for i, v := range s.PrefixItems {
		out = append(out, Child{Segment: "prefixItems/" + strconv.Itoa(i), Schema: v})
	}
	if s.UnevaluatedItems != nil && s.UnevaluatedItems.Schema != nil {
		out = append(out, Child{Segment: "unevaluatedItems", Schema: s.UnevaluatedItems.Schema})
	}
	for i, v := range s.AllOf {
		out = append(out, Child{Segment: "allOf/" + strconv.Itoa(i), Schema: v})
	}
	for i, v := range s.OneOf {
		out = append(out, Child{Segment: "oneOf/" + strconv.Itoa(i), Schema: v})
	}
	for i, v := range s.AnyOf {
		out = append(out, Child{Segment: "anyOf/" + strconv.Itoa(i), Schema: v})
	}
	if s.Not != nil {
		out = append(out, Child{Segment: "not", Schema: s.Not})
	}
	return out
}

// WalkFunc is called for every schema reached by Walk. Returning false skips
// the schema's children.
type WalkFunc func(path string, s *CastrSchema) bool

// Walk visits root and its subschemas in pre-order using an explicit stack.
// Siblings are visited in the order Children returns them.
func Walk(root *CastrSchema, path string, fn WalkFunc) {
	type frame struct {
		path   string
		schema *CastrSchema
	}
	if root == nil {
		return
	}
	stack := []frame{{path: path, schema: root}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.schema == nil || !fn(top.path, top.schema) {
			continue
		}
		children := Children(top.schema)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{path: top.path + "/" + children[i].Segment, schema: children[i].Schema})
		}
	}
}

// WalkDocument visits every schema site in the document: schema components,
// then parameter, header, request body and response schemas of components and
// operations, in document order.
func WalkDocument(doc *CastrDocument, fn WalkFunc) {
	for _, c := range doc.Components {
		base := c.Ref()
		switch c.Type {
		case ComponentSchema:
			Walk(c.Schema, base, fn)
		case ComponentParameter:
			walkParameter(c.Parameter, base, fn)
		case ComponentHeader:
			walkHeader(c.Header, base, fn)
		case ComponentRequestBody:
			walkRequestBody(c.RequestBody, base, fn)
		case ComponentResponse:
			walkResponse(c.Response, base, fn)
		}
	}
	walkOps := func(prefix string, ops []*CastrOperation) {
		for _, op := range ops {
			base := "#/" + prefix + "/" + escapePointer(op.Path) + "/" + op.Method
			for i, p := range op.Parameters {
				walkParameter(p, base+"/parameters/"+strconv.Itoa(i), fn)
			}
			walkRequestBody(op.RequestBody, base+"/requestBody", fn)
			for _, r := range op.Responses {
				walkResponse(r.Response, base+"/responses/"+r.StatusCode, fn)
			}
		}
	}
	walkOps("paths", doc.Operations)
	walkOps("webhooks", doc.Webhooks)
}

func walkParameter(p *Parameter, path string, fn WalkFunc) {
	if p == nil || p.Ref != "" {
		return
	}
	Walk(p.Schema, path+"/schema", fn)
	walkContent(p.Content, path, fn)
}

func walkHeader(h *Header, path string, fn WalkFunc) {
	if h == nil || h.Ref != "" {
		return
	}
	Walk(h.Schema, path+"/schema", fn)
	walkContent(h.Content, path, fn)
}

func walkRequestBody(b *RequestBody, path string, fn WalkFunc) {
	if b == nil || b.Ref != "" {
		return
	}
	walkContent(b.Content, path, fn)
}

func walkResponse(r *Response, path string, fn WalkFunc) {
	if r == nil || r.Ref != "" {
		return
	}
	for _, name := range SortedKeys(r.Headers) {
		walkHeader(r.Headers[name], path+"/headers/"+escapePointer(name), fn)
	}
	walkContent(r.Content, path, fn)
}

func walkContent(content map[string]*MediaType, path string, fn WalkFunc) {
	for _, mt := range SortedKeys(content) {
		if m := content[mt]; m != nil {
			Walk(m.Schema, path+"/content/"+escapePointer(mt)+"/schema", fn)
		}
	}
}
