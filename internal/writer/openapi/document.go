package openapi

import (
	"fmt"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/castr-dev/castr/internal/diag"
	"github.com/castr-dev/castr/internal/ir"
	"github.com/castr-dev/castr/internal/oas"
	"github.com/castr-dev/castr/internal/ordered"
)

func (c *writeContext) document() (*oas.Document, error) {
	d := c.doc
	out := &oas.Document{
		OpenAPI:      c.version,
		Info:         c.info(),
		Servers:      servers(d.Servers),
		Security:     security(d.Security),
		Tags:         tags(d.Tags),
		ExternalDocs: externalDocs(d.ExternalDocs),
		Extra:        copyMap(d.Extensions),
	}
	if d.JSONSchemaDialect != "" {
		if c.is31 {
			out.JSONSchemaDialect = d.JSONSchemaDialect
		} else {
			c.warn(diag.WarnDownlevelJSONSchemaDialect, "#/jsonSchemaDialect", "jsonSchemaDialect is not supported in 3.0; dropped")
		}
	}

	var err error
	if out.Paths, err = c.pathItems(d.Operations, "#/paths"); err != nil {
		return nil, err
	}
	if len(d.Webhooks) > 0 {
		if c.is31 {
			if out.Webhooks, err = c.pathItems(d.Webhooks, "#/webhooks"); err != nil {
				return nil, err
			}
		} else {
			c.warn(diag.WarnDownlevelWebhooks, "#/webhooks", "webhooks are not supported in 3.0; dropped %d", len(d.Webhooks))
		}
	}

	if out.Components, err = c.components(""); err != nil {
		return nil, err
	}
	for _, origin := range c.origins() {
		comps, err := c.components(origin)
		if err != nil {
			return nil, err
		}
		if out.XExt == nil {
			out.XExt = make(map[string]*oas.Bundle)
		}
		out.XExt[origin] = &oas.Bundle{Components: comps}
	}
	return out, nil
}

func (c *writeContext) info() oas.Info {
	in := c.doc.Info
	out := oas.Info{
		Title:          in.Title,
		Description:    in.Description,
		TermsOfService: in.TermsOfService,
		Version:        in.Version,
		Extra:          copyMap(in.Extensions),
	}
	if in.Summary != "" {
		if c.is31 {
			out.Summary = in.Summary
		} else {
			c.warn(diag.WarnDownlevelInfoSummary, "#/info/summary", "info.summary is not supported in 3.0; dropped")
		}
	}
	if in.Contact != nil {
		out.Contact = &oas.Contact{Name: in.Contact.Name, URL: in.Contact.URL, Email: in.Contact.Email}
	}
	if in.License != nil {
		out.License = &oas.License{Name: in.License.Name, URL: in.License.URL}
		if in.License.Identifier != "" {
			if c.is31 {
				out.License.Identifier = in.License.Identifier
			} else {
				c.warn(diag.WarnDownlevelLicenseIdentifier, "#/info/license/identifier", "license.identifier is not supported in 3.0; dropped")
			}
		}
	}
	return out
}

// pathItems groups operations by path. Path items are inserted in sorted
// order; the PathItem struct fixes the method order.
func (c *writeContext) pathItems(ops []*ir.CastrOperation, root string) (*ordered.Map[*oas.PathItem], error) {
	items := make(map[string]*oas.PathItem)
	for _, op := range ops {
		item, ok := items[op.Path]
		if !ok {
			item = &oas.PathItem{
				Summary:     op.PathSummary,
				Description: op.PathDescription,
				Extra:       copyMap(op.PathExtensions),
			}
			items[op.Path] = item
		}
		if item.Operation(op.Method) != nil {
			return nil, fmt.Errorf("%s: duplicate %s operation", join(root, op.Path), op.Method)
		}
		converted, err := c.operation(op, join(root, op.Path, op.Method))
		if err != nil {
			return nil, err
		}
		item.SetOperation(op.Method, converted)
	}

	out := ordered.New[*oas.PathItem]()
	for _, path := range ir.SortedKeys(items) {
		out.Set(path, items[path])
	}
	return out, nil
}

func (c *writeContext) operation(op *ir.CastrOperation, path string) (*oas.Operation, error) {
	out := &oas.Operation{
		Tags:         copyStrings(op.Tags),
		Summary:      op.Summary,
		Description:  op.Description,
		ExternalDocs: externalDocs(op.ExternalDocs),
		OperationID:  op.OperationID,
		Callbacks:    copyMap(op.Callbacks),
		Deprecated:   op.Deprecated,
		Servers:      servers(op.Servers),
		Extra:        copyMap(op.Extensions),
	}
	if op.Security != nil {
		reqs := security(*op.Security)
		if reqs == nil {
			reqs = []oas.SecurityRequirement{}
		}
		out.Security = &reqs
	}

	for i, p := range op.Parameters {
		param, err := c.parameter(p, join(path, "parameters", strconv.Itoa(i)))
		if err != nil {
			return nil, err
		}
		out.Parameters = append(out.Parameters, param)
	}

	var err error
	if out.RequestBody, err = c.requestBody(op.RequestBody, join(path, "requestBody")); err != nil {
		return nil, err
	}
	if out.Responses, err = c.responses(op.Responses, join(path, "responses")); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *writeContext) parameter(p *ir.Parameter, path string) (*oas.Parameter, error) {
	if p == nil {
		return nil, nil
	}
	if p.Ref != "" {
		if err := c.resolve(p.Ref, path, ir.ComponentParameter); err != nil {
			return nil, err
		}
		return &oas.Parameter{Ref: p.Ref}, nil
	}
	schema, err := c.schema(p.Schema, join(path, "schema"))
	if err != nil {
		return nil, err
	}
	content, err := c.content(p.Content, join(path, "content"))
	if err != nil {
		return nil, err
	}
	return &oas.Parameter{
		Name:            p.Name,
		In:              p.In,
		Description:     p.Description,
		Required:        p.Required,
		Deprecated:      p.Deprecated,
		AllowEmptyValue: p.AllowEmptyValue,
		Style:           p.Style,
		Explode:         copyBool(p.Explode),
		AllowReserved:   p.AllowReserved,
		Schema:          schema,
		Example:         p.Example,
		Examples:        copyMap(p.Examples),
		Content:         content,
		Extra:           copyMap(p.Extensions),
	}, nil
}

func (c *writeContext) requestBody(b *ir.RequestBody, path string) (*oas.RequestBody, error) {
	if b == nil {
		return nil, nil
	}
	if b.Ref != "" {
		if err := c.resolve(b.Ref, path, ir.ComponentRequestBody); err != nil {
			return nil, err
		}
		return &oas.RequestBody{Ref: b.Ref}, nil
	}
	content, err := c.content(b.Content, join(path, "content"))
	if err != nil {
		return nil, err
	}
	if content == nil {
		content = ordered.New[*oas.MediaType]()
	}
	return &oas.RequestBody{
		Description: b.Description,
		Content:     content,
		Required:    b.Required,
		Extra:       copyMap(b.Extensions),
	}, nil
}

// responses emits status codes numeric first, then wildcard classes, then default.
func (c *writeContext) responses(list []*ir.OperationResponse, path string) (*ordered.Map[*oas.Response], error) {
	if len(list) == 0 {
		return nil, nil
	}
	byCode := make(map[string]*ir.Response, len(list))
	codes := make([]string, 0, len(list))
	for _, r := range list {
		byCode[r.StatusCode] = r.Response
		codes = append(codes, r.StatusCode)
	}
	ir.SortStatusCodes(codes)

	out := ordered.New[*oas.Response]()
	for _, code := range codes {
		resp, err := c.response(byCode[code], join(path, code))
		if err != nil {
			return nil, err
		}
		out.Set(code, resp)
	}
	return out, nil
}

func (c *writeContext) response(r *ir.Response, path string) (*oas.Response, error) {
	if r == nil {
		return &oas.Response{}, nil
	}
	if r.Ref != "" {
		if err := c.resolve(r.Ref, path, ir.ComponentResponse); err != nil {
			return nil, err
		}
		return &oas.Response{Ref: r.Ref}, nil
	}
	out := &oas.Response{
		Description: r.Description,
		Links:       copyMap(r.Links),
		Extra:       copyMap(r.Extensions),
	}
	if len(r.Headers) > 0 {
		out.Headers = ordered.New[*oas.Header]()
		for _, name := range ir.SortedKeys(r.Headers) {
			h, err := c.header(r.Headers[name], join(path, "headers", name))
			if err != nil {
				return nil, err
			}
			out.Headers.Set(name, h)
		}
	}
	var err error
	if out.Content, err = c.content(r.Content, join(path, "content")); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *writeContext) header(h *ir.Header, path string) (*oas.Header, error) {
	if h == nil {
		return &oas.Header{}, nil
	}
	if h.Ref != "" {
		if err := c.resolve(h.Ref, path, ir.ComponentHeader); err != nil {
			return nil, err
		}
		return &oas.Header{Ref: h.Ref}, nil
	}
	schema, err := c.schema(h.Schema, join(path, "schema"))
	if err != nil {
		return nil, err
	}
	content, err := c.content(h.Content, join(path, "content"))
	if err != nil {
		return nil, err
	}
	return &oas.Header{
		Description: h.Description,
		Required:    h.Required,
		Deprecated:  h.Deprecated,
		Style:       h.Style,
		Explode:     copyBool(h.Explode),
		Schema:      schema,
		Example:     h.Example,
		Examples:    copyMap(h.Examples),
		Content:     content,
		Extra:       copyMap(h.Extensions),
	}, nil
}

// content emits media types in sorted order.
func (c *writeContext) content(content map[string]*ir.MediaType, path string) (*ordered.Map[*oas.MediaType], error) {
	if len(content) == 0 {
		return nil, nil
	}
	out := ordered.New[*oas.MediaType]()
	for _, name := range ir.SortedKeys(content) {
		m := content[name]
		mt := &oas.MediaType{}
		if m != nil {
			schema, err := c.schema(m.Schema, join(path, name, "schema"))
			if err != nil {
				return nil, err
			}
			mt = &oas.MediaType{
				Schema:   schema,
				Example:  m.Example,
				Examples: copyMap(m.Examples),
				Encoding: copyMap(m.Encoding),
				Extra:    copyMap(m.Extensions),
			}
		}
		out.Set(name, mt)
	}
	return out, nil
}

// origins returns the x-ext bundle hashes that own components, sorted.
func (c *writeContext) origins() []string {
	seen := map[string]bool{}
	var out []string
	for _, comp := range c.doc.Components {
		if comp.Origin != "" && !seen[comp.Origin] {
			seen[comp.Origin] = true
			out = append(out, comp.Origin)
		}
	}
	sort.Strings(out)
	return out
}

// components writes the components of one origin, each section sorted by
// name. It returns nil when the origin owns none.
func (c *writeContext) components(origin string) (*oas.Components, error) {
	var owned []*ir.IRComponent
	for _, comp := range c.doc.Components {
		if comp.Origin == origin {
			owned = append(owned, comp)
		}
	}
	if len(owned) == 0 {
		return nil, nil
	}
	sort.SliceStable(owned, func(i, j int) bool {
		if owned[i].Type != owned[j].Type {
			return owned[i].Type < owned[j].Type
		}
		return owned[i].Name < owned[j].Name
	})

	out := &oas.Components{}
	for _, comp := range owned {
		if err := c.component(out, comp); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *writeContext) component(out *oas.Components, comp *ir.IRComponent) error {
	path := comp.Ref()
	switch comp.Type {
	case ir.ComponentSchema:
		s, err := c.schema(comp.Schema, path)
		if err != nil {
			return err
		}
		out.Schemas = set(out.Schemas, comp.Name, s)
	case ir.ComponentParameter:
		p, err := c.parameter(comp.Parameter, path)
		if err != nil {
			return err
		}
		out.Parameters = set(out.Parameters, comp.Name, p)
	case ir.ComponentResponse:
		r, err := c.response(comp.Response, path)
		if err != nil {
			return err
		}
		out.Responses = set(out.Responses, comp.Name, r)
	case ir.ComponentRequestBody:
		b, err := c.requestBody(comp.RequestBody, path)
		if err != nil {
			return err
		}
		out.RequestBodies = set(out.RequestBodies, comp.Name, b)
	case ir.ComponentHeader:
		h, err := c.header(comp.Header, path)
		if err != nil {
			return err
		}
		out.Headers = set(out.Headers, comp.Name, h)
	case ir.ComponentSecurityScheme:
		if s := c.securityScheme(comp.SecurityScheme, path); s != nil {
			out.SecuritySchemes = set(out.SecuritySchemes, comp.Name, s)
		}
	case ir.ComponentExample:
		out.Examples = set(out.Examples, comp.Name, comp.Value)
	case ir.ComponentLink:
		out.Links = set(out.Links, comp.Name, comp.Value)
	case ir.ComponentCallback:
		out.Callbacks = set(out.Callbacks, comp.Name, comp.Value)
	case ir.ComponentPathItem:
		if !c.is31 {
			c.warn(diag.WarnDownlevelPathItems, path, "components.pathItems is not supported in 3.0; dropped")
			return nil
		}
		var item oas.PathItem
		if err := decodeValue(comp.Value, &item); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		out.PathItems = set(out.PathItems, comp.Name, &item)
	default:
		return fmt.Errorf("%w: component type %q", ir.ErrUnknownDataType, comp.Type)
	}
	return nil
}

func (c *writeContext) securityScheme(s *ir.SecurityScheme, path string) *oas.SecurityScheme {
	if s == nil {
		return &oas.SecurityScheme{}
	}
	if s.Type == "mutualTLS" && !c.is31 {
		c.warn(diag.WarnDownlevelSecurityScheme, path, "mutualTLS is not supported in 3.0; dropped")
		return nil
	}
	out := &oas.SecurityScheme{
		Type:             s.Type,
		Description:      s.Description,
		Name:             s.Name,
		In:               s.In,
		Scheme:           s.Scheme,
		BearerFormat:     s.BearerFormat,
		OpenIDConnectURL: s.OpenIDConnectURL,
		Extra:            copyMap(s.Extensions),
	}
	if flows, ok := s.Flows.(map[string]any); ok {
		out.Flows = copyMap(flows)
	}
	return out
}

func set[V any](m *ordered.Map[V], key string, value V) *ordered.Map[V] {
	if m == nil {
		m = ordered.New[V]()
	}
	m.Set(key, value)
	return m
}

// decodeValue converts a normalized JSON value into a typed source model.
func decodeValue(v any, out any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, out)
}

func servers(in []ir.Server) []oas.Server {
	if len(in) == 0 {
		return nil
	}
	out := make([]oas.Server, len(in))
	for i, s := range in {
		out[i] = oas.Server{URL: s.URL, Description: s.Description}
		if len(s.Variables) > 0 {
			out[i].Variables = make(map[string]*oas.ServerVariable, len(s.Variables))
			for name, v := range s.Variables {
				if v == nil {
					continue
				}
				out[i].Variables[name] = &oas.ServerVariable{
					Enum:        copyStrings(v.Enum),
					Default:     v.Default,
					Description: v.Description,
				}
			}
		}
	}
	return out
}

func security(in []ir.SecurityRequirement) []oas.SecurityRequirement {
	if in == nil {
		return nil
	}
	out := make([]oas.SecurityRequirement, len(in))
	for i, req := range in {
		r := make(oas.SecurityRequirement, len(req))
		for name, scopes := range req {
			r[name] = append([]string{}, scopes...)
		}
		out[i] = r
	}
	return out
}

func tags(in []ir.Tag) []oas.Tag {
	if len(in) == 0 {
		return nil
	}
	out := make([]oas.Tag, len(in))
	for i, t := range in {
		out[i] = oas.Tag{Name: t.Name, Description: t.Description, ExternalDocs: externalDocs(t.ExternalDocs)}
	}
	return out
}

func externalDocs(in *ir.ExternalDocs) *oas.ExternalDocs {
	if in == nil {
		return nil
	}
	return &oas.ExternalDocs{Description: in.Description, URL: in.URL}
}

func copyBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}
