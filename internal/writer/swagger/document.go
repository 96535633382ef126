package swagger

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/go-openapi/spec"

	"github.com/castr-dev/castr/internal/diag"
	"github.com/castr-dev/castr/internal/ir"
)

func (c *writeContext) document() (*spec.Swagger, error) {
	d := c.doc
	out := &spec.Swagger{}
	out.Swagger = Version
	out.Info = c.info()
	out.Tags = tags(d.Tags)
	out.ExternalDocs = externalDocs(d.ExternalDocs)
	out.Extensions = copyExtensions(d.Extensions)
	c.servers(d.Servers, out)
	if d.JSONSchemaDialect != "" {
		c.warn(diag.WarnDownlevelJSONSchemaDialect, "#/jsonSchemaDialect", "jsonSchemaDialect is not supported in 2.0; dropped")
	}
	if len(d.Webhooks) > 0 {
		c.warn(diag.WarnDownlevelWebhooks, "#/webhooks", "webhooks are not supported in 2.0; dropped %d", len(d.Webhooks))
	}

	// security schemes first: requirements naming a dropped scheme are pruned.
	out.SecurityDefinitions = c.securityDefinitions()
	out.Security = c.security(d.Security)

	var err error
	if out.Definitions, err = c.definitions(); err != nil {
		return nil, err
	}
	if out.Parameters, err = c.parameterComponents(); err != nil {
		return nil, err
	}
	if out.Responses, err = c.responseComponents(); err != nil {
		return nil, err
	}
	for _, comp := range c.doc.Components {
		switch comp.Type {
		case ir.ComponentHeader, ir.ComponentExample, ir.ComponentLink, ir.ComponentCallback, ir.ComponentPathItem:
			c.warn(diag.WarnDownlevelComponent, comp.Ref(), "%s components are not supported in 2.0; dropped", comp.Type)
		}
	}

	if out.Paths, err = c.paths(d.Operations); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *writeContext) info() *spec.Info {
	in := c.doc.Info
	out := &spec.Info{}
	out.Title = in.Title
	out.Description = in.Description
	out.TermsOfService = in.TermsOfService
	out.Version = in.Version
	out.Extensions = copyExtensions(in.Extensions)
	if in.Summary != "" {
		c.warn(diag.WarnDownlevelInfoSummary, "#/info/summary", "info.summary is not supported in 2.0; dropped")
	}
	if in.Contact != nil {
		out.Contact = &spec.ContactInfo{}
		out.Contact.Name = in.Contact.Name
		out.Contact.URL = in.Contact.URL
		out.Contact.Email = in.Contact.Email
	}
	if in.License != nil {
		out.License = &spec.License{}
		out.License.Name = in.License.Name
		out.License.URL = in.License.URL
		if in.License.Identifier != "" {
			c.warn(diag.WarnDownlevelLicenseIdentifier, "#/info/license/identifier", "license.identifier is not supported in 2.0; dropped")
		}
	}
	return out
}

// servers maps the first server onto host, basePath and schemes. Further
// servers only contribute schemes when they share its host and path.
func (c *writeContext) servers(servers []ir.Server, out *spec.Swagger) {
	if len(servers) == 0 {
		return
	}
	first, err := serverURL(servers[0])
	if err != nil {
		c.warn(diag.WarnDownlevelServers, "#/servers/0", "server url %q cannot be written as host and basePath: %v", servers[0].URL, err)
		return
	}
	out.Host = first.Host
	if p := strings.TrimSuffix(first.Path, "/"); p != "" {
		out.BasePath = p
	}
	if scheme(first.Scheme) {
		out.Schemes = []string{first.Scheme}
	}

	for i, s := range servers[1:] {
		u, err := serverURL(s)
		if err == nil && u.Host == first.Host && strings.TrimSuffix(u.Path, "/") == strings.TrimSuffix(first.Path, "/") && scheme(u.Scheme) {
			out.Schemes = merge(out.Schemes, u.Scheme)
			continue
		}
		c.warn(diag.WarnDownlevelServers, join("#/servers", strconv.Itoa(i+1)), "2.0 has a single host; server %q dropped", s.URL)
	}
}

// serverURL substitutes variable defaults into the server URL and parses it.
func serverURL(s ir.Server) (*url.URL, error) {
	raw := s.URL
	for _, name := range ir.SortedKeys(s.Variables) {
		if v := s.Variables[name]; v != nil {
			raw = strings.ReplaceAll(raw, "{"+name+"}", v.Default)
		}
	}
	if strings.ContainsAny(raw, "{}") {
		return nil, fmt.Errorf("unresolved variable")
	}
	return url.Parse(raw)
}

func scheme(s string) bool {
	switch s {
	case "http", "https", "ws", "wss":
		return true
	}
	return false
}

func (c *writeContext) definitions() (spec.Definitions, error) {
	comps := c.sorted(ir.ComponentSchema)
	if len(comps) == 0 {
		return nil, nil
	}
	out := make(spec.Definitions, len(comps))
	for _, comp := range comps {
		s, err := c.schema(comp.Schema, comp.Ref())
		if err != nil {
			return nil, err
		}
		if s == nil {
			s = &spec.Schema{}
		}
		out[c.keys[comp.Ref()]] = *s
	}
	return out, nil
}

// parameterComponents writes parameter components and request body
// components, the latter as body parameters.
func (c *writeContext) parameterComponents() (map[string]spec.Parameter, error) {
	out := map[string]spec.Parameter{}
	for _, comp := range c.sorted(ir.ComponentParameter) {
		p, err := c.parameter(comp.Parameter, comp.Ref())
		if err != nil {
			return nil, err
		}
		if p != nil {
			out[c.keys[comp.Ref()]] = *p
		}
	}
	for _, comp := range c.sorted(ir.ComponentRequestBody) {
		if comp.RequestBody == nil {
			continue
		}
		p, _, err := c.bodyParameter(comp.RequestBody, comp.Ref())
		if err != nil {
			return nil, err
		}
		out[c.keys[comp.Ref()]] = p
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func (c *writeContext) responseComponents() (map[string]spec.Response, error) {
	out := map[string]spec.Response{}
	for _, comp := range c.sorted(ir.ComponentResponse) {
		r, _, err := c.response(comp.Response, comp.Ref())
		if err != nil {
			return nil, err
		}
		out[c.keys[comp.Ref()]] = r
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func (c *writeContext) paths(ops []*ir.CastrOperation) (*spec.Paths, error) {
	out := &spec.Paths{Paths: map[string]spec.PathItem{}}
	for _, op := range ops {
		path := join("#/paths", op.Path, op.Method)
		item := out.Paths[op.Path]
		if item.Extensions == nil {
			item.Extensions = copyExtensions(op.PathExtensions)
		}
		slot := operationSlot(&item, op.Method)
		if slot == nil {
			c.warn(diag.WarnDownlevelOperation, path, "%s operations are not supported in 2.0; dropped", op.Method)
			continue
		}
		if *slot != nil {
			return nil, fmt.Errorf("%s: duplicate %s operation", join("#/paths", op.Path), op.Method)
		}
		converted, err := c.operation(op, path)
		if err != nil {
			return nil, err
		}
		*slot = converted
		out.Paths[op.Path] = item
	}
	return out, nil
}

func operationSlot(item *spec.PathItem, method string) **spec.Operation {
	switch method {
	case "get":
		return &item.Get
	case "put":
		return &item.Put
	case "post":
		return &item.Post
	case "delete":
		return &item.Delete
	case "options":
		return &item.Options
	case "head":
		return &item.Head
	case "patch":
		return &item.Patch
	}
	return nil
}

func (c *writeContext) operation(op *ir.CastrOperation, path string) (*spec.Operation, error) {
	out := &spec.Operation{}
	out.ID = op.OperationID
	out.Summary = op.Summary
	out.Description = op.Description
	out.Tags = append([]string(nil), op.Tags...)
	out.Deprecated = op.Deprecated
	out.ExternalDocs = externalDocs(op.ExternalDocs)
	out.Extensions = copyExtensions(op.Extensions)
	if op.Security != nil {
		out.Security = c.security(*op.Security)
		if out.Security == nil {
			out.Security = []map[string][]string{}
		}
	}
	if len(op.Servers) > 0 {
		c.warn(diag.WarnDownlevelServers, join(path, "servers"), "operation servers are not supported in 2.0; dropped")
	}
	if len(op.Callbacks) > 0 {
		c.warn(diag.WarnDownlevelOperation, join(path, "callbacks"), "callbacks are not supported in 2.0; dropped")
	}

	for i, p := range op.Parameters {
		param, err := c.parameter(p, join(path, "parameters", strconv.Itoa(i)))
		if err != nil {
			return nil, err
		}
		if param != nil {
			out.Parameters = append(out.Parameters, *param)
		}
	}

	if b := op.RequestBody; b != nil {
		params, consumes, err := c.requestBody(b, join(path, "requestBody"))
		if err != nil {
			return nil, err
		}
		out.Parameters = append(out.Parameters, params...)
		out.Consumes = consumes
	}

	var err error
	if out.Responses, out.Produces, err = c.responses(op.Responses, join(path, "responses")); err != nil {
		return nil, err
	}
	return out, nil
}

// parameter writes one non-body parameter. It returns nil when the
// parameter cannot be expressed in 2.0.
func (c *writeContext) parameter(p *ir.Parameter, path string) (*spec.Parameter, error) {
	if p == nil {
		return nil, nil
	}
	if p.Ref != "" {
		_, target, err := c.target(p.Ref, path, ir.ComponentParameter)
		if err != nil {
			return nil, err
		}
		if p.In == ir.InCookie {
			c.warn(diag.WarnDownlevelParameter, path, "cookie parameters are not supported in 2.0; dropped %q", p.Name)
			return nil, nil
		}
		return spec.ParamRef(target), nil
	}
	if p.In == ir.InCookie {
		c.warn(diag.WarnDownlevelParameter, path, "cookie parameters are not supported in 2.0; dropped %q", p.Name)
		return nil, nil
	}

	out := &spec.Parameter{}
	out.Name = p.Name
	out.In = p.In
	out.Description = p.Description
	out.Required = p.Required || p.In == ir.InPath
	out.AllowEmptyValue = p.AllowEmptyValue
	out.Extensions = copyExtensions(p.Extensions)

	schema, schemaPath := p.Schema, join(path, "schema")
	if schema == nil && len(p.Content) > 0 {
		media := preferredMedia(p.Content)
		if m := p.Content[media]; m != nil {
			schema, schemaPath = m.Schema, join(path, "content", media, "schema")
		}
		c.warn(diag.WarnDownlevelParameter, path, "content parameters are not supported in 2.0; written from the %s schema", media)
	}
	ok, err := c.simple(schema, schemaPath, &out.SimpleSchema, &out.CommonValidations)
	if err != nil {
		return nil, err
	}
	if !ok {
		c.warn(diag.WarnDownlevelParameter, path, "parameter %q has no 2.0 simple type; written as string", p.Name)
		out.SimpleSchema = spec.SimpleSchema{Type: ir.TypeString}
		out.CommonValidations = spec.CommonValidations{}
	}
	if out.Type == ir.TypeArray {
		out.CollectionFormat = collectionFormat(p)
	}
	return out, nil
}

// collectionFormat maps a 3.x style onto the 2.0 array serialization.
func collectionFormat(p *ir.Parameter) string {
	switch p.Style {
	case "spaceDelimited":
		return "ssv"
	case "pipeDelimited":
		return "pipes"
	}
	explode := p.Explode == nil || *p.Explode
	if p.In == ir.InQuery && (p.Style == "" || p.Style == "form") && explode {
		return "multi"
	}
	return "csv"
}

// requestBody turns a request body into parameters and the consumed media
// types. Form bodies of flat objects become formData parameters; anything
// else is a single body parameter.
func (c *writeContext) requestBody(b *ir.RequestBody, path string) ([]spec.Parameter, []string, error) {
	if b.Ref != "" {
		comp, target, err := c.target(b.Ref, path, ir.ComponentRequestBody)
		if err != nil {
			return nil, nil, err
		}
		var consumes []string
		if comp.RequestBody != nil {
			consumes = ir.SortedKeys(comp.RequestBody.Content)
		}
		return []spec.Parameter{*spec.ParamRef(target)}, consumes, nil
	}

	if params, ok, err := c.formParameters(b, path); err != nil || ok {
		return params, ir.SortedKeys(b.Content), err
	}
	p, consumes, err := c.bodyParameter(b, path)
	if err != nil {
		return nil, nil, err
	}
	return []spec.Parameter{p}, consumes, nil
}

func (c *writeContext) bodyParameter(b *ir.RequestBody, path string) (spec.Parameter, []string, error) {
	media := preferredMedia(b.Content)
	schema := &spec.Schema{}
	if m := b.Content[media]; m != nil && m.Schema != nil {
		var err error
		if schema, err = c.schema(m.Schema, join(path, "content", media, "schema")); err != nil {
			return spec.Parameter{}, nil, err
		}
	}
	if differ(b.Content) {
		c.warn(diag.WarnDownlevelRequestBody, path, "2.0 has a single body schema; kept the %s schema", media)
	}

	p := spec.BodyParam("body", schema)
	p.Description = b.Description
	p.Required = b.Required
	p.Extensions = copyExtensions(b.Extensions)
	return *p, ir.SortedKeys(b.Content), nil
}

var formMedia = map[string]bool{
	"application/x-www-form-urlencoded": true,
	"multipart/form-data":               true,
}

// formParameters reports false when the body is not a form of primitive
// fields.
func (c *writeContext) formParameters(b *ir.RequestBody, path string) ([]spec.Parameter, bool, error) {
	if len(b.Content) == 0 {
		return nil, false, nil
	}
	for media := range b.Content {
		if !formMedia[media] {
			return nil, false, nil
		}
	}
	media := ir.SortedKeys(b.Content)[0]
	m := b.Content[media]
	if m == nil {
		return nil, false, nil
	}
	schemaPath := join(path, "content", media, "schema")
	s, err := c.resolve(m.Schema, schemaPath)
	if err != nil || s == nil || s.Kind() != ir.KindObject || s.Properties.Len() == 0 {
		return nil, false, err
	}

	var out []spec.Parameter
	for _, name := range s.Properties.SortedKeys() {
		prop, _ := s.Properties.Get(name)
		p := spec.FormDataParam(name)
		p.Required = s.IsRequired(name)
		if prop != nil {
			p.Description = prop.Description
		}
		if prop != nil && prop.HasType(ir.TypeString) && prop.Format == "binary" {
			p.Type = "file"
		} else {
			ok, err := c.simple(prop, join(schemaPath, "properties", name), &p.SimpleSchema, &p.CommonValidations)
			if err != nil || !ok {
				return nil, false, err
			}
		}
		out = append(out, *p)
	}
	c.warn(diag.WarnDownlevelRequestBody, path, "form body written as %d formData parameters", len(out))
	return out, true, nil
}

// differ reports whether the media types carry different schemas.
func differ(content map[string]*ir.MediaType) bool {
	var first []byte
	for i, media := range ir.SortedKeys(content) {
		var s *ir.CastrSchema
		if m := content[media]; m != nil {
			s = m.Schema
		}
		data, _ := json.Marshal(s)
		if i == 0 {
			first = data
			continue
		}
		if string(data) != string(first) {
			return true
		}
	}
	return false
}

// responses writes numeric status codes and default. Wildcard classes have
// no 2.0 form.
func (c *writeContext) responses(list []*ir.OperationResponse, path string) (*spec.Responses, []string, error) {
	if len(list) == 0 {
		return nil, nil, nil
	}
	out := &spec.Responses{}
	var produces []string
	for _, r := range list {
		rpath := join(path, r.StatusCode)
		code, err := strconv.Atoi(r.StatusCode)
		if r.StatusCode != "default" && err != nil {
			c.warn(diag.WarnDownlevelStatusCode, rpath, "status code %s is not supported in 2.0; dropped", r.StatusCode)
			continue
		}
		resp, media, err := c.response(r.Response, rpath)
		if err != nil {
			return nil, nil, err
		}
		produces = merge(produces, media...)
		if r.StatusCode == "default" {
			out.Default = &resp
			continue
		}
		if out.StatusCodeResponses == nil {
			out.StatusCodeResponses = map[int]spec.Response{}
		}
		out.StatusCodeResponses[code] = resp
	}
	return out, produces, nil
}

// response returns the response and the media types it produces.
func (c *writeContext) response(r *ir.Response, path string) (spec.Response, []string, error) {
	if r == nil {
		return spec.Response{}, nil, nil
	}
	if r.Ref != "" {
		comp, target, err := c.target(r.Ref, path, ir.ComponentResponse)
		if err != nil {
			return spec.Response{}, nil, err
		}
		var produces []string
		if comp.Response != nil {
			produces = ir.SortedKeys(comp.Response.Content)
		}
		return *spec.ResponseRef(target), produces, nil
	}

	out := spec.Response{}
	out.Description = r.Description
	out.Extensions = copyExtensions(r.Extensions)
	if len(r.Links) > 0 {
		c.warn(diag.WarnDownlevelOperation, join(path, "links"), "links are not supported in 2.0; dropped")
	}

	for _, name := range ir.SortedKeys(r.Headers) {
		h, err := c.header(r.Headers[name], join(path, "headers", name))
		if err != nil {
			return spec.Response{}, nil, err
		}
		if out.Headers == nil {
			out.Headers = map[string]spec.Header{}
		}
		out.Headers[name] = h
	}

	if len(r.Content) == 0 {
		return out, nil, nil
	}
	media := preferredMedia(r.Content)
	if m := r.Content[media]; m != nil && m.Schema != nil {
		var err error
		if out.Schema, err = c.schema(m.Schema, join(path, "content", media, "schema")); err != nil {
			return spec.Response{}, nil, err
		}
	}
	if differ(r.Content) {
		c.warn(diag.WarnDownlevelMediaTypes, path, "2.0 has a single response schema; kept the %s schema", media)
	}
	for _, name := range ir.SortedKeys(r.Content) {
		if m := r.Content[name]; m != nil && m.Example != nil {
			if out.Examples == nil {
				out.Examples = map[string]any{}
			}
			out.Examples[name] = m.Example
		}
	}
	return out, ir.SortedKeys(r.Content), nil
}

// header inlines header refs; 2.0 has no header components.
func (c *writeContext) header(h *ir.Header, path string) (spec.Header, error) {
	if h != nil && h.Ref != "" {
		comp, ok := c.components[h.Ref]
		if !ok || comp.Type != ir.ComponentHeader {
			return spec.Header{}, &diag.UnresolvableReferenceError{Ref: h.Ref, Path: path}
		}
		h = comp.Header
	}
	out := spec.Header{}
	if h == nil {
		out.Type = ir.TypeString
		return out, nil
	}
	out.Description = h.Description
	out.Extensions = copyExtensions(h.Extensions)

	schema, schemaPath := h.Schema, join(path, "schema")
	if schema == nil && len(h.Content) > 0 {
		media := preferredMedia(h.Content)
		if m := h.Content[media]; m != nil {
			schema, schemaPath = m.Schema, join(path, "content", media, "schema")
		}
	}
	ok, err := c.simple(schema, schemaPath, &out.SimpleSchema, &out.CommonValidations)
	if err != nil {
		return spec.Header{}, err
	}
	if !ok {
		c.warn(diag.WarnDownlevelParameter, path, "header has no 2.0 simple type; written as string")
		out.SimpleSchema = spec.SimpleSchema{Type: ir.TypeString}
		out.CommonValidations = spec.CommonValidations{}
	}
	if out.Type == ir.TypeArray {
		out.CollectionFormat = "csv"
	}
	return out, nil
}

func tags(in []ir.Tag) []spec.Tag {
	if len(in) == 0 {
		return nil
	}
	out := make([]spec.Tag, len(in))
	for i, t := range in {
		out[i] = spec.Tag{TagProps: spec.TagProps{
			Name:         t.Name,
			Description:  t.Description,
			ExternalDocs: externalDocs(t.ExternalDocs),
		}}
	}
	return out
}

func externalDocs(in *ir.ExternalDocs) *spec.ExternalDocumentation {
	if in == nil {
		return nil
	}
	return &spec.ExternalDocumentation{Description: in.Description, URL: in.URL}
}
