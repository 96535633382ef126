// Package oas models bundled OpenAPI 3.0/3.1 documents, the input of the
// IR builder and the output of the document writer.
package oas

import "github.com/castr-dev/castr/internal/ordered"

// Document is the root of an OpenAPI document.
type Document struct {
	OpenAPI           string                  `yaml:"openapi" json:"openapi"`
	Info              Info                    `yaml:"info" json:"info"`
	JSONSchemaDialect string                  `yaml:"jsonSchemaDialect,omitempty" json:"jsonSchemaDialect,omitempty"`
	Servers           []Server                `yaml:"servers,omitempty" json:"servers,omitempty"`
	Paths             *ordered.Map[*PathItem] `yaml:"paths,omitempty" json:"paths,omitempty"`
	Webhooks          *ordered.Map[*PathItem] `yaml:"webhooks,omitempty" json:"webhooks,omitempty"`
	Components        *Components             `yaml:"components,omitempty" json:"components,omitempty"`
	Security          []SecurityRequirement   `yaml:"security,omitempty" json:"security,omitempty"`
	Tags              []Tag                   `yaml:"tags,omitempty" json:"tags,omitempty"`
	ExternalDocs      *ExternalDocs           `yaml:"externalDocs,omitempty" json:"externalDocs,omitempty"`
	XExt              map[string]*Bundle      `yaml:"x-ext,omitempty" json:"x-ext,omitempty"`
	Extra             map[string]any          `yaml:",inline" json:"-"`
}

// MarshalJSON inlines Extra next to the named fields.
func (d Document) MarshalJSON() ([]byte, error) {
	type alias Document
	a := alias(d)
	return marshalWithExtra(&a, d.Extra)
}

// Bundle is one entry of the x-ext provenance table written by bundlers that
// inline external files: `#/x-ext/{hash}/components/{type}/{name}`.
type Bundle struct {
	Components *Components `yaml:"components,omitempty" json:"components,omitempty"`
}

// Info provides metadata about the API.
type Info struct {
	Title          string         `yaml:"title" json:"title"`
	Summary        string         `yaml:"summary,omitempty" json:"summary,omitempty"`
	Description    string         `yaml:"description,omitempty" json:"description,omitempty"`
	TermsOfService string         `yaml:"termsOfService,omitempty" json:"termsOfService,omitempty"`
	Contact        *Contact       `yaml:"contact,omitempty" json:"contact,omitempty"`
	License        *License       `yaml:"license,omitempty" json:"license,omitempty"`
	Version        string         `yaml:"version" json:"version"`
	Extra          map[string]any `yaml:",inline" json:"-"`
}

// MarshalJSON inlines Extra next to the named fields.
func (i Info) MarshalJSON() ([]byte, error) {
	type alias Info
	a := alias(i)
	return marshalWithExtra(&a, i.Extra)
}

// Contact information for the API.
type Contact struct {
	Name  string `yaml:"name,omitempty" json:"name,omitempty"`
	URL   string `yaml:"url,omitempty" json:"url,omitempty"`
	Email string `yaml:"email,omitempty" json:"email,omitempty"`
}

// License information for the API.
type License struct {
	Name       string `yaml:"name" json:"name"`
	Identifier string `yaml:"identifier,omitempty" json:"identifier,omitempty"`
	URL        string `yaml:"url,omitempty" json:"url,omitempty"`
}

// Server is a target host.
type Server struct {
	URL         string                     `yaml:"url" json:"url"`
	Description string                     `yaml:"description,omitempty" json:"description,omitempty"`
	Variables   map[string]*ServerVariable `yaml:"variables,omitempty" json:"variables,omitempty"`
}

// ServerVariable is a substitution for a server URL template.
type ServerVariable struct {
	Enum        []string `yaml:"enum,omitempty" json:"enum,omitempty"`
	Default     string   `yaml:"default" json:"default"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
}

// Tag adds metadata to a tag used by operations.
type Tag struct {
	Name         string        `yaml:"name" json:"name"`
	Description  string        `yaml:"description,omitempty" json:"description,omitempty"`
	ExternalDocs *ExternalDocs `yaml:"externalDocs,omitempty" json:"externalDocs,omitempty"`
}

// ExternalDocs references external documentation.
type ExternalDocs struct {
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	URL         string `yaml:"url" json:"url"`
}

// SecurityRequirement maps security scheme names to required scopes.
type SecurityRequirement map[string][]string

// PathItem describes the operations available on a single path.
type PathItem struct {
	Ref         string         `yaml:"$ref,omitempty" json:"$ref,omitempty"`
	Summary     string         `yaml:"summary,omitempty" json:"summary,omitempty"`
	Description string         `yaml:"description,omitempty" json:"description,omitempty"`
	Get         *Operation     `yaml:"get,omitempty" json:"get,omitempty"`
	Post        *Operation     `yaml:"post,omitempty" json:"post,omitempty"`
	Put         *Operation     `yaml:"put,omitempty" json:"put,omitempty"`
	Patch       *Operation     `yaml:"patch,omitempty" json:"patch,omitempty"`
	Delete      *Operation     `yaml:"delete,omitempty" json:"delete,omitempty"`
	Head        *Operation     `yaml:"head,omitempty" json:"head,omitempty"`
	Options     *Operation     `yaml:"options,omitempty" json:"options,omitempty"`
	Trace       *Operation     `yaml:"trace,omitempty" json:"trace,omitempty"`
	Servers     []Server       `yaml:"servers,omitempty" json:"servers,omitempty"`
	Parameters  []*Parameter   `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	Extra       map[string]any `yaml:",inline" json:"-"`
}

// MarshalJSON inlines Extra next to the named fields.
func (p PathItem) MarshalJSON() ([]byte, error) {
	type alias PathItem
	a := alias(p)
	return marshalWithExtra(&a, p.Extra)
}

// Methods lists HTTP methods in the canonical emission order.
var Methods = []string{"get", "post", "put", "patch", "delete", "head", "options", "trace"}

// Operation returns the operation for a lower-case method name.
func (p *PathItem) Operation(method string) *Operation {
	switch method {
	case "get":
		return p.Get
	case "post":
		return p.Post
	case "put":
		return p.Put
	case "patch":
		return p.Patch
	case "delete":
		return p.Delete
	case "head":
		return p.Head
	case "options":
		return p.Options
	case "trace":
		return p.Trace
	}
	return nil
}

// SetOperation stores op under a lower-case method name.
func (p *PathItem) SetOperation(method string, op *Operation) {
	switch method {
	case "get":
		p.Get = op
	case "post":
		p.Post = op
	case "put":
		p.Put = op
	case "patch":
		p.Patch = op
	case "delete":
		p.Delete = op
	case "head":
		p.Head = op
	case "options":
		p.Options = op
	case "trace":
		p.Trace = op
	}
}

// Operation describes a single API operation on a path.
type Operation struct {
	Tags         []string                `yaml:"tags,omitempty" json:"tags,omitempty"`
	Summary      string                  `yaml:"summary,omitempty" json:"summary,omitempty"`
	Description  string                  `yaml:"description,omitempty" json:"description,omitempty"`
	ExternalDocs *ExternalDocs           `yaml:"externalDocs,omitempty" json:"externalDocs,omitempty"`
	OperationID  string                  `yaml:"operationId,omitempty" json:"operationId,omitempty"`
	Parameters   []*Parameter            `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	RequestBody  *RequestBody            `yaml:"requestBody,omitempty" json:"requestBody,omitempty"`
	Responses    *ordered.Map[*Response] `yaml:"responses,omitempty" json:"responses,omitempty"`
	Callbacks    map[string]any          `yaml:"callbacks,omitempty" json:"callbacks,omitempty"`
	Deprecated   bool                    `yaml:"deprecated,omitempty" json:"deprecated,omitempty"`
	Security     *[]SecurityRequirement  `yaml:"security,omitempty" json:"security,omitempty"`
	Servers      []Server                `yaml:"servers,omitempty" json:"servers,omitempty"`
	Extra        map[string]any          `yaml:",inline" json:"-"`
}

// MarshalJSON inlines Extra next to the named fields.
func (o Operation) MarshalJSON() ([]byte, error) {
	type alias Operation
	a := alias(o)
	return marshalWithExtra(&a, o.Extra)
}

// Parameter describes a single operation parameter.
type Parameter struct {
	Ref             string                   `yaml:"$ref,omitempty" json:"$ref,omitempty"`
	Name            string                   `yaml:"name,omitempty" json:"name,omitempty"`
	In              string                   `yaml:"in,omitempty" json:"in,omitempty"`
	Description     string                   `yaml:"description,omitempty" json:"description,omitempty"`
	Required        bool                     `yaml:"required,omitempty" json:"required,omitempty"`
	Deprecated      bool                     `yaml:"deprecated,omitempty" json:"deprecated,omitempty"`
	AllowEmptyValue bool                     `yaml:"allowEmptyValue,omitempty" json:"allowEmptyValue,omitempty"`
	Style           string                   `yaml:"style,omitempty" json:"style,omitempty"`
	Explode         *bool                    `yaml:"explode,omitempty" json:"explode,omitempty"`
	AllowReserved   bool                     `yaml:"allowReserved,omitempty" json:"allowReserved,omitempty"`
	Schema          *Schema                  `yaml:"schema,omitempty" json:"schema,omitempty"`
	Example         any                      `yaml:"example,omitempty" json:"example,omitempty"`
	Examples        map[string]any           `yaml:"examples,omitempty" json:"examples,omitempty"`
	Content         *ordered.Map[*MediaType] `yaml:"content,omitempty" json:"content,omitempty"`
	Extra           map[string]any           `yaml:",inline" json:"-"`
}

// MarshalJSON inlines Extra next to the named fields.
func (p Parameter) MarshalJSON() ([]byte, error) {
	type alias Parameter
	a := alias(p)
	return marshalWithExtra(&a, p.Extra)
}

// RequestBody describes a single request body.
type RequestBody struct {
	Ref         string                   `yaml:"$ref,omitempty" json:"$ref,omitempty"`
	Description string                   `yaml:"description,omitempty" json:"description,omitempty"`
	Content     *ordered.Map[*MediaType] `yaml:"content,omitempty" json:"content,omitempty"`
	Required    bool                     `yaml:"required,omitempty" json:"required,omitempty"`
	Extra       map[string]any           `yaml:",inline" json:"-"`
}

// MarshalJSON inlines Extra next to the named fields.
func (r RequestBody) MarshalJSON() ([]byte, error) {
	type alias RequestBody
	a := alias(r)
	return marshalWithExtra(&a, r.Extra)
}

// MediaType provides the schema and examples for a media type.
type MediaType struct {
	Schema   *Schema        `yaml:"schema,omitempty" json:"schema,omitempty"`
	Example  any            `yaml:"example,omitempty" json:"example,omitempty"`
	Examples map[string]any `yaml:"examples,omitempty" json:"examples,omitempty"`
	Encoding map[string]any `yaml:"encoding,omitempty" json:"encoding,omitempty"`
	Extra    map[string]any `yaml:",inline" json:"-"`
}

// MarshalJSON inlines Extra next to the named fields.
func (m MediaType) MarshalJSON() ([]byte, error) {
	type alias MediaType
	a := alias(m)
	return marshalWithExtra(&a, m.Extra)
}

// Response describes a single response from an API operation.
type Response struct {
	Ref         string                   `yaml:"$ref,omitempty" json:"$ref,omitempty"`
	Description string                   `yaml:"description,omitempty" json:"description,omitempty"`
	Headers     *ordered.Map[*Header]    `yaml:"headers,omitempty" json:"headers,omitempty"`
	Content     *ordered.Map[*MediaType] `yaml:"content,omitempty" json:"content,omitempty"`
	Links       map[string]any           `yaml:"links,omitempty" json:"links,omitempty"`
	Extra       map[string]any           `yaml:",inline" json:"-"`
}

// MarshalJSON inlines Extra next to the named fields.
func (r Response) MarshalJSON() ([]byte, error) {
	type alias Response
	a := alias(r)
	return marshalWithExtra(&a, r.Extra)
}

// Header describes a response or encoding header.
type Header struct {
	Ref         string                   `yaml:"$ref,omitempty" json:"$ref,omitempty"`
	Description string                   `yaml:"description,omitempty" json:"description,omitempty"`
	Required    bool                     `yaml:"required,omitempty" json:"required,omitempty"`
	Deprecated  bool                     `yaml:"deprecated,omitempty" json:"deprecated,omitempty"`
	Style       string                   `yaml:"style,omitempty" json:"style,omitempty"`
	Explode     *bool                    `yaml:"explode,omitempty" json:"explode,omitempty"`
	Schema      *Schema                  `yaml:"schema,omitempty" json:"schema,omitempty"`
	Example     any                      `yaml:"example,omitempty" json:"example,omitempty"`
	Examples    map[string]any           `yaml:"examples,omitempty" json:"examples,omitempty"`
	Content     *ordered.Map[*MediaType] `yaml:"content,omitempty" json:"content,omitempty"`
	Extra       map[string]any           `yaml:",inline" json:"-"`
}

// MarshalJSON inlines Extra next to the named fields.
func (h Header) MarshalJSON() ([]byte, error) {
	type alias Header
	a := alias(h)
	return marshalWithExtra(&a, h.Extra)
}

// SecurityScheme defines a security scheme usable by operations.
type SecurityScheme struct {
	Ref              string         `yaml:"$ref,omitempty" json:"$ref,omitempty"`
	Type             string         `yaml:"type,omitempty" json:"type,omitempty"`
	Description      string         `yaml:"description,omitempty" json:"description,omitempty"`
	Name             string         `yaml:"name,omitempty" json:"name,omitempty"`
	In               string         `yaml:"in,omitempty" json:"in,omitempty"`
	Scheme           string         `yaml:"scheme,omitempty" json:"scheme,omitempty"`
	BearerFormat     string         `yaml:"bearerFormat,omitempty" json:"bearerFormat,omitempty"`
	Flows            map[string]any `yaml:"flows,omitempty" json:"flows,omitempty"`
	OpenIDConnectURL string         `yaml:"openIdConnectUrl,omitempty" json:"openIdConnectUrl,omitempty"`
	Extra            map[string]any `yaml:",inline" json:"-"`
}

// MarshalJSON inlines Extra next to the named fields.
func (s SecurityScheme) MarshalJSON() ([]byte, error) {
	type alias SecurityScheme
	a := alias(s)
	return marshalWithExtra(&a, s.Extra)
}

// Components holds the reusable objects of a document.
type Components struct {
	Schemas         *ordered.Map[*Schema]         `yaml:"schemas,omitempty" json:"schemas,omitempty"`
	Responses       *ordered.Map[*Response]       `yaml:"responses,omitempty" json:"responses,omitempty"`
	Parameters      *ordered.Map[*Parameter]      `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	Examples        *ordered.Map[any]             `yaml:"examples,omitempty" json:"examples,omitempty"`
	RequestBodies   *ordered.Map[*RequestBody]    `yaml:"requestBodies,omitempty" json:"requestBodies,omitempty"`
	Headers         *ordered.Map[*Header]         `yaml:"headers,omitempty" json:"headers,omitempty"`
	SecuritySchemes *ordered.Map[*SecurityScheme] `yaml:"securitySchemes,omitempty" json:"securitySchemes,omitempty"`
	Links           *ordered.Map[any]             `yaml:"links,omitempty" json:"links,omitempty"`
	Callbacks       *ordered.Map[any]             `yaml:"callbacks,omitempty" json:"callbacks,omitempty"`
	PathItems       *ordered.Map[*PathItem]       `yaml:"pathItems,omitempty" json:"pathItems,omitempty"`
}
