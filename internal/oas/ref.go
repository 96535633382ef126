package oas

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotInternalRef is returned for refs that do not point into the same document.
var ErrNotInternalRef = errors.New("oas: not an internal component reference")

// Ref is a parsed internal component reference.
type Ref struct {
	Raw  string
	Hash string // x-ext bundle hash, empty for #/components refs
	Kind string // schemas, parameters, responses, ...
	Name string
}

// ParseRef parses `#/components/{kind}/{name}` and
// `#/x-ext/{hash}/components/{kind}/{name}`. Names are JSON-pointer unescaped.
func ParseRef(raw string) (Ref, error) {
	if !strings.HasPrefix(raw, "#/") {
		return Ref{}, fmt.Errorf("%w: %q", ErrNotInternalRef, raw)
	}
	parts := strings.Split(raw[2:], "/")
	ref := Ref{Raw: raw}
	switch {
	case len(parts) == 3 && parts[0] == "components":
		ref.Kind, ref.Name = parts[1], unescapePointer(parts[2])
	case len(parts) == 5 && parts[0] == "x-ext" && parts[2] == "components":
		ref.Hash, ref.Kind, ref.Name = parts[1], parts[3], unescapePointer(parts[4])
	default:
		return Ref{}, fmt.Errorf("%w: %q", ErrNotInternalRef, raw)
	}
	if ref.Kind == "" || ref.Name == "" {
		return Ref{}, fmt.Errorf("%w: %q", ErrNotInternalRef, raw)
	}
	return ref, nil
}

// SchemaRef returns the canonical ref for a schema component.
func SchemaRef(name string) string {
	return ComponentRef("schemas", name)
}

// ComponentRef returns `#/components/{kind}/{name}` with the name escaped.
func ComponentRef(kind, name string) string {
	return "#/components/" + kind + "/" + EscapePointer(name)
}

// EscapePointer escapes a JSON-pointer reference token.
func EscapePointer(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	return strings.ReplaceAll(s, "/", "~1")
}

func unescapePointer(s string) string {
	s = strings.ReplaceAll(s, "~1", "/")
	return strings.ReplaceAll(s, "~0", "~")
}

// components returns the component table a ref points into.
func (d *Document) components(ref Ref) *Components {
	if ref.Hash == "" {
		return d.Components
	}
	bundle, ok := d.XExt[ref.Hash]
	if !ok || bundle == nil {
		return nil
	}
	return bundle.Components
}

// LookupSchema resolves a schema ref within the document.
func (d *Document) LookupSchema(raw string) (*Schema, bool) {
	ref, err := ParseRef(raw)
	if err != nil || ref.Kind != "schemas" {
		return nil, false
	}
	c := d.components(ref)
	if c == nil {
		return nil, false
	}
	s, ok := c.Schemas.Get(ref.Name)
	return s, ok && s != nil
}

// LookupParameter resolves a parameter ref within the document.
func (d *Document) LookupParameter(raw string) (*Parameter, bool) {
	ref, err := ParseRef(raw)
	if err != nil || ref.Kind != "parameters" {
		return nil, false
	}
	c := d.components(ref)
	if c == nil {
		return nil, false
	}
	p, ok := c.Parameters.Get(ref.Name)
	return p, ok && p != nil
}

// LookupRequestBody resolves a request body ref within the document.
func (d *Document) LookupRequestBody(raw string) (*RequestBody, bool) {
	ref, err := ParseRef(raw)
	if err != nil || ref.Kind != "requestBodies" {
		return nil, false
	}
	c := d.components(ref)
	if c == nil {
		return nil, false
	}
	b, ok := c.RequestBodies.Get(ref.Name)
	return b, ok && b != nil
}

// LookupResponse resolves a response ref within the document.
func (d *Document) LookupResponse(raw string) (*Response, bool) {
	ref, err := ParseRef(raw)
	if err != nil || ref.Kind != "responses" {
		return nil, false
	}
	c := d.components(ref)
	if c == nil {
		return nil, false
	}
	r, ok := c.Responses.Get(ref.Name)
	return r, ok && r != nil
}

// HasComponent reports whether a ref of any kind resolves.
func (d *Document) HasComponent(raw string) bool {
	ref, err := ParseRef(raw)
	if err != nil {
		return false
	}
	c := d.components(ref)
	if c == nil {
		return false
	}
	switch ref.Kind {
	case "schemas":
		return c.Schemas.Has(ref.Name)
	case "responses":
		return c.Responses.Has(ref.Name)
	case "parameters":
		return c.Parameters.Has(ref.Name)
	case "examples":
		return c.Examples.Has(ref.Name)
	case "requestBodies":
		return c.RequestBodies.Has(ref.Name)
	case "headers":
		return c.Headers.Has(ref.Name)
	case "securitySchemes":
		return c.SecuritySchemes.Has(ref.Name)
	case "links":
		return c.Links.Has(ref.Name)
	case "callbacks":
		return c.Callbacks.Has(ref.Name)
	case "pathItems":
		return c.PathItems.Has(ref.Name)
	}
	return false
}

// SchemaNames returns the schema component names, sorted.
func (d *Document) SchemaNames() []string {
	if d.Components == nil {
		return nil
	}
	return d.Components.Schemas.SortedKeys()
}

// Is31 reports whether the document declares OpenAPI 3.1.
func (d *Document) Is31() bool {
	return strings.HasPrefix(d.OpenAPI, "3.1")
}

// LookupSecurityScheme resolves a security scheme ref within the document.
func (d *Document) LookupSecurityScheme(raw string) (*SecurityScheme, bool) {
	ref, err := ParseRef(raw)
	if err != nil || ref.Kind != "securitySchemes" {
		return nil, false
	}
	c := d.components(ref)
	if c == nil {
		return nil, false
	}
	s, ok := c.SecuritySchemes.Get(ref.Name)
	return s, ok && s != nil
}

// LookupHeader resolves a header ref within the document.
func (d *Document) LookupHeader(raw string) (*Header, bool) {
	ref, err := ParseRef(raw)
	if err != nil || ref.Kind != "headers" {
		return nil, false
	}
	c := d.components(ref)
	if c == nil {
		return nil, false
	}
	h, ok := c.Headers.Get(ref.Name)
	return h, ok && h != nil
}

// LookupPathItem resolves a path item ref within the document.
func (d *Document) LookupPathItem(raw string) (*PathItem, bool) {
	ref, err := ParseRef(raw)
	if err != nil || ref.Kind != "pathItems" {
		return nil, false
	}
	c := d.components(ref)
	if c == nil {
		return nil, false
	}
	p, ok := c.PathItems.Get(ref.Name)
	return p, ok && p != nil
}
