package ir

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
)

// ErrUnknownDataType is returned when persisted IR names a container or
// component kind this package does not know.
var ErrUnknownDataType = errors.New("ir: unknown dataType")

// ComponentType is the kind of a named component.
type ComponentType string

const (
	ComponentSchema         ComponentType = "schema"
	ComponentSecurityScheme ComponentType = "securityScheme"
	ComponentParameter      ComponentType = "parameter"
	ComponentResponse       ComponentType = "response"
	ComponentRequestBody    ComponentType = "requestBody"
	ComponentHeader         ComponentType = "header"
	ComponentLink           ComponentType = "link"
	ComponentCallback       ComponentType = "callback"
	ComponentPathItem       ComponentType = "pathItem"
	ComponentExample        ComponentType = "example"
)

// componentSections maps kinds to their `components` section name.
var componentSections = map[ComponentType]string{
	ComponentSchema:         "schemas",
	ComponentSecurityScheme: "securitySchemes",
	ComponentParameter:      "parameters",
	ComponentResponse:       "responses",
	ComponentRequestBody:    "requestBodies",
	ComponentHeader:         "headers",
	ComponentLink:           "links",
	ComponentCallback:       "callbacks",
	ComponentPathItem:       "pathItems",
	ComponentExample:        "examples",
}

// Section returns the `components` section name of the kind.
func (t ComponentType) Section() string {
	return componentSections[t]
}

// ComponentTypeForSection is the inverse of Section.
func ComponentTypeForSection(section string) (ComponentType, bool) {
	for t, s := range componentSections {
		if s == section {
			return t, true
		}
	}
	return "", false
}

// IRComponent is a named, reusable definition. Exactly one payload field is
// set, selected by Type. Link, callback, path item and example payloads are
// carried as normalized JSON values in Value.
type IRComponent struct {
	Type   ComponentType
	Name   string
	Origin string        // x-ext bundle hash; empty for the document's own components

	Schema         *CastrSchema
	SecurityScheme *SecurityScheme
	Parameter      *Parameter
	Response       *Response
	RequestBody    *RequestBody
	Header         *Header
	Value          any
}

// Ref returns the `$ref` string addressing the component.
func (c *IRComponent) Ref() string {
	return ComponentRef(c.Origin, c.Type, c.Name)
}

// ComponentRef builds the `$ref` for a component, using the x-ext form when
// origin is set.
func ComponentRef(origin string, t ComponentType, name string) string {
	prefix := "#/components/"
	if origin != "" {
		prefix = "#/x-ext/" + origin + "/components/"
	}
	return prefix + t.Section() + "/" + escapePointer(name)
}

type componentJSON struct {
	Type    ComponentType   `json:"type"`
	Name    string          `json:"name"`
	Origin  string          `json:"origin,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

func (c *IRComponent) payload() any {
	switch c.Type {
	case ComponentSchema:
		return c.Schema
	case ComponentSecurityScheme:
		return c.SecurityScheme
	case ComponentParameter:
		return c.Parameter
	case ComponentResponse:
		return c.Response
	case ComponentRequestBody:
		return c.RequestBody
	case ComponentHeader:
		return c.Header
	default:
		return c.Value
	}
}

// MarshalJSON writes `{"type","name","payload"}`.
func (c *IRComponent) MarshalJSON() ([]byte, error) {
	if _, ok := componentSections[c.Type]; !ok {
		return nil, fmt.Errorf("%w: component type %q", ErrUnknownDataType, c.Type)
	}
	payload, err := json.Marshal(c.payload())
	if err != nil {
		return nil, fmt.Errorf("encode component %s: %w", c.Ref(), err)
	}
	return json.Marshal(componentJSON{Type: c.Type, Name: c.Name, Origin: c.Origin, Payload: payload})
}

// UnmarshalJSON decodes the payload into the field selected by type.
func (c *IRComponent) UnmarshalJSON(data []byte) error {
	var raw componentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := IRComponent{Type: raw.Type, Name: raw.Name, Origin: raw.Origin}
	var target any
	switch raw.Type {
	case ComponentSchema:
		target = &out.Schema
	case ComponentSecurityScheme:
		target = &out.SecurityScheme
	case ComponentParameter:
		target = &out.Parameter
	case ComponentResponse:
		target = &out.Response
	case ComponentRequestBody:
		target = &out.RequestBody
	case ComponentHeader:
		target = &out.Header
	case ComponentLink, ComponentCallback, ComponentPathItem, ComponentExample:
		target = &out.Value
	default:
		return fmt.Errorf("%w: component type %q", ErrUnknownDataType, raw.Type)
	}
	if err := json.Unmarshal(raw.Payload, target); err != nil {
		return fmt.Errorf("decode component %s/%s: %w", raw.Type, raw.Name, err)
	}
	*c = out
	return nil
}
