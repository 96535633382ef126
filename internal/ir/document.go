package ir

import "strings"

// FormatVersion is the version of the persisted IR layout.
const FormatVersion = "1.0.0"

// CastrDocument is the root of the IR. It owns every component; schemas
// elsewhere only hold `$ref` strings to them.
type CastrDocument struct {
	Version           string                `json:"version"`
	OpenAPIVersion    string                `json:"openApiVersion"`
	TargetVersion     string                `json:"targetVersion"`
	JSONSchemaDialect string                `json:"jsonSchemaDialect,omitempty"`
	Info              Info                  `json:"info"`
	Servers           []Server              `json:"servers"`
	Tags              []Tag                 `json:"tags"`
	Security          []SecurityRequirement `json:"security"`
	ExternalDocs      *ExternalDocs         `json:"externalDocs,omitempty"`
	Components        []*IRComponent        `json:"components"`
	Operations        []*CastrOperation     `json:"operations"`
	Webhooks          []*CastrOperation     `json:"webhooks"`
	DependencyGraph   *DependencyGraph      `json:"dependencyGraph,omitempty"`
	SchemaNames       []string              `json:"schemaNames"`
	Enums             map[string][]any      `json:"enums"`
	Extensions        map[string]any        `json:"extensions"`
}

// Component returns the component addressed by ref.
func (d *CastrDocument) Component(ref string) (*IRComponent, bool) {
	for _, c := range d.Components {
		if c.Ref() == ref {
			return c, true
		}
	}
	return nil, false
}

// Schema returns the schema component addressed by ref.
func (d *CastrDocument) Schema(ref string) (*CastrSchema, bool) {
	c, ok := d.Component(ref)
	if !ok || c.Type != ComponentSchema || c.Schema == nil {
		return nil, false
	}
	return c.Schema, true
}

// ComponentsOf returns components of one type in document order.
func (d *CastrDocument) ComponentsOf(t ComponentType) []*IRComponent {
	var out []*IRComponent
	for _, c := range d.Components {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

// Is31 reports whether the target is an OpenAPI 3.1 document.
func (d *CastrDocument) Is31() bool {
	return strings.HasPrefix(d.TargetVersion, "3.1")
}

// Info is document metadata.
type Info struct {
	Title          string         `json:"title"`
	Summary        string         `json:"summary,omitempty"`
	Description    string         `json:"description,omitempty"`
	TermsOfService string         `json:"termsOfService,omitempty"`
	Contact        *Contact       `json:"contact,omitempty"`
	License        *License       `json:"license,omitempty"`
	Version        string         `json:"version"`
	Extensions     map[string]any `json:"extensions"`
}

// Contact information for the API.
type Contact struct {
	Name  string `json:"name,omitempty"`
	URL   string `json:"url,omitempty"`
	Email string `json:"email,omitempty"`
}

// License information for the API.
type License struct {
	Name       string `json:"name"`
	Identifier string `json:"identifier,omitempty"`
	URL        string `json:"url,omitempty"`
}

// Server is a target host.
type Server struct {
	URL         string                     `json:"url"`
	Description string                     `json:"description,omitempty"`
	Variables   map[string]*ServerVariable `json:"variables"`
}

// ServerVariable is a server URL template substitution.
type ServerVariable struct {
	Enum        []string `json:"enum"`
	Default     string   `json:"default"`
	Description string   `json:"description,omitempty"`
}

// Tag is tag metadata.
type Tag struct {
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	ExternalDocs *ExternalDocs `json:"externalDocs,omitempty"`
}

// ExternalDocs references external documentation.
type ExternalDocs struct {
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
}

func escapePointer(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	return strings.ReplaceAll(s, "/", "~1")
}
