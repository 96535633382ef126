package swagger

import (
	"sort"
	"strings"

	"github.com/castr-dev/castr/internal/diag"
	"github.com/castr-dev/castr/internal/ir"
)

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// writeContext is the state of one Write call.
type writeContext struct {
	doc        *ir.CastrDocument
	components map[string]*ir.IRComponent // component ref -> component
	keys       map[string]string          // component ref -> key in its 2.0 section
	dropped    map[string]bool            // security schemes that could not be written
	warnings   *diag.Collector
}

func newWriteContext(doc *ir.CastrDocument) *writeContext {
	c := &writeContext{
		doc:        doc,
		components: make(map[string]*ir.IRComponent, len(doc.Components)),
		keys:       make(map[string]string, len(doc.Components)),
		dropped:    make(map[string]bool),
		warnings:   &diag.Collector{},
	}
	params := map[string]bool{}
	for _, comp := range doc.Components {
		c.components[comp.Ref()] = comp
		c.keys[comp.Ref()] = definitionKey(comp)
		if comp.Type == ir.ComponentParameter {
			params[c.keys[comp.Ref()]] = true
		}
	}
	// request bodies share the parameters section with parameters.
	for _, comp := range doc.ComponentsOf(ir.ComponentRequestBody) {
		if key := c.keys[comp.Ref()]; params[key] {
			c.keys[comp.Ref()] = key + "Body"
		}
	}
	return c
}

// definitionKey names a component inside its section. Bundled components
// keep their origin so two files may both define the same name.
func definitionKey(comp *ir.IRComponent) string {
	if comp.Origin == "" {
		return comp.Name
	}
	return "x-ext/" + comp.Origin + "/" + comp.Name
}

func section(t ir.ComponentType) string {
	switch t {
	case ir.ComponentSchema:
		return "definitions"
	case ir.ComponentParameter, ir.ComponentRequestBody:
		return "parameters"
	case ir.ComponentResponse:
		return "responses"
	case ir.ComponentSecurityScheme:
		return "securityDefinitions"
	}
	return ""
}

// target resolves ref to a component of type t and returns it with its
// 2.0 pointer.
func (c *writeContext) target(ref, path string, t ir.ComponentType) (*ir.IRComponent, string, error) {
	comp, ok := c.components[ref]
	if !ok || comp.Type != t {
		return nil, "", &diag.UnresolvableReferenceError{Ref: ref, Path: path}
	}
	return comp, "#/" + section(t) + "/" + pointerEscaper.Replace(c.keys[ref]), nil
}

func (c *writeContext) warn(code diag.WarningCode, path, format string, args ...any) {
	c.warnings.Warnf(code, path, format, args...)
}

// sorted returns the components of type t ordered by key.
func (c *writeContext) sorted(t ir.ComponentType) []*ir.IRComponent {
	out := c.doc.ComponentsOf(t)
	sort.SliceStable(out, func(i, j int) bool {
		return c.keys[out[i].Ref()] < c.keys[out[j].Ref()]
	})
	return out
}

func join(base string, segments ...string) string {
	var b strings.Builder
	b.WriteString(base)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(pointerEscaper.Replace(s))
	}
	return b.String()
}

// preferredMedia picks the media type whose schema represents a body:
// application/json, then any JSON flavour, then the first in sorted order.
func preferredMedia(content map[string]*ir.MediaType) string {
	if len(content) == 0 {
		return ""
	}
	if _, ok := content["application/json"]; ok {
		return "application/json"
	}
	keys := ir.SortedKeys(content)
	for _, k := range keys {
		if strings.HasSuffix(k, "json") {
			return k
		}
	}
	return keys[0]
}

func copyExtensions(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// merge adds values to a sorted, duplicate-free list.
func merge(list []string, values ...string) []string {
	for _, v := range values {
		i := sort.SearchStrings(list, v)
		if i < len(list) && list[i] == v {
			continue
		}
		list = append(list, "")
		copy(list[i+1:], list[i:])
		list[i] = v
	}
	return list
}
