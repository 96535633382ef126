package jsonschema

import (
	"sort"
	"strings"

	"github.com/castr-dev/castr/internal/diag"
	"github.com/castr-dev/castr/internal/ir"
)

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// writeContext is the state of one Write call.
type writeContext struct {
	dialect    Dialect
	components map[string]*ir.IRComponent // component ref -> schema component
	keys       map[string]string          // component ref -> definition key
	warnings   *diag.Collector
}

func newWriteContext(doc *ir.CastrDocument, dialect Dialect) *writeContext {
	c := &writeContext{
		dialect:    dialect,
		components: make(map[string]*ir.IRComponent),
		keys:       make(map[string]string),
		warnings:   &diag.Collector{},
	}
	for _, comp := range doc.ComponentsOf(ir.ComponentSchema) {
		c.components[comp.Ref()] = comp
		c.keys[comp.Ref()] = definitionKey(comp)
	}
	return c
}

// definitionKey names a component inside `$defs`. Bundled components keep
// their origin so two files may both define the same name.
func definitionKey(comp *ir.IRComponent) string {
	if comp.Origin == "" {
		return comp.Name
	}
	return "x-ext/" + comp.Origin + "/" + comp.Name
}

func (c *writeContext) section() string {
	if c.dialect == Draft04 {
		return "definitions"
	}
	return "$defs"
}

// target rewrites a component ref to its definition pointer.
func (c *writeContext) target(ref, path string) (string, error) {
	key, ok := c.keys[ref]
	if !ok {
		return "", &diag.UnresolvableReferenceError{Ref: ref, Path: path}
	}
	return "#/" + c.section() + "/" + pointerEscaper.Replace(key), nil
}

func (c *writeContext) warn(code diag.WarningCode, path, format string, args ...any) {
	c.warnings.Warnf(code, path, format, args...)
}

// sorted returns every schema component ordered by definition key.
func (c *writeContext) sorted() []*ir.IRComponent {
	out := make([]*ir.IRComponent, 0, len(c.components))
	for _, comp := range c.components {
		out = append(out, comp)
	}
	c.sortByKey(out)
	return out
}

// reachable returns the schema components root references directly or
// transitively. root itself is included only when a cycle leads back to it.
func (c *writeContext) reachable(root *ir.IRComponent) []*ir.IRComponent {
	seen := map[string]bool{}
	var out []*ir.IRComponent
	queue := []*ir.IRComponent{root}
	for len(queue) > 0 {
		comp := queue[0]
		queue = queue[1:]
		ir.Walk(comp.Schema, comp.Ref(), func(_ string, s *ir.CastrSchema) bool {
			if s.Ref == "" || seen[s.Ref] {
				return true
			}
			seen[s.Ref] = true
			if dep, ok := c.components[s.Ref]; ok {
				out = append(out, dep)
				queue = append(queue, dep)
			}
			return true
		})
	}
	c.sortByKey(out)
	return out
}

func (c *writeContext) sortByKey(list []*ir.IRComponent) {
	sort.Slice(list, func(i, j int) bool {
		return c.keys[list[i].Ref()] < c.keys[list[j].Ref()]
	})
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

// types returns the schema's type list with nullability folded in. When the
// schema is nullable but untyped the caller has to wrap it instead.
func types(s *ir.CastrSchema) (out []string, wrapNull bool) {
	out = append([]string(nil), s.Type...)
	if !s.Metadata.Nullable || s.HasType(ir.TypeNull) {
		return out, false
	}
	if len(out) == 0 || s.Ref != "" {
		return out, true
	}
	return append(out, ir.TypeNull), false
}

// examples merges the single example into the list form.
func examples(s *ir.CastrSchema) []any {
	if len(s.Examples) > 0 {
		return append([]any(nil), s.Examples...)
	}
	if s.Example != nil {
		return []any{s.Example}
	}
	return nil
}
