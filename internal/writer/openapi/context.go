package openapi

import (
	"strings"

	"github.com/castr-dev/castr/internal/diag"
	"github.com/castr-dev/castr/internal/ir"
)

// writeContext is the state of one Write call.
type writeContext struct {
	doc      *ir.CastrDocument
	version  string
	is31     bool
	refs     map[string]*ir.IRComponent
	warnings *diag.Collector
}

func newWriteContext(doc *ir.CastrDocument, version string) *writeContext {
	refs := make(map[string]*ir.IRComponent, len(doc.Components))
	for _, c := range doc.Components {
		refs[c.Ref()] = c
	}
	return &writeContext{
		doc:      doc,
		version:  version,
		is31:     strings.HasPrefix(version, "3.1"),
		refs:     refs,
		warnings: &diag.Collector{},
	}
}

func (c *writeContext) warn(code diag.WarningCode, path, format string, args ...any) {
	c.warnings.Warnf(code, path, format, args...)
}

// resolve checks that ref names a component of type t.
func (c *writeContext) resolve(ref, path string, t ir.ComponentType) error {
	comp, ok := c.refs[ref]
	if !ok || comp.Type != t {
		return &diag.UnresolvableReferenceError{Ref: ref, Path: path}
	}
	return nil
}

// join appends escaped reference tokens to a JSON pointer.
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

func copyMap(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyStrings(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return append([]string(nil), s...)
}
