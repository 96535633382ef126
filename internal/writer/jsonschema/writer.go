// Package jsonschema writes the schema components of an IR document as a
// standalone JSON-Schema document, either draft 2020-12 or draft-04.
package jsonschema

import (
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/go-openapi/spec"

	"github.com/castr-dev/castr/internal/diag"
	"github.com/castr-dev/castr/internal/ir"
	"github.com/castr-dev/castr/internal/ordered"
	"github.com/castr-dev/castr/internal/validate"
)

// Dialect is a JSON-Schema draft.
type Dialect string

const (
	Draft2020 Dialect = "2020-12"
	Draft04   Dialect = "draft-04"
)

// URI returns the `$schema` value of the dialect.
func (d Dialect) URI() string {
	switch d {
	case Draft2020:
		return "https://json-schema.org/draft/2020-12/schema"
	case Draft04:
		return "http://json-schema.org/draft-04/schema#"
	}
	return ""
}

// baseURL is the retrieval URL output is compiled under during self-validation.
const baseURL = "https://castr.dev/schemas/"

// Debugger interface for logging
type Debugger interface {
	Printf(format string, v ...interface{})
}

type noOpDebugger struct{}

func (noOpDebugger) Printf(string, ...interface{}) {}

// Writer converts IR schema components to JSON Schema.
type Writer struct {
	dialect    Dialect
	validation bool
	validator  *validate.Service
	debug      Debugger
}

// NewWriter creates a draft 2020-12 writer with self-validation on.
func NewWriter() *Writer {
	return &Writer{
		dialect:    Draft2020,
		validation: true,
		validator:  validate.New(),
		debug:      noOpDebugger{},
	}
}

// SetDialect selects the output draft.
func (w *Writer) SetDialect(dialect Dialect) {
	w.dialect = dialect
}

// SetValidation toggles compiling the output before returning it.
func (w *Writer) SetValidation(enabled bool) {
	w.validation = enabled
}

// SetDebugger sets the debugger for logging.
func (w *Writer) SetDebugger(debug Debugger) {
	if debug != nil {
		w.debug = debug
	}
}

// Write emits every schema component under `$defs` (2020-12) or
// `definitions` (draft-04).
func (w *Writer) Write(doc *ir.CastrDocument) ([]byte, diag.Warnings, error) {
	if doc == nil {
		return nil, nil, errors.New("nil document")
	}
	if w.dialect.URI() == "" {
		return nil, nil, fmt.Errorf("unsupported dialect %q", w.dialect)
	}
	ctx := newWriteContext(doc, w.dialect)
	w.debug.Printf("writing %d schemas as json schema %s", len(ctx.keys), w.dialect)

	var root any
	var err error
	if w.dialect == Draft04 {
		root, err = ctx.bundle04(nil, ctx.sorted())
	} else {
		root, err = ctx.bundle2020(nil, ctx.sorted())
	}
	if err != nil {
		return nil, nil, err
	}
	return w.finish(root, "bundle", ctx)
}

// WriteComponent emits one schema component as the root schema, with the
// components it transitively references under `$defs`/`definitions`.
func (w *Writer) WriteComponent(doc *ir.CastrDocument, ref string) ([]byte, diag.Warnings, error) {
	if doc == nil {
		return nil, nil, errors.New("nil document")
	}
	if w.dialect.URI() == "" {
		return nil, nil, fmt.Errorf("unsupported dialect %q", w.dialect)
	}
	ctx := newWriteContext(doc, w.dialect)
	comp, ok := ctx.components[ref]
	if !ok {
		return nil, nil, &diag.UnresolvableReferenceError{Ref: ref, Path: "#"}
	}
	deps := ctx.reachable(comp)
	w.debug.Printf("writing %s with %d referenced schemas", ref, len(deps))

	var root any
	var err error
	if w.dialect == Draft04 {
		root, err = ctx.bundle04(comp, deps)
	} else {
		root, err = ctx.bundle2020(comp, deps)
	}
	if err != nil {
		return nil, nil, err
	}
	return w.finish(root, ctx.keys[ref], ctx)
}

func (w *Writer) finish(root any, name string, ctx *writeContext) ([]byte, diag.Warnings, error) {
	warnings := ctx.warnings.Warnings()
	data, err := json.MarshalIndent(root, "", "    ")
	if err != nil {
		return nil, warnings, fmt.Errorf("encode schema: %w", err)
	}
	if w.validation {
		url := baseURL + strings.ReplaceAll(name, "/", "-") + ".json"
		if err := w.validator.CompileSchema(url, data); err != nil {
			return nil, warnings, &diag.InvalidReconstructedDocumentError{Format: "json schema " + string(w.dialect), Err: err}
		}
	}
	return data, warnings, nil
}

func (c *writeContext) bundle2020(root *ir.IRComponent, defs []*ir.IRComponent) (*ordered.Map[any], error) {
	out := ordered.New[any]()
	out.Set("$schema", Draft2020.URI())
	if root != nil {
		s, err := c.schema2020(root.Schema, root.Ref())
		if err != nil {
			return nil, err
		}
		for k, v := range s.All() {
			out.Set(k, v)
		}
	}
	if len(defs) == 0 {
		return out, nil
	}
	section := ordered.New[any]()
	for _, comp := range defs {
		s, err := c.schema2020(comp.Schema, comp.Ref())
		if err != nil {
			return nil, err
		}
		section.Set(c.keys[comp.Ref()], s)
	}
	out.Set("$defs", section)
	return out, nil
}

func (c *writeContext) bundle04(root *ir.IRComponent, defs []*ir.IRComponent) (*spec.Schema, error) {
	out := &spec.Schema{}
	if root != nil {
		s, err := c.schema04(root.Schema, root.Ref())
		if err != nil {
			return nil, err
		}
		out = s
	}
	out.Schema = spec.SchemaURL(Draft04.URI())
	if len(defs) == 0 {
		return out, nil
	}
	out.Definitions = make(spec.Definitions, len(defs))
	for _, comp := range defs {
		s, err := c.schema04(comp.Schema, comp.Ref())
		if err != nil {
			return nil, err
		}
		out.Definitions[c.keys[comp.Ref()]] = *s
	}
	return out, nil
}
