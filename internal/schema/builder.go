// Package schema converts source schema trees into IR schemas.
package schema

import (
	"fmt"

	"github.com/castr-dev/castr/internal/chain"
	"github.com/castr-dev/castr/internal/diag"
	"github.com/castr-dev/castr/internal/ir"
	"github.com/castr-dev/castr/internal/oas"
)

// DefaultMaxDepth bounds schema nesting.
const DefaultMaxDepth = 1000

// Debugger is the interface for debug logging.
type Debugger interface {
	Printf(format string, v ...interface{})
}

type noOpDebugger struct{}

func (noOpDebugger) Printf(string, ...interface{}) {}

// BuilderService builds IR schemas for one source document. It holds no
// per-call state; every Build call gets its own buildContext.
type BuilderService struct {
	doc                 *oas.Document
	maxDepth            int
	mergeMalformedAllOf bool
	warnings            *diag.Collector
	debug               Debugger
	handlers            dispatchTable
}

// buildContext travels down one recursive descent.
type buildContext struct {
	path    string
	usage   Usage
	owner   string          // ref of the component being built, if any
	visited map[string]bool // refs resolved while merging malformed fragments
	depth   int
}

func (c *buildContext) child(segment string, usage Usage) *buildContext {
	return &buildContext{
		path:    c.path + "/" + segment,
		usage:   usage,
		owner:   c.owner,
		visited: c.visited,
		depth:   c.depth + 1,
	}
}

// NewBuilder creates a builder for doc.
func NewBuilder(doc *oas.Document) *BuilderService {
	b := &BuilderService{
		doc:                 doc,
		maxDepth:            DefaultMaxDepth,
		mergeMalformedAllOf: true,
		warnings:            &diag.Collector{},
		debug:               noOpDebugger{},
	}
	b.handlers = newDispatchTable()
	return b
}

// SetMaxDepth sets the nesting bound. Values below one keep the default.
func (b *BuilderService) SetMaxDepth(depth int) {
	if depth < 1 {
		depth = DefaultMaxDepth
	}
	b.maxDepth = depth
}

// SetMergeMalformedAllOf toggles the required-only allOf member merge.
func (b *BuilderService) SetMergeMalformedAllOf(enabled bool) {
	b.mergeMalformedAllOf = enabled
}

// SetWarnings sets the collector warnings are recorded into.
func (b *BuilderService) SetWarnings(c *diag.Collector) {
	if c != nil {
		b.warnings = c
	}
}

// SetDebugger sets the debugger for logging.
func (b *BuilderService) SetDebugger(d Debugger) {
	if d != nil {
		b.debug = d
	}
}

// BuildComponent builds a schema component addressed by ref.
func (b *BuilderService) BuildComponent(ref string, src *oas.Schema) (*ir.CastrSchema, error) {
	ctx := &buildContext{
		path:    ref,
		usage:   ComponentUsage{},
		owner:   ref,
		visited: map[string]bool{ref: true},
	}
	b.debug.Printf("building schema component %s", ref)
	return b.build(src, ctx)
}

// BuildSchema builds a schema used outside components, e.g. a parameter or
// body schema, at the given JSON-pointer path.
func (b *BuilderService) BuildSchema(src *oas.Schema, path string, usage Usage) (*ir.CastrSchema, error) {
	if src == nil {
		return nil, nil
	}
	ctx := &buildContext{
		path:    path,
		usage:   usage,
		visited: map[string]bool{},
	}
	return b.build(src, ctx)
}

func (b *BuilderService) build(src *oas.Schema, ctx *buildContext) (*ir.CastrSchema, error) {
	if ctx.depth > b.maxDepth {
		return nil, &diag.DepthLimitError{Path: ctx.path, Limit: b.maxDepth}
	}
	if src == nil {
		src = &oas.Schema{}
	}

	out := b.annotations(src)
	out.Metadata.Required = ctx.usage.Required()
	out.Metadata.Nullable = isNullable(src)
	for _, t := range src.Type {
		if !IsPrimitiveType(t) {
			b.warnings.Warnf(diag.WarnUnknownType, ctx.path, "type %q is not a JSON-Schema type; kept as is", t)
		}
	}

	for _, kind := range kindsOf(src) {
		if err := b.handlers[kind](b, src, out, ctx); err != nil {
			return nil, err
		}
	}

	zc, err := chain.Build(out)
	if err != nil {
		return nil, fmt.Errorf("%s: default value: %w", ctx.path, err)
	}
	out.Metadata.ZodChain = zc
	return out, nil
}

// annotations copies the keywords every kind shares.
func (b *BuilderService) annotations(src *oas.Schema) *ir.CastrSchema {
	out := &ir.CastrSchema{
		Type:        nonNullTypes(src.Type),
		Format:      src.Format,
		Title:       src.Title,
		Description: src.Description,
		Default:     Normalize(src.Default),
		HasDefault:  src.Default != nil,
		Example:     Normalize(src.Example),
		Examples:    NormalizeSlice(src.Examples),
		Enum:        NormalizeSlice(src.Enum),
		Const:       Normalize(src.Const),
		HasConst:    src.Const != nil,
		Deprecated:  src.Deprecated,
		ReadOnly:    src.ReadOnly,
		WriteOnly:   src.WriteOnly,
		Constraints: chain.ExtractConstraints(src),
		Extensions:  NormalizeMap(src.Extra),
		Metadata: ir.SchemaMetadata{
			DependencyGraph:    ir.DependencyInfo{References: []string{}, ReferencedBy: []string{}},
			CircularReferences: []string{},
		},
	}
	return out
}

// isNullable covers both the 3.1 type array form and the 3.0 flag.
func isNullable(src *oas.Schema) bool {
	if src.Nullable {
		return true
	}
	return src.Type.Has(ir.TypeNull)
}

// nonNullTypes drops "null" from a type array that names another type; a
// lone "null" type is kept.
func nonNullTypes(types oas.TypeSet) []string {
	if len(types) == 0 {
		return nil
	}
	out := make([]string, 0, len(types))
	for _, t := range types {
		if t != ir.TypeNull {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return []string{ir.TypeNull}
	}
	return out
}
