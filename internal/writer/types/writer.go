// Package types renders IR schemas as type text with their validation chain
// tokens. The output is library agnostic; adapters such as the zod writer
// turn the node tree into a concrete syntax.
package types

import (
	"errors"
	"sort"

	"github.com/castr-dev/castr/internal/ir"
	"github.com/castr-dev/castr/internal/registry"
)

// Debugger interface for logging
type Debugger interface {
	Printf(format string, v ...interface{})
}

type noOpDebugger struct{}

func (noOpDebugger) Printf(string, ...interface{}) {}

// Declaration is a named type: a schema component or an inline schema
// extracted because it crossed the complexity threshold.
type Declaration struct {
	Name     string
	Ref      string // component ref; empty for extracted inline schemas
	Node     *Node
	Type     string
	Circular bool
}

// Operation holds the types used by one operation.
type Operation struct {
	OperationID string
	Method      string
	Path        string
	Parameters  []Parameter
	Body        *Node
	Responses   []Response
}

// Parameter is an operation parameter with its type.
type Parameter struct {
	Name     string
	In       string
	Required bool
	Node     *Node
}

// Response is a status code with the type of its body; Node is nil when the
// response has no content.
type Response struct {
	StatusCode string
	Role       ir.ResponseRole
	Node       *Node
}

// Result is the output of one Write call. Declarations are ordered so every
// name is declared before it is used, except inside reference cycles.
type Result struct {
	Declarations []Declaration
	Operations   []Operation
}

// Declaration returns the declaration with the given name.
func (r *Result) Declaration(name string) (Declaration, bool) {
	for _, d := range r.Declarations {
		if d.Name == name {
			return d, true
		}
	}
	return Declaration{}, false
}

// Writer converts an IR document into declarations.
type Writer struct {
	threshold int
	debug     Debugger
}

// NewWriter creates a writer that only declares components.
func NewWriter() *Writer {
	return &Writer{threshold: registry.AlwaysInline, debug: noOpDebugger{}}
}

// SetThreshold sets the complexity score at which inline object, array and
// composition schemas are extracted into their own declarations.
// registry.AlwaysInline disables extraction.
func (w *Writer) SetThreshold(threshold int) {
	w.threshold = threshold
}

// SetDebugger sets the debugger for logging.
func (w *Writer) SetDebugger(debug Debugger) {
	if debug != nil {
		w.debug = debug
	}
}

// Write renders every schema component and every operation.
func (w *Writer) Write(doc *ir.CastrDocument) (*Result, error) {
	if doc == nil {
		return nil, errors.New("nil document")
	}
	ctx := newWriteContext(doc, w.threshold)
	ctx.reg.SetDebugger(w.debug)

	for _, comp := range ctx.ordered() {
		node, err := ctx.node(comp.Schema, comp.Ref(), comp.Name, siteDeclaration)
		if err != nil {
			return nil, err
		}
		name := ctx.names[comp.Ref()]
		ctx.declare(Declaration{
			Name:     name,
			Ref:      comp.Ref(),
			Node:     node,
			Type:     Text(node),
			Circular: ctx.circular(comp.Ref()),
		})
	}
	w.debug.Printf("declared %d types (%d extracted)", len(ctx.result.Declarations), ctx.extracted)

	ops := append([]*ir.CastrOperation(nil), doc.Operations...)
	sort.SliceStable(ops, func(i, j int) bool {
		if ops[i].Path != ops[j].Path {
			return ops[i].Path < ops[j].Path
		}
		return methodRank(ops[i].Method) < methodRank(ops[j].Method)
	})
	for _, op := range ops {
		out, err := ctx.operation(op)
		if err != nil {
			return nil, err
		}
		ctx.result.Operations = append(ctx.result.Operations, out)
	}
	return ctx.result, nil
}

var methods = []string{"get", "post", "put", "patch", "delete", "head", "options", "trace"}

func methodRank(m string) int {
	for i, v := range methods {
		if v == m {
			return i
		}
	}
	return len(methods)
}
