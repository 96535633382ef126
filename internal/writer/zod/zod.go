// Package zod renders type declarations and their chain tokens as a zod
// schema module.
package zod

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/castr-dev/castr/internal/ir"
	"github.com/castr-dev/castr/internal/writer/types"
)

// Writer renders a types.Result.
type Writer struct {
	endpoints bool
}

// NewWriter creates a writer that also emits the endpoint list.
func NewWriter() *Writer {
	return &Writer{endpoints: true}
}

// SetEndpoints toggles the `endpoints` export.
func (w *Writer) SetEndpoints(enabled bool) {
	w.endpoints = enabled
}

// Write renders every declaration as an exported constant, in result order.
func (w *Writer) Write(result *types.Result) []byte {
	var buf bytes.Buffer
	buf.WriteString("import { z } from \"zod\";\n")
	for _, d := range result.Declarations {
		fmt.Fprintf(&buf, "\nexport const %s = %s;\n", d.Name, Expression(d.Node))
	}
	if w.endpoints && len(result.Operations) > 0 {
		buf.WriteString("\nexport const endpoints = [\n")
		for _, op := range result.Operations {
			writeEndpoint(&buf, op)
		}
		buf.WriteString("];\n")
	}
	return buf.Bytes()
}

func writeEndpoint(buf *bytes.Buffer, op types.Operation) {
	buf.WriteString("    {\n")
	fmt.Fprintf(buf, "        method: %s,\n", quote(op.Method))
	fmt.Fprintf(buf, "        path: %s,\n", quote(op.Path))
	if op.OperationID != "" {
		fmt.Fprintf(buf, "        alias: %s,\n", quote(op.OperationID))
	}
	if len(op.Parameters) > 0 {
		buf.WriteString("        parameters: [\n")
		for _, p := range op.Parameters {
			fmt.Fprintf(buf, "            { name: %s, type: %s, schema: %s },\n",
				quote(p.Name), quote(location(p.In)), Expression(p.Node))
		}
		buf.WriteString("        ],\n")
	}
	if op.Body != nil {
		fmt.Fprintf(buf, "        body: %s,\n", Expression(op.Body))
	}

	response := "z.void()"
	var errs []types.Response
	found := false
	for _, r := range op.Responses {
		if r.Role == ir.RoleSuccess && !found {
			found = true
			if r.Node != nil {
				response = Expression(r.Node)
			}
			continue
		}
		errs = append(errs, r)
	}
	fmt.Fprintf(buf, "        response: %s,\n", response)
	if len(errs) > 0 {
		buf.WriteString("        errors: [\n")
		for _, r := range errs {
			schema := "z.void()"
			if r.Node != nil {
				schema = Expression(r.Node)
			}
			fmt.Fprintf(buf, "            { status: %s, schema: %s },\n", quote(r.StatusCode), schema)
		}
		buf.WriteString("        ],\n")
	}
	buf.WriteString("    },\n")
}

func location(in string) string {
	if in == "" {
		return ""
	}
	return strings.ToUpper(in[:1]) + in[1:]
}

// Expression renders one node as a zod expression.
func Expression(n *types.Node) string {
	if n == nil {
		return "z.unknown()"
	}
	expr := base(n)
	hasNull := false
	for _, token := range n.Chain {
		name, arg, _ := strings.Cut(token, ":")
		if name == string(ir.PresenceNullable) || name == string(ir.PresenceNullish) {
			hasNull = true
		}
		expr += method(n, name, arg)
	}
	if n.Nullable && !hasNull {
		expr += ".nullable()"
	}
	return expr
}

// field renders a property, adding `.optional()` when the chain does not
// already mark it.
func field(f types.Field) string {
	expr := Expression(f.Node)
	if f.Optional && !optional(f.Node) {
		expr += ".optional()"
	}
	return expr
}

func optional(n *types.Node) bool {
	for _, token := range n.Chain {
		if token == string(ir.PresenceOptional) || token == string(ir.PresenceNullish) {
			return true
		}
	}
	return false
}

func base(n *types.Node) string {
	switch n.Kind {
	case types.KindRef:
		if n.Lazy {
			return "z.lazy(() => " + n.Name + ")"
		}
		return n.Name
	case types.KindPrimitive:
		switch n.Name {
		case "string", "number", "boolean", "null":
			return "z." + n.Name + "()"
		}
		return "z.unknown()"
	case types.KindLiteral:
		return literal(n.Literals)
	case types.KindObject:
		return object(n)
	case types.KindArray:
		var elem *types.Node
		if len(n.Members) > 0 {
			elem = n.Members[0]
		}
		return "z.array(" + Expression(elem) + ")"
	case types.KindTuple:
		out := "z.tuple([" + list(n.Members) + "])"
		if n.Rest != nil {
			out += ".rest(" + Expression(n.Rest) + ")"
		}
		return out
	case types.KindIntersection:
		out := Expression(n.Members[0])
		for _, m := range n.Members[1:] {
			out += ".and(" + Expression(m) + ")"
		}
		return out
	case types.KindUnion:
		if len(n.Members) == 1 {
			return Expression(n.Members[0])
		}
		return "z.union([" + list(n.Members) + "])"
	}
	return "z.unknown()"
}

func list(nodes []*types.Node) string {
	parts := make([]string, len(nodes))
	for i, m := range nodes {
		parts[i] = Expression(m)
	}
	return strings.Join(parts, ", ")
}

func object(n *types.Node) string {
	if len(n.Fields) == 0 {
		switch {
		case n.Rest != nil:
			return "z.record(z.string(), " + Expression(n.Rest) + ")"
		case n.Closed:
			return "z.object({}).strict()"
		default:
			return "z.record(z.string(), z.unknown())"
		}
	}
	parts := make([]string, len(n.Fields))
	for i, f := range n.Fields {
		parts[i] = types.PropertyKey(f.Name) + ": " + field(f)
	}
	out := "z.object({ " + strings.Join(parts, ", ") + " })"
	switch {
	case n.Rest != nil:
		out += ".catchall(" + Expression(n.Rest) + ")"
	case n.Closed:
		out += ".strict()"
	}
	return out
}

func literal(values []any) string {
	switch len(values) {
	case 0:
		return "z.never()"
	case 1:
		return "z.literal(" + encode(values[0]) + ")"
	}
	strs := make([]string, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			break
		}
		strs = append(strs, quote(s))
	}
	if len(strs) == len(values) {
		return "z.enum([" + strings.Join(strs, ", ") + "])"
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = "z.literal(" + encode(v) + ")"
	}
	return "z.union([" + strings.Join(parts, ", ") + "])"
}

// method maps one chain token to a zod method call. Tokens that do not apply
// to the node's base type, or have no zod equivalent, render as nothing.
func method(n *types.Node, name, arg string) string {
	numeric := n.Kind == types.KindPrimitive && n.Name == "number"
	str := n.Kind == types.KindPrimitive && n.Name == "string"
	array := n.Kind == types.KindArray

	switch name {
	case "nullable", "nullish", "optional":
		return "." + name + "()"
	case "default":
		return ".default(" + arg + ")"
	}

	switch {
	case numeric:
		switch name {
		case "minimum":
			return ".gte(" + arg + ")"
		case "exclusiveMinimum":
			return ".gt(" + arg + ")"
		case "maximum":
			return ".lte(" + arg + ")"
		case "exclusiveMaximum":
			return ".lt(" + arg + ")"
		case "multipleOf":
			return ".multipleOf(" + arg + ")"
		case "int":
			return ".int()"
		}
	case str:
		switch name {
		case "minLength":
			return ".min(" + arg + ")"
		case "maxLength":
			return ".max(" + arg + ")"
		case "pattern":
			return ".regex(new RegExp(" + quote(arg) + "))"
		case "format":
			return stringFormat(arg)
		}
	case array:
		switch name {
		case "minItems":
			return ".min(" + arg + ")"
		case "maxItems":
			return ".max(" + arg + ")"
		}
	}
	return ""
}

var stringFormats = map[string]string{
	"email":     ".email()",
	"uuid":      ".uuid()",
	"uri":       ".url()",
	"url":       ".url()",
	"date-time": ".datetime()",
	"date":      ".date()",
	"time":      ".time()",
}

func stringFormat(format string) string {
	return stringFormats[format]
}

func quote(s string) string {
	return strconv.Quote(s)
}

func encode(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "undefined"
	}
	return string(data)
}
