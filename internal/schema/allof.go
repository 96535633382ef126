package schema

import (
	"strings"

	"github.com/castr-dev/castr/internal/diag"
	"github.com/castr-dev/castr/internal/ir"
	"github.com/castr-dev/castr/internal/oas"
)

// mergeFragment replaces an allOf member that only carries a `required` list
// with an object schema whose properties are taken from the sibling members.
//
// Some generators emit
//
//	allOf:
//	  - $ref: '#/components/schemas/Base'
//	  - required: [id]
//
// meaning "Base, with id required". Read literally the second member is an
// unconstrained schema, so the named properties are looked up in the siblings
// (following sibling refs and nested allOf) and copied into the member.
// Names no sibling defines stay in `required` without a property.
func (b *BuilderService) mergeFragment(fragment *oas.Schema, members []*oas.Schema, self int, ctx *buildContext) (*ir.CastrSchema, error) {
	synth := &oas.Schema{
		Type:     oas.TypeSet{ir.TypeObject},
		Required: append([]string{}, fragment.Required...),
		Extra:    fragment.Extra,
	}

	found := make(map[string]*oas.Schema, len(fragment.Required))
	for i, sibling := range members {
		if i == self {
			continue
		}
		b.collectProperties(sibling, fragment.Required, found, copyVisited(ctx.visited))
	}

	var missing []string
	for _, name := range fragment.Required {
		prop, ok := found[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		if synth.Properties == nil {
			synth.Properties = newSchemaMap()
		}
		synth.Properties.Set(name, prop)
	}

	msg := "allOf member has only a required list; merged properties " + strings.Join(fragment.Required, ", ") + " from sibling members"
	if len(missing) > 0 {
		msg += " (not defined by any sibling: " + strings.Join(missing, ", ") + ")"
	}
	b.warnings.Warnf(diag.WarnMalformedCompositionFragment, ctx.path, "%s", msg)
	b.debug.Printf("%s: %s", ctx.path, msg)

	return b.build(synth, ctx)
}

// collectProperties records the definitions of the wanted property names
// found in s. The first definition of a name wins.
func (b *BuilderService) collectProperties(s *oas.Schema, wanted []string, found map[string]*oas.Schema, visited map[string]bool) {
	if s == nil {
		return
	}
	if s.Ref != "" {
		if visited[s.Ref] {
			return
		}
		visited[s.Ref] = true
		target, ok := b.doc.LookupSchema(s.Ref)
		if !ok {
			return
		}
		b.collectProperties(target, wanted, found, visited)
		return
	}
	for _, name := range wanted {
		if _, done := found[name]; done {
			continue
		}
		if prop, ok := s.Properties.Get(name); ok {
			found[name] = prop
		}
	}
	for _, member := range s.AllOf {
		b.collectProperties(member, wanted, found, visited)
	}
}

func copyVisited(v map[string]bool) map[string]bool {
	out := make(map[string]bool, len(v))
	for k := range v {
		out[k] = true
	}
	return out
}
