package schema

import (
	"strconv"

	"github.com/castr-dev/castr/internal/diag"
	"github.com/castr-dev/castr/internal/ir"
	"github.com/castr-dev/castr/internal/oas"
	"github.com/castr-dev/castr/internal/ordered"
)

// handler fills the part of out that belongs to one schema kind.
type handler func(b *BuilderService, src *oas.Schema, out *ir.CastrSchema, ctx *buildContext) error

// dispatchTable maps schema kinds to handlers. A source schema that mixes
// keywords of several kinds (an allOf next to properties, say) runs every
// matching handler, in kindOrder.
type dispatchTable map[ir.SchemaKind]handler

var kindOrder = []ir.SchemaKind{
	ir.KindRef,
	ir.KindComposition,
	ir.KindObject,
	ir.KindArray,
}

func newDispatchTable() dispatchTable {
	return dispatchTable{
		ir.KindRef:         buildRef,
		ir.KindComposition: buildComposition,
		ir.KindObject:      buildObject,
		ir.KindArray:       buildArray,
	}
}

// kindsOf returns the kinds whose keywords appear in src. Primitive and
// untyped schemas need nothing beyond the shared annotations.
func kindsOf(src *oas.Schema) []ir.SchemaKind {
	var kinds []ir.SchemaKind
	for _, k := range kindOrder {
		if hasKind(src, k) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

func hasKind(src *oas.Schema, kind ir.SchemaKind) bool {
	switch kind {
	case ir.KindRef:
		return src.Ref != ""
	case ir.KindComposition:
		return src.HasComposition() || src.Discriminator != nil
	case ir.KindObject:
		return src.Properties != nil ||
			len(src.Required) > 0 ||
			src.AdditionalProperties != nil ||
			src.PatternProperties != nil ||
			src.DependentSchemas != nil ||
			src.DependentRequired != nil ||
			src.UnevaluatedProperties != nil
	case ir.KindArray:
		return src.Items != nil || src.PrefixItems != nil || src.UnevaluatedItems != nil
	}
	return false
}

// buildRef keeps the ref string. The target must exist in the document.
func buildRef(b *BuilderService, src *oas.Schema, out *ir.CastrSchema, ctx *buildContext) error {
	if _, ok := b.doc.LookupSchema(src.Ref); !ok {
		return &diag.UnresolvableReferenceError{Ref: src.Ref, Path: ctx.path}
	}
	out.Ref = src.Ref
	out.Metadata.DependencyGraph.References = []string{src.Ref}
	if ctx.owner != "" && src.Ref == ctx.owner {
		out.Metadata.CircularReferences = []string{src.Ref}
	}
	return nil
}

func buildComposition(b *BuilderService, src *oas.Schema, out *ir.CastrSchema, ctx *buildContext) error {
	var err error
	if len(src.AllOf) > 0 {
		out.AllOf = make([]*ir.CastrSchema, len(src.AllOf))
		for i, member := range src.AllOf {
			mctx := ctx.child("allOf/"+strconv.Itoa(i), CompositionMemberUsage{})
			if b.mergeMalformedAllOf && member.IsRequiredOnlyFragment() {
				out.AllOf[i], err = b.mergeFragment(member, src.AllOf, i, mctx)
			} else {
				out.AllOf[i], err = b.build(member, mctx)
			}
			if err != nil {
				return err
			}
		}
	}
	if out.OneOf, err = b.buildMembers(src.OneOf, "oneOf", ctx); err != nil {
		return err
	}
	if out.AnyOf, err = b.buildMembers(src.AnyOf, "anyOf", ctx); err != nil {
		return err
	}
	if src.Not != nil {
		if out.Not, err = b.build(src.Not, ctx.child("not", CompositionMemberUsage{})); err != nil {
			return err
		}
	}
	if d := src.Discriminator; d != nil {
		out.Discriminator = &ir.Discriminator{PropertyName: d.PropertyName, Mapping: copyStringMap(d.Mapping)}
	}
	return nil
}

func (b *BuilderService) buildMembers(members []*oas.Schema, keyword string, ctx *buildContext) ([]*ir.CastrSchema, error) {
	if len(members) == 0 {
		return nil, nil
	}
	out := make([]*ir.CastrSchema, len(members))
	for i, m := range members {
		s, err := b.build(m, ctx.child(keyword+"/"+strconv.Itoa(i), CompositionMemberUsage{}))
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func buildObject(b *BuilderService, src *oas.Schema, out *ir.CastrSchema, ctx *buildContext) error {
	if src.Required != nil {
		out.Required = append([]string{}, src.Required...)
	}

	if src.Properties != nil {
		out.Properties = ir.NewProperties()
		for name, prop := range src.Properties.All() {
			usage := PropertyUsage{Member: contains(src.Required, name)}
			s, err := b.build(prop, ctx.child("properties/"+oas.EscapePointer(name), usage))
			if err != nil {
				return err
			}
			out.Properties.Set(name, s)
		}
	}

	var err error
	if out.PatternProperties, err = b.buildSchemaMap(src.PatternProperties, "patternProperties", PropertyUsage{Member: true}, ctx); err != nil {
		return err
	}
	if out.DependentSchemas, err = b.buildSchemaMap(src.DependentSchemas, "dependentSchemas", CompositionMemberUsage{}, ctx); err != nil {
		return err
	}
	if out.AdditionalProperties, err = b.buildAdditional(src.AdditionalProperties, "additionalProperties", PropertyUsage{Member: true}, ctx); err != nil {
		return err
	}
	if out.UnevaluatedProperties, err = b.buildAdditional(src.UnevaluatedProperties, "unevaluatedProperties", PropertyUsage{Member: true}, ctx); err != nil {
		return err
	}
	if src.DependentRequired != nil {
		out.DependentRequired = make(map[string][]string, len(src.DependentRequired))
		for k, v := range src.DependentRequired {
			out.DependentRequired[k] = append([]string{}, v...)
		}
	}
	return nil
}

func buildArray(b *BuilderService, src *oas.Schema, out *ir.CastrSchema, ctx *buildContext) error {
	if src.Items != nil {
		switch {
		case src.Items.Schema != nil:
			items, err := b.build(src.Items.Schema, ctx.child("items", ArrayItemUsage{}))
			if err != nil {
				return err
			}
			out.Items = items
		case src.Items.Allows:
			items, err := b.build(&oas.Schema{}, ctx.child("items", ArrayItemUsage{}))
			if err != nil {
				return err
			}
			out.Items = items
		default:
			out.ItemsClosed = true
		}
	}
	if src.PrefixItems != nil {
		out.PrefixItems = make([]*ir.CastrSchema, len(src.PrefixItems))
		for i, p := range src.PrefixItems {
			s, err := b.build(p, ctx.child("prefixItems/"+strconv.Itoa(i), ArrayItemUsage{}))
			if err != nil {
				return err
			}
			out.PrefixItems[i] = s
		}
	}
	var err error
	out.UnevaluatedItems, err = b.buildAdditional(src.UnevaluatedItems, "unevaluatedItems", ArrayItemUsage{}, ctx)
	return err
}

func (b *BuilderService) buildSchemaMap(m *ordered.Map[*oas.Schema], keyword string, usage Usage, ctx *buildContext) (*ir.CastrSchemaProperties, error) {
	if m == nil {
		return nil, nil
	}
	out := ir.NewProperties()
	for k, v := range m.All() {
		s, err := b.build(v, ctx.child(keyword+"/"+oas.EscapePointer(k), usage))
		if err != nil {
			return nil, err
		}
		out.Set(k, s)
	}
	return out, nil
}

func (b *BuilderService) buildAdditional(src *oas.SchemaOrBool, keyword string, usage Usage, ctx *buildContext) (*ir.Additional, error) {
	if src == nil {
		return nil, nil
	}
	out := &ir.Additional{Allows: src.Allows}
	if src.Schema != nil {
		s, err := b.build(src.Schema, ctx.child(keyword, usage))
		if err != nil {
			return nil, err
		}
		out.Schema = s
	}
	return out, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func copyStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
