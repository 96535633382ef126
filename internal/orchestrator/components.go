package orchestrator

import (
	"fmt"
	"sort"

	"github.com/castr-dev/castr/internal/ir"
	"github.com/castr-dev/castr/internal/oas"
)

// buildComponents converts one components table: schemas in sorted name
// order, then security schemes, then the remaining component kinds.
func (b *build) buildComponents(origin string, comps *oas.Components) error {
	if comps == nil {
		return nil
	}

	for name, src := range comps.Schemas.Sorted() {
		c := &ir.IRComponent{Type: ir.ComponentSchema, Name: name, Origin: origin}
		ref := c.Ref()
		built, err := b.builder.BuildComponent(ref, src)
		if err != nil {
			return fmt.Errorf("failed to build schema %s: %w", ref, err)
		}
		c.Schema = built
		b.schemas[ref] = built
		b.out.Components = append(b.out.Components, c)
	}

	schemes, err := b.base.ParseSecuritySchemes(origin, comps)
	if err != nil {
		return fmt.Errorf("failed to parse security schemes: %w", err)
	}
	sort.SliceStable(schemes, func(i, j int) bool { return schemes[i].Name < schemes[j].Name })
	b.out.Components = append(b.out.Components, schemes...)

	others, err := b.routes.ParseComponents(origin, comps)
	if err != nil {
		return fmt.Errorf("failed to parse components: %w", err)
	}
	b.out.Components = append(b.out.Components, others...)
	return nil
}

// schemaNames lists the distinct schema component names, sorted.
func schemaNames(doc *ir.CastrDocument) []string {
	seen := map[string]bool{}
	var names []string
	for _, c := range doc.ComponentsOf(ir.ComponentSchema) {
		if !seen[c.Name] {
			seen[c.Name] = true
			names = append(names, c.Name)
		}
	}
	sort.Strings(names)
	return names
}

// enums indexes the enum values of schema components by component ref.
func enums(doc *ir.CastrDocument) map[string][]any {
	var out map[string][]any
	for _, c := range doc.ComponentsOf(ir.ComponentSchema) {
		if c.Schema == nil || c.Schema.Enum == nil {
			continue
		}
		if out == nil {
			out = make(map[string][]any)
		}
		out[c.Ref()] = c.Schema.Enum
	}
	return out
}
