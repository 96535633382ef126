package registry

import "github.com/castr-dev/castr/internal/ir"

// Decision is the outcome of the inline-vs-extract check at a use site.
type Decision int

const (
	// Inline emits the schema in place.
	Inline Decision = iota
	// Extract emits a named declaration and references it.
	Extract
)

// AlwaysInline is the threshold sentinel that disables extraction; named
// declarations are then only used to break reference cycles.
const AlwaysInline = -1

// Score measures a schema's structural size. Objects, arrays and
// compositions cost one plus their nesting depth, every property costs one,
// and refs cost one without being followed. Primitives are free.
func Score(s *ir.CastrSchema) int {
	return score(s, 0)
}

func score(s *ir.CastrSchema, depth int) int {
	if s == nil {
		return 0
	}
	if s.Kind() == ir.KindRef {
		return 1
	}
	total := 0
	switch s.Kind() {
	case ir.KindObject, ir.KindArray, ir.KindComposition:
		total += 1 + depth
	}
	total += s.Properties.Len()
	for _, c := range ir.Children(s) {
		total += score(c.Schema, depth+1)
	}
	return total
}

// Decide applies the threshold: a score equal to the threshold is extracted.
func Decide(score, threshold int) Decision {
	if threshold == AlwaysInline {
		return Inline
	}
	if score >= threshold {
		return Extract
	}
	return Inline
}
