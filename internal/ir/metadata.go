package ir

// Presence is the optionality token of a validation chain.
type Presence string

const (
	PresenceNone     Presence = "none"     // required, not nullable
	PresenceOptional Presence = "optional" // not required, not nullable
	PresenceNullish  Presence = "nullish"  // not required, nullable
	PresenceNullable Presence = "nullable" // required, nullable
)

// SchemaMetadata is present on every schema. Required and Nullable are fixed
// by the builder from the usage context; ZodChain is filled by the chain pass
// and DependencyGraph/CircularReferences by the graph pass.
type SchemaMetadata struct {
	Required           bool           `json:"required"`
	Nullable           bool           `json:"nullable"`
	ZodChain           ZodChain       `json:"zodChain"`
	DependencyGraph    DependencyInfo `json:"dependencyGraph"`
	CircularReferences []string       `json:"circularReferences"`
}

// ZodChain is the target-agnostic validation chain of a schema.
type ZodChain struct {
	Presence    Presence `json:"presence"`
	Validations []string `json:"validations"`
	Defaults    []string `json:"defaults"`
}

// DependencyInfo is the per-schema view of the dependency graph.
type DependencyInfo struct {
	References   []string `json:"references"`
	ReferencedBy []string `json:"referencedBy"`
	Depth        int      `json:"depth"`
}
