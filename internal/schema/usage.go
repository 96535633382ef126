package schema

// Usage is the context a schema is used in. Each variant fixes whether the
// schema is required there; the rule cannot be overridden by the caller.
type Usage interface {
	Required() bool
	usage()
}

// ComponentUsage is a named component definition. Always required.
type ComponentUsage struct{}

// PropertyUsage is an object property. Required iff listed in the parent's
// `required` array.
type PropertyUsage struct {
	Member bool
}

// CompositionMemberUsage is an allOf/oneOf/anyOf/not member. Always required.
type CompositionMemberUsage struct{}

// ArrayItemUsage is an array item or tuple position. Always required.
type ArrayItemUsage struct{}

// ParameterUsage is a parameter's schema. Follows the parameter's flag.
type ParameterUsage struct {
	ParamRequired bool
}

// BodyUsage is a request or response body schema. Request bodies follow
// `requestBody.required`; responses pass true.
type BodyUsage struct {
	BodyRequired bool
}

func (ComponentUsage) Required() bool         { return true }
func (u PropertyUsage) Required() bool        { return u.Member }
func (CompositionMemberUsage) Required() bool { return true }
func (ArrayItemUsage) Required() bool         { return true }
func (u ParameterUsage) Required() bool       { return u.ParamRequired }
func (u BodyUsage) Required() bool            { return u.BodyRequired }

func (ComponentUsage) usage()         {}
func (PropertyUsage) usage()          {}
func (CompositionMemberUsage) usage() {}
func (ArrayItemUsage) usage()         {}
func (ParameterUsage) usage()         {}
func (BodyUsage) usage()              {}
