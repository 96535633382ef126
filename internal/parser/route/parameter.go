package route

import (
	"fmt"
	"strconv"

	"github.com/castr-dev/castr/internal/ir"
	"github.com/castr-dev/castr/internal/oas"
	"github.com/castr-dev/castr/internal/parser/base"
	"github.com/castr-dev/castr/internal/schema"
)

type paramKey struct {
	name string
	in   string
}

// mergeParameters combines path-level and operation parameters. An operation
// parameter replaces the path-level one with the same name and location;
// the surviving path-level parameters come first.
func (s *Service) mergeParameters(pathParams, opParams []*oas.Parameter, itemPtr, opPtr string) ([]*ir.Parameter, error) {
	ops := make([]*ir.Parameter, 0, len(opParams))
	overridden := map[paramKey]bool{}
	for i, p := range opParams {
		converted, err := s.convertParameter(p, opPtr+"/parameters/"+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		overridden[paramKey{converted.Name, converted.In}] = true
		ops = append(ops, converted)
	}

	var out []*ir.Parameter
	for i, p := range pathParams {
		converted, err := s.convertParameter(p, itemPtr+"/parameters/"+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		if overridden[paramKey{converted.Name, converted.In}] {
			continue
		}
		out = append(out, converted)
	}
	out = append(out, ops...)
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// convertParameter resolves a parameter ref, keeping the ref string next to
// the copied fields.
func (s *Service) convertParameter(p *oas.Parameter, ptr string) (*ir.Parameter, error) {
	resolved, err := resolve(p, ptr, s.doc.LookupParameter, func(p *oas.Parameter) string { return p.Ref })
	if err != nil {
		return nil, err
	}
	if resolved == nil {
		return nil, fmt.Errorf("%s: empty parameter", ptr)
	}

	out := &ir.Parameter{
		Ref:             p.Ref,
		Name:            resolved.Name,
		In:              resolved.In,
		Description:     resolved.Description,
		Required:        resolved.Required,
		Deprecated:      resolved.Deprecated,
		AllowEmptyValue: resolved.AllowEmptyValue,
		Style:           resolved.Style,
		Explode:         copyBool(resolved.Explode),
		AllowReserved:   resolved.AllowReserved,
		Example:         schema.Normalize(resolved.Example),
		Examples:        schema.NormalizeMap(resolved.Examples),
		Extensions:      base.Extensions(resolved.Extra),
	}
	usage := schema.ParameterUsage{ParamRequired: resolved.Required}
	if out.Schema, err = s.builder.BuildSchema(resolved.Schema, ptr+"/schema", usage); err != nil {
		return nil, err
	}
	if out.Content, err = s.convertContent(resolved.Content, ptr+"/content", usage); err != nil {
		return nil, err
	}
	return out, nil
}

// groupParameters splits parameters by location, keeping their order.
func groupParameters(params []*ir.Parameter, ptr string) (ir.ParameterGroups, error) {
	var groups ir.ParameterGroups
	for _, p := range params {
		switch p.In {
		case ir.InPath:
			groups.Path = append(groups.Path, p)
		case ir.InQuery:
			groups.Query = append(groups.Query, p)
		case ir.InHeader:
			groups.Header = append(groups.Header, p)
		case ir.InCookie:
			groups.Cookie = append(groups.Cookie, p)
		default:
			return ir.ParameterGroups{}, fmt.Errorf("%s: parameter %q has unknown location %q", ptr, p.Name, p.In)
		}
	}
	return groups, nil
}

func copyBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}
