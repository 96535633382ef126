package base

import (
	"fmt"
	"strconv"

	"github.com/castr-dev/castr/internal/diag"
	"github.com/castr-dev/castr/internal/ir"
	"github.com/castr-dev/castr/internal/oas"
	"github.com/castr-dev/castr/internal/schema"
)

// ConvertSecurity copies a list of security requirements. Every scheme a
// requirement names must be declared in components.securitySchemes.
func (s *Service) ConvertSecurity(reqs []oas.SecurityRequirement, path string) ([]ir.SecurityRequirement, error) {
	if reqs == nil {
		return nil, nil
	}
	out := make([]ir.SecurityRequirement, len(reqs))
	for i, req := range reqs {
		converted := make(ir.SecurityRequirement, len(req))
		for name, scopes := range req {
			ref := oas.ComponentRef("securitySchemes", name)
			if !s.doc.HasComponent(ref) {
				return nil, &diag.UnresolvableReferenceError{Ref: ref, Path: path + "/" + strconv.Itoa(i)}
			}
			converted[name] = append([]string{}, scopes...)
		}
		out[i] = converted
	}
	return out, nil
}

// ParseSecuritySchemes converts one components table's security schemes,
// in document order. origin is the x-ext bundle hash, or empty.
func (s *Service) ParseSecuritySchemes(origin string, comps *oas.Components) ([]*ir.IRComponent, error) {
	if comps == nil || comps.SecuritySchemes == nil {
		return nil, nil
	}
	var out []*ir.IRComponent
	for name, scheme := range comps.SecuritySchemes.All() {
		path := ir.ComponentRef(origin, ir.ComponentSecurityScheme, name)
		resolved, err := s.resolveScheme(scheme, path)
		if err != nil {
			return nil, err
		}
		out = append(out, &ir.IRComponent{
			Type:           ir.ComponentSecurityScheme,
			Name:           name,
			Origin:         origin,
			SecurityScheme: convertScheme(resolved),
		})
		s.debug.Printf("parsed security scheme %s (%s)", name, resolved.Type)
	}
	return out, nil
}

// resolveScheme follows a chain of scheme refs.
func (s *Service) resolveScheme(scheme *oas.SecurityScheme, path string) (*oas.SecurityScheme, error) {
	seen := map[string]bool{}
	for scheme != nil && scheme.Ref != "" {
		if seen[scheme.Ref] {
			return nil, fmt.Errorf("%s: security scheme reference cycle through %s", path, scheme.Ref)
		}
		seen[scheme.Ref] = true
		target, ok := s.doc.LookupSecurityScheme(scheme.Ref)
		if !ok {
			return nil, &diag.UnresolvableReferenceError{Ref: scheme.Ref, Path: path}
		}
		scheme = target
	}
	if scheme == nil {
		return &oas.SecurityScheme{}, nil
	}
	return scheme, nil
}

func convertScheme(scheme *oas.SecurityScheme) *ir.SecurityScheme {
	out := &ir.SecurityScheme{
		Type:             scheme.Type,
		Description:      scheme.Description,
		Name:             scheme.Name,
		In:               scheme.In,
		Scheme:           scheme.Scheme,
		BearerFormat:     scheme.BearerFormat,
		OpenIDConnectURL: scheme.OpenIDConnectURL,
		Extensions:       Extensions(scheme.Extra),
	}
	if flows := schema.NormalizeMap(scheme.Flows); flows != nil {
		out.Flows = flows
	}
	return out
}
