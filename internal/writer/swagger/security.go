package swagger

import (
	"strings"

	"github.com/go-openapi/spec"

	"github.com/castr-dev/castr/internal/diag"
	"github.com/castr-dev/castr/internal/ir"
)

// flowOrder is the preference among 3.x OAuth flows; 2.0 allows one.
var flowOrder = []string{"authorizationCode", "implicit", "password", "clientCredentials"}

func (c *writeContext) securityDefinitions() spec.SecurityDefinitions {
	out := spec.SecurityDefinitions{}
	for _, comp := range c.sorted(ir.ComponentSecurityScheme) {
		if comp.Origin != "" {
			c.warn(diag.WarnDownlevelSecurityScheme, comp.Ref(), "bundled security schemes are not supported in 2.0; dropped")
			continue
		}
		s := c.securityScheme(comp.SecurityScheme, comp.Ref())
		if s == nil {
			c.dropped[comp.Name] = true
			continue
		}
		out[comp.Name] = s
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (c *writeContext) securityScheme(s *ir.SecurityScheme, path string) *spec.SecurityScheme {
	if s == nil {
		return nil
	}
	var out *spec.SecurityScheme
	switch s.Type {
	case "apiKey":
		if s.In == ir.InCookie {
			c.warn(diag.WarnDownlevelSecurityScheme, path, "cookie api keys are not supported in 2.0; dropped")
			return nil
		}
		out = spec.APIKeyAuth(s.Name, s.In)
	case "http":
		switch strings.ToLower(s.Scheme) {
		case "basic":
			out = spec.BasicAuth()
		case "bearer":
			out = spec.APIKeyAuth("Authorization", ir.InHeader)
			c.warn(diag.WarnDownlevelSecurityScheme, path, "bearer auth written as an Authorization header api key")
		default:
			c.warn(diag.WarnDownlevelSecurityScheme, path, "http scheme %q is not supported in 2.0; dropped", s.Scheme)
			return nil
		}
	case "oauth2":
		if out = c.oauth2(s, path); out == nil {
			return nil
		}
	default:
		c.warn(diag.WarnDownlevelSecurityScheme, path, "%s security schemes are not supported in 2.0; dropped", s.Type)
		return nil
	}
	out.Description = s.Description
	out.Extensions = copyExtensions(s.Extensions)
	return out
}

func (c *writeContext) oauth2(s *ir.SecurityScheme, path string) *spec.SecurityScheme {
	flows, _ := s.Flows.(map[string]any)
	var present []string
	for _, name := range flowOrder {
		if _, ok := flows[name].(map[string]any); ok {
			present = append(present, name)
		}
	}
	if len(present) == 0 {
		c.warn(diag.WarnDownlevelSecurityScheme, path, "oauth2 scheme has no flows; dropped")
		return nil
	}
	if len(present) > 1 {
		c.warn(diag.WarnDownlevelSecurityScheme, path, "2.0 allows one oauth2 flow; kept %s of %v", present[0], present)
	}

	flow := flows[present[0]].(map[string]any)
	authURL, _ := flow["authorizationUrl"].(string)
	tokenURL, _ := flow["tokenUrl"].(string)
	var out *spec.SecurityScheme
	switch present[0] {
	case "authorizationCode":
		out = spec.OAuth2AccessToken(authURL, tokenURL)
	case "implicit":
		out = spec.OAuth2Implicit(authURL)
	case "password":
		out = spec.OAuth2Password(tokenURL)
	case "clientCredentials":
		out = spec.OAuth2Application(tokenURL)
	}
	if scopes, ok := flow["scopes"].(map[string]any); ok {
		for _, name := range ir.SortedKeys(scopes) {
			desc, _ := scopes[name].(string)
			out.AddScope(name, desc)
		}
	}
	return out
}

// security converts requirements, removing schemes that were dropped. A
// requirement left empty by the removal is dropped with it, so it cannot
// turn into an anonymous alternative.
func (c *writeContext) security(in []ir.SecurityRequirement) []map[string][]string {
	if in == nil {
		return nil
	}
	out := make([]map[string][]string, 0, len(in))
	for _, req := range in {
		r := make(map[string][]string, len(req))
		for name, scopes := range req {
			if c.dropped[name] {
				continue
			}
			r[name] = append([]string{}, scopes...)
		}
		if len(r) == 0 && len(req) > 0 {
			continue
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
