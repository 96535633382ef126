package base

import (
	"strings"

	"github.com/castr-dev/castr/internal/ir"
	"github.com/castr-dev/castr/internal/oas"
	"github.com/castr-dev/castr/internal/schema"
)

// ConvertInfo copies the info object.
func ConvertInfo(info oas.Info) ir.Info {
	out := ir.Info{
		Title:          info.Title,
		Summary:        info.Summary,
		Description:    info.Description,
		TermsOfService: info.TermsOfService,
		Version:        info.Version,
		Extensions:     Extensions(info.Extra),
	}
	if c := info.Contact; c != nil {
		out.Contact = &ir.Contact{Name: c.Name, URL: c.URL, Email: c.Email}
	}
	if l := info.License; l != nil {
		out.License = &ir.License{Name: l.Name, Identifier: l.Identifier, URL: l.URL}
	}
	return out
}

// ConvertServers copies a server list. An empty list stays nil.
func ConvertServers(servers []oas.Server) []ir.Server {
	if len(servers) == 0 {
		return nil
	}
	out := make([]ir.Server, len(servers))
	for i, srv := range servers {
		out[i] = ir.Server{URL: srv.URL, Description: srv.Description}
		if len(srv.Variables) == 0 {
			continue
		}
		out[i].Variables = make(map[string]*ir.ServerVariable, len(srv.Variables))
		for name, v := range srv.Variables {
			if v == nil {
				continue
			}
			sv := &ir.ServerVariable{Default: v.Default, Description: v.Description}
			if len(v.Enum) > 0 {
				sv.Enum = append([]string{}, v.Enum...)
			}
			out[i].Variables[name] = sv
		}
	}
	return out
}

func convertTags(tags []oas.Tag) []ir.Tag {
	if len(tags) == 0 {
		return nil
	}
	out := make([]ir.Tag, len(tags))
	for i, t := range tags {
		out[i] = ir.Tag{
			Name:         t.Name,
			Description:  t.Description,
			ExternalDocs: ConvertExternalDocs(t.ExternalDocs),
		}
	}
	return out
}

// ConvertExternalDocs copies an external documentation link.
func ConvertExternalDocs(docs *oas.ExternalDocs) *ir.ExternalDocs {
	if docs == nil {
		return nil
	}
	return &ir.ExternalDocs{Description: docs.Description, URL: docs.URL}
}

// Extensions returns the `x-` keys of an object's unknown fields with
// normalized values. Other unknown keys are dropped.
func Extensions(extra map[string]any) map[string]any {
	var out map[string]any
	for k, v := range extra {
		if !strings.HasPrefix(k, "x-") {
			continue
		}
		if out == nil {
			out = make(map[string]any)
		}
		out[k] = schema.Normalize(v)
	}
	return out
}
