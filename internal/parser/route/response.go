package route

import (
	"fmt"

	"github.com/castr-dev/castr/internal/diag"
	"github.com/castr-dev/castr/internal/ir"
	"github.com/castr-dev/castr/internal/oas"
	"github.com/castr-dev/castr/internal/ordered"
	"github.com/castr-dev/castr/internal/parser/base"
	"github.com/castr-dev/castr/internal/schema"
)

func (s *Service) convertRequestBody(b *oas.RequestBody, ptr string) (*ir.RequestBody, error) {
	resolved, err := resolve(b, ptr, s.doc.LookupRequestBody, func(b *oas.RequestBody) string { return b.Ref })
	if err != nil {
		return nil, err
	}
	out := &ir.RequestBody{
		Ref:         b.Ref,
		Description: resolved.Description,
		Required:    resolved.Required,
		Extensions:  base.Extensions(resolved.Extra),
	}
	out.Content, err = s.convertContent(resolved.Content, ptr+"/content", schema.BodyUsage{BodyRequired: resolved.Required})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// convertResponses converts a responses table, ordered numeric codes first,
// then wildcard classes, then default.
func (s *Service) convertResponses(responses *ordered.Map[*oas.Response], ptr string) ([]*ir.OperationResponse, error) {
	codes := responses.Keys()
	if len(codes) == 0 {
		return nil, nil
	}
	ir.SortStatusCodes(codes)

	hasSuccess := false
	for _, code := range codes {
		if ir.IsSuccessStatus(code) {
			hasSuccess = true
			break
		}
	}

	out := make([]*ir.OperationResponse, 0, len(codes))
	for _, code := range codes {
		r, _ := responses.Get(code)
		converted, err := s.convertResponse(r, ptr+"/"+oas.EscapePointer(code))
		if err != nil {
			return nil, err
		}
		out = append(out, &ir.OperationResponse{
			StatusCode: code,
			Role:       s.roleOf(code, hasSuccess, ptr),
			Response:   converted,
		})
	}
	return out, nil
}

// roleOf classifies a response key. Only `default` depends on the
// configured behavior; auto-correct always explains its choice.
func (s *Service) roleOf(code string, hasSuccess bool, ptr string) ir.ResponseRole {
	switch {
	case ir.IsSuccessStatus(code):
		return ir.RoleSuccess
	case code != "default":
		return ir.RoleError
	case s.defaultStatus != DefaultStatusAutoCorrect:
		return ir.RoleDefault
	case hasSuccess:
		s.warnings.Warnf(diag.WarnAmbiguousDefaultResponse, ptr+"/default",
			"default response treated as the error response because a 2xx response is declared")
		return ir.RoleError
	default:
		s.warnings.Warnf(diag.WarnAmbiguousDefaultResponse, ptr+"/default",
			"default response treated as the success response because no 2xx response is declared")
		return ir.RoleSuccess
	}
}

func (s *Service) convertResponse(r *oas.Response, ptr string) (*ir.Response, error) {
	resolved, err := resolve(r, ptr, s.doc.LookupResponse, func(r *oas.Response) string { return r.Ref })
	if err != nil {
		return nil, err
	}
	if resolved == nil {
		return nil, fmt.Errorf("%s: empty response", ptr)
	}
	out := &ir.Response{
		Ref:         r.Ref,
		Description: resolved.Description,
		Links:       schema.NormalizeMap(resolved.Links),
		Extensions:  base.Extensions(resolved.Extra),
	}
	if resolved.Headers.Len() > 0 {
		out.Headers = make(map[string]*ir.Header, resolved.Headers.Len())
		for name, h := range resolved.Headers.All() {
			header, err := s.convertHeader(h, ptr+"/headers/"+oas.EscapePointer(name))
			if err != nil {
				return nil, err
			}
			out.Headers[name] = header
		}
	}
	if out.Content, err = s.convertContent(resolved.Content, ptr+"/content", schema.BodyUsage{BodyRequired: true}); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) convertHeader(h *oas.Header, ptr string) (*ir.Header, error) {
	resolved, err := resolve(h, ptr, s.doc.LookupHeader, func(h *oas.Header) string { return h.Ref })
	if err != nil {
		return nil, err
	}
	if resolved == nil {
		return nil, fmt.Errorf("%s: empty header", ptr)
	}
	out := &ir.Header{
		Ref:         h.Ref,
		Description: resolved.Description,
		Required:    resolved.Required,
		Deprecated:  resolved.Deprecated,
		Style:       resolved.Style,
		Explode:     copyBool(resolved.Explode),
		Example:     schema.Normalize(resolved.Example),
		Examples:    schema.NormalizeMap(resolved.Examples),
		Extensions:  base.Extensions(resolved.Extra),
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

// convertContent builds the media type table; the usage applies to every
// media type schema.
func (s *Service) convertContent(content *ordered.Map[*oas.MediaType], ptr string, usage schema.Usage) (map[string]*ir.MediaType, error) {
	if content.Len() == 0 {
		return nil, nil
	}
	out := make(map[string]*ir.MediaType, content.Len())
	for name, mt := range content.All() {
		if mt == nil {
			mt = &oas.MediaType{}
		}
		mtPtr := ptr + "/" + oas.EscapePointer(name)
		converted := &ir.MediaType{
			Example:    schema.Normalize(mt.Example),
			Examples:   schema.NormalizeMap(mt.Examples),
			Encoding:   schema.NormalizeMap(mt.Encoding),
			Extensions: base.Extensions(mt.Extra),
		}
		var err error
		if converted.Schema, err = s.builder.BuildSchema(mt.Schema, mtPtr+"/schema", usage); err != nil {
			return nil, err
		}
		out[name] = converted
	}
	return out, nil
}
