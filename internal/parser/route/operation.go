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

// ParseRoutes converts every operation under paths. Paths are visited in
// sorted order and methods in canonical order.
func (s *Service) ParseRoutes() ([]*ir.CastrOperation, error) {
	return s.parsePathMap(s.doc.Paths, "#/paths")
}

// ParseWebhooks converts the 3.1 webhooks table. The webhook name takes the
// place of the path.
func (s *Service) ParseWebhooks() ([]*ir.CastrOperation, error) {
	return s.parsePathMap(s.doc.Webhooks, "#/webhooks")
}

func (s *Service) parsePathMap(paths *ordered.Map[*oas.PathItem], root string) ([]*ir.CastrOperation, error) {
	var operations []*ir.CastrOperation
	for path, item := range paths.Sorted() {
		ops, err := s.parsePathItem(path, item, root+"/"+oas.EscapePointer(path))
		if err != nil {
			return nil, err
		}
		operations = append(operations, ops...)
	}
	return operations, nil
}

func (s *Service) parsePathItem(path string, item *oas.PathItem, ptr string) ([]*ir.CastrOperation, error) {
	item, err := resolve(item, ptr, s.doc.LookupPathItem, func(p *oas.PathItem) string { return p.Ref })
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}

	var ops []*ir.CastrOperation
	for _, method := range oas.Methods {
		op := item.Operation(method)
		if op == nil {
			continue
		}
		converted, err := s.parseOperation(path, method, item, op, ptr)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", method, path, err)
		}
		ops = append(ops, converted)
	}
	return ops, nil
}

func (s *Service) parseOperation(path, method string, item *oas.PathItem, op *oas.Operation, itemPtr string) (*ir.CastrOperation, error) {
	ptr := itemPtr + "/" + method
	out := &ir.CastrOperation{
		Method:          method,
		Path:            path,
		OperationID:     op.OperationID,
		Summary:         op.Summary,
		Description:     op.Description,
		Deprecated:      op.Deprecated,
		ExternalDocs:    base.ConvertExternalDocs(op.ExternalDocs),
		Servers:         base.ConvertServers(op.Servers),
		Callbacks:       schema.NormalizeMap(op.Callbacks),
		Extensions:      base.Extensions(op.Extra),
		PathSummary:     item.Summary,
		PathDescription: item.Description,
		PathExtensions:  base.Extensions(item.Extra),
	}
	if len(op.Tags) > 0 {
		out.Tags = append([]string{}, op.Tags...)
	}

	params, err := s.mergeParameters(item.Parameters, op.Parameters, itemPtr, ptr)
	if err != nil {
		return nil, err
	}
	out.Parameters = params
	if out.ByLocation, err = groupParameters(params, ptr); err != nil {
		return nil, err
	}

	if op.RequestBody != nil {
		if out.RequestBody, err = s.convertRequestBody(op.RequestBody, ptr+"/requestBody"); err != nil {
			return nil, err
		}
	}

	if out.Responses, err = s.convertResponses(op.Responses, ptr+"/responses"); err != nil {
		return nil, err
	}

	if op.Security != nil {
		security, err := s.base.ConvertSecurity(*op.Security, ptr+"/security")
		if err != nil {
			return nil, err
		}
		if security == nil {
			security = []ir.SecurityRequirement{}
		}
		out.Security = &security
	}

	s.debug.Printf("parsed operation %s %s", method, path)
	return out, nil
}

// resolve follows a chain of refs of one component kind. A ref that does not
// resolve is an UnresolvableReferenceError at ptr.
func resolve[T any](v *T, ptr string, lookup func(string) (*T, bool), refOf func(*T) string) (*T, error) {
	seen := map[string]bool{}
	for v != nil && refOf(v) != "" {
		ref := refOf(v)
		if seen[ref] {
			return nil, fmt.Errorf("%s: reference cycle through %s", ptr, ref)
		}
		seen[ref] = true
		target, ok := lookup(ref)
		if !ok {
			return nil, &diag.UnresolvableReferenceError{Ref: ref, Path: ptr}
		}
		v = target
	}
	return v, nil
}
