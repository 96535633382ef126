// Package base converts document-level metadata: info, servers, tags,
// global security and security schemes.
package base

import (
	"github.com/castr-dev/castr/internal/ir"
	"github.com/castr-dev/castr/internal/oas"
)

// Debugger interface for logging
type Debugger interface {
	Printf(format string, v ...interface{})
}

type noOpDebugger struct{}

func (noOpDebugger) Printf(string, ...interface{}) {}

// Service converts the general API information of one document.
type Service struct {
	doc   *oas.Document
	debug Debugger
}

// NewService creates a new base parser service
func NewService(doc *oas.Document) *Service {
	return &Service{
		doc:   doc,
		debug: noOpDebugger{},
	}
}

// SetDebugger sets the debugger for logging
func (s *Service) SetDebugger(debug Debugger) {
	if debug != nil {
		s.debug = debug
	}
}

// ParseGeneralInfo fills the document-level fields of out.
func (s *Service) ParseGeneralInfo(out *ir.CastrDocument) error {
	out.OpenAPIVersion = s.doc.OpenAPI
	out.JSONSchemaDialect = s.doc.JSONSchemaDialect
	out.Info = ConvertInfo(s.doc.Info)
	out.Servers = ConvertServers(s.doc.Servers)
	out.Tags = convertTags(s.doc.Tags)
	out.ExternalDocs = ConvertExternalDocs(s.doc.ExternalDocs)
	out.Extensions = Extensions(s.doc.Extra)

	security, err := s.ConvertSecurity(s.doc.Security, "#/security")
	if err != nil {
		return err
	}
	out.Security = security

	s.debug.Printf("parsed general info %q version %s", out.Info.Title, out.Info.Version)
	return nil
}
