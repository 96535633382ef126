// Package route converts paths, webhooks and the non-schema components of a
// document into IR operations and components.
package route

import (
	"fmt"

	"github.com/castr-dev/castr/internal/diag"
	"github.com/castr-dev/castr/internal/parser/base"
	"github.com/castr-dev/castr/internal/schema"
	"github.com/castr-dev/castr/internal/oas"
)

// DefaultStatusBehavior selects how a `default` response is classified.
type DefaultStatusBehavior string

const (
	// DefaultStatusSpecCompliant keeps the default role.
	DefaultStatusSpecCompliant DefaultStatusBehavior = "spec-compliant"
	// DefaultStatusAutoCorrect treats default as the error response when the
	// operation declares a 2xx response and as the success response otherwise.
	DefaultStatusAutoCorrect DefaultStatusBehavior = "auto-correct"
)

// ParseDefaultStatusBehavior validates a behavior name. Empty selects
// spec-compliant.
func ParseDefaultStatusBehavior(name string) (DefaultStatusBehavior, error) {
	switch DefaultStatusBehavior(name) {
	case "", DefaultStatusSpecCompliant:
		return DefaultStatusSpecCompliant, nil
	case DefaultStatusAutoCorrect:
		return DefaultStatusAutoCorrect, nil
	}
	return "", fmt.Errorf("unknown default status behavior %q (want %s or %s)", name, DefaultStatusSpecCompliant, DefaultStatusAutoCorrect)
}

// Debugger interface for logging
type Debugger interface {
	Printf(format string, v ...interface{})
}

type noOpDebugger struct{}

func (noOpDebugger) Printf(string, ...interface{}) {}

// Service handles conversion of the operations of one document.
type Service struct {
	doc           *oas.Document
	builder       *schema.BuilderService
	base          *base.Service
	warnings      *diag.Collector
	defaultStatus DefaultStatusBehavior
	debug         Debugger
}

// NewService creates a new route parser service. Schemas are built with
// builder; security requirements are checked by baseService.
func NewService(doc *oas.Document, builder *schema.BuilderService, baseService *base.Service) *Service {
	return &Service{
		doc:           doc,
		builder:       builder,
		base:          baseService,
		warnings:      &diag.Collector{},
		defaultStatus: DefaultStatusSpecCompliant,
		debug:         noOpDebugger{},
	}
}

// SetDefaultStatusBehavior sets how `default` responses are classified.
func (s *Service) SetDefaultStatusBehavior(b DefaultStatusBehavior) {
	s.defaultStatus = b
}

// SetWarnings sets the collector warnings are recorded into.
func (s *Service) SetWarnings(c *diag.Collector) {
	if c != nil {
		s.warnings = c
	}
}

// SetDebugger sets the debugger for logging
func (s *Service) SetDebugger(debug Debugger) {
	if debug != nil {
		s.debug = debug
	}
}
