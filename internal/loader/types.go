// Package loader reads bundled OpenAPI documents from disk or memory.
package loader

import "github.com/castr-dev/castr/internal/oas"

// Service handles loading source documents
type Service struct {
	strict     bool
	excludes   map[string]struct{}
	extensions []string
	debug      Debugger
}

// Debugger interface for logging
type Debugger interface {
	Printf(format string, v ...interface{})
}

// LoadResult contains the documents found by a directory walk.
type LoadResult struct {
	Documents map[string]*oas.Document
}

// Option is a functional option for configuring Service
type Option func(*Service)

// noOpDebugger is a no-op debugger
type noOpDebugger struct{}

func (n *noOpDebugger) Printf(format string, v ...interface{}) {}
