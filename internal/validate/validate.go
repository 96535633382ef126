// Package validate checks writer output: reconstructed OpenAPI documents
// against the embedded structural meta-schemas, and emitted JSON-Schema
// documents by compiling them.
package validate

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/castr-dev/castr/internal/metaschema"
)

// Service validates writer output. Compiled meta-schemas are cached per
// Service; nothing is shared between Services.
type Service struct {
	mu       sync.Mutex
	compiled map[string]*jsonschema.Schema
}

// New creates a validation service.
func New() *Service {
	return &Service{compiled: make(map[string]*jsonschema.Schema)}
}

// ValidateDocument validates an OpenAPI document of the given version.
func (s *Service) ValidateDocument(version string, doc []byte) error {
	sch, err := s.metaSchema(version)
	if err != nil {
		return err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(doc))
	if err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return sch.Validate(inst)
}

func (s *Service) metaSchema(version string) (*jsonschema.Schema, error) {
	url, data, err := metaschema.ForVersion(version)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sch, ok := s.compiled[url]; ok {
		return sch, nil
	}
	sch, err := compile(url, data)
	if err != nil {
		return nil, fmt.Errorf("compile meta-schema %s: %w", url, err)
	}
	s.compiled[url] = sch
	return sch, nil
}

// CompileSchema compiles a JSON-Schema document, which checks it against
// the meta-schema of the dialect named by its `$schema`.
func (s *Service) CompileSchema(url string, schema []byte) error {
	_, err := compile(url, schema)
	return err
}

// ValidateInstance compiles schema and validates instance against it.
func (s *Service) ValidateInstance(url string, schema, instance []byte) error {
	sch, err := compile(url, schema)
	if err != nil {
		return err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(instance))
	if err != nil {
		return fmt.Errorf("decode instance: %w", err)
	}
	return sch.Validate(inst)
}

func compile(url string, schema []byte) (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schema))
	if err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, doc); err != nil {
		return nil, err
	}
	return compiler.Compile(url)
}
