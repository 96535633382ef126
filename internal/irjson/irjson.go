// Package irjson persists IR documents as JSON and reads them back.
//
// Ordered containers (schema properties, dependency-graph nodes) are written
// as tagged wrappers `{"dataType": ..., "value": [[key, value], ...]}` so the
// container type and its insertion order survive the trip. Reading a wrapper
// with an unknown dataType is an error.
package irjson

import (
	"bytes"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/castr-dev/castr/internal/ir"
)

// ErrVersion is returned when persisted IR was written with another layout.
var ErrVersion = errors.New("irjson: unsupported IR version")

// Serialize encodes doc as compact JSON.
func Serialize(doc *ir.CastrDocument) ([]byte, error) {
	if doc == nil {
		return nil, errors.New("irjson: nil document")
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("serialize IR: %w", err)
	}
	return data, nil
}

// SerializeIndent encodes doc as JSON indented with two spaces.
func SerializeIndent(doc *ir.CastrDocument) ([]byte, error) {
	data, err := Serialize(doc)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return nil, fmt.Errorf("serialize IR: %w", err)
	}
	return out.Bytes(), nil
}

// Deserialize decodes persisted IR. The version field, when present, must
// match ir.FormatVersion.
func Deserialize(data []byte) (*ir.CastrDocument, error) {
	var doc ir.CastrDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("deserialize IR: %w", err)
	}
	if doc.Version != "" && doc.Version != ir.FormatVersion {
		return nil, fmt.Errorf("%w: %q, want %q", ErrVersion, doc.Version, ir.FormatVersion)
	}
	return &doc, nil
}
