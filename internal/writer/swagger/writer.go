// Package swagger writes IR as a Swagger 2.0 document.
//
// Swagger 2.0 has no request bodies, no oneOf/anyOf/not, no nullable and no
// cookie parameters. Request bodies become `body` or `formData` parameters,
// the first server becomes host/basePath/schemes, and everything else the
// format cannot carry is dropped with a DOWNLEVEL_* warning, or rejected in
// strict mode.
package swagger

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/go-openapi/spec"

	"github.com/castr-dev/castr/internal/diag"
	"github.com/castr-dev/castr/internal/ir"
	"github.com/castr-dev/castr/internal/validate"
)

// Version is the Swagger version written.
const Version = "2.0"

// Debugger is the interface for debug logging.
type Debugger interface {
	Printf(format string, v ...interface{})
}

type noOpDebugger struct{}

func (noOpDebugger) Printf(string, ...interface{}) {}

// Writer turns IR into Swagger 2.0 documents.
type Writer struct {
	strict     bool
	validation bool
	validator  *validate.Service
	debug      Debugger
}

// NewWriter creates a writer with self-validation enabled.
func NewWriter() *Writer {
	return &Writer{
		validation: true,
		validator:  validate.New(),
		debug:      noOpDebugger{},
	}
}

// SetStrict makes downlevel warnings fatal.
func (w *Writer) SetStrict(strict bool) {
	w.strict = strict
}

// SetValidation toggles meta-schema validation of the output.
func (w *Writer) SetValidation(enabled bool) {
	w.validation = enabled
}

// SetDebugger sets the debugger for logging.
func (w *Writer) SetDebugger(debug Debugger) {
	if debug != nil {
		w.debug = debug
	}
}

// Write converts the document. Warnings are returned sorted; in strict mode
// the first downlevel warning is returned as a *diag.DownlevelError.
func (w *Writer) Write(doc *ir.CastrDocument) (*spec.Swagger, diag.Warnings, error) {
	if doc == nil {
		return nil, nil, errors.New("nil document")
	}
	w.debug.Printf("writing swagger %s document %q", Version, doc.Info.Title)

	ctx := newWriteContext(doc)
	out, err := ctx.document()
	if err != nil {
		return nil, nil, err
	}

	warnings := ctx.warnings.Warnings()
	if w.strict {
		if down := warnings.FilterCategory(diag.CategoryDownlevel); len(down) > 0 {
			return nil, warnings, &diag.DownlevelError{Warning: down[0]}
		}
	}

	if w.validation {
		data, err := json.Marshal(out)
		if err != nil {
			return nil, warnings, fmt.Errorf("encode document: %w", err)
		}
		if err := w.validator.ValidateDocument(Version, data); err != nil {
			return nil, warnings, &diag.InvalidReconstructedDocumentError{Format: "swagger " + Version, Err: err}
		}
	}
	return out, warnings, nil
}

// WriteJSON converts the document and encodes it as indented JSON.
func (w *Writer) WriteJSON(doc *ir.CastrDocument) ([]byte, diag.Warnings, error) {
	out, warnings, err := w.Write(doc)
	if err != nil {
		return nil, warnings, err
	}
	data, err := json.MarshalIndent(out, "", "    ")
	if err != nil {
		return nil, warnings, fmt.Errorf("encode document: %w", err)
	}
	return data, warnings, nil
}
