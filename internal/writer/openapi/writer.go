// Package openapi reconstructs OpenAPI 3.0 and 3.1 documents from IR.
//
// Output is canonical: paths and component names sorted, methods in a fixed
// order, status codes numeric then wildcard then default, media types and
// header names sorted. Constructs the target version cannot express are
// dropped or approximated with a DOWNLEVEL_* warning, or rejected in strict
// mode.
package openapi

import (
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/castr-dev/castr/internal/diag"
	"github.com/castr-dev/castr/internal/ir"
	"github.com/castr-dev/castr/internal/oas"
	"github.com/castr-dev/castr/internal/validate"
)

// DefaultVersion is the target used when neither the writer nor the IR names one.
const DefaultVersion = "3.1.0"

// Debugger is the interface for debug logging.
type Debugger interface {
	Printf(format string, v ...interface{})
}

type noOpDebugger struct{}

func (noOpDebugger) Printf(string, ...interface{}) {}

// Writer turns IR into OpenAPI documents. Each Write call gets its own
// writeContext, so one Writer may be used from several goroutines.
type Writer struct {
	strict        bool
	validation    bool
	targetVersion string
	validator     *validate.Service
	debug         Debugger
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

// SetTargetVersion overrides the target version recorded in the IR.
func (w *Writer) SetTargetVersion(version string) {
	w.targetVersion = version
}

// SetDebugger sets the debugger for logging.
func (w *Writer) SetDebugger(debug Debugger) {
	if debug != nil {
		w.debug = debug
	}
}

// Version returns the OpenAPI version doc will be written as.
func (w *Writer) Version(doc *ir.CastrDocument) string {
	for _, v := range []string{w.targetVersion, doc.TargetVersion, doc.OpenAPIVersion} {
		if v != "" {
			return v
		}
	}
	return DefaultVersion
}

// Write reconstructs the document. Warnings are returned sorted; in strict
// mode the first downlevel warning is returned as a *diag.DownlevelError.
func (w *Writer) Write(doc *ir.CastrDocument) (*oas.Document, diag.Warnings, error) {
	if doc == nil {
		return nil, nil, errors.New("nil document")
	}
	version := w.Version(doc)
	if !strings.HasPrefix(version, "3.0") && !strings.HasPrefix(version, "3.1") {
		return nil, nil, fmt.Errorf("unsupported target version %q", version)
	}

	w.debug.Printf("writing openapi %s document %q", version, doc.Info.Title)
	ctx := newWriteContext(doc, version)
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
		if err := w.validator.ValidateDocument(version, data); err != nil {
			return nil, warnings, &diag.InvalidReconstructedDocumentError{Format: "openapi " + version, Err: err}
		}
	}
	return out, warnings, nil
}

// WriteJSON reconstructs the document and encodes it as indented JSON.
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
