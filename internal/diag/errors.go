package diag

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is checks against the typed errors below.
var (
	ErrUnresolvableReference        = errors.New("unresolvable reference")
	ErrUnsupportedComposition       = errors.New("unsupported composition")
	ErrInvalidReconstructedDocument = errors.New("invalid reconstructed document")
	ErrDepthLimit                   = errors.New("schema nesting exceeds depth limit")
	ErrDownlevel                    = errors.New("construct not representable in target version")
)

// UnresolvableReferenceError is returned when a $ref target is absent.
type UnresolvableReferenceError struct {
	Ref  string
	Path string
}

func (e *UnresolvableReferenceError) Error() string {
	return fmt.Sprintf("unresolvable reference %q at %s", e.Ref, e.Path)
}

func (e *UnresolvableReferenceError) Is(target error) bool {
	return target == ErrUnresolvableReference
}

// UnsupportedCompositionError is returned by writers for composition shapes
// the target cannot express.
type UnsupportedCompositionError struct {
	Path   string
	Reason string
}

func (e *UnsupportedCompositionError) Error() string {
	return fmt.Sprintf("unsupported composition at %s: %s", e.Path, e.Reason)
}

func (e *UnsupportedCompositionError) Is(target error) bool {
	return target == ErrUnsupportedComposition
}

// InvalidReconstructedDocumentError is returned when a writer's output fails
// self-validation. It always indicates a writer bug, not bad input.
type InvalidReconstructedDocumentError struct {
	Format string
	Err    error
}

func (e *InvalidReconstructedDocumentError) Error() string {
	return fmt.Sprintf("invalid reconstructed %s document: %v", e.Format, e.Err)
}

func (e *InvalidReconstructedDocumentError) Unwrap() error {
	return e.Err
}

func (e *InvalidReconstructedDocumentError) Is(target error) bool {
	return target == ErrInvalidReconstructedDocument
}

// DepthLimitError is returned when schema nesting exceeds the builder's bound.
type DepthLimitError struct {
	Path  string
	Limit int
}

func (e *DepthLimitError) Error() string {
	return fmt.Sprintf("schema nesting exceeds depth limit %d at %s", e.Limit, e.Path)
}

func (e *DepthLimitError) Is(target error) bool {
	return target == ErrDepthLimit
}

// DownlevelError is returned in strict mode instead of a DOWNLEVEL_* warning.
type DownlevelError struct {
	Warning Warning
}

func (e *DownlevelError) Error() string {
	return "strict mode: " + e.Warning.String()
}

func (e *DownlevelError) Is(target error) bool {
	return target == ErrDownlevel
}
