// Package diag holds the error and warning types shared by the builder and
// the writers. Warnings are collected during a build and reported as a batch
// once the build has finished; errors abort the build.
package diag

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// WarningCode identifies a specific warning type.
type WarningCode string

// String returns the code as a string.
func (c WarningCode) String() string {
	return string(c)
}

// Category returns the code's category.
func (c WarningCode) Category() WarningCategory {
	switch {
	case strings.HasPrefix(string(c), "DOWNLEVEL_"):
		return CategoryDownlevel
	case c == WarnMalformedCompositionFragment || c == WarnAmbiguousDefaultResponse || c == WarnUnknownType:
		return CategoryInput
	default:
		return CategoryUnknown
	}
}

// Input warnings: the source document was ambiguous or malformed and a
// deterministic choice was made.
const (
	// WarnMalformedCompositionFragment indicates an allOf member carrying only
	// a required list was merged with its siblings.
	WarnMalformedCompositionFragment WarningCode = "MALFORMED_COMPOSITION_FRAGMENT"

	// WarnAmbiguousDefaultResponse indicates a `default` response role was resolved.
	WarnAmbiguousDefaultResponse WarningCode = "AMBIGUOUS_DEFAULT_RESPONSE"

	// WarnUnknownType indicates a schema names a type JSON Schema does not define.
	WarnUnknownType WarningCode = "UNKNOWN_TYPE"
)

// Downlevel warnings: a construct of a newer dialect could not be expressed
// in the target and was approximated or dropped.
const (
	WarnDownlevelWebhooks              WarningCode = "DOWNLEVEL_WEBHOOKS"
	WarnDownlevelInfoSummary           WarningCode = "DOWNLEVEL_INFO_SUMMARY"
	WarnDownlevelLicenseIdentifier     WarningCode = "DOWNLEVEL_LICENSE_IDENTIFIER"
	WarnDownlevelPathItems             WarningCode = "DOWNLEVEL_PATH_ITEMS"
	WarnDownlevelConstToEnum           WarningCode = "DOWNLEVEL_CONST_TO_ENUM"
	WarnDownlevelMultipleTypes         WarningCode = "DOWNLEVEL_MULTIPLE_TYPES"
	WarnDownlevelPrefixItems           WarningCode = "DOWNLEVEL_PREFIX_ITEMS"
	WarnDownlevelPatternProperties     WarningCode = "DOWNLEVEL_PATTERN_PROPERTIES"
	WarnDownlevelUnevaluatedProperties WarningCode = "DOWNLEVEL_UNEVALUATED_PROPERTIES"
	WarnDownlevelUnevaluatedItems      WarningCode = "DOWNLEVEL_UNEVALUATED_ITEMS"
	WarnDownlevelDependentSchemas      WarningCode = "DOWNLEVEL_DEPENDENT_SCHEMAS"
	WarnDownlevelMultipleExamples      WarningCode = "DOWNLEVEL_MULTIPLE_EXAMPLES"
	WarnDownlevelComposition           WarningCode = "DOWNLEVEL_COMPOSITION"
	WarnDownlevelNullable              WarningCode = "DOWNLEVEL_NULLABLE"
	WarnDownlevelRequestBody           WarningCode = "DOWNLEVEL_REQUEST_BODY"
	WarnDownlevelJSONSchemaDialect     WarningCode = "DOWNLEVEL_JSON_SCHEMA_DIALECT"
	WarnDownlevelParameter             WarningCode = "DOWNLEVEL_PARAMETER"
	WarnDownlevelSecurityScheme        WarningCode = "DOWNLEVEL_SECURITY_SCHEME"
	WarnDownlevelServers               WarningCode = "DOWNLEVEL_SERVERS"
	WarnDownlevelStatusCode            WarningCode = "DOWNLEVEL_STATUS_CODE"
	WarnDownlevelComponent             WarningCode = "DOWNLEVEL_COMPONENT"
	WarnDownlevelOperation             WarningCode = "DOWNLEVEL_OPERATION"
	WarnDownlevelMediaTypes            WarningCode = "DOWNLEVEL_MEDIA_TYPES"
)

// WarningCategory groups related warning codes.
type WarningCategory string

const (
	CategoryUnknown   WarningCategory = "unknown"
	CategoryInput     WarningCategory = "input"
	CategoryDownlevel WarningCategory = "downlevel"
)

// Warning is an informational, non-fatal issue found during a build or a write.
type Warning struct {
	Code    WarningCode `json:"code"`
	Path    string      `json:"path"`
	Message string      `json:"message"`
}

// String returns a formatted representation.
func (w Warning) String() string {
	if w.Path == "" {
		return fmt.Sprintf("[%s] %s", w.Code, w.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", w.Code, w.Path, w.Message)
}

// Warnings is a collection of Warning with helper methods.
type Warnings []Warning

// Has returns true if any warning matches the given code.
func (ws Warnings) Has(code WarningCode) bool {
	for _, w := range ws {
		if w.Code == code {
			return true
		}
	}
	return false
}

// Filter returns warnings matching the given code.
func (ws Warnings) Filter(code WarningCode) Warnings {
	var out Warnings
	for _, w := range ws {
		if w.Code == code {
			out = append(out, w)
		}
	}
	return out
}

// FilterCategory returns warnings in the given category.
func (ws Warnings) FilterCategory(cat WarningCategory) Warnings {
	var out Warnings
	for _, w := range ws {
		if w.Code.Category() == cat {
			out = append(out, w)
		}
	}
	return out
}

// Collector accumulates warnings for one build. The zero value is ready to use.
type Collector struct {
	mu       sync.Mutex
	warnings Warnings
}

// Warnf records a warning.
func (c *Collector) Warnf(code WarningCode, path, format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnings = append(c.warnings, Warning{Code: code, Path: path, Message: fmt.Sprintf(format, args...)})
}

// Add records already-built warnings.
func (c *Collector) Add(ws ...Warning) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnings = append(c.warnings, ws...)
}

// Len returns the number of recorded warnings.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.warnings)
}

// Warnings returns the recorded warnings sorted by path, then code.
// Duplicates (same code, path and message) are reported once.
func (c *Collector) Warnings() Warnings {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(Warnings, 0, len(c.warnings))
	seen := make(map[Warning]struct{}, len(c.warnings))
	for _, w := range c.warnings {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Code < out[j].Code
	})
	return out
}
