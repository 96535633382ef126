// Package metaschema embeds the structural meta-schemas reconstructed
// documents are checked against.
package metaschema

import (
	_ "embed"
	"fmt"
	"strings"
)

// Resource URLs the meta-schemas are registered under.
const (
	OAS30URL = "https://castr.dev/metaschema/oas30.json"
	OAS31URL = "https://castr.dev/metaschema/oas31.json"

	Swagger20URL = "https://castr.dev/metaschema/swagger20.json"
)

//go:embed oas30.json
var oas30 []byte

//go:embed oas31.json
var oas31 []byte

//go:embed swagger20.json
var swagger20 []byte

// ForVersion returns the resource URL and meta-schema for an OpenAPI version
// such as "3.0.3" or "3.1.0", or for Swagger "2.0".
func ForVersion(version string) (string, []byte, error) {
	switch {
	case version == "2.0":
		return Swagger20URL, swagger20, nil
	case strings.HasPrefix(version, "3.0"):
		return OAS30URL, oas30, nil
	case strings.HasPrefix(version, "3.1"):
		return OAS31URL, oas31, nil
	default:
		return "", nil, fmt.Errorf("no meta-schema for openapi version %q", version)
	}
}
