package types

import (
	"bytes"
	"fmt"
)

// Render writes every declaration as an exported type alias, in result
// order. Component descriptions are not carried by nodes, so the output has
// no doc comments.
func Render(result *Result) []byte {
	var buf bytes.Buffer
	for i, d := range result.Declarations {
		if i > 0 {
			buf.WriteByte('\n')
		}
		fmt.Fprintf(&buf, "export type %s = %s;\n", d.Name, d.Type)
	}
	return buf.Bytes()
}
