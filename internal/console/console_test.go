package console

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/castr-dev/castr/internal/diag"
)

func TestLog_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, InfoLevel)

	l.Debug("hidden %d", 1)
	l.Info("loaded %s\n", "petstore.yaml")
	l.Warn("dropped %d", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INFO\tloaded petstore.yaml\n")
	assert.Contains(t, out, "WARN\tdropped 2\n")

	buf.Reset()
	l.SetLevel(DebugLevel)
	assert.Equal(t, DebugLevel, l.Level())
	l.Printf("building %s", "ir")
	assert.Equal(t, "DEBUG\tbuilding ir\n", buf.String())

	buf.Reset()
	l.SetLevel(QuietLevel)
	l.Warn("nothing")
	assert.Empty(t, buf.String())
}

func TestPrintWarnings(t *testing.T) {
	previous := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = previous }()

	var buf bytes.Buffer
	PrintWarnings(&buf, "api.yaml", diag.Warnings{
		{Code: diag.WarnDownlevelNullable, Path: "#/components/schemas/A", Message: "written as x-nullable"},
		{Code: diag.WarnAmbiguousDefaultResponse, Message: "default is the error response"},
	})
	assert.Equal(t, "2 warning(s) for api.yaml\n"+
		"  DOWNLEVEL_NULLABLE #/components/schemas/A: written as x-nullable\n"+
		"  AMBIGUOUS_DEFAULT_RESPONSE: default is the error response\n", buf.String())

	buf.Reset()
	PrintWarnings(&buf, "api.yaml", nil)
	assert.Empty(t, buf.String())
}
