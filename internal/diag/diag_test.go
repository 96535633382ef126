package diag

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollector_BatchesSortedAndDeduplicated(t *testing.T) {
	var c Collector
	c.Warnf(WarnDownlevelWebhooks, "#/webhooks", "dropped %d webhooks", 2)
	c.Warnf(WarnMalformedCompositionFragment, "#/components/schemas/A/allOf/1", "merged")
	c.Warnf(WarnMalformedCompositionFragment, "#/components/schemas/A/allOf/1", "merged")

	ws := c.Warnings()
	assert.Len(t, ws, 2)
	assert.Equal(t, "#/components/schemas/A/allOf/1", ws[0].Path)
	assert.Equal(t, "dropped 2 webhooks", ws[1].Message)
	assert.Equal(t, 3, c.Len())
}

func TestWarningCode_Category(t *testing.T) {
	assert.Equal(t, CategoryDownlevel, WarnDownlevelPrefixItems.Category())
	assert.Equal(t, CategoryInput, WarnAmbiguousDefaultResponse.Category())
	assert.Equal(t, CategoryInput, WarnUnknownType.Category())
	assert.Equal(t, CategoryUnknown, WarningCode("OTHER").Category())
}

func TestWarnings_Filter(t *testing.T) {
	ws := Warnings{
		{Code: WarnDownlevelNullable},
		{Code: WarnAmbiguousDefaultResponse},
	}
	assert.True(t, ws.Has(WarnDownlevelNullable))
	assert.False(t, ws.Has(WarnDownlevelWebhooks))
	assert.Len(t, ws.FilterCategory(CategoryDownlevel), 1)
	assert.Len(t, ws.Filter(WarnAmbiguousDefaultResponse), 1)
}

func TestTypedErrors_MatchSentinels(t *testing.T) {
	tests := []struct {
		err      error
		sentinel error
	}{
		{&UnresolvableReferenceError{Ref: "#/components/schemas/Missing", Path: "#/components/schemas/A/properties/b"}, ErrUnresolvableReference},
		{&UnsupportedCompositionError{Path: "#/x", Reason: "not"}, ErrUnsupportedComposition},
		{&InvalidReconstructedDocumentError{Format: "openapi", Err: errors.New("boom")}, ErrInvalidReconstructedDocument},
		{&DepthLimitError{Path: "#/a", Limit: 3}, ErrDepthLimit},
		{&DownlevelError{Warning: Warning{Code: WarnDownlevelWebhooks}}, ErrDownlevel},
	}
	for _, tt := range tests {
		wrapped := fmt.Errorf("build: %w", tt.err)
		assert.ErrorIs(t, wrapped, tt.sentinel, tt.err.Error())
	}

	var unresolved *UnresolvableReferenceError
	err := fmt.Errorf("wrap: %w", &UnresolvableReferenceError{Ref: "r", Path: "p"})
	assert.True(t, errors.As(err, &unresolved))
	assert.Equal(t, "r", unresolved.Ref)
}
