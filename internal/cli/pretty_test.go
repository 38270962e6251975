package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/langbridge/internal/engine"
)

func TestLineColumn(t *testing.T) {
	text := "ab\ncd\nef"

	tests := []struct {
		offset int
		line   int
		col    int
	}{
		{0, 1, 1},
		{1, 1, 2},
		{3, 2, 1},
		{4, 2, 2},
		{6, 3, 1},
		{8, 3, 3},
		{-1, 1, 1},
		{99, 3, 3},
	}

	for _, tt := range tests {
		line, col := lineColumn(text, tt.offset)
		assert.Equal(t, tt.line, line, "offset %d line", tt.offset)
		assert.Equal(t, tt.col, col, "offset %d col", tt.offset)
	}
}

func TestPrinter_Diagnostic(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf)

	start := 3
	length := 2
	p.diagnostic("/p/a.lbx", "ab\ncd\nef", engine.Diagnostic{
		Start:    &start,
		Length:   &length,
		Message:  "something is off",
		Code:     2304,
		Category: engine.CategoryError,
	})

	got := buf.String()
	assert.Equal(t, "/p/a.lbx:2:1: error: something is off [2304]\n", got)
}

func TestPrinter_DiagnosticWithoutPosition(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf)

	p.diagnostic("/p/a.lbx", "text", engine.Diagnostic{
		Message:  "global problem",
		Category: engine.CategoryWarning,
	})

	got := buf.String()
	assert.True(t, strings.HasPrefix(got, "/p/a.lbx: warning: global problem"), "got %q", got)
}

func TestPrinter_Summary(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf)

	p.summary(2, 0)
	assert.Contains(t, buf.String(), "no issues")

	buf.Reset()
	p.summary(2, 5)
	assert.Contains(t, buf.String(), "2 file(s) checked, 5 issue(s)")
}
