// Package convert provides the built-in reference converter for
// composite documents: markup with embedded <script> regions. It exists
// so the bridge can be exercised end to end by tests and the CLI; the
// production transformation for a real source format is supplied by the
// embedding tool.
package convert

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dshills/langbridge/internal/bridge"
)

// Extension is the file extension of composite documents the reference
// converter understands.
const Extension = ".lbx"

const (
	scriptOpen  = "<script>"
	scriptClose = "</script>"

	// checkPrefix wraps markup expressions in generated output. The
	// __lbx helpers are declared by the bridge's ambient shims.
	checkPrefix = "__lbx.check("
)

// mapping mirrors the sourcemap artifact entry shape.
type mapping struct {
	OrigLine int `json:"origLine"`
	OrigCol  int `json:"origCol"`
	GenLine  int `json:"genLine"`
	GenCol   int `json:"genCol"`
}

// artifact is the position-map artifact document.
type artifact struct {
	Version  int       `json:"version"`
	Mappings []mapping `json:"mappings"`
}

// ScriptExtractor converts composite documents to plain script. Script
// region lines are copied through line for line; markup expressions in
// `{...}` become __lbx.check calls so the engine type-checks them; all
// other markup is dropped. The trailing `export {};` is synthetic
// generated code with no source correspondence.
type ScriptExtractor struct{}

// NewScriptExtractor returns the reference converter.
func NewScriptExtractor() *ScriptExtractor {
	return &ScriptExtractor{}
}

// Convert implements bridge.Converter.
func (e *ScriptExtractor) Convert(text, path string) (bridge.ConvertResult, error) {
	lines := strings.Split(text, "\n")

	var gen []string
	var mappings []mapping
	inScript := false
	sawMarkup := false

	for i, line := range lines {
		origLine := i + 1
		trimmed := strings.TrimSpace(line)

		switch {
		case !inScript && trimmed == scriptOpen:
			inScript = true

		case inScript && trimmed == scriptClose:
			inScript = false

		case inScript:
			gen = append(gen, line)
			mappings = append(mappings, mapping{
				OrigLine: origLine,
				OrigCol:  1,
				GenLine:  len(gen),
				GenCol:   1,
			})

		case trimmed != "":
			sawMarkup = true
			for _, expr := range markupExpressions(line) {
				gen = append(gen, checkPrefix+expr.text+");")
				mappings = append(mappings, mapping{
					OrigLine: origLine,
					OrigCol:  expr.col,
					GenLine:  len(gen),
					GenCol:   len(checkPrefix) + 1,
				})
			}
		}
	}

	if inScript {
		return bridge.ConvertResult{}, fmt.Errorf("convert %s: unterminated %s region", path, scriptOpen)
	}

	gen = append(gen, "export {};")

	mapJSON, err := json.Marshal(artifact{Version: 1, Mappings: mappings})
	if err != nil {
		return bridge.ConvertResult{}, fmt.Errorf("convert %s: encode map: %w", path, err)
	}

	kind := bridge.KindScriptOnly
	if sawMarkup {
		kind = bridge.KindMarkupScript
	}

	return bridge.ConvertResult{
		GeneratedText: strings.Join(gen, "\n"),
		MapJSON:       string(mapJSON),
		Kind:          kind,
	}, nil
}

// markupExpr is one `{...}` expression found in a markup line.
type markupExpr struct {
	text string
	col  int // 1-based column of the expression's first character
}

// markupExpressions extracts the top-level brace expressions of a line.
// Nested braces stay inside one expression; an unterminated brace group
// is ignored.
func markupExpressions(line string) []markupExpr {
	var out []markupExpr
	for i := 0; i < len(line); i++ {
		if line[i] != '{' {
			continue
		}
		depth := 1
		j := i + 1
		for ; j < len(line) && depth > 0; j++ {
			switch line[j] {
			case '{':
				depth++
			case '}':
				depth--
			}
		}
		if depth != 0 {
			break
		}
		expr := line[i+1 : j-1]
		if strings.TrimSpace(expr) != "" {
			out = append(out, markupExpr{text: expr, col: i + 2})
		}
		i = j - 1
	}
	return out
}
