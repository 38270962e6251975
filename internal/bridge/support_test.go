package bridge

import (
	"fmt"
	"strings"

	"github.com/dshills/langbridge/internal/projconfig"
)

// scriptedConverter returns canned results per document path.
type scriptedConverter struct {
	results map[string]ConvertResult
	errs    map[string]error
}

func newScriptedConverter() *scriptedConverter {
	return &scriptedConverter{
		results: make(map[string]ConvertResult),
		errs:    make(map[string]error),
	}
}

func (c *scriptedConverter) Convert(text, path string) (ConvertResult, error) {
	if err, ok := c.errs[path]; ok {
		return ConvertResult{}, err
	}
	if result, ok := c.results[path]; ok {
		return result, nil
	}
	// Unscripted paths convert to themselves with no map.
	return ConvertResult{GeneratedText: text, Kind: KindScriptOnly}, nil
}

// mapArtifact builds a version-1 position-map artifact from flat
// (origLine, origCol, genLine, genCol) quadruples.
func mapArtifact(quads ...int) string {
	if len(quads)%4 != 0 {
		panic("mapArtifact needs groups of four")
	}
	var entries []string
	for i := 0; i < len(quads); i += 4 {
		entries = append(entries, fmt.Sprintf(
			`{"origLine":%d,"origCol":%d,"genLine":%d,"genCol":%d}`,
			quads[i], quads[i+1], quads[i+2], quads[i+3]))
	}
	return `{"version":1,"mappings":[` + strings.Join(entries, ",") + `]}`
}

// stubLoader resolves project identity from in-memory maps.
type stubLoader struct {
	byDir    map[string]string // document dir -> config path
	parsed   map[string]projconfig.ProjectConfig
	parseErr map[string]error
}

func newStubLoader() *stubLoader {
	return &stubLoader{
		byDir:    make(map[string]string),
		parsed:   make(map[string]projconfig.ProjectConfig),
		parseErr: make(map[string]error),
	}
}

func (l *stubLoader) FindConfig(dir string) string {
	return l.byDir[dir]
}

func (l *stubLoader) ParseConfig(path string) (projconfig.ProjectConfig, error) {
	if err, ok := l.parseErr[path]; ok {
		return projconfig.ProjectConfig{}, err
	}
	if cfg, ok := l.parsed[path]; ok {
		return cfg, nil
	}
	cfg := projconfig.Default()
	cfg.Path = path
	return cfg, nil
}

func intPtr(v int) *int {
	return &v
}
