// Package projconfig locates and parses project configuration files.
// A project is identified by the path of its config file; documents with
// no config file in any ancestor directory share the default project
// (empty config path).
package projconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/langbridge/internal/engine"
)

// ConfigFileName is the file searched for in a document's directory and
// its ancestors.
const ConfigFileName = "langbridge.json"

// ErrInvalidConfig indicates the config file is not valid JSON.
var ErrInvalidConfig = errors.New("invalid project configuration")

// ProjectConfig is a resolved project configuration.
type ProjectConfig struct {
	// Path is the config file path, or "" for the default project.
	Path string

	// Options are the resolved engine options, forced options applied.
	Options engine.Options

	// FileNames are the declared project files, absolute paths.
	FileNames []string
}

// forcedOptions are always applied over user options. The engine must
// never attempt to emit output or strip markup constructs.
var forcedOptions = map[string]any{
	"noEmit":         true,
	"declaration":    false,
	"preserveMarkup": true,
	"skipLibCheck":   true,
}

// FindConfig searches dir and its ancestors for ConfigFileName and
// returns its path, or "" when none exists.
func FindConfig(dir string) string {
	dir = filepath.Clean(dir)
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// ParseConfig reads and resolves a config file. The caller decides how
// to degrade on error; Default is the usual fallback.
func ParseConfig(path string) (ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ProjectConfig{}, fmt.Errorf("read config: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return ProjectConfig{}, fmt.Errorf("%w: %s", ErrInvalidConfig, path)
	}

	raw := gjson.GetBytes(data, "engineOptions")
	userOptions := "{}"
	if raw.Exists() {
		if !raw.IsObject() {
			return ProjectConfig{}, fmt.Errorf("%w: engineOptions is not an object", ErrInvalidConfig)
		}
		userOptions = raw.Raw
	}

	opts, err := resolveOptions(userOptions)
	if err != nil {
		return ProjectConfig{}, err
	}

	baseDir := filepath.Dir(path)
	var fileNames []string
	gjson.GetBytes(data, "files").ForEach(func(_, value gjson.Result) bool {
		name := value.String()
		if name == "" {
			return true
		}
		if !filepath.IsAbs(name) {
			name = filepath.Join(baseDir, name)
		}
		fileNames = append(fileNames, filepath.Clean(name))
		return true
	})

	return ProjectConfig{
		Path:      path,
		Options:   opts,
		FileNames: fileNames,
	}, nil
}

// Default returns the configuration used when no config file exists or
// parsing failed: forced options only, no declared files.
func Default() ProjectConfig {
	opts, err := resolveOptions("{}")
	if err != nil {
		// resolveOptions cannot fail on a literal empty object.
		panic(err)
	}
	return ProjectConfig{Options: opts}
}

// resolveOptions applies the forced options over the user options JSON
// and decodes the fields the bridge itself understands.
func resolveOptions(userOptions string) (engine.Options, error) {
	merged := userOptions
	for key, value := range forcedOptions {
		var err error
		merged, err = sjson.Set(merged, key, value)
		if err != nil {
			return engine.Options{}, fmt.Errorf("merge forced option %s: %w", key, err)
		}
	}

	return engine.Options{
		NoEmit:         gjson.Get(merged, "noEmit").Bool(),
		Declaration:    gjson.Get(merged, "declaration").Bool(),
		PreserveMarkup: gjson.Get(merged, "preserveMarkup").Bool(),
		SkipLibCheck:   gjson.Get(merged, "skipLibCheck").Bool(),
		Strict:         gjson.Get(merged, "strict").Bool(),
		Target:         gjson.Get(merged, "target").String(),
		Raw:            merged,
	}, nil
}
