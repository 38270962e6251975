package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// SettingsFileName is the tool settings file looked up in the working
// directory when --settings is not given. This configures the langbridge
// tool itself; project configuration (langbridge.json) is separate and
// belongs to the analyzed project.
const SettingsFileName = "langbridge.toml"

// Settings are the tool-level settings.
type Settings struct {
	LogLevel string         `toml:"log_level"`
	Engine   EngineSettings `toml:"engine"`
}

// EngineSettings describe the external analyzer process.
type EngineSettings struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
	Env     []string `toml:"env"`
}

// DefaultSettings returns the settings used when no file exists.
func DefaultSettings() Settings {
	return Settings{LogLevel: "info"}
}

// LoadSettings reads settings from path, or from SettingsFileName in
// the working directory when path is empty. A missing file yields the
// defaults; a malformed file is an error.
func LoadSettings(path string) (Settings, error) {
	explicit := path != ""
	if !explicit {
		path = SettingsFileName
	}

	settings := DefaultSettings()
	if _, err := toml.DecodeFile(path, &settings); err != nil {
		if os.IsNotExist(err) && !explicit {
			return settings, nil
		}
		return Settings{}, fmt.Errorf("load settings %s: %w", path, err)
	}
	if settings.LogLevel == "" {
		settings.LogLevel = "info"
	}
	return settings, nil
}
