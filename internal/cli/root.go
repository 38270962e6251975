// Package cli implements the langbridge command tree.
package cli

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dshills/langbridge/internal/logging"
)

// BuildInfo carries build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// rootState is shared between commands after flag parsing.
type rootState struct {
	settings Settings
	logger   *log.Logger
}

// NewRootCommand builds the root command with all subcommands attached.
func NewRootCommand(info BuildInfo) *cobra.Command {
	state := &rootState{}

	var settingsPath string
	var logLevel string
	var engineCommand string

	root := &cobra.Command{
		Use:           "langbridge",
		Short:         "Bridge composite documents to a script analysis engine",
		Long: "langbridge converts composite documents into generated script\n" +
			"representations, runs an analysis engine over them, and maps every\n" +
			"result back into original-document coordinates.",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", info.Version, info.Commit, info.Date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			settings, err := LoadSettings(settingsPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				settings.LogLevel = logLevel
			}
			if engineCommand != "" {
				settings.Engine.Command = engineCommand
				settings.Engine.Args = nil
			}
			state.settings = settings
			state.logger = logging.New(settings.LogLevel)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&settingsPath, "settings", "", "path to langbridge.toml")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&engineCommand, "engine", "", "analyzer command, overrides settings")

	root.AddCommand(newCheckCommand(state))
	root.AddCommand(newConvertCommand(state))
	root.AddCommand(newPositionCommand(state))

	return root
}
