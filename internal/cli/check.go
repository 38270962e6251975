package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/langbridge/internal/bridge"
	"github.com/dshills/langbridge/internal/convert"
	"github.com/dshills/langbridge/internal/engine"
	"github.com/dshills/langbridge/internal/engine/proc"
)

// ErrIssuesFound signals a non-zero exit because diagnostics with error
// severity were reported. It carries no message of its own.
var ErrIssuesFound = errors.New("issues found")

func newCheckCommand(state *rootState) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Report analyzer diagnostics in original-document coordinates",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if state.settings.Engine.Command == "" {
				return fmt.Errorf("no analyzer configured: set engine.command in %s or pass --engine", SettingsFileName)
			}

			cfg := proc.DefaultConfig(state.settings.Engine.Command, state.settings.Engine.Args...)
			cfg.Env = state.settings.Engine.Env
			factory := proc.NewFactory(cfg, state.logger)

			session := bridge.NewSession(convert.NewScriptExtractor(), factory,
				bridge.WithLogger(state.logger))

			p := newPrinter(cmd.OutOrStdout())
			issues := 0
			hadErrors := false
			var collected []engine.Diagnostic

			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				doc := bridge.Document{Path: path, Version: 0, Text: string(data)}

				diags, err := session.CheckDocument(cmd.Context(), doc)
				if err != nil {
					return err
				}

				for _, d := range diags {
					issues++
					if d.Category == engine.CategoryError {
						hadErrors = true
					}
					if asJSON {
						collected = append(collected, d)
						continue
					}
					p.diagnostic(path, doc.Text, d)
				}
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(collected); err != nil {
					return err
				}
			} else {
				p.summary(len(args), issues)
			}

			if hadErrors {
				return ErrIssuesFound
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit diagnostics as JSON")
	return cmd
}
