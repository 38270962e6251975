package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/langbridge/internal/convert"
)

func newConvertCommand(state *rootState) *cobra.Command {
	var showMap bool

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Print a document's generated script representation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			result, err := convert.NewScriptExtractor().Convert(string(data), args[0])
			if err != nil {
				return err
			}

			if showMap {
				fmt.Fprintln(cmd.OutOrStdout(), result.MapJSON)
				return nil
			}

			state.logger.Debug("converted document",
				"path", args[0], "kind", result.Kind.String())
			fmt.Fprintln(cmd.OutOrStdout(), result.GeneratedText)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showMap, "map", false, "print the position-map artifact instead of the text")
	return cmd
}
