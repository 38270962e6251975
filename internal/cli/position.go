package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dshills/langbridge/internal/bridge"
	"github.com/dshills/langbridge/internal/convert"
)

func newPositionCommand(state *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "position <file> <offset>",
		Short: "Map an original-document offset through the position mapper",
		Long: "position converts an offset in the original document to its generated\n" +
			"offset and back, showing the round trip the bridge applies to every\n" +
			"engine result.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			offset, err := strconv.Atoi(args[1])
			if err != nil || offset < 0 {
				return fmt.Errorf("offset must be a non-negative integer: %q", args[1])
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			cache := bridge.NewSnapshotCache(convert.NewScriptExtractor(), state.logger)
			mapper := bridge.NewMapper(cache, state.logger)

			doc := bridge.Document{Path: args[0], Version: 0, Text: string(data)}
			snap := cache.Update(doc)
			mapper.Prepare(doc.Path)

			genOffset := mapper.ToGenerated(doc.Path, offset)
			back := mapper.ToOriginal(snap.GeneratedName(), genOffset)

			origLine, origCol := lineColumn(doc.Text, offset)
			genLine, genCol := lineColumn(snap.GeneratedText, genOffset)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "original:  offset %d (%d:%d)\n", offset, origLine, origCol)
			fmt.Fprintf(out, "generated: offset %d (%d:%d) in %s\n", genOffset, genLine, genCol, snap.GeneratedName())
			fmt.Fprintf(out, "round trip: offset %d\n", back)
			return nil
		},
	}
}
