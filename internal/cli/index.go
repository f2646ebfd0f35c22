package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/contentstruct/contentstruct/internal/collect"
	"github.com/contentstruct/contentstruct/internal/ui"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index the content tree into the structure database",
	Long: `Walks the configured content directory, extracts documents, items and
assets, stores asset payloads in the blob store, and writes the structure
database. Re-running only records new content.

Examples:
  cstruct index
  cstruct index --root /path/to/project
  cstruct index --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		spinner := ui.NewSpinner("Indexing content")
		spinner.Start()

		warnf := func(format string, args ...any) {
			fmt.Fprintln(os.Stderr, ui.Warningf(format, args...))
		}
		runner := collect.NewRunner(getConfig(), nil, nil, warnf)

		start := time.Now()
		stats, err := runner.Run()
		spinner.Stop()
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		if isJSONOutput() {
			return outputJSON(map[string]any{
				"documents":  stats.Documents,
				"items":      stats.Items,
				"assets":     stats.Assets,
				"images":     stats.Images,
				"blobs":      stats.Blobs,
				"pruned":     stats.Pruned,
				"version_id": stats.VersionID,
				"warnings":   stats.Warnings,
				"elapsed_ms": elapsed.Milliseconds(),
			})
		}

		fmt.Println(ui.Successf("Indexed %d documents in %s", stats.Documents, elapsed.Round(time.Millisecond)))

		table := ui.NewTable(2)
		table.AddRow("Items", fmt.Sprintf("%d", stats.Items))
		table.AddRow("New assets", fmt.Sprintf("%d", stats.Assets))
		table.AddRow("New images", fmt.Sprintf("%d", stats.Images))
		table.AddRow("New blobs", fmt.Sprintf("%d", stats.Blobs))
		if stats.Pruned > 0 {
			table.AddRow("Removed documents", fmt.Sprintf("%d", stats.Pruned))
		}
		table.AddRow("Version", stats.VersionID)
		fmt.Print(table.String())

		if stats.Warnings > 0 {
			fmt.Println(ui.Hint(ui.Count(stats.Warnings, "warning", "warnings")))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
