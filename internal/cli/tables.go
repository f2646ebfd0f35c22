package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/contentstruct/contentstruct/internal/catalog"
	"github.com/contentstruct/contentstruct/internal/collect"
	"github.com/contentstruct/contentstruct/internal/index"
	"github.com/contentstruct/contentstruct/internal/ui"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Show the structure database tables and their row counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Load(getConfig().CatalogPath)
		if err != nil {
			return err
		}

		dbPath := filepath.Join(getConfig().AbsOutDir(), collect.DatabaseFile)
		db, err := index.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		type tableCount struct {
			Name string `json:"name"`
			Rows int64  `json:"rows"`
		}
		var counts []tableCount
		for _, table := range cat.Structure().Tables {
			var n int64
			err := db.DB().QueryRow("SELECT COUNT(*) FROM " + quoteName(table.Name)).Scan(&n)
			if err != nil {
				return fmt.Errorf("failed to count rows of %s: %w", table.Name, err)
			}
			counts = append(counts, tableCount{Name: table.Name, Rows: n})
		}

		if isJSONOutput() {
			return outputJSON(counts)
		}

		fmt.Println(ui.Header("Structure Database"))
		fmt.Println(ui.Hint(dbPath))
		out := ui.NewTable(2)
		for _, tc := range counts {
			out.AddRow(ui.Accent.Render(tc.Name), fmt.Sprintf("%d", tc.Rows))
		}
		fmt.Print(out.String())
		return nil
	},
}

func quoteName(name string) string {
	return `"` + name + `"`
}

func init() {
	rootCmd.AddCommand(tablesCmd)
}
