package cli

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/contentstruct/contentstruct/internal/collect"
	"github.com/contentstruct/contentstruct/internal/index"
	"github.com/contentstruct/contentstruct/internal/sqlutil"
	"github.com/contentstruct/contentstruct/internal/ui"
)

var showCmd = &cobra.Command{
	Use:   "show <uid>",
	Short: "Render an indexed document from its stored items",
	Long: `Looks a document up by uid, sid, or slug and renders its item rows
back into readable markdown. Asset items appear as their placeholder text.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := index.Open(filepath.Join(getConfig().AbsOutDir(), collect.DatabaseFile))
		if err != nil {
			return err
		}
		defer db.Close()

		sid, title, err := lookupDocument(db.DB(), args[0])
		if err != nil {
			return err
		}

		items, err := documentItems(db.DB(), sid)
		if err != nil {
			return err
		}

		markdown := renderItemsMarkdown(title, items)
		if isJSONOutput() {
			return outputJSON(map[string]any{"sid": sid, "title": title, "items": items})
		}

		display := ui.NewDisplayContext()
		if !display.IsTTY {
			fmt.Print(markdown)
			return nil
		}
		rendered, err := ui.RenderMarkdown(markdown, display.AvailableWidth(ui.MarkdownRenderMargin))
		if err != nil {
			return err
		}
		fmt.Print(rendered)
		return nil
	},
}

func lookupDocument(db *sql.DB, key string) (sid, title string, err error) {
	err = db.QueryRow(
		"SELECT sid, title FROM documents WHERE uid = ? OR sid = ? OR slug = ? LIMIT 1",
		key, key, key,
	).Scan(&sid, &title)
	if err == sql.ErrNoRows {
		return "", "", fmt.Errorf("document %q not found", key)
	}
	if err != nil {
		return "", "", err
	}
	return sid, title, nil
}

type shownItem struct {
	Type       string `json:"type"`
	Level      int    `json:"level"`
	OrderIndex int    `json:"order_index"`
	BodyText   string `json:"body_text"`
	Slug       string `json:"slug,omitempty"`
	AssetUID   string `json:"asset_uid,omitempty"`
}

func documentItems(db *sql.DB, sid string) ([]shownItem, error) {
	rows, err := db.Query(
		"SELECT type, level, order_index, body_text, slug, asset_uid FROM items WHERE doc_sid = ? ORDER BY order_index",
		sid,
	)
	if err != nil {
		return nil, err
	}
	return sqlutil.ScanRows(rows, func(rows *sql.Rows) (shownItem, error) {
		var it shownItem
		err := rows.Scan(&it.Type, &it.Level, &it.OrderIndex, &it.BodyText, &it.Slug, &it.AssetUID)
		return it, err
	})
}

// renderItemsMarkdown rebuilds readable markdown from item rows. Heading
// items carry their own depth in Level; everything else renders as text.
func renderItemsMarkdown(title string, items []shownItem) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString("# " + title + "\n\n")
	}
	for _, it := range items {
		switch it.Type {
		case "heading":
			depth := it.Level
			if depth < 1 {
				depth = 1
			}
			sb.WriteString(strings.Repeat("#", depth+1) + " " + it.BodyText + "\n\n")
		case "code":
			sb.WriteString("```\n" + it.BodyText + "\n```\n\n")
		default:
			if it.BodyText != "" {
				sb.WriteString(it.BodyText + "\n\n")
			}
		}
	}
	return sb.String()
}

func init() {
	rootCmd.AddCommand(showCmd)
}
