package extract

import (
	"fmt"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
)

// tableData converts a GFM table node into a row-major list of objects
// keyed by the header cells.
func tableData(table *east.Table, source []byte) []map[string]string {
	var header []string
	var rows [][]string

	for child := table.FirstChild(); child != nil; child = child.NextSibling() {
		switch row := child.(type) {
		case *east.TableHeader:
			header = rowCells(row, source)
		case *east.TableRow:
			rows = append(rows, rowCells(row, source))
		}
	}

	data := make([]map[string]string, 0, len(rows))
	for _, cells := range rows {
		obj := make(map[string]string, len(header))
		for i, key := range header {
			if i < len(cells) {
				obj[key] = cells[i]
			} else {
				obj[key] = ""
			}
		}
		data = append(data, obj)
	}
	return data
}

func rowCells(row ast.Node, source []byte) []string {
	var cells []string
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		if _, ok := cell.(*east.TableCell); ok {
			cells = append(cells, nodeText(cell, source))
		}
	}
	return cells
}

// tableDescription summarizes a table for its item's rendered text.
func tableDescription(data []map[string]string) string {
	cols := 0
	if len(data) > 0 {
		cols = len(data[0])
	}
	return fmt.Sprintf("table with %d rows x %d columns", len(data), cols)
}
