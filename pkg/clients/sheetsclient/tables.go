package sheetsclient

import (
	"context"

	"github.com/genf/workreport/pkg/core/ingest"
)

// WriteTable replaces the contents of a tab with a header row and rows, creating the tab if needed
func (c *Client) WriteTable(ctx context.Context, spreadsheetID, tab string, headers []string, rows [][]any) error {
	if err := c.EnsureSheet(ctx, spreadsheetID, tab); err != nil {
		return err
	}
	return c.ReplaceValues(ctx, spreadsheetID, tab, Cells(headers, rows))
}

// Cells converts a header row and rows into sheet cell values. Absent values become empty cells.
func Cells(headers []string, rows [][]any) [][]any {
	out := make([][]any, 0, len(rows)+1)
	head := make([]any, len(headers))
	for i, h := range headers {
		head[i] = h
	}
	out = append(out, head)
	for _, row := range rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = ingest.FormatValue(v)
		}
		out = append(out, cells)
	}
	return out
}
