// Package cleaning reduces a raw inventory export to the rows under review
// and the columns that actually carry data there.
package cleaning

import (
	"fmt"

	"github.com/collection-tools/registrar/internal/table"
)

// Summary describes what a cleaning pass kept and removed.
type Summary struct {
	RowStart       int
	RowEnd         int
	RowsKept       int
	KeptColumns    []string
	RemovedColumns []string
}

// Clean slices the table to the half-open row range [start, end) and drops
// every column that has no content inside that range. A column populated
// only outside the range is removed; one populated only inside is kept.
// The range is clamped to the rows available.
func Clean(t *table.Table, start, end int) (*table.Table, *Summary, error) {
	if start < 0 || end < start {
		return nil, nil, fmt.Errorf("invalid row range %d..%d", start, end)
	}
	if start > len(t.Rows) {
		start = len(t.Rows)
	}
	if end > len(t.Rows) {
		end = len(t.Rows)
	}
	rows := t.Rows[start:end]

	summary := &Summary{RowStart: start, RowEnd: end, RowsKept: len(rows)}
	var keep []int
	for i, col := range t.Columns {
		if columnHasContent(rows, i) {
			keep = append(keep, i)
			summary.KeptColumns = append(summary.KeptColumns, col)
		} else {
			summary.RemovedColumns = append(summary.RemovedColumns, col)
		}
	}

	out := table.New(summary.KeptColumns)
	for _, row := range rows {
		cells := make([]string, len(keep))
		for j, idx := range keep {
			cells[j] = row[idx]
		}
		out.AppendRow(cells)
	}
	return out, summary, nil
}

func columnHasContent(rows [][]string, col int) bool {
	for _, row := range rows {
		if col < len(row) && !table.IsEmpty(row[col]) {
			return true
		}
	}
	return false
}

// OutputName is the default file name for a cleaned range.
func OutputName(start, end int) string {
	return fmt.Sprintf("non_empty_%d_%d.xlsx", start, end)
}
