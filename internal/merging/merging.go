// Package merging folds several cleaned exports into one table with exactly
// one row per object identifier.
package merging

import (
	"fmt"
	"strings"

	"github.com/collection-tools/registrar/internal/table"
)

// MissingKeyColumnError reports an input table that lacks the identifier
// column records are merged on.
type MissingKeyColumnError struct {
	Input  string
	Column string
}

func (e *MissingKeyColumnError) Error() string {
	return fmt.Sprintf("input %s has no key column %q", e.Input, e.Column)
}

// Input pairs a table with the label used when reporting problems with it.
type Input struct {
	Name  string
	Table *table.Table
}

// Summary describes a merge pass.
type Summary struct {
	InputRows  int
	BlankIDs   int
	Duplicates int
	OutputRows int
}

// Merge concatenates the inputs, drops rows with a blank identifier, and
// coalesces rows sharing an identifier into one record where the first
// non-empty value per column wins. Fragmented records, split across rows
// with complementary fields filled, come out whole. Row order follows first
// appearance; the column set is the union in first-seen order.
func Merge(inputs []Input, keyColumn string) (*table.Table, *Summary, error) {
	if len(inputs) == 0 {
		return nil, nil, fmt.Errorf("no input tables to merge")
	}

	var columns []string
	seen := make(map[string]bool)
	for _, in := range inputs {
		if in.Table.ColumnIndex(keyColumn) < 0 {
			return nil, nil, &MissingKeyColumnError{Input: in.Name, Column: keyColumn}
		}
		for _, c := range in.Table.Columns {
			if !seen[c] {
				seen[c] = true
				columns = append(columns, c)
			}
		}
	}

	colIndex := make(map[string]int, len(columns))
	for i, c := range columns {
		colIndex[c] = i
	}

	out := table.New(columns)
	rowByID := make(map[string]int)
	summary := &Summary{}

	for _, in := range inputs {
		keyIdx := in.Table.ColumnIndex(keyColumn)
		for _, row := range in.Table.Rows {
			summary.InputRows++
			id := strings.TrimSpace(row[keyIdx])
			if table.IsEmpty(id) {
				summary.BlankIDs++
				continue
			}
			target, exists := rowByID[id]
			if !exists {
				out.AppendRow(make([]string, len(columns)))
				target = len(out.Rows) - 1
				rowByID[id] = target
			} else {
				summary.Duplicates++
			}
			for i, c := range in.Table.Columns {
				if i >= len(row) {
					break
				}
				j := colIndex[c]
				if table.IsEmpty(out.Rows[target][j]) && !table.IsEmpty(row[i]) {
					out.Rows[target][j] = strings.TrimSpace(row[i])
				}
			}
		}
	}
	summary.OutputRows = len(out.Rows)
	return out, summary, nil
}
