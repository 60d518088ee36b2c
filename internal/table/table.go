package table

import (
	"strings"
)

// Table holds spreadsheet data as ordered columns over rows of string cells.
// Cell values keep whatever the source file contained; emptiness is decided
// by IsEmpty so spreadsheet round-trip artifacts like "nan" do not count as
// content.
type Table struct {
	Columns []string
	Rows    [][]string
}

// New creates an empty table with the given column names.
func New(columns []string) *Table {
	return &Table{Columns: append([]string{}, columns...)}
}

// AppendRow adds a row, padded or truncated to the column count.
func (t *Table) AppendRow(cells []string) {
	row := make([]string, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at row i in the named column. Unknown columns and
// out-of-range rows read as "".
func (t *Table) Cell(i int, column string) string {
	idx := t.ColumnIndex(column)
	if idx < 0 || i < 0 || i >= len(t.Rows) {
		return ""
	}
	return t.Rows[i][idx]
}

// IsEmpty reports whether a cell counts as having no content. Covers the
// empty string, whitespace, and the "nan" strings spreadsheet round-trips
// leave behind.
func IsEmpty(cell string) bool {
	s := strings.TrimSpace(cell)
	if s == "" {
		return true
	}
	return strings.EqualFold(s, "nan")
}

// Mapping names the source columns that carry each catalogue field.
type Mapping struct {
	ID           string
	Manufacturer string
	Material     string
	Dimensions   string
	Date         string
	ImagePaths   string
}

// Record is one catalogue item's row viewed through a column mapping.
type Record struct {
	ID           string
	Manufacturer string
	Material     string
	Dimensions   string
	Date         string
	ImagePaths   []string
}

// Records projects every row through the mapping. Rows with an empty
// identifier still yield a record; callers decide whether to keep them.
func (t *Table) Records(m Mapping) []Record {
	records := make([]Record, 0, len(t.Rows))
	for i := range t.Rows {
		records = append(records, Record{
			ID:           field(t.Cell(i, m.ID)),
			Manufacturer: field(t.Cell(i, m.Manufacturer)),
			Material:     field(t.Cell(i, m.Material)),
			Dimensions:   field(t.Cell(i, m.Dimensions)),
			Date:         field(t.Cell(i, m.Date)),
			ImagePaths:   SplitImagePaths(t.Cell(i, m.ImagePaths)),
		})
	}
	return records
}

func field(cell string) string {
	if IsEmpty(cell) {
		return ""
	}
	return strings.TrimSpace(cell)
}

// Key reduces an identifier to its lookup form: surrounding space removed,
// slashes unified to hyphens, anything after the first space dropped.
// Inventory numbers like "HA 2345/67" and image file name prefixes then meet
// on the same string.
func Key(id string) string {
	s := strings.TrimSpace(id)
	s = strings.ReplaceAll(s, "/", "-")
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	return s
}

// Key returns the record's identifier in lookup form.
func (r Record) Key() string {
	return Key(r.ID)
}

// SplitImagePaths splits an image-reference cell into individual entries.
// Museum exports pack several Windows paths into one cell separated by
// newlines or semicolons; backslashes are normalised so path/filepath can
// take over.
func SplitImagePaths(cell string) []string {
	if IsEmpty(cell) {
		return nil
	}
	fields := strings.FieldsFunc(cell, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ';'
	})
	var paths []string
	for _, f := range fields {
		f = strings.TrimSpace(strings.ReplaceAll(f, `\`, "/"))
		if f != "" {
			paths = append(paths, f)
		}
	}
	return paths
}
