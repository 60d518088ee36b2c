package table

import (
	"reflect"
	"testing"
)

func TestIsEmpty(t *testing.T) {
	tests := []struct {
		name     string
		cell     string
		expected bool
	}{
		{name: "empty string", cell: "", expected: true},
		{name: "whitespace only", cell: "   \t", expected: true},
		{name: "nan artifact", cell: "nan", expected: true},
		{name: "NaN artifact", cell: "NaN", expected: true},
		{name: "padded nan", cell: " nan ", expected: true},
		{name: "real value", cell: "Glas", expected: false},
		{name: "zero is content", cell: "0", expected: false},
		{name: "word containing nan", cell: "nankeen", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := IsEmpty(tt.cell); result != tt.expected {
				t.Errorf("Expected %v for %q, got %v", tt.expected, tt.cell, result)
			}
		})
	}
}

func TestKey(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		expected string
	}{
		{name: "plain id", id: "HA-2345-67", expected: "HA-2345-67"},
		{name: "slashes become hyphens", id: "HA-2345/67", expected: "HA-2345-67"},
		{name: "annotation after space dropped", id: "HA-2345/67 a", expected: "HA-2345-67"},
		{name: "surrounding space", id: "  V-100-3  ", expected: "V-100-3"},
		{name: "internal space cuts the rest", id: "HA 2345/67", expected: "HA"},
		{name: "empty id", id: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := Key(tt.id); result != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestSplitImagePaths(t *testing.T) {
	tests := []struct {
		name     string
		cell     string
		expected []string
	}{
		{
			name:     "newline separated windows paths",
			cell:     "D:\\Fotos\\HA-1-1-a.jpg\nD:\\Fotos\\HA-1-1-b.jpg",
			expected: []string{"D:/Fotos/HA-1-1-a.jpg", "D:/Fotos/HA-1-1-b.jpg"},
		},
		{
			name:     "semicolon separated",
			cell:     "a.jpg; b.jpg",
			expected: []string{"a.jpg", "b.jpg"},
		},
		{
			name:     "blank entries dropped",
			cell:     "a.jpg\n\n  \nb.jpg",
			expected: []string{"a.jpg", "b.jpg"},
		},
		{
			name:     "empty cell",
			cell:     "",
			expected: nil,
		},
		{
			name:     "nan cell",
			cell:     "nan",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SplitImagePaths(tt.cell)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestAppendRowPadsAndTruncates(t *testing.T) {
	tbl := New([]string{"a", "b", "c"})
	tbl.AppendRow([]string{"1"})
	tbl.AppendRow([]string{"1", "2", "3", "4"})

	if len(tbl.Rows[0]) != 3 {
		t.Fatalf("Expected padded row of width 3, got %d", len(tbl.Rows[0]))
	}
	if tbl.Rows[0][2] != "" {
		t.Errorf("Expected empty padding cell, got %q", tbl.Rows[0][2])
	}
	if len(tbl.Rows[1]) != 3 {
		t.Errorf("Expected truncated row of width 3, got %d", len(tbl.Rows[1]))
	}
}

func TestRecords(t *testing.T) {
	tbl := New([]string{"t1", "T2", "T3", "T5", "T13", "T14"})
	tbl.AppendRow([]string{"HA-123/4 (2)", "Werkstatt Meier", "Glas", "10x5 cm", "D:\\Fotos\\HA-123-4-a.jpg", "1920"})
	tbl.AppendRow([]string{"", "nan", "", "", "", ""})

	m := Mapping{ID: "t1", Manufacturer: "T2", Material: "T3", Dimensions: "T5", ImagePaths: "T13", Date: "T14"}
	records := tbl.Records(m)

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	first := records[0]
	if first.ID != "HA-123/4 (2)" {
		t.Errorf("Expected ID 'HA-123/4 (2)', got %q", first.ID)
	}
	if first.Key() != "HA-123-4" {
		t.Errorf("Expected key 'HA-123-4', got %q", first.Key())
	}
	if first.Material != "Glas" {
		t.Errorf("Expected material Glas, got %q", first.Material)
	}
	if len(first.ImagePaths) != 1 || first.ImagePaths[0] != "D:/Fotos/HA-123-4-a.jpg" {
		t.Errorf("Expected normalised image path, got %v", first.ImagePaths)
	}
	second := records[1]
	if second.ID != "" || second.Manufacturer != "" {
		t.Errorf("Expected empty record fields, got %+v", second)
	}
}

func TestCellUnknownColumn(t *testing.T) {
	tbl := New([]string{"a"})
	tbl.AppendRow([]string{"1"})

	if got := tbl.Cell(0, "missing"); got != "" {
		t.Errorf("Expected empty cell for unknown column, got %q", got)
	}
	if got := tbl.Cell(5, "a"); got != "" {
		t.Errorf("Expected empty cell for out-of-range row, got %q", got)
	}
}
