package report

import (
	"strings"
	"testing"

	"github.com/collection-tools/registrar/internal/table"
)

func TestComputeUniqueObjects(t *testing.T) {
	records := []table.Record{
		{ID: "HA-1/1", Material: "Glas", Date: "1935"},
		{ID: "HA-1-1", Material: "Stahl", Date: "1990"},
		{ID: "HA 2345/67 a", Material: "Messing", Date: "um 1950"},
		{ID: "", Material: "Holz"},
	}

	stats := Compute(records, 10, 15)

	if stats.UniqueObjects != 2 {
		t.Errorf("Expected 2 unique objects, got %d", stats.UniqueObjects)
	}
	// The first occurrence of a key supplies the fields.
	if len(stats.Materials) != 2 {
		t.Fatalf("Expected 2 materials, got %v", stats.Materials)
	}
	for _, c := range stats.Materials {
		if c.Label == "Stahl" {
			t.Errorf("Duplicate record should not contribute its material, got %v", stats.Materials)
		}
	}
}

func TestComputeMaterialRanking(t *testing.T) {
	records := []table.Record{
		{ID: "A-1", Material: "GLAS, Messing"},
		{ID: "A-2", Material: "glas"},
		{ID: "A-3", Material: "Glas; Holz"},
		{ID: "A-4", Material: "Bakelit"},
		{ID: "A-5", Material: "Aluminium"},
		{ID: "A-6", Material: "nan"},
		{ID: "A-7", Material: ""},
	}

	stats := Compute(records, 2, 15)

	if len(stats.Materials) != 2 {
		t.Fatalf("Expected ranking cut to 2 entries, got %v", stats.Materials)
	}
	if stats.Materials[0].Label != "Glas" || stats.Materials[0].N != 3 {
		t.Errorf("Expected Glas x3 on top, got %+v", stats.Materials[0])
	}
	// Ties rank alphabetically.
	if stats.Materials[1].Label != "Aluminium" || stats.Materials[1].N != 1 {
		t.Errorf("Expected Aluminium x1 second, got %+v", stats.Materials[1])
	}
}

func TestComputeDecades(t *testing.T) {
	records := []table.Record{
		{ID: "B-1", Date: "um 1935"},
		{ID: "B-2", Date: "1938"},
		{ID: "B-3", Date: "1898-1910"},
		{ID: "B-4", Date: "ca. 1950"},
		{ID: "B-5", Date: "unbekannt"},
		{ID: "B-6", Date: ""},
		// Suffixed years have no trailing word boundary and stay unknown.
		{ID: "B-7", Date: "1950er Jahre"},
	}

	stats := Compute(records, 10, 15)

	want := []Count{
		{Label: "1890s", N: 1},
		{Label: "1930s", N: 2},
		{Label: "1950s", N: 1},
	}
	if len(stats.Decades) != len(want) {
		t.Fatalf("Expected %d decades, got %v", len(want), stats.Decades)
	}
	for i, w := range want {
		if stats.Decades[i] != w {
			t.Errorf("Decade %d: expected %+v, got %+v", i, w, stats.Decades[i])
		}
	}
}

func TestPrimaryMaterial(t *testing.T) {
	tests := []struct {
		name     string
		material string
		want     string
	}{
		{name: "single", material: "Glas", want: "Glas"},
		{name: "comma list", material: "Messing, Glas", want: "Messing"},
		{name: "semicolon list", material: "holz; Eisen", want: "Holz"},
		{name: "uppercase source", material: "STAHL VERNICKELT", want: "Stahl vernickelt"},
		{name: "padded", material: "  Bakelit  ", want: "Bakelit"},
		{name: "empty", material: "", want: ""},
		{name: "nan placeholder", material: "nan", want: ""},
		{name: "slash placeholder", material: "N/A", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PrimaryMaterial(tt.material)
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestComputeUniqueIDs(t *testing.T) {
	records := []table.Record{
		{ID: "HA-2/1"},
		{ID: "HA-1/1"},
		{ID: "HA-2/1"},
		{ID: ""},
	}

	stats := Compute(records, 10, 15)

	want := []string{"HA-1/1", "HA-2/1"}
	if len(stats.UniqueIDs) != len(want) {
		t.Fatalf("Expected %d ids, got %v", len(want), stats.UniqueIDs)
	}
	for i, w := range want {
		if stats.UniqueIDs[i] != w {
			t.Errorf("ID %d: expected %q, got %q", i, w, stats.UniqueIDs[i])
		}
	}
}

func TestRender(t *testing.T) {
	stats := &Stats{
		UniqueObjects: 3,
		Materials:     []Count{{Label: "Glas", N: 2}},
		Decades:       []Count{{Label: "1930s", N: 1}},
	}

	out := Render(stats)

	for _, want := range []string{"Unique objects: 3", "Material", "Glas", "Decade", "1930s"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected rendered report to contain %q, got:\n%s", want, out)
		}
	}
}

func TestStatsTable(t *testing.T) {
	stats := &Stats{
		UniqueObjects: 5,
		Materials:     []Count{{Label: "Glas", N: 2}},
		Decades:       []Count{{Label: "1930s", N: 4}},
	}

	tab := stats.Table()

	if len(tab.Rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(tab.Rows))
	}
	if tab.Rows[0][1] != "unique_objects" || tab.Rows[0][2] != "5" {
		t.Errorf("Unexpected total row: %v", tab.Rows[0])
	}
	if tab.Rows[1][0] != "material" || tab.Rows[1][1] != "Glas" {
		t.Errorf("Unexpected material row: %v", tab.Rows[1])
	}
	if tab.Rows[2][0] != "decade" || tab.Rows[2][2] != "4" {
		t.Errorf("Unexpected decade row: %v", tab.Rows[2])
	}
}

func TestIDTable(t *testing.T) {
	stats := &Stats{UniqueIDs: []string{"HA-1/1", "HA-2/1"}}

	tab := stats.IDTable()

	if len(tab.Columns) != 1 || tab.Columns[0] != "Object ID" {
		t.Fatalf("Unexpected header: %v", tab.Columns)
	}
	if len(tab.Rows) != 2 || tab.Rows[0][0] != "HA-1/1" {
		t.Errorf("Unexpected rows: %v", tab.Rows)
	}
}
