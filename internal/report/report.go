// Package report computes collection statistics over a catalogue table:
// unique object counts, the leading materials, and the spread of objects
// across decades.
package report

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	gptable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/collection-tools/registrar/internal/table"
)

// Count is one labelled bucket in a ranking.
type Count struct {
	Label string
	N     int
}

// Stats is the computed report. Materials are ranked by frequency,
// decades listed chronologically.
type Stats struct {
	UniqueObjects int
	Materials     []Count
	Decades       []Count
	UniqueIDs     []string
}

var yearPattern = regexp.MustCompile(`\b\d{4}\b`)

// Compute builds the statistics over unique objects. Records sharing a
// lookup key count once, with the first occurrence supplying the fields.
func Compute(records []table.Record, topMaterials, topDecades int) *Stats {
	if topMaterials <= 0 {
		topMaterials = 10
	}
	if topDecades <= 0 {
		topDecades = 15
	}

	seen := make(map[string]bool)
	materials := make(map[string]int)
	decades := make(map[string]int)
	idSet := make(map[string]bool)
	var ids []string

	for _, rec := range records {
		key := rec.Key()
		if key == "" {
			continue
		}
		if !idSet[rec.ID] {
			idSet[rec.ID] = true
			ids = append(ids, rec.ID)
		}
		if seen[key] {
			continue
		}
		seen[key] = true

		if m := PrimaryMaterial(rec.Material); m != "" {
			materials[m]++
		}
		if decade, ok := decadeOf(rec.Date); ok {
			decades[decade]++
		}
	}

	sort.Strings(ids)

	stats := &Stats{UniqueObjects: len(seen), UniqueIDs: ids}
	stats.Materials = top(materials, topMaterials)
	stats.Decades = top(decades, topDecades)
	sort.Slice(stats.Decades, func(i, j int) bool {
		return stats.Decades[i].Label < stats.Decades[j].Label
	})
	return stats
}

// PrimaryMaterial reduces a material cell to its first listed material,
// capitalised. Empty and placeholder cells reduce to "".
func PrimaryMaterial(material string) string {
	segment := material
	if i := strings.IndexAny(material, ",;"); i >= 0 {
		segment = material[:i]
	}
	segment = strings.TrimSpace(segment)
	if segment == "" || strings.EqualFold(segment, "nan") || strings.EqualFold(segment, "n/a") {
		return ""
	}
	return capitalize(segment)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// decadeOf finds the first 4-digit year in a free-text date cell and
// rounds it down to its decade.
func decadeOf(date string) (string, bool) {
	match := yearPattern.FindString(date)
	if match == "" {
		return "", false
	}
	year, err := strconv.Atoi(match)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%ds", year/10*10), true
}

func top(counts map[string]int, n int) []Count {
	out := make([]Count, 0, len(counts))
	for label, count := range counts {
		out = append(out, Count{Label: label, N: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].N != out[j].N {
			return out[i].N > out[j].N
		}
		return out[i].Label < out[j].Label
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Render lays the report out as console tables.
func Render(stats *Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Unique objects: %d\n", stats.UniqueObjects)

	if len(stats.Materials) > 0 {
		b.WriteString(renderCounts("Material", stats.Materials))
		b.WriteByte('\n')
	}
	if len(stats.Decades) > 0 {
		b.WriteString(renderCounts("Decade", stats.Decades))
		b.WriteByte('\n')
	}
	return b.String()
}

func renderCounts(label string, counts []Count) string {
	tw := gptable.NewWriter()
	tw.SetStyle(gptable.StyleRounded)
	tw.AppendHeader(gptable.Row{label, "Objects"})
	for _, c := range counts {
		tw.AppendRow(gptable.Row{c.Label, c.N})
	}
	tw.SetColumnConfigs([]gptable.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

// Table lays the stats out under the report.csv header.
func (s *Stats) Table() *table.Table {
	t := table.New([]string{"section", "label", "count"})
	t.AppendRow([]string{"total", "unique_objects", strconv.Itoa(s.UniqueObjects)})
	for _, c := range s.Materials {
		t.AppendRow([]string{"material", c.Label, strconv.Itoa(c.N)})
	}
	for _, c := range s.Decades {
		t.AppendRow([]string{"decade", c.Label, strconv.Itoa(c.N)})
	}
	return t
}

// IDTable lays the unique identifiers out for export.
func (s *Stats) IDTable() *table.Table {
	t := table.New([]string{"Object ID"})
	for _, id := range s.UniqueIDs {
		t.AppendRow([]string{id})
	}
	return t
}
