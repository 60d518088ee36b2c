package caption

import (
	"strings"

	"github.com/collection-tools/registrar/internal/table"
)

// Fallback builds the caption used when the provider fails or returns
// unusable text. Only database facts go in, so two runs over the same
// record always agree, and the result is never empty.
func Fallback(rec table.Record) (headline, caption string) {
	headline = "Untitled Object"
	if rec.Material != "" {
		headline = rec.Material
	} else if rec.Manufacturer != "" {
		headline = rec.Manufacturer
	}

	var b strings.Builder
	if rec.Manufacturer != "" {
		b.WriteString(rec.Manufacturer)
		b.WriteByte(' ')
	}
	if rec.Material != "" {
		b.WriteString(rec.Material)
		b.WriteByte(' ')
	}
	b.WriteString("item")
	if rec.Date != "" {
		b.WriteString(", dated ")
		b.WriteString(rec.Date)
	}
	if rec.Dimensions != "" {
		b.WriteString(", ")
		b.WriteString(rec.Dimensions)
	}

	caption = b.String()
	if caption == "item" {
		if rec.ID != "" {
			caption = "Catalogue item " + rec.ID
		} else {
			caption = "Catalogue item without recorded details"
		}
	}
	return headline, caption
}
