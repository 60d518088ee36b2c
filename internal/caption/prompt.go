package caption

import (
	"fmt"
	"strings"

	"github.com/collection-tools/registrar/internal/table"
)

// DefaultCategories is the fixed list offered to the provider when
// categorisation is requested.
var DefaultCategories = []string{
	"Measurement & Testing",
	"Communication & Transmission",
	"Power & Electrical",
	"Audio/Visual",
	"Data Processing",
	"Mechanical Component",
	"Other",
}

// BuildPrompt writes the curator instruction for one record. The database
// facts are presented as binding so the model does not overrule them from
// what it sees, and the reply format is pinned to tagged lines.
func BuildPrompt(rec table.Record, lang Language, hasImages bool, categories []string) string {
	var b strings.Builder

	b.WriteString("You are an experienced museum curator and art historian writing the final public exhibition label for a collection object.\n")
	if hasImages {
		b.WriteString("Analyze the attached photographs and combine what you see with the database facts below. The database facts are binding; do not contradict them. Ignore photographic qualities such as lighting or angle, and do not mention the photographs themselves.\n")
	} else {
		b.WriteString("No photographs are available for this object. Write from the database facts below alone; they are binding.\n")
	}

	b.WriteString("\nDatabase facts:\n")
	fmt.Fprintf(&b, "- Object ID: %s\n", orNA(rec.ID))
	fmt.Fprintf(&b, "- Manufacturer: %s\n", orNA(rec.Manufacturer))
	fmt.Fprintf(&b, "- Material: %s\n", orNA(rec.Material))
	fmt.Fprintf(&b, "- Dimensions: %s\n", orNA(rec.Dimensions))
	fmt.Fprintf(&b, "- Date: %s\n", orNA(rec.Date))

	b.WriteString("\nWrite a concise, engaging wall-label description of 70-90 words. Academically grounded but accessible to a broad audience. Do not quote exact measurements in the text.\n")

	fmt.Fprintf(&b, "\nAnswer in %s, using exactly this format:\n", lang.Name)
	fmt.Fprintf(&b, "%s: [a short, compelling title]\n", lang.HeadlineTag)
	fmt.Fprintf(&b, "%s: [the description]\n", lang.CaptionTag)
	if len(categories) > 0 {
		fmt.Fprintf(&b, "%s: [the one most fitting category from: %s]\n", lang.CategoryTag, strings.Join(categories, ", "))
	}
	return b.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
