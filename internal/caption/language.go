package caption

import "strings"

// Language names the output language and the tags a provider must use so
// its reply parses mechanically.
type Language struct {
	Name        string
	HeadlineTag string
	CaptionTag  string
	CategoryTag string
}

// Languages lists the supported output languages.
var Languages = []Language{
	{Name: "Deutsch", HeadlineTag: "TITEL", CaptionTag: "BESCHREIBUNG", CategoryTag: "KATEGORIE"},
	{Name: "English", HeadlineTag: "HEADLINE", CaptionTag: "DESCRIPTION", CategoryTag: "CATEGORY"},
	{Name: "Polski", HeadlineTag: "NAGŁÓWEK", CaptionTag: "OPIS", CategoryTag: "KATEGORIA"},
	{Name: "Lietuvių", HeadlineTag: "ANTRAŠTĖ", CaptionTag: "APRAŠYMAS", CategoryTag: "KATEGORIJA"},
}

// LanguageFor resolves a configured language name, accepting native and
// English spellings. Unknown names fall back to Deutsch, the language of
// the collection itself.
func LanguageFor(name string) Language {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "english", "englisch":
		return Languages[1]
	case "polski", "polish", "polnisch":
		return Languages[2]
	case "lietuvių", "lietuviu", "lietuviškai", "lithuanian", "litauisch":
		return Languages[3]
	default:
		return Languages[0]
	}
}
