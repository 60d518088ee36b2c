package caption

import (
	"strings"
	"unicode/utf8"
)

// unwantedPhrases are openers models prepend despite instructions, in the
// four supported languages.
var unwantedPhrases = []string{
	"this image shows", "in this scene", "in the image", "the image depicts", "here we see", "this is a",
	"dieses bild zeigt", "in dieser szene", "im bild ist", "die abbildung zeigt", "auf diesem bild", "man sieht hier",
	"ten obraz przedstawia", "na tej scenie", "na zdjęciu", "zdjęcie przedstawia", "tu widzimy", "jest to",
	"šis paveikslas rodo", "šioje scenoje", "nuotraukoje", "nuotrauka vaizduoja", "čia matome", "tai yra",
}

// Reply holds the parsed parts of a provider answer.
type Reply struct {
	Headline string
	Caption  string
	Category string
}

// ParseReply extracts the tagged lines from a provider answer. The caption
// may run over several lines; untagged lines after the headline or caption
// tag accumulate into it, the way models actually answer.
func ParseReply(text string, lang Language) Reply {
	var reply Reply
	var captionLines []string
	seenHeadline := false

	for _, line := range strings.Split(text, "\n") {
		// Models like to bold the tags.
		line = strings.TrimSpace(strings.Trim(strings.TrimSpace(line), "*"))
		if line == "" {
			continue
		}
		if v, ok := tagValue(line, lang.HeadlineTag); ok {
			reply.Headline = v
			seenHeadline = true
			continue
		}
		if v, ok := tagValue(line, lang.CaptionTag); ok {
			captionLines = append(captionLines, v)
			continue
		}
		if v, ok := tagValue(line, lang.CategoryTag); ok {
			reply.Category = v
			continue
		}
		if seenHeadline || len(captionLines) > 0 {
			captionLines = append(captionLines, line)
		}
	}
	reply.Caption = strings.TrimSpace(strings.Join(captionLines, " "))
	return reply
}

func tagValue(line, tag string) (string, bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", false
	}
	if !strings.EqualFold(strings.TrimSpace(line[:idx]), tag) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimLeft(line[idx+1:], "* ")), true
}

// Clean strips leading boilerplate openers and trailing punctuation from
// caption text.
func Clean(text string) string {
	caption := strings.TrimSpace(text)
	for _, phrase := range unwantedPhrases {
		if strings.HasPrefix(strings.ToLower(caption), phrase) {
			caption = strings.TrimSpace(caption[len(phrase):])
			caption = strings.TrimLeft(caption, ",:. ")
		}
	}
	return strings.TrimRight(caption, ".,;!?")
}

// Usable reports whether cleaned caption text is worth keeping.
func Usable(text string, minLength int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) >= minLength
}
