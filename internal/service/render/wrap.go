package render

import (
	"strings"
	"unicode/utf8"
)

// Width is the column limit answers are reflowed to.
const Width = 85

// Reflow trims text and fills it to Width columns.
func Reflow(text string) string {
	return Fill(text, Width)
}

// Fill collapses every whitespace run into a single space and greedily packs the words
// into lines of at most width characters. Words are never split or reordered, so a word
// longer than width occupies a line of its own. A width below 1 disables wrapping.
//
// Unlike textwrap.fill, a run such as the blank line between stanzas becomes one space
// rather than one space per whitespace character, and hyphenated words are never broken
// at the hyphen.
func Fill(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	if width < 1 {
		return strings.Join(words, " ")
	}

	var b strings.Builder
	b.Grow(len(text))

	lineLen := 0
	for _, word := range words {
		wordLen := utf8.RuneCountInString(word)
		switch {
		case lineLen == 0:
		case lineLen+1+wordLen <= width:
			b.WriteByte(' ')
			lineLen++
		default:
			b.WriteByte('\n')
			lineLen = 0
		}
		b.WriteString(word)
		lineLen += wordLen
	}
	return b.String()
}

// Lines splits reflowed text back into its display lines.
func Lines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
