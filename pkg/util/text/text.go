// Package text provides helpers to bound and clean up free text.
package text

import (
	"regexp"
	"strings"
)

// Ellipsis marks a text that has been cut.
const Ellipsis = "..."

// CutText cuts length of a text if it exceeds specified size in characters. Specifies was text cut or not.
// The separator is included in the size of the result.
func CutText(text string, size int, separator string) (string, bool) {
	runes := []rune(text)
	if len(runes) <= size {
		return text, false
	}

	keep := size - len([]rune(separator))
	if keep < 0 {
		keep = 0
	}

	return string(runes[:keep]) + separator, true
}

// CutBytes cuts a text to the specified number of bytes without splitting a multibyte character
// and appends the marker.
func CutBytes(text string, size int, marker string) (string, bool) {
	if len(text) <= size {
		return text, false
	}

	cut := size
	for cut > 0 && !isRuneStart(text[cut]) {
		cut--
	}

	return text[:cut] + marker, true
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

var codeFenceRegex = regexp.MustCompile("(?i)^```(?:sql|tsql|mssql|json)?\\s*|\\s*```$")

// StripCodeFences removes leading and trailing markdown code fences and trims whitespace.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = codeFenceRegex.ReplaceAllString(s, "")

	return strings.TrimSpace(s)
}
