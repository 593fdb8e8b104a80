/*
2024 © Postgres.ai
*/

package sqlrewrite

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	countQueryRegex  = regexp.MustCompile(`(?is)^\s*SELECT\s+COUNT\s*\(`)
	countPrefixRegex = regexp.MustCompile(`(?is)^\s*SELECT\s+COUNT\s*\([^)]*\)\s*(?:AS\s+\[?\w+\]?|\[?\w+\]?)?\s+(FROM\b.*)$`)
	countBlindRegex  = regexp.MustCompile(`(?is)SELECT\s+COUNT\s*\([^)]*\)`)
)

// IsCountQuery reports whether the statement starts with a COUNT aggregate.
func IsCountQuery(sql string) bool {
	return countQueryRegex.MatchString(sql)
}

// DeriveRowQuery turns an outermost COUNT statement into a statement returning the counted rows:
// the SELECT COUNT(...) [AS alias] prefix is replaced with SELECT * and the FROM clause is kept verbatim.
// Grouped statements are left as is since their rows are the counts themselves.
// The second value reports whether a derivation happened.
func DeriveRowQuery(sql string) (string, bool) {
	if !IsCountQuery(sql) || hasTopLevelKeyword(sql, "GROUP BY") || hasTopLevelKeyword(sql, "HAVING") {
		return sql, false
	}

	if parts := countPrefixRegex.FindStringSubmatch(sql); parts != nil {
		return "SELECT * " + parts[1], true
	}

	if pos := topLevelKeyword(sql, "FROM"); pos >= 0 {
		return "SELECT * " + sql[pos:], true
	}

	derived := countBlindRegex.ReplaceAllString(sql, "SELECT *")

	return derived, derived != sql
}

func hasTopLevelKeyword(sql, keyword string) bool {
	return topLevelKeyword(sql, keyword) >= 0
}

// topLevelKeyword returns the byte offset of the first whole-word keyword outside parentheses
// and string literals, or -1. Whitespace inside the keyword matches any whitespace run.
func topLevelKeyword(sql, keyword string) int {
	words := strings.Fields(asciiUpper(keyword))
	upper := asciiUpper(sql)

	depth := 0
	inString := false

	for i := 0; i < len(upper); i++ {
		switch c := upper[i]; {
		case c == '\'':
			inString = !inString
			continue

		case inString:
			continue

		case c == '(':
			depth++
			continue

		case c == ')':
			if depth > 0 {
				depth--
			}

			continue
		}

		if depth != 0 || (i > 0 && isWordByte(upper[i-1])) {
			continue
		}

		if end, ok := matchWords(upper, i, words); ok && (end == len(upper) || !isWordByte(upper[end])) {
			return i
		}
	}

	return -1
}

func matchWords(s string, pos int, words []string) (int, bool) {
	for idx, word := range words {
		if idx > 0 {
			start := pos
			for pos < len(s) && unicode.IsSpace(rune(s[pos])) {
				pos++
			}

			if pos == start {
				return 0, false
			}
		}

		if !strings.HasPrefix(s[pos:], word) {
			return 0, false
		}

		pos += len(word)
	}

	return pos, true
}

// asciiUpper upper-cases ASCII letters only, so byte offsets stay valid for the original text.
func asciiUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}

	return string(b)
}

func isWordByte(b byte) bool {
	return b == '_' || b >= '0' && b <= '9' || b >= 'A' && b <= 'Z' || b >= 'a' && b <= 'z' || b >= 0x80
}
