/*
2024 © Postgres.ai
*/

package sqlrewrite

import (
	"regexp"
	"strings"

	"gitlab.com/postgres-ai/database-lab/v2/pkg/log"
)

var (
	extractRegex     = regexp.MustCompile(`(?i)\bEXTRACT\s*\(\s*(\w+)\s+FROM\s+((?:[^()]|\([^()]*\))+?)\s*\)`)
	currentDateRegex = regexp.MustCompile(`(?i)\bCURRENT_DATE\b(?:\s*\(\s*\))?`)
	nowRegex         = regexp.MustCompile(`(?i)\b(?:NOW|CURRENT_TIMESTAMP)\s*\(\s*\)`)
)

// RewriteDialect maps portable date constructs to their SQL Server equivalents:
// EXTRACT(unit FROM expr) becomes YEAR/MONTH/DAY(expr) or DATEPART(unit, expr),
// CURRENT_DATE becomes CAST(GETDATE() AS DATE), NOW() becomes GETDATE().
// The original text is returned if the rewrite fails for any reason.
func RewriteDialect(sql string) (rewritten string) {
	defer func() {
		if r := recover(); r != nil {
			log.Err("failed to rewrite SQL dialect:", r)

			rewritten = sql
		}
	}()

	rewritten = extractRegex.ReplaceAllStringFunc(sql, func(match string) string {
		parts := extractRegex.FindStringSubmatch(match)
		unit, expr := strings.ToUpper(parts[1]), strings.TrimSpace(parts[2])

		switch unit {
		case "YEAR", "MONTH", "DAY":
			return unit + "(" + expr + ")"

		default:
			return "DATEPART(" + unit + ", " + expr + ")"
		}
	})

	rewritten = currentDateRegex.ReplaceAllString(rewritten, "CAST(GETDATE() AS DATE)")
	rewritten = nowRegex.ReplaceAllString(rewritten, "GETDATE()")

	return rewritten
}

// HasPortableDateConstructs reports whether the statement uses date constructs the target dialect rejects.
func HasPortableDateConstructs(sql string) bool {
	return extractRegex.MatchString(sql) || currentDateRegex.MatchString(sql) || nowRegex.MatchString(sql)
}
