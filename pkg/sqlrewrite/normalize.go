/*
2024 © Postgres.ai
*/

// Package sqlrewrite provides deterministic text rewrites of generated SQL statements.
package sqlrewrite

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"gitlab.com/postgres-ai/database-lab/v2/pkg/log"
)

// DefaultStringDateColumns lists payment columns that keep dates as text.
var DefaultStringDateColumns = []string{"CreatedOn", "ModifiedOn", "PaymentDate", "DueDate", "ChequeDate"}

// safeDateExpr is the conversion applied to string-typed date columns.
const safeDateExpr = "TRY_CONVERT(DATETIME, %s, 120)"

type columnRule struct {
	datePart *regexp.Regexp
	convert  *regexp.Regexp
}

// Normalizer rewrites known dialect mistakes around string-typed date columns.
type Normalizer struct {
	rules []columnRule
}

// NewNormalizer creates a normalizer for the given string-typed date columns.
// The default column set is used when none given.
func NewNormalizer(columns []string) *Normalizer {
	if len(columns) == 0 {
		columns = DefaultStringDateColumns
	}

	n := &Normalizer{rules: make([]columnRule, 0, len(columns))}

	for _, column := range columns {
		column = strings.TrimSpace(column)
		if column == "" {
			continue
		}

		ref := columnRef(column)

		n.rules = append(n.rules, columnRule{
			datePart: regexp.MustCompile(`(?i)\b(YEAR|MONTH|DAY)\s*\(\s*(` + ref + `)\s*\)`),
			convert:  regexp.MustCompile(`(?i)\bCONVERT\s*\(\s*(?:date|datetime)\s*,\s*(` + ref + `)\s*\)`),
		})
	}

	return n
}

// columnRef matches a plain, bracket-quoted or table-qualified reference to the column.
func columnRef(column string) string {
	name := regexp.QuoteMeta(column)

	return `(?:\[?\w+\]?\.)?\[?` + name + `\]?`
}

// Normalize wraps string-typed date columns into a safe conversion.
// A column already wrapped into TRY_CONVERT is left as is, so the rewrite is idempotent.
// The original text is returned if the rewrite fails for any reason.
func (n *Normalizer) Normalize(sql string) (normalized string) {
	defer func() {
		if r := recover(); r != nil {
			log.Err("failed to normalize SQL:", r)

			normalized = sql
		}
	}()

	normalized = sql

	for _, rule := range n.rules {
		normalized = rule.convert.ReplaceAllStringFunc(normalized, func(match string) string {
			parts := rule.convert.FindStringSubmatch(match)
			return fmt.Sprintf(safeDateExpr, parts[1])
		})

		normalized = rule.datePart.ReplaceAllStringFunc(normalized, func(match string) string {
			parts := rule.datePart.FindStringSubmatch(match)
			return strings.ToUpper(parts[1]) + "(" + fmt.Sprintf(safeDateExpr, parts[2]) + ")"
		})
	}

	if normalized != sql {
		log.Dbg("SQL normalized:", Diff(sql, normalized))
	}

	return normalized
}

// Diff renders a human-readable difference between two statements.
func Diff(before, after string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)

	return dmp.DiffPrettyText(diffs)
}
