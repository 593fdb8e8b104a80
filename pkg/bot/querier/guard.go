/*
2024 © Postgres.ai
*/

package querier

import (
	"fmt"
	"regexp"
	"strings"
)

// Names of the checks a statement can fail.
const (
	CheckNotAReadQuery            = "NotAReadQuery"
	CheckForbiddenKeyword         = "ForbiddenKeyword"
	CheckInjectionPatternDetected = "InjectionPatternDetected"
	CheckMultipleStatements       = "MultipleStatements"
)

var (
	selectRegex           = regexp.MustCompile(`(?i)^SELECT\b`)
	forbiddenKeywordRegex = regexp.MustCompile(`(?i)\b(INSERT|UPDATE|DELETE|DROP|ALTER|CREATE|TRUNCATE|EXEC|EXECUTE|INTO)\b`)
	procedureCallRegex    = regexp.MustCompile(`(?i)\b(sp|xp)_`)
	commentMarkers        = []string{"--", "/*", "*/"}
)

// RejectionError describes a statement refused by the read-only guard.
type RejectionError struct {
	Check  string
	Detail string
}

// Error returns the text of a rejection naming the failed check.
func (e *RejectionError) Error() string {
	return fmt.Sprintf("query rejected by the %s check: %s", e.Check, e.Detail)
}

// prepareStatement validates a statement and returns it without surrounding whitespace and a trailing semicolon.
func prepareStatement(query string) (string, error) {
	statement := strings.TrimSpace(query)
	statement = strings.TrimSpace(strings.TrimSuffix(statement, ";"))

	if !selectRegex.MatchString(statement) {
		return "", &RejectionError{Check: CheckNotAReadQuery, Detail: "only SELECT statements are allowed"}
	}

	if keyword := forbiddenKeywordRegex.FindString(statement); keyword != "" {
		return "", &RejectionError{
			Check:  CheckForbiddenKeyword,
			Detail: fmt.Sprintf("the statement contains the forbidden keyword %s", strings.ToUpper(keyword)),
		}
	}

	for _, marker := range commentMarkers {
		if strings.Contains(statement, marker) {
			return "", &RejectionError{
				Check:  CheckInjectionPatternDetected,
				Detail: fmt.Sprintf("the statement contains the comment marker %q", marker),
			}
		}
	}

	if prefix := procedureCallRegex.FindString(statement); prefix != "" {
		return "", &RejectionError{
			Check:  CheckInjectionPatternDetected,
			Detail: fmt.Sprintf("the statement contains the stored procedure prefix %q", strings.ToLower(prefix)),
		}
	}

	if strings.Contains(statement, ";") {
		return "", &RejectionError{Check: CheckMultipleStatements, Detail: "only a single statement is allowed"}
	}

	return statement, nil
}
