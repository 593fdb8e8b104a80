/*
2024 © Postgres.ai
*/

package msgproc

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/AlekSi/pointer"
	"github.com/pkg/errors"
	"gitlab.com/postgres-ai/database-lab/v2/pkg/log"

	"gitlab.com/postgres-ai/askdb/pkg/models"
	"gitlab.com/postgres-ai/askdb/pkg/sqlrewrite"
	"gitlab.com/postgres-ai/askdb/pkg/util/text"
)

// ErrAuditParse means that the auditor answer is not a verdict.
var ErrAuditParse = errors.New("failed to parse the audit verdict")

const (
	auditUserMessage       = "Audit the SQL query."
	genericAuditError      = "The query could not be validated against the database schema."
	dialectAuditError      = "The query uses date functions SQL Server does not support (EXTRACT, NOW or CURRENT_DATE)."
	resultTruncationMarker = "\n... [result data truncated]"
)

// NoResultsMessage is the canonical answer for an empty result.
const NoResultsMessage = "I searched the database but found no results matching your question. " +
	"Try rephrasing it or checking the spelling of names and values."

// notFoundProbes are phrases which show that a narration already reports an empty result.
var notFoundProbes = []string{
	"no results",
	"not found",
	"no records",
	"no data",
	"couldn't find",
	"could not find",
	"no matching",
}

// classify asks the model whether the message needs a database query.
func (r *run) classify(ctx context.Context) (bool, error) {
	answer, err := r.generate(ctx, classifierPrompt, r.question, r.history)
	if err != nil {
		return false, errors.Wrap(err, "failed to classify the message")
	}

	log.Dbg(r.prefix(), "Intent:", strings.TrimSpace(answer))

	return strings.Contains(strings.ToUpper(answer), intentQuery), nil
}

// converse answers a conversational message.
func (r *run) converse(ctx context.Context) (string, error) {
	answer, err := r.generate(ctx, conversationPrompt, r.question, r.history)
	if err != nil {
		return "", errors.Wrap(err, "failed to answer the message")
	}

	return strings.TrimSpace(answer), nil
}

// generateSQL asks the model for a statement answering the question.
func (r *run) generateSQL(ctx context.Context, schemaText string) (string, error) {
	answer, err := r.generate(ctx, generatorPrompt(schemaText, r.svc.stringDateColumns()), r.question, r.history)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate SQL")
	}

	return formatQuotes(text.StripCodeFences(answer)), nil
}

// audit checks a statement against the schema. Dialect mistakes detected locally do not need a model call.
func (r *run) audit(ctx context.Context, sql, schemaText string) (models.AuditVerdict, error) {
	r.audits++

	if sqlrewrite.HasPortableDateConstructs(sql) {
		if fixed := r.svc.normalizer.Normalize(sqlrewrite.RewriteDialect(sql)); fixed != sql {
			log.Dbg(r.prefix(), "Dialect mistakes found locally")

			return models.AuditVerdict{IsValid: false, Error: dialectAuditError, SuggestedFix: fixed}, nil
		}
	}

	answer, err := r.generate(ctx, auditorPrompt(r.question, schemaText, sql), auditUserMessage, nil)
	if err != nil {
		return models.AuditVerdict{}, errors.Wrap(err, "failed to audit SQL")
	}

	verdict, err := parseVerdict(answer)
	if err != nil {
		log.Err(r.prefix(), err)

		return models.AuditVerdict{IsValid: false, Error: genericAuditError}, nil
	}

	return verdict, nil
}

// interpret asks the model to narrate a query result.
func (r *run) interpret(ctx context.Context, sql string, result models.QueryResult) (string, error) {
	prompt := interpreterPrompt(r.question, sql, result.Columns, len(result.Rows), r.svc.resultJSON(result))

	answer, err := r.generate(ctx, prompt, r.question, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to interpret the result")
	}

	answer = strings.TrimSpace(answer)

	if len(result.Rows) == 0 && !reportsNotFound(answer) {
		log.Dbg(r.prefix(), "Empty result narration replaced")
		return NoResultsMessage, nil
	}

	return answer, nil
}

// parseVerdict extracts a verdict from a model answer. A verdict without isValid is invalid.
func parseVerdict(answer string) (models.AuditVerdict, error) {
	cleaned := text.StripCodeFences(answer)

	start, end := strings.Index(cleaned, "{"), strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return models.AuditVerdict{}, errors.Wrap(ErrAuditParse, "no JSON object found")
	}

	var raw struct {
		IsValid      *bool  `json:"isValid"`
		Error        string `json:"error"`
		SuggestedFix string `json:"suggestedFix"`
	}

	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &raw); err != nil {
		return models.AuditVerdict{}, errors.Wrap(ErrAuditParse, err.Error())
	}

	verdict := models.AuditVerdict{
		IsValid:      pointer.GetBool(raw.IsValid),
		Error:        strings.TrimSpace(raw.Error),
		SuggestedFix: formatQuotes(text.StripCodeFences(raw.SuggestedFix)),
	}

	if raw.IsValid == nil && verdict.Error == "" {
		verdict.Error = genericAuditError
	}

	return verdict, nil
}

// resultJSON renders result rows for the interpreter within the configured bounds.
func (s *ProcessingService) resultJSON(result models.QueryResult) string {
	rows := result.Rows
	if s.config.MaxResultRows > 0 && len(rows) > s.config.MaxResultRows {
		rows = rows[:s.config.MaxResultRows]
	}

	bounded := make([]models.Row, 0, len(rows))

	for _, row := range rows {
		boundedRow := make(models.Row, len(row))

		for column, value := range row {
			if str, ok := value.(string); ok && s.config.MaxCellChars > 0 {
				value, _ = text.CutText(str, s.config.MaxCellChars, text.Ellipsis)
			}

			boundedRow[column] = value
		}

		bounded = append(bounded, boundedRow)
	}

	data, err := json.Marshal(bounded)
	if err != nil {
		log.Err("failed to encode result rows:", err)
		return "[]"
	}

	resultJSON := string(data)

	if s.config.MaxResultJSONSize > 0 {
		resultJSON, _ = text.CutBytes(resultJSON, s.config.MaxResultJSONSize, resultTruncationMarker)
	}

	return resultJSON
}

func reportsNotFound(narration string) bool {
	lower := strings.ToLower(narration)

	for _, probe := range notFoundProbes {
		if strings.Contains(lower, probe) {
			return true
		}
	}

	return false
}

// formatQuotes replaces typographic quotes which models and editors substitute for straight ones.
func formatQuotes(sql string) string {
	sql = strings.ReplaceAll(sql, "“", "\"")
	sql = strings.ReplaceAll(sql, "”", "\"")
	sql = strings.ReplaceAll(sql, "‘", "'")
	sql = strings.ReplaceAll(sql, "’", "'")

	return sql
}
