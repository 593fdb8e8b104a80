/*
2019 © Postgres.ai
*/

// Package querier provides the guarded read-only query execution.
package querier

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgconn"
	"github.com/lib/pq"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"gitlab.com/postgres-ai/database-lab/v2/pkg/log"

	"gitlab.com/postgres-ai/askdb/pkg/config"
	"gitlab.com/postgres-ai/askdb/pkg/models"
)

const (
	// SyntaxPQErrorCode defines the pq syntax error code.
	SyntaxPQErrorCode = "42601"

	// nonBreakingSpace defines the ASCII code 160 that often comes from copied text.
	nonBreakingSpace = "\u00a0"
)

// Queryer describes the part of a database handle the executor needs.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// Executor runs validated read-only statements and collects a bounded result.
type Executor struct {
	db      Queryer
	timeout time.Duration
	maxRows int
}

// NewExecutor creates a new guarded executor.
func NewExecutor(db Queryer, cfg config.Executor) *Executor {
	return &Executor{
		db:      db,
		timeout: cfg.Timeout,
		maxRows: cfg.MaxRows,
	}
}

// Execute validates and runs a statement. It never returns an error: rejections and engine failures
// are reported in the result. Rows beyond the configured limit are dropped silently.
func (e *Executor) Execute(ctx context.Context, query string) models.QueryResult {
	statement, err := prepareStatement(query)
	if err != nil {
		log.Msg("Query rejected:", err)
		return models.NewFailedResult(err.Error())
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	log.Dbg("DB query:", statement)

	result, err := e.runQuery(ctx, statement)
	if err != nil {
		log.Err("DB query:", err)
		return models.NewFailedResult(clarifyQueryError(statement, err).Error())
	}

	return result
}

func (e *Executor) runQuery(ctx context.Context, statement string) (models.QueryResult, error) {
	rows, err := e.db.QueryContext(ctx, statement)
	if err != nil {
		return models.QueryResult{}, err
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return models.QueryResult{}, errors.Wrap(err, "failed to get columns")
	}

	columns = uniqueColumnNames(columns)

	result := models.QueryResult{
		Success: true,
		Columns: columns,
		Rows:    make([]models.Row, 0),
	}

	for (e.maxRows <= 0 || len(result.Rows) < e.maxRows) && rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))

		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return models.QueryResult{}, errors.Wrap(err, "failed to scan row")
		}

		row := make(models.Row, len(columns))
		for i, column := range columns {
			row[column] = plainValue(values[i])
		}

		result.Rows = append(result.Rows, row)
	}

	if err := rows.Err(); err != nil {
		log.Err("DB query traversal:", err)
		return models.QueryResult{}, err
	}

	return result, nil
}

// uniqueColumnNames suffixes repeated names, e.g. the Id columns of joined tables become Id and Id_2.
func uniqueColumnNames(columns []string) []string {
	taken := make(map[string]struct{}, len(columns))
	for _, column := range columns {
		taken[column] = struct{}{}
	}

	seen := make(map[string]int, len(columns))
	unique := make([]string, 0, len(columns))

	for _, column := range columns {
		seen[column]++

		name := column

		if seen[column] > 1 {
			for n := seen[column]; ; n++ {
				name = fmt.Sprintf("%s_%d", column, n)
				if _, ok := taken[name]; !ok {
					break
				}
			}

			taken[name] = struct{}{}
		}

		unique = append(unique, name)
	}

	return unique
}

// plainValue converts driver values to JSON-friendly ones.
func plainValue(value interface{}) interface{} {
	switch v := value.(type) {
	case []byte:
		return string(v)

	default:
		return v
	}
}

// RenderTable renders a query result in the psql style.
func RenderTable(tableString *strings.Builder, result models.QueryResult) {
	if len(result.Columns) == 0 || len(result.Rows) == 0 {
		tableString.WriteString("No results.\n")
		return
	}

	table := tablewriter.NewWriter(tableString)
	table.SetBorder(false)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader(result.Columns)

	for _, row := range result.Rows {
		cells := make([]string, 0, len(result.Columns))

		for _, column := range result.Columns {
			cells = append(cells, FormatValue(row[column]))
		}

		table.Append(cells)
	}

	table.Render()
}

// FormatValue renders a single result value.
func FormatValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "NULL"

	case time.Time:
		return v.Format(time.RFC3339)

	default:
		return fmt.Sprint(v)
	}
}

func clarifyQueryError(query string, err error) error {
	if err == nil {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == SyntaxPQErrorCode && strings.Contains(query, nonBreakingSpace) {
		return withNonBreakingSpaceHint(err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == SyntaxPQErrorCode && strings.Contains(query, nonBreakingSpace) {
		return withNonBreakingSpaceHint(err)
	}

	return err
}

func withNonBreakingSpaceHint(err error) error {
	return errors.WithMessage(err,
		`There are "non-breaking spaces" in your input (ASCII code 160). Repeat your request using regular spaces instead (ASCII code 32).`)
}
