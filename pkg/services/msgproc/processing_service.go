/*
2019 © Postgres.ai
*/

// Package msgproc provides the chat message processing pipeline.
package msgproc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hako/durafmt"
	"github.com/pkg/errors"
	"github.com/rs/xid"
	"gitlab.com/postgres-ai/database-lab/v2/pkg/log"

	"gitlab.com/postgres-ai/askdb/pkg/config"
	"gitlab.com/postgres-ai/askdb/pkg/llm"
	"gitlab.com/postgres-ai/askdb/pkg/models"
	"gitlab.com/postgres-ai/askdb/pkg/sqlrewrite"
)

// State defines a stage of the message processing.
type State string

// Pipeline states.
const (
	StateClassifying     State = "Classifying"
	StateConversing      State = "Conversing"
	StateGenerating      State = "Generating"
	StateNormalizing     State = "Normalizing"
	StateAuditing        State = "Auditing"
	StateReAuditing      State = "ReAuditing"
	StateExecuting       State = "Executing"
	StateInterpreting    State = "Interpreting"
	StateDone            State = "Done"
	StateRejected        State = "Rejected"
	StateExecutionFailed State = "ExecutionFailed"
	StateFailed          State = "Failed"
)

// ErrEmptyMessage means that there is nothing to process.
var ErrEmptyMessage = errors.New("message cannot be empty")

// SchemaSource provides the schema text given to the model.
type SchemaSource interface {
	SchemaText(ctx context.Context) string
}

// QueryExecutor runs a read-only statement.
type QueryExecutor interface {
	Execute(ctx context.Context, sql string) models.QueryResult
}

// ProcessingService turns chat messages into answers backed by database queries.
type ProcessingService struct {
	generator  llm.Generator
	schema     SchemaSource
	executor   QueryExecutor
	normalizer *sqlrewrite.Normalizer
	delayer    Delayer
	config     config.Pipeline
}

// Result describes the outcome of a processed message.
type Result struct {
	RequestID string
	State     State
	Response  *models.ChatResponse

	// SQL is the statement shown to the user, ExecutedSQL is the statement that actually ran.
	SQL         string
	ExecutedSQL string
	Audits      int
}

// NewProcessingService creates a new processing service.
func NewProcessingService(generator llm.Generator, schema SchemaSource, executor QueryExecutor, delayer Delayer,
	cfg config.Pipeline) *ProcessingService {
	if delayer == nil {
		delayer = FixedDelay(cfg.StageDelay)
	}

	return &ProcessingService{
		generator:  generator,
		schema:     schema,
		executor:   executor,
		normalizer: sqlrewrite.NewNormalizer(cfg.StringDateColumns),
		delayer:    delayer,
		config:     cfg,
	}
}

func (s *ProcessingService) stringDateColumns() []string {
	if len(s.config.StringDateColumns) == 0 {
		return sqlrewrite.DefaultStringDateColumns
	}

	return s.config.StringDateColumns
}

// run keeps the state of a single message processing.
type run struct {
	svc      *ProcessingService
	id       string
	question string
	history  []models.ChatTurn
	state    State
	calls    int
	audits   int
}

func (r *run) prefix() string {
	return "[" + r.id + "]"
}

func (r *run) enter(state State) {
	log.Dbg(r.prefix(), "State:", r.state, "->", state)
	r.state = state
}

// generate calls the model, pausing before every call but the first one.
func (r *run) generate(ctx context.Context, systemPrompt, userMessage string, history []models.ChatTurn) (string, error) {
	if r.calls > 0 {
		if err := r.svc.delayer.Delay(ctx); err != nil {
			return "", errors.Wrap(err, "processing interrupted")
		}
	}

	r.calls++

	started := time.Now()
	answer, err := r.svc.generator.Generate(ctx, systemPrompt, userMessage, history)

	log.Dbg(r.prefix(), r.state, "model call took", durafmt.Parse(time.Since(started)).String())

	return answer, err
}

// ProcessMessage runs the message through the pipeline. Validation and execution failures are reported
// in the response; an error is returned only when no answer can be given at all.
func (s *ProcessingService) ProcessMessage(ctx context.Context, message string, history []models.ChatTurn) (result *Result, err error) {
	r := &run{
		svc:      s,
		id:       xid.New().String(),
		question: strings.TrimSpace(message),
		history:  history,
		state:    StateClassifying,
	}

	started := time.Now()

	defer func() {
		if p := recover(); p != nil {
			log.Err(r.prefix(), "pipeline panic:", p)

			result, err = nil, errors.Errorf("message processing failed at the %s stage: %v", r.state, p)
		}

		if err != nil {
			log.Err(r.prefix(), "Failed at", r.state, err)
			r.state = StateFailed
		}

		log.Msg(r.prefix(), "Message processed in", durafmt.Parse(time.Since(started)).String(), "with state", r.state)
	}()

	if r.question == "" {
		return nil, ErrEmptyMessage
	}

	return s.process(ctx, r)
}

func (s *ProcessingService) process(ctx context.Context, r *run) (*Result, error) {
	needsQuery, err := r.classify(ctx)
	if err != nil {
		return nil, err
	}

	if !needsQuery {
		r.enter(StateConversing)

		answer, err := r.converse(ctx)
		if err != nil {
			return nil, err
		}

		r.enter(StateDone)

		return r.result(models.NewChatResponse(answer), ""), nil
	}

	r.enter(StateGenerating)

	schemaText := s.schema.SchemaText(ctx)

	sql, err := r.generateSQL(ctx, schemaText)
	if err != nil {
		return nil, err
	}

	r.enter(StateNormalizing)

	sql = s.normalizer.Normalize(sql)

	r.enter(StateAuditing)

	verdict, err := r.audit(ctx, sql, schemaText)
	if err != nil {
		return nil, err
	}

	if !verdict.IsValid && verdict.HasFix() {
		r.enter(StateReAuditing)

		sql = s.normalizer.Normalize(verdict.SuggestedFix)

		verdict, err = r.audit(ctx, sql, schemaText)
		if err != nil {
			return nil, err
		}
	}

	if !verdict.IsValid {
		r.enter(StateRejected)

		response := models.NewChatResponse(rejectionMessage(verdict, sql))
		response.SQL = sql

		return r.result(response, sql), nil
	}

	executedSQL := sql
	if derived, ok := sqlrewrite.DeriveRowQuery(sql); ok {
		log.Dbg(r.prefix(), "Row query derived:", derived)
		executedSQL = derived
	}

	r.enter(StateExecuting)

	queryResult := s.executor.Execute(ctx, executedSQL)

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "processing interrupted")
	}

	if !queryResult.Success {
		r.enter(StateExecutionFailed)

		response := models.NewChatResponse(executionFailureMessage(queryResult.Error, executedSQL))
		response.SQL = sql
		response.QueryResult = &queryResult

		res := r.result(response, sql)
		res.ExecutedSQL = executedSQL

		return res, nil
	}

	r.enter(StateInterpreting)

	narration, err := r.interpret(ctx, sql, queryResult)
	if err != nil {
		return nil, err
	}

	r.enter(StateDone)

	response := models.NewChatResponse(narration)
	response.SQL = sql
	response.QueryResult = &queryResult

	res := r.result(response, sql)
	res.ExecutedSQL = executedSQL

	return res, nil
}

func (r *run) result(response *models.ChatResponse, sql string) *Result {
	return &Result{
		RequestID: r.id,
		State:     r.state,
		Response:  response,
		SQL:       sql,
		Audits:    r.audits,
	}
}

func rejectionMessage(verdict models.AuditVerdict, sql string) string {
	reason := verdict.Error
	if reason == "" {
		reason = genericAuditError
	}

	return fmt.Sprintf("I could not build a valid query for your question.\n\nValidation error: %s\n\nLast attempted SQL:\n%s",
		reason, sql)
}

func executionFailureMessage(errText, sql string) string {
	return fmt.Sprintf("The query failed to run against the database.\n\nError: %s\n\nAttempted SQL:\n%s", errText, sql)
}
