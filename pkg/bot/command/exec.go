/*
2019 © Postgres.ai
*/

// Package command provides command-line chat commands.
package command

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hako/durafmt"
	"github.com/pkg/errors"
	"gitlab.com/postgres-ai/database-lab/v2/pkg/log"

	"gitlab.com/postgres-ai/askdb/pkg/bot/querier"
	"gitlab.com/postgres-ai/askdb/pkg/models"
	"gitlab.com/postgres-ai/askdb/pkg/services/msgproc"
)

// MsgAskOptionReq describes an ask error.
const MsgAskOptionReq = "Use `ask` to send a question, e.g. `askdb ask \"How many customers do we have?\"`"

// Processor defines the interface of the chat pipeline.
type Processor interface {
	ProcessMessage(ctx context.Context, message string, history []models.ChatTurn) (*msgproc.Result, error)
}

// AskCmd defines the ask command.
type AskCmd struct {
	question  string
	processor Processor
	out       io.Writer
}

// NewAsk return a new ask command.
func NewAsk(question string, processor Processor, out io.Writer) *AskCmd {
	return &AskCmd{
		question:  question,
		processor: processor,
		out:       out,
	}
}

// Execute runs the ask command and prints the answer, the statement and the result table.
func (cmd AskCmd) Execute(ctx context.Context) error {
	if strings.TrimSpace(cmd.question) == "" {
		return errors.New(MsgAskOptionReq)
	}

	start := time.Now()

	result, err := cmd.processor.ProcessMessage(ctx, cmd.question, nil)
	if err != nil {
		log.Err("Ask:", err)
		return err
	}

	sb := &strings.Builder{}
	sb.WriteString(result.Response.Content)
	sb.WriteString("\n")

	if result.SQL != "" {
		sb.WriteString("\nSQL:\n")
		sb.WriteString(result.SQL)
		sb.WriteString("\n")
	}

	if queryResult := result.Response.QueryResult; queryResult != nil && queryResult.Success {
		sb.WriteString("\n")
		querier.RenderTable(sb, *queryResult)
	}

	sb.WriteString(fmt.Sprintf("\n%s in %s\n", result.State, durafmt.Parse(time.Since(start).Round(time.Millisecond)).String()))

	if _, err := io.WriteString(cmd.out, sb.String()); err != nil {
		return errors.Wrap(err, "failed to write the answer")
	}

	return nil
}
