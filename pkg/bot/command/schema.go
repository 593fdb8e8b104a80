/*
2024 © Postgres.ai
*/

package command

import (
	"context"
	"io"

	"github.com/pkg/errors"

	"gitlab.com/postgres-ai/askdb/pkg/services/msgproc"
)

// SchemaCmd defines the schema command.
type SchemaCmd struct {
	schema msgproc.SchemaSource
	out    io.Writer
}

// NewSchema returns a new schema command.
func NewSchema(schema msgproc.SchemaSource, out io.Writer) *SchemaCmd {
	return &SchemaCmd{
		schema: schema,
		out:    out,
	}
}

// Execute prints the schema text given to the language model.
func (cmd SchemaCmd) Execute(ctx context.Context) error {
	if _, err := io.WriteString(cmd.out, cmd.schema.SchemaText(ctx)+"\n"); err != nil {
		return errors.Wrap(err, "failed to write the schema")
	}

	return nil
}
