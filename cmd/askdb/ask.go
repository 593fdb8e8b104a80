/*
2024 © Postgres.ai
*/

package main

import (
	"strings"

	"github.com/spf13/cobra"

	"gitlab.com/postgres-ai/askdb/pkg/bot/command"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a single question and print the answer with the result table",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildComponents(cmd.Context(), botCfg, true)
		if err != nil {
			return err
		}
		defer deps.Close()

		return command.NewAsk(strings.Join(args, " "), deps.processor, cmd.OutOrStdout()).Execute(cmd.Context())
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the schema text given to the language model",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildComponents(cmd.Context(), botCfg, false)
		if err != nil {
			return err
		}
		defer deps.Close()

		return command.NewSchema(deps.schema, cmd.OutOrStdout()).Execute(cmd.Context())
	},
}
