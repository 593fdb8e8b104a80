/*
askdb

2019 © Postgres.ai

Conversational UI for asking a relational database questions in natural language.
*/

package main

import (
	"context"
	"database/sql"
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gitlab.com/postgres-ai/database-lab/v2/pkg/log"

	"gitlab.com/postgres-ai/askdb/pkg/bot/querier"
	"gitlab.com/postgres-ai/askdb/pkg/config"
	"gitlab.com/postgres-ai/askdb/pkg/llm"
	"gitlab.com/postgres-ai/askdb/pkg/services/msgproc"
	"gitlab.com/postgres-ai/askdb/pkg/services/schema"
	"gitlab.com/postgres-ai/askdb/pkg/services/storage"
)

const (
	configFilePath = "config/config.yml"
	envFilePath    = ".env"
)

// ldflag variables.
var buildTime, version string

var (
	configPath string
	envPath    string
	botCfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "askdb",
	Short: "Ask a relational database questions in natural language",
	Long: `askdb turns a free-text question into a validated read-only SQL query,
runs it against the configured database and narrates the result.`,
	Version:       formatBotVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(err, "failed to load the env file")
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return errors.Wrap(err, "failed to load config")
		}

		log.DEBUG = cfg.App.Debug
		cfg.App.Version = formatBotVersion()

		log.Dbg("version: ", cfg.App.Version)

		botCfg = cfg

		return nil
	},
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", configFilePath, "path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&envPath, "env-file", envFilePath, "path to the env file")

	rootCmd.AddCommand(serveCmd, askCmd, schemaCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func formatBotVersion() string {
	if version == "" {
		return "dev"
	}

	return version + "-" + buildTime
}

// components holds the services shared by commands.
type components struct {
	db        *sql.DB
	store     storage.TextStore
	schema    *schema.Service
	processor *msgproc.ProcessingService
}

func (c *components) Close() {
	if persistent, ok := c.store.(storage.PersistentTextStore); ok {
		if err := persistent.Save(); err != nil {
			log.Err("unable to dump stored data: ", err)
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			log.Err("failed to close the database connection: ", err)
		}
	}
}

// buildComponents connects to the database and builds the pipeline. The database is optional
// only for commands that do not execute queries.
func buildComponents(ctx context.Context, cfg *config.Config, requireDB bool) (*components, error) {
	store, err := storage.New(cfg.Storage)
	if err != nil {
		return nil, errors.Wrap(err, "failed to init the storage")
	}

	c := &components{store: store}

	var queryer querier.Queryer

	if cfg.Database.DSN != "" || requireDB {
		db, err := querier.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}

		c.db = db
		queryer = db
	}

	c.schema = schema.NewServiceFromConfig(cfg.Schema, cfg.Database, queryer, store)

	if !requireDB {
		return c, nil
	}

	generator, err := llm.NewGenerator(cfg.LLM)
	if err != nil {
		c.Close()
		return nil, errors.Wrap(err, "failed to create a language model client")
	}

	executor := querier.NewExecutor(queryer, cfg.Executor)
	c.processor = msgproc.NewProcessingService(generator, c.schema, executor, nil, cfg.Pipeline)

	return c, nil
}
