/*
2019 © Postgres.ai
*/

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gitlab.com/postgres-ai/database-lab/v2/pkg/log"

	"gitlab.com/postgres-ai/askdb/pkg/bot"
	"gitlab.com/postgres-ai/askdb/pkg/foreword"
	"gitlab.com/postgres-ai/askdb/pkg/services/usermanager"
)

const shutdownTimeout = 60 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server handling POST /chat",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		deps, err := buildComponents(ctx, botCfg, true)
		if err != nil {
			return err
		}
		defer deps.Close()

		fw := &foreword.Content{
			AppVersion:    botCfg.App.Version,
			Model:         botCfg.LLM.Model,
			Driver:        botCfg.Database.Driver,
			SchemaChars:   len(deps.schema.SchemaText(ctx)),
			StageDelay:    botCfg.Pipeline.StageDelay,
			QuotaLimit:    botCfg.Quota.Limit,
			QuotaInterval: time.Duration(botCfg.Quota.Interval) * time.Second,
		}

		if err := fw.EnrichForewordInfo(ctx, deps.db); err != nil {
			log.Err("failed to enrich foreword info: ", err)
		}

		log.Msg(fw.GetForeword())

		app := bot.NewApp(botCfg, deps.processor, usermanager.NewUserManager(botCfg.Quota), deps.store)

		shutdownCh := setShutdownListener()
		serverErr := make(chan error, 1)

		go func() {
			if err := app.RunServer(ctx); err != nil && err != http.ErrServerClosed {
				serverErr <- err
			}
		}()

		select {
		case err := <-serverErr:
			return errors.Wrap(err, "server failed")

		case <-shutdownCh:
			log.Dbg("shutdown request received")
		}

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if err := app.Shutdown(shutdownCtx); err != nil {
			log.Msg(err)
		}

		return nil
	},
}

func setShutdownListener() chan os.Signal {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	return c
}
