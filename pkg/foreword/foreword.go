/*
2020 © Postgres.ai
*/

// Package foreword provides structures for building the startup foreword message.
package foreword

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"github.com/pkg/errors"

	"gitlab.com/postgres-ai/askdb/pkg/bot/querier"
)

// MsgForewordTpl provides a template of the startup foreword message.
const MsgForewordTpl = "askdb %s is ready to answer questions.\n" +
	`Language model: %s
Database: %s %s
Schema size: %s characters
Delay between model calls: %s
Request limit: %d per %s`

var versionQueries = map[string]string{
	querier.DriverSQLServer: "SELECT @@VERSION",
	querier.DriverPostgres:  "select current_setting('server_version')",
	querier.DriverPgx:       "select current_setting('server_version')",
	querier.DriverMySQL:     "SELECT VERSION()",
	querier.DriverSQLite:    "select sqlite_version()",
}

// Content defines data for a foreword message.
type Content struct {
	AppVersion    string
	Model         string
	Driver        string
	DBVersion     string
	SchemaChars   int
	StageDelay    time.Duration
	QuotaLimit    uint
	QuotaInterval time.Duration
}

// EnrichForewordInfo adds the database server version to foreword data.
func (f *Content) EnrichForewordInfo(ctx context.Context, db querier.Queryer) error {
	query, ok := versionQueries[f.Driver]
	if !ok {
		return errors.Errorf("unknown database driver %q", f.Driver)
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return errors.Wrap(err, "failed to retrieve database meta info")
	}

	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return errors.Wrap(err, "failed to read database version")
		}

		return errors.New("database version is not reported")
	}

	if err := rows.Scan(&f.DBVersion); err != nil {
		return errors.Wrap(err, "failed to scan database version")
	}

	return nil
}

// GetForeword returns a foreword message.
func (f *Content) GetForeword() string {
	dbVersion := f.DBVersion
	if dbVersion == "" {
		dbVersion = "(version unknown)"
	}

	delay := "none"
	if f.StageDelay > 0 {
		delay = durafmt.Parse(f.StageDelay).String()
	}

	return fmt.Sprintf(MsgForewordTpl, f.AppVersion, f.Model, f.Driver, dbVersion,
		humanize.Comma(int64(f.SchemaChars)), delay, f.QuotaLimit, durafmt.Parse(f.QuotaInterval))
}
