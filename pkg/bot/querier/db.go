/*
2024 © Postgres.ai
*/

package querier

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	// Supported database drivers.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v4/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"

	"gitlab.com/postgres-ai/askdb/pkg/config"
)

// Supported database drivers.
const (
	DriverSQLServer = "sqlserver"
	DriverPostgres  = "postgres"
	DriverPgx       = "pgx"
	DriverMySQL     = "mysql"
	DriverSQLite    = "sqlite"
)

// Open opens a connection pool to the configured database and checks it.
func Open(ctx context.Context, cfg config.Database) (*sql.DB, error) {
	switch cfg.Driver {
	case DriverSQLServer, DriverPostgres, DriverPgx, DriverMySQL, DriverSQLite:
	default:
		return nil, errors.Errorf("unsupported database driver given: %q", cfg.Driver)
	}

	if cfg.DSN == "" {
		return nil, errors.New("database DSN is required")
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open a database connection")
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to connect to the database")
	}

	return db, nil
}
