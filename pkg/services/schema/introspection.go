/*
2024 © Postgres.ai
*/

package schema

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"gitlab.com/postgres-ai/askdb/pkg/bot/querier"
)

const informationSchemaColumns = `SELECT TABLE_SCHEMA, TABLE_NAME, COLUMN_NAME, DATA_TYPE, IS_NULLABLE
FROM INFORMATION_SCHEMA.COLUMNS`

const informationSchemaOrder = `
ORDER BY TABLE_SCHEMA, TABLE_NAME, ORDINAL_POSITION`

var introspectionQueries = map[string]string{
	querier.DriverSQLServer: informationSchemaColumns + informationSchemaOrder,
	querier.DriverPostgres: informationSchemaColumns + `
WHERE TABLE_SCHEMA NOT IN ('pg_catalog', 'information_schema')` + informationSchemaOrder,
	querier.DriverMySQL: informationSchemaColumns + `
WHERE TABLE_SCHEMA = DATABASE()` + informationSchemaOrder,
	querier.DriverSQLite: `SELECT 'main', m.name, p.name, p.type, CASE WHEN p."notnull" = 1 THEN 'NO' ELSE 'YES' END
FROM sqlite_master m JOIN pragma_table_info(m.name) p
WHERE m.type = 'table' AND m.name NOT LIKE 'sqlite_%'
ORDER BY m.name, p.cid`,
}

func init() {
	introspectionQueries[querier.DriverPgx] = introspectionQueries[querier.DriverPostgres]
}

// IntrospectionProvider describes the schema by querying the database catalog.
type IntrospectionProvider struct {
	db     querier.Queryer
	driver string
}

// NewIntrospectionProvider creates a new catalog-based provider.
func NewIntrospectionProvider(db querier.Queryer, driver string) *IntrospectionProvider {
	return &IntrospectionProvider{
		db:     db,
		driver: driver,
	}
}

// Tables reads tables and columns from the database catalog.
func (p *IntrospectionProvider) Tables(ctx context.Context) ([]Table, error) {
	query, ok := introspectionQueries[p.driver]
	if !ok {
		return nil, errors.Errorf("schema introspection is not supported for the %q driver", p.driver)
	}

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query the database catalog")
	}
	defer func() { _ = rows.Close() }()

	tables := make([]Table, 0)

	for rows.Next() {
		var schemaName, tableName, column, dataType, nullable string

		if err := rows.Scan(&schemaName, &tableName, &column, &dataType, &nullable); err != nil {
			return nil, errors.Wrap(err, "failed to scan the database catalog")
		}

		if len(tables) == 0 || tables[len(tables)-1].Schema != schemaName || tables[len(tables)-1].Name != tableName {
			tables = append(tables, Table{Schema: schemaName, Name: tableName})
		}

		current := &tables[len(tables)-1]
		current.Columns = append(current.Columns, Column{
			Name:     column,
			Type:     strings.ToLower(dataType),
			Nullable: strings.EqualFold(nullable, "YES"),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to traverse the database catalog")
	}

	return tables, nil
}

// Text describes the database schema.
func (p *IntrospectionProvider) Text(ctx context.Context) (string, error) {
	tables, err := p.Tables(ctx)
	if err != nil {
		return "", err
	}

	if len(tables) == 0 {
		return "", errors.New("the database has no tables")
	}

	return Describe(tables), nil
}
