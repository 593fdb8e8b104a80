/*
2024 © Postgres.ai
*/

// Package schema provides the database schema description given to the language model.
package schema

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"gitlab.com/postgres-ai/database-lab/v2/pkg/log"

	"gitlab.com/postgres-ai/askdb/pkg/bot/querier"
	"gitlab.com/postgres-ai/askdb/pkg/config"
	"gitlab.com/postgres-ai/askdb/pkg/services/storage"
	"gitlab.com/postgres-ai/askdb/pkg/util/text"
)

// Unavailable is the schema text used when no description can be obtained.
const Unavailable = "Schema unavailable."

const truncationMarker = "\n\n[Schema truncated: original size %s characters]"

// ErrNoSource means that neither a static document nor a database is configured.
var ErrNoSource = errors.New("no schema source configured")

// Provider defines the interface of a schema text source.
type Provider interface {
	Text(ctx context.Context) (string, error)
}

// Table describes a database table.
type Table struct {
	Schema      string   `yaml:"schema" json:"schema"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Columns     []Column `yaml:"columns" json:"columns"`
}

// Column describes a table column.
type Column struct {
	Name        string `yaml:"name" json:"name"`
	Type        string `yaml:"type" json:"type"`
	Nullable    bool   `yaml:"nullable" json:"nullable"`
	PrimaryKey  bool   `yaml:"primaryKey" json:"primaryKey"`
	References  string `yaml:"references" json:"references"`
	Description string `yaml:"description" json:"description"`
}

// Describe renders tables into the text handed to the language model.
func Describe(tables []Table) string {
	var desc strings.Builder

	desc.WriteString("DATABASE SCHEMA:\n")
	desc.WriteString("================\n\n")
	desc.WriteString("TABLES:\n")

	for _, t := range tables {
		desc.WriteString("- ")

		if t.Schema != "" {
			desc.WriteString(t.Schema + ".")
		}

		desc.WriteString(t.Name)

		if t.Description != "" {
			desc.WriteString(fmt.Sprintf(" (%s)", t.Description))
		}

		desc.WriteString("\n")

		for _, c := range t.Columns {
			nullability := "NOT NULL"
			if c.Nullable {
				nullability = "NULL"
			}

			desc.WriteString(fmt.Sprintf("    - %s (%s, %s)", c.Name, c.Type, nullability))

			if c.PrimaryKey {
				desc.WriteString(" [PK]")
			}

			if c.References != "" {
				desc.WriteString(fmt.Sprintf(" [FK -> %s]", c.References))
			}

			if c.Description != "" {
				desc.WriteString(" -- " + c.Description)
			}

			desc.WriteString("\n")
		}

		desc.WriteString("\n")
	}

	return desc.String()
}

// Service provides a bounded schema text.
type Service struct {
	provider Provider
	maxChars int
}

// NewService creates a new schema service.
func NewService(provider Provider, maxChars int) *Service {
	return &Service{
		provider: provider,
		maxChars: maxChars,
	}
}

// NewServiceFromConfig chooses a schema source: a static document is preferred,
// otherwise the database is introspected and the result is cached in the store.
func NewServiceFromConfig(cfg config.Schema, dbCfg config.Database, db querier.Queryer, store storage.TextStore) *Service {
	var provider Provider

	switch {
	case cfg.StaticPath != "":
		provider = NewStaticProvider(cfg.StaticPath)

	case db != nil:
		provider = NewCachedProvider(store, "schema:"+dbCfg.Driver, cfg.CacheTTL,
			NewIntrospectionProvider(db, dbCfg.Driver))
	}

	return NewService(provider, cfg.MaxChars)
}

// SchemaText returns the schema description cut to the configured size.
// The Unavailable placeholder is returned when the description cannot be obtained.
func (s *Service) SchemaText(ctx context.Context) string {
	if s.provider == nil {
		log.Err("failed to get schema text:", ErrNoSource)
		return Unavailable
	}

	schemaText, err := s.provider.Text(ctx)
	if err != nil {
		log.Err("failed to get schema text:", err)
		return Unavailable
	}

	if strings.TrimSpace(schemaText) == "" {
		return Unavailable
	}

	if s.maxChars <= 0 {
		return schemaText
	}

	marker := fmt.Sprintf(truncationMarker, humanize.Comma(int64(len([]rune(schemaText)))))

	if bounded, cut := text.CutText(schemaText, s.maxChars, marker); cut {
		log.Dbg("Schema text truncated to", s.maxChars, "characters")
		return bounded
	}

	return schemaText
}
