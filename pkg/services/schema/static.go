/*
2024 © Postgres.ai
*/

package schema

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Document defines a structured static schema document.
type Document struct {
	Tables []Table `yaml:"tables" json:"tables"`
}

// StaticProvider reads a prepared schema document.
// Plain text and markdown documents are returned as is, YAML and JSON documents are rendered.
type StaticProvider struct {
	path string
}

// NewStaticProvider creates a new static document provider.
func NewStaticProvider(path string) *StaticProvider {
	return &StaticProvider{path: path}
}

// Text reads the document.
func (p *StaticProvider) Text(_ context.Context) (string, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return "", errors.Wrap(err, "failed to read the schema document")
	}

	switch strings.ToLower(filepath.Ext(p.path)) {
	case ".yaml", ".yml", ".json":
		var doc Document

		// JSON is a subset of YAML.
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return "", errors.Wrap(err, "failed to parse the schema document")
		}

		if len(doc.Tables) == 0 {
			return "", errors.New("the schema document has no tables")
		}

		return Describe(doc.Tables), nil

	default:
		return string(data), nil
	}
}
