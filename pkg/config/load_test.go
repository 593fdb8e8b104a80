package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, uint(2400), cfg.App.Port)
	assert.Equal(t, 0.1, cfg.LLM.Temperature)
	assert.Equal(t, 2000, cfg.LLM.MaxMessageChars)
	assert.Equal(t, 20, cfg.LLM.MaxHistoryTurns)
	assert.Equal(t, 1000000, cfg.LLM.MaxPayloadBytes)
	assert.Equal(t, 30*time.Second, cfg.Executor.Timeout)
	assert.Equal(t, 50, cfg.Executor.MaxRows)
	assert.Equal(t, 50000, cfg.Schema.MaxChars)
	assert.Equal(t, 3*time.Second, cfg.Pipeline.StageDelay)
	assert.Equal(t, 100, cfg.Pipeline.MaxResultRows)
	assert.Equal(t, 500, cfg.Pipeline.MaxCellChars)
	assert.Equal(t, 50000, cfg.Pipeline.MaxResultJSONSize)
	assert.Len(t, cfg.Pipeline.StringDateColumns, 5)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")

	data := `
app:
  port: 8080
llm:
  model: test-model
  maxHistoryTurns: 5
database:
  driver: sqlite
  dsn: ":memory:"
executor:
  maxRows: 10
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, uint(8080), cfg.App.Port)
	assert.Equal(t, "test-model", cfg.LLM.Model)
	assert.Equal(t, 5, cfg.LLM.MaxHistoryTurns)
	assert.Equal(t, 2000, cfg.LLM.MaxMessageChars)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 10, cfg.Executor.MaxRows)
}

func TestLoadExplicitZeros(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")

	data := `
llm:
  temperature: 0
  maxHistoryTurns: 0
executor:
  timeout: 0s
  maxRows: 0
pipeline:
  stageDelay: 0s
  maxResultRows: 0
quota:
  limit: 0
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.0, cfg.LLM.Temperature)
	assert.Equal(t, 0, cfg.LLM.MaxHistoryTurns)
	assert.Equal(t, time.Duration(0), cfg.Executor.Timeout)
	assert.Equal(t, 0, cfg.Executor.MaxRows)
	assert.Equal(t, time.Duration(0), cfg.Pipeline.StageDelay)
	assert.Equal(t, 0, cfg.Pipeline.MaxResultRows)
	assert.Equal(t, uint(0), cfg.Quota.Limit)

	assert.Equal(t, 2000, cfg.LLM.MaxMessageChars, "absent keys keep defaults")
	assert.Equal(t, 500, cfg.Pipeline.MaxCellChars)
}

func TestLoadEnvZeros(t *testing.T) {
	t.Setenv("ASKDB_QUOTA_LIMIT", "0")
	t.Setenv("ASKDB_PIPELINE_STAGE_DELAY", "0s")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, uint(0), cfg.Quota.Limit)
	assert.Equal(t, time.Duration(0), cfg.Pipeline.StageDelay)
	assert.Equal(t, 50, cfg.Executor.MaxRows)
}
