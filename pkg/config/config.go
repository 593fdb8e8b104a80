/*
2019 © Postgres.ai
*/

// Package config provides the App configuration.
package config

import (
	"time"
)

// Config defines an App configuration.
type Config struct {
	App      App      `yaml:"app"`
	LLM      LLM      `yaml:"llm"`
	Database Database `yaml:"database"`
	Executor Executor `yaml:"executor"`
	Schema   Schema   `yaml:"schema"`
	Pipeline Pipeline `yaml:"pipeline"`
	Storage  Storage  `yaml:"storage"`
	Quota    Quota    `yaml:"quota"`
}

// Default returns a configuration with the limits that may be explicitly set to zero.
// A zero size or count disables the limit, except MaxHistoryTurns where zero sends no history.
// A zero StageDelay disables pauses and a zero Quota.Limit disables the quota.
func Default() Config {
	return Config{
		LLM: LLM{
			Temperature:          0.1,
			MaxSystemPromptChars: 100000,
			MaxMessageChars:      2000,
			MaxHistoryTurns:      20,
			MaxPayloadBytes:      1000000,
		},
		Executor: Executor{
			Timeout: 30 * time.Second,
			MaxRows: 50,
		},
		Schema: Schema{
			MaxChars: 50000,
		},
		Pipeline: Pipeline{
			StageDelay:        3 * time.Second,
			MaxResultRows:     100,
			MaxCellChars:      500,
			MaxResultJSONSize: 50000,
		},
		Quota: Quota{
			Limit: 10,
		},
	}
}

// App defines a general application configuration.
type App struct {
	Version string `yaml:"-"`
	Host    string `yaml:"host" env:"ASKDB_APP_HOST"`
	Port    uint   `yaml:"port" env:"ASKDB_APP_PORT" env-default:"2400"`
	Debug   bool   `yaml:"debug" env:"ASKDB_APP_DEBUG"`
}

// LLM describes the language model endpoint and the request bounds applied to it.
type LLM struct {
	Backend              string        `yaml:"backend" env:"ASKDB_LLM_BACKEND" env-default:"http"`
	URL                  string        `yaml:"url" env:"ASKDB_LLM_URL" env-default:"https://api.openai.com/v1/chat/completions"`
	APIKey               string        `yaml:"apiKey" env:"ASKDB_LLM_API_KEY"`
	Model                string        `yaml:"model" env:"ASKDB_LLM_MODEL" env-default:"gpt-4o-mini"`
	Temperature          float64       `yaml:"temperature" env:"ASKDB_LLM_TEMPERATURE"`
	RequestTimeout       time.Duration `yaml:"requestTimeout" env:"ASKDB_LLM_REQUEST_TIMEOUT" env-default:"120s"`
	MaxSystemPromptChars int           `yaml:"maxSystemPromptChars" env:"ASKDB_LLM_MAX_SYSTEM_PROMPT_CHARS"`
	MaxMessageChars      int           `yaml:"maxMessageChars" env:"ASKDB_LLM_MAX_MESSAGE_CHARS"`
	MaxHistoryTurns      int           `yaml:"maxHistoryTurns" env:"ASKDB_LLM_MAX_HISTORY_TURNS"`
	MaxPayloadBytes      int           `yaml:"maxPayloadBytes" env:"ASKDB_LLM_MAX_PAYLOAD_BYTES"`
}

// Database describes the target database.
type Database struct {
	Driver string `yaml:"driver" env:"ASKDB_DB_DRIVER" env-default:"sqlserver"`
	DSN    string `yaml:"dsn" env:"ASKDB_DB_DSN"`
}

// Executor defines limits of the guarded query execution.
type Executor struct {
	Timeout time.Duration `yaml:"timeout" env:"ASKDB_EXECUTOR_TIMEOUT"`
	MaxRows int           `yaml:"maxRows" env:"ASKDB_EXECUTOR_MAX_ROWS"`
}

// Schema describes where the schema text comes from.
type Schema struct {
	// StaticPath points to a prepared schema document (.txt, .md, .yaml, .yml or .json).
	StaticPath string        `yaml:"staticPath" env:"ASKDB_SCHEMA_STATIC_PATH"`
	MaxChars   int           `yaml:"maxChars" env:"ASKDB_SCHEMA_MAX_CHARS"`
	CacheTTL   time.Duration `yaml:"cacheTTL" env:"ASKDB_SCHEMA_CACHE_TTL" env-default:"1h"`
}

// Pipeline defines the chat pipeline settings.
type Pipeline struct {
	StageDelay        time.Duration `yaml:"stageDelay" env:"ASKDB_PIPELINE_STAGE_DELAY"`
	MaxResultRows     int           `yaml:"maxResultRows" env:"ASKDB_PIPELINE_MAX_RESULT_ROWS"`
	MaxCellChars      int           `yaml:"maxCellChars" env:"ASKDB_PIPELINE_MAX_CELL_CHARS"`
	MaxResultJSONSize int           `yaml:"maxResultJSONSize" env:"ASKDB_PIPELINE_MAX_RESULT_JSON_SIZE"`
	StringDateColumns []string      `yaml:"stringDateColumns" env:"ASKDB_PIPELINE_STRING_DATE_COLUMNS" env-default:"CreatedOn,ModifiedOn,PaymentDate,DueDate,ChequeDate"`
}

// Storage describes the schema cache storage.
type Storage struct {
	Driver    string `yaml:"driver" env:"ASKDB_STORAGE_DRIVER" env-default:"memory"`
	FilePath  string `yaml:"filePath" env:"ASKDB_STORAGE_FILE_PATH" env-default:"config/schema_cache.json"`
	RedisAddr string `yaml:"redisAddr" env:"ASKDB_STORAGE_REDIS_ADDR" env-default:"localhost:6379"`
	RedisDB   int    `yaml:"redisDB" env:"ASKDB_STORAGE_REDIS_DB"`
}

// Quota defines a per-client request limit.
type Quota struct {
	Limit    uint `yaml:"limit" env:"ASKDB_QUOTA_LIMIT"`
	Interval uint `yaml:"interval" env:"ASKDB_QUOTA_INTERVAL" env-default:"60"`
}
