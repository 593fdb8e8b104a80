/*
2019 © Postgres.ai
*/

package config

import (
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pkg/errors"
)

// Load reads the configuration file and applies environment overrides.
// The environment alone is used when the file does not exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.Wrap(err, "failed to stat a config file")
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, errors.Wrap(err, "failed to read the environment config")
		}

		return &cfg, nil
	}

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to read a config file")
	}

	return &cfg, nil
}
