package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// PathEnv names the environment variable holding the config file path.
const PathEnv = "RHYMER_CONFIG"

const defaultPath = "./rhymer.yaml"

// Load reads configuration from a YAML file and environment variables and
// validates it.
// Priority: ENV > YAML > defaults (via env-default tags).
// The YAML file path is taken from RHYMER_CONFIG (fallback "./rhymer.yaml").
// A missing fallback file is not an error; a missing explicit file is.
func Load() (*Config, error) {
	return validated(Read())
}

// LoadFile is Load with an explicit path. If required is false and path does
// not exist, configuration comes from ENV and defaults only.
func LoadFile(path string, required bool) (*Config, error) {
	return validated(ReadFile(path, required))
}

// Read is Load without validation, for callers that apply their own
// overrides before calling Validate.
func Read() (*Config, error) {
	path := os.Getenv(PathEnv)
	explicit := path != ""
	if !explicit {
		path = defaultPath
	}
	return ReadFile(path, explicit)
}

// ReadFile is LoadFile without validation.
func ReadFile(path string, required bool) (*Config, error) {
	var cfg Config

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if required {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	return &cfg, nil
}

func validated(cfg *Config, err error) (*Config, error) {
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}
