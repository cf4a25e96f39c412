package config

import (
	"fmt"
	"strings"
)

// Validate checks cross-field rules that tags cannot express and normalizes
// enum-like fields to lower case. Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.Dictionary.validate(); err != nil {
		return fmt.Errorf("dictionary: %w", err)
	}
	if err := c.Cache.validate(); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err := c.Engine.validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if err := c.Server.validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if c.Tracing.SamplingRate < 0 || c.Tracing.SamplingRate > 1 {
		return fmt.Errorf("tracing: sampling_rate must be in [0, 1] (got %v)", c.Tracing.SamplingRate)
	}

	c.Render.Theme = strings.ToLower(strings.TrimSpace(c.Render.Theme))
	if c.Render.Theme != "light" && c.Render.Theme != "dark" {
		return fmt.Errorf("render: theme must be light or dark (got %q)", c.Render.Theme)
	}

	return nil
}

func (d *DictionaryConfig) validate() error {
	d.Backend = strings.ToLower(strings.TrimSpace(d.Backend))
	switch d.Backend {
	case BackendMemory, BackendSQLite:
		if d.Path == "" {
			return fmt.Errorf("path is required for the %s backend", d.Backend)
		}
	case BackendPostgres:
		if d.DSN == "" {
			return fmt.Errorf("dsn is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown backend %q (want memory, sqlite or postgres)", d.Backend)
	}
	return nil
}

func (c *CacheConfig) validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("size must be > 0 (got %d)", c.Size)
	}
	if c.TTL < 0 {
		return fmt.Errorf("ttl must be >= 0 (got %v)", c.TTL)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("redis.db must be >= 0 (got %d)", c.Redis.DB)
	}
	return nil
}

func (e *EngineConfig) validate() error {
	if e.MinWordLength < 1 {
		return fmt.Errorf("min_word_length must be >= 1 (got %d)", e.MinWordLength)
	}
	if e.Workers < 0 {
		return fmt.Errorf("workers must be >= 0 (got %d)", e.Workers)
	}
	if e.Debounce <= 0 {
		return fmt.Errorf("debounce must be > 0 (got %v)", e.Debounce)
	}
	if e.Saturation < 0 || e.Saturation > 1 {
		return fmt.Errorf("saturation must be in [0, 1] (got %v)", e.Saturation)
	}
	if e.Value < 0 || e.Value > 1 {
		return fmt.Errorf("value must be in [0, 1] (got %v)", e.Value)
	}
	return nil
}

func (s *ServerConfig) validate() error {
	if s.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if s.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be > 0 (got %d)", s.MaxBodyBytes)
	}
	if s.TokenRate <= 0 {
		return fmt.Errorf("token_rate must be > 0 (got %v)", s.TokenRate)
	}
	if s.TokenBurst < 1 {
		return fmt.Errorf("token_burst must be >= 1 (got %d)", s.TokenBurst)
	}
	if (s.MetricsUser == "") != (s.MetricsPassword == "") {
		return fmt.Errorf("metrics_user and metrics_password must be set together")
	}
	return nil
}
