package config

import "time"

// Config is the root application configuration.
type Config struct {
	Dictionary DictionaryConfig `yaml:"dictionary"`
	Cache      CacheConfig      `yaml:"cache"`
	Engine     EngineConfig     `yaml:"engine"`
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Tracing    TracingConfig    `yaml:"tracing"`
	Render     RenderConfig     `yaml:"render"`
}

// Dictionary backends.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// DictionaryConfig selects where pronunciations come from.
//
// The memory backend parses Path (a CMUdict file, optionally .xz) at startup.
// The sqlite backend opens Path as a database; postgres connects to DSN.
type DictionaryConfig struct {
	Backend string `yaml:"backend" env:"RHYMER_DICT_BACKEND" env-default:"memory"`
	Path    string `yaml:"path"    env:"RHYMER_DICT_PATH"    env-default:"cmudict.dict"`
	DSN     string `yaml:"dsn"     env:"RHYMER_DICT_DSN"`
}

// CacheConfig holds the in-process LRU and the optional shared Redis cache.
type CacheConfig struct {
	Size  int           `yaml:"size" env:"RHYMER_CACHE_SIZE" env-default:"50000"`
	TTL   time.Duration `yaml:"ttl"  env:"RHYMER_CACHE_TTL"  env-default:"0s"`
	Redis RedisConfig   `yaml:"redis"`
}

// RedisConfig enables the shared cache when Addr is set.
type RedisConfig struct {
	Addr     string        `yaml:"addr"     env:"RHYMER_REDIS_ADDR"`
	Password string        `yaml:"password" env:"RHYMER_REDIS_PASSWORD"`
	DB       int           `yaml:"db"       env:"RHYMER_REDIS_DB"       env-default:"0"`
	TTL      time.Duration `yaml:"ttl"      env:"RHYMER_REDIS_TTL"      env-default:"24h"`
}

// Enabled reports whether a Redis address is configured.
func (r RedisConfig) Enabled() bool { return r.Addr != "" }

// EngineConfig tunes highlighting passes.
type EngineConfig struct {
	MinWordLength int           `yaml:"min_word_length" env:"RHYMER_MIN_WORD_LENGTH" env-default:"3"`
	Workers       int           `yaml:"workers"         env:"RHYMER_WORKERS"         env-default:"0"`
	Debounce      time.Duration `yaml:"debounce"        env:"RHYMER_DEBOUNCE"        env-default:"500ms"`
	Saturation    float64       `yaml:"saturation"      env:"RHYMER_SATURATION"      env-default:"0.7"`
	Value         float64       `yaml:"value"           env:"RHYMER_VALUE"           env-default:"0.9"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"             env:"RHYMER_SERVER_ADDR"             env-default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"RHYMER_SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"RHYMER_SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"RHYMER_SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"RHYMER_SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"   env:"RHYMER_SERVER_MAX_BODY_BYTES"   env-default:"1048576"`
	TokenRate       float64       `yaml:"token_rate"       env:"RHYMER_SERVER_TOKEN_RATE"       env-default:"100"`
	TokenBurst      int           `yaml:"token_burst"      env:"RHYMER_SERVER_TOKEN_BURST"      env-default:"200"`
	MetricsUser     string        `yaml:"metrics_user"     env:"RHYMER_METRICS_USER"`
	MetricsPassword string        `yaml:"metrics_password" env:"RHYMER_METRICS_PASSWORD"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"RHYMER_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"RHYMER_LOG_FORMAT" env-default:"text"`
}

// TracingConfig holds OpenTelemetry export settings.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"       env:"RHYMER_TRACING_ENABLED"       env-default:"false"`
	Endpoint     string  `yaml:"endpoint"      env:"RHYMER_TRACING_ENDPOINT"      env-default:"localhost:4317"`
	Insecure     bool    `yaml:"insecure"      env:"RHYMER_TRACING_INSECURE"      env-default:"true"`
	SamplingRate float64 `yaml:"sampling_rate" env:"RHYMER_TRACING_SAMPLING_RATE" env-default:"1.0"`
	Environment  string  `yaml:"environment"   env:"RHYMER_ENVIRONMENT"           env-default:"development"`
}

// RenderConfig holds terminal rendering settings.
type RenderConfig struct {
	Theme string `yaml:"theme" env:"RHYMER_THEME" env-default:"dark"`
}
