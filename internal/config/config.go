package config

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/streamrail/ua-classifier/uaparser"
)

// Config is the service and CLI configuration, read from UAP_* variables.
type Config struct {
	HTTPAddr        string        `env:"UAP_HTTP_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"UAP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MaxBatch        int           `env:"UAP_MAX_BATCH" envDefault:"100"`

	LogLevel  string `env:"UAP_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"UAP_LOG_FORMAT" envDefault:"json"` // json or console

	Mode         string        `env:"UAP_MODE" envDefault:"all"` // comma separated categories
	MatchTimeout time.Duration `env:"UAP_MATCH_TIMEOUT" envDefault:"100ms"`
	RulesFile    string        `env:"UAP_RULES_FILE"` // extension rules evaluated ahead of the built-in ones

	RedisURL    string        `env:"UAP_REDIS_URL"`
	CachePrefix string        `env:"UAP_CACHE_PREFIX" envDefault:"uap:"`
	CacheTTL    time.Duration `env:"UAP_CACHE_TTL" envDefault:"1h"`
	CacheSize   int           `env:"UAP_CACHE_SIZE" envDefault:"10000"` // in-process entries when Redis is not configured
}

// LookUpMode returns the parsed Mode setting.
func (c Config) LookUpMode() (uaparser.Mode, error) {
	return uaparser.ParseMode(c.Mode)
}

// Validate checks values env tags cannot express.
func (c Config) Validate() error {
	var errs []error
	if c.LogFormat != "json" && c.LogFormat != "console" {
		errs = append(errs, fmt.Errorf("UAP_LOG_FORMAT: unsupported format %q", c.LogFormat))
	}
	if c.MatchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("UAP_MATCH_TIMEOUT: must be positive, got %s", c.MatchTimeout))
	}
	if c.MaxBatch <= 0 {
		errs = append(errs, fmt.Errorf("UAP_MAX_BATCH: must be positive, got %d", c.MaxBatch))
	}
	if c.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("UAP_CACHE_SIZE: must not be negative, got %d", c.CacheSize))
	}
	if _, err := c.LookUpMode(); err != nil {
		errs = append(errs, fmt.Errorf("UAP_MODE: %w", err))
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidConfig}, errs...)...)
	}
	return nil
}

var (
	loadOnce sync.Once
	loaded   Config
	loadErr  error
)

// Load reads the process environment, after an optional .env file, once.
// Later calls return the same result.
func Load() (Config, error) {
	loadOnce.Do(func() {
		// the .env file is optional
		_ = godotenv.Load()
		loaded, loadErr = Parse(nil)
	})
	return loaded, loadErr
}

// MustLoad works like Load but panics if the configuration is invalid.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// Parse reads environ, or the process environment when environ is nil, and
// validates the result. It does not cache.
func Parse(environ map[string]string) (Config, error) {
	var cfg Config
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
