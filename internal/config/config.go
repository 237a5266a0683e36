// Package config loads runtime configuration from an optional YAML file and
// OPSCHED_* environment variables. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/alexanderramin/opsched/internal/logging"
	"github.com/alexanderramin/opsched/internal/scheduler"
	"gopkg.in/yaml.v3"
)

const (
	EnvDB          = "OPSCHED_DB"
	EnvLogLevel    = "OPSCHED_LOG_LEVEL"
	EnvLogFormat   = "OPSCHED_LOG_FORMAT"
	EnvConfigFile  = "OPSCHED_CONFIG"
	EnvPropagation = "OPSCHED_PROPAGATION"
	EnvOverflow    = "OPSCHED_MONTHLY_OVERFLOW"
	EnvMaxAttempts = "OPSCHED_RESOLVE_MAX_ATTEMPTS"
)

// Config holds everything the binary needs to wire itself.
type Config struct {
	DBPath string
	Log    logging.Config
	Policy scheduler.Policy
	// ResolveMaxAttempts bounds the retries of an objection resolution that
	// lost an optimistic version race.
	ResolveMaxAttempts int
}

// fileConfig is the on-disk YAML shape. Unset keys keep their defaults.
type fileConfig struct {
	DB                 string `yaml:"db"`
	LogLevel           string `yaml:"log_level"`
	LogFormat          string `yaml:"log_format"`
	MonthlyOverflow    string `yaml:"monthly_overflow"`
	Propagation        string `yaml:"propagation"`
	ResolveMaxAttempts *int   `yaml:"resolve_max_attempts"`
}

// DefaultConfig returns the built-in defaults. The database lives under the
// user's home directory when it can be found.
func DefaultConfig() Config {
	dbPath := "opsched.db"
	if home, err := os.UserHomeDir(); err == nil {
		dbPath = filepath.Join(home, ".opsched", "opsched.db")
	}
	return Config{
		DBPath:             dbPath,
		Log:                logging.Config{Level: "warn", Format: logging.FormatConsole},
		Policy:             scheduler.DefaultPolicy(),
		ResolveMaxAttempts: 3,
	}
}

// Load builds the configuration: defaults, then the YAML file named by
// OPSCHED_CONFIG, then individual environment variables.
func Load() (Config, error) {
	cfg := DefaultConfig()

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unknown policy names and non-positive retry bounds.
func (c Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("config: database path is empty")
	}
	if err := c.Policy.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.ResolveMaxAttempts < 1 {
		return fmt.Errorf("config: resolve_max_attempts must be at least 1, got %d", c.ResolveMaxAttempts)
	}
	if !logging.ValidFormat(string(c.Log.Format)) {
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	return nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if fc.DB != "" {
		cfg.DBPath = fc.DB
	}
	if fc.LogLevel != "" {
		cfg.Log.Level = fc.LogLevel
	}
	if fc.LogFormat != "" {
		cfg.Log.Format = logging.Format(fc.LogFormat)
	}
	if fc.MonthlyOverflow != "" {
		cfg.Policy.MonthlyOverflow = scheduler.MonthlyOverflow(fc.MonthlyOverflow)
	}
	if fc.Propagation != "" {
		cfg.Policy.Propagation = scheduler.Propagation(fc.Propagation)
	}
	if fc.ResolveMaxAttempts != nil {
		cfg.ResolveMaxAttempts = *fc.ResolveMaxAttempts
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvDB); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Log.Format = logging.Format(v)
	}
	if v := os.Getenv(EnvOverflow); v != "" {
		cfg.Policy.MonthlyOverflow = scheduler.MonthlyOverflow(v)
	}
	if v := os.Getenv(EnvPropagation); v != "" {
		cfg.Policy.Propagation = scheduler.Propagation(v)
	}
	if v := os.Getenv(EnvMaxAttempts); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvMaxAttempts, err)
		}
		cfg.ResolveMaxAttempts = n
	}
	return nil
}
