package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the config file written by `mk5 init`.
const FileName = "mk5.yaml"

// Environment variables that override the config file.
const (
	EnvDataDir       = "MK5_DATA_DIR"
	EnvBackend       = "MK5_BACKEND"
	EnvBalancePolicy = "MK5_BALANCE_POLICY"
	EnvTimeZone      = "MK5_TZ"
	EnvLogLevel      = "MK5_LOG_LEVEL"
)

// Config represents the top-level mk5.yaml configuration.
type Config struct {
	Data   DataConfig   `yaml:"data"`
	Ledger LedgerConfig `yaml:"ledger"`
	Log    LogConfig    `yaml:"log"`
}

// DataConfig locates the key-value store.
type DataConfig struct {
	Dir     string `yaml:"dir"`
	Backend string `yaml:"backend"` // file, sqlite or memory
}

// LedgerConfig controls ledger behavior.
type LedgerConfig struct {
	BalancePolicy string `yaml:"balance_policy"` // stored or derived
	TimeZone      string `yaml:"time_zone"`      // IANA name, empty = local
}

// LogConfig controls logging output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
}

// Load reads an mk5.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault reads path, returning Default(dataDir) when the file does not exist.
func LoadOrDefault(path, dataDir string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(dataDir), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults storing data under dataDir.
func Default(dataDir string) *Config {
	return &Config{
		Data: DataConfig{
			Dir:     dataDir,
			Backend: "file",
		},
		Ledger: LedgerConfig{
			BalancePolicy: "stored",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// ApplyEnv loads envFile (if present) into the process environment and then
// overrides cfg with any MK5_* variables that are set.
func ApplyEnv(cfg *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", envFile, err)
		}
	}
	override(&cfg.Data.Dir, EnvDataDir)
	override(&cfg.Data.Backend, EnvBackend)
	override(&cfg.Ledger.BalancePolicy, EnvBalancePolicy)
	override(&cfg.Ledger.TimeZone, EnvTimeZone)
	override(&cfg.Log.Level, EnvLogLevel)
	return nil
}

func override(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Location resolves the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	switch c.Ledger.TimeZone {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Ledger.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("loading time zone: %w", err)
	}
	return loc, nil
}

// StorePath returns the path handed to the kv backend.
func (c *Config) StorePath() string {
	if c.Data.Backend == "sqlite" {
		return filepath.Join(c.Data.Dir, "mk5.db")
	}
	return c.Data.Dir
}
