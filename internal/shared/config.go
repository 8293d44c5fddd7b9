package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override values read from the config file.
const (
	EnvDatabaseDriver = "LOCALDB_DATABASE_DRIVER"
	EnvDatabaseDSN    = "LOCALDB_DATABASE_DSN"
	EnvDatabaseURL    = "DATABASE_URL"
	EnvLogLevel       = "LOCALDB_LOG_LEVEL"
	EnvLogFormat      = "LOCALDB_LOG_FORMAT"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Driver         string `toml:"driver"`
	DSN            string `toml:"dsn"`
	MaxOpenConns   int    `toml:"max_open_conns"`
	MaxIdleConns   int    `toml:"max_idle_conns"`
	ConnectTimeout int    `toml:"connect_timeout"` // seconds
}

// LoggingConfig contains log level and output format.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %w", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnvFile loads variables from a dotenv file into the process environment.
//
// A missing file is not an error. Variables already set in the environment win.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides config values with any LOCALDB_* variables set in the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvDatabaseDriver); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv(EnvDatabaseDSN); v != "" {
		c.Database.DSN = v
	} else if v := os.Getenv(EnvDatabaseURL); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = v
	}
}

// Validate reports configuration that can't produce a working storage context.
func (c *Config) Validate() error {
	return c.Database.Validate()
}

// Validate checks the driver is supported and a DSN is present.
func (d DatabaseConfig) Validate() error {
	if _, err := DialectFor(d.Driver); err != nil {
		return err
	}
	if strings.TrimSpace(d.DSN) == "" {
		return fmt.Errorf("%w: database dsn is required", ErrInvalidConfig)
	}
	if d.MaxOpenConns < 0 || d.MaxIdleConns < 0 {
		return fmt.Errorf("%w: connection pool sizes must not be negative", ErrInvalidConfig)
	}
	if d.ConnectTimeout < 0 {
		return fmt.Errorf("%w: connect_timeout must not be negative", ErrInvalidConfig)
	}
	return nil
}
