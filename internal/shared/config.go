package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// APIKeyEnv overrides [OMDbConfig.APIKey] when set.
const APIKeyEnv = "OMDB_API_KEY"

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	OMDb     OMDbConfig     `toml:"omdb"`
	Database DatabaseConfig `toml:"database"`
	Storage  StorageConfig  `toml:"storage"`
	Log      LogConfig      `toml:"log"`
}

// OMDbConfig contains the upstream movie database settings.
type OMDbConfig struct {
	APIKey            string  `toml:"api_key"`
	BaseURL           string  `toml:"base_url"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
}

// Timeout returns the HTTP client timeout, zero meaning none.
func (c OMDbConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LockPath is the flock file guarding the database against a second writer.
func (c DatabaseConfig) LockPath() string {
	return c.Path + ".lock"
}

// StorageConfig names the keys used in the local store.
type StorageConfig struct {
	WatchedKey string `toml:"watched_key"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep their defaults and the API key is taken from [APIKeyEnv] when that is set.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyEnv()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.applyEnv()
	return &config
}

// Validate reports settings that would leave the application unusable.
//
// A missing API key is not an error here: commands that never reach OMDb still work without one.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OMDb.BaseURL) == "" {
		return fmt.Errorf("%w: omdb.base_url is empty", ErrInvalidConfig)
	}
	if c.OMDb.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: omdb.requests_per_second must not be negative", ErrInvalidConfig)
	}
	if c.OMDb.TimeoutSeconds < 0 {
		return fmt.Errorf("%w: omdb.timeout_seconds must not be negative", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("%w: database.path is empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Storage.WatchedKey) == "" {
		return fmt.Errorf("%w: storage.watched_key is empty", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) applyEnv() {
	if key := strings.TrimSpace(os.Getenv(APIKeyEnv)); key != "" {
		c.OMDb.APIKey = key
	}
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

// ResolveConfig loads the config at path when it exists and falls back to [DefaultConfig] otherwise.
func ResolveConfig(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	if _, err := os.Stat(path); err != nil {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}
