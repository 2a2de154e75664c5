package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	apperrors "github.com/mcncl/inspectorjson/internal/errors"
)

// EnvPrefix is the prefix for environment overrides, e.g. INSPECTORJSON_SERVER_ADDR
const EnvPrefix = "INSPECTORJSON"

// Config represents the complete configuration for inspectorjson
type Config struct {
	Output  OutputConfig  `yaml:"output" envconfig:"OUTPUT"`
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOG"`
}

// OutputConfig controls how values are rendered by fmt
type OutputConfig struct {
	Pretty   bool   `yaml:"pretty"`
	Indent   string `yaml:"indent"`
	KeyStyle string `yaml:"key_style" split_words:"true"`
}

// ServerConfig controls the websocket protocol endpoint. Leaf fields stay
// untagged so envconfig never falls back to bare names such as PATH.
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	Path        string `yaml:"path"`
	MetricsPath string `yaml:"metrics_path" split_words:"true"`
	ReadLimit   int64  `yaml:"read_limit" split_words:"true"`
}

// LoggingConfig controls the zap logger
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// KeyStyles lists the accepted values of output.key_style
var KeyStyles = []string{"keep", "camel", "pascal", "snake", "kebab"}

var logLevels = []string{"debug", "info", "warn", "error"}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Pretty:   false,
			Indent:   "  ",
			KeyStyle: "keep",
		},
		Server: ServerConfig{
			Addr:        "127.0.0.1:9222",
			Path:        "/inspector",
			MetricsPath: "/metrics",
			ReadLimit:   1 << 20,
		},
		Logging: LoggingConfig{
			Level:       "info",
			Development: false,
		},
	}
}

// LoadConfig loads configuration from a YAML file on top of the defaults
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := NewConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides fields from INSPECTORJSON_* environment variables.
// Unset variables leave the current values alone.
func (c *Config) ApplyEnv() error {
	if err := envconfig.Process(EnvPrefix, c); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	return nil
}

// Validate checks that enumerated fields hold known values
func (c *Config) Validate() error {
	if !contains(KeyStyles, c.Output.KeyStyle) {
		return apperrors.NewConfigError(
			fmt.Sprintf("unknown key style '%s', expected one of %s", c.Output.KeyStyle, strings.Join(KeyStyles, ", ")),
			apperrors.ErrInvalidConfig,
		)
	}
	if !contains(logLevels, c.Logging.Level) {
		return apperrors.NewConfigError(
			fmt.Sprintf("unknown log level '%s'", c.Logging.Level),
			apperrors.ErrInvalidConfig,
		)
	}
	if !strings.HasPrefix(c.Server.Path, "/") || !strings.HasPrefix(c.Server.MetricsPath, "/") {
		return apperrors.NewConfigError("server paths must start with '/'", apperrors.ErrInvalidConfig)
	}
	if c.Server.Path == c.Server.MetricsPath {
		return apperrors.NewConfigError("server path and metrics path must differ", apperrors.ErrInvalidConfig)
	}
	if c.Server.ReadLimit <= 0 {
		return apperrors.NewConfigError("server read limit must be positive", apperrors.ErrInvalidConfig)
	}
	return nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".inspectorjson.yml", ".inspectorjson.yaml", "inspectorjson.yml", "inspectorjson.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Load resolves the configuration: defaults, then the config file (explicit
// path or discovered), then the environment. The result is validated.
func Load(configPath string) (*Config, error) {
	cfg := NewConfig()

	if configPath == "" {
		configPath = FindConfigFile()
	}
	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, apperrors.NewConfigError(fmt.Sprintf("failed to load '%s'", configPath), err)
		}
		cfg = fileConfig
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, apperrors.NewConfigError("failed to apply environment overrides", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
