// Package config provides CLI configuration management for the recap
// command-line tool. It supports loading configuration from YAML files,
// environment variables, and command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// OutputFormat defines the supported output formats for CLI results.
type OutputFormat string

const (
	// OutputFormatText is human-readable plain text output.
	OutputFormatText OutputFormat = "text"
	// OutputFormatJSON is JSON-formatted output for machine processing.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML is YAML-formatted output for machine processing.
	OutputFormatYAML OutputFormat = "yaml"
)

// Default configuration values.
const (
	DefaultBaseURL      = "http://localhost:8000"
	DefaultModel        = "gpt-4o-mini"
	DefaultMaxTokens    = 2048
	DefaultTimeout      = 60 * time.Second
	DefaultOutputDir    = "reports"
	DefaultOutputFormat = OutputFormatText
	DefaultConfigDir    = ".recap"
	DefaultConfigFile   = "config.yaml"
)

// SynthesisConfig holds settings for the report synthesis model endpoint.
type SynthesisConfig struct {
	// BaseURL is the OpenAI-compatible endpoint base URL.
	BaseURL string `yaml:"base_url,omitempty"`

	// APIKey authenticates requests. Prefer RECAP_API_KEY over storing it
	// in the config file.
	APIKey string `yaml:"api_key,omitempty"`

	// Model is the model identifier sent with completion requests.
	Model string `yaml:"model,omitempty"`

	// MaxTokens caps the completion length.
	MaxTokens int `yaml:"max_tokens,omitempty"`

	// Temperature controls sampling randomness.
	Temperature float64 `yaml:"temperature,omitempty"`
}

// CLIConfig holds the CLI configuration settings.
type CLIConfig struct {
	// Synthesis holds the model endpoint settings.
	Synthesis SynthesisConfig `yaml:"synthesis"`

	// Timeout is the per-run deadline for synthesis requests.
	Timeout time.Duration `yaml:"timeout"`

	// OutputDir receives report artifacts. Supports ~ expansion.
	OutputDir string `yaml:"output_dir,omitempty"`

	// OutputFormat specifies the default output format for commands.
	OutputFormat OutputFormat `yaml:"output_format"`

	// Debug enables verbose debug logging.
	Debug bool `yaml:"debug,omitempty"`

	// JSONLogs switches log output from console to JSON.
	JSONLogs bool `yaml:"json_logs,omitempty"`
}

// DefaultConfig returns a CLIConfig with default values.
func DefaultConfig() *CLIConfig {
	return &CLIConfig{
		Synthesis: SynthesisConfig{
			BaseURL:   DefaultBaseURL,
			Model:     DefaultModel,
			MaxTokens: DefaultMaxTokens,
		},
		Timeout:      DefaultTimeout,
		OutputDir:    DefaultOutputDir,
		OutputFormat: DefaultOutputFormat,
	}
}

// ConfigDir returns the configuration directory path.
// Uses $RECAP_CONFIG_DIR if set, otherwise ~/.recap
func ConfigDir() (string, error) {
	if dir := os.Getenv("RECAP_CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	return filepath.Join(home, DefaultConfigDir), nil
}

// ConfigPath returns the full path to the configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultConfigFile), nil
}

// LoadConfig loads the CLI configuration from file and environment variables.
// Configuration is loaded in this order (later sources override earlier):
// 1. Default values
// 2. Config file (~/.recap/config.yaml or $RECAP_CONFIG_DIR/config.yaml)
// 3. Environment variables (RECAP_BASE_URL, RECAP_API_KEY, RECAP_MODEL, ...)
func LoadConfig() (*CLIConfig, error) {
	cfg := DefaultConfig()

	configPath, err := ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("getting config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(cfg *CLIConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	// Temp struct so the timeout can be written as a duration string.
	type configFile struct {
		Synthesis    SynthesisConfig `yaml:"synthesis"`
		Timeout      string          `yaml:"timeout"`
		OutputDir    string          `yaml:"output_dir"`
		OutputFormat OutputFormat    `yaml:"output_format"`
		Debug        bool            `yaml:"debug"`
		JSONLogs     bool            `yaml:"json_logs"`
	}

	var fileCfg configFile
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	if fileCfg.Synthesis.BaseURL != "" {
		cfg.Synthesis.BaseURL = fileCfg.Synthesis.BaseURL
	}
	if fileCfg.Synthesis.APIKey != "" {
		cfg.Synthesis.APIKey = fileCfg.Synthesis.APIKey
	}
	if fileCfg.Synthesis.Model != "" {
		cfg.Synthesis.Model = fileCfg.Synthesis.Model
	}
	if fileCfg.Synthesis.MaxTokens > 0 {
		cfg.Synthesis.MaxTokens = fileCfg.Synthesis.MaxTokens
	}
	if fileCfg.Synthesis.Temperature > 0 {
		cfg.Synthesis.Temperature = fileCfg.Synthesis.Temperature
	}
	if fileCfg.Timeout != "" {
		timeout, err := time.ParseDuration(fileCfg.Timeout)
		if err != nil {
			return fmt.Errorf("parsing timeout: %w", err)
		}
		cfg.Timeout = timeout
	}
	if fileCfg.OutputDir != "" {
		cfg.OutputDir = fileCfg.OutputDir
	}
	if fileCfg.OutputFormat != "" {
		cfg.OutputFormat = fileCfg.OutputFormat
	}
	cfg.Debug = fileCfg.Debug
	cfg.JSONLogs = fileCfg.JSONLogs

	return nil
}

// loadFromEnv overlays environment variables onto the configuration.
func loadFromEnv(cfg *CLIConfig) {
	if v := os.Getenv("RECAP_BASE_URL"); v != "" {
		cfg.Synthesis.BaseURL = v
	}

	if v := os.Getenv("RECAP_API_KEY"); v != "" {
		cfg.Synthesis.APIKey = v
	}

	if v := os.Getenv("RECAP_MODEL"); v != "" {
		cfg.Synthesis.Model = v
	}

	if v := os.Getenv("RECAP_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Synthesis.MaxTokens = n
		}
	}

	if v := os.Getenv("RECAP_TIMEOUT"); v != "" {
		if timeout, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = timeout
		}
	}

	if v := os.Getenv("RECAP_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}

	if v := os.Getenv("RECAP_OUTPUT_FORMAT"); v != "" {
		cfg.OutputFormat = OutputFormat(v)
	}

	if v := os.Getenv("RECAP_DEBUG"); v == "true" || v == "1" {
		cfg.Debug = true
	}

	if v := os.Getenv("RECAP_JSON_LOGS"); v == "true" || v == "1" {
		cfg.JSONLogs = true
	}
}

// Validate checks that the configuration is valid.
func (c *CLIConfig) Validate() error {
	if c.Synthesis.BaseURL == "" {
		return fmt.Errorf("synthesis base_url is required")
	}

	if c.Synthesis.Model == "" {
		return fmt.Errorf("synthesis model is required")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	if !c.OutputFormat.IsValid() {
		return fmt.Errorf("invalid output_format: %q (must be text, json, or yaml)", c.OutputFormat)
	}

	return nil
}

// IsValid checks if the output format is valid.
func (f OutputFormat) IsValid() bool {
	switch f {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML:
		return true
	default:
		return false
	}
}

// String returns the string representation of the output format.
func (f OutputFormat) String() string {
	return string(f)
}

// SaveConfig saves the configuration to the config file.
func SaveConfig(cfg *CLIConfig) error {
	configDir, err := ConfigDir()
	if err != nil {
		return fmt.Errorf("getting config directory: %w", err)
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(configDir, DefaultConfigFile)

	type configFile struct {
		Synthesis    SynthesisConfig `yaml:"synthesis"`
		Timeout      string          `yaml:"timeout"`
		OutputDir    string          `yaml:"output_dir,omitempty"`
		OutputFormat OutputFormat    `yaml:"output_format"`
		Debug        bool            `yaml:"debug,omitempty"`
		JSONLogs     bool            `yaml:"json_logs,omitempty"`
	}

	fileCfg := configFile{
		Synthesis:    cfg.Synthesis,
		Timeout:      cfg.Timeout.String(),
		OutputDir:    cfg.OutputDir,
		OutputFormat: cfg.OutputFormat,
		Debug:        cfg.Debug,
		JSONLogs:     cfg.JSONLogs,
	}

	data, err := yaml.Marshal(&fileCfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// ResolveOutputDir returns the expanded output directory path.
func (c *CLIConfig) ResolveOutputDir() (string, error) {
	if c.OutputDir == "" {
		return DefaultOutputDir, nil
	}
	return ExpandPath(c.OutputDir)
}
