package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigDir  = ".stylesync"
	DefaultConfigFile = "config.yaml"

	// EnvAPIBaseURL overrides api.base_url without touching the file.
	EnvAPIBaseURL = "STYLESYNC_API_URL"
)

// Config represents the application configuration
type Config struct {
	API      APIConfig      `yaml:"api"`
	Output   OutputConfig   `yaml:"output,omitempty"`
	Defaults DefaultsConfig `yaml:"defaults,omitempty"`
}

// APIConfig holds remote API settings
type APIConfig struct {
	BaseURL        string `yaml:"base_url"`        // e.g. "http://localhost:5000/api"
	TimeoutSeconds int    `yaml:"timeout_seconds"` // Per-request timeout
}

// OutputConfig holds local file export settings
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// DefaultsConfig holds default settings
type DefaultsConfig struct {
	Channel     string `yaml:"channel,omitempty"`      // Default upload channel
	PreviewRows int    `yaml:"preview_rows,omitempty"` // Rows shown in upload preview
	PageLimit   int    `yaml:"page_limit,omitempty"`   // Default products page size
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "http://localhost:5000/api",
			TimeoutSeconds: 30,
		},
		Output: OutputConfig{
			Dir: "./output",
		},
		Defaults: DefaultsConfig{
			Channel:     "oms",
			PreviewRows: 10,
			PageLimit:   10,
		},
	}
}

// LoadEnv loads a .env file from the working directory when present.
// Missing files are fine; shell environment always wins.
func LoadEnv() {
	_ = godotenv.Load()
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, DefaultConfigDir, DefaultConfigFile), nil
}

// Load reads the configuration from the config file
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	return LoadFrom(configPath)
}

// LoadFrom reads the configuration from a specific path
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return default config if file doesn't exist
			cfg := DefaultConfig()
			applyEnv(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply defaults for missing values
	applyDefaults(&config)
	applyEnv(&config)

	return &config, nil
}

// Save writes the configuration to the config file
func Save(config *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	return SaveTo(config, configPath)
}

// SaveTo writes the configuration to a specific path
func SaveTo(config *Config, path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Init creates a new config file with defaults
func Init() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s", configPath)
	}

	return Save(DefaultConfig())
}

// Exists checks if the config file exists
func Exists() bool {
	configPath, err := GetConfigPath()
	if err != nil {
		return false
	}

	_, err = os.Stat(configPath)
	return err == nil
}

// applyDefaults fills in missing values with defaults
func applyDefaults(config *Config) {
	defaults := DefaultConfig()

	if config.API.BaseURL == "" {
		config.API.BaseURL = defaults.API.BaseURL
	}
	if config.API.TimeoutSeconds <= 0 {
		config.API.TimeoutSeconds = defaults.API.TimeoutSeconds
	}
	if config.Output.Dir == "" {
		config.Output.Dir = defaults.Output.Dir
	}
	if config.Defaults.PreviewRows <= 0 {
		config.Defaults.PreviewRows = defaults.Defaults.PreviewRows
	}
	if config.Defaults.PageLimit <= 0 {
		config.Defaults.PageLimit = defaults.Defaults.PageLimit
	}
}

// applyEnv applies environment overrides
func applyEnv(config *Config) {
	if url := os.Getenv(EnvAPIBaseURL); url != "" {
		config.API.BaseURL = url
	}
}

// Set updates a specific config value
func Set(key, value string) error {
	config, err := Load()
	if err != nil {
		return err
	}

	switch key {
	case "api.base_url":
		config.API.BaseURL = value
	case "api.timeout_seconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("api.timeout_seconds must be a number: %q", value)
		}
		config.API.TimeoutSeconds = n
	case "output.dir":
		config.Output.Dir = value
	case "defaults.channel":
		config.Defaults.Channel = value
	case "defaults.preview_rows":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("defaults.preview_rows must be a number: %q", value)
		}
		config.Defaults.PreviewRows = n
	case "defaults.page_limit":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("defaults.page_limit must be a number: %q", value)
		}
		config.Defaults.PageLimit = n
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}

	return Save(config)
}

// Get retrieves a specific config value
func Get(key string) (string, error) {
	config, err := Load()
	if err != nil {
		return "", err
	}

	switch key {
	case "api.base_url":
		return config.API.BaseURL, nil
	case "api.timeout_seconds":
		return strconv.Itoa(config.API.TimeoutSeconds), nil
	case "output.dir":
		return config.Output.Dir, nil
	case "defaults.channel":
		return config.Defaults.Channel, nil
	case "defaults.preview_rows":
		return strconv.Itoa(config.Defaults.PreviewRows), nil
	case "defaults.page_limit":
		return strconv.Itoa(config.Defaults.PageLimit), nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}
