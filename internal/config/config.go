// Package config loads the orchestrator configuration from YAML with
// environment variable expansion.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete orchestrator configuration.
type Config struct {
	Storage    StorageConfig    `yaml:"storage"`
	Models     ModelsConfig     `yaml:"models"`
	Supervisor SupervisorConfig `yaml:"supervisor"`
	Weather    WeatherConfig    `yaml:"weather"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// StorageConfig selects and configures the checkpoint store backend.
type StorageConfig struct {
	// Backend is one of "memory", "bolt", or "postgres".
	Backend string `yaml:"backend"`
	// Path is the database file path for the bolt backend.
	Path string `yaml:"path"`
	// DSN is the connection string for the postgres backend.
	DSN string `yaml:"dsn"`
}

// ModelsConfig names the models used per role and carries provider keys.
type ModelsConfig struct {
	Router         string `yaml:"router"`
	Vision         string `yaml:"vision"`
	Conversational string `yaml:"conversational"`

	DeepSeekAPIKey   string `yaml:"deepseek_api_key"`
	ByteDanceAPIKey  string `yaml:"bytedance_api_key"`
	MoonshotAPIKey   string `yaml:"moonshot_api_key"`
	OpenRouterAPIKey string `yaml:"openrouter_api_key"`
	OpenAIAPIKey     string `yaml:"openai_api_key"`
}

// SupervisorConfig bounds the tool-calling loop.
type SupervisorConfig struct {
	MaxIterations int `yaml:"max_iterations"`

	RequestTimeout    time.Duration `yaml:"-"`
	RequestTimeoutRaw string        `yaml:"request_timeout"`
}

// WeatherConfig configures the external weather API collaborator.
type WeatherConfig struct {
	BaseURL string `yaml:"base_url"`

	Timeout    time.Duration `yaml:"-"`
	TimeoutRaw string        `yaml:"timeout"`
}

// LoggingConfig holds log output configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

const (
	defaultMaxIterations  = 10
	defaultRequestTimeout = 60 * time.Second
	defaultWeatherTimeout = 10 * time.Second
	defaultWeatherBaseURL = "https://wttr.in"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} references with environment values.
// Unset variables expand to an empty string.
func expandEnvVars(data []byte) []byte {
	return envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		name := envVarPattern.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(name)))
	})
}

// Default returns a configuration usable without a config file: in-memory
// storage, DeepSeek for the router, and provider keys from the environment.
func Default() *Config {
	cfg := &Config{
		Storage: StorageConfig{Backend: "memory"},
		Models: ModelsConfig{
			Router:           "deepseek-chat",
			Vision:           "gpt-4o-mini",
			Conversational:   "deepseek-chat",
			DeepSeekAPIKey:   os.Getenv("DEEPSEEK_API_KEY"),
			ByteDanceAPIKey:  os.Getenv("BYTE_DANCE_API_KEY"),
			MoonshotAPIKey:   os.Getenv("MOONSHOT_API_KEY"),
			OpenRouterAPIKey: os.Getenv("OPENROUTER_API_KEY"),
			OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		},
		Logging: LoggingConfig{Level: "info"},
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads, expands, parses, and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(expandEnvVars(data), &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.parseDurations(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) parseDurations() error {
	var err error
	if c.Supervisor.RequestTimeoutRaw != "" {
		if c.Supervisor.RequestTimeout, err = time.ParseDuration(c.Supervisor.RequestTimeoutRaw); err != nil {
			return fmt.Errorf("config: invalid supervisor.request_timeout: %w", err)
		}
	}
	if c.Weather.TimeoutRaw != "" {
		if c.Weather.Timeout, err = time.ParseDuration(c.Weather.TimeoutRaw); err != nil {
			return fmt.Errorf("config: invalid weather.timeout: %w", err)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Storage.Backend == "" {
		c.Storage.Backend = "memory"
	}
	if c.Supervisor.MaxIterations <= 0 {
		c.Supervisor.MaxIterations = defaultMaxIterations
	}
	if c.Supervisor.RequestTimeout <= 0 {
		c.Supervisor.RequestTimeout = defaultRequestTimeout
	}
	if c.Weather.BaseURL == "" {
		c.Weather.BaseURL = defaultWeatherBaseURL
	}
	if c.Weather.Timeout <= 0 {
		c.Weather.Timeout = defaultWeatherTimeout
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks cross-field constraints not covered by defaults.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "memory":
	case "bolt":
		if c.Storage.Path == "" {
			return fmt.Errorf("config: storage.path is required for the bolt backend")
		}
	case "postgres":
		if c.Storage.DSN == "" {
			return fmt.Errorf("config: storage.dsn is required for the postgres backend")
		}
	default:
		return fmt.Errorf("config: unknown storage backend: %s", c.Storage.Backend)
	}

	if c.Models.Router == "" {
		return fmt.Errorf("config: models.router is required")
	}
	if c.Models.Vision == "" {
		return fmt.Errorf("config: models.vision is required")
	}
	if c.Models.Conversational == "" {
		c.Models.Conversational = c.Models.Router
	}

	return nil
}
