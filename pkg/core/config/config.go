// Package config loads runtime settings from an optional YAML file, a .env file
// and environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. INSIGHTS_LLM_MODEL.
const EnvPrefix = "INSIGHTS"

// Recommendation write modes.
const (
	ModeAppend  = "append"
	ModeReplace = "replace"
)

// Config represents the complete application configuration.
type Config struct {
	Database        DatabaseConfig        `mapstructure:"database"`
	Finnhub         FinnhubConfig         `mapstructure:"finnhub"`
	LLM             LLMConfig             `mapstructure:"llm"`
	Pipeline        PipelineConfig        `mapstructure:"pipeline"`
	Recommendations RecommendationsConfig `mapstructure:"recommendations"`
	Server          ServerConfig          `mapstructure:"server"`
	Schedule        ScheduleConfig        `mapstructure:"schedule"`
	Prompts         PromptsConfig         `mapstructure:"prompts"`
	Logging         LoggingConfig         `mapstructure:"logging"`
}

type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// FinnhubConfig configures the financial-data provider client.
type FinnhubConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"` // 0 disables the limiter
}

// LLMConfig configures the inference provider used by the insight generator.
// Temperature and MaxTokens are fixed for every call of a run.
type LLMConfig struct {
	Provider     string        `mapstructure:"provider"` // "groq", "openai", "deepseek", "gemini", "anthropic"
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	Model        string        `mapstructure:"model"`
	Temperature  float64       `mapstructure:"temperature"`
	MaxTokens    int           `mapstructure:"max_tokens"`
	Timeout      time.Duration `mapstructure:"timeout"`
	GeminiAPIKey string        `mapstructure:"gemini_api_key"`
	ClaudeAPIKey string        `mapstructure:"anthropic_api_key"`
}

type PipelineConfig struct {
	Symbols []string `mapstructure:"symbols"`
	Workers int      `mapstructure:"workers"`
}

// RecommendationsConfig decides what a rerun of the recommendation pipeline does
// with rows already written for a company.
type RecommendationsConfig struct {
	Mode string `mapstructure:"mode"` // "append" (default) or "replace"
}

type ServerConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	StaticDir string `mapstructure:"static_dir"`
}

type ScheduleConfig struct {
	Cron string `mapstructure:"cron"`
}

type PromptsConfig struct {
	Dir string `mapstructure:"dir"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"` // "debug", "info", "warn", "error"
}

// Load reads configuration in this order, later sources winning:
//  1. built-in defaults
//  2. config file (path, or ./config/config.yaml when path is empty; optional)
//  3. .env file in the working directory (optional)
//  4. environment variables (INSIGHTS_<SECTION>_<KEY>, plus the legacy
//     DATABASE_URL, FINNHUB_API_KEY, GROQ_API_KEY, GEMINI_API_KEY, PORT)
func Load(path string) (*Config, error) {
	// A missing .env is fine; variables may already be in the environment.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindLegacyEnv(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.normalize()
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.max_conns", 4)

	v.SetDefault("finnhub.base_url", "https://finnhub.io/api/v1")
	v.SetDefault("finnhub.timeout", 30*time.Second)
	v.SetDefault("finnhub.requests_per_second", 1.0)

	v.SetDefault("llm.provider", "groq")
	v.SetDefault("llm.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("llm.model", "llama-3.1-8b-instant")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 1024)
	v.SetDefault("llm.timeout", 60*time.Second)

	v.SetDefault("pipeline.symbols", []string{"AAPL", "MSFT", "GOOGL"})
	v.SetDefault("pipeline.workers", 1)

	v.SetDefault("recommendations.mode", ModeAppend)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.static_dir", "")

	v.SetDefault("schedule.cron", "0 6 * * *")

	v.SetDefault("prompts.dir", "resources/prompts")

	v.SetDefault("logging.level", "info")
}

// bindLegacyEnv keeps the variable names used by existing .env files working.
func bindLegacyEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"database.url":          {"INSIGHTS_DATABASE_URL", "DATABASE_URL"},
		"finnhub.api_key":       {"INSIGHTS_FINNHUB_API_KEY", "FINNHUB_API_KEY"},
		"llm.api_key":           {"INSIGHTS_LLM_API_KEY", "GROQ_API_KEY"},
		"llm.gemini_api_key":    {"INSIGHTS_LLM_GEMINI_API_KEY", "GEMINI_API_KEY"},
		"llm.anthropic_api_key": {"INSIGHTS_LLM_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"},
		"server.port":           {"INSIGHTS_SERVER_PORT", "PORT"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}
	return nil
}

func (c *Config) normalize() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	c.Recommendations.Mode = strings.ToLower(strings.TrimSpace(c.Recommendations.Mode))
	if c.Pipeline.Workers < 1 {
		c.Pipeline.Workers = 1
	}
}

// ValidateIngest checks the settings the ingestion pipeline cannot run without.
func (c *Config) ValidateIngest() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL environment variable not set")
	}
	if c.Finnhub.APIKey == "" {
		return fmt.Errorf("FINNHUB_API_KEY environment variable not set")
	}
	return nil
}

// ValidateRecommend checks the settings the recommendation pipeline cannot run without.
func (c *Config) ValidateRecommend() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL environment variable not set")
	}
	switch c.LLM.Provider {
	case "groq", "openai", "deepseek":
		if c.LLM.APIKey == "" {
			return fmt.Errorf("llm.api_key not set (GROQ_API_KEY or INSIGHTS_LLM_API_KEY)")
		}
	case "gemini":
		if c.LLM.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
	case "anthropic":
		if c.LLM.ClaudeAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	switch c.Recommendations.Mode {
	case ModeAppend, ModeReplace:
	default:
		return fmt.Errorf("recommendations.mode must be %q or %q, got %q", ModeAppend, ModeReplace, c.Recommendations.Mode)
	}
	return nil
}

// ValidateServe checks the settings the query API cannot run without.
func (c *Config) ValidateServe() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL environment variable not set")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

// Addr returns the listen address for the query API.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
