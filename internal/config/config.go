package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Server     ServerConfig
	LLM        LLMConfig
	Experiment ExperimentConfig
	Providers  map[string]ProviderConfig
	LogLevel   string `mapstructure:"log_level"`
}

// ServerConfig holds the server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

// LLMConfig holds gateway-wide call behavior
type LLMConfig struct {
	CallTimeout      time.Duration `mapstructure:"call_timeout"`
	AllowPlaceholder bool          `mapstructure:"allow_placeholder"`
}

// ExperimentConfig holds the coordinator and debate settings
type ExperimentConfig struct {
	Rounds            int    `mapstructure:"rounds"`
	Concurrent        bool   `mapstructure:"concurrent"`
	MaxQuestionRunes  int    `mapstructure:"max_question_runes"`
	PrimaryProvider   string `mapstructure:"primary_provider"`
	SecondaryProvider string `mapstructure:"secondary_provider"`
}

// ProviderConfig holds one backend's model catalog and pacing limits
type ProviderConfig struct {
	APIKeyEnv   string        `mapstructure:"api_key_env"`
	Model       string        `mapstructure:"model"`
	Fallbacks   []string      `mapstructure:"fallbacks"`
	MinSpacing  time.Duration `mapstructure:"min_spacing"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
	MaxAttempts int           `mapstructure:"max_attempts"`
}

// Load loads the configuration from config.yaml, or from the file named
// by the CONFIG_PATH environment variable when set.
func Load() (*Config, error) {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("llm.call_timeout", "90s")
	viper.SetDefault("llm.allow_placeholder", true)
	viper.SetDefault("experiment.rounds", 2)
	viper.SetDefault("experiment.concurrent", false)
	viper.SetDefault("experiment.max_question_runes", 2000)
	viper.SetDefault("experiment.primary_provider", "openai")
	viper.SetDefault("experiment.secondary_provider", "anthropic")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config.Experiment.Rounds < 1 {
		return nil, fmt.Errorf("experiment.rounds must be at least 1, got %d", config.Experiment.Rounds)
	}

	return &config, nil
}
