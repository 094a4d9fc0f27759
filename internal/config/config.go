package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all client configuration.
type Config struct {
	ServerURL       string        `mapstructure:"SERVER_URL"`
	APIToken        string        `mapstructure:"API_TOKEN"`
	HTTPTimeout     time.Duration `mapstructure:"HTTP_TIMEOUT"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	LogFormat       string        `mapstructure:"LOG_FORMAT"`
	FastAdvanceMS   int           `mapstructure:"FAST_ADVANCE_MS"`
	RemoteAdvanceMS int           `mapstructure:"REMOTE_ADVANCE_MS"`
	HistoryDB       string        `mapstructure:"HISTORY_DB"`
}

// Load reads configuration from studyquiz.yaml (if present) and QUIZ_*
// environment variables. A local .env file is loaded first so tokens can be
// kept out of the shell history; it is optional.
func Load() (*Config, error) {
	_ = godotenv.Load()

	viper.SetConfigName("studyquiz")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/studyquiz")

	viper.SetDefault("SERVER_URL", "http://127.0.0.1:4000")
	viper.SetDefault("API_TOKEN", "")
	viper.SetDefault("HTTP_TIMEOUT", "15s")
	viper.SetDefault("LOG_LEVEL", "warn")
	viper.SetDefault("LOG_FORMAT", "pretty")
	viper.SetDefault("FAST_ADVANCE_MS", 2000)
	viper.SetDefault("REMOTE_ADVANCE_MS", 5000)
	viper.SetDefault("HISTORY_DB", "")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	viper.SetEnvPrefix("QUIZ")
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// FastAdvance is the auto-advance delay after an exact-match correct answer.
func (c *Config) FastAdvance() time.Duration {
	return time.Duration(c.FastAdvanceMS) * time.Millisecond
}

// RemoteAdvance is the auto-advance delay after a remotely graded correct
// answer, sized for reading the generated explanation.
func (c *Config) RemoteAdvance() time.Duration {
	return time.Duration(c.RemoteAdvanceMS) * time.Millisecond
}
