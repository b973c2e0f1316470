package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full application configuration, matching config.yaml.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Experts  ExpertsConfig  `mapstructure:"experts"`
}

// ServerConfig holds the HTTP serving settings.
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug/release/test
}

// PostgresConfig holds database connection settings.
type PostgresConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// AnalysisConfig holds the tunable constants of the value and row
// calculations. The defaults mirror long-standing practice rather than
// any derivation, so they are configuration instead of code.
type AnalysisConfig struct {
	// MinValueThreshold is the value ratio above which a sign is
	// recommended (1.05 = public underrates the outcome by 5%).
	MinValueThreshold float64 `mapstructure:"min_value_threshold"`
	// MaxHalfCovers bounds how many matches may be half-covered in a
	// generated row.
	MaxHalfCovers int `mapstructure:"max_half_covers"`
	// HalfCoverCloseness is the minimum second-best/best value ratio for
	// a match to qualify as a half-cover candidate.
	HalfCoverCloseness float64 `mapstructure:"half_cover_closeness"`
	// PredictionWindowDays bounds how old a match kickoff may be when
	// linking scraped predictions, to avoid cross-season false positives.
	PredictionWindowDays int `mapstructure:"prediction_window_days"`
}

// ExpertsConfig holds the expert-source settings.
type ExpertsConfig struct {
	EnabledSources []string `mapstructure:"enabled_sources"`
	// SourceWeights gives each source a fixed reliability weight for the
	// weighted consensus; unknown sources count as 1.0.
	SourceWeights map[string]float64 `mapstructure:"source_weights"`
}

// LoadConfig reads config/config.yaml; a .env file (if present) and
// selected environment variables override the serving and credential
// fields so secrets stay out of git.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // .env is optional

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	viper.SetTypeByDefaultValue(true)
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	overrideFromEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Analysis.MinValueThreshold <= 0 {
		cfg.Analysis.MinValueThreshold = 1.05
	}
	if cfg.Analysis.MaxHalfCovers <= 0 {
		cfg.Analysis.MaxHalfCovers = 2
	}
	if cfg.Analysis.HalfCoverCloseness <= 0 {
		cfg.Analysis.HalfCoverCloseness = 0.7
	}
	if cfg.Analysis.PredictionWindowDays <= 0 {
		cfg.Analysis.PredictionWindowDays = 14
	}
}
