// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Training   TrainingConfig   `mapstructure:"training"`
	Prediction PredictionConfig `mapstructure:"prediction"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// --- Engine Configuration ---

// TrainingConfig holds the hyperparameters and thresholds of a training run.
// All fields have working defaults; config only needs to override.
type TrainingConfig struct {
	Epochs             int     `mapstructure:"epochs"`
	BatchSize          int     `mapstructure:"batch_size"`
	LearningRate       float64 `mapstructure:"learning_rate"`
	Regularization     float64 `mapstructure:"regularization"`
	Patience           int     `mapstructure:"patience"`
	ConvergenceLoss    float64 `mapstructure:"convergence_loss"`
	Folds              int     `mapstructure:"folds"`
	Seed               int64   `mapstructure:"seed"`
	MinSamplesGlobal   int     `mapstructure:"min_samples_global"`
	MinSamplesScoped   int     `mapstructure:"min_samples_scholarship"`
	InitialWeight      float64 `mapstructure:"initial_weight"`
	MaxAbsoluteWeight  float64 `mapstructure:"max_absolute_weight"`
	MaxAbsoluteBias    float64 `mapstructure:"max_absolute_bias"`
	LearningRateDecay  float64 `mapstructure:"learning_rate_decay"`
}

// PredictionConfig holds prediction-side settings.
type PredictionConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// GetDuration converts milliseconds from config to time.Duration.
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
