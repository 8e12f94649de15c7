// Package config provides configuration for the roster engine CLI.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config is the engine's process-wide configuration.
type Config struct {
	App    AppConfig
	Solver SolverConfig
}

// AppConfig is basic process identity and logging configuration.
type AppConfig struct {
	Name     string
	Env      string
	LogLevel string
}

// SolverConfig controls CP-SAT resource usage and solve-pass deadlines.
type SolverConfig struct {
	NumSearchWorkers   int
	RandomSeed         int64
	NightsOnlyTimeout  time.Duration
	FullSolveTimeout   time.Duration
	LongHorizonTimeout time.Duration
}

// IsDevelopment reports whether the process is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction reports whether the process is running in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// Load reads configuration from environment variables, falling back to
// the engine's defaults.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:     getEnv("APP_NAME", "picu-roster"),
			Env:      getEnv("APP_ENV", "development"),
			LogLevel: getEnv("APP_LOG_LEVEL", "info"),
		},
		Solver: SolverConfig{
			NumSearchWorkers:   getEnvInt("SOLVER_SEARCH_WORKERS", 8),
			RandomSeed:         getEnvInt64("SOLVER_RANDOM_SEED", 42),
			NightsOnlyTimeout:  getEnvDuration("SOLVER_NIGHTS_ONLY_TIMEOUT", 60*time.Second),
			FullSolveTimeout:   getEnvDuration("SOLVER_FULL_TIMEOUT", 120*time.Second),
			LongHorizonTimeout: getEnvDuration("SOLVER_LONG_HORIZON_TIMEOUT", 1800*time.Second),
		},
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
