package config

import (
	"os"
	"strconv"
	"time"

	"gokinet/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Upload    UploadConfig
	Fitting   FittingConfig
	Profiling ProfilingConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DatabaseConfig holds database connection settings.
// URL is optional: without it the app keeps analysis history in memory.
type DatabaseConfig struct {
	URL string
}

// UploadConfig holds file upload limits
type UploadConfig struct {
	MaxBytes int64
}

// FittingConfig holds model fitting settings
type FittingConfig struct {
	StableSlopeThreshold  float64
	MaxConcurrentAnalyses int64
	AnalysisTimeout       time.Duration
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// DefaultFittingConfig returns fitting settings with the standard defaults,
// for callers that run the pipeline outside the env-configured servers
func DefaultFittingConfig() FittingConfig {
	return FittingConfig{
		StableSlopeThreshold:  0.1,
		MaxConcurrentAnalyses: 8,
		AnalysisTimeout:       30 * time.Second,
	}
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "debug"),
		},
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
		Upload: UploadConfig{
			MaxBytes: int64(getEnvIntOrDefault("MAX_UPLOAD_BYTES", 10<<20)),
		},
		Fitting: FittingConfig{
			StableSlopeThreshold:  getEnvFloatOrDefault("STABLE_SLOPE_THRESHOLD", 0.1),
			MaxConcurrentAnalyses: int64(getEnvIntOrDefault("MAX_CONCURRENT_ANALYSES", 8)),
			AnalysisTimeout:       getEnvDurationOrDefault("ANALYSIS_TIMEOUT", 30*time.Second),
		},
		Profiling: ProfilingConfig{
			Port:    getEnvOrDefault("PPROF_PORT", "6060"),
			Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Upload.MaxBytes <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_BYTES must be positive")
	}
	if config.Fitting.StableSlopeThreshold <= 0 || config.Fitting.StableSlopeThreshold >= 1 {
		return errors.ConfigInvalid("STABLE_SLOPE_THRESHOLD must be in (0, 1)")
	}
	if config.Fitting.MaxConcurrentAnalyses <= 0 {
		return errors.ConfigInvalid("MAX_CONCURRENT_ANALYSES must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
