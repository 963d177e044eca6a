package config

import (
	"os"
	"strconv"
	"time"

	"neeledger/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database  DatabaseConfig
	AI        AIConfig
	Server    ServerConfig
	Pipeline  PipelineConfig
	Profiling ProfilingConfig
}

// DatabaseConfig holds database connection settings. URL may be empty, in
// which case reviews are kept in memory.
type DatabaseConfig struct {
	URL string
}

// AIConfig holds Gemini related settings. APIKey may be empty, in which case
// qualitative analysis is disabled and the pipeline runs numeric-only.
type AIConfig struct {
	APIKey          string
	Model           string
	BaseURL         string
	Temperature     float64
	MaxOutputTokens int
	RequestTimeout  time.Duration
	MaxConcurrent   int64
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `validate:"required"`
	GinMode string
}

// PipelineConfig holds verification pipeline settings
type PipelineConfig struct {
	AnalysisTimeout time.Duration
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	aiConfig, err := loadAIConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AI configuration")
	}
	config.AI = *aiConfig

	config.Database = *loadDatabaseConfig()
	config.Server = *loadServerConfig()
	config.Pipeline = *loadPipelineConfig()
	config.Profiling = *loadProfilingConfig()

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		URL: getEnvOrDefault("DATABASE_URL", ""),
	}
}

func loadAIConfig() (*AIConfig, error) {
	maxConcurrent := getEnvIntOrDefault("ANALYZER_MAX_CONCURRENT", 4)
	if maxConcurrent < 1 {
		return nil, errors.ConfigInvalid("ANALYZER_MAX_CONCURRENT must be at least 1")
	}

	return &AIConfig{
		APIKey:          os.Getenv("GEMINI_API_KEY"),
		Model:           getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-pro"),
		BaseURL:         getEnvOrDefault("GEMINI_BASE_URL", ""),
		Temperature:     getEnvFloatOrDefault("GEMINI_TEMPERATURE", 0.2),
		MaxOutputTokens: getEnvIntOrDefault("GEMINI_MAX_OUTPUT_TOKENS", 2048),
		RequestTimeout:  getEnvDurationOrDefault("GEMINI_REQUEST_TIMEOUT", 30*time.Second),
		MaxConcurrent:   int64(maxConcurrent),
	}, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		AnalysisTimeout: getEnvDurationOrDefault("ANALYSIS_TIMEOUT", 45*time.Second),
	}
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.AI.RequestTimeout <= 0 {
		return errors.ConfigInvalid("Gemini request timeout must be positive")
	}
	if config.Pipeline.AnalysisTimeout <= 0 {
		return errors.ConfigInvalid("analysis timeout must be positive")
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
