package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Reasoning ReasoningConfig
	Table     TableConfig
	Matching  MatchingConfig
	Mass      MassConfig
	Serving   ServingConfig
	Alias     AliasConfig
	Cache     CacheConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// ReasoningConfig holds configuration for the external reasoning service
// that supplies ingredient lists and aliases.
type ReasoningConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	Model             string        `mapstructure:"model"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	RetryCount        int           `mapstructure:"retry_count"`
}

// TableConfig points at the food-composition table loaded at startup
type TableConfig struct {
	Path string `mapstructure:"path"`
}

// MatchingConfig holds food matcher tuning
type MatchingConfig struct {
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	Scorer              string  `mapstructure:"scorer"` // "dice" or "levenshtein"
}

// MassConfig holds the household-unit heuristics used to estimate grams
type MassConfig struct {
	DefaultBaseGrams float64            `mapstructure:"default_base_grams"`
	GenericUnitGrams float64            `mapstructure:"generic_unit_grams"`
	Densities        map[string]float64 `mapstructure:"densities"`
}

// ServingConfig holds the reference serving the totals are rescaled to
type ServingConfig struct {
	TargetGrams float64 `mapstructure:"target_grams"`
}

// AliasConfig holds alias expansion settings
type AliasConfig struct {
	MaxConcurrency int `mapstructure:"max_concurrency"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/nutrikatori/")

	v.SetEnvPrefix("NUTRIKATORI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults are enough to run.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads a .env file from the working directory when one exists
func loadEnvFile() error {
	err := godotenv.Load()
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// DefaultDensities returns the household-unit masses (grams per tbsp, cup,
// medium piece, ...) keyed by normalized ingredient name.
func DefaultDensities() map[string]float64 {
	return map[string]float64{
		"oil":      13,
		"sugar":    12.5,
		"salt":     18,
		"jeera":    2,
		"rice":     195,
		"water":    240,
		"aloo":     150,
		"onion":    100,
		"capsicum": 120,
	}
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Reasoning defaults; an empty key disables dish extraction
	v.SetDefault("reasoning.api_key", "")
	v.SetDefault("reasoning.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("reasoning.model", "gemini-2.0-flash")
	v.SetDefault("reasoning.timeout", "30s")
	v.SetDefault("reasoning.requests_per_second", 5.0)
	v.SetDefault("reasoning.burst", 10)
	v.SetDefault("reasoning.retry_count", 2)

	v.SetDefault("table.path", "nutrition_db.xlsx")

	v.SetDefault("matching.similarity_threshold", 0.75)
	v.SetDefault("matching.scorer", "dice")

	v.SetDefault("mass.default_base_grams", 10.0)
	v.SetDefault("mass.generic_unit_grams", 100.0)
	v.SetDefault("mass.densities", DefaultDensities())

	v.SetDefault("serving.target_grams", 180.0) // 1 katori

	v.SetDefault("alias.max_concurrency", 8)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "720h") // 30 days
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Table.Path == "" {
		return fmt.Errorf("food table path is required (set NUTRIKATORI_TABLE_PATH)")
	}

	if t := config.Matching.SimilarityThreshold; t <= 0 || t > 1 {
		return fmt.Errorf("similarity threshold must be in (0, 1], got: %v", t)
	}

	if config.Matching.Scorer != "dice" && config.Matching.Scorer != "levenshtein" {
		return fmt.Errorf("scorer must be 'dice' or 'levenshtein', got: %s", config.Matching.Scorer)
	}

	if config.Mass.DefaultBaseGrams <= 0 || config.Mass.GenericUnitGrams <= 0 {
		return fmt.Errorf("mass defaults must be positive")
	}

	for name, grams := range config.Mass.Densities {
		if grams <= 0 {
			return fmt.Errorf("density for %q must be positive, got: %v", name, grams)
		}
	}

	if config.Serving.TargetGrams <= 0 {
		return fmt.Errorf("serving target must be positive, got: %v", config.Serving.TargetGrams)
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	return nil
}
