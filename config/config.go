package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/lifeboard/shopping-service/internal/location"
	"github.com/lifeboard/shopping-service/internal/optimizer"
)

// Config holds the application configuration
type Config struct {
	Server    ServerConfig     `mapstructure:"server"`
	Optimizer optimizer.Config `mapstructure:"optimizer"`
	Location  location.Config  `mapstructure:"location"`
	RateLimit RateLimitConfig  `mapstructure:"rate_limit"`
	Logging   LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// RateLimitConfig holds inbound rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	BurstSize         int     `mapstructure:"burst_size"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
}

var globalConfig *Config

// Load loads the configuration from file, .env, and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// Load .env file
	if err := loadEnvFile(); err != nil {
		// .env is optional, log but don't fail
		log.Warn().Err(err).Msg("Warning: .env file not loaded")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvPrefix("SHOPPING_SERVICE")

	// Bind env keys for nested config
	bindEnvVars(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Optimizer.Validate(); err != nil {
		return nil, fmt.Errorf("invalid optimizer config: %w", err)
	}

	globalConfig = &cfg
	return &cfg, nil
}

// loadEnvFile loads a .env file from the usual locations
func loadEnvFile() error {
	envPaths := []string{".", "./config"}

	for _, path := range envPaths {
		envFile := fmt.Sprintf("%s/.env", path)
		if _, err := os.Stat(envFile); err == nil {
			if err := loadDotEnvFile(envFile); err == nil {
				return nil
			}
		}
	}
	return fmt.Errorf("no .env file found")
}

// loadDotEnvFile reads a .env file and sets environment variables
func loadDotEnvFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			// Remove quotes if present
			value = strings.Trim(value, "\"'")
			os.Setenv(key, value)
		}
	}
	return scanner.Err()
}

// bindEnvVars binds environment variables to config keys
func bindEnvVars(v *viper.Viper) {
	// Server
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.host", "HOST")

	// Logging
	v.BindEnv("logging.level", "LOG_LEVEL")

	// Location collaborator
	v.BindEnv("location.base_url", "LOCATION_BASE_URL")
	v.BindEnv("location.api_key", "LOCATION_API_KEY")

	// Optimizer tunables
	v.BindEnv("optimizer.max_subset_size", "MAX_SUBSET_SIZE")
	v.BindEnv("optimizer.max_catalog_stores", "MAX_CATALOG_STORES")
	v.BindEnv("optimizer.max_basket_items", "MAX_BASKET_ITEMS")
	v.BindEnv("optimizer.default_travel_min", "DEFAULT_TRAVEL_MIN")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	// Optimizer defaults
	opt := optimizer.Defaults()
	v.SetDefault("optimizer.max_subset_size", opt.MaxSubsetSize)
	v.SetDefault("optimizer.max_catalog_stores", opt.MaxCatalogStores)
	v.SetDefault("optimizer.max_basket_items", opt.MaxBasketItems)
	v.SetDefault("optimizer.result_limit", opt.ResultLimit)
	v.SetDefault("optimizer.travel_lookup_timeout", opt.TravelLookupTimeout)
	v.SetDefault("optimizer.travel_workers", opt.TravelWorkers)
	v.SetDefault("optimizer.default_travel_min", opt.DefaultTravelMin)
	v.SetDefault("optimizer.matrix_fallback_min", opt.MatrixFallbackMin)

	// Location client defaults
	loc := location.DefaultConfig()
	v.SetDefault("location.timeout", loc.Timeout)
	v.SetDefault("location.max_retries", loc.MaxRetries)
	v.SetDefault("location.initial_backoff", loc.InitialBackoff)
	v.SetDefault("location.max_backoff", loc.MaxBackoff)
	v.SetDefault("location.requests_per_second", loc.RequestsPerSecond)
	v.SetDefault("location.burst", loc.Burst)

	// Rate limit defaults
	v.SetDefault("rate_limit.requests_per_second", 10)
	v.SetDefault("rate_limit.burst_size", 20)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.no_color", false)
}

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}
