package optimizer

import "time"

// Config holds the tunables of the shopping optimizer.
// It is loaded from environment variables or a config file.
type Config struct {
	// Combination search. MaxSubsetSize bounds the subset enumeration:
	// the search is O(sum C(n,k)) over the catalog, so the bound must stay
	// small for it to remain tractable (<=3 for catalogs up to 20 stores).
	MaxSubsetSize    int `mapstructure:"max_subset_size" env:"MAX_SUBSET_SIZE" default:"3"`
	MaxCatalogStores int `mapstructure:"max_catalog_stores" env:"MAX_CATALOG_STORES" default:"20"`

	// Validation limits
	MaxBasketItems int `mapstructure:"max_basket_items" env:"MAX_BASKET_ITEMS" default:"100"`

	// Ranked recommendation cap for the optimize operation
	ResultLimit int `mapstructure:"result_limit" env:"RESULT_LIMIT" default:"50"`

	// Travel estimation
	TravelLookupTimeout time.Duration `mapstructure:"travel_lookup_timeout" env:"TRAVEL_LOOKUP_TIMEOUT" default:"2s"`
	TravelWorkers       int           `mapstructure:"travel_workers" env:"TRAVEL_WORKERS" default:"4"`
	DefaultTravelMin    float64       `mapstructure:"default_travel_min" env:"DEFAULT_TRAVEL_MIN" default:"20"`
	MatrixFallbackMin   float64       `mapstructure:"matrix_fallback_min" env:"MATRIX_FALLBACK_MIN" default:"15"`
}

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		MaxSubsetSize:       3,
		MaxCatalogStores:    20,
		MaxBasketItems:      100,
		ResultLimit:         50,
		TravelLookupTimeout: 2 * time.Second,
		TravelWorkers:       4,
		DefaultTravelMin:    20,
		MatrixFallbackMin:   15,
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.MaxSubsetSize < 1 {
		return ErrInvalidConfig{Field: "max_subset_size", Reason: "must be at least 1"}
	}
	if c.MaxSubsetSize > 3 {
		return ErrInvalidConfig{Field: "max_subset_size", Reason: "must not exceed 3"}
	}
	if c.MaxCatalogStores < 1 {
		return ErrInvalidConfig{Field: "max_catalog_stores", Reason: "must be at least 1"}
	}
	if c.MaxBasketItems < 1 {
		return ErrInvalidConfig{Field: "max_basket_items", Reason: "must be at least 1"}
	}
	if c.ResultLimit < 1 {
		return ErrInvalidConfig{Field: "result_limit", Reason: "must be at least 1"}
	}
	if c.TravelLookupTimeout <= 0 {
		return ErrInvalidConfig{Field: "travel_lookup_timeout", Reason: "must be positive"}
	}
	if c.TravelWorkers < 1 {
		return ErrInvalidConfig{Field: "travel_workers", Reason: "must be at least 1"}
	}
	if c.DefaultTravelMin <= 0 {
		return ErrInvalidConfig{Field: "default_travel_min", Reason: "must be positive"}
	}
	if c.MatrixFallbackMin <= 0 {
		return ErrInvalidConfig{Field: "matrix_fallback_min", Reason: "must be positive"}
	}
	return nil
}

// ErrInvalidConfig is returned when the configuration is invalid.
type ErrInvalidConfig struct {
	Field  string
	Reason string
}

func (e ErrInvalidConfig) Error() string {
	return e.Field + ": " + e.Reason
}
