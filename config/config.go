package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Scrape  ScrapeConfig  `mapstructure:"scrape"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Advice  AdviceConfig  `mapstructure:"advice"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Environment     string        `mapstructure:"environment"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// CatalogConfig holds the structured fragrance search API configuration
type CatalogConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	Host         string        `mapstructure:"host"`
	Timeout      time.Duration `mapstructure:"timeout"`
	SearchLimit  int           `mapstructure:"search_limit"`
	ResolveLimit int           `mapstructure:"resolve_limit"`
	SimilarLimit int           `mapstructure:"similar_limit"`
	MaxSimilar   int           `mapstructure:"max_similar"`
}

// ScrapeConfig holds the scraping proxy configuration
type ScrapeConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	Endpoint        string        `mapstructure:"endpoint"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MinInterval     time.Duration `mapstructure:"min_interval"`
	MaxRetries      int           `mapstructure:"max_retries"`
	RetryBackoff    time.Duration `mapstructure:"retry_backoff"`
	SearchWaitFor   time.Duration `mapstructure:"search_wait_for"`
	DetailWaitFor   time.Duration `mapstructure:"detail_wait_for"`
	BreakerFailures uint32        `mapstructure:"breaker_failures"`
	BreakerTimeout  time.Duration `mapstructure:"breaker_timeout"`
}

// CacheConfig holds per-namespace cache lifetimes
type CacheConfig struct {
	SearchTTL          time.Duration `mapstructure:"search_ttl"`
	FragranceTTL       time.Duration `mapstructure:"fragrance_ttl"`
	SimilarTTL         time.Duration `mapstructure:"similar_ttl"`
	ScrapeSearchTTL    time.Duration `mapstructure:"scrape_search_ttl"`
	ScrapeFragranceTTL time.Duration `mapstructure:"scrape_fragrance_ttl"`
	MaxEntries         int           `mapstructure:"max_entries"` // per namespace, 0 = unbounded
}

// AdviceConfig holds the text generation endpoint configuration
type AdviceConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// Load loads configuration from environment variables and config files.
// Missing API keys are not an error: the affected source reports itself as
// not configured when called.
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/scentpair/")

	// SCENTPAIR_SCRAPE_API_KEY -> scrape.api_key
	v.SetEnvPrefix("SCENTPAIR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Every key needs a default so AutomaticEnv can bind it on Unmarshal
	setDefaults(v)

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

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.shutdown_timeout", "10s")

	// Structured source defaults
	v.SetDefault("catalog.api_key", "")
	v.SetDefault("catalog.base_url", "https://fragrance-api.p.rapidapi.com")
	v.SetDefault("catalog.host", "fragrance-api.p.rapidapi.com")
	v.SetDefault("catalog.timeout", "15s")
	v.SetDefault("catalog.search_limit", 20)
	v.SetDefault("catalog.resolve_limit", 50)
	v.SetDefault("catalog.similar_limit", 15)
	v.SetDefault("catalog.max_similar", 10)

	// Scraped source defaults
	v.SetDefault("scrape.api_key", "")
	v.SetDefault("scrape.endpoint", "https://api.firecrawl.dev/v1/scrape")
	v.SetDefault("scrape.timeout", "60s")
	v.SetDefault("scrape.min_interval", "1s")
	v.SetDefault("scrape.max_retries", 2)
	v.SetDefault("scrape.retry_backoff", "1s")
	v.SetDefault("scrape.search_wait_for", "2s")
	v.SetDefault("scrape.detail_wait_for", "2500ms")
	v.SetDefault("scrape.breaker_failures", 5)
	v.SetDefault("scrape.breaker_timeout", "30s")

	// Cache defaults
	v.SetDefault("cache.search_ttl", "30m")
	v.SetDefault("cache.fragrance_ttl", "30m")
	v.SetDefault("cache.similar_ttl", "30m")
	v.SetDefault("cache.scrape_search_ttl", "1h")
	v.SetDefault("cache.scrape_fragrance_ttl", "1h")
	v.SetDefault("cache.max_entries", 0)

	// Advice defaults
	v.SetDefault("advice.api_key", "")
	v.SetDefault("advice.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("advice.model", "llama-3.3-70b-versatile")
	v.SetDefault("advice.timeout", "20s")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// validate validates the configuration
func validate(config *Config) error {
	ttls := map[string]time.Duration{
		"cache.search_ttl":           config.Cache.SearchTTL,
		"cache.fragrance_ttl":        config.Cache.FragranceTTL,
		"cache.similar_ttl":          config.Cache.SimilarTTL,
		"cache.scrape_search_ttl":    config.Cache.ScrapeSearchTTL,
		"cache.scrape_fragrance_ttl": config.Cache.ScrapeFragranceTTL,
	}
	for key, ttl := range ttls {
		if ttl <= 0 {
			return fmt.Errorf("%s must be positive, got: %s", key, ttl)
		}
	}

	if config.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache.max_entries must not be negative, got: %d", config.Cache.MaxEntries)
	}

	if config.Scrape.MaxRetries < 0 {
		return fmt.Errorf("scrape.max_retries must not be negative, got: %d", config.Scrape.MaxRetries)
	}

	if config.Scrape.MinInterval < 0 || config.Scrape.RetryBackoff < 0 {
		return fmt.Errorf("scrape intervals must not be negative")
	}

	if config.Log.Format != "json" && config.Log.Format != "console" {
		return fmt.Errorf("log format must be 'json' or 'console', got: %s", config.Log.Format)
	}

	return nil
}
