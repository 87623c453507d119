package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/clothesfinder/backend/internal/infrastructure/marketplace"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Scrape    ScrapeConfig
	Search    SearchConfig
	Scoring   ScoringConfig
	Matching  MatchingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type      string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL  string        `mapstructure:"redis_url"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	TTL       time.Duration `mapstructure:"ttl"`
	PageTTL   time.Duration `mapstructure:"page_ttl"` // 0 disables the page body cache
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP     int     `mapstructure:"per_ip"`   // inbound requests per minute per client
	PerHost   float64 `mapstructure:"per_host"` // outbound requests per second per marketplace host
	HostBurst int     `mapstructure:"host_burst"`
}

// ScrapeConfig holds outbound fetch configuration
type ScrapeConfig struct {
	UserAgent      string        `mapstructure:"user_agent"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
	Retries        int           `mapstructure:"retries"`
	RespectRobots  bool          `mapstructure:"respect_robots"`
	RobotsTTL      time.Duration `mapstructure:"robots_ttl"`
	PerSiteLimit   int           `mapstructure:"per_site_limit"`
	MaxPageText    int           `mapstructure:"max_page_text"`
	Sites          []string      `mapstructure:"sites"`
}

// SearchConfig holds fan-out configuration
type SearchConfig struct {
	SearchWorkers int           `mapstructure:"search_workers"`
	SearchTimeout time.Duration `mapstructure:"search_timeout"`
	EnrichWorkers int           `mapstructure:"enrich_workers"`
	EnrichTimeout time.Duration `mapstructure:"enrich_timeout"`
	MaxEnrich     int           `mapstructure:"max_enrich"`
	TopN          int           `mapstructure:"top_n"`
}

// WeightsConfig holds the scorer weights
type WeightsConfig struct {
	Item   float64 `mapstructure:"item"`
	Brand  float64 `mapstructure:"brand"`
	Style  float64 `mapstructure:"style"`
	Gender float64 `mapstructure:"gender"`
	Kids   float64 `mapstructure:"kids"`
	Color  float64 `mapstructure:"color"`
	Size   float64 `mapstructure:"size"`
	Price  float64 `mapstructure:"price"`
	Used   float64 `mapstructure:"used"`
	URL    float64 `mapstructure:"url"`
	Title  float64 `mapstructure:"title"`
}

// ScoringConfig holds scoring configuration
type ScoringConfig struct {
	Weights        WeightsConfig `mapstructure:"weights"`
	VocabularyFile string        `mapstructure:"vocabulary_file"`
}

// MatchingConfig holds text matching configuration
type MatchingConfig struct {
	EnableFuzzyMatching bool    `mapstructure:"enable_fuzzy_matching"`
	FuzzyThreshold      float64 `mapstructure:"fuzzy_threshold"`
	EnableDebugLogging  bool    `mapstructure:"enable_debug_logging"`
}

// Load loads configuration from .env, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/clothesfinder/")

	// Environment variable settings: CLOTHESFINDER_SEARCH_TOP_N -> search.top_n
	v.SetEnvPrefix("CLOTHESFINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads .env from the working directory if present. Variables
// already set in the environment win.
func loadEnvFile() error {
	err := godotenv.Load(".env")
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"chrome-extension://*", "http://localhost:3000"})

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.key_prefix", "clothesfinder:")
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("cache.page_ttl", "5m")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 60)
	v.SetDefault("ratelimit.per_host", 2.0)
	v.SetDefault("ratelimit.host_burst", 4)

	// Scrape defaults
	v.SetDefault("scrape.user_agent", "")
	v.SetDefault("scrape.request_timeout", "8s")
	v.SetDefault("scrape.max_body_bytes", 5*1024*1024)
	v.SetDefault("scrape.retries", 1)
	v.SetDefault("scrape.respect_robots", false)
	v.SetDefault("scrape.robots_ttl", "1h")
	v.SetDefault("scrape.per_site_limit", marketplace.DefaultPerSiteLimit)
	v.SetDefault("scrape.max_page_text", 20000)
	v.SetDefault("scrape.sites", []string{"vinted", "tradera", "blocket", "zalando", "amazon", "plick", "sellpy", "facebook"})

	// Search defaults
	v.SetDefault("search.search_workers", 8)
	v.SetDefault("search.search_timeout", "12s")
	v.SetDefault("search.enrich_workers", 12)
	v.SetDefault("search.enrich_timeout", "15s")
	v.SetDefault("search.max_enrich", 40)
	v.SetDefault("search.top_n", 10)

	// Scoring defaults
	v.SetDefault("scoring.weights.item", 30.0)
	v.SetDefault("scoring.weights.brand", 20.0)
	v.SetDefault("scoring.weights.style", 15.0)
	v.SetDefault("scoring.weights.gender", 10.0)
	v.SetDefault("scoring.weights.kids", 15.0)
	v.SetDefault("scoring.weights.color", 5.0)
	v.SetDefault("scoring.weights.size", 10.0)
	v.SetDefault("scoring.weights.price", 10.0)
	v.SetDefault("scoring.weights.used", 5.0)
	v.SetDefault("scoring.weights.url", 2.0)
	v.SetDefault("scoring.weights.title", 1.0)
	v.SetDefault("scoring.vocabulary_file", "")

	// Matching defaults
	v.SetDefault("matching.enable_fuzzy_matching", true)
	v.SetDefault("matching.fuzzy_threshold", 0.85)
	v.SetDefault("matching.enable_debug_logging", false)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	if config.Cache.TTL < 0 || config.Cache.PageTTL < 0 {
		return fmt.Errorf("cache TTLs must not be negative")
	}

	s := config.Search
	if s.SearchWorkers <= 0 || s.EnrichWorkers <= 0 {
		return fmt.Errorf("worker counts must be positive, got search=%d enrich=%d", s.SearchWorkers, s.EnrichWorkers)
	}
	if s.SearchTimeout <= 0 || s.EnrichTimeout <= 0 {
		return fmt.Errorf("search and enrich timeouts must be positive")
	}
	if s.TopN <= 0 {
		return fmt.Errorf("search top_n must be positive, got: %d", s.TopN)
	}
	if s.MaxEnrich < 0 {
		return fmt.Errorf("search max_enrich must not be negative, got: %d", s.MaxEnrich)
	}

	if config.Scrape.RequestTimeout <= 0 {
		return fmt.Errorf("scrape request_timeout must be positive")
	}

	if config.Matching.FuzzyThreshold < 0 || config.Matching.FuzzyThreshold > 1 {
		return fmt.Errorf("fuzzy threshold must be between 0 and 1, got: %v", config.Matching.FuzzyThreshold)
	}

	known := 0
	for _, site := range config.Scrape.Sites {
		if strings.TrimSpace(site) == "" {
			continue
		}
		if !marketplace.KnownSite(site) {
			return fmt.Errorf("unknown site: %s", site)
		}
		known++
	}
	if known == 0 {
		return fmt.Errorf("at least one site must be enabled")
	}

	return nil
}
