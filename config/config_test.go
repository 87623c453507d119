package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		for _, key := range []string{
			"CLOTHESFINDER_SERVER_PORT",
			"CLOTHESFINDER_SERVER_ENVIRONMENT",
			"CLOTHESFINDER_SERVER_ALLOWED_ORIGINS",
			"CLOTHESFINDER_CACHE_TYPE",
			"CLOTHESFINDER_CACHE_REDIS_URL",
			"CLOTHESFINDER_CACHE_TTL",
			"CLOTHESFINDER_RATELIMIT_PER_IP",
			"CLOTHESFINDER_RATELIMIT_PER_HOST",
			"CLOTHESFINDER_SCRAPE_SITES",
			"CLOTHESFINDER_SCRAPE_RESPECT_ROBOTS",
			"CLOTHESFINDER_SEARCH_TOP_N",
			"CLOTHESFINDER_SEARCH_SEARCH_WORKERS",
			"CLOTHESFINDER_SCORING_WEIGHTS_PRICE",
			"CLOTHESFINDER_MATCHING_FUZZY_THRESHOLD",
		} {
			os.Unsetenv(key)
		}
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		// Check defaults
		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Cache.Type != "memory" {
			t.Errorf("Cache.Type = %s, want memory", cfg.Cache.Type)
		}
		if cfg.Cache.TTL != 5*time.Minute {
			t.Errorf("Cache.TTL = %v, want 5m", cfg.Cache.TTL)
		}
		if cfg.Cache.PageTTL != 5*time.Minute {
			t.Errorf("Cache.PageTTL = %v, want 5m", cfg.Cache.PageTTL)
		}
		if cfg.RateLimit.PerIP != 60 {
			t.Errorf("RateLimit.PerIP = %d, want 60", cfg.RateLimit.PerIP)
		}
		if cfg.RateLimit.PerHost != 2 {
			t.Errorf("RateLimit.PerHost = %v, want 2", cfg.RateLimit.PerHost)
		}
		if cfg.Scrape.RequestTimeout != 8*time.Second {
			t.Errorf("Scrape.RequestTimeout = %v, want 8s", cfg.Scrape.RequestTimeout)
		}
		if cfg.Scrape.Retries != 1 {
			t.Errorf("Scrape.Retries = %d, want 1", cfg.Scrape.Retries)
		}
		if len(cfg.Scrape.Sites) != 8 {
			t.Errorf("Scrape.Sites = %v, want all 8 sites", cfg.Scrape.Sites)
		}
		if cfg.Search.SearchWorkers != 8 || cfg.Search.EnrichWorkers != 12 {
			t.Errorf("workers = %d/%d, want 8/12", cfg.Search.SearchWorkers, cfg.Search.EnrichWorkers)
		}
		if cfg.Search.SearchTimeout != 12*time.Second || cfg.Search.EnrichTimeout != 15*time.Second {
			t.Errorf("timeouts = %v/%v, want 12s/15s", cfg.Search.SearchTimeout, cfg.Search.EnrichTimeout)
		}
		if cfg.Search.MaxEnrich != 40 || cfg.Search.TopN != 10 {
			t.Errorf("MaxEnrich = %d, TopN = %d", cfg.Search.MaxEnrich, cfg.Search.TopN)
		}
		if cfg.Scoring.Weights.Item != 30 || cfg.Scoring.Weights.Kids != 15 || cfg.Scoring.Weights.Title != 1 {
			t.Errorf("Scoring.Weights = %+v", cfg.Scoring.Weights)
		}
		if !cfg.Matching.EnableFuzzyMatching || cfg.Matching.FuzzyThreshold != 0.85 {
			t.Errorf("Matching = %+v", cfg.Matching)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("CLOTHESFINDER_SERVER_PORT", "10000")
		os.Setenv("CLOTHESFINDER_SERVER_ENVIRONMENT", "production")
		os.Setenv("CLOTHESFINDER_SERVER_ALLOWED_ORIGINS", "https://a.se,https://b.se")
		os.Setenv("CLOTHESFINDER_CACHE_TYPE", "redis")
		os.Setenv("CLOTHESFINDER_CACHE_REDIS_URL", "redis://localhost:6379")
		os.Setenv("CLOTHESFINDER_CACHE_TTL", "1h")
		os.Setenv("CLOTHESFINDER_RATELIMIT_PER_IP", "200")
		os.Setenv("CLOTHESFINDER_SCRAPE_SITES", "vinted,tradera")
		os.Setenv("CLOTHESFINDER_SCRAPE_RESPECT_ROBOTS", "true")
		os.Setenv("CLOTHESFINDER_SEARCH_TOP_N", "5")
		os.Setenv("CLOTHESFINDER_SCORING_WEIGHTS_PRICE", "25")
		os.Setenv("CLOTHESFINDER_MATCHING_FUZZY_THRESHOLD", "0.9")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "10000" {
			t.Errorf("Server.Port = %s, want 10000", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if strings.Join(cfg.Server.AllowedOrigins, " ") != "https://a.se https://b.se" {
			t.Errorf("Server.AllowedOrigins = %v", cfg.Server.AllowedOrigins)
		}
		if cfg.Cache.Type != "redis" || cfg.Cache.RedisURL != "redis://localhost:6379" {
			t.Errorf("Cache = %+v", cfg.Cache)
		}
		if cfg.Cache.TTL != time.Hour {
			t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL)
		}
		if cfg.RateLimit.PerIP != 200 {
			t.Errorf("RateLimit.PerIP = %d, want 200", cfg.RateLimit.PerIP)
		}
		if strings.Join(cfg.Scrape.Sites, ",") != "vinted,tradera" {
			t.Errorf("Scrape.Sites = %v", cfg.Scrape.Sites)
		}
		if !cfg.Scrape.RespectRobots {
			t.Error("Scrape.RespectRobots = false, want true")
		}
		if cfg.Search.TopN != 5 {
			t.Errorf("Search.TopN = %d, want 5", cfg.Search.TopN)
		}
		if cfg.Scoring.Weights.Price != 25 {
			t.Errorf("Scoring.Weights.Price = %v, want 25", cfg.Scoring.Weights.Price)
		}
		if cfg.Matching.FuzzyThreshold != 0.9 {
			t.Errorf("Matching.FuzzyThreshold = %v, want 0.9", cfg.Matching.FuzzyThreshold)
		}
	})

	t.Run("fails validation for invalid cache type", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("CLOTHESFINDER_CACHE_TYPE", "invalid")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for invalid cache type")
		}
	})

	t.Run("fails validation when redis URL missing for redis cache", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("CLOTHESFINDER_CACHE_TYPE", "redis")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for missing redis URL")
		}
	})

	t.Run("fails validation for unknown site", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("CLOTHESFINDER_SCRAPE_SITES", "vinted,ebay")
		defer cleanupEnv()

		_, err := Load()
		if err == nil || !strings.Contains(err.Error(), "ebay") {
			t.Errorf("Load() error = %v, want unknown site error", err)
		}
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("returns nil when .env file doesn't exist", func(t *testing.T) {
		// Save current directory
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		// Create temp directory
		tempDir := t.TempDir()
		os.Chdir(tempDir)

		err := loadEnvFile()
		if err != nil {
			t.Errorf("loadEnvFile() error = %v, want nil when file doesn't exist", err)
		}
	})

	t.Run("loads variables from .env file", func(t *testing.T) {
		// Save current directory
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		// Create temp directory
		tempDir := t.TempDir()
		os.Chdir(tempDir)

		// Create .env file
		envContent := `
# Comment line
TEST_VAR_1=value1
TEST_VAR_2=value2

# Another comment
TEST_VAR_3=value3
`
		err := os.WriteFile(".env", []byte(envContent), 0644)
		if err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		// Clear any existing values
		os.Unsetenv("TEST_VAR_1")
		os.Unsetenv("TEST_VAR_2")
		os.Unsetenv("TEST_VAR_3")

		err = loadEnvFile()
		if err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("TEST_VAR_1") != "value1" {
			t.Errorf("TEST_VAR_1 = %s, want value1", os.Getenv("TEST_VAR_1"))
		}
		if os.Getenv("TEST_VAR_2") != "value2" {
			t.Errorf("TEST_VAR_2 = %s, want value2", os.Getenv("TEST_VAR_2"))
		}
		if os.Getenv("TEST_VAR_3") != "value3" {
			t.Errorf("TEST_VAR_3 = %s, want value3", os.Getenv("TEST_VAR_3"))
		}

		// Cleanup
		os.Unsetenv("TEST_VAR_1")
		os.Unsetenv("TEST_VAR_2")
		os.Unsetenv("TEST_VAR_3")
	})

	t.Run("skips empty lines and comments", func(t *testing.T) {
		// Save current directory
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		// Create temp directory
		tempDir := t.TempDir()
		os.Chdir(tempDir)

		// Create .env file with various formats
		envContent := `
# This is a comment
   # This is also a comment

TEST_SKIP_1=value1

TEST_SKIP_2=value2
# TEST_COMMENTED=should_not_load
`
		err := os.WriteFile(".env", []byte(envContent), 0644)
		if err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		os.Unsetenv("TEST_SKIP_1")
		os.Unsetenv("TEST_SKIP_2")
		os.Unsetenv("TEST_COMMENTED")

		err = loadEnvFile()
		if err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("TEST_SKIP_1") != "value1" {
			t.Errorf("TEST_SKIP_1 not loaded correctly")
		}
		if os.Getenv("TEST_SKIP_2") != "value2" {
			t.Errorf("TEST_SKIP_2 not loaded correctly")
		}
		if os.Getenv("TEST_COMMENTED") != "" {
			t.Errorf("TEST_COMMENTED should not be loaded from comment")
		}

		os.Unsetenv("TEST_SKIP_1")
		os.Unsetenv("TEST_SKIP_2")
	})

	t.Run("doesn't override existing environment variables", func(t *testing.T) {
		// Save current directory
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		// Create temp directory
		tempDir := t.TempDir()
		os.Chdir(tempDir)

		// Set existing env var
		os.Setenv("TEST_OVERRIDE", "existing-value")

		// Create .env file that tries to override
		envContent := "TEST_OVERRIDE=new-value"
		err := os.WriteFile(".env", []byte(envContent), 0644)
		if err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		err = loadEnvFile()
		if err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		// Should still have original value
		if os.Getenv("TEST_OVERRIDE") != "existing-value" {
			t.Errorf("TEST_OVERRIDE = %s, want existing-value (should not override)", os.Getenv("TEST_OVERRIDE"))
		}

		os.Unsetenv("TEST_OVERRIDE")
	})
}

func validConfig() *Config {
	return &Config{
		Cache: CacheConfig{
			Type: "memory",
			TTL:  5 * time.Minute,
		},
		Scrape: ScrapeConfig{
			RequestTimeout: 8 * time.Second,
			Sites:          []string{"vinted", "Facebook Marketplace"},
		},
		Search: SearchConfig{
			SearchWorkers: 8,
			SearchTimeout: 12 * time.Second,
			EnrichWorkers: 12,
			EnrichTimeout: 15 * time.Second,
			MaxEnrich:     40,
			TopN:          10,
		},
		Matching: MatchingConfig{FuzzyThreshold: 0.85},
	}
}

func TestValidate(t *testing.T) {
	t.Run("validates successfully with all required fields", func(t *testing.T) {
		if err := validate(validConfig()); err != nil {
			t.Errorf("validate() error = %v, want nil", err)
		}
	})

	t.Run("validates redis cache type with URL", func(t *testing.T) {
		cfg := validConfig()
		cfg.Cache.Type = "redis"
		cfg.Cache.RedisURL = "redis://localhost:6379"
		if err := validate(cfg); err != nil {
			t.Errorf("validate() error = %v, want nil", err)
		}
	})

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"invalid cache type", func(c *Config) { c.Cache.Type = "memcached" }},
		{"redis cache without URL", func(c *Config) { c.Cache.Type = "redis" }},
		{"negative page ttl", func(c *Config) { c.Cache.PageTTL = -time.Second }},
		{"zero search workers", func(c *Config) { c.Search.SearchWorkers = 0 }},
		{"zero enrich workers", func(c *Config) { c.Search.EnrichWorkers = 0 }},
		{"zero search timeout", func(c *Config) { c.Search.SearchTimeout = 0 }},
		{"zero enrich timeout", func(c *Config) { c.Search.EnrichTimeout = 0 }},
		{"zero top n", func(c *Config) { c.Search.TopN = 0 }},
		{"negative max enrich", func(c *Config) { c.Search.MaxEnrich = -1 }},
		{"zero request timeout", func(c *Config) { c.Scrape.RequestTimeout = 0 }},
		{"fuzzy threshold above one", func(c *Config) { c.Matching.FuzzyThreshold = 1.5 }},
		{"unknown site", func(c *Config) { c.Scrape.Sites = []string{"ebay"} }},
		{"no sites", func(c *Config) { c.Scrape.Sites = nil }},
		{"blank sites", func(c *Config) { c.Scrape.Sites = []string{" ", ""} }},
	}

	for _, tt := range tests {
		t.Run("fails for "+tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := validate(cfg); err == nil {
				t.Error("validate() error = nil, want error")
			}
		})
	}
}
