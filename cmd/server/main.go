package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clothesfinder/backend/config"
	httpDelivery "github.com/clothesfinder/backend/internal/delivery/http"
	"github.com/clothesfinder/backend/internal/infrastructure/cache"
	"github.com/clothesfinder/backend/internal/infrastructure/fetch"
	"github.com/clothesfinder/backend/internal/infrastructure/marketplace"
	"github.com/clothesfinder/backend/internal/textmatch"
	"github.com/clothesfinder/backend/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting ClothesFinder Backend v2.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Cache Type: %s", cfg.Cache.Type)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	vocab, err := textmatch.LoadVocabulary(cfg.Scoring.VocabularyFile)
	if err != nil {
		log.Fatalf("Failed to load vocabulary: %v", err)
	}
	log.Printf("Vocabulary: version %d", vocab.Version)

	// Initialize infrastructure dependencies
	store, err := cache.New(ctx, cache.Options{
		Type:      cfg.Cache.Type,
		RedisURL:  cfg.Cache.RedisURL,
		KeyPrefix: cfg.Cache.KeyPrefix,
	})
	if err != nil {
		log.Fatalf("Failed to create cache: %v", err)
	}
	defer store.Close()
	log.Printf("Cache TTL: %s, page TTL: %s", cfg.Cache.TTL, cfg.Cache.PageTTL)

	fetchOpts := fetch.Options{
		UserAgent:     cfg.Scrape.UserAgent,
		Timeout:       cfg.Scrape.RequestTimeout,
		MaxBodyBytes:  cfg.Scrape.MaxBodyBytes,
		Retries:       cfg.Scrape.Retries,
		RespectRobots: cfg.Scrape.RespectRobots,
		RobotsTTL:     cfg.Scrape.RobotsTTL,
		Limiter:       fetch.NewHostLimiter(cfg.RateLimit.PerHost, cfg.RateLimit.HostBurst),
	}
	if cfg.Cache.PageTTL > 0 {
		fetchOpts.PageCache = store
		fetchOpts.PageTTL = cfg.Cache.PageTTL
	}
	if cfg.Scrape.RespectRobots {
		log.Printf("robots.txt checks enabled")
	}
	fetcher := fetch.NewClient(fetchOpts)

	sites := marketplace.SelectSites(cfg.Scrape.Sites, cfg.Scrape.PerSiteLimit)
	adapters, err := marketplace.NewAdapters(sites, fetcher)
	if err != nil {
		log.Fatalf("Failed to create site adapters: %v", err)
	}
	for _, a := range adapters {
		log.Printf("Site enabled: %s", a.Site())
	}

	// Initialize usecase layer
	fuzzy := 0.0
	if cfg.Matching.EnableFuzzyMatching {
		fuzzy = cfg.Matching.FuzzyThreshold
	}
	w := cfg.Scoring.Weights
	scorer := usecase.NewScorer(textmatch.NewMatcher(vocab, fuzzy), usecase.ScorerConfig{
		Weights: usecase.Weights{
			Item:   w.Item,
			Brand:  w.Brand,
			Style:  w.Style,
			Gender: w.Gender,
			Kids:   w.Kids,
			Color:  w.Color,
			Size:   w.Size,
			Price:  w.Price,
			Used:   w.Used,
			URL:    w.URL,
			Title:  w.Title,
		},
		EnableDebugLogging: cfg.Matching.EnableDebugLogging,
	})

	finderService := usecase.NewFinderService(
		store,
		adapters,
		usecase.NewEnricher(marketplace.NewPageReader(fetcher, cfg.Scrape.MaxPageText), vocab),
		scorer,
		usecase.NewQueryPreprocessor(vocab, cfg.Matching.EnableDebugLogging),
		usecase.FinderServiceConfig{
			CacheTTL:           cfg.Cache.TTL,
			SearchWorkers:      cfg.Search.SearchWorkers,
			SearchTimeout:      cfg.Search.SearchTimeout,
			EnrichWorkers:      cfg.Search.EnrichWorkers,
			EnrichTimeout:      cfg.Search.EnrichTimeout,
			MaxEnrich:          cfg.Search.MaxEnrich,
			TopN:               cfg.Search.TopN,
			EnableDebugLogging: cfg.Matching.EnableDebugLogging,
		},
	)

	log.Printf("Search: workers=%d/%d, timeouts=%s/%s, max_enrich=%d, top_n=%d",
		cfg.Search.SearchWorkers, cfg.Search.EnrichWorkers,
		cfg.Search.SearchTimeout, cfg.Search.EnrichTimeout,
		cfg.Search.MaxEnrich, cfg.Search.TopN)
	log.Printf("Matching: fuzzy=%v (%.2f), debug=%v",
		cfg.Matching.EnableFuzzyMatching, cfg.Matching.FuzzyThreshold, cfg.Matching.EnableDebugLogging)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(finderService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
