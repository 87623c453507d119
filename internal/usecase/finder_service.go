package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/clothesfinder/backend/internal/domain"
)

// Result sources
const (
	SourceLive  = "live"
	SourceCache = "cache"
)

// FinderServiceConfig holds configuration for the finder service
type FinderServiceConfig struct {
	CacheTTL           time.Duration
	SearchWorkers      int
	SearchTimeout      time.Duration
	EnrichWorkers      int
	EnrichTimeout      time.Duration
	MaxEnrich          int
	TopN               int
	EnableDebugLogging bool
}

// FinderService searches every marketplace, enriches and scores the
// candidates and returns them ranked, with caching.
type FinderService struct {
	cache        domain.CacheRepository
	adapters     []domain.SiteAdapter
	enricher     *Enricher
	scorer       *Scorer
	preprocessor *QueryPreprocessor

	cacheTTL   time.Duration
	searchPool TaskGroup
	enrichPool TaskGroup
	maxEnrich  int
	topN       int
	debug      bool
}

// NewFinderService creates a new finder service with dependencies. cache may
// be nil to disable result caching.
func NewFinderService(
	cache domain.CacheRepository,
	adapters []domain.SiteAdapter,
	enricher *Enricher,
	scorer *Scorer,
	preprocessor *QueryPreprocessor,
	config FinderServiceConfig,
) *FinderService {
	cacheTTL := config.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	searchTimeout := config.SearchTimeout
	if searchTimeout <= 0 {
		searchTimeout = 12 * time.Second
	}
	enrichTimeout := config.EnrichTimeout
	if enrichTimeout <= 0 {
		enrichTimeout = 15 * time.Second
	}
	searchWorkers := config.SearchWorkers
	if searchWorkers <= 0 {
		searchWorkers = 8
	}
	enrichWorkers := config.EnrichWorkers
	if enrichWorkers <= 0 {
		enrichWorkers = 12
	}
	maxEnrich := config.MaxEnrich
	if maxEnrich < 0 {
		maxEnrich = 0
	} else if maxEnrich == 0 {
		maxEnrich = 40
	}
	topN := config.TopN
	if topN <= 0 {
		topN = 10
	}
	if scorer == nil {
		scorer = NewScorer(nil, ScorerConfig{})
	}
	if preprocessor == nil {
		preprocessor = NewQueryPreprocessor(nil, false)
	}

	return &FinderService{
		cache:        cache,
		adapters:     adapters,
		enricher:     enricher,
		scorer:       scorer,
		preprocessor: preprocessor,
		cacheTTL:     cacheTTL,
		searchPool:   NewTaskGroup("SEARCH", searchWorkers, searchTimeout),
		enrichPool:   NewTaskGroup("ENRICH", enrichWorkers, enrichTimeout),
		maxEnrich:    maxEnrich,
		topN:         topN,
		debug:        config.EnableDebugLogging,
	}
}

// Find runs a search.
// Flow: check cache -> search sites -> dedup -> enrich -> score -> rank -> cache -> return
func (s *FinderService) Find(ctx context.Context, request *domain.FindRequest) (*domain.FindResult, error) {
	if request == nil || (strings.TrimSpace(request.Query) == "" && strings.TrimSpace(request.Filters.Item) == "") {
		return nil, domain.ErrInvalidRequest
	}

	query := s.preprocessor.BuildQuery(*request)
	if query == "" {
		return nil, fmt.Errorf("%w: query is empty after cleaning", domain.ErrInvalidRequest)
	}

	cacheKey := s.generateCacheKey(query, request.Filters)
	if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
		cached.Source = SourceCache
		return cached, nil
	}

	start := time.Now()
	candidates := s.search(ctx, query)
	if len(candidates) == 0 {
		log.Printf("[FINDER] %q: no candidates from %d sites", query, len(s.adapters))
		return nil, domain.ErrNoResults
	}

	candidates = s.enrich(ctx, candidates)

	scored := make([]domain.Listing, len(candidates))
	for i, c := range candidates {
		scored[i] = s.scorer.Score(c, request.Filters)
	}
	rankListings(scored)

	ranked, fallback := selectRanked(scored)
	result := &domain.FindResult{
		Query:    query,
		Count:    len(ranked),
		Fallback: fallback,
		Source:   SourceLive,
	}
	if len(ranked) > s.topN {
		ranked = ranked[:s.topN]
	}
	result.TopResults = ranked
	best := ranked[0]
	result.BestMatch = &best

	log.Printf("[FINDER] %q: %d candidates, %d ranked, fallback=%v in %v",
		query, len(candidates), result.Count, fallback, time.Since(start).Round(time.Millisecond))

	if err := s.setInCache(ctx, cacheKey, result); err != nil {
		log.Printf("[FINDER] cache write failed: %v", err)
	}
	return result, nil
}

// search runs every adapter and merges their listings, keeping the first
// listing seen for each URL.
func (s *FinderService) search(ctx context.Context, query string) []domain.Listing {
	lists, done := Collect(ctx, s.searchPool, s.adapters, func(ctx context.Context, a domain.SiteAdapter) []domain.Listing {
		return a.Search(ctx, query)
	})

	seen := make(map[string]bool)
	var merged []domain.Listing
	for i, list := range lists {
		if !done[i] {
			log.Printf("[FINDER] %s: no result before timeout", s.adapters[i].Site())
			continue
		}
		for _, l := range list {
			if l.URL == "" || seen[l.URL] {
				continue
			}
			seen[l.URL] = true
			merged = append(merged, l)
		}
	}
	return merged
}

// enrich reads the pages of the first maxEnrich candidates. Everything not
// enriched in time is scored on its title.
func (s *FinderService) enrich(ctx context.Context, candidates []domain.Listing) []domain.Listing {
	out := make([]domain.Listing, len(candidates))
	for i, c := range candidates {
		out[i] = Unenriched(c)
	}
	if s.enricher == nil || s.maxEnrich == 0 {
		return out
	}

	n := min(s.maxEnrich, len(candidates))
	enriched, done := Collect(ctx, s.enrichPool, candidates[:n], s.enricher.Enrich)
	for i := range enriched {
		if done[i] {
			out[i] = enriched[i]
		}
	}
	return out
}

// rankListings sorts by rating descending, then by price ascending with
// unknown prices last.
func rankListings(listings []domain.Listing) {
	sort.SliceStable(listings, func(i, j int) bool {
		a, b := listings[i], listings[j]
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		pa, pb := a.EffectivePrice(), b.EffectivePrice()
		switch {
		case pa == nil:
			return false
		case pb == nil:
			return true
		default:
			return *pa < *pb
		}
	})
}

// selectRanked drops vetoed listings. When every listing is vetoed they are
// all returned instead and fallback is true.
func selectRanked(scored []domain.Listing) ([]domain.Listing, bool) {
	kept := make([]domain.Listing, 0, len(scored))
	for _, l := range scored {
		if !l.Vetoed() {
			kept = append(kept, l)
		}
	}
	if len(kept) == 0 {
		return scored, true
	}
	return kept, false
}

// generateCacheKey builds the result cache key.
// Format: "find:v{vocabulary version}:{query}|{filters}"
func (s *FinderService) generateCacheKey(query string, filters domain.FilterSet) string {
	return fmt.Sprintf("find:v%d:%s|%s", s.scorer.vocab.Version, query, filters.CacheKey())
}

// getFromCache retrieves a result from cache. Values come back either as the
// stored pointer (memory) or as decoded JSON (redis), so both go through JSON.
func (s *FinderService) getFromCache(ctx context.Context, key string) (*domain.FindResult, error) {
	if s.cache == nil {
		return nil, domain.ErrCacheMiss
	}
	value, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if result, ok := value.(*domain.FindResult); ok {
		copied := *result
		return &copied, nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return nil, domain.ErrCacheMiss
	}
	var result domain.FindResult
	if err := json.Unmarshal(data, &result); err != nil || len(result.TopResults) == 0 {
		return nil, domain.ErrCacheMiss
	}
	if result.BestMatch == nil {
		best := result.TopResults[0]
		result.BestMatch = &best
	}
	return &result, nil
}

// setInCache stores a result in cache
func (s *FinderService) setInCache(ctx context.Context, key string, result *domain.FindResult) error {
	if s.cache == nil {
		return nil
	}
	result.CachedAt = time.Now()
	return s.cache.Set(ctx, key, result, s.cacheTTL)
}
