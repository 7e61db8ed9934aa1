package provencase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"proposal-workers/internal/common/logger"
	"proposal-workers/internal/common/metrics"
	"proposal-workers/internal/engine/catalog"
	"proposal-workers/internal/models"
)

// Searcher finds similar proven cases (Elasticsearch in production).
type Searcher interface {
	SimilarCases(ctx context.Context, query SimilarityQuery) ([]models.ProvenCase, error)
}

// Lister reads proven cases from the system of record (PostgreSQL).
type Lister interface {
	FindBySector(ctx context.Context, sector catalog.Sector, designFlow float64, limit int) ([]models.ProvenCase, error)
}

// Service answers "which past projects look like this proposal" with a
// cache-aside layer in front of search, and the store as a fallback when
// the search cluster is unavailable.
type Service struct {
	search       Searcher
	store        Lister
	cache        *redis.Client
	ttl          time.Duration
	queryTimeout time.Duration
	logger       logger.Logger
}

// NewService builds the lookup service. queryTimeout bounds each search
// request; zero means the caller's context is the only bound.
func NewService(search Searcher, store Lister, cache *redis.Client, ttl, queryTimeout time.Duration, log logger.Logger) *Service {
	return &Service{
		search:       search,
		store:        store,
		cache:        cache,
		ttl:          ttl,
		queryTimeout: queryTimeout,
		logger:       log.WithFields(map[string]interface{}{"component": "provencase"}),
	}
}

// FindSimilar returns up to maxResults proven cases similar to the given
// sector and design flow.
func (s *Service) FindSimilar(ctx context.Context, sector catalog.Sector, designFlow float64, maxResults int) ([]models.ProvenCase, error) {
	key := cacheKey(sector, designFlow)

	if cached, ok := s.fromCache(ctx, key); ok {
		metrics.ProvenCaseCacheHits.WithLabelValues("hit").Inc()
		return cached, nil
	}
	metrics.ProvenCaseCacheHits.WithLabelValues("miss").Inc()

	searchCtx := ctx
	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}

	cases, err := s.search.SimilarCases(searchCtx, SimilarityQuery{
		Sector:     sector,
		DesignFlow: designFlow,
		MaxResults: maxResults,
	})
	if err != nil {
		s.logger.Warn("search unavailable, falling back to store", map[string]interface{}{
			"error":  err.Error(),
			"sector": string(sector),
		})
		cases, err = s.store.FindBySector(ctx, sector, designFlow, maxResults)
		if err != nil {
			return nil, err
		}
	}

	s.toCache(ctx, key, cases)
	return cases, nil
}

func (s *Service) fromCache(ctx context.Context, key string) ([]models.ProvenCase, bool) {
	if s.cache == nil {
		return nil, false
	}

	raw, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		return nil, false
	}

	var cases []models.ProvenCase
	if err := json.Unmarshal([]byte(raw), &cases); err != nil {
		s.logger.Warn("corrupt cache entry, ignoring", map[string]interface{}{"key": key})
		return nil, false
	}
	return cases, true
}

func (s *Service) toCache(ctx context.Context, key string, cases []models.ProvenCase) {
	if s.cache == nil || len(cases) == 0 {
		return
	}

	raw, err := json.Marshal(cases)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		s.logger.Warn("failed to cache proven cases", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

// cacheKey buckets design flow so nearby proposals share an entry.
func cacheKey(sector catalog.Sector, designFlow float64) string {
	band := int(designFlow / 100)
	return fmt.Sprintf("proven-cases:%s:%d", sector, band)
}
