package service

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"legalhelp-backend/models"
	"legalhelp-backend/repository"

	"github.com/google/uuid"
)

// CacheStore is the persistent tier behind the response cache. It is
// satisfied by repository.CacheRepository; tests use an in-memory fake.
type CacheStore interface {
	GetByHash(ctx context.Context, hash string) (*models.CacheEntry, error)
	Insert(ctx context.Context, entry *models.CacheEntry) error
	IncrementHitCount(ctx context.Context, hash string) error
	TopByHitCount(ctx context.Context, limit int) ([]*models.CacheEntry, error)
	DeleteExpired(ctx context.Context) (int, error)
	Count(ctx context.Context) (int, error)
	CountWithHits(ctx context.Context) (int, error)
}

// CacheConfig holds the cache tuning knobs. The similarity threshold and
// discount are empirical constants kept configurable for future calibration.
type CacheConfig struct {
	TTL                 time.Duration
	HotCapacity         int
	SimilarityThreshold float64
	SimilarityDiscount  float64
	NearDuplicateWindow int
	StoreTimeout        time.Duration
}

// DefaultCacheConfig returns the standard cache configuration
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:                 24 * time.Hour,
		HotCapacity:         1000,
		SimilarityThreshold: 0.7,
		SimilarityDiscount:  0.9,
		NearDuplicateWindow: 50,
		StoreTimeout:        2 * time.Second,
	}
}

// CacheConfigFromEnv builds a cache configuration from environment
// variables, falling back to defaults for anything unset or malformed
func CacheConfigFromEnv() CacheConfig {
	cfg := DefaultCacheConfig()

	if v := os.Getenv("CACHE_TTL_HOURS"); v != "" {
		if hours, err := strconv.Atoi(v); err == nil && hours > 0 {
			cfg.TTL = time.Duration(hours) * time.Hour
		}
	}
	if v := os.Getenv("CACHE_HOT_CAPACITY"); v != "" {
		if capacity, err := strconv.Atoi(v); err == nil && capacity > 0 {
			cfg.HotCapacity = capacity
		}
	}
	if v := os.Getenv("CACHE_SIMILARITY_THRESHOLD"); v != "" {
		if threshold, err := strconv.ParseFloat(v, 64); err == nil && threshold > 0 && threshold <= 1 {
			cfg.SimilarityThreshold = threshold
		}
	}

	return cfg
}

// ResponseCache is a two-tier cache for generated answers: a bounded
// in-memory hot tier in front of a persistent store. The persistent store is
// the source of truth; the hot tier only mirrors it. Expiry is lazy at read
// time plus an explicit sweep. All store operations are best-effort: a store
// failure degrades to a miss (reads) or hot-tier-only caching (writes),
// never to an error for the caller.
type ResponseCache struct {
	store CacheStore
	cfg   CacheConfig

	mu    sync.Mutex
	hot   map[string]*models.CacheEntry
	order []string // insertion order, oldest first
}

// ResponseCacheOption is a functional option for ResponseCache
type ResponseCacheOption func(*ResponseCache)

// CacheWithStore sets the persistent store
func CacheWithStore(store CacheStore) ResponseCacheOption {
	return func(c *ResponseCache) {
		c.store = store
	}
}

// CacheWithConfig sets the cache configuration
func CacheWithConfig(cfg CacheConfig) ResponseCacheOption {
	return func(c *ResponseCache) {
		c.cfg = cfg
	}
}

// NewResponseCache creates a response cache
func NewResponseCache(opts ...ResponseCacheOption) *ResponseCache {
	c := &ResponseCache{
		cfg: DefaultCacheConfig(),
		hot: make(map[string]*models.CacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// QueryHash derives the cache key for a question and optional category hint.
// The hash only needs to be stable, not collision-resistant.
func QueryHash(question, category string) string {
	normalized := strings.ToLower(strings.TrimSpace(question))
	normalized = strings.Join(strings.Fields(normalized), " ")
	if category != "" {
		normalized += ":" + category
	}

	h := fnv.New64a()
	h.Write([]byte(normalized))
	return fmt.Sprintf("%016x", h.Sum64())
}

var similarityStrip = regexp.MustCompile(`[^\w\s]+`)

// Generic question scaffolding carries no meaning for near-duplicate
// matching, so it is dropped before comparing token sets.
var similarityStopTokens = toSet(
	"the", "a", "an", "is", "are", "was", "were", "to", "of", "in", "on",
	"for", "and", "or", "do", "does", "did", "i", "my", "me", "we", "you",
	"what", "how", "when", "where", "why", "which", "who", "can", "could",
	"should", "would", "will", "it", "this", "that", "there",
	"process", "procedure", "steps", "way",
)

// Near-synonymous tokens are folded to one canonical form so that phrasing
// differences ("register a business" vs "register a company") still match.
var similarityAliases = map[string]string{
	"business":    "company",
	"corporation": "company",
	"firm":        "company",
	"attorney":    "lawyer",
	"solicitor":   "lawyer",
	"purchase":    "buy",
	"terminate":   "dismissal",
	"termination": "dismissal",
	"dismiss":     "dismissal",
	"worker":      "employee",
	"staff":       "employee",
}

func similarityTokens(text string) map[string]bool {
	cleaned := similarityStrip.ReplaceAllString(strings.ToLower(text), " ")
	tokens := make(map[string]bool)
	for _, token := range strings.Fields(cleaned) {
		if similarityStopTokens[token] {
			continue
		}
		if canonical, ok := similarityAliases[token]; ok {
			token = canonical
		}
		tokens[token] = true
	}
	return tokens
}

// TokenSetSimilarity computes Jaccard similarity between the content-token
// sets of two questions.
func TokenSetSimilarity(a, b string) float64 {
	setA := similarityTokens(a)
	setB := similarityTokens(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for token := range setA {
		if setB[token] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection

	return float64(intersection) / float64(union)
}

// Get looks up a cached answer for a question. Lookup order: hot tier by
// exact key, persistent store by exact key, then a near-duplicate scan over
// the most-hit persistent entries. Near-duplicate hits carry a discounted
// confidence. Returns false on a genuine miss.
func (c *ResponseCache) Get(ctx context.Context, question, category string) (*models.CacheEntry, bool) {
	hash := QueryHash(question, category)
	now := time.Now()

	c.mu.Lock()
	if entry, ok := c.hot[hash]; ok {
		if entry.Expired(now) {
			c.removeFromHotLocked(hash)
		} else {
			entry.HitCount++
			entry.LastAccessed = now
			result := *entry
			c.mu.Unlock()
			c.persistHitAsync(hash)
			return &result, true
		}
	}
	c.mu.Unlock()

	if entry, err := c.store.GetByHash(ctx, hash); err == nil && entry != nil && !entry.Expired(now) {
		entry.HitCount++
		entry.LastAccessed = now
		c.addToHot(entry)
		c.persistHitAsync(hash)
		result := *entry
		return &result, true
	} else if err != nil && !errors.Is(err, repository.ErrEntryNotFound) {
		log.Printf("Warning: cache store lookup failed, treating as miss: %v", err)
	}

	return c.findNearDuplicate(ctx, question, now)
}

// findNearDuplicate scans a bounded window of the most-hit entries for a
// question with sufficient token-set overlap.
func (c *ResponseCache) findNearDuplicate(ctx context.Context, question string, now time.Time) (*models.CacheEntry, bool) {
	candidates, err := c.store.TopByHitCount(ctx, c.cfg.NearDuplicateWindow)
	if err != nil {
		log.Printf("Warning: near-duplicate scan failed, treating as miss: %v", err)
		return nil, false
	}

	for _, candidate := range candidates {
		if candidate.Expired(now) {
			continue
		}
		if TokenSetSimilarity(question, candidate.Question) >= c.cfg.SimilarityThreshold {
			candidate.HitCount++
			candidate.LastAccessed = now
			c.persistHitAsync(candidate.QueryHash)

			result := *candidate
			result.Confidence *= c.cfg.SimilarityDiscount
			return &result, true
		}
	}

	return nil, false
}

// Put stores a fresh answer in both tiers. A persistent-store failure is
// logged and swallowed; the entry then lives only in the hot tier and is
// lost on restart, which is acceptable degradation.
func (c *ResponseCache) Put(ctx context.Context, question, response string, confidence float64, sources models.Sources, category string, ttl time.Duration) {
	if ttl == 0 {
		ttl = c.cfg.TTL
	}
	now := time.Now()

	entry := &models.CacheEntry{
		ID:           uuid.New(),
		QueryHash:    QueryHash(question, category),
		Question:     question,
		Response:     response,
		Confidence:   confidence,
		Sources:      sources,
		HitCount:     0,
		LastAccessed: now,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
	}

	if err := c.store.Insert(ctx, entry); err != nil {
		log.Printf("Warning: failed to persist cache entry, keeping in hot tier only: %v", err)
	}

	c.addToHot(entry)
}

// Stats reports cache occupancy and hit-rate figures. Hit rate is the
// fraction of entries hit at least once, not weighted by hit volume.
func (c *ResponseCache) Stats(ctx context.Context) (*models.CacheStats, error) {
	total, err := c.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count cache entries: %w", err)
	}

	withHits, err := c.store.CountWithHits(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count hit entries: %w", err)
	}

	stats := &models.CacheStats{
		TotalEntries: total,
		TopEntries:   make([]models.TopEntry, 0),
	}
	if total > 0 {
		stats.HitRate = float64(withHits) / float64(total)
	}

	top, err := c.store.TopByHitCount(ctx, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to load top cache entries: %w", err)
	}
	for _, entry := range top {
		stats.TopEntries = append(stats.TopEntries, models.TopEntry{
			Question: entry.Question,
			HitCount: entry.HitCount,
		})
	}

	c.mu.Lock()
	stats.HotTierSize = len(c.hot)
	c.mu.Unlock()

	return stats, nil
}

// EvictExpired deletes all expired persistent rows and purges expired
// hot-tier entries. Intended to run on a schedule by an external job.
func (c *ResponseCache) EvictExpired(ctx context.Context) (int, error) {
	count, err := c.store.DeleteExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to evict expired entries: %w", err)
	}

	now := time.Now()
	c.mu.Lock()
	for hash, entry := range c.hot {
		if entry.Expired(now) {
			c.removeFromHotLocked(hash)
		}
	}
	c.mu.Unlock()

	return count, nil
}

// WarmHotTier preloads the most-hit non-expired entries into the hot tier.
// Called once at process start; failures only cost warm-start performance.
func (c *ResponseCache) WarmHotTier(ctx context.Context) error {
	entries, err := c.store.TopByHitCount(ctx, c.cfg.HotCapacity)
	if err != nil {
		return fmt.Errorf("failed to warm hot tier: %w", err)
	}

	// Most popular entries are inserted last so insertion-order eviction
	// discards them last.
	for i := len(entries) - 1; i >= 0; i-- {
		c.addToHot(entries[i])
	}

	return nil
}

// persistHitAsync records a hit against the persistent store without
// blocking the read path. The caller's context may already be gone, so the
// update runs on its own bounded context; a dropped update is only an
// undercount.
func (c *ResponseCache) persistHitAsync(hash string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.cfg.StoreTimeout)
		defer cancel()
		if err := c.store.IncrementHitCount(ctx, hash); err != nil {
			log.Printf("Warning: failed to persist cache hit for %s: %v", hash, err)
		}
	}()
}

func (c *ResponseCache) addToHot(entry *models.CacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.hot[entry.QueryHash]; ok {
		c.hot[entry.QueryHash] = entry
		return
	}

	c.hot[entry.QueryHash] = entry
	c.order = append(c.order, entry.QueryHash)

	for len(c.order) > c.cfg.HotCapacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.hot, oldest)
	}
}

// removeFromHotLocked removes an entry; the caller must hold c.mu
func (c *ResponseCache) removeFromHotLocked(hash string) {
	delete(c.hot, hash)
	for i, h := range c.order {
		if h == hash {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
