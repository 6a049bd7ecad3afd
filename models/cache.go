package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Source represents a citation attached to a cached response
type Source struct {
	Title    string `json:"title"`
	URL      string `json:"url,omitempty"`
	Citation string `json:"citation,omitempty"`
}

// Sources represents a list of response sources
type Sources []Source

// Value implements driver.Valuer for JSONB
func (s Sources) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSONB
func (s *Sources) Scan(value interface{}) error {
	if value == nil {
		*s = make(Sources, 0)
		return nil
	}

	// Handle different types that pgx might return for JSONB
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*s = make(Sources, 0)
		return nil
	}

	if len(bytes) == 0 {
		*s = make(Sources, 0)
		return nil
	}

	return json.Unmarshal(bytes, s)
}

// CacheEntry represents a cached answer keyed by a normalized-query hash.
// The persistent store is the source of truth; the in-memory hot tier only
// mirrors it. An entry whose ExpiresAt has passed is treated as absent.
type CacheEntry struct {
	ID           uuid.UUID `json:"id"`
	QueryHash    string    `json:"query_hash"`
	Question     string    `json:"question"`
	Response     string    `json:"response"`
	Confidence   float64   `json:"confidence"`
	Sources      Sources   `json:"sources"`
	HitCount     int       `json:"hit_count"`
	LastAccessed time.Time `json:"last_accessed"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Expired reports whether the entry is past its TTL at the given time
func (e *CacheEntry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// TopEntry is a summary of a frequently hit cache entry
type TopEntry struct {
	Question string `json:"question"`
	HitCount int    `json:"hit_count"`
}

// CacheStats reports cache occupancy and usage
type CacheStats struct {
	TotalEntries int        `json:"total_entries"`
	HitRate      float64    `json:"hit_rate"`
	TopEntries   []TopEntry `json:"top_entries"`
	HotTierSize  int        `json:"hot_tier_size"`
}
