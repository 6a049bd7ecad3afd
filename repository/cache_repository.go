package repository

import (
	"context"
	"errors"
	"fmt"

	"legalhelp-backend/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrEntryNotFound is returned when no live cache entry matches a lookup
var ErrEntryNotFound = errors.New("cache entry not found")

// CacheRepository handles database operations for cached responses
type CacheRepository struct {
	db *pgxpool.Pool
}

// NewCacheRepository creates a new cache repository
func NewCacheRepository(db *pgxpool.Pool) *CacheRepository {
	return &CacheRepository{db: db}
}

const entryColumns = `id, query_hash, question, response, confidence, sources,
		hit_count, last_accessed, created_at, expires_at`

func scanEntry(row pgx.Row) (*models.CacheEntry, error) {
	entry := &models.CacheEntry{}
	err := row.Scan(
		&entry.ID,
		&entry.QueryHash,
		&entry.Question,
		&entry.Response,
		&entry.Confidence,
		&entry.Sources,
		&entry.HitCount,
		&entry.LastAccessed,
		&entry.CreatedAt,
		&entry.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// GetByHash retrieves a non-expired cache entry by its query hash
func (r *CacheRepository) GetByHash(ctx context.Context, hash string) (*models.CacheEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM response_cache
		WHERE query_hash = $1 AND expires_at > NOW()`, entryColumns)

	entry, err := scanEntry(r.db.QueryRow(ctx, query, hash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to query cache entry: %w", err)
	}

	return entry, nil
}

// Insert stores a cache entry, replacing any previous entry for the same hash.
// Re-computation on a miss overwrites with an equivalent-or-better answer, so
// the upsert resets the hit count and timestamps.
func (r *CacheRepository) Insert(ctx context.Context, entry *models.CacheEntry) error {
	query := `
		INSERT INTO response_cache (
			query_hash, question, response, confidence, sources,
			hit_count, last_accessed, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (query_hash) DO UPDATE SET
			question = EXCLUDED.question,
			response = EXCLUDED.response,
			confidence = EXCLUDED.confidence,
			sources = EXCLUDED.sources,
			hit_count = EXCLUDED.hit_count,
			last_accessed = EXCLUDED.last_accessed,
			expires_at = EXCLUDED.expires_at,
			created_at = NOW()
		RETURNING id, created_at`

	err := r.db.QueryRow(
		ctx, query,
		entry.QueryHash,
		entry.Question,
		entry.Response,
		entry.Confidence,
		entry.Sources,
		entry.HitCount,
		entry.LastAccessed,
		entry.ExpiresAt,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}

	return nil
}

// IncrementHitCount atomically increments the hit count for an entry.
// Expressed as a single SQL increment so concurrent hits never lose updates.
func (r *CacheRepository) IncrementHitCount(ctx context.Context, hash string) error {
	query := `
		UPDATE response_cache SET
			hit_count = hit_count + 1,
			last_accessed = NOW()
		WHERE query_hash = $1`

	_, err := r.db.Exec(ctx, query, hash)
	return err
}

// TopByHitCount retrieves the most-hit non-expired entries, most popular first
func (r *CacheRepository) TopByHitCount(ctx context.Context, limit int) ([]*models.CacheEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM response_cache
		WHERE expires_at > NOW()
		ORDER BY hit_count DESC, last_accessed DESC
		LIMIT $1`, entryColumns)

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top cache entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.CacheEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cache entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// DeleteExpired removes all entries whose TTL has passed and returns the count
func (r *CacheRepository) DeleteExpired(ctx context.Context) (int, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM response_cache WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired cache entries: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// Count returns the number of non-expired entries
func (r *CacheRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM response_cache WHERE expires_at > NOW()`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count cache entries: %w", err)
	}
	return count, nil
}

// CountWithHits returns the number of non-expired entries hit at least once
func (r *CacheRepository) CountWithHits(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM response_cache WHERE expires_at > NOW() AND hit_count > 0`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count hit cache entries: %w", err)
	}
	return count, nil
}
