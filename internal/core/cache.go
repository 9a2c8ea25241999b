// Package core holds the ports shared by the client and gateway plus the small
// services built directly on them.
package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	domain "github.com/fortunes/fortunes-web/internal/domain/analysis"
)

// CacheRepository defines the interface for caching operations.
// The core defines it and the adapters provide implementations.
type CacheRepository interface {
	// Set stores a value in the cache with the given key and TTL.
	// If TTL is 0, the key will not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get retrieves a value from the cache by key.
	// Returns nil if the key doesn't exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes a key from the cache.
	// Returns true if the key was deleted, false if it didn't exist.
	Delete(ctx context.Context, key string) (bool, error)

	// Health checks the health of the cache connection.
	Health(ctx context.Context) error
}

// JobStatusCache keeps terminal job status bodies so repeated polls for a
// finished job do not reach the backend. Non-terminal statuses are never stored.
type JobStatusCache struct {
	cache  CacheRepository
	ttl    time.Duration
	prefix string
	logger *slog.Logger
}

// JobStatusCacheOptions bundles dependencies for NewJobStatusCache.
type JobStatusCacheOptions struct {
	Cache  CacheRepository
	TTL    time.Duration
	Prefix string
	Logger *slog.Logger
}

// DefaultJobStatusCacheTTL is used when no TTL is configured.
const DefaultJobStatusCacheTTL = 10 * time.Minute

// NewJobStatusCache creates a new JobStatusCache.
func NewJobStatusCache(opts JobStatusCacheOptions) *JobStatusCache {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultJobStatusCacheTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &JobStatusCache{
		cache:  opts.Cache,
		ttl:    ttl,
		prefix: opts.Prefix,
		logger: logger.With("component", "job_status_cache"),
	}
}

// Lookup returns the cached body for jobID, or nil on a miss.
// Cache errors are logged and reported as a miss.
func (c *JobStatusCache) Lookup(ctx context.Context, jobID string) []byte {
	if c == nil || c.cache == nil || jobID == "" {
		return nil
	}
	body, err := c.cache.Get(ctx, c.key(jobID))
	if err != nil {
		c.logger.WarnContext(ctx, "job status cache lookup failed", "job_id", jobID, "error", err)
		return nil
	}
	return body
}

// Store saves body when it decodes to a complete job status.
// It reports whether the body was stored.
func (c *JobStatusCache) Store(ctx context.Context, jobID string, body []byte) (bool, error) {
	if c == nil || c.cache == nil || jobID == "" {
		return false, nil
	}

	var st domain.JobStatus
	if err := json.Unmarshal(body, &st); err != nil {
		return false, nil
	}
	if domain.ClassifyStatus(st.Status) != domain.StatusComplete {
		return false, nil
	}

	if err := c.cache.Set(ctx, c.key(jobID), body, c.ttl); err != nil {
		return false, fmt.Errorf("store job status: %w", err)
	}
	c.logger.DebugContext(ctx, "cached terminal job status", "job_id", jobID, "ttl", c.ttl)
	return true, nil
}

// Invalidate removes the cached status for jobID.
func (c *JobStatusCache) Invalidate(ctx context.Context, jobID string) error {
	if c == nil || c.cache == nil || jobID == "" {
		return nil
	}
	_, err := c.cache.Delete(ctx, c.key(jobID))
	return err
}

// Health reports the health of the underlying cache.
func (c *JobStatusCache) Health(ctx context.Context) error {
	if c == nil || c.cache == nil {
		return nil
	}
	return c.cache.Health(ctx)
}

func (c *JobStatusCache) key(jobID string) string {
	return c.prefix + jobID
}
