// Package cache stores transcriptions in Redis keyed by a hash of the input,
// collapsing concurrent misses for the same input with singleflight.
package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/phonetics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/redis"
)

const keyPrefix = "ipa:v1:"

// Backend is the subset of pkg/redis.Client the cache uses.
type Backend interface {
	GetJSON(ctx context.Context, key string, dst any) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

// TranscriptionCache caches phonetics.Transcription values.
type TranscriptionCache struct {
	backend Backend
	ttl     time.Duration
	group   singleflight.Group
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New creates a cache whose entries expire after ttl.
func New(backend Backend, ttl time.Duration) *TranscriptionCache {
	return &TranscriptionCache{
		backend: backend,
		ttl:     ttl,
		logger:  slog.Default().With("component", "transcription-cache"),
	}
}

// Get returns the cached transcription for input. Backend errors are logged
// and reported as a miss.
func (c *TranscriptionCache) Get(ctx context.Context, input string) (phonetics.Transcription, bool) {
	key := buildKey(input)
	var t phonetics.Transcription
	if err := c.backend.GetJSON(ctx, key, &t); err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return phonetics.Transcription{}, false
	}
	c.hits.Add(1)
	c.logger.Debug("cache hit", "key", key)
	return t, true
}

// Set stores t under its input. Failures are logged.
func (c *TranscriptionCache) Set(ctx context.Context, t phonetics.Transcription) {
	key := buildKey(t.Input)
	if err := c.backend.SetJSON(ctx, key, t, c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached transcription for input, or calls compute
// once per key across concurrent callers and caches the result. The bool
// reports whether the value came from the cache.
func (c *TranscriptionCache) GetOrCompute(
	ctx context.Context,
	input string,
	compute func() (phonetics.Transcription, error),
) (phonetics.Transcription, bool, error) {
	if t, ok := c.Get(ctx, input); ok {
		return t, true, nil
	}
	key := buildKey(input)
	val, err, _ := c.group.Do(key, func() (any, error) {
		t, err := compute()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, t)
		return t, nil
	})
	if err != nil {
		return phonetics.Transcription{}, false, err
	}
	return val.(phonetics.Transcription), false, nil
}

// Forget removes the entry for input.
func (c *TranscriptionCache) Forget(ctx context.Context, input string) error {
	if err := c.backend.Del(ctx, buildKey(input)); err != nil {
		return fmt.Errorf("deleting cache entry: %w", err)
	}
	return nil
}

// Invalidate removes every cached transcription.
func (c *TranscriptionCache) Invalidate(ctx context.Context) (int64, error) {
	deleted, err := c.backend.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return deleted, fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return deleted, nil
}

// Stats returns the hit and miss counts since start.
func (c *TranscriptionCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// buildKey hashes the exact input bytes; no normalization is applied since
// the tokenizer distinguishes precomposed from combining forms.
func buildKey(input string) string {
	sum := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%s%x", keyPrefix, sum[:16])
}
