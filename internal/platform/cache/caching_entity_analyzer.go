// Package cache provides caching decorators for the scanner's outbound calls.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"invisible_lens/internal/feature/scanner/domain/entity"
	"invisible_lens/internal/feature/scanner/usecase"
)

// CachingEntityAnalyzer decorates an EntityAnalyzer with Redis caching.
// Records are keyed by the SHA-256 of the frame bytes, so re-scanning an
// identical frame does not hit the analyzer again. Failures are never cached,
// which keeps the fallback decision in the usecase layer.
type CachingEntityAnalyzer struct {
	inner     usecase.EntityAnalyzer
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.EntityAnalyzer = (*CachingEntityAnalyzer)(nil)

// NewCachingEntityAnalyzer decorates an EntityAnalyzer with Redis caching.
// If ttl is 0, it defaults to 10 minutes. If namespace is empty, it uses "entities".
func NewCachingEntityAnalyzer(rdb *redis.Client, ttl time.Duration, inner usecase.EntityAnalyzer, namespace string) *CachingEntityAnalyzer {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if namespace == "" {
		namespace = "entities"
	}
	return &CachingEntityAnalyzer{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// AnalyzeEntity returns a cached record for the frame when present, otherwise
// calls the inner analyzer and stores a successful, valid result.
func (c *CachingEntityAnalyzer) AnalyzeEntity(ctx context.Context, frame entity.CapturedFrame) (*entity.EntityRecord, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.AnalyzeEntity(ctx, frame)
	}

	key := c.cacheKey(frame.Data)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out entity.EntityRecord
		if err := json.Unmarshal(b, &out); err == nil && out.Validate() == nil {
			return &out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to the analyzer
	out, err := c.inner.AnalyzeEntity(ctx, frame)
	if err != nil || out == nil || out.Validate() != nil {
		return out, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

// cacheKey generates a cache key for a frame.
func (c *CachingEntityAnalyzer) cacheKey(data []byte) string {
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", c.namespace, hex.EncodeToString(sum[:]))
}
