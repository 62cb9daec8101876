// internal/reference/cache.go
package reference

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"insertion-workers/internal/common/logger"
	"insertion-workers/internal/eligibility"
)

const keyPrefix = "eligibility:ref:"

// cached wraps a value so a confirmed miss can be stored too.
type cached[T any] struct {
	Found bool `json:"found"`
	Value *T   `json:"value,omitempty"`
}

// CachedProvider serves lookups from redis and falls through to next on a
// miss. Redis failures are logged and bypassed.
type CachedProvider struct {
	next   eligibility.ReferenceProvider
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedProvider(next eligibility.ReferenceProvider, rdb *redis.Client, ttl time.Duration, log logger.Logger) *CachedProvider {
	return &CachedProvider{
		next:   next,
		redis:  rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "reference-cache"}),
	}
}

func (c *CachedProvider) FindCallByID(ctx context.Context, id string) (*eligibility.Call, error) {
	return through(ctx, c, "call:"+id, false, func(ctx context.Context) (*eligibility.Call, error) {
		return c.next.FindCallByID(ctx, id)
	})
}

func (c *CachedProvider) FindProjectByID(ctx context.Context, id string) (*eligibility.Project, error) {
	return through(ctx, c, "project:"+id, false, func(ctx context.Context) (*eligibility.Project, error) {
		return c.next.FindProjectByID(ctx, id)
	})
}

// FindPolicyByProgrammeID also remembers programmes without a policy, which
// is the common case for open programmes.
func (c *CachedProvider) FindPolicyByProgrammeID(ctx context.Context, programmeID string) (*eligibility.Policy, error) {
	return through(ctx, c, "policy:"+programmeID, true, func(ctx context.Context) (*eligibility.Policy, error) {
		return c.next.FindPolicyByProgrammeID(ctx, programmeID)
	})
}

// InvalidatePolicy drops the cached policy of a programme.
func (c *CachedProvider) InvalidatePolicy(ctx context.Context, programmeID string) error {
	return c.redis.Del(ctx, keyPrefix+"policy:"+programmeID).Err()
}

func through[T any](ctx context.Context, c *CachedProvider, key string, cacheMisses bool, load func(context.Context) (*T, error)) (*T, error) {
	key = keyPrefix + key

	raw, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var entry cached[T]
		if jsonErr := json.Unmarshal(raw, &entry); jsonErr == nil {
			if !entry.Found || entry.Value == nil {
				return nil, eligibility.ErrNotFound
			}
			return entry.Value, nil
		}
		c.logger.Warn("discarding malformed cache entry", map[string]interface{}{"key": key})
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("reference cache read failed", map[string]interface{}{"key": key, "error": err})
	}

	value, err := load(ctx)
	switch {
	case err == nil && value != nil:
		c.store(ctx, key, cached[T]{Found: true, Value: value})
	case errors.Is(err, eligibility.ErrNotFound) && cacheMisses:
		c.store(ctx, key, cached[T]{Found: false})
	}
	return value, err
}

func (c *CachedProvider) store(ctx context.Context, key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("reference cache write failed", map[string]interface{}{"key": key, "error": err})
	}
}
