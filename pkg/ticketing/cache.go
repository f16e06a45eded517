package ticketing

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"cybot-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// KV is the slice of a key-value store the lookup cache needs.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

type redisKV struct {
	rdb *redis.Client
}

// NewRedisKV adapts a go-redis client to KV.
func NewRedisKV(rdb *redis.Client) KV {
	return &redisKV{rdb: rdb}
}

func (r *redisKV) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *redisKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.rdb.Set(ctx, key, value, ttl).Err()
}

func (r *redisKV) Del(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, key).Err()
}

// CachedClient serves repeat lookups of the same complaint from a
// key-value cache. Cache failures are logged and fall through to the
// wrapped service; they never fail a lookup.
type CachedClient struct {
	next   Service
	kv     KV
	ttl    time.Duration
	logger logger.ILogger
}

var _ Service = &CachedClient{}

func NewCachedClient(next Service, kv KV, ttl time.Duration, log logger.ILogger) *CachedClient {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedClient{next: next, kv: kv, ttl: ttl, logger: log}
}

func cacheKey(id string) string {
	return "complaint:" + id
}

func (c *CachedClient) Create(ctx context.Context, s Submission) (*Receipt, error) {
	receipt, err := c.next.Create(ctx, s)
	if err != nil {
		return nil, err
	}
	if err := c.kv.Del(ctx, cacheKey(receipt.ID)); err != nil {
		c.logger.Warn("TICKETING", "Failed to invalidate complaint cache", map[string]interface{}{
			"complaint_id": receipt.ID,
			"error":        err.Error(),
		})
	}
	return receipt, nil
}

func (c *CachedClient) Fetch(ctx context.Context, id string) (*Complaint, error) {
	key := cacheKey(id)

	raw, found, err := c.kv.Get(ctx, key)
	if err != nil {
		c.logger.Warn("TICKETING", "Complaint cache read failed", map[string]interface{}{
			"complaint_id": id,
			"error":        err.Error(),
		})
	}
	if found {
		var cached Complaint
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			c.logger.Debug("TICKETING", "Complaint cache hit", map[string]interface{}{"complaint_id": id})
			return &cached, nil
		}
	}

	complaint, err := c.next.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(complaint); err == nil {
		if err := c.kv.Set(ctx, key, string(encoded), c.ttl); err != nil {
			c.logger.Warn("TICKETING", "Complaint cache write failed", map[string]interface{}{
				"complaint_id": id,
				"error":        err.Error(),
			})
		}
	}
	return complaint, nil
}
