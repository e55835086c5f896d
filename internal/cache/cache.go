package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTLs are owned here so every consumer of a key family ages it the same
// way. Test cases are immutable during a contest; the leaderboard only has
// to be fresh enough for a scoreboard page.
const (
	TestCasesTTL   = 1 * time.Hour
	LeaderboardTTL = 30 * time.Second
)

// TestCasesKey addresses the cached grading snapshot for one problem.
func TestCasesKey(problemID int) string {
	return fmt.Sprintf("problem:%d:testcases", problemID)
}

// LeaderboardKey addresses the cached official ranking for one page size.
func LeaderboardKey(limit int) string {
	return fmt.Sprintf("leaderboard:top:%d", limit)
}

// Cache is a JSON read-through cache for hot lookups on the grading path.
// A miss surfaces as redis.Nil; callers fall back to the database.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type redisCache struct {
	client *redis.Client
}

func New(client *redis.Client) Cache {
	return &redisCache{client: client}
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value for %s: %w", key, err)
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}
