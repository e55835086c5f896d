package cache_test

import (
	"context"
	"errors"
	"testing"

	"codecrackers/internal/cache"
	"codecrackers/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) cache.Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.New(client)
}

func TestKeyBuilders(t *testing.T) {
	if got := cache.TestCasesKey(7); got != "problem:7:testcases" {
		t.Fatalf("unexpected test-case key: %s", got)
	}
	if got := cache.LeaderboardKey(100); got != "leaderboard:top:100" {
		t.Fatalf("unexpected leaderboard key: %s", got)
	}
}

func TestCacheRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	cases := []models.TestCase{
		{ID: 1, Input: "1 2", ExpectedOutput: "3"},
		{ID: 2, Input: "5 5", ExpectedOutput: "10"},
	}
	if err := c.Set(ctx, cache.TestCasesKey(7), cases, cache.TestCasesTTL); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got []models.TestCase
	if err := c.Get(ctx, cache.TestCasesKey(7), &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 2 || got[0].ExpectedOutput != "3" || got[1].Input != "5 5" {
		t.Fatalf("unexpected cached value: %+v", got)
	}
}

func TestCacheMissReturnsRedisNil(t *testing.T) {
	c := newTestCache(t)

	var dest []models.TestCase
	err := c.Get(context.Background(), cache.TestCasesKey(404), &dest)
	if !errors.Is(err, redis.Nil) {
		t.Fatalf("expected redis.Nil on miss, got %v", err)
	}
}

func TestCacheDelete(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	key := cache.LeaderboardKey(100)
	if err := c.Set(ctx, key, []models.LeaderboardEntry{{UserID: 1}}, cache.LeaderboardTTL); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var dest []models.LeaderboardEntry
	if err := c.Get(ctx, key, &dest); !errors.Is(err, redis.Nil) {
		t.Fatalf("expected key gone after delete, got %v", err)
	}
}
