// Package redis caches spend totals so eligibility checks do not hit the
// order ledger on every page view.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/vncsmyrnk/sketchbook/internal/core/ports"
)

const spendPrefix = "sketchbook:spend:"

type spendCache struct {
	rdb *goredis.Client
	ttl time.Duration
}

// NewClient parses a redis:// URL and returns a connected client.
func NewClient(ctx context.Context, url string) (*goredis.Client, error) {
	opt, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	rdb := goredis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return rdb, nil
}

func NewSpendCache(rdb *goredis.Client, ttl time.Duration) ports.SpendCache {
	return &spendCache{
		rdb: rdb,
		ttl: ttl,
	}
}

func (c *spendCache) GetSpend(ctx context.Context, userID, brandID uuid.UUID, windowMonths int) (float64, bool, error) {
	raw, err := c.rdb.Get(ctx, spendKey(userID, brandID, windowMonths)).Result()
	if errors.Is(err, goredis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read spend: %w", err)
	}

	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("failed to parse cached spend %q: %w", raw, err)
	}
	return amount, true, nil
}

func (c *spendCache) SetSpend(ctx context.Context, userID, brandID uuid.UUID, windowMonths int, amount float64) error {
	value := strconv.FormatFloat(amount, 'f', -1, 64)
	if err := c.rdb.Set(ctx, spendKey(userID, brandID, windowMonths), value, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write spend: %w", err)
	}
	return nil
}

func spendKey(userID, brandID uuid.UUID, windowMonths int) string {
	return fmt.Sprintf("%s%s:%s:%d", spendPrefix, userID, brandID, windowMonths)
}
