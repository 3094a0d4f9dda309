// Package cache keeps attendance summaries in Redis in front of the database.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/englishcenter/core"
	"github.com/trezcool/englishcenter/core/attendance"
)

const pingTimeout = 5 * time.Second

// Open connects to Redis. It returns a nil client when no address is configured.
func Open(ctx context.Context, conf core.RedisConfig) (*redis.Client, error) {
	if conf.Address == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Address,
		Password: conf.Password,
		DB:       conf.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "pinging redis at %s", conf.Address)
	}
	return client, nil
}

type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ attendance.SummaryCache = (*SummaryCache)(nil) // interface compliance check

func NewSummaryCache(client *redis.Client, ttl time.Duration) *SummaryCache {
	return &SummaryCache{client: client, ttl: ttl}
}

func SummaryKey(pair attendance.Pair) string {
	return fmt.Sprintf("attendance:summary:%d:%d", pair.StudentID, pair.ClassID)
}

func (c *SummaryCache) Get(ctx context.Context, pair attendance.Pair) (attendance.Summary, bool, error) {
	raw, err := c.client.Get(ctx, SummaryKey(pair)).Bytes()
	if errors.Is(err, redis.Nil) {
		return attendance.Summary{}, false, nil
	}
	if err != nil {
		return attendance.Summary{}, false, errors.Wrap(err, "reading cached summary")
	}

	var sum attendance.Summary
	if err = json.Unmarshal(raw, &sum); err != nil {
		// treat an unreadable entry as a miss; the next Set overwrites it
		return attendance.Summary{}, false, nil
	}
	return sum, true, nil
}

func (c *SummaryCache) Set(ctx context.Context, sum attendance.Summary) error {
	raw, err := json.Marshal(sum)
	if err != nil {
		return errors.Wrap(err, "encoding summary")
	}
	pair := attendance.Pair{StudentID: sum.StudentID, ClassID: sum.ClassID}
	if err = c.client.Set(ctx, SummaryKey(pair), raw, c.ttl).Err(); err != nil {
		return errors.Wrap(err, "caching summary")
	}
	return nil
}

func (c *SummaryCache) Invalidate(ctx context.Context, pair attendance.Pair) error {
	if err := c.client.Del(ctx, SummaryKey(pair)).Err(); err != nil {
		return errors.Wrap(err, "evicting cached summary")
	}
	return nil
}
