package redis

import (
	"context"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"item-crowdfund/internal/config/configs"
)

// NewClient returns a client for cfg.
func NewClient(cfg configs.Redis) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Deduper remembers processed transfer ids with SETNX. It implements
// port.Deduper.
type Deduper struct {
	rdb    goredis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

// NewDeduper returns a deduper remembering keys for ttl.
func NewDeduper(rdb goredis.Cmdable, ttl time.Duration, logger *slog.Logger) *Deduper {
	return &Deduper{rdb: rdb, ttl: ttl, logger: logger}
}

// AcquireOnce returns true the first time key is seen. When Redis is
// unreachable the notification is let through.
func (d *Deduper) AcquireOnce(ctx context.Context, key string) bool {
	ok, err := d.rdb.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		d.logger.Warn("redis dedup check failed, allowing processing",
			slog.String("key", key),
			slog.Any("error", err),
		)
		return true
	}
	if !ok {
		d.logger.Info("skipped duplicated transfer", slog.String("key", key))
	}
	return ok
}

// Release forgets key so a rejected notification can be delivered again.
func (d *Deduper) Release(ctx context.Context, key string) {
	if err := d.rdb.Del(ctx, key).Err(); err != nil {
		d.logger.Warn("redis dedup release failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
	}
}
