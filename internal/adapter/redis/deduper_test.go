package redis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

// fakeRedis overrides the two commands the deduper issues.
type fakeRedis struct {
	goredis.Cmdable
	keys map[string]time.Duration
	err  error
}

func (f *fakeRedis) SetNX(_ context.Context, key string, _ interface{}, ttl time.Duration) *goredis.BoolCmd {
	if f.err != nil {
		return goredis.NewBoolResult(false, f.err)
	}
	if _, ok := f.keys[key]; ok {
		return goredis.NewBoolResult(false, nil)
	}
	f.keys[key] = ttl
	return goredis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *goredis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.keys[k]; ok {
			delete(f.keys, k)
			n++
		}
	}
	return goredis.NewIntResult(n, f.err)
}

func newTestDeduper(rdb *fakeRedis) *Deduper {
	return NewDeduper(rdb, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestDeduperAcquireOnce(t *testing.T) {
	rdb := &fakeRedis{keys: map[string]time.Duration{}}
	d := newTestDeduper(rdb)
	ctx := context.Background()

	assert.True(t, d.AcquireOnce(ctx, "transfer:usdc:1"))
	assert.False(t, d.AcquireOnce(ctx, "transfer:usdc:1"))
	assert.True(t, d.AcquireOnce(ctx, "transfer:usdc:2"))
	assert.Equal(t, time.Hour, rdb.keys["transfer:usdc:1"])

	d.Release(ctx, "transfer:usdc:1")
	assert.True(t, d.AcquireOnce(ctx, "transfer:usdc:1"))
}

func TestDeduperFailsOpen(t *testing.T) {
	rdb := &fakeRedis{keys: map[string]time.Duration{}, err: errors.New("dial tcp: refused")}
	d := newTestDeduper(rdb)

	assert.True(t, d.AcquireOnce(context.Background(), "transfer:usdc:1"))
	assert.True(t, d.AcquireOnce(context.Background(), "transfer:usdc:1"))
}
