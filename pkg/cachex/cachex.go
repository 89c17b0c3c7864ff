// Package cachex is a best-effort key/value cache backed by Redis with an
// in-process fallback. No method returns an error: any Redis failure
// permanently downgrades the facade to the fallback for the rest of the
// process lifetime.
package cachex

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var errNoClient = errors.New("no redis client configured")

// Facade is the cache entry point handed to repositories and middleware.
type Facade struct {
	rdb        *redis.Client
	fallback   *memoryStore
	defaultTTL time.Duration
	degraded   atomic.Bool
	log        *zap.Logger
	onFallback func()
}

// Option configures a Facade.
type Option func(*Facade)

// WithClock overrides the clock used by the in-process fallback.
func WithClock(now func() time.Time) Option {
	return func(f *Facade) {
		f.fallback = newMemoryStore(now)
	}
}

// WithFallbackHook registers a callback fired once when the facade
// downgrades to the in-process store.
func WithFallbackHook(fn func()) Option {
	return func(f *Facade) {
		f.onFallback = fn
	}
}

// New builds a Facade over the given Redis client. The connection is probed
// once; if the probe fails the facade starts degraded. A nil client also
// starts degraded.
func New(rdb *redis.Client, defaultTTL time.Duration, log *zap.Logger, opts ...Option) *Facade {
	if log == nil {
		log = zap.NewNop()
	}
	f := &Facade{
		rdb:        rdb,
		fallback:   newMemoryStore(nil),
		defaultTTL: defaultTTL,
		log:        log,
	}
	for _, opt := range opts {
		opt(f)
	}

	if rdb == nil {
		f.downgrade(errNoClient)
		return f
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		f.downgrade(err)
	}
	return f
}

// Degraded reports whether the facade has fallen back to the in-process store.
func (f *Facade) Degraded() bool {
	return f.degraded.Load()
}

// DefaultTTL returns the TTL applied by SetJSON callers that pass none.
func (f *Facade) DefaultTTL() time.Duration {
	return f.defaultTTL
}

// downgrade flips the facade to the fallback store. There is no recovery
// path until the process restarts.
func (f *Facade) downgrade(err error) {
	if f.degraded.CompareAndSwap(false, true) {
		f.log.Warn("cache: redis unavailable, downgrading to in-process fallback", zap.Error(err))
		if f.onFallback != nil {
			f.onFallback()
		}
	}
}

// Get returns the value for key and whether it was present.
func (f *Facade) Get(ctx context.Context, key string) (string, bool) {
	if !f.degraded.Load() {
		val, err := f.rdb.Get(ctx, key).Result()
		if err == nil {
			return val, true
		}
		if err == redis.Nil {
			return "", false
		}
		f.downgrade(err)
	}
	return f.fallback.get(key)
}

// Set stores a value. A ttl of zero means no expiry.
func (f *Facade) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if !f.degraded.Load() {
		if err := f.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
			f.downgrade(err)
		} else {
			return
		}
	}
	f.fallback.set(key, value, ttl)
}

// Delete removes a key.
func (f *Facade) Delete(ctx context.Context, key string) {
	if !f.degraded.Load() {
		if err := f.rdb.Del(ctx, key).Err(); err != nil {
			f.downgrade(err)
		} else {
			return
		}
	}
	f.fallback.delete(key)
}

// Increment atomically increments the integer stored at key and returns
// the new value.
func (f *Facade) Increment(ctx context.Context, key string) int64 {
	if !f.degraded.Load() {
		n, err := f.rdb.Incr(ctx, key).Result()
		if err == nil {
			return n
		}
		f.downgrade(err)
	}
	return f.fallback.increment(key)
}

// Expire sets the remaining lifetime of a key.
func (f *Facade) Expire(ctx context.Context, key string, ttl time.Duration) {
	if !f.degraded.Load() {
		if err := f.rdb.Expire(ctx, key, ttl).Err(); err != nil {
			f.downgrade(err)
		} else {
			return
		}
	}
	f.fallback.expire(key, ttl)
}

// GetJSON unmarshals the cached value for key into dest. Unmarshalable
// entries count as misses.
func (f *Facade) GetJSON(ctx context.Context, key string, dest any) bool {
	raw, ok := f.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		f.Delete(ctx, key)
		return false
	}
	return true
}

// SetJSON marshals v and stores it under key with the facade default TTL.
func (f *Facade) SetJSON(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		// Domain models are always marshalable; a failure here is a
		// programming error, logged and skipped.
		f.log.Error("cache: marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	f.Set(ctx, key, string(data), f.defaultTTL)
}
