// README: Settings provider with a short-lived Redis copy of the settings row.
package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const settingsCacheKey = "pricing:settings"

// SettingsProvider returns the latest committed settings. Callers get no
// snapshot isolation across a multi-step pricing call.
type SettingsProvider interface {
	Current(ctx context.Context) (*Settings, error)
}

// CachedSettings reads through Redis to the repository. A nil redis client
// disables caching; Redis failures fall back to the repository.
type CachedSettings struct {
	repo  Repository
	redis redis.UniversalClient
	ttl   time.Duration
	log   logrus.FieldLogger
	group singleflight.Group

	// gen counts invalidations; a load started under an older gen is not cached.
	mu  sync.Mutex
	gen uint64
}

func NewCachedSettings(repo Repository, rdb redis.UniversalClient, ttl time.Duration, log logrus.FieldLogger) *CachedSettings {
	return &CachedSettings{repo: repo, redis: rdb, ttl: ttl, log: log}
}

func (c *CachedSettings) Current(ctx context.Context) (*Settings, error) {
	if c.redis != nil && c.ttl > 0 {
		raw, err := c.redis.Get(ctx, settingsCacheKey).Bytes()
		switch {
		case err == nil:
			var st Settings
			if jerr := json.Unmarshal(raw, &st); jerr == nil {
				return &st, nil
			}
			c.log.WithField("key", settingsCacheKey).Warn("discarding undecodable cached settings")
		case !errors.Is(err, redis.Nil):
			c.log.WithError(err).Warn("settings cache read failed")
		}
	}

	v, err, _ := c.group.Do(settingsCacheKey, func() (any, error) {
		c.mu.Lock()
		gen := c.gen
		c.mu.Unlock()

		st, err := c.repo.GetSettings(ctx)
		if err != nil {
			return nil, err
		}
		c.storeIfCurrent(ctx, st, gen)
		return st, nil
	})
	if err != nil {
		return nil, err
	}
	st := *v.(*Settings)
	return &st, nil
}

// Invalidate drops the cached copy so the next read sees an admin write.
// Loads already in flight keep their result out of the cache.
func (c *CachedSettings) Invalidate(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.group.Forget(settingsCacheKey)
	if c.redis == nil {
		return
	}
	if err := c.redis.Del(ctx, settingsCacheKey).Err(); err != nil {
		c.log.WithError(err).Warn("settings cache invalidation failed")
	}
}

func (c *CachedSettings) storeIfCurrent(ctx context.Context, st *Settings, gen uint64) {
	if c.redis == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		c.log.WithField("key", settingsCacheKey).Debug("skipping cache write for superseded settings load")
		return
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, settingsCacheKey, raw, c.ttl).Err(); err != nil {
		c.log.WithError(err).Warn("settings cache write failed")
	}
}
