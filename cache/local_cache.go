package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// LocalCache 是进程内缓存，过期的 key 由 go-cache 定期清理
type LocalCache struct {
	c *gocache.Cache
}

// NewLocalCache defaultExpiration 在 Set 传 0 时不生效，0 总是代表永不过期
func NewLocalCache(defaultExpiration, cleanupInterval time.Duration) *LocalCache {
	return &LocalCache{
		c: gocache.New(defaultExpiration, cleanupInterval),
	}
}

// OnEvicted 在 key 过期或者被删除时回调
func (l *LocalCache) OnEvicted(fn func(key string, val any)) {
	l.c.OnEvicted(fn)
}

func (l *LocalCache) Set(ctx context.Context, key string, val any, expiration time.Duration) error {
	if expiration <= 0 {
		expiration = gocache.NoExpiration
	}
	l.c.Set(key, val, expiration)
	return nil
}

func (l *LocalCache) Get(ctx context.Context, key string) (any, error) {
	val, ok := l.c.Get(key)
	if !ok {
		return nil, ErrKeyNotFound
	}
	return val, nil
}

func (l *LocalCache) Delete(ctx context.Context, key string) (any, error) {
	val, ok := l.c.Get(key)
	if !ok {
		return nil, ErrKeyNotFound
	}
	l.c.Delete(key)
	return val, nil
}

func (l *LocalCache) Len() int {
	return l.c.ItemCount()
}
