package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// LRUCache 超过容量时淘汰最久没有访问的 key，过期时间在读的时候检查
type LRUCache struct {
	c *lru.Cache
}

func NewLRUCache(size int) (*LRUCache, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &LRUCache{c: c}, nil
}

func (l *LRUCache) Set(ctx context.Context, key string, val any, expiration time.Duration) error {
	var dl time.Time
	if expiration > 0 {
		dl = time.Now().Add(expiration)
	}
	l.c.Add(key, &item{val: val, expiration: dl})
	return nil
}

func (l *LRUCache) Get(ctx context.Context, key string) (any, error) {
	v, ok := l.c.Get(key)
	if !ok {
		return nil, ErrKeyNotFound
	}
	itm := v.(*item)
	if itm.deadlineBefore(time.Now()) {
		l.c.Remove(key)
		return nil, ErrKeyNotFound
	}
	return itm.val, nil
}

func (l *LRUCache) Delete(ctx context.Context, key string) (any, error) {
	v, ok := l.c.Peek(key)
	if !ok {
		return nil, ErrKeyNotFound
	}
	l.c.Remove(key)
	itm := v.(*item)
	if itm.deadlineBefore(time.Now()) {
		return nil, ErrKeyNotFound
	}
	return itm.val, nil
}

func (l *LRUCache) Len() int {
	return l.c.Len()
}

// item 为值加上超时控制
type item struct {
	val any
	// expiration 超时时间
	expiration time.Time
}

func (i *item) deadlineBefore(t time.Time) bool {
	return !i.expiration.IsZero() && i.expiration.Before(t)
}
