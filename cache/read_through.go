package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
)

var (
	errFailToRefreshCache = errors.New("cache: 刷新缓存失败")
)

// ReadThroughCache 缓存里没有的时候加载并刷新缓存，
// 同一个 key 的并发加载只会执行一次
type ReadThroughCache struct {
	Cache
	LoadFunc   func(ctx context.Context, key string) (any, error)
	Expiration time.Duration
	g          singleflight.Group
}

func (r *ReadThroughCache) Get(ctx context.Context, key string) (any, error) {
	return r.Load(ctx, key, func(ctx context.Context) (any, error) {
		return r.LoadFunc(ctx, key)
	})
}

// Load 和 Get 一样，但是用传入的 loadFunc 加载
func (r *ReadThroughCache) Load(ctx context.Context, key string, loadFunc func(ctx context.Context) (any, error)) (any, error) {
	val, err := r.Cache.Get(ctx, key)
	if !errors.Is(err, ErrKeyNotFound) {
		return val, err
	}
	val, err, _ = r.g.Do(key, func() (interface{}, error) {
		v, er := loadFunc(ctx)
		if er != nil {
			return nil, er
		}
		if er = r.Cache.Set(ctx, key, v, r.Expiration); er != nil {
			return v, fmt.Errorf("%w, 原因：%s", errFailToRefreshCache, er.Error())
		}
		return v, nil
	})
	return val, err
}
