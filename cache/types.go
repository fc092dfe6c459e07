package cache

import (
	"context"
	"errors"
	"time"
)

var ErrKeyNotFound = errors.New("cache: 没有对应 key 的值")

type Cache interface {
	// Set 方法会设置一个过期时间，0 代表永不过期
	Set(ctx context.Context, key string, val any, expiration time.Duration) error
	Get(ctx context.Context, key string) (any, error)
	// Delete 删除并返回原来的值
	Delete(ctx context.Context, key string) (any, error)
}
