package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testCache 对所有实现跑同一组用例
func testCache(t *testing.T, newCache func() Cache) {
	testCases := []struct {
		name    string
		key     string
		before  func(c Cache)
		wantVal any
		wantErr error
	}{
		{
			name:    "key not found",
			key:     "not exist key",
			before:  func(c Cache) {},
			wantErr: ErrKeyNotFound,
		},
		{
			name: "get value",
			key:  "key1",
			before: func(c Cache) {
				require.NoError(t, c.Set(context.Background(), "key1", 123, time.Minute))
			},
			wantVal: 123,
		},
		{
			name: "no expiration",
			key:  "key1",
			before: func(c Cache) {
				require.NoError(t, c.Set(context.Background(), "key1", "forever", 0))
			},
			wantVal: "forever",
		},
		{
			name: "expiration",
			key:  "expiration key",
			before: func(c Cache) {
				require.NoError(t, c.Set(context.Background(), "expiration key", 123, 10*time.Millisecond))
				time.Sleep(20 * time.Millisecond)
			},
			wantErr: ErrKeyNotFound,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := newCache()
			tc.before(c)
			val, err := c.Get(context.Background(), tc.key)
			assert.Equal(t, tc.wantErr, err)
			if err != nil {
				return
			}
			assert.Equal(t, tc.wantVal, val)

			val, err = c.Delete(context.Background(), tc.key)
			require.NoError(t, err)
			assert.Equal(t, tc.wantVal, val)
			_, err = c.Get(context.Background(), tc.key)
			assert.Equal(t, ErrKeyNotFound, err)
			_, err = c.Delete(context.Background(), tc.key)
			assert.Equal(t, ErrKeyNotFound, err)
		})
	}
}

func TestLocalCache(t *testing.T) {
	testCache(t, func() Cache {
		return NewLocalCache(time.Minute, time.Minute)
	})
}

func TestLocalCache_OnEvicted(t *testing.T) {
	c := NewLocalCache(time.Minute, time.Minute)
	var evicted []string
	c.OnEvicted(func(key string, val any) {
		evicted = append(evicted, key)
	})
	require.NoError(t, c.Set(context.Background(), "key1", 1, 0))
	require.NoError(t, c.Set(context.Background(), "key2", 2, 0))
	assert.Equal(t, 2, c.Len())
	_, err := c.Delete(context.Background(), "key1")
	require.NoError(t, err)
	assert.Equal(t, []string{"key1"}, evicted)
	assert.Equal(t, 1, c.Len())
}
