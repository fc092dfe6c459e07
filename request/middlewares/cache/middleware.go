package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dbrequest/cache"
	"dbrequest/request"
	"dbrequest/request/ast"
)

var errUnsupportedValue = errors.New("cache: 缓存里的值类型不对")

// MiddlewareBuilder 缓存 COUNT 和 READ 的结果，key 是请求的 JSON。
// 写请求直接透传，不会主动失效缓存，一致性由过期时间保证
type MiddlewareBuilder struct {
	c          cache.Cache
	expiration time.Duration
	keyPrefix  string
}

func NewMiddlewareBuilder(c cache.Cache, expiration time.Duration) *MiddlewareBuilder {
	return &MiddlewareBuilder{
		c:          c,
		expiration: expiration,
		keyPrefix:  "dbrequest:",
	}
}

func (m *MiddlewareBuilder) KeyPrefix(prefix string) *MiddlewareBuilder {
	m.keyPrefix = prefix
	return m
}

func (m MiddlewareBuilder) Build() request.Middleware {
	return func(next request.Handler) request.Handler {
		rc := &cache.ReadThroughCache{
			Cache:      m.c,
			Expiration: m.expiration,
		}
		return func(ctx context.Context, qc *request.QueryContext) *request.QueryResult {
			if qc.Type != request.QueryCount && qc.Type != request.QueryRead {
				return next(ctx, qc)
			}
			key, err := json.Marshal(qc.Query)
			if err != nil {
				return &request.QueryResult{Err: err}
			}
			val, err := rc.Load(ctx, m.keyPrefix+string(key), func(ctx context.Context) (any, error) {
				res := next(ctx, qc)
				if res == nil {
					return nil, request.NewErrQueryExecution(errors.New("cache: 没有结果"))
				}
				if res.Err != nil {
					return nil, res.Err
				}
				return encode(res.Result)
			})
			if err != nil {
				return &request.QueryResult{Err: err}
			}
			res, err := decode(qc.Type, val)
			return &request.QueryResult{Result: res, Err: err}
		}
	}
}

// encode 把结果编码成 JSON 字符串，READ 的结果会被全部读出来
func encode(res any) (any, error) {
	if recs, ok := res.(request.Records); ok {
		all := make([]request.Record, 0, recs.Len())
		for i := 0; i < recs.Len(); i++ {
			rec, err := recs.At(i)
			if err != nil {
				return nil, err
			}
			all = append(all, rec)
		}
		res = all
	}
	data, err := json.Marshal(res)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func decode(typ request.QueryType, val any) (any, error) {
	var data []byte
	switch v := val.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return nil, fmt.Errorf("%w: %T", errUnsupportedValue, val)
	}
	raw, err := ast.DecodeValue(data)
	if err != nil {
		return nil, err
	}
	if typ == request.QueryCount {
		return raw, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %T", errUnsupportedValue, raw)
	}
	recs := make([]request.Record, 0, len(list))
	for _, elem := range list {
		rec, ok := elem.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %T", errUnsupportedValue, elem)
		}
		recs = append(recs, rec)
	}
	return request.SliceRecords(recs), nil
}
