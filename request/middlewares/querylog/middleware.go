package querylog

import (
	"context"
	"encoding/json"
	"log"

	"dbrequest/request"
)

type MiddlewareBuilder struct {
	logFunc func(typ request.QueryType, query string)
}

func NewMiddlewareBuilder() *MiddlewareBuilder {
	return &MiddlewareBuilder{
		logFunc: func(typ request.QueryType, query string) {
			log.Printf("type: %s ,query: %s \n", typ, query)
		},
	}
}

func (m *MiddlewareBuilder) LogFunc(fn func(typ request.QueryType, query string)) *MiddlewareBuilder {
	m.logFunc = fn
	return m
}

func (m MiddlewareBuilder) Build() request.Middleware {
	return func(next request.Handler) request.Handler {
		return func(ctx context.Context, qc *request.QueryContext) *request.QueryResult {
			q, err := json.Marshal(qc.Query)
			if err != nil {
				return &request.QueryResult{
					Err: err,
				}
			}
			// 交给用户输出
			m.logFunc(qc.Type, string(q))
			return next(ctx, qc)
		}
	}
}
