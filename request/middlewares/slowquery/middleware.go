package slowquery

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"dbrequest/request"
)

type MiddlewareBuilder struct {
	// 慢查询阈值
	threshold time.Duration
	logFunc   func(query string, duration time.Duration)
}

func NewMiddlewareBuilder(threshold time.Duration) *MiddlewareBuilder {
	return &MiddlewareBuilder{
		logFunc: func(query string, duration time.Duration) {
			log.Printf("slow query: %s ,duration: %v \n", query, duration)
		},
		threshold: threshold,
	}
}

func (m *MiddlewareBuilder) LogFunc(fn func(query string, duration time.Duration)) *MiddlewareBuilder {
	m.logFunc = fn
	return m
}

func (m MiddlewareBuilder) Build() request.Middleware {
	return func(next request.Handler) request.Handler {
		return func(ctx context.Context, qc *request.QueryContext) *request.QueryResult {
			startTime := time.Now()
			defer func() {
				duration := time.Since(startTime)
				if duration < m.threshold {
					return
				}
				q, err := json.Marshal(qc.Query)
				if err == nil {
					m.logFunc(string(q), duration)
				}
			}()
			return next(ctx, qc)
		}
	}
}
