package request

import (
	"context"

	"dbrequest/request/internal/errs"
	"dbrequest/request/internal/valuer"
	"dbrequest/request/schema"
)

type core struct {
	r       schema.Registry
	creator valuer.Creator
	mdls    []Middleware
}

var defaultCore = core{
	r:       schema.NewRegistry(),
	creator: valuer.NewUnsafeValue,
}

func (c core) exec(ctx context.Context, b Backend, q *Query) *QueryResult {
	var root Handler = func(ctx context.Context, qc *QueryContext) *QueryResult {
		return execHandler(ctx, b, qc)
	}
	for i := len(c.mdls) - 1; i >= 0; i-- {
		root = c.mdls[i](root)
	}
	res := root(ctx, &QueryContext{Type: q.Type, Query: q})
	if res == nil {
		return &QueryResult{Err: errs.NewErrUnexpectedResult(q.Type.String(), nil)}
	}
	return res
}

// execHandler 负责一次完整的连接生命周期，拿到连接之后一定会断开
func execHandler(ctx context.Context, b Backend, qc *QueryContext) *QueryResult {
	conn, err := b.Connect(ctx)
	if err != nil {
		return &QueryResult{Err: err}
	}
	defer b.Disconnect(ctx, conn)
	if !b.IsConnected(ctx, conn) {
		return &QueryResult{Err: errs.ErrNotConnected}
	}
	res, err := b.ProcessQuery(ctx, conn, qc.Query)
	return &QueryResult{Result: res, Err: err}
}
