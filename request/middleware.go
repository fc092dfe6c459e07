package request

import "context"

type QueryContext struct {
	// 查询类型，标记增删改查
	Type QueryType
	// 发给后端的请求，middleware 可以篡改它
	Query *Query
}

type QueryResult struct {
	// Result 在不同查询下类型不同
	// COUNT UPDATE DELETE 是整数，CREATE 是 Record，READ 是 Records
	Result any
	// 连接或者查询本身出的问题
	Err error
}

type Handler func(ctx context.Context, qc *QueryContext) *QueryResult

type Middleware func(next Handler) Handler
