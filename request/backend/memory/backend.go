package memory

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"dbrequest/request"
	"dbrequest/request/ast"
)

// IDField 是 CREATE 时自动生成的主键
const IDField = "_id"

type Option func(b *Backend)

// Backend 把记录放在内存里，直接对 AST 求值
type Backend struct {
	mutex   sync.RWMutex
	records []request.Record

	funcs map[string]Func
	idGen func() string
}

var _ request.Backend = &Backend{}

func New(opts ...Option) *Backend {
	res := &Backend{
		funcs: builtinFuncs(),
		idGen: uuid.NewString,
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// WithRecords 预先放入一批记录，记录会被复制
func WithRecords(recs ...request.Record) Option {
	return func(b *Backend) {
		for _, rec := range recs {
			b.records = append(b.records, clone(rec))
		}
	}
}

// WithFunc 注册或者覆盖一个函数
func WithFunc(name string, fn Func) Option {
	return func(b *Backend) {
		b.funcs[name] = fn
	}
}

func WithIDGenerator(fn func() string) Option {
	return func(b *Backend) {
		b.idGen = fn
	}
}

// session 是一次连接，关闭之后就不可用了
type session struct {
	closed atomic.Bool
}

func (b *Backend) Connect(ctx context.Context) (request.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, request.NewErrConnection(err)
	}
	return &session{}, nil
}

func (b *Backend) Disconnect(ctx context.Context, conn request.Conn) {
	if s, ok := conn.(*session); ok {
		s.closed.Store(true)
	}
}

func (b *Backend) IsConnected(ctx context.Context, conn request.Conn) bool {
	s, ok := conn.(*session)
	return ok && !s.closed.Load()
}

func (b *Backend) ProcessQuery(ctx context.Context, conn request.Conn, q *request.Query) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, request.NewErrQueryExecution(err)
	}
	switch q.Type {
	case request.QueryCount:
		return b.count(q)
	case request.QueryCreate:
		return b.create(q)
	case request.QueryRead:
		return b.read(q)
	case request.QueryUpdate:
		return b.update(q)
	case request.QueryDelete:
		return b.delete(q)
	default:
		return nil, request.NewErrUnsupportedQueryType(q.Type)
	}
}

// Len 返回当前的记录数
func (b *Backend) Len() int {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return len(b.records)
}

func (b *Backend) count(q *request.Query) (int64, error) {
	preds, err := ast.ValidateFilter(q.Filter)
	if err != nil {
		return 0, err
	}
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	var cnt int64
	for _, rec := range b.records {
		ok, err := b.match(rec, preds)
		if err != nil {
			return 0, err
		}
		if ok {
			cnt++
		}
	}
	return cnt, nil
}

func (b *Backend) create(q *request.Query) (request.Record, error) {
	assigns, err := ast.Assignments(q.Update)
	if err != nil {
		return nil, err
	}
	rec := make(request.Record, len(assigns)+1)
	for _, a := range assigns {
		val, err := b.evaluator(rec).eval(a.Value)
		if err != nil {
			return nil, request.NewErrQueryExecution(err)
		}
		rec[a.Prop] = val
	}
	if _, ok := rec[IDField]; !ok {
		rec[IDField] = b.idGen()
	}
	b.mutex.Lock()
	b.records = append(b.records, rec)
	b.mutex.Unlock()
	return clone(rec), nil
}

func (b *Backend) read(q *request.Query) (request.Records, error) {
	preds, err := ast.ValidateFilter(q.Filter)
	if err != nil {
		return nil, err
	}
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	res := make([]request.Record, 0, len(b.records))
	for _, rec := range b.records {
		ok, err := b.match(rec, preds)
		if err != nil {
			return nil, err
		}
		if ok {
			res = append(res, clone(rec))
		}
	}
	return request.SliceRecords(res), nil
}

func (b *Backend) update(q *request.Query) (int64, error) {
	preds, err := ast.ValidateFilter(q.Filter)
	if err != nil {
		return 0, err
	}
	assigns, err := ast.Assignments(q.Update)
	if err != nil {
		return 0, err
	}
	b.mutex.Lock()
	defer b.mutex.Unlock()
	// 先在副本上更新，全部成功才替换，出错时原数据不变
	updated := make([]request.Record, len(b.records))
	copy(updated, b.records)
	var cnt int64
	for i, rec := range b.records {
		ok, err := b.match(rec, preds)
		if err != nil {
			return 0, err
		}
		if !ok {
			continue
		}
		// 所有赋值都基于更新前的记录求值
		next := clone(rec)
		for _, a := range assigns {
			val, err := b.evaluator(rec).eval(a.Value)
			if err != nil {
				return 0, request.NewErrQueryExecution(err)
			}
			next[a.Prop] = val
		}
		updated[i] = next
		cnt++
	}
	b.records = updated
	return cnt, nil
}

func (b *Backend) delete(q *request.Query) (int64, error) {
	preds, err := ast.ValidateFilter(q.Filter)
	if err != nil {
		return 0, err
	}
	b.mutex.Lock()
	defer b.mutex.Unlock()
	kept := make([]request.Record, 0, len(b.records))
	var cnt int64
	for _, rec := range b.records {
		ok, err := b.match(rec, preds)
		if err != nil {
			return 0, err
		}
		if ok {
			cnt++
			continue
		}
		kept = append(kept, rec)
	}
	b.records = kept
	return cnt, nil
}

// match 所有 filter 都成立才算匹配，没有 filter 匹配所有记录
func (b *Backend) match(rec request.Record, preds []ast.Fragment) (bool, error) {
	e := b.evaluator(rec)
	for _, p := range preds {
		val, err := e.eval(p)
		if err != nil {
			return false, request.NewErrQueryExecution(err)
		}
		if !truthy(val) {
			return false, nil
		}
	}
	return true, nil
}

func (b *Backend) evaluator(rec request.Record) evaluator {
	return evaluator{rec: rec, funcs: b.funcs}
}

func clone(rec request.Record) request.Record {
	res := make(request.Record, len(rec))
	for k, v := range rec {
		res[k] = v
	}
	return res
}
