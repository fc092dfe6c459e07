package request

import (
	"context"
	"math"
	"reflect"

	"dbrequest/request/ast"
	"dbrequest/request/internal/errs"
	"dbrequest/request/internal/valuer"
	"dbrequest/request/schema"
)

// Conn 是后端自己定义的连接句柄
type Conn any

//go:generate mockgen -source=driver.go -destination=mocks/backend.gen.go -package=mocks

// Backend 是具体数据库要实现的四个钩子
type Backend interface {
	// Connect 失败时返回 ErrConnection
	Connect(ctx context.Context) (Conn, error)
	// Disconnect 必须能处理已经失效的连接
	Disconnect(ctx context.Context, conn Conn)
	IsConnected(ctx context.Context, conn Conn) bool
	// ProcessQuery 返回整数、Record 或者 Records，失败时返回 ErrQueryExecution
	ProcessQuery(ctx context.Context, conn Conn, q *Query) (any, error)
}

type DriverOption func(d *Driver)

// Driver 把请求交给后端，并把结果统一成 int64、Model 和 Cursor。
// 每次调用都会单独连接和断开，Driver 本身不持有连接
type Driver struct {
	core
	backend Backend
}

func NewDriver(b Backend, opts ...DriverOption) *Driver {
	res := &Driver{
		core:    defaultCore,
		backend: b,
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

func DriverWithMiddleware(mdls ...Middleware) DriverOption {
	return func(d *Driver) {
		d.mdls = mdls
	}
}

func DriverWithRegistry(r schema.Registry) DriverOption {
	return func(d *Driver) {
		d.r = r
	}
}

func DriverWithReflect() DriverOption {
	return func(d *Driver) {
		d.creator = valuer.NewReflectValue
	}
}

// Backend 返回底层后端
func (d *Driver) Backend() Backend {
	return d.backend
}

func (d *Driver) CountElements(ctx context.Context, filter ast.Fragment) (int64, error) {
	return d.count(ctx, &Query{Type: QueryCount, Filter: filter})
}

func (d *Driver) PutElement(ctx context.Context, update ast.Fragment) (*Model, error) {
	res := d.exec(ctx, d.backend, &Query{Type: QueryCreate, Update: update})
	if res.Err != nil {
		return nil, res.Err
	}
	switch rec := res.Result.(type) {
	case Record:
		return newModel(d.core, rec), nil
	case map[string]any:
		return newModel(d.core, rec), nil
	default:
		return nil, errs.NewErrUnexpectedResult(QueryCreate.String(), res.Result)
	}
}

func (d *Driver) FindElements(ctx context.Context, filter ast.Fragment) (*Cursor, error) {
	res := d.exec(ctx, d.backend, &Query{Type: QueryRead, Filter: filter})
	if res.Err != nil {
		return nil, res.Err
	}
	switch rs := res.Result.(type) {
	case Records:
		return newCursor(d.core, rs), nil
	case []Record:
		return newCursor(d.core, SliceRecords(rs)), nil
	case []map[string]any:
		recs := make([]Record, 0, len(rs))
		for _, r := range rs {
			recs = append(recs, r)
		}
		return newCursor(d.core, SliceRecords(recs)), nil
	default:
		return nil, errs.NewErrUnexpectedResult(QueryRead.String(), res.Result)
	}
}

func (d *Driver) UpdateElements(ctx context.Context, filter ast.Fragment, update ast.Fragment) (int64, error) {
	return d.count(ctx, &Query{Type: QueryUpdate, Filter: filter, Update: update})
}

func (d *Driver) RemoveElements(ctx context.Context, filter ast.Fragment) (int64, error) {
	return d.count(ctx, &Query{Type: QueryDelete, Filter: filter})
}

func (d *Driver) count(ctx context.Context, q *Query) (int64, error) {
	res := d.exec(ctx, d.backend, q)
	if res.Err != nil {
		return 0, res.Err
	}
	return toCount(q.Type, res.Result)
}

// toCount 接受任意整数类型
func toCount(typ QueryType, res any) (int64, error) {
	if res != nil {
		val := reflect.ValueOf(res)
		switch val.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return val.Int(), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			if u := val.Uint(); u <= math.MaxInt64 {
				return int64(u), nil
			}
		}
	}
	return 0, errs.NewErrUnexpectedResult(typ.String(), res)
}
