package sqlbackend

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"dbrequest/request"
	"dbrequest/request/ast"
)

type Option func(b *Backend)

// Backend 把请求编译成 SQL，在一张表上执行
type Backend struct {
	db      *sql.DB
	table   string
	dialect Dialect
	// 主键列，CREATE 时用 LastInsertId 回填
	primaryKey string
}

var _ request.Backend = &Backend{}

func New(db *sql.DB, table string, opts ...Option) *Backend {
	res := &Backend{
		db:         db,
		table:      table,
		dialect:    DialectMySQL,
		primaryKey: "id",
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

func WithDialect(dialect Dialect) Option {
	return func(b *Backend) {
		b.dialect = dialect
	}
}

// WithPrimaryKey 传空字符串时不回填主键
func WithPrimaryKey(col string) Option {
	return func(b *Backend) {
		b.primaryKey = col
	}
}

func (b *Backend) Connect(ctx context.Context) (request.Conn, error) {
	conn, err := b.db.Conn(ctx)
	if err != nil {
		return nil, request.NewErrConnection(err)
	}
	return conn, nil
}

func (b *Backend) Disconnect(ctx context.Context, conn request.Conn) {
	c, ok := conn.(*sql.Conn)
	if !ok {
		return
	}
	if err := c.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		log.Printf("sqlbackend: 关闭连接失败: %v", err)
	}
}

func (b *Backend) IsConnected(ctx context.Context, conn request.Conn) bool {
	c, ok := conn.(*sql.Conn)
	if !ok {
		return false
	}
	return c.PingContext(ctx) == nil
}

func (b *Backend) ProcessQuery(ctx context.Context, conn request.Conn, q *request.Query) (any, error) {
	c, ok := conn.(*sql.Conn)
	if !ok {
		return nil, request.ErrNotConnected
	}
	stmt, err := b.Compile(q)
	if err != nil {
		return nil, err
	}
	switch q.Type {
	case request.QueryCount:
		var cnt int64
		if err = c.QueryRowContext(ctx, stmt.SQL, stmt.Args...).Scan(&cnt); err != nil {
			return nil, request.NewErrQueryExecution(err)
		}
		return cnt, nil
	case request.QueryRead:
		recs, err := b.query(ctx, c, stmt)
		if err != nil {
			return nil, err
		}
		return request.SliceRecords(recs), nil
	case request.QueryCreate:
		return b.insert(ctx, c, stmt, q.Update)
	default:
		res, err := c.ExecContext(ctx, stmt.SQL, stmt.Args...)
		if err != nil {
			return nil, request.NewErrQueryExecution(err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, request.NewErrQueryExecution(err)
		}
		return affected, nil
	}
}

// query 在断开连接之前把结果集全部读出来
func (b *Backend) query(ctx context.Context, c *sql.Conn, stmt *Statement) ([]request.Record, error) {
	rows, err := c.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, request.NewErrQueryExecution(err)
	}
	defer func() {
		_ = rows.Close()
	}()
	cs, err := rows.Columns()
	if err != nil {
		return nil, request.NewErrQueryExecution(err)
	}
	res := make([]request.Record, 0, 8)
	for rows.Next() {
		vals := make([]any, len(cs))
		ptrs := make([]any, len(cs))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err = rows.Scan(ptrs...); err != nil {
			return nil, request.NewErrQueryExecution(err)
		}
		rec := make(request.Record, len(cs))
		for i, col := range cs {
			if bs, ok := vals[i].([]byte); ok {
				rec[col] = string(bs)
				continue
			}
			rec[col] = vals[i]
		}
		res = append(res, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, request.NewErrQueryExecution(err)
	}
	return res, nil
}

func (b *Backend) insert(ctx context.Context, c *sql.Conn, stmt *Statement, update ast.Fragment) (request.Record, error) {
	if b.dialect.returning() {
		recs, err := b.query(ctx, c, stmt)
		if err != nil {
			return nil, err
		}
		if len(recs) != 1 {
			return nil, request.NewErrQueryExecution(errors.New("sqlbackend: RETURNING 没有返回记录"))
		}
		return recs[0], nil
	}
	res, err := c.ExecContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, request.NewErrQueryExecution(err)
	}
	// 只有字面值能直接回填，表达式的结果要重新查询才知道
	assigns, _ := ast.Assignments(update)
	rec := make(request.Record, len(assigns)+1)
	for _, a := range assigns {
		if n, ok := a.Value.(ast.Node); ok && n.Name == ast.KindVal {
			rec[a.Prop] = n.Val
		}
	}
	if b.primaryKey == "" {
		return rec, nil
	}
	if _, ok := rec[b.primaryKey]; ok {
		return rec, nil
	}
	if id, err := res.LastInsertId(); err == nil {
		rec[b.primaryKey] = id
	}
	return rec, nil
}
