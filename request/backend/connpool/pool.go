package connpool

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/silenceper/pool"

	"dbrequest/request"
)

var errConnDead = errors.New("connpool: 连接已经断开")

// Config 连接池配置
type Config struct {
	//初始连接数
	InitialCap int
	//最大空闲连接数
	MaxIdle int
	//最大连接数
	MaxCap int
	//空闲连接过期时间，0 表示不过期
	IdleTimeout time.Duration
}

// Backend 把另一个后端的连接放进池子里复用。
// Disconnect 不会真的断开，活着的连接放回池子，断开的连接直接丢掉
type Backend struct {
	inner request.Backend
	p     pool.Pool
}

var _ request.Backend = &Backend{}

func New(inner request.Backend, cfg Config) (*Backend, error) {
	p, err := pool.NewChannelPool(&pool.Config{
		InitialCap: cfg.InitialCap,
		MaxIdle:    cfg.MaxIdle,
		MaxCap:     cfg.MaxCap,
		Factory: func() (interface{}, error) {
			return inner.Connect(context.Background())
		},
		Close: func(c interface{}) error {
			inner.Disconnect(context.Background(), c)
			return nil
		},
		Ping: func(c interface{}) error {
			if !inner.IsConnected(context.Background(), c) {
				return errConnDead
			}
			return nil
		},
		IdleTimeout: cfg.IdleTimeout,
	})
	if err != nil {
		return nil, err
	}
	return &Backend{
		inner: inner,
		p:     p,
	}, nil
}

func (b *Backend) Connect(ctx context.Context) (request.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, request.NewErrConnection(err)
	}
	c, err := b.p.Get()
	if err != nil {
		if errors.Is(err, request.ErrConnection) {
			return nil, err
		}
		return nil, request.NewErrConnection(err)
	}
	return c, nil
}

func (b *Backend) Disconnect(ctx context.Context, conn request.Conn) {
	if conn == nil {
		return
	}
	if !b.inner.IsConnected(ctx, conn) {
		_ = b.p.Close(conn)
		return
	}
	if err := b.p.Put(conn); err != nil {
		log.Printf("connpool: 归还连接失败: %v", err)
	}
}

func (b *Backend) IsConnected(ctx context.Context, conn request.Conn) bool {
	return b.inner.IsConnected(ctx, conn)
}

func (b *Backend) ProcessQuery(ctx context.Context, conn request.Conn, q *request.Query) (any, error) {
	return b.inner.ProcessQuery(ctx, conn, q)
}

// Len 空闲连接数
func (b *Backend) Len() int {
	return b.p.Len()
}

// Release 关闭池子里所有的连接，之后 Connect 都会失败
func (b *Backend) Release() {
	b.p.Release()
}
