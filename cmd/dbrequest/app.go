package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v9"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dbrequest/cache"
	"dbrequest/internal/config"
	"dbrequest/internal/logger"
	"dbrequest/request"
	"dbrequest/request/backend/connpool"
	sqlbackend "dbrequest/request/backend/sql"
	cachemdl "dbrequest/request/middlewares/cache"
	"dbrequest/request/middlewares/opentelemetry"
	"dbrequest/request/middlewares/prometheus"
	"dbrequest/request/middlewares/querylog"
	"dbrequest/request/middlewares/slowquery"
)

// app 持有一次命令执行期间的所有资源
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	driver *request.Driver
	// 按打开的顺序记录，关闭时倒序执行
	closers []func(ctx context.Context) error
}

func newApp(ctx context.Context, cfg *config.Config) (_ *app, err error) {
	a := &app{
		cfg:    cfg,
		logger: logger.New(os.Stderr, cfg.Log.Level, cfg.Log.Format),
	}
	slog.SetDefault(a.logger)
	defer func() {
		if err != nil {
			a.Close(ctx)
		}
	}()

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}
	a.onClose(func(ctx context.Context) error {
		return db.Close()
	})

	var backend request.Backend = newSQLBackend(cfg, db)
	if cfg.Pool.Enabled {
		p, err := connpool.New(backend, connpool.Config{
			InitialCap:  cfg.Pool.InitialCap,
			MaxIdle:     cfg.Pool.MaxIdle,
			MaxCap:      cfg.Pool.MaxCap,
			IdleTimeout: cfg.Pool.IdleTimeout,
		})
		if err != nil {
			return nil, err
		}
		a.onClose(func(ctx context.Context) error {
			p.Release()
			return nil
		})
		backend = p
	}

	mdls, err := a.middlewares(ctx)
	if err != nil {
		return nil, err
	}
	a.driver = request.NewDriver(backend, request.DriverWithMiddleware(mdls...))
	return a, nil
}

func newSQLBackend(cfg *config.Config, db *sql.DB) *sqlbackend.Backend {
	dialect, _ := sqlbackend.ParseDialect(cfg.Dialect)
	return sqlbackend.New(db, cfg.Table,
		sqlbackend.WithDialect(dialect),
		sqlbackend.WithPrimaryKey(cfg.PrimaryKey))
}

// middlewares 顺序：tracing、metrics、querylog、slowquery、cache，越靠前越在外层
func (a *app) middlewares(ctx context.Context) ([]request.Middleware, error) {
	cfg := a.cfg
	mdls := make([]request.Middleware, 0, 5)

	if cfg.Tracing.Exporter != "" {
		tp, err := newTracerProvider(cfg.Tracing)
		if err != nil {
			return nil, err
		}
		a.onClose(tp.Shutdown)
		mdls = append(mdls, opentelemetry.MiddlewareBuilder{
			Tracer: tp.Tracer(cfg.Tracing.ServiceName),
		}.Build())
	}

	if cfg.Metrics.Addr != "" {
		reg := prom.NewRegistry()
		mdls = append(mdls, prometheus.MiddlewareBuilder{
			Namespace:  cfg.Metrics.Namespace,
			Subsystem:  "request",
			Name:       "duration_ms",
			Help:       "dbrequest 请求耗时",
			Registerer: reg,
		}.Build())
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		server := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics server 退出", "addr", cfg.Metrics.Addr, "err", err)
			}
		}()
		a.onClose(server.Shutdown)
	}

	if cfg.Log.Queries {
		mdls = append(mdls, querylog.NewMiddlewareBuilder().LogFunc(func(typ request.QueryType, query string) {
			a.logger.Info("query", "type", typ.String(), "query", query)
		}).Build())
	}

	if cfg.SlowQuery > 0 {
		mdls = append(mdls, slowquery.NewMiddlewareBuilder(cfg.SlowQuery).LogFunc(func(query string, duration time.Duration) {
			a.logger.Warn("slow query", "query", query, "duration", duration)
		}).Build())
	}

	c, err := a.newCache(ctx)
	if err != nil {
		return nil, err
	}
	if c != nil {
		mdls = append(mdls, cachemdl.NewMiddlewareBuilder(c, cfg.Cache.TTL).
			KeyPrefix("dbrequest:"+cfg.Table+":").Build())
	}
	return mdls, nil
}

func (a *app) newCache(ctx context.Context) (cache.Cache, error) {
	cfg := a.cfg.Cache
	switch cfg.Kind {
	case "local":
		return cache.NewLocalCache(cfg.TTL, cfg.TTL*2), nil
	case "lru":
		c, err := cache.NewLRUCache(cfg.Size)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.Addr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, err
		}
		a.onClose(func(ctx context.Context) error {
			return client.Close()
		})
		return cache.NewRedisCache(client), nil
	default:
		return nil, nil
	}
}

func (a *app) onClose(fn func(ctx context.Context) error) {
	a.closers = append(a.closers, fn)
}

func (a *app) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.logger.Warn("释放资源失败", "err", err)
		}
	}
	a.closers = nil
}
