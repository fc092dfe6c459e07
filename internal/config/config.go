package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	sqlbackend "dbrequest/request/backend/sql"
)

// EnvPrefix 环境变量前缀，例如 DBREQUEST_LOG_LEVEL 对应 log.level
const EnvPrefix = "DBREQUEST"

var ErrInvalidConfig = errors.New("config: 配置错误")

type Config struct {
	// sql.Open 用的驱动名：sqlite3、mysql 或 postgres
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Table  string `mapstructure:"table"`
	// 为空时根据 Driver 推断
	Dialect    string `mapstructure:"dialect"`
	PrimaryKey string `mapstructure:"primary_key"`

	Log LogConfig `mapstructure:"log"`
	// 慢查询阈值，0 表示不记录
	SlowQuery time.Duration `mapstructure:"slow_query"`

	Metrics MetricsConfig `mapstructure:"metrics"`
	Tracing TracingConfig `mapstructure:"tracing"`
	Pool    PoolConfig    `mapstructure:"pool"`
	Cache   CacheConfig   `mapstructure:"cache"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	// 打印每个请求
	Queries bool `mapstructure:"queries"`
}

type MetricsConfig struct {
	// 为空时不启动 /metrics
	Addr      string `mapstructure:"addr"`
	Namespace string `mapstructure:"namespace"`
}

type TracingConfig struct {
	// jaeger、zipkin，为空时不上报
	Exporter    string `mapstructure:"exporter"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

type PoolConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	InitialCap  int           `mapstructure:"initial_cap"`
	MaxIdle     int           `mapstructure:"max_idle"`
	MaxCap      int           `mapstructure:"max_cap"`
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
}

type CacheConfig struct {
	// local、lru、redis，为空时不缓存
	Kind string        `mapstructure:"kind"`
	Addr string        `mapstructure:"addr"`
	Size int           `mapstructure:"size"`
	TTL  time.Duration `mapstructure:"ttl"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("driver", "sqlite3")
	v.SetDefault("dsn", "file:dbrequest.db")
	v.SetDefault("table", "")
	v.SetDefault("dialect", "")
	v.SetDefault("primary_key", "id")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.queries", false)
	v.SetDefault("slow_query", time.Duration(0))
	v.SetDefault("metrics.addr", "")
	v.SetDefault("metrics.namespace", "dbrequest")
	v.SetDefault("tracing.exporter", "")
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.service_name", "dbrequest")
	v.SetDefault("pool.enabled", false)
	v.SetDefault("pool.initial_cap", 0)
	v.SetDefault("pool.max_idle", 4)
	v.SetDefault("pool.max_cap", 16)
	v.SetDefault("pool.idle_timeout", time.Minute)
	v.SetDefault("cache.kind", "")
	v.SetDefault("cache.addr", "localhost:6379")
	v.SetDefault("cache.size", 1024)
	v.SetDefault("cache.ttl", time.Minute)
}

// 命令行上可以覆盖的配置
var flagKeys = []string{"driver", "dsn", "table", "dialect"}

// Load 读取配置文件（可选）和 DBREQUEST_ 开头的环境变量。
// 优先级：命令行 > 环境变量 > 配置文件 > 默认值
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if flags != nil {
		for _, key := range flagKeys {
			if f := flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: 读取 %s 失败: %w", path, err)
		}
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: 解析失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置，顺便补上 Dialect
func (c *Config) Validate() error {
	if c.Table == "" {
		return fmt.Errorf("%w: 没有指定 table", ErrInvalidConfig)
	}
	switch c.Driver {
	case "mysql":
		if _, err := mysql.ParseDSN(c.DSN); err != nil {
			return fmt.Errorf("%w: mysql dsn: %w", ErrInvalidConfig, err)
		}
	case "postgres":
		if strings.HasPrefix(c.DSN, "postgres://") || strings.HasPrefix(c.DSN, "postgresql://") {
			if _, err := pq.ParseURL(c.DSN); err != nil {
				return fmt.Errorf("%w: postgres dsn: %w", ErrInvalidConfig, err)
			}
		}
	case "sqlite3":
	default:
		return fmt.Errorf("%w: 未知驱动 %q", ErrInvalidConfig, c.Driver)
	}
	if c.Dialect == "" {
		c.Dialect = c.Driver
	}
	if _, ok := sqlbackend.ParseDialect(c.Dialect); !ok {
		return fmt.Errorf("%w: 未知方言 %q", ErrInvalidConfig, c.Dialect)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: 未知日志格式 %q", ErrInvalidConfig, c.Log.Format)
	}
	switch c.Tracing.Exporter {
	case "", "jaeger", "zipkin":
	default:
		return fmt.Errorf("%w: 未知 exporter %q", ErrInvalidConfig, c.Tracing.Exporter)
	}
	switch c.Cache.Kind {
	case "", "local", "redis":
	case "lru":
		if c.Cache.Size <= 0 {
			return fmt.Errorf("%w: lru 缓存大小必须大于 0", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: 未知缓存 %q", ErrInvalidConfig, c.Cache.Kind)
	}
	return nil
}
