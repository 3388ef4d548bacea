// Package redis 提供基于 Redis 的本地状态存储
// 用于多个工作区进程共享同一份设置的部署方式
package redis

import (
	"context"
	stderrors "errors"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"z-novel-workspace/internal/config"
)

var tracer = otel.Tracer("workspace.state.redis")

// dialCheckTimeout 启动时连通性检查的超时
const dialCheckTimeout = 5 * time.Second

// Client 状态记录使用的 Redis 连接
type Client struct {
	rdb *redis.Client
	db  int
}

// NewClient 按配置建立连接并确认 Redis 可达
func NewClient(cfg *config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	c := NewClientFrom(rdb, cfg)
	ctx, cancel := context.WithTimeout(context.Background(), dialCheckTimeout)
	defer cancel()
	if err := c.HealthCheck(ctx); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return c, nil
}

// NewClientFrom 包装已有的 go-redis 客户端
func NewClientFrom(rdb *redis.Client, cfg *config.RedisConfig) *Client {
	c := &Client{rdb: rdb}
	if cfg != nil {
		c.db = cfg.DB
	}
	return c
}

// Close 关闭连接池
func (c *Client) Close() error {
	return c.rdb.Close()
}

// HealthCheck 发送 PING
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.traced(ctx, "PING", func(ctx context.Context, span trace.Span) error {
		return c.rdb.Ping(ctx).Err()
	})
}

// Get 读取键值，键不存在时返回 redis.Nil
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	var out []byte
	err := c.traced(ctx, "GET", func(ctx context.Context, span trace.Span) error {
		span.SetAttributes(attribute.String("db.redis.key", key))
		var err error
		out, err = c.rdb.Get(ctx, key).Bytes()
		span.SetAttributes(attribute.Bool("db.redis.hit", err == nil))
		return err
	})
	return out, err
}

// Set 写入键值，expiration 为 0 表示不过期
func (c *Client) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	return c.traced(ctx, "SET", func(ctx context.Context, span trace.Span) error {
		span.SetAttributes(attribute.String("db.redis.key", key))
		return c.rdb.Set(ctx, key, value, expiration).Err()
	})
}

// Del 删除键
func (c *Client) Del(ctx context.Context, keys ...string) error {
	return c.traced(ctx, "DEL", func(ctx context.Context, span trace.Span) error {
		span.SetAttributes(attribute.Int("db.redis.key_count", len(keys)))
		return c.rdb.Del(ctx, keys...).Err()
	})
}

// traced 为单条命令建立 span；redis.Nil 不视为失败
func (c *Client) traced(ctx context.Context, cmd string, fn func(context.Context, trace.Span) error) error {
	ctx, span := tracer.Start(ctx, "redis."+cmd,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "redis"),
			attribute.Int("db.redis.database_index", c.db),
		))
	defer span.End()

	err := fn(ctx, span)
	if err != nil && !IsNil(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// IsNil 判断是否为键不存在
func IsNil(err error) bool {
	return stderrors.Is(err, redis.Nil)
}
