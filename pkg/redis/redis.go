package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/groovefund-tech/GrooveFund-v1-sub000/config"
)

// Client Redis 客户端封装
// 用于 Token 黑名单、接口限流、排行榜快照缓存与每月冻结副本
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── Token 黑名单 ──

const blacklistPrefix = "token:blacklist:"

// BlacklistToken 将 JWT ID 加入黑名单，TTL 与 Token 剩余有效期一致
func (c *Client) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // Token 已过期，无需加入黑名单
	}
	return c.rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}

// IsBlacklisted 检查 JWT ID 是否在黑名单中
func (c *Client) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ── 接口限流 ──

// CheckRateLimit 固定窗口限流：窗口内第 limit+1 个请求被拒绝。
// 返回 true 表示放行。
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		// 首个请求设置窗口过期时间
		if err := c.rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return n <= int64(limit), nil
}

// ── 排行榜快照 ──

const (
	leaderboardCacheKey  = "leaderboard:current"
	leaderboardFrozenKey = "leaderboard:frozen:" // + YYYY-MM
)

// CacheLeaderboard 缓存当前排行榜快照（JSON 序列化由调用方完成）
func (c *Client) CacheLeaderboard(ctx context.Context, payload []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, leaderboardCacheKey, payload, ttl).Err()
}

// GetCachedLeaderboard 读取排行榜快照缓存；不存在时返回 nil, nil
func (c *Client) GetCachedLeaderboard(ctx context.Context) ([]byte, error) {
	b, err := c.rdb.Get(ctx, leaderboardCacheKey).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// InvalidateLeaderboard 清除排行榜快照缓存（积分变动后调用）
func (c *Client) InvalidateLeaderboard(ctx context.Context) error {
	return c.rdb.Del(ctx, leaderboardCacheKey).Err()
}

// FreezeLeaderboard 写入指定期（YYYY-MM）的排行榜冻结副本，永不过期。
// 同一期重复冻结直接覆盖，外部调度器保证每月只调用一次。
func (c *Client) FreezeLeaderboard(ctx context.Context, period string, payload []byte) error {
	return c.rdb.Set(ctx, leaderboardFrozenKey+period, payload, 0).Err()
}

// GetFrozenLeaderboard 读取指定期的冻结副本；不存在时返回 nil, nil
func (c *Client) GetFrozenLeaderboard(ctx context.Context, period string) ([]byte, error) {
	b, err := c.rdb.Get(ctx, leaderboardFrozenKey+period).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
