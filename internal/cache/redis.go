package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ICMM2025/icmm-server/internal/config"

	"github.com/redis/go-redis/v9"
)

// Cache Redis 缓存封装；未启用时所有读写为空操作
type Cache struct {
	client *redis.Client
	prefix string
}

// New 初始化 Redis 客户端
func New(cfg *config.RedisConfig) *Cache {
	if cfg == nil || !cfg.Enabled {
		return &Cache{}
	}
	addr := strings.TrimSpace(cfg.Host)
	if addr == "" {
		addr = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		prefix = "icmm"
	}
	return &Cache{
		client: redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", addr, port),
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		prefix: prefix,
	}
}

// NewWithClient 使用已有客户端（测试或共享连接）
func NewWithClient(client *redis.Client, prefix string) *Cache {
	return &Cache{client: client, prefix: prefix}
}

// Enabled 判断缓存是否启用
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// Client 获取 Redis 客户端
func (c *Cache) Client() *redis.Client {
	if !c.Enabled() {
		return nil
	}
	return c.client
}

// Key 拼接带前缀的键
func (c *Cache) Key(key string) string {
	trimmed := strings.TrimSpace(key)
	if c == nil || c.prefix == "" {
		return trimmed
	}
	if trimmed == "" {
		return c.prefix
	}
	return c.prefix + ":" + trimmed
}

// GetJSON 获取 JSON 缓存
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	val, err := c.client.Get(ctx, c.Key(key)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON 写入 JSON 缓存
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.Key(key), payload, ttl).Err()
}

// Del 删除缓存
func (c *Cache) Del(ctx context.Context, key string) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Del(ctx, c.Key(key)).Err()
}

// Close 关闭连接
func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}
