package cache

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 3 * time.Second

// store Redis 连接与键前缀；未启用时所有读写都是空操作，调用方回源数据库
type store struct {
	client *redis.Client
	prefix string
}

var current atomic.Pointer[store]

// InitRedis 初始化 Redis；连接探测失败时保持禁用并返回错误
func InitRedis(cfg *config.RedisConfig) error {
	current.Store(nil)
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(host, strconv.Itoa(port)),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return err
	}
	current.Store(&store{client: client, prefix: normalizePrefix(cfg.Prefix)})
	return nil
}

func normalizePrefix(raw string) string {
	if prefix := strings.Trim(strings.TrimSpace(raw), ":"); prefix != "" {
		return prefix
	}
	return constants.RedisPrefixDefault
}

// Enabled 判断缓存是否可用
func Enabled() bool {
	return current.Load() != nil
}

// Client 返回 Redis 客户端，未启用时为 nil（限流器据此退回进程内计数）
func Client() *redis.Client {
	if s := current.Load(); s != nil {
		return s.client
	}
	return nil
}

// Prefix 当前键前缀
func Prefix() string {
	if s := current.Load(); s != nil {
		return s.prefix
	}
	return constants.RedisPrefixDefault
}

func (s *store) key(parts ...string) string {
	return s.prefix + ":" + strings.Join(parts, ":")
}

// GetJSON 读取 JSON 缓存，未命中返回 false
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	s := current.Load()
	if s == nil {
		return false, nil
	}
	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		// 结构变更后的旧数据直接丢弃
		_ = s.client.Del(ctx, s.key(key)).Err()
		return false, nil
	}
	return true, nil
}

// SetJSON 写入 JSON 缓存
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	s := current.Load()
	if s == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(key), payload, ttl).Err()
}

// Del 删除缓存
func Del(ctx context.Context, keys ...string) error {
	s := current.Load()
	if s == nil || len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, key := range keys {
		full = append(full, s.key(key))
	}
	return s.client.Del(ctx, full...).Err()
}
