package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/i18n"
	"github.com/storefront-next/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitKeyFunc 从请求中提取限流维度（IP、用户、邮箱）
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 固定窗口限流；BlockSeconds > 0 时超限后整段封禁
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	BlockSeconds  int
	MessageKey    string
}

func (r RateLimitRule) enabled() bool {
	return r.WindowSeconds > 0 && r.MaxRequests > 0
}

// rateVerdict 一次计数的结果，Wait 为被拒绝时需等待的秒数
type rateVerdict struct {
	Allowed bool
	Wait    int
}

// RateLimiter 计数后端：Redis 多实例共享，未配置 Redis 时退回进程内计数
type RateLimiter interface {
	Hit(ctx context.Context, key string, rule RateLimitRule) (rateVerdict, error)
}

// NewRateLimiter client 为 nil 时使用进程内计数
func NewRateLimiter(client *redis.Client) RateLimiter {
	if client == nil {
		return newMemoryLimiter(time.Now)
	}
	return &redisLimiter{client: client}
}

// KEYS[1] 计数，KEYS[2] 封禁标记；ARGV 为窗口、上限、封禁秒数。返回 {允许, 等待秒数}
var rateLimitScript = redis.NewScript(`
local blocked = redis.call("TTL", KEYS[2])
if blocked > 0 then
	return {0, blocked}
end
local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
if count <= tonumber(ARGV[2]) then
	return {1, 0}
end
if tonumber(ARGV[3]) > 0 then
	redis.call("SET", KEYS[2], "1", "EX", ARGV[3])
	redis.call("DEL", KEYS[1])
	return {0, tonumber(ARGV[3])}
end
return {0, redis.call("TTL", KEYS[1])}
`)

type redisLimiter struct {
	client *redis.Client
}

func (l *redisLimiter) Hit(ctx context.Context, key string, rule RateLimitRule) (rateVerdict, error) {
	values, err := rateLimitScript.Run(ctx, l.client, []string{key, key + ":blocked"},
		rule.WindowSeconds, rule.MaxRequests, rule.BlockSeconds).Int64Slice()
	if err != nil {
		return rateVerdict{}, err
	}
	if len(values) != 2 {
		return rateVerdict{}, errors.New("unexpected rate limit script reply")
	}
	return rateVerdict{Allowed: values[0] == 1, Wait: int(values[1])}, nil
}

type memoryWindow struct {
	count        int
	resetAt      time.Time
	blockedUntil time.Time
}

// memoryLimiter 与 Lua 脚本同语义的单进程实现
type memoryLimiter struct {
	mu      sync.Mutex
	now     func() time.Time
	windows map[string]*memoryWindow
}

const memoryLimiterSweepSize = 10000

func newMemoryLimiter(now func() time.Time) *memoryLimiter {
	return &memoryLimiter{now: now, windows: make(map[string]*memoryWindow)}
}

func (l *memoryLimiter) Hit(_ context.Context, key string, rule RateLimitRule) (rateVerdict, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.windows) >= memoryLimiterSweepSize {
		l.sweep(now)
	}
	w := l.windows[key]
	if w == nil {
		w = &memoryWindow{}
		l.windows[key] = w
	}
	if now.Before(w.blockedUntil) {
		return rateVerdict{Wait: ceilSeconds(w.blockedUntil.Sub(now))}, nil
	}
	if !now.Before(w.resetAt) {
		w.count = 0
		w.resetAt = now.Add(time.Duration(rule.WindowSeconds) * time.Second)
	}
	w.count++
	if w.count <= rule.MaxRequests {
		return rateVerdict{Allowed: true}, nil
	}
	if rule.BlockSeconds > 0 {
		w.blockedUntil = now.Add(time.Duration(rule.BlockSeconds) * time.Second)
		w.count = 0
		w.resetAt = time.Time{}
		return rateVerdict{Wait: rule.BlockSeconds}, nil
	}
	return rateVerdict{Wait: ceilSeconds(w.resetAt.Sub(now))}, nil
}

func (l *memoryLimiter) sweep(now time.Time) {
	for key, w := range l.windows {
		if !now.Before(w.resetAt) && !now.Before(w.blockedUntil) {
			delete(l.windows, key)
		}
	}
}

func ceilSeconds(d time.Duration) int {
	return int((d + time.Second - 1) / time.Second)
}

// RateLimitMiddleware 超限返回 429 与需等待秒数；计数后端故障时拒绝请求
func RateLimitMiddleware(limiter RateLimiter, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || !rule.enabled() {
			c.Next()
			return
		}
		key := ""
		if keyFunc != nil {
			key = strings.TrimSpace(keyFunc(c))
		}
		if key == "" {
			key = c.ClientIP()
		}
		if rule.Prefix != "" {
			key = rule.Prefix + ":" + key
		}

		verdict, err := limiter.Hit(c.Request.Context(), key, rule)
		if err != nil {
			logger.Warnw("rate_limit_backend_failed", "key", key, "error", err)
			response.Error(c, response.CodeInternal, i18n.T(i18n.ResolveLocale(c), "error.rate_limit_unavailable"))
			c.Abort()
			return
		}
		if verdict.Allowed {
			c.Next()
			return
		}

		wait := max(verdict.Wait, 1)
		msgKey := rule.MessageKey
		if msgKey == "" {
			msgKey = "error.rate_limited"
		}
		logger.Infow("rate_limit_rejected", "key", key, "wait_seconds", wait)
		response.Error(c, response.CodeTooManyRequests, i18n.Sprintf(i18n.ResolveLocale(c), msgKey, wait))
		c.Abort()
	}
}

// KeyByIP 按客户端 IP
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByUserOrIP 已登录按用户，游客按 IP
func KeyByUserOrIP(c *gin.Context) string {
	if userID := c.GetUint(userIDContextKey); userID != 0 {
		return "user:" + strconv.FormatUint(uint64(userID), 10)
	}
	return "ip:" + c.ClientIP()
}

// KeyByIPAndJSONField 请求体中某个字段（小写）加 IP，字段缺失时只用 IP
func KeyByIPAndJSONField(field string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		value := strings.ToLower(peekJSONString(c, field))
		if value == "" {
			return c.ClientIP()
		}
		return value + "|" + c.ClientIP()
	}
}

// peekJSONString 读取请求体中的字符串字段，读完后还原 Body 供后续绑定
func peekJSONString(c *gin.Context, field string) string {
	if c == nil || c.Request == nil || c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil || len(body) == 0 {
		return ""
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	var text string
	if err := json.Unmarshal(payload[field], &text); err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}
