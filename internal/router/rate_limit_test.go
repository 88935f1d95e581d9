package router

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestKeyByIPAndJSONField(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth", strings.NewReader(`{"email":" Test@Example.com "}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.RemoteAddr = "1.2.3.4:5678"

	key := KeyByIPAndJSONField("email")(c)
	if key != "test@example.com|1.2.3.4" {
		t.Fatalf("key want test@example.com|1.2.3.4 got %s", key)
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		t.Fatalf("read body after key extraction failed: %v", err)
	}
	if !strings.Contains(string(body), "Test@Example.com") {
		t.Fatalf("request body should be restored after reading field")
	}
}

func TestRateLimitMiddlewareMemoryBackend(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter := NewRateLimiter(nil)
	rule := RateLimitRule{Prefix: "sf:rate:coupon", WindowSeconds: 60, MaxRequests: 2, MessageKey: "error.coupon_too_many"}
	r := gin.New()
	r.POST("/validate", RateLimitMiddleware(limiter, rule, KeyByIP), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.POST("/apply", RateLimitMiddleware(limiter, rule, KeyByIP), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	send := func(path, ip string) string {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.RemoteAddr = ip + ":1000"
		req.Header.Set("X-Locale", "en-US")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Body.String()
	}

	if body := send("/validate", "9.9.9.9"); !strings.Contains(body, `"ok":true`) {
		t.Fatalf("first request should pass, got %s", body)
	}
	if body := send("/apply", "9.9.9.9"); !strings.Contains(body, `"ok":true`) {
		t.Fatalf("second request should pass, got %s", body)
	}
	body := send("/validate", "9.9.9.9")
	if !strings.Contains(body, `"status_code":429`) || !strings.Contains(body, "please retry in") {
		t.Fatalf("third request should be limited across routes sharing the rule, got %s", body)
	}
	if body := send("/validate", "8.8.8.8"); !strings.Contains(body, `"ok":true`) {
		t.Fatalf("other ip should pass, got %s", body)
	}
}

func TestRateLimitMiddlewareDisabledRule(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimitMiddleware(nil, RateLimitRule{WindowSeconds: 60, MaxRequests: 1}, KeyByIP))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if !strings.Contains(w.Body.String(), `"ok":true`) {
			t.Fatalf("nil limiter should pass through, got %s", w.Body.String())
		}
	}
}

func TestKeyByUserOrIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/coupons/apply", nil)
	c.Request.RemoteAddr = "5.6.7.8:1234"

	if key := KeyByUserOrIP(c); key != "ip:5.6.7.8" {
		t.Fatalf("guest key want ip:5.6.7.8 got %s", key)
	}
	c.Set(userIDContextKey, uint(42))
	if key := KeyByUserOrIP(c); key != "user:42" {
		t.Fatalf("user key want user:42 got %s", key)
	}
}

func TestMemoryLimiterBlockWindow(t *testing.T) {
	now := time.Unix(1700000000, 0)
	limiter := newMemoryLimiter(func() time.Time { return now })
	rule := RateLimitRule{WindowSeconds: 10, MaxRequests: 1, BlockSeconds: 30}
	ctx := context.Background()

	if v, _ := limiter.Hit(ctx, "k", rule); !v.Allowed {
		t.Fatalf("first hit should pass")
	}
	if v, _ := limiter.Hit(ctx, "k", rule); v.Allowed || v.Wait != 30 {
		t.Fatalf("second hit want blocked 30s got %+v", v)
	}
	now = now.Add(20 * time.Second)
	if v, _ := limiter.Hit(ctx, "k", rule); v.Allowed || v.Wait != 10 {
		t.Fatalf("still blocked want wait 10 got %+v", v)
	}
	now = now.Add(11 * time.Second)
	if v, _ := limiter.Hit(ctx, "k", rule); !v.Allowed {
		t.Fatalf("block expired, hit should pass got %+v", v)
	}
}

func TestMemoryLimiterWindowReset(t *testing.T) {
	now := time.Unix(1700000000, 0)
	limiter := newMemoryLimiter(func() time.Time { return now })
	rule := RateLimitRule{WindowSeconds: 10, MaxRequests: 2}
	ctx := context.Background()

	limiter.Hit(ctx, "k", rule)
	limiter.Hit(ctx, "k", rule)
	now = now.Add(4 * time.Second)
	if v, _ := limiter.Hit(ctx, "k", rule); v.Allowed || v.Wait != 6 {
		t.Fatalf("over limit want wait 6 got %+v", v)
	}
	now = now.Add(6 * time.Second)
	if v, _ := limiter.Hit(ctx, "k", rule); !v.Allowed {
		t.Fatalf("new window should pass got %+v", v)
	}
}
