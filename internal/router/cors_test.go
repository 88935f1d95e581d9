package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/storefront-next/internal/config"

	"github.com/gin-gonic/gin"
)

func TestResolveAllowedOrigin(t *testing.T) {
	cases := []struct {
		name        string
		origin      string
		allowed     []string
		credentials bool
		want        string
	}{
		{name: "wildcard", origin: "https://shop.example", allowed: []string{"*"}, want: "*"},
		{name: "wildcard with credentials echoes", origin: "https://shop.example", allowed: []string{"*"}, credentials: true, want: "https://shop.example"},
		{name: "wildcard with credentials no origin", allowed: []string{"*"}, credentials: true, want: "*"},
		{name: "listed", origin: "https://B.example", allowed: []string{"https://a.example", "https://b.example"}, want: "https://B.example"},
		{name: "unlisted", origin: "https://x.example", allowed: []string{"https://a.example"}, want: ""},
		{name: "no origin", allowed: []string{"https://a.example"}, want: ""},
	}
	for _, tc := range cases {
		if got := resolveAllowedOrigin(tc.origin, tc.allowed, tc.credentials); got != tc.want {
			t.Fatalf("%s: want %q got %q", tc.name, tc.want, got)
		}
	}
}

func TestCORSMiddlewarePreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware(config.CORSConfig{AllowedOrigins: []string{"https://shop.example"}, MaxAge: 600}))
	r.POST("/api/v1/coupons/validate", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/coupons/validate", nil)
	req.Header.Set("Origin", "https://shop.example")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight want 204 got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://shop.example" {
		t.Fatalf("allow origin want echo got %q", got)
	}
	if got := w.Header().Get("Access-Control-Max-Age"); got != "600" {
		t.Fatalf("max age want 600 got %q", got)
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Headers"), "X-Locale") {
		t.Fatalf("default headers should include X-Locale")
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, getRequestID(c))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)
	if w.Header().Get(requestIDHeader) != "req-123" || w.Body.String() != "req-123" {
		t.Fatalf("request id want req-123 got header=%q body=%q", w.Header().Get(requestIDHeader), w.Body.String())
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, strings.Repeat("x", maxRequestIDLen+1))
	r.ServeHTTP(w, req)
	generated := w.Header().Get(requestIDHeader)
	if generated == "" || len(generated) > maxRequestIDLen || generated != w.Body.String() {
		t.Fatalf("oversized id should be regenerated, got %q", generated)
	}
}
