package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/storefront-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

func newTestContext(target string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", target, nil)
	c.Request.Header.Set("X-Locale", "en-US")
	return c, w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response failed: %v body=%s", err, w.Body.String())
	}
	return resp
}

func TestNormalizePagination(t *testing.T) {
	cases := []struct {
		page, size         int
		wantPage, wantSize int
	}{
		{page: 0, size: 0, wantPage: 1, wantSize: defaultPageSize},
		{page: 3, size: 50, wantPage: 3, wantSize: 50},
		{page: -2, size: 500, wantPage: 1, wantSize: maxPageSize},
	}
	for _, tc := range cases {
		page, size := NormalizePagination(tc.page, tc.size)
		if page != tc.wantPage || size != tc.wantSize {
			t.Fatalf("normalize(%d,%d) want (%d,%d) got (%d,%d)", tc.page, tc.size, tc.wantPage, tc.wantSize, page, size)
		}
	}

	c, _ := newTestContext("/?page=abc&page_size=7")
	if page, size := ReadPagination(c); page != 1 || size != 7 {
		t.Fatalf("read pagination want (1,7) got (%d,%d)", page, size)
	}

	p := BuildPagination(2, 20, 41)
	if p.TotalPage != 3 {
		t.Fatalf("total page want 3 got %d", p.TotalPage)
	}
}

func TestParseTimeNullable(t *testing.T) {
	if got, err := ParseTimeNullable("  "); err != nil || got != nil {
		t.Fatalf("blank want nil got %v err=%v", got, err)
	}
	got, err := ParseTimeNullable("2026-03-01")
	if err != nil || got == nil || !got.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("date-only parse failed: %v err=%v", got, err)
	}
	if _, err := ParseTimeNullable("2026-03-01T10:00:00Z"); err != nil {
		t.Fatalf("rfc3339 parse failed: %v", err)
	}
	if _, err := ParseTimeNullable("yesterday"); err == nil {
		t.Fatalf("invalid time should fail")
	}
}

func TestParsePathUint(t *testing.T) {
	c, w := newTestContext("/coupons/0")
	c.Params = gin.Params{{Key: "id", Value: "0"}}
	if _, ok := ParsePathUint(c, "id"); ok {
		t.Fatalf("zero id should be rejected")
	}
	if resp := decodeEnvelope(t, w); resp.StatusCode != response.CodeBadRequest {
		t.Fatalf("zero id want %d got %d", response.CodeBadRequest, resp.StatusCode)
	}

	c, _ = newTestContext("/coupons/42")
	c.Params = gin.Params{{Key: "id", Value: "42"}}
	if id, ok := ParsePathUint(c, "id"); !ok || id != 42 {
		t.Fatalf("want 42 got %d ok=%v", id, ok)
	}

	c, _ = newTestContext("/?active=yes")
	if _, err := ParseQueryBool(c, "active"); err == nil {
		t.Fatalf("bad bool should fail")
	}
	c, _ = newTestContext("/?active=true&category_id=5")
	if active, err := ParseQueryBool(c, "active"); err != nil || active == nil || !*active {
		t.Fatalf("active want true got %v err=%v", active, err)
	}
	if id, err := ParseQueryUint(c, "category_id"); err != nil || id != 5 {
		t.Fatalf("category_id want 5 got %d err=%v", id, err)
	}
}

func TestRespondMapped(t *testing.T) {
	errKnown := errors.New("known")
	rules := []ErrorRule{{Target: errKnown, Code: response.CodeUnauthorized, Key: "error.unauthorized"}}

	c, w := newTestContext("/")
	RespondMapped(c, fmt.Errorf("wrap: %w", errKnown), rules, response.CodeInternal, "error.bad_request")
	resp := decodeEnvelope(t, w)
	if resp.StatusCode != response.CodeUnauthorized || resp.Msg != "Not signed in or session expired" {
		t.Fatalf("mapped error want 401 got %d (%s)", resp.StatusCode, resp.Msg)
	}

	c, w = newTestContext("/")
	c.Set("request_id", "req-1")
	RespondMapped(c, errors.New("boom"), rules, response.CodeInternal, "error.bad_request")
	resp = decodeEnvelope(t, w)
	if resp.StatusCode != response.CodeInternal || resp.RequestID != "req-1" {
		t.Fatalf("fallback want 500 with request id got %+v", resp)
	}

	merged := ConcatRules(rules, []ErrorRule{{Target: errKnown, Code: response.CodeConflict}})
	if len(merged) != 2 || merged[0].Code != response.CodeUnauthorized {
		t.Fatalf("concat should keep order: %+v", merged)
	}
}

func TestUserIDFromContext(t *testing.T) {
	c, w := newTestContext("/")
	if _, ok := UserID(c); ok {
		t.Fatalf("missing user id should fail")
	}
	if resp := decodeEnvelope(t, w); resp.StatusCode != response.CodeUnauthorized {
		t.Fatalf("missing user id want 401 got %d", resp.StatusCode)
	}

	c, _ = newTestContext("/")
	c.Set(ContextKeyUserID, uint(7))
	if id, ok := UserID(c); !ok || id != 7 {
		t.Fatalf("user id want 7 got %d", id)
	}
	if OptionalUserID(c) != 7 {
		t.Fatalf("optional user id want 7")
	}

	c, _ = newTestContext("/")
	if OptionalUserID(c) != 0 {
		t.Fatalf("guest optional user id want 0")
	}
}
