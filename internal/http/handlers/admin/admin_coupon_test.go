package admin

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/provider"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type adminEnvelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

func setupAdminCouponTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:admin_coupon_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Coupon{}, &models.CouponUsage{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	couponRepo := repository.NewCouponRepository(db)
	usageRepo := repository.NewCouponUsageRepository(db)
	h := New(&provider.Container{
		CouponAdminService: service.NewCouponAdminService(couponRepo, usageRepo, nil),
	})

	r := gin.New()
	r.GET("/coupons", h.GetAdminCoupons)
	r.POST("/coupons", h.CreateCoupon)
	r.GET("/coupons/:id", h.GetAdminCoupon)
	r.PUT("/coupons/:id", h.UpdateCoupon)
	r.DELETE("/coupons/:id", h.DeleteCoupon)
	r.GET("/coupons/:id/usages", h.GetCouponUsages)
	r.POST("/coupons/:id/usages/purge", h.PurgeCouponUsages)
	r.POST("/coupons/:id/reconcile", h.ReconcileCoupon)
	return r, db
}

func doAdminRequest(t *testing.T, r *gin.Engine, method, path, body string) adminEnvelope {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Locale", "en-US")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected http status: want %d got %d", http.StatusOK, w.Code)
	}
	var env adminEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response failed: %v body=%s", err, w.Body.String())
	}
	return env
}

func createCouponVia(t *testing.T, r *gin.Engine, body string) models.Coupon {
	t.Helper()
	env := doAdminRequest(t, r, http.MethodPost, "/coupons", body)
	if env.StatusCode != 0 {
		t.Fatalf("create coupon want 0 got %d (%s)", env.StatusCode, env.Msg)
	}
	var coupon models.Coupon
	if err := json.Unmarshal(env.Data, &coupon); err != nil {
		t.Fatalf("decode coupon failed: %v", err)
	}
	return coupon
}

func TestCreateCouponDuplicateCode(t *testing.T) {
	r, _ := setupAdminCouponTest(t)

	coupon := createCouponVia(t, r, `{"code":" spring15 ","type":"percentage","discount":"15","max_discount":"40"}`)
	if coupon.Code != "SPRING15" || coupon.Type != "PERCENTAGE" || !coupon.IsActive {
		t.Fatalf("unexpected coupon: %+v", coupon)
	}

	env := doAdminRequest(t, r, http.MethodPost, "/coupons", `{"code":"Spring15","type":"FLAT","discount":"5"}`)
	if env.StatusCode != 409 {
		t.Fatalf("duplicate code want 409 got %d", env.StatusCode)
	}
	if env.Msg != "Coupon code already exists" {
		t.Fatalf("duplicate message want %q got %q", "Coupon code already exists", env.Msg)
	}

	env = doAdminRequest(t, r, http.MethodPost, "/coupons", `{"code":"HALF","type":"PERCENTAGE","discount":"120"}`)
	if env.StatusCode != 400 {
		t.Fatalf("percent over 100 want 400 got %d", env.StatusCode)
	}
	env = doAdminRequest(t, r, http.MethodPost, "/coupons", `{"code":"ODD","type":"BOGO","discount":"1"}`)
	if env.StatusCode != 400 {
		t.Fatalf("unknown type want 400 got %d", env.StatusCode)
	}
}

func TestUpdateCouponRenameConflict(t *testing.T) {
	r, _ := setupAdminCouponTest(t)

	first := createCouponVia(t, r, `{"code":"FIRST","type":"FLAT","discount":"5"}`)
	createCouponVia(t, r, `{"code":"SECOND","type":"FLAT","discount":"8"}`)

	path := fmt.Sprintf("/coupons/%d", first.ID)
	env := doAdminRequest(t, r, http.MethodPut, path, `{"code":"second","type":"FLAT","discount":"5"}`)
	if env.StatusCode != 409 {
		t.Fatalf("rename to existing code want 409 got %d", env.StatusCode)
	}

	// 保持原码只改其他字段
	env = doAdminRequest(t, r, http.MethodPut, path, `{"code":"FIRST","type":"FLAT","discount":"6","is_active":false}`)
	if env.StatusCode != 0 {
		t.Fatalf("update want 0 got %d (%s)", env.StatusCode, env.Msg)
	}
	var updated models.Coupon
	if err := json.Unmarshal(env.Data, &updated); err != nil {
		t.Fatalf("decode coupon failed: %v", err)
	}
	if !updated.Discount.Equal(models.MustMoney("6").Decimal) || updated.IsActive {
		t.Fatalf("unexpected updated coupon: %+v", updated)
	}

	env = doAdminRequest(t, r, http.MethodPut, "/coupons/999", `{"code":"GHOST","type":"FLAT","discount":"1"}`)
	if env.StatusCode != 404 {
		t.Fatalf("missing coupon want 404 got %d", env.StatusCode)
	}
}

func TestDeleteCouponRemovesUsages(t *testing.T) {
	r, db := setupAdminCouponTest(t)

	coupon := createCouponVia(t, r, `{"code":"BYE","type":"FLAT","discount":"3"}`)
	usages := []models.CouponUsage{
		{CouponID: coupon.ID, UserID: 1, UsedAt: time.Now()},
		{CouponID: coupon.ID, UserID: 2, UsedAt: time.Now()},
	}
	if err := db.Create(&usages).Error; err != nil {
		t.Fatalf("create usages failed: %v", err)
	}

	env := doAdminRequest(t, r, http.MethodPost, fmt.Sprintf("/coupons/%d/reconcile", coupon.ID), "")
	if env.StatusCode != 0 {
		t.Fatalf("reconcile want 0 got %d (%s)", env.StatusCode, env.Msg)
	}
	var result service.ReconcileResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode reconcile failed: %v", err)
	}
	if result.Queued || result.UsedCount != 2 {
		t.Fatalf("reconcile want used_count 2 got %+v", result)
	}

	env = doAdminRequest(t, r, http.MethodDelete, fmt.Sprintf("/coupons/%d", coupon.ID), "")
	if env.StatusCode != 0 {
		t.Fatalf("delete want 0 got %d (%s)", env.StatusCode, env.Msg)
	}
	var remaining int64
	if err := db.Model(&models.CouponUsage{}).Where("coupon_id = ?", coupon.ID).Count(&remaining).Error; err != nil {
		t.Fatalf("count usages failed: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("usages after delete want 0 got %d", remaining)
	}

	env = doAdminRequest(t, r, http.MethodGet, fmt.Sprintf("/coupons/%d", coupon.ID), "")
	if env.StatusCode != 404 {
		t.Fatalf("deleted coupon want 404 got %d", env.StatusCode)
	}
	env = doAdminRequest(t, r, http.MethodGet, "/coupons/abc", "")
	if env.StatusCode != 400 {
		t.Fatalf("bad id want 400 got %d", env.StatusCode)
	}
}

func TestPurgeCouponUsages(t *testing.T) {
	r, db := setupAdminCouponTest(t)

	coupon := createCouponVia(t, r, `{"code":"PURGE","type":"FLAT","discount":"2"}`)
	if err := db.Create(&models.CouponUsage{CouponID: coupon.ID, UserID: 9, UsedAt: time.Now()}).Error; err != nil {
		t.Fatalf("create usage failed: %v", err)
	}
	if err := db.Model(&models.Coupon{}).Where("id = ?", coupon.ID).Update("used_count", 1).Error; err != nil {
		t.Fatalf("set used_count failed: %v", err)
	}

	env := doAdminRequest(t, r, http.MethodGet, fmt.Sprintf("/coupons/%d/usages", coupon.ID), "")
	if env.StatusCode != 0 {
		t.Fatalf("list usages want 0 got %d (%s)", env.StatusCode, env.Msg)
	}

	env = doAdminRequest(t, r, http.MethodPost, fmt.Sprintf("/coupons/%d/usages/purge", coupon.ID), "")
	if env.StatusCode != 0 {
		t.Fatalf("purge want 0 got %d (%s)", env.StatusCode, env.Msg)
	}
	var purged struct {
		Deleted int64 `json:"deleted"`
	}
	if err := json.Unmarshal(env.Data, &purged); err != nil {
		t.Fatalf("decode purge failed: %v", err)
	}
	if purged.Deleted != 1 {
		t.Fatalf("purged want 1 got %d", purged.Deleted)
	}

	var reloaded models.Coupon
	if err := db.First(&reloaded, coupon.ID).Error; err != nil {
		t.Fatalf("reload coupon failed: %v", err)
	}
	if reloaded.UsedCount != 0 {
		t.Fatalf("used_count after purge want 0 got %d", reloaded.UsedCount)
	}

	env = doAdminRequest(t, r, http.MethodGet, "/coupons?code=PURGE", "")
	if env.StatusCode != 0 {
		t.Fatalf("list coupons want 0 got %d", env.StatusCode)
	}
	var listed []models.Coupon
	if err := json.Unmarshal(env.Data, &listed); err != nil {
		t.Fatalf("decode list failed: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != coupon.ID {
		t.Fatalf("list want coupon %d got %+v", coupon.ID, listed)
	}
}
