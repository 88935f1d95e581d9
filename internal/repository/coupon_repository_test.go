package repository

import (
	"testing"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func setupCouponRepositoryTest(t *testing.T) (*GormCouponRepository, *GormCouponUsageRepository, *gorm.DB) {
	t.Helper()
	db := openRepositoryTestDB(t, &models.Coupon{}, &models.CouponUsage{})
	return NewCouponRepository(db), NewCouponUsageRepository(db), db
}

func createTestCoupon(t *testing.T, repo *GormCouponRepository, code string, usageLimit int) *models.Coupon {
	t.Helper()
	coupon := &models.Coupon{
		Code:       code,
		Type:       constants.CouponTypeFlat,
		Discount:   models.MustMoney("10"),
		UsageLimit: usageLimit,
		IsActive:   true,
	}
	if err := repo.Create(coupon); err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	return coupon
}

func TestIncrementUsedCountStopsAtLimit(t *testing.T) {
	repo, _, _ := setupCouponRepositoryTest(t)
	coupon := createTestCoupon(t, repo, "TWICE", 2)

	for i := 0; i < 2; i++ {
		ok, err := repo.IncrementUsedCount(coupon.ID)
		if err != nil {
			t.Fatalf("increment failed: %v", err)
		}
		if !ok {
			t.Fatalf("increment %d want ok", i+1)
		}
	}
	ok, err := repo.IncrementUsedCount(coupon.ID)
	if err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	if ok {
		t.Fatalf("increment beyond limit want rejected")
	}

	reloaded, err := repo.GetByID(coupon.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload coupon failed: %v", err)
	}
	if reloaded.UsedCount != 2 {
		t.Fatalf("used count want 2 got %d", reloaded.UsedCount)
	}
}

func TestIncrementUsedCountUnlimited(t *testing.T) {
	repo, _, _ := setupCouponRepositoryTest(t)
	coupon := createTestCoupon(t, repo, "FOREVER", 0)
	for i := 0; i < 5; i++ {
		ok, err := repo.IncrementUsedCount(coupon.ID)
		if err != nil || !ok {
			t.Fatalf("increment unlimited want ok got ok=%v err=%v", ok, err)
		}
	}
	if err := repo.SetUsedCount(coupon.ID, 1); err != nil {
		t.Fatalf("set used count failed: %v", err)
	}
	reloaded, _ := repo.GetByID(coupon.ID)
	if reloaded.UsedCount != 1 {
		t.Fatalf("used count want 1 got %d", reloaded.UsedCount)
	}
}

func TestCouponUsageUniquePerUser(t *testing.T) {
	repo, usageRepo, _ := setupCouponRepositoryTest(t)
	coupon := createTestCoupon(t, repo, "ONCE", 0)

	now := time.Now()
	if err := usageRepo.Create(&models.CouponUsage{CouponID: coupon.ID, UserID: 7, UsedAt: now}); err != nil {
		t.Fatalf("create usage failed: %v", err)
	}
	err := usageRepo.Create(&models.CouponUsage{CouponID: coupon.ID, UserID: 7, UsedAt: now})
	if err == nil {
		t.Fatalf("duplicate usage want error")
	}
	if !IsUniqueViolation(err) {
		t.Fatalf("duplicate usage want unique violation got %v", err)
	}
	if err := usageRepo.Create(&models.CouponUsage{CouponID: coupon.ID, UserID: 8, UsedAt: now}); err != nil {
		t.Fatalf("other user usage failed: %v", err)
	}

	count, err := usageRepo.CountByCoupon(coupon.ID)
	if err != nil {
		t.Fatalf("count usages failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("usage count want 2 got %d", count)
	}

	usage, err := usageRepo.GetByCouponAndUser(coupon.ID, 7)
	if err != nil || usage == nil {
		t.Fatalf("get usage failed: usage=%v err=%v", usage, err)
	}
	missing, err := usageRepo.GetByCouponAndUser(coupon.ID, 9)
	if err != nil || missing != nil {
		t.Fatalf("missing usage want nil got %v err=%v", missing, err)
	}

	deleted, err := usageRepo.DeleteByCoupon(coupon.ID)
	if err != nil {
		t.Fatalf("delete usages failed: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("deleted usages want 2 got %d", deleted)
	}
}

func TestCouponListFilters(t *testing.T) {
	repo, _, _ := setupCouponRepositoryTest(t)
	now := time.Now()
	past := now.Add(-time.Hour)

	scoped := createTestCoupon(t, repo, "SCOPED", 0)
	scoped.ApplicableProducts = datatypes.NewJSONSlice([]uint{3, 4})
	if err := repo.Update(scoped); err != nil {
		t.Fatalf("update coupon failed: %v", err)
	}
	expired := createTestCoupon(t, repo, "GONE", 0)
	expired.ExpiresAt = &past
	if err := repo.Update(expired); err != nil {
		t.Fatalf("update coupon failed: %v", err)
	}
	inactive := createTestCoupon(t, repo, "PAUSED", 0)
	inactive.IsActive = false
	if err := repo.Update(inactive); err != nil {
		t.Fatalf("update coupon failed: %v", err)
	}

	items, total, err := repo.List(CouponListFilter{ProductID: 4})
	if err != nil {
		t.Fatalf("list by product failed: %v", err)
	}
	if total != 1 || items[0].Code != "SCOPED" {
		t.Fatalf("product filter want SCOPED got total=%d", total)
	}

	yes := true
	_, total, err = repo.List(CouponListFilter{Expired: &yes, Now: now})
	if err != nil {
		t.Fatalf("list expired failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("expired filter want 1 got %d", total)
	}

	no := false
	_, total, err = repo.List(CouponListFilter{IsActive: &no})
	if err != nil {
		t.Fatalf("list inactive failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("inactive filter want 1 got %d", total)
	}

	_, total, err = repo.List(CouponListFilter{Code: "sco"})
	if err != nil {
		t.Fatalf("list by code failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("code filter want 1 got %d", total)
	}
}

func TestCouponGetByCodeExactMatch(t *testing.T) {
	repo, _, _ := setupCouponRepositoryTest(t)
	createTestCoupon(t, repo, "SAVE10", 0)

	found, err := repo.GetByCode("SAVE10")
	if err != nil || found == nil {
		t.Fatalf("get by code failed: found=%v err=%v", found, err)
	}
	missing, err := repo.GetByCode("SAVE1")
	if err != nil || missing != nil {
		t.Fatalf("prefix lookup want nil got %v err=%v", missing, err)
	}
}
