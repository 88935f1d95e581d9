package service

import (
	"testing"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBannerServiceTest(t *testing.T) (*BannerService, *CouponAdminService) {
	t.Helper()
	db := openServiceTestDB(t, &models.Banner{}, &models.Coupon{}, &models.CouponUsage{})
	couponRepo := repository.NewCouponRepository(db)
	admin := NewCouponAdminService(couponRepo, repository.NewCouponUsageRepository(db), nil)
	return NewBannerService(repository.NewBannerRepository(db), couponRepo), admin
}

func TestBannerCouponLink(t *testing.T) {
	svc, admin := setupBannerServiceTest(t)
	mustCreateCoupon(t, admin, CouponInput{Code: "CART10", Type: constants.CouponTypeFlat, Discount: models.MustMoney("10")})

	banner, err := svc.Create(BannerInput{
		Name:      "cart promo",
		Position:  "CART",
		Image:     "/uploads/cart.png",
		LinkType:  "coupon",
		LinkValue: "cart10",
	})
	require.NoError(t, err)
	assert.Equal(t, constants.BannerPositionCart, banner.Position)
	assert.Equal(t, "CART10", banner.CouponCode)
	assert.Equal(t, "CART10", banner.LinkValue)
	assert.True(t, banner.IsActive)

	_, err = svc.Create(BannerInput{Name: "ghost", Image: "/x.png", CouponCode: "NOPE"})
	assert.ErrorIs(t, err, ErrCouponNotFound)

	_, err = svc.Create(BannerInput{Name: "mismatch", Image: "/x.png", LinkType: "coupon", LinkValue: "A", CouponCode: "CART10"})
	assert.ErrorIs(t, err, ErrInvalidBanner)

	_, err = svc.Create(BannerInput{Name: "sidebar", Position: "sidebar", Image: "/x.png"})
	assert.ErrorIs(t, err, ErrInvalidBanner)

	_, err = svc.Create(BannerInput{Name: "link", Image: "/x.png", LinkType: "external"})
	assert.ErrorIs(t, err, ErrInvalidBanner)
}

func TestBannerPublicHidesDeadCoupons(t *testing.T) {
	svc, admin := setupBannerServiceTest(t)
	live := mustCreateCoupon(t, admin, CouponInput{Code: "LIVE", Type: constants.CouponTypeFlat, Discount: models.MustMoney("5")})
	expired := time.Now().Add(-time.Hour)
	mustCreateCoupon(t, admin, CouponInput{Code: "OLD", Type: constants.CouponTypeFlat, Discount: models.MustMoney("5"), ExpiresAt: &expired})
	off := false
	mustCreateCoupon(t, admin, CouponInput{Code: "OFF", Type: constants.CouponTypeFlat, Discount: models.MustMoney("5"), IsActive: &off})

	for i, code := range []string{"", "LIVE", "OLD", "OFF"} {
		_, err := svc.Create(BannerInput{Name: "hero", Image: "/hero.png", CouponCode: code, SortOrder: 10 - i})
		require.NoError(t, err)
	}
	future := time.Now().Add(time.Hour)
	_, err := svc.Create(BannerInput{Name: "later", Image: "/later.png", StartAt: &future})
	require.NoError(t, err)

	banners, err := svc.ListPublic(constants.BannerPositionHomeHero, 10)
	require.NoError(t, err)
	require.Len(t, banners, 2)
	assert.Equal(t, "", banners[0].CouponCode)
	assert.Equal(t, live.Code, banners[1].CouponCode)

	unknown, err := svc.ListPublic("sidebar", 10)
	require.NoError(t, err)
	assert.Empty(t, unknown)
}

func TestBannerUpdateAndDelete(t *testing.T) {
	svc, _ := setupBannerServiceTest(t)
	banner, err := svc.Create(BannerInput{Name: "hero", Image: "/a.png", TitleJSON: map[string]interface{}{"en-US": " Sale ", "fr": "x"}})
	require.NoError(t, err)
	assert.Equal(t, "Sale", banner.TitleJSON["en-US"])
	_, hasFrench := banner.TitleJSON["fr"]
	assert.False(t, hasFrench)

	start := time.Now()
	end := start.Add(-time.Minute)
	_, err = svc.Update(banner.ID, BannerInput{Name: "hero", Image: "/a.png", StartAt: &start, EndAt: &end})
	assert.ErrorIs(t, err, ErrInvalidBanner)

	off := false
	updated, err := svc.Update(banner.ID, BannerInput{Name: "hero v2", Image: "/b.png", IsActive: &off})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, constants.BannerLinkTypeNone, updated.LinkType)

	require.NoError(t, svc.Delete(banner.ID))
	assert.ErrorIs(t, svc.Delete(banner.ID), ErrBannerNotFound)
	_, err = svc.Update(999, BannerInput{Name: "x", Image: "/x.png"})
	assert.ErrorIs(t, err, ErrBannerNotFound)
}
