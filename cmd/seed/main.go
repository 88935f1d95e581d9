package main

import (
	"errors"
	"time"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"

	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, cfg.Database.PoolOptions()); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}
	if err := models.EnsureDefaultSettings(models.DB); err != nil {
		stdLog.Printf("Failed to init default settings: %v", err)
	}

	categoryIDs := seedCategories()
	productIDs := seedProducts(categoryIDs)
	seedCoupons(productIDs, categoryIDs)
	seedBanners()
	logger.Infow("seed_done", "categories", len(categoryIDs), "products", len(productIDs))
}

func seedCategories() map[string]uint {
	categories := []models.Category{
		{Slug: "electronics", IsActive: true, SortOrder: 30, NameJSON: models.JSON{"zh-CN": "电子产品", "zh-TW": "電子產品", "en-US": "Electronics"}},
		{Slug: "lifestyle", IsActive: true, SortOrder: 20, NameJSON: models.JSON{"zh-CN": "生活用品", "zh-TW": "生活用品", "en-US": "Lifestyle"}},
		{Slug: "accessories", IsActive: true, SortOrder: 10, NameJSON: models.JSON{"zh-CN": "数码配件", "zh-TW": "數碼配件", "en-US": "Accessories"}},
	}
	ids := make(map[string]uint, len(categories))
	for i := range categories {
		cat := categories[i]
		var existing models.Category
		err := models.DB.Where("slug = ?", cat.Slug).First(&existing).Error
		switch {
		case err == nil:
			ids[cat.Slug] = existing.ID
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := models.DB.Create(&cat).Error; err != nil {
				logger.Warnw("seed_category_create_failed", "slug", cat.Slug, "error", err)
				continue
			}
			ids[cat.Slug] = cat.ID
		default:
			logger.Warnw("seed_category_fetch_failed", "slug", cat.Slug, "error", err)
		}
	}
	return ids
}

type productSeed struct {
	category string
	slug     string
	sku      string
	title    models.JSON
	price    string
	stock    int
	tags     models.StringArray
}

func seedProducts(categoryIDs map[string]uint) map[string]uint {
	seeds := []productSeed{
		{category: "electronics", slug: "wireless-headphones", sku: "EL-1001", price: "99.99", stock: 50, tags: models.StringArray{"audio", "bestseller"},
			title: models.JSON{"zh-CN": "无线耳机", "zh-TW": "無線耳機", "en-US": "Wireless Headphones"}},
		{category: "electronics", slug: "smart-watch", sku: "EL-1002", price: "199.99", stock: 20, tags: models.StringArray{"wearable"},
			title: models.JSON{"zh-CN": "智能手表", "zh-TW": "智慧手錶", "en-US": "Smart Watch"}},
		{category: "lifestyle", slug: "ceramic-mug", sku: "LS-2001", price: "19.90", stock: -1, tags: models.StringArray{"kitchen"},
			title: models.JSON{"zh-CN": "陶瓷马克杯", "zh-TW": "陶瓷馬克杯", "en-US": "Ceramic Mug"}},
		{category: "accessories", slug: "usb-c-cable", sku: "AC-3001", price: "9.99", stock: 200, tags: models.StringArray{"cable"},
			title: models.JSON{"zh-CN": "USB-C 数据线", "zh-TW": "USB-C 傳輸線", "en-US": "USB-C Cable"}},
		{category: "accessories", slug: "phone-case", sku: "AC-3002", price: "14.50", stock: 3, tags: models.StringArray{"case"},
			title: models.JSON{"zh-CN": "手机壳", "zh-TW": "手機殼", "en-US": "Phone Case"}},
	}
	ids := make(map[string]uint, len(seeds))
	for i, seed := range seeds {
		categoryID, ok := categoryIDs[seed.category]
		if !ok {
			continue
		}
		var existing models.Product
		err := models.DB.Where("slug = ?", seed.slug).First(&existing).Error
		if err == nil {
			ids[seed.slug] = existing.ID
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warnw("seed_product_fetch_failed", "slug", seed.slug, "error", err)
			continue
		}
		product := models.Product{
			CategoryID:  categoryID,
			Slug:        seed.slug,
			SKU:         seed.sku,
			TitleJSON:   seed.title,
			PriceAmount: models.MustMoney(seed.price),
			Tags:        seed.tags,
			Images:      models.StringArray{},
			Stock:       seed.stock,
			IsActive:    true,
			SortOrder:   len(seeds) - i,
		}
		if err := models.DB.Create(&product).Error; err != nil {
			logger.Warnw("seed_product_create_failed", "slug", seed.slug, "error", err)
			continue
		}
		ids[seed.slug] = product.ID
	}
	return ids
}

func seedCoupons(productIDs, categoryIDs map[string]uint) {
	admin := service.NewCouponAdminService(
		repository.NewCouponRepository(models.DB),
		repository.NewCouponUsageRepository(models.DB),
		nil,
	)
	active := true
	nextMonth := time.Now().AddDate(0, 1, 0)
	inputs := []service.CouponInput{
		{Code: "WELCOME10", Type: constants.CouponTypePercentage, Discount: models.MustMoney("10"), MaxDiscount: models.MustMoney("30"), IsActive: &active, Description: "新用户九折"},
		{Code: "SAVE5", Type: constants.CouponTypeFlat, Discount: models.MustMoney("5"), MinPurchase: models.MustMoney("50"), UsageLimit: 100, ExpiresAt: &nextMonth, IsActive: &active},
	}
	if id, ok := productIDs["smart-watch"]; ok {
		inputs = append(inputs, service.CouponInput{Code: "WATCH20", Type: constants.CouponTypePercentage, Discount: models.MustMoney("20"), ApplicableProducts: []uint{id}, IsActive: &active})
	}
	if id, ok := categoryIDs["accessories"]; ok {
		inputs = append(inputs, service.CouponInput{Code: "ACC3", Type: constants.CouponTypeFlat, Discount: models.MustMoney("3"), ApplicableCategories: []uint{id}, IsActive: &active})
	}
	for _, input := range inputs {
		coupon, err := admin.Create(input)
		if errors.Is(err, service.ErrCouponDuplicateCode) {
			logger.Debugw("seed_coupon_exists", "code", input.Code)
			continue
		}
		if err != nil {
			logger.Warnw("seed_coupon_create_failed", "code", input.Code, "error", err)
			continue
		}
		logger.Infow("seed_coupon_created", "code", coupon.Code)
	}
}

func seedBanners() {
	var count int64
	if err := models.DB.Model(&models.Banner{}).Count(&count).Error; err != nil || count > 0 {
		return
	}
	banner := models.Banner{
		Name:       "welcome",
		Position:   constants.BannerPositionHomeHero,
		TitleJSON:  models.JSON{"zh-CN": "新人专享九折", "zh-TW": "新人專享九折", "en-US": "10% off your first order"},
		Image:      "/uploads/banner/welcome.png",
		LinkType:   constants.BannerLinkTypeNone,
		CouponCode: "WELCOME10",
		IsActive:   true,
	}
	if err := models.DB.Create(&banner).Error; err != nil {
		logger.Warnw("seed_banner_create_failed", "error", err)
	}
}
