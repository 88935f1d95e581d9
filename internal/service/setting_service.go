package service

import (
	"context"
	"strings"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/shopspring/decimal"
)

// publicSettingKeys 前台可读的设置键
var publicSettingKeys = map[string]bool{
	constants.SettingKeySiteConfig: true,
	constants.SettingKeyTaxConfig:  true,
}

// SettingService 读写 settings 表，读路径经过缓存，写入后删除缓存
type SettingService struct {
	repo repository.SettingRepository
}

func NewSettingService(repo repository.SettingRepository) *SettingService {
	return &SettingService{repo: repo}
}

// GetByKey 直接读库，不存在时返回 nil
func (s *SettingService) GetByKey(key string) (models.JSON, error) {
	setting, err := s.repo.GetByKey(key)
	if err != nil || setting == nil {
		return nil, err
	}
	return setting.ValueJSON, nil
}

// cached 未配置的键缓存为空对象
func (s *SettingService) cached(ctx context.Context, key string) (models.JSON, error) {
	if value, hit, err := cache.GetSetting(ctx, key); err != nil {
		logger.Warnw("setting_cache_get_failed", "key", key, "error", err)
	} else if hit {
		return models.JSON(value), nil
	}
	value, err := s.GetByKey(key)
	if err != nil {
		return nil, err
	}
	if value == nil {
		value = models.JSON{}
	}
	if err := cache.SetSetting(ctx, key, value); err != nil {
		logger.Warnw("setting_cache_set_failed", "key", key, "error", err)
	}
	return value, nil
}

// GetPublic 非公开键按不存在处理
func (s *SettingService) GetPublic(ctx context.Context, key string) (models.JSON, error) {
	if !publicSettingKeys[key] {
		return nil, ErrNotFound
	}
	return s.cached(ctx, key)
}

func (s *SettingService) Update(ctx context.Context, key string, value map[string]interface{}) (models.JSON, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrSettingInvalid
	}
	normalized, err := normalizeSettingValueByKey(key, value)
	if err != nil {
		return nil, err
	}
	setting, err := s.repo.Upsert(key, normalized)
	if err != nil {
		return nil, err
	}
	if err := cache.DelSetting(ctx, key); err != nil {
		logger.Warnw("setting_cache_invalidate_failed", "key", key, "error", err)
	}
	return setting.ValueJSON, nil
}

// GetTaxRatePercent 未配置或值无法解析时为 0
func (s *SettingService) GetTaxRatePercent() (decimal.Decimal, error) {
	if s == nil {
		return decimal.Zero, nil
	}
	value, err := s.cached(context.Background(), constants.SettingKeyTaxConfig)
	if err != nil {
		return decimal.Zero, err
	}
	rate, err := parseSettingDecimal(value[constants.SettingFieldTaxRate])
	if err != nil || rate.IsNegative() {
		return decimal.Zero, nil
	}
	return decimal.Min(rate, hundred).Round(2), nil
}

// GetSiteCurrency 未配置时返回 fallback
func (s *SettingService) GetSiteCurrency(fallback string) (string, error) {
	if s == nil {
		return fallback, nil
	}
	value, err := s.cached(context.Background(), constants.SettingKeySiteConfig)
	if err != nil {
		return fallback, err
	}
	if currency := settingText(value[constants.SettingFieldSiteCurrency]); currency != "" {
		return strings.ToUpper(currency), nil
	}
	return fallback, nil
}
