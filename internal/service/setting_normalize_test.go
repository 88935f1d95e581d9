package service

import (
	"context"
	"errors"
	"testing"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
)

type mockSettingRepo struct {
	store map[string]models.JSON
}

func newMockSettingRepo() *mockSettingRepo {
	return &mockSettingRepo{store: map[string]models.JSON{}}
}

func (m *mockSettingRepo) GetByKey(key string) (*models.Setting, error) {
	value, ok := m.store[key]
	if !ok {
		return nil, nil
	}
	return &models.Setting{Key: key, ValueJSON: value}, nil
}

func (m *mockSettingRepo) Upsert(key string, value models.JSON) (*models.Setting, error) {
	m.store[key] = value
	return &models.Setting{Key: key, ValueJSON: value}, nil
}

func TestUpdateTaxSettingNormalized(t *testing.T) {
	svc := NewSettingService(newMockSettingRepo())

	result, err := svc.Update(context.Background(), constants.SettingKeyTaxConfig, map[string]interface{}{
		constants.SettingFieldTaxRate: "8.255",
		"label":                       "VAT",
	})
	if err != nil {
		t.Fatalf("update tax config failed: %v", err)
	}
	if result[constants.SettingFieldTaxRate] != "8.26" {
		t.Fatalf("unexpected rate_percent want 8.26 got %v", result[constants.SettingFieldTaxRate])
	}
	if result["label"] != "VAT" {
		t.Fatalf("unexpected extra field: %v", result["label"])
	}

	rate, err := svc.GetTaxRatePercent()
	if err != nil {
		t.Fatalf("get tax rate failed: %v", err)
	}
	if rate.String() != "8.26" {
		t.Fatalf("unexpected tax rate want 8.26 got %s", rate.String())
	}
}

func TestUpdateTaxSettingRejectsOutOfRange(t *testing.T) {
	svc := NewSettingService(newMockSettingRepo())

	for _, raw := range []interface{}{"-1", 120.0, "abc"} {
		_, err := svc.Update(context.Background(), constants.SettingKeyTaxConfig, map[string]interface{}{
			constants.SettingFieldTaxRate: raw,
		})
		if !errors.Is(err, ErrSettingInvalid) {
			t.Fatalf("rate %v want ErrSettingInvalid got %v", raw, err)
		}
	}
}

func TestGetTaxRateDefaultsToZero(t *testing.T) {
	svc := NewSettingService(newMockSettingRepo())
	rate, err := svc.GetTaxRatePercent()
	if err != nil {
		t.Fatalf("get tax rate failed: %v", err)
	}
	if !rate.IsZero() {
		t.Fatalf("unexpected default tax rate: %s", rate.String())
	}
}

func TestUpdateSiteSettingNormalized(t *testing.T) {
	svc := NewSettingService(newMockSettingRepo())

	result, err := svc.Update(context.Background(), constants.SettingKeySiteConfig, map[string]interface{}{
		"name":           "  Corner Shop  ",
		"currency":       " eur ",
		"default_locale": "fr-FR",
		"languages":      []interface{}{"en-US", "en-US", "xx", 1, "zh-CN"},
	})
	if err != nil {
		t.Fatalf("update site config failed: %v", err)
	}
	if result["name"] != "Corner Shop" {
		t.Fatalf("unexpected name: %v", result["name"])
	}
	if result["currency"] != "EUR" {
		t.Fatalf("unexpected currency: %v", result["currency"])
	}
	if result["default_locale"] != constants.LocaleEnUS {
		t.Fatalf("unexpected default_locale: %v", result["default_locale"])
	}
	languages, ok := result["languages"].([]string)
	if !ok || len(languages) != 2 || languages[0] != "en-US" || languages[1] != "zh-CN" {
		t.Fatalf("unexpected languages: %#v", result["languages"])
	}

	currency, err := svc.GetSiteCurrency(constants.SiteCurrencyDefault)
	if err != nil {
		t.Fatalf("get currency failed: %v", err)
	}
	if currency != "EUR" {
		t.Fatalf("unexpected currency want EUR got %s", currency)
	}
}

func TestGetPublicRejectsPrivateKeys(t *testing.T) {
	svc := NewSettingService(newMockSettingRepo())
	if _, err := svc.GetPublic(context.Background(), "smtp_config"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound got %v", err)
	}
	value, err := svc.GetPublic(context.Background(), constants.SettingKeySiteConfig)
	if err != nil {
		t.Fatalf("get public site config failed: %v", err)
	}
	if len(value) != 0 {
		t.Fatalf("unexpected site config: %v", value)
	}
}

func TestUpdateSiteSettingRejectsBadCurrency(t *testing.T) {
	svc := NewSettingService(newMockSettingRepo())
	for _, raw := range []string{"EURO", "U$D", "12"} {
		_, err := svc.Update(context.Background(), constants.SettingKeySiteConfig, map[string]interface{}{"currency": raw})
		if !errors.Is(err, ErrSettingInvalid) {
			t.Fatalf("currency %q want ErrSettingInvalid got %v", raw, err)
		}
	}
	result, err := svc.Update(context.Background(), constants.SettingKeySiteConfig, map[string]interface{}{"name": "Shop"})
	if err != nil {
		t.Fatalf("update without currency failed: %v", err)
	}
	if result["currency"] != constants.SiteCurrencyDefault {
		t.Fatalf("missing currency want default got %v", result["currency"])
	}
	languages, ok := result["languages"]
	if ok {
		t.Fatalf("languages should stay absent, got %v", languages)
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("优惠码商店", 2); got != "优惠" {
		t.Fatalf("truncate want 优惠 got %s", got)
	}
	if got := truncateRunes("shop", 10); got != "shop" {
		t.Fatalf("short text changed: %s", got)
	}
}
