package service

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"

	"github.com/shopspring/decimal"
)

const siteNameMaxRunes = 120

// settingNormalizers 有结构约束的设置键；其余键原样保存
var settingNormalizers = map[string]func(map[string]interface{}) (models.JSON, error){
	constants.SettingKeySiteConfig: normalizeSiteSetting,
	constants.SettingKeyTaxConfig:  normalizeTaxSetting,
}

func normalizeSettingValueByKey(key string, value map[string]interface{}) (models.JSON, error) {
	if normalize, ok := settingNormalizers[key]; ok {
		return normalize(value)
	}
	return models.JSON(value), nil
}

// normalizeTaxSetting rate_percent 取值 [0,100]，保留两位小数，缺省为 0
func normalizeTaxSetting(value map[string]interface{}) (models.JSON, error) {
	out := models.JSON(maps.Clone(value))
	if out == nil {
		out = models.JSON{}
	}
	raw, ok := value[constants.SettingFieldTaxRate]
	if !ok {
		out[constants.SettingFieldTaxRate] = "0"
		return out, nil
	}
	rate, err := parseSettingDecimal(raw)
	if err != nil || rate.IsNegative() || rate.GreaterThan(hundred) {
		return nil, ErrSettingInvalid
	}
	out[constants.SettingFieldTaxRate] = rate.Round(2).String()
	return out, nil
}

// normalizeSiteSetting 币种为三位字母代码；语言只保留受支持的 locale
func normalizeSiteSetting(value map[string]interface{}) (models.JSON, error) {
	out := models.JSON(maps.Clone(value))
	if out == nil {
		out = models.JSON{}
	}
	out["name"] = truncateRunes(settingText(value["name"]), siteNameMaxRunes)

	currency := strings.ToUpper(settingText(value[constants.SettingFieldSiteCurrency]))
	switch {
	case currency == "":
		currency = constants.SiteCurrencyDefault
	case !isCurrencyCode(currency):
		return nil, ErrSettingInvalid
	}
	out[constants.SettingFieldSiteCurrency] = currency

	locale := settingText(value["default_locale"])
	if !isSupportedLocale(locale) {
		locale = constants.LocaleEnUS
	}
	out["default_locale"] = locale

	if raw, ok := value["languages"]; ok {
		out["languages"] = normalizeSiteLanguages(raw)
	}
	return out, nil
}

func isSupportedLocale(locale string) bool {
	return slices.Contains(constants.SupportedLocales, locale)
}

func isCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// normalizeSiteLanguages 去重保序；结果为空时退回全部受支持语言
func normalizeSiteLanguages(raw interface{}) []string {
	var candidates []string
	switch value := raw.(type) {
	case []string:
		candidates = value
	case []interface{}:
		for _, item := range value {
			candidates = append(candidates, settingText(item))
		}
	}

	result := make([]string, 0, len(candidates))
	for _, item := range candidates {
		lang := strings.TrimSpace(item)
		if isSupportedLocale(lang) && !slices.Contains(result, lang) {
			result = append(result, lang)
		}
	}
	if len(result) == 0 {
		return slices.Clone(constants.SupportedLocales)
	}
	return result
}

func settingText(raw interface{}) string {
	text, _ := raw.(string)
	return strings.TrimSpace(text)
}

func truncateRunes(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	return string([]rune(text)[:limit])
}

// parseSettingDecimal 接受 JSON 数字与数字字符串
func parseSettingDecimal(value interface{}) (decimal.Decimal, error) {
	switch v := value.(type) {
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		return decimal.NewFromString(strings.TrimSpace(v))
	default:
		return decimal.Zero, fmt.Errorf("unsupported setting value %T", value)
	}
}
