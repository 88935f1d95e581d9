package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/storefront-next/internal/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

// 支持的语言
const (
	LocaleCN = "zh-CN"
	LocaleTW = "zh-TW"
	LocaleEN = "en-US"

	DefaultLocale = LocaleCN
)

//go:embed locales/*.json
var localeFS embed.FS

var (
	loadOnce sync.Once
	catalogs map[string]map[string]string
	matcher  = language.NewMatcher([]language.Tag{
		language.SimplifiedChinese,
		language.TraditionalChinese,
		language.AmericanEnglish,
	})
	matchedLocales = []string{LocaleCN, LocaleTW, LocaleEN}
)

func load() {
	catalogs = make(map[string]map[string]string, len(matchedLocales))
	for _, locale := range matchedLocales {
		raw, err := localeFS.ReadFile("locales/" + locale + ".json")
		if err != nil {
			logger.Warnw("i18n_locale_missing", "locale", locale, "error", err)
			continue
		}
		messages := make(map[string]string)
		if err := json.Unmarshal(raw, &messages); err != nil {
			logger.Warnw("i18n_locale_invalid", "locale", locale, "error", err)
			continue
		}
		catalogs[locale] = messages
	}
}

// T 翻译消息键；缺失时依次回退到默认语言和键本身
func T(locale, key string) string {
	loadOnce.Do(load)
	if msg, ok := catalogs[NormalizeLocale(locale)][key]; ok {
		return msg
	}
	if msg, ok := catalogs[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 翻译并格式化
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}

// NormalizeLocale 将任意语言标识归一到支持的语言
func NormalizeLocale(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultLocale
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return DefaultLocale
	}
	_, index, _ := matcher.Match(tag)
	return matchedLocales[index]
}

// ResolveLocale 按 X-Locale、lang 参数、Accept-Language 的顺序解析请求语言
func ResolveLocale(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return DefaultLocale
	}
	if v := strings.TrimSpace(c.GetHeader("X-Locale")); v != "" {
		return NormalizeLocale(v)
	}
	if v := strings.TrimSpace(c.Query("lang")); v != "" {
		return NormalizeLocale(v)
	}
	header := strings.TrimSpace(c.GetHeader("Accept-Language"))
	if header == "" {
		return DefaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}
	_, index, _ := matcher.Match(tags...)
	return matchedLocales[index]
}
