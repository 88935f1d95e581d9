package service

import (
	"unicode"
	"unicode/utf8"

	"github.com/storefront-next/internal/config"
)

// bcrypt 只取前 72 字节
const maxPasswordBytes = 72

// PasswordPolicyViolation 携带 i18n key 与参数，处理器据此渲染提示
type PasswordPolicyViolation struct {
	key  string
	args []interface{}
}

func (e *PasswordPolicyViolation) Error() string        { return e.key }
func (e *PasswordPolicyViolation) Is(target error) bool { return target == ErrWeakPassword }
func (e *PasswordPolicyViolation) Key() string          { return e.key }
func (e *PasswordPolicyViolation) Args() []interface{}  { return e.args }

func violation(key string, args ...interface{}) error {
	return &PasswordPolicyViolation{key: key, args: args}
}

type charClass struct {
	required bool
	match    func(rune) bool
	key      string
}

func validatePassword(policy config.PasswordPolicyConfig, password string) error {
	if len(password) > maxPasswordBytes {
		return violation("error.password_too_long", maxPasswordBytes)
	}
	if policy.MinLength > 0 && utf8.RuneCountInString(password) < policy.MinLength {
		return violation("error.password_min_length", policy.MinLength)
	}

	classes := []charClass{
		{policy.RequireUpper, unicode.IsUpper, "error.password_require_upper"},
		{policy.RequireLower, unicode.IsLower, "error.password_require_lower"},
		{policy.RequireNumber, unicode.IsDigit, "error.password_require_number"},
		{policy.RequireSpecial, isSpecialRune, "error.password_require_special"},
	}
	for _, class := range classes {
		if class.required && !containsRune(password, class.match) {
			return violation(class.key)
		}
	}
	return nil
}

func isSpecialRune(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

func containsRune(s string, match func(rune) bool) bool {
	for _, r := range s {
		if match(r) {
			return true
		}
	}
	return false
}
