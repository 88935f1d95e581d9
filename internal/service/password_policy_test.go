package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/storefront-next/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	strict := config.PasswordPolicyConfig{
		MinLength:      8,
		RequireUpper:   true,
		RequireLower:   true,
		RequireNumber:  true,
		RequireSpecial: true,
	}
	cases := []struct {
		name     string
		policy   config.PasswordPolicyConfig
		password string
		wantKey  string
	}{
		{name: "no policy", policy: config.PasswordPolicyConfig{}, password: "a"},
		{name: "too short", policy: strict, password: "Ab1!", wantKey: "error.password_min_length"},
		{name: "no upper", policy: strict, password: "abcdef1!", wantKey: "error.password_require_upper"},
		{name: "no lower", policy: strict, password: "ABCDEF1!", wantKey: "error.password_require_lower"},
		{name: "no digit", policy: strict, password: "Abcdefg!", wantKey: "error.password_require_number"},
		{name: "no special", policy: strict, password: "Abcdefg1", wantKey: "error.password_require_special"},
		{name: "ok", policy: strict, password: "Abcdef1!"},
		{name: "multibyte length", policy: config.PasswordPolicyConfig{MinLength: 4}, password: "密码密码"},
		{name: "over bcrypt limit", policy: config.PasswordPolicyConfig{}, password: strings.Repeat("a", 73), wantKey: "error.password_too_long"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validatePassword(tc.policy, tc.password)
			if tc.wantKey == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrWeakPassword))
			var violation *PasswordPolicyViolation
			require.True(t, errors.As(err, &violation))
			assert.Equal(t, tc.wantKey, violation.Key())
		})
	}
}

func TestValidatePasswordMinLengthArgs(t *testing.T) {
	err := validatePassword(config.PasswordPolicyConfig{MinLength: 10}, "short")
	var violation *PasswordPolicyViolation
	require.True(t, errors.As(err, &violation))
	assert.Equal(t, []interface{}{10}, violation.Args())
}
