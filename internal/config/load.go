package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/storefront-next/internal/logger"

	"github.com/spf13/viper"
)

// searchPaths config.yml 的查找目录，依次尝试
var searchPaths = []string{".", "./etc", "../"}

// Load 读取 config.yml（可缺省）与环境变量，环境变量优先。
// 环境变量名为键路径大写并以 _ 连接，例如 SERVER_PORT、COUPON_RECONCILE_INTERVAL_MINUTES。
func Load() (*Config, error) {
	return LoadFrom(searchPaths...)
}

// LoadFrom 在指定目录中查找 config.yml
func LoadFrom(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, path := range paths {
		v.AddConfigPath(path)
	}
	applyDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		logger.Warnw("config_file_not_found", "fallback", "env_or_defaults")
	} else {
		logger.Infow("config_file_loaded", "file", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Server.Mode = strings.ToLower(strings.TrimSpace(cfg.Server.Mode))
	return &cfg, nil
}

// IsRelease 生产模式
func (c *Config) IsRelease() bool {
	return c.Server.Mode == "release"
}

// Validate 校验配置。release 模式下弱密钥为错误，其余模式返回的告警由调用方打印。
func (c *Config) Validate() (warnings []string, err error) {
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return nil, fmt.Errorf("server.mode must be debug, release or test, got %q", c.Server.Mode)
	}
	if c.Order.PaymentExpireMinutes <= 0 {
		return nil, errors.New("order.payment_expire_minutes must be positive")
	}
	if c.Coupon.ReconcileIntervalMinutes < 0 {
		return nil, errors.New("coupon.reconcile_interval_minutes must not be negative")
	}

	for name, secret := range map[string]string{"jwt.secret": c.JWT.SecretKey, "user_jwt.secret": c.UserJWT.SecretKey} {
		if !isWeakSecret(secret) {
			continue
		}
		if c.IsRelease() {
			return nil, fmt.Errorf("%s is weak or still the default value", name)
		}
		warnings = append(warnings, name+" is weak or still the default value")
	}
	if c.JWT.SecretKey != "" && c.JWT.SecretKey == c.UserJWT.SecretKey {
		warnings = append(warnings, "jwt.secret and user_jwt.secret should differ")
	}
	return warnings, nil
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	lower := strings.ToLower(secret)
	for _, marker := range []string{"change-me", "change-in-production", "your-secret-key"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
