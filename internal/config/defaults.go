package config

import "github.com/spf13/viper"

// defaults 未在配置文件与环境变量中出现的键使用这些值
var defaults = map[string]interface{}{
	"server.host": "0.0.0.0",
	"server.port": "8080",
	"server.mode": "debug",

	"log.level":        "",
	"log.console":      false,
	"log.dir":          "",
	"log.filename":     "storefront.log",
	"log.max_size_mb":  100,
	"log.max_backups":  7,
	"log.max_age_days": 30,
	"log.compress":     true,

	"database.driver":                          "sqlite",
	"database.dsn":                             "./db/storefront.db",
	"database.pool.max_open_conns":             1,
	"database.pool.max_idle_conns":             1,
	"database.pool.conn_max_lifetime_seconds":  0,
	"database.pool.conn_max_idle_time_seconds": 0,
	"database.pool.log_level":                  "warn",
	"database.pool.slow_threshold_ms":          200,

	"jwt.secret":                        "change-me-in-production",
	"jwt.expire_hours":                  24,
	"user_jwt.secret":                   "user-change-me-in-production",
	"user_jwt.expire_hours":             24,
	"user_jwt.remember_me_expire_hours": 168,

	"bootstrap.admin_username": "admin",
	"bootstrap.admin_password": "",

	"redis.enabled":  true,
	"redis.host":     "127.0.0.1",
	"redis.port":     6379,
	"redis.password": "",
	"redis.db":       0,
	"redis.prefix":   "sf",

	"queue.enabled":     true,
	"queue.host":        "127.0.0.1",
	"queue.port":        6379,
	"queue.password":    "",
	"queue.db":          1,
	"queue.concurrency": 10,
	"queue.queues":      map[string]int{"critical": 6, "default": 3},

	"upload.max_size":           10 << 20,
	"upload.allowed_types":      []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
	"upload.allowed_extensions": []string{".jpg", ".jpeg", ".png", ".gif", ".webp"},
	"upload.max_width":          4096,
	"upload.max_height":         4096,

	"cors.allowed_origins":   []string{"*"},
	"cors.allowed_methods":   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	"cors.allowed_headers":   []string{"Content-Type", "Authorization", "X-Locale", "X-Request-ID"},
	"cors.allow_credentials": true,
	"cors.max_age":           600,

	"security.login_rate_limit.window_seconds":  300,
	"security.login_rate_limit.max_attempts":    5,
	"security.login_rate_limit.block_seconds":   900,
	"security.coupon_rate_limit.window_seconds": 60,
	"security.coupon_rate_limit.max_attempts":   30,
	"security.coupon_rate_limit.block_seconds":  300,
	"security.password_policy.min_length":       8,
	"security.password_policy.require_upper":    true,
	"security.password_policy.require_lower":    true,
	"security.password_policy.require_number":   true,
	"security.password_policy.require_special":  false,

	"order.payment_expire_minutes":      15,
	"coupon.reconcile_interval_minutes": 30,

	"captcha.provider":             "none",
	"captcha.scenes.login":         false,
	"captcha.scenes.admin_login":   false,
	"captcha.scenes.register":      false,
	"captcha.image.length":         5,
	"captcha.image.width":          240,
	"captcha.image.height":         80,
	"captcha.image.noise_count":    2,
	"captcha.image.show_line":      2,
	"captcha.image.expire_seconds": 300,
	"captcha.image.max_store":      10240,
}

func applyDefaults(v *viper.Viper) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}
