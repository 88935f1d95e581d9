package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/storefront-next/internal/app"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiCyan  = "\033[36m"
	ansiDim   = "\033[2m"
)

func main() {
	var mode string
	flag.StringVar(&mode, "mode", app.ModeAll, "启动模式: all (默认), api, worker")
	flag.Parse()

	printStartupBanner(mode)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()

	warnings, err := cfg.Validate()
	if err != nil {
		stdLog.Fatalf("配置校验失败: %v", err)
	}
	for _, warning := range warnings {
		logger.Warnw("config_warning", "detail", warning)
	}

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, cfg.Database.PoolOptions()); err != nil {
		stdLog.Fatalf("数据库初始化失败: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("数据库迁移失败: %v", err)
	}

	// 环境变量优先于配置文件
	adminUser := firstNonEmpty(os.Getenv("SF_DEFAULT_ADMIN_USERNAME"), cfg.Bootstrap.AdminUsername)
	adminPass := firstNonEmpty(os.Getenv("SF_DEFAULT_ADMIN_PASSWORD"), cfg.Bootstrap.AdminPassword)
	if cfg.IsRelease() && adminPass == "" {
		stdLog.Printf("警告: 未设置默认管理员密码，已跳过默认管理员初始化")
	} else if _, err := models.EnsureDefaultAdmin(models.DB, adminUser, adminPass); err != nil {
		stdLog.Printf("警告: 初始化默认管理员失败: %v", err)
	}
	if err := models.EnsureDefaultSettings(models.DB); err != nil {
		stdLog.Printf("警告: 初始化默认设置失败: %v", err)
	}

	if cfg.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	}); err != nil {
		stdLog.Fatalf("服务运行失败: %v", err)
	}
}

func printStartupBanner(mode string) {
	fmt.Println(ansiCyan + ansiBold + "Storefront Next API" + ansiReset)
	fmt.Println(ansiDim + "mode: " + mode + ansiReset)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
