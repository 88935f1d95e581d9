package models

import (
	"strings"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin123"
)

// EnsureDefaultAdmin 库中没有任何管理员时创建一个超级管理员，返回是否新建
func EnsureDefaultAdmin(db *gorm.DB, username, password string) (bool, error) {
	var count int64
	if err := db.Model(&Admin{}).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	username = strings.TrimSpace(username)
	if username == "" {
		username = defaultAdminUsername
	}
	weak := password == ""
	if weak {
		password = defaultAdminPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	admin := Admin{
		Username:     username,
		DisplayName:  "Administrator",
		PasswordHash: string(hash),
		IsSuper:      true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return false, err
	}

	if weak {
		logger.Warnw("default_admin_created_with_default_password", "username", username)
	} else {
		logger.Infow("default_admin_created", "username", username)
	}
	return true, nil
}

func defaultSettings() []Setting {
	return []Setting{
		{Key: constants.SettingKeySiteConfig, ValueJSON: JSON{
			"name":                             "Storefront",
			constants.SettingFieldSiteCurrency: constants.SiteCurrencyDefault,
			"default_locale":                   constants.LocaleEnUS,
		}},
		{Key: constants.SettingKeyTaxConfig, ValueJSON: JSON{
			constants.SettingFieldTaxRate: "0",
		}},
	}
}

// EnsureDefaultSettings 只补缺失的键，已有值不覆盖
func EnsureDefaultSettings(db *gorm.DB) error {
	rows := defaultSettings()
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoNothing: true,
	}).Create(&rows)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		logger.Infow("default_settings_created", "count", result.RowsAffected)
	}
	return nil
}
