package models

import (
	"fmt"
	"testing"
	"time"

	"github.com/storefront-next/internal/constants"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func openBootstrapTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:models_bootstrap_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&Admin{}, &Setting{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func TestEnsureDefaultAdmin(t *testing.T) {
	db := openBootstrapTestDB(t)

	created, err := EnsureDefaultAdmin(db, "  ", "")
	if err != nil || !created {
		t.Fatalf("first run want created got %v err=%v", created, err)
	}
	var admin Admin
	if err := db.First(&admin).Error; err != nil {
		t.Fatalf("load admin failed: %v", err)
	}
	if admin.Username != defaultAdminUsername || !admin.IsSuper {
		t.Fatalf("unexpected admin: %+v", admin)
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(defaultAdminPassword)) != nil {
		t.Fatalf("default password hash mismatch")
	}

	created, err = EnsureDefaultAdmin(db, "root", "s3cret-pass")
	if err != nil || created {
		t.Fatalf("second run want skipped got %v err=%v", created, err)
	}
}

func TestEnsureDefaultSettingsKeepsExisting(t *testing.T) {
	db := openBootstrapTestDB(t)
	custom := Setting{Key: constants.SettingKeyTaxConfig, ValueJSON: JSON{constants.SettingFieldTaxRate: "8.25"}}
	if err := db.Create(&custom).Error; err != nil {
		t.Fatalf("create setting failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := EnsureDefaultSettings(db); err != nil {
			t.Fatalf("ensure settings run %d failed: %v", i, err)
		}
	}

	var settings []Setting
	if err := db.Order("key ASC").Find(&settings).Error; err != nil {
		t.Fatalf("list settings failed: %v", err)
	}
	if len(settings) != 2 {
		t.Fatalf("settings want 2 got %d", len(settings))
	}
	var tax Setting
	if err := db.Where("key = ?", constants.SettingKeyTaxConfig).First(&tax).Error; err != nil {
		t.Fatalf("load tax setting failed: %v", err)
	}
	if tax.ValueJSON[constants.SettingFieldTaxRate] != "8.25" {
		t.Fatalf("existing tax rate overwritten: %v", tax.ValueJSON)
	}
}
