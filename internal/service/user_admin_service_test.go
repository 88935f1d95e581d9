package service

import (
	"errors"
	"testing"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
)

func TestUserAdminSetStatus(t *testing.T) {
	db := openServiceTestDB(t, &models.User{}, &models.Order{}, &models.OrderItem{})
	svc := NewUserAdminService(repository.NewUserRepository(db), repository.NewOrderRepository(db))

	user := &models.User{Email: "buyer@example.com", PasswordHash: "x", Status: constants.UserStatusActive}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	if _, err := svc.SetStatus(user.ID, "frozen"); !errors.Is(err, ErrUserStatusInvalid) {
		t.Fatalf("unknown status want ErrUserStatusInvalid got %v", err)
	}
	if _, err := svc.SetStatus(999, constants.UserStatusDisabled); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("missing user want ErrUserNotFound got %v", err)
	}

	disabled, err := svc.SetStatus(user.ID, " Disabled ")
	if err != nil {
		t.Fatalf("disable user failed: %v", err)
	}
	if disabled.Status != constants.UserStatusDisabled || disabled.TokenVersion != 1 || disabled.TokenInvalidBefore == nil {
		t.Fatalf("disable should bump token version: %+v", disabled)
	}

	// 重复禁用不再递增版本
	again, err := svc.SetStatus(user.ID, constants.UserStatusDisabled)
	if err != nil || again.TokenVersion != 1 {
		t.Fatalf("repeat disable want version 1 got %+v err=%v", again, err)
	}

	enabled, err := svc.SetStatus(user.ID, constants.UserStatusActive)
	if err != nil || enabled.Status != constants.UserStatusActive || enabled.TokenVersion != 1 {
		t.Fatalf("enable want active version 1 got %+v err=%v", enabled, err)
	}

	detail, err := svc.Detail(user.ID)
	if err != nil {
		t.Fatalf("detail failed: %v", err)
	}
	if detail.OrderCount != 0 || len(detail.RecentOrders) != 0 {
		t.Fatalf("new user should have no orders: %+v", detail)
	}

	if _, _, err := svc.List(repository.UserListFilter{Status: "frozen"}); !errors.Is(err, ErrUserStatusInvalid) {
		t.Fatalf("list bad status want ErrUserStatusInvalid got %v", err)
	}
	users, total, err := svc.List(repository.UserListFilter{Keyword: " buyer "})
	if err != nil || total != 1 || len(users) != 1 {
		t.Fatalf("keyword list want 1 got %d err=%v", total, err)
	}
}
