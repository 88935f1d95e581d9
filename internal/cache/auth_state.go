package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/storefront-next/internal/models"
)

const authStateTTL = 10 * time.Minute

// AuthSubject 鉴权主体类型
type AuthSubject string

const (
	SubjectUser  AuthSubject = "user"
	SubjectAdmin AuthSubject = "admin"
)

// AuthState 令牌校验所需的账号快照。InvalidBefore 为 Unix 秒，0 表示未设置。
type AuthState struct {
	Subject       AuthSubject `json:"subject"`
	ID            uint        `json:"id"`
	Status        string      `json:"status,omitempty"`
	IsSuper       bool        `json:"is_super,omitempty"`
	TokenVersion  uint64      `json:"token_version"`
	InvalidBefore int64       `json:"invalid_before"`
}

func authStateKey(subject AuthSubject, id uint) string {
	return "auth:" + string(subject) + ":" + strconv.FormatUint(uint64(id), 10)
}

func unixOrZero(t *time.Time) int64 {
	if t == nil {
		return 0
	}
	return t.Unix()
}

// UserAuthState 用户快照
func UserAuthState(user *models.User) *AuthState {
	if user == nil {
		return nil
	}
	return &AuthState{
		Subject:       SubjectUser,
		ID:            user.ID,
		Status:        user.Status,
		TokenVersion:  user.TokenVersion,
		InvalidBefore: unixOrZero(user.TokenInvalidBefore),
	}
}

// AdminAuthState 管理员快照
func AdminAuthState(admin *models.Admin) *AuthState {
	if admin == nil {
		return nil
	}
	return &AuthState{
		Subject:       SubjectAdmin,
		ID:            admin.ID,
		IsSuper:       admin.IsSuper,
		TokenVersion:  admin.TokenVersion,
		InvalidBefore: unixOrZero(admin.TokenInvalidBefore),
	}
}

// LoadAuthState 读取快照，未命中返回 nil
func LoadAuthState(ctx context.Context, subject AuthSubject, id uint) (*AuthState, error) {
	if id == 0 {
		return nil, nil
	}
	var state AuthState
	hit, err := GetJSON(ctx, authStateKey(subject, id), &state)
	if err != nil || !hit || state.Subject != subject || state.ID != id {
		return nil, err
	}
	return &state, nil
}

// StoreAuthState 写入快照；改密、禁用、登出后调用以覆盖旧值
func StoreAuthState(ctx context.Context, state *AuthState) error {
	if state == nil || state.ID == 0 {
		return nil
	}
	return SetJSON(ctx, authStateKey(state.Subject, state.ID), state, authStateTTL)
}

// DropAuthState 删除快照
func DropAuthState(ctx context.Context, subject AuthSubject, id uint) error {
	if id == 0 {
		return nil
	}
	return Del(ctx, authStateKey(subject, id))
}
