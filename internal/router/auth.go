package router

import (
	"context"
	"strings"

	"github.com/storefront-next/internal/authz"
	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/i18n"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	adminIDContextKey      = shared.ContextKeyAdminID
	adminIsSuperContextKey = "admin_is_super"
	adminNameContextKey    = "username"
	userIDContextKey       = shared.ContextKeyUserID
	userEmailContextKey    = "user_email"
)

func abortWithKey(c *gin.Context, code int, key string) {
	msg := i18n.T(i18n.ResolveLocale(c), key)
	if code == response.CodeForbidden {
		response.Forbidden(c, msg)
	} else {
		response.Unauthorized(c, msg)
	}
	c.Abort()
}

// bearerToken 第二个返回值为失败时的文案 key
func bearerToken(c *gin.Context) (string, string) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return "", "error.auth_header_missing"
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || scheme != "Bearer" || token == "" {
		return "", "error.auth_header_invalid"
	}
	return token, ""
}

func parseHS256(secret, token string, claims jwt.Claims) bool {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	return err == nil && parsed.Valid
}

// resolveAuthState 先读缓存快照，未命中时回源并写回
func resolveAuthState(ctx context.Context, subject cache.AuthSubject, id uint, load func() (*cache.AuthState, error)) *cache.AuthState {
	if cached, err := cache.LoadAuthState(ctx, subject, id); err == nil && cached != nil {
		return cached
	}
	state, err := load()
	if err != nil || state == nil {
		return nil
	}
	if err := cache.StoreAuthState(ctx, state); err != nil {
		logger.Warnw("auth_state_cache_failed", "subject", subject, "id", id, "error", err)
	}
	return state
}

// checkAuthState 令牌版本必须一致，且签发时间不早于失效点
func checkAuthState(state *cache.AuthState, tokenVersion uint64, issuedAt *jwt.NumericDate) string {
	if state == nil {
		return "error.token_invalid"
	}
	if state.Subject == cache.SubjectUser && !strings.EqualFold(strings.TrimSpace(state.Status), constants.UserStatusActive) {
		return "error.user_disabled"
	}
	if tokenVersion != state.TokenVersion {
		return "error.token_revoked"
	}
	if state.InvalidBefore > 0 && (issuedAt == nil || issuedAt.Unix() < state.InvalidBefore) {
		return "error.token_revoked"
	}
	return ""
}

// JWTAuthMiddleware 管理端令牌校验
func JWTAuthMiddleware(secret string, adminRepo repository.AdminRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			abortWithKey(c, response.CodeUnauthorized, "error.jwt_secret_missing")
			return
		}
		token, failKey := bearerToken(c)
		if failKey != "" {
			abortWithKey(c, response.CodeUnauthorized, failKey)
			return
		}
		claims := &service.AdminJWTClaims{}
		if adminRepo == nil || !parseHS256(secret, token, claims) || claims.AdminID == 0 {
			abortWithKey(c, response.CodeUnauthorized, "error.token_invalid")
			return
		}
		state := resolveAuthState(c.Request.Context(), cache.SubjectAdmin, claims.AdminID, func() (*cache.AuthState, error) {
			admin, err := adminRepo.GetByID(claims.AdminID)
			return cache.AdminAuthState(admin), err
		})
		if failKey := checkAuthState(state, claims.TokenVersion, claims.IssuedAt); failKey != "" {
			abortWithKey(c, response.CodeUnauthorized, failKey)
			return
		}
		c.Set(adminIDContextKey, claims.AdminID)
		c.Set(adminNameContextKey, claims.Username)
		c.Set(adminIsSuperContextKey, state.IsSuper)
		c.Next()
	}
}

// AdminRBACMiddleware 超级管理员直接放行，其余按路由模板鉴权
func AdminRBACMiddleware(authzService *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authzService == nil {
			logger.Errorw("admin_rbac_service_unavailable")
			abortWithKey(c, response.CodeUnauthorized, "error.unauthorized")
			return
		}
		if c.GetBool(adminIsSuperContextKey) {
			c.Next()
			return
		}
		adminID := c.GetUint(adminIDContextKey)
		if adminID == 0 {
			abortWithKey(c, response.CodeUnauthorized, "error.unauthorized")
			return
		}
		resource := c.FullPath()
		if resource == "" {
			resource = c.Request.URL.Path
		}
		allowed, err := authzService.EnforceAdmin(adminID, resource, c.Request.Method)
		if err != nil {
			logger.Errorw("admin_rbac_enforce_failed", "admin_id", adminID, "method", c.Request.Method, "resource", resource, "error", err)
			abortWithKey(c, response.CodeUnauthorized, "error.unauthorized")
			return
		}
		if !allowed {
			logger.Warnw("admin_rbac_permission_denied", "admin_id", adminID, "method", c.Request.Method, "resource", authz.NormalizeObject(resource))
			abortWithKey(c, response.CodeForbidden, "error.forbidden")
			return
		}
		c.Next()
	}
}

// UserJWTAuthMiddleware 顾客令牌校验，缺失即拒绝
func UserJWTAuthMiddleware(secret string, userRepo repository.UserRepository) gin.HandlerFunc {
	return userAuth(secret, userRepo, false)
}

// OptionalUserJWTMiddleware 没有 Authorization 头时按游客放行；带了头就必须有效
func OptionalUserJWTMiddleware(secret string, userRepo repository.UserRepository) gin.HandlerFunc {
	return userAuth(secret, userRepo, true)
}

func userAuth(secret string, userRepo repository.UserRepository, optional bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if optional && (secret == "" || strings.TrimSpace(c.GetHeader("Authorization")) == "") {
			c.Next()
			return
		}
		if secret == "" {
			abortWithKey(c, response.CodeUnauthorized, "error.jwt_secret_missing")
			return
		}
		token, failKey := bearerToken(c)
		if failKey != "" {
			abortWithKey(c, response.CodeUnauthorized, failKey)
			return
		}
		claims := &service.UserJWTClaims{}
		if userRepo == nil || !parseHS256(secret, token, claims) || claims.UserID == 0 {
			abortWithKey(c, response.CodeUnauthorized, "error.token_invalid")
			return
		}
		state := resolveAuthState(c.Request.Context(), cache.SubjectUser, claims.UserID, func() (*cache.AuthState, error) {
			user, err := userRepo.GetByID(claims.UserID)
			return cache.UserAuthState(user), err
		})
		if failKey := checkAuthState(state, claims.TokenVersion, claims.IssuedAt); failKey != "" {
			abortWithKey(c, response.CodeUnauthorized, failKey)
			return
		}
		c.Set(userIDContextKey, claims.UserID)
		c.Set(userEmailContextKey, claims.Email)
		c.Next()
	}
}
