package admin

import (
	"github.com/storefront-next/internal/authz"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

type authzRoleItem struct {
	Role     string         `json:"role"`
	Policies []authz.Policy `json:"policies"`
}

type authzAdminItem struct {
	models.Admin
	Roles []string `json:"roles"`
}

type authzCreateAdminPayload struct {
	Username    string   `json:"username" binding:"required"`
	DisplayName string   `json:"display_name"`
	Password    string   `json:"password" binding:"required"`
	IsSuper     bool     `json:"is_super"`
	Roles       []string `json:"roles"`
}

type authzSetAdminRolesPayload struct {
	Roles []string `json:"roles"`
}

// ListAuthzRoles 预置角色及其策略
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles := h.AuthzService.ListRoles()
	items := make([]authzRoleItem, 0, len(roles))
	for _, role := range roles {
		policies, err := h.AuthzService.RolePolicies(role)
		if err != nil {
			respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
			return
		}
		items = append(items, authzRoleItem{Role: role, Policies: policies})
	}
	response.Success(c, items)
}

// ListAuthzAdmins 管理员及其角色
func (h *Handler) ListAuthzAdmins(c *gin.Context) {
	admins, err := h.AuthService.ListAdmins()
	if err != nil {
		respondError(c, response.CodeInternal, "error.admin_fetch_failed", err)
		return
	}
	items := make([]authzAdminItem, 0, len(admins))
	for _, admin := range admins {
		roles, err := h.AuthzService.GetAdminRoles(admin.ID)
		if err != nil {
			respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
			return
		}
		items = append(items, authzAdminItem{Admin: admin, Roles: roles})
	}
	response.Success(c, items)
}

// CreateAuthzAdmin 创建管理员并分配角色
func (h *Handler) CreateAuthzAdmin(c *gin.Context) {
	var req authzCreateAdminPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	admin, err := h.AuthService.CreateAdmin(service.CreateAdminInput{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Password:    req.Password,
		IsSuper:     req.IsSuper,
	})
	if err != nil {
		if respondPasswordPolicyError(c, err) {
			return
		}
		respondWithMappedError(c, err, adminAccountErrorRules, response.CodeInternal, "error.admin_create_failed")
		return
	}
	if len(req.Roles) > 0 {
		if err := h.AuthzService.SetAdminRoles(admin.ID, req.Roles); err != nil {
			respondWithMappedError(c, err, adminAccountErrorRules, response.CodeInternal, "error.authz_update_failed")
			return
		}
	}
	operatorID, _ := c.Get("admin_id")
	requestLog(c).Infow("admin_account_created", "admin_id", admin.ID, "operator_id", operatorID, "roles", req.Roles)
	response.Success(c, authzAdminItem{Admin: *admin, Roles: req.Roles})
}

// GetAuthzAdminRoles 获取指定管理员的角色
func (h *Handler) GetAuthzAdminRoles(c *gin.Context) {
	adminID, ok := parsePathUint(c, "id")
	if !ok {
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return
	}
	response.Success(c, gin.H{"admin_id": adminID, "roles": roles})
}

// SetAuthzAdminRoles 覆盖指定管理员的角色
func (h *Handler) SetAuthzAdminRoles(c *gin.Context) {
	adminID, ok := parsePathUint(c, "id")
	if !ok {
		return
	}
	var req authzSetAdminRolesPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if _, err := h.AuthService.GetAdmin(adminID); err != nil {
		respondWithMappedError(c, err, adminAccountErrorRules, response.CodeInternal, "error.admin_fetch_failed")
		return
	}
	if err := h.AuthzService.SetAdminRoles(adminID, req.Roles); err != nil {
		respondWithMappedError(c, err, adminAccountErrorRules, response.CodeInternal, "error.authz_update_failed")
		return
	}
	requestLog(c).Infow("admin_roles_updated", "admin_id", adminID, "roles", req.Roles)
	response.Success(c, gin.H{"admin_id": adminID, "roles": req.Roles})
}
