package authz

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/casbin/casbin/v3/util"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

const (
	apiPrefix       = "/api/v1"
	casbinTableName = "casbin_rule"
	rolePrefix      = "role:"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

// ErrUnknownRole 未知角色
var ErrUnknownRole = errors.New("unknown role")

var errUnavailable = errors.New("authz service unavailable")

// Policy 权限策略
type Policy struct {
	Object string `json:"object"`
	Action string `json:"action"`
}

// Service 基于 Casbin 的后台授权服务，只允许分配预置角色
type Service struct {
	enforcer *casbin.SyncedEnforcer
	roles    map[string]RoleSeed
}

// NewService 创建授权服务，策略持久化在 casbin_rule 表
func NewService(db *gorm.DB) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("authz db is nil")
	}
	adapter, err := gormadapter.NewAdapterByDBUseTableName(db, "", casbinTableName)
	if err != nil {
		return nil, fmt.Errorf("create authz adapter: %w", err)
	}
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("load authz model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("init authz enforcer: %w", err)
	}
	enforcer.AddFunction("keyMatch2", util.KeyMatch2Func)
	enforcer.EnableAutoSave(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("load authz policy: %w", err)
	}

	roles := make(map[string]RoleSeed)
	for _, seed := range BuiltinRoleSeeds() {
		roles[rolePrefix+seed.Role] = seed
	}
	return &Service{enforcer: enforcer, roles: roles}, nil
}

// EnforceAdmin 判定管理员能否访问 obj/act
func (s *Service) EnforceAdmin(adminID uint, obj, act string) (bool, error) {
	if s == nil || s.enforcer == nil {
		return false, errUnavailable
	}
	return s.enforcer.Enforce(SubjectForAdmin(adminID), NormalizeObject(obj), NormalizeAction(act))
}

// ListRoles 预置角色名（不含前缀）
func (s *Service) ListRoles() []string {
	names := make([]string, 0, len(s.roles))
	for key := range s.roles {
		names = append(names, strings.TrimPrefix(key, rolePrefix))
	}
	sort.Strings(names)
	return names
}

// SetAdminRoles 覆盖管理员角色
func (s *Service) SetAdminRoles(adminID uint, roles []string) error {
	if s == nil || s.enforcer == nil {
		return errUnavailable
	}
	if adminID == 0 {
		return fmt.Errorf("admin id is required")
	}
	normalized := make([]string, 0, len(roles))
	for _, role := range roles {
		key := rolePrefix + strings.TrimPrefix(strings.TrimSpace(role), rolePrefix)
		if _, ok := s.roles[key]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownRole, role)
		}
		normalized = append(normalized, key)
	}

	subject := SubjectForAdmin(adminID)
	if _, err := s.enforcer.RemoveFilteredGroupingPolicy(0, subject); err != nil {
		return fmt.Errorf("clear admin roles: %w", err)
	}
	for _, role := range normalized {
		if _, err := s.enforcer.AddGroupingPolicy(subject, role); err != nil {
			return fmt.Errorf("assign admin role: %w", err)
		}
	}
	return nil
}

// GetAdminRoles 管理员已分配角色（不含前缀）
func (s *Service) GetAdminRoles(adminID uint) ([]string, error) {
	if s == nil || s.enforcer == nil {
		return nil, errUnavailable
	}
	rules, err := s.enforcer.GetFilteredGroupingPolicy(0, SubjectForAdmin(adminID))
	if err != nil {
		return nil, fmt.Errorf("get admin roles: %w", err)
	}
	roles := make([]string, 0, len(rules))
	for _, rule := range rules {
		if len(rule) >= 2 {
			roles = append(roles, strings.TrimPrefix(rule[1], rolePrefix))
		}
	}
	sort.Strings(roles)
	return roles, nil
}

// RolePolicies 角色直接授予的策略
func (s *Service) RolePolicies(role string) ([]Policy, error) {
	seed, ok := s.roles[rolePrefix+strings.TrimPrefix(role, rolePrefix)]
	if !ok {
		return nil, ErrUnknownRole
	}
	return seed.Policies, nil
}

// SubjectForAdmin 管理员主体标识
func SubjectForAdmin(adminID uint) string {
	return fmt.Sprintf("admin:%d", adminID)
}

// NormalizeObject 去掉 API 前缀后的资源路径
func NormalizeObject(object string) string {
	normalized := strings.TrimSpace(object)
	if !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}
	if normalized == apiPrefix {
		return "/"
	}
	return strings.TrimPrefix(normalized, apiPrefix)
}

// NormalizeAction 统一为大写 HTTP 方法
func NormalizeAction(action string) string {
	return strings.ToUpper(strings.TrimSpace(action))
}
