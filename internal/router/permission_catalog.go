package router

import (
	"cmp"
	"net/http"
	"slices"
	"strings"

	"github.com/storefront-next/internal/authz"

	"github.com/gin-gonic/gin"
)

const adminRoutePrefix = "/api/v1/admin/"

// permissionEntry 管理端可授权的一条接口
type permissionEntry struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

// permissionCatalog 从路由表推导权限清单，登录接口不参与授权
func permissionCatalog(routes gin.RoutesInfo) []permissionEntry {
	entries := make([]permissionEntry, 0, len(routes))
	seen := make(map[string]struct{}, len(routes))
	for _, route := range routes {
		method := strings.ToUpper(strings.TrimSpace(route.Method))
		switch {
		case method == "", method == http.MethodOptions, method == http.MethodHead:
			continue
		case !strings.HasPrefix(route.Path, adminRoutePrefix), route.Path == adminRoutePrefix+"login":
			continue
		}
		object := authz.NormalizeObject(route.Path)
		permission := method + ":" + object
		if _, dup := seen[permission]; dup {
			continue
		}
		seen[permission] = struct{}{}
		entries = append(entries, permissionEntry{
			Module:     permissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}
	slices.SortFunc(entries, func(a, b permissionEntry) int {
		return cmp.Or(
			cmp.Compare(a.Module, b.Module),
			cmp.Compare(a.Object, b.Object),
			cmp.Compare(a.Method, b.Method),
		)
	})
	return entries
}

// permissionModule /admin/coupons/:id -> coupons；非 admin 对象取首段
func permissionModule(object string) string {
	segments := strings.Split(strings.Trim(strings.TrimSpace(object), "/"), "/")
	switch {
	case segments[0] == "":
		return "system"
	case segments[0] != "admin" || len(segments) == 1:
		return segments[0]
	default:
		return segments[1]
	}
}
