package authz

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}
	return svc
}

func mustEnforce(t *testing.T, svc *Service, adminID uint, obj, act string) bool {
	t.Helper()
	allow, err := svc.EnforceAdmin(adminID, obj, act)
	if err != nil {
		t.Fatalf("enforce %s %s failed: %v", act, obj, err)
	}
	return allow
}

func TestMarketingRoleCoupons(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.SetAdminRoles(1, []string{"marketing"}); err != nil {
		t.Fatalf("set admin roles failed: %v", err)
	}

	if !mustEnforce(t, svc, 1, "/api/v1/admin/coupons/42", "put") {
		t.Fatalf("marketing should update coupons")
	}
	if !mustEnforce(t, svc, 1, "/api/v1/admin/coupons/42/usages/purge", "POST") {
		t.Fatalf("marketing should purge usages")
	}
	if !mustEnforce(t, svc, 1, "/api/v1/admin/orders", "GET") {
		t.Fatalf("marketing inherits read access")
	}
	if mustEnforce(t, svc, 1, "/api/v1/admin/products/7", "DELETE") {
		t.Fatalf("marketing should not delete products")
	}
}

func TestAnalystIsReadOnlyOnReports(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.SetAdminRoles(2, []string{"role:analyst"}); err != nil {
		t.Fatalf("set admin roles failed: %v", err)
	}
	if !mustEnforce(t, svc, 2, "/api/v1/admin/reports/sales", "GET") {
		t.Fatalf("analyst should read reports")
	}
	if mustEnforce(t, svc, 2, "/api/v1/admin/coupons", "GET") {
		t.Fatalf("analyst does not inherit readonly_auditor")
	}
}

func TestSetAdminRolesOverrideAndValidate(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.SetAdminRoles(3, []string{"catalog_manager"}); err != nil {
		t.Fatalf("set first role failed: %v", err)
	}
	if err := svc.SetAdminRoles(3, []string{"analyst"}); err != nil {
		t.Fatalf("set second role failed: %v", err)
	}
	roles, err := svc.GetAdminRoles(3)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "analyst" {
		t.Fatalf("roles want [analyst] got %v", roles)
	}
	if mustEnforce(t, svc, 3, "/admin/products", "POST") {
		t.Fatalf("old role permission should be removed")
	}

	if err := svc.SetAdminRoles(3, []string{"root"}); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("unknown role want ErrUnknownRole got %v", err)
	}
	if got := svc.ListRoles(); len(got) != 4 {
		t.Fatalf("want 4 builtin roles got %v", got)
	}
}

func TestNormalizeObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "/api/v1/admin/orders/:id", want: "/admin/orders/:id"},
		{in: "admin/orders", want: "/admin/orders"},
		{in: "/api/v1", want: "/"},
		{in: "", want: "/"},
	}
	for _, item := range cases {
		if got := NormalizeObject(item.in); got != item.want {
			t.Fatalf("normalize object in=%q want=%q got=%q", item.in, item.want, got)
		}
	}
}
