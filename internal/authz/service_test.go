package authz

import (
	"fmt"
	"strings"
	"testing"

	"github.com/shopizen/internal/models"

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

func TestEnforceIdentityByRole(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	admin := &models.Identity{ID: "a1", Email: "admin@shop.test", Role: "admin"}
	user := &models.Identity{ID: "u1", Email: "user@shop.test", Role: "user"}

	allow, err := svc.EnforceIdentity(admin, "/api/v1/admin/orders/u1/ORD-1/items/IT-1/advance", "post")
	if err != nil {
		t.Fatalf("enforce admin failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected admin allowed")
	}

	allow, err = svc.EnforceIdentity(user, "/api/v1/admin/orders", "GET")
	if err != nil {
		t.Fatalf("enforce user failed: %v", err)
	}
	if allow {
		t.Fatalf("expected user denied")
	}

	allow, err = svc.EnforceIdentity(nil, "/api/v1/admin/orders", "GET")
	if err != nil || allow {
		t.Fatalf("expected guest denied, allow=%v err=%v", allow, err)
	}
}

func TestSetAccountRolesGrantsSupportView(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	user := &models.Identity{ID: "u7", Role: "user"}
	if err := svc.SetAccountRoles("u7", []string{"support"}); err != nil {
		t.Fatalf("set account roles failed: %v", err)
	}
	roles, err := svc.GetAccountRoles("u7")
	if err != nil {
		t.Fatalf("get account roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:support" {
		t.Fatalf("roles want [role:support], got=%v", roles)
	}

	allow, err := svc.EnforceIdentity(user, "/api/v1/admin/orders", "GET")
	if err != nil || !allow {
		t.Fatalf("expected support view allowed, allow=%v err=%v", allow, err)
	}
	allow, err = svc.EnforceIdentity(user, "/api/v1/admin/orders/u1/ORD-1/items/IT-1/cancel", "POST")
	if err != nil || allow {
		t.Fatalf("expected support write denied, allow=%v err=%v", allow, err)
	}
}

func TestBootstrapIsIdempotent(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("second bootstrap failed: %v", err)
	}
	roles, err := svc.ListRoles()
	if err != nil {
		t.Fatalf("list roles failed: %v", err)
	}
	want := []string{"role:admin", "role:support", "role:user"}
	if strings.Join(roles, ",") != strings.Join(want, ",") {
		t.Fatalf("roles want %v got %v", want, roles)
	}
	policies, err := svc.GetRolePolicies("admin")
	if err != nil {
		t.Fatalf("get admin policies failed: %v", err)
	}
	if len(policies) != 1 || policies[0].Object != "/admin/*" {
		t.Fatalf("unexpected admin policies: %+v", policies)
	}
}

func TestGrantAndRevokeRolePolicy(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("user", "/admin/orders", "GET"); err != nil {
		t.Fatalf("grant failed: %v", err)
	}
	allow, _ := svc.Enforce("role:user", "/api/v1/admin/orders", "GET")
	if !allow {
		t.Fatalf("expected granted policy to allow")
	}
	if err := svc.RevokeRolePolicy("user", "/admin/orders", "GET"); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	allow, _ = svc.Enforce("role:user", "/api/v1/admin/orders", "GET")
	if allow {
		t.Fatalf("expected revoked policy to deny")
	}
}

func TestNormalizeObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "/api/v1/admin/orders/:owner", want: "/admin/orders/:owner"},
		{in: "admin/orders", want: "/admin/orders"},
		{in: "/api/v1", want: "/"},
		{in: "", want: "/"},
	}
	for _, item := range cases {
		if got := NormalizeObject(item.in); got != item.want {
			t.Fatalf("normalize object failed, in=%q want=%q got=%q", item.in, item.want, got)
		}
	}
}
