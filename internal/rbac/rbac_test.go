package rbac

import (
	"testing"

	"github.com/pulseboard/pulseboard-backend/internal/domain"
)

func TestHasPermission(t *testing.T) {
	cases := []struct {
		userRole     string
		requiredRole string
		want         bool
	}{
		{domain.RoleOwner, domain.RoleOwner, true},
		{domain.RoleOwner, domain.RoleManager, true},
		{domain.RoleOwner, domain.RoleMember, true},
		{domain.RoleManager, domain.RoleOwner, false},
		{domain.RoleManager, domain.RoleManager, true},
		{domain.RoleManager, domain.RoleMember, true},
		{domain.RoleMember, domain.RoleManager, false},
		{domain.RoleMember, domain.RoleMember, true},
		{"", domain.RoleMember, false},
		{domain.RoleOwner, "unknown", false},
	}

	for _, tc := range cases {
		if got := HasPermission(tc.userRole, tc.requiredRole); got != tc.want {
			t.Fatalf("HasPermission(%q, %q) = %v, want %v", tc.userRole, tc.requiredRole, got, tc.want)
		}
	}
}

func TestRequire(t *testing.T) {
	if err := Require(domain.RoleManager, domain.RoleManager); err != nil {
		t.Fatalf("Require: %v", err)
	}
	if err := Require(domain.RoleMember, domain.RoleManager); err == nil {
		t.Fatalf("Require: expected error for member < manager")
	}
}
