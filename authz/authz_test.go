package authz

import (
	"testing"

	"drilldeck/dbtypes"
)

func userWithRole(role string) *dbtypes.CurrentUser {
	return &dbtypes.CurrentUser{Role: role}
}

func TestRouteForUser(t *testing.T) {
	cases := []struct {
		name string
		user *dbtypes.CurrentUser
		want Route
	}{
		{name: "signed-out", user: nil, want: RouteUnauthenticated},
		{name: "admin", user: userWithRole(dbtypes.RoleAdmin), want: RouteAdmin},
		{name: "employee", user: userWithRole(dbtypes.RoleUser), want: RouteEmployee},
		{name: "no-role", user: userWithRole(""), want: RouteUnauthenticated},
		{name: "unknown-role", user: userWithRole("superuser"), want: RouteUnauthenticated},
	}

	for _, tc := range cases {
		if got := RouteForUser(tc.user); got != tc.want {
			t.Errorf("%s: RouteForUser = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCapabilitiesForUser(t *testing.T) {
	if caps := CapabilitiesForUser(nil); caps.ViewEmployeeArea || caps.ViewAdminArea {
		t.Errorf("Signed-out user got capabilities %+v, want none", caps)
	}

	caps := CapabilitiesForUser(userWithRole(dbtypes.RoleUser))
	if !caps.ViewEmployeeArea || caps.ViewAdminArea {
		t.Errorf("Employee got capabilities %+v, want employee area only", caps)
	}

	caps = CapabilitiesForUser(userWithRole(dbtypes.RoleAdmin))
	if caps.ViewEmployeeArea || !caps.ViewAdminArea {
		t.Errorf("Admin got capabilities %+v, want admin area only", caps)
	}
}
