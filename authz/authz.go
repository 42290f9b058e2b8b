// Package authz is the single place that turns a CurrentUser into an
// area decision.  Handlers consume the capability set rather than
// re-deriving role checks.
package authz

import "drilldeck/dbtypes"

// Route is the top-level area the UI mounts for a user.
type Route int

const (
	RouteUnauthenticated Route = iota
	RouteEmployee
	RouteAdmin
)

func (r Route) String() string {
	switch r {
	case RouteEmployee:
		return "employee"
	case RouteAdmin:
		return "admin"
	}
	return "unauthenticated"
}

// RouteForUser maps a resolved user to exactly one route.  Any role
// outside the known set is treated as unauthenticated.
func RouteForUser(user *dbtypes.CurrentUser) Route {
	if user == nil {
		return RouteUnauthenticated
	}
	switch user.Role {
	case dbtypes.RoleAdmin:
		return RouteAdmin
	case dbtypes.RoleUser:
		return RouteEmployee
	}
	return RouteUnauthenticated
}

// Capabilities is what a user may see.
type Capabilities struct {
	ViewEmployeeArea bool
	ViewAdminArea    bool
}

func CapabilitiesForUser(user *dbtypes.CurrentUser) Capabilities {
	switch RouteForUser(user) {
	case RouteEmployee:
		return Capabilities{ViewEmployeeArea: true}
	case RouteAdmin:
		return Capabilities{ViewAdminArea: true}
	}
	return Capabilities{}
}
