package auth

import (
	"strings"

	"restaurant-order-service/internal/model"
)

var (
	adminOnly    = []model.Role{model.RoleAdmin}
	kitchenRoles = []model.Role{model.RoleChef, model.RoleAdmin}
	staffRoles   = []model.Role{model.RoleStaff, model.RoleAdmin}
	riderRoles   = []model.Role{model.RoleRider, model.RoleAdmin}
	anyRole      = []model.Role{model.RoleCustomer, model.RoleStaff, model.RoleChef, model.RoleRider, model.RoleAdmin}
)

// apiRoleMap lists who may call a path prefix. A key may be prefixed with a method to
// narrow it. The longest matching prefix wins, method specific keys win ties.
var apiRoleMap = map[string][]model.Role{
	"/api/orders":        anyRole,
	"POST /api/orders":   {model.RoleCustomer, model.RoleAdmin},
	"/api/kitchen":       kitchenRoles,
	"/api/rider":         riderRoles,
	"/api/staff":         staffRoles,
	"/api/inventory":     kitchenRoles,
	"GET /api/inventory": {model.RoleChef, model.RoleStaff, model.RoleAdmin},
	"/api/admin":         adminOnly,
	"/api/me":            anyRole,
	"/ws":                anyRole,
}

// AllowedRoles returns the roles permitted on path, nil when the path is not restricted.
func AllowedRoles(path string, method string) []model.Role {
	method = strings.ToUpper(strings.TrimSpace(method))

	var bestPath string
	var bestRoles []model.Role
	var bestMethodSpecific bool

	for key, roles := range apiRoleMap {
		keyPath := key
		methodSpecific := false
		if strings.Contains(key, " ") {
			parts := strings.SplitN(key, " ", 2)
			keyMethod := strings.ToUpper(strings.TrimSpace(parts[0]))
			keyPath = strings.TrimSpace(parts[1])
			methodSpecific = true
			if method == "" || method != keyMethod {
				continue
			}
		}

		if !hasPathPrefix(path, keyPath) {
			continue
		}

		if bestRoles == nil || len(keyPath) > len(bestPath) || (len(keyPath) == len(bestPath) && methodSpecific && !bestMethodSpecific) {
			bestPath = keyPath
			bestMethodSpecific = methodSpecific
			bestRoles = roles
		}
	}

	return bestRoles
}

// Allowed reports whether role may call path.
func Allowed(role model.Role, path string, method string) bool {
	roles := AllowedRoles(path, method)
	if roles == nil {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// hasPathPrefix matches whole segments so /api/staffing does not match /api/staff.
func hasPathPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}
