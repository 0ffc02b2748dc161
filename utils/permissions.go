// utils/permissions.go
package utils

import (
	"github.com/gin-gonic/gin"
)

// Permission names gate route groups. Roles map to permission sets once,
// instead of per-route role checks copied into every handler.
const (
	PermManageCatalog   = "manage:catalog"
	PermManageStaff     = "manage:staff"
	PermManageInventory = "manage:inventory"
	PermManageCustomers = "manage:customers"
	PermManageBilling   = "manage:billing"
	PermManageProfile   = "manage:profile"
	PermViewDashboard   = "view:dashboard"
)

var rolePermissions = map[string]map[string]bool{
	"owner": {
		PermManageCatalog:   true,
		PermManageStaff:     true,
		PermManageInventory: true,
		PermManageCustomers: true,
		PermManageBilling:   true,
		PermManageProfile:   true,
		PermViewDashboard:   true,
	},
	"staff": {
		PermManageCustomers: true,
		PermManageInventory: true,
		PermViewDashboard:   true,
	},
}

// RequirePermission allows the request through when the authenticated
// principal's role grants the named permission. Must run after
// AuthMiddleware.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			c.AbortWithStatusJSON(401, gin.H{"error": "Role not found in context"})
			return
		}
		roleName, ok := role.(string)
		if !ok || !rolePermissions[roleName][permission] {
			c.AbortWithStatusJSON(403, gin.H{"error": "Insufficient permissions"})
			return
		}
		c.Next()
	}
}
