package enums

import "fmt"

// UserRole is the platform-level role assigned to a user.
type UserRole string

const (
	UserRoleSysAdmin     UserRole = "SysAdmin"
	UserRoleClusterAdmin UserRole = "ClusterAdmin"
	UserRoleDeveloper    UserRole = "Developer"
)

var validUserRoles = []UserRole{
	UserRoleSysAdmin,
	UserRoleClusterAdmin,
	UserRoleDeveloper,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("role must be one of: SysAdmin, ClusterAdmin, Developer")
}
