package users

// roleCatalog is the fixed set of platform roles. Role definitions ship with
// the binary rather than living in the database.
var roleCatalog = []RoleDTO{
	{
		ID:          "SysAdmin",
		Name:        "System Administrator",
		Description: "Full system access and user management",
		Permissions: []string{
			"users:*",
			"clusters:*",
			"namespaces:*",
			"system:*",
			"vulnerabilities:*",
			"sbom:*",
			"secrets:*",
		},
	},
	{
		ID:          "ClusterAdmin",
		Name:        "Cluster Administrator",
		Description: "Cluster-level access and limited user management",
		Permissions: []string{
			"users:read",
			"users:manage:assigned",
			"clusters:assigned",
			"namespaces:assigned",
			"vulnerabilities:assigned",
			"sbom:assigned",
			"secrets:assigned",
		},
	},
	{
		ID:          "Developer",
		Name:        "Developer",
		Description: "Namespace-level read access",
		Permissions: []string{
			"namespaces:assigned",
			"vulnerabilities:read:assigned",
			"sbom:read:assigned",
			"secrets:read:assigned",
		},
	},
}

// Roles returns a copy of the role catalog.
func Roles() []RoleDTO {
	out := make([]RoleDTO, len(roleCatalog))
	for i, role := range roleCatalog {
		out[i] = role
		out[i].Permissions = append([]string(nil), role.Permissions...)
	}
	return out
}
