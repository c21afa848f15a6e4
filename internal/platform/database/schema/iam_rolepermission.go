package schema

// IAMRolePermissionTable represents the 'iam.rolepermission' join table
type IAMRolePermissionTable struct {
	Table        string
	RoleID       string
	PermissionID string
}

// IAMRolePermission is the schema definition for iam.rolepermission
var IAMRolePermission = IAMRolePermissionTable{
	Table:        "iam.rolepermission",
	RoleID:       "roleid",
	PermissionID: "permissionid",
}
