package schema

// IAMAccountPermissionTable represents the 'iam.accountpermission' join table
// holding permissions granted directly to an account.
type IAMAccountPermissionTable struct {
	Table        string
	AccountID    string
	PermissionID string
}

// IAMAccountPermission is the schema definition for iam.accountpermission
var IAMAccountPermission = IAMAccountPermissionTable{
	Table:        "iam.accountpermission",
	AccountID:    "accountid",
	PermissionID: "permissionid",
}
