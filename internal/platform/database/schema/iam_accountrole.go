package schema

// IAMAccountRoleTable represents the 'iam.accountrole' join table
type IAMAccountRoleTable struct {
	Table     string
	AccountID string
	RoleID    string
}

// IAMAccountRole is the schema definition for iam.accountrole
var IAMAccountRole = IAMAccountRoleTable{
	Table:     "iam.accountrole",
	AccountID: "accountid",
	RoleID:    "roleid",
}
