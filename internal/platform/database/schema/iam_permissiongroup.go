package schema

// IAMPermissionGroupTable represents the 'iam.permissiongroup' table
type IAMPermissionGroupTable struct {
	Table     string
	ID        string
	Name      string
	CreatedAt string
}

// IAMPermissionGroup is the schema definition for iam.permissiongroup
var IAMPermissionGroup = IAMPermissionGroupTable{
	Table:     "iam.permissiongroup",
	ID:        "id",
	Name:      "name",
	CreatedAt: "createdat",
}

func (t IAMPermissionGroupTable) Columns() []string {
	return []string{t.ID, t.Name, t.CreatedAt}
}
