package schema

// IAMPermissionTable represents the 'iam.permission' table
type IAMPermissionTable struct {
	Table     string
	ID        string
	Name      string
	GroupID   string
	CreatedAt string
}

// IAMPermission is the schema definition for iam.permission
var IAMPermission = IAMPermissionTable{
	Table:     "iam.permission",
	ID:        "id",
	Name:      "name",
	GroupID:   "groupid",
	CreatedAt: "createdat",
}

func (t IAMPermissionTable) Columns() []string {
	return []string{t.ID, t.Name, t.GroupID, t.CreatedAt}
}
