package schema

// IAMRoleTable represents the 'iam.role' table
type IAMRoleTable struct {
	Table     string
	ID        string
	Name      string
	CreatedAt string
	UpdatedAt string
}

// IAMRole is the schema definition for iam.role
var IAMRole = IAMRoleTable{
	Table:     "iam.role",
	ID:        "id",
	Name:      "name",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

func (t IAMRoleTable) Columns() []string {
	return []string{t.ID, t.Name, t.CreatedAt, t.UpdatedAt}
}
