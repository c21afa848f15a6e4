package schema

// IAMAccountTable represents the 'iam.account' table
type IAMAccountTable struct {
	Table               string
	ID                  string
	Email               string
	MobileNumber        string
	FirstName           string
	LastName            string
	Password            string
	Provider            string
	IsAdmin             string
	NeedsPasswordChange string
	PasswordChangedAt   string
	CreatedAt           string
	UpdatedAt           string
}

// IAMAccount is the schema definition for iam.account
var IAMAccount = IAMAccountTable{
	Table:               "iam.account",
	ID:                  "id",
	Email:               "email",
	MobileNumber:        "mobilenumber",
	FirstName:           "firstname",
	LastName:            "lastname",
	Password:            "passwordhash",
	Provider:            "provider",
	IsAdmin:             "isadmin",
	NeedsPasswordChange: "needspasswordchange",
	PasswordChangedAt:   "passwordchangedat",
	CreatedAt:           "createdat",
	UpdatedAt:           "updatedat",
}

// Columns returns all standard column names
func (t IAMAccountTable) Columns() []string {
	return []string{
		t.ID, t.Email, t.MobileNumber, t.FirstName, t.LastName, t.Password,
		t.Provider, t.IsAdmin, t.NeedsPasswordChange, t.PasswordChangedAt,
		t.CreatedAt, t.UpdatedAt,
	}
}
