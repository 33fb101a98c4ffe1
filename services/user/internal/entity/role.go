package entity

const (
	RoleAdminName  = "Admin"
	RoleMemberName = "Member"

	RoleAdminID  = "f22bce18-06ec-474a-b9af-a9de2a7b8263"
	RoleMemberID = "11d14a89-3a93-4d39-a94f-82b7838b0b7c"

	UserAdminID  = "c41a7761-6645-4e2c-b99d-f9e767b9ac77"
	UserMemberID = "065e903e-6f7a-4fd0-9dd1-cc3f5b5bcbd4"
)

type Role struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsDefault bool   `json:"isDefault"`
	IsSystem  bool   `json:"isSystem"`
}
