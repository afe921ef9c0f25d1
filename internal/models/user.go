package models

// Role enumerates the studio roles a user can hold.
type Role string

const (
	RoleOwner        Role = "owner"
	RoleAdmin        Role = "admin"
	RolePhotographer Role = "photographer"
	RoleRetoucher    Role = "retoucher"
)

// Valid reports whether the role is one of the known studio roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RolePhotographer, RoleRetoucher:
		return true
	}
	return false
}

// User describes platform users. A user optionally belongs to a company;
// the company reference is how every tenant check resolves.
type User struct {
	BaseModel

	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`

	Role Role `gorm:"not null;default:owner" json:"role"`

	CompanyID *string  `gorm:"type:uuid;index" json:"company_id"`
	Company   *Company `json:"company,omitempty"`
}
