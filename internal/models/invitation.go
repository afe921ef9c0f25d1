package models

// Invitation binds an email address to a role for onboarding. The token is
// single-use: accepting the invitation deletes the row, and re-inviting the
// same email replaces any previous row.
type Invitation struct {
	BaseModel

	Email   string `gorm:"uniqueIndex;not null" json:"email"`
	Role    Role   `gorm:"not null" json:"role"`
	Token   string `gorm:"uniqueIndex;not null" json:"-"`
	OwnerID string `gorm:"type:uuid;not null;index" json:"owner_id"`

	Owner *User `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"owner,omitempty"`
}
