package models

import "gorm.io/datatypes"

// Company is the tenant boundary. Every stage, project, and (through its
// project) every collection and photo resolves to exactly one company.
type Company struct {
	BaseModel

	Name     string         `gorm:"not null" json:"name"`
	OwnerID  string         `gorm:"type:uuid;not null;index" json:"owner_id"`
	Settings datatypes.JSON `json:"settings"`

	Members  []User    `gorm:"foreignKey:CompanyID" json:"members,omitempty"`
	Stages   []Stage   `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE" json:"stages,omitempty"`
	Projects []Project `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE" json:"projects,omitempty"`
}
