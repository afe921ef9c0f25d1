package models

// Project is a client engagement inside a company. Creating a project also
// creates its root collection and derives the client link, both persisted in
// the same transaction.
type Project struct {
	BaseModel

	Name           string  `gorm:"not null" json:"name"`
	CompanyID      string  `gorm:"type:uuid;not null;index" json:"company_id"`
	OwnerID        string  `gorm:"type:uuid;not null" json:"owner_id"`
	CurrentStageID *string `gorm:"type:uuid;index" json:"current_stage_id"`
	ClientLink     string  `json:"client_link"`

	Company      *Company     `json:"company,omitempty"`
	Owner        *User        `gorm:"foreignKey:OwnerID" json:"-"`
	CurrentStage *Stage       `gorm:"foreignKey:CurrentStageID" json:"current_stage,omitempty"`
	Collections  []Collection `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"collections,omitempty"`
}
