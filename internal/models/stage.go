package models

// Stage is an ordered pipeline step. Within a company the Order values are
// unique and dense, starting at 1; the stage service maintains that
// invariant by shifting neighbours on insert, reorder, and delete.
type Stage struct {
	BaseModel

	CompanyID   string `gorm:"type:uuid;not null;uniqueIndex:idx_stages_company_order" json:"company_id"`
	Name        string `gorm:"not null" json:"name"`
	Order       int    `gorm:"column:sort_order;not null;uniqueIndex:idx_stages_company_order" json:"order"`
	CreatedByID string `gorm:"type:uuid;not null" json:"created_by"`

	Company   *Company `json:"company,omitempty"`
	CreatedBy *User    `gorm:"foreignKey:CreatedByID" json:"-"`
}
