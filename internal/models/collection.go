package models

// Collection is a node in the client-facing photo tree. Collections form a
// self-referential hierarchy through ParentID; a child never belongs to a
// different project than its parent. Deletion is leaf-only: the service
// refuses to remove a collection that still owns photos or subcollections.
type Collection struct {
	BaseModel

	Name              string  `gorm:"not null" json:"name"`
	OwnerID           string  `gorm:"type:uuid;not null;index" json:"owner_id"`
	ProjectID         *string `gorm:"type:uuid;index" json:"project_id"`
	ParentID          *string `gorm:"type:uuid;index" json:"parent_id"`
	IsClientSelection bool    `gorm:"default:false" json:"is_client_selection"`

	Owner          *User        `gorm:"foreignKey:OwnerID" json:"-"`
	Project        *Project     `json:"project,omitempty"`
	Parent         *Collection  `gorm:"foreignKey:ParentID" json:"-"`
	Subcollections []Collection `gorm:"foreignKey:ParentID" json:"subcollections,omitempty"`
	Folders        []Folder     `gorm:"foreignKey:CollectionID" json:"folders,omitempty"`
	Photos         []Photo      `gorm:"foreignKey:CollectionID" json:"photos,omitempty"`
}
