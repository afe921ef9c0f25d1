package models

// Folder groups photos inside a collection. Folders nest within a single
// collection; the (name, collection, parent) triple is unique.
type Folder struct {
	BaseModel

	Name         string  `gorm:"not null;uniqueIndex:idx_folders_name_collection_parent" json:"name"`
	CollectionID string  `gorm:"type:uuid;not null;uniqueIndex:idx_folders_name_collection_parent" json:"collection_id"`
	ParentID     *string `gorm:"type:uuid;uniqueIndex:idx_folders_name_collection_parent" json:"parent_id"`

	Collection *Collection `json:"-"`
	Parent     *Folder     `gorm:"foreignKey:ParentID" json:"-"`
	Photos     []Photo     `gorm:"foreignKey:FolderID" json:"photos,omitempty"`
}
