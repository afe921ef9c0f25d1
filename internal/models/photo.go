package models

// Photo is an uploaded file inside a collection, optionally placed in a
// folder. FilePath records where the blob lives on the media store; removing
// a photo deletes the row first and the blob best-effort afterwards.
type Photo struct {
	BaseModel

	FileName    string `gorm:"not null" json:"file_name"`
	FilePath    string `gorm:"not null" json:"file_path"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`

	UploadedByID string  `gorm:"type:uuid;not null;index" json:"uploaded_by"`
	CollectionID string  `gorm:"type:uuid;not null;index" json:"collection_id"`
	FolderID     *string `gorm:"type:uuid;index" json:"folder_id"`

	IsSelected bool `gorm:"default:false" json:"is_selected"`

	UploadedBy *User       `gorm:"foreignKey:UploadedByID" json:"-"`
	Collection *Collection `json:"-"`
	Folder     *Folder     `gorm:"foreignKey:FolderID;constraint:OnDelete:SET NULL" json:"-"`
}
