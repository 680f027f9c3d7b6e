package model

import "time"

const (
	TrashItemFile   = "file"
	TrashItemFolder = "folder"
)

// TrashItem records where a removed file or folder used to live.
type TrashItem struct {
	ID uint64 `gorm:"primaryKey" json:"id"`

	ItemType     string `gorm:"column:item_type;type:varchar(20);not null" json:"type"`
	ItemID       uint64 `gorm:"column:item_id;not null" json:"itemId"`
	Name         string `gorm:"column:name;size:255;not null" json:"name"`
	OriginalPath string `gorm:"column:original_path;size:500;not null" json:"originalPath"`
	Size         int64  `gorm:"column:size;not null;default:0" json:"size"`

	UserID uint64 `gorm:"column:user_id;not null;index" json:"-"`

	DeletedAt time.Time `gorm:"column:deleted_at;not null;index" json:"deletedAt"`
}

// TableName returns the database table name.
func (TrashItem) TableName() string {
	return "trash_items"
}
