package model

import "time"

type Folder struct {
	ID uint64 `gorm:"primaryKey" json:"id"`

	Name string `gorm:"column:name;size:255;not null;uniqueIndex:uk_folder_owner_parent_name,priority:3" json:"name"`

	ParentID *uint64 `gorm:"column:parent_id;index" json:"parentId"`
	Parent   *Folder `gorm:"foreignKey:ParentID;references:ID" json:"-"`

	// ParentKey mirrors ParentID with 0 for root folders so the sibling
	// unique index also covers the root level (NULLs never collide).
	ParentKey uint64 `gorm:"column:parent_key;not null;default:0;uniqueIndex:uk_folder_owner_parent_name,priority:2" json:"-"`

	UserID uint64 `gorm:"column:user_id;not null;index;uniqueIndex:uk_folder_owner_parent_name,priority:1" json:"-"`

	IsParent bool `gorm:"column:is_parent;not null;default:false" json:"isParent"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName returns the database table name.
func (Folder) TableName() string {
	return "folders"
}

// SetParent updates ParentID, ParentKey and IsParent together.
func (f *Folder) SetParent(parentID *uint64) {
	f.ParentID = parentID
	if parentID == nil {
		f.ParentKey = 0
		f.IsParent = true
		return
	}
	f.ParentKey = *parentID
	f.IsParent = false
}

/*
ParentID 为指针: 根目录没有父级, 对应 NULL.
ParentKey 只服务于唯一索引, 不对外输出.
*/
