package model

import "time"

const (
	ShareStatusActive  = 0
	ShareStatusExpired = 1
)

// FileShare is the older private link keyed by a random share url.
type FileShare struct {
	ID uint64 `gorm:"primaryKey" json:"id"`

	ShareURL string `gorm:"column:share_url;size:64;uniqueIndex;not null" json:"shareUrl"`

	FileID uint64 `gorm:"column:file_id;not null;index" json:"fileId"`
	File   *File  `gorm:"foreignKey:FileID;references:ID" json:"-"`

	UserID uint64 `gorm:"column:user_id;not null;index" json:"-"`

	PasswordHash  string     `gorm:"column:password_hash;size:255;not null;default:''" json:"-"`
	ExpiresAt     *time.Time `gorm:"column:expires_at" json:"expiresAt"`
	DownloadCount int        `gorm:"column:download_count;not null;default:0" json:"downloadCount"`
	MaxDownloads  *int       `gorm:"column:max_downloads" json:"maxDownloads"`
	Status        int        `gorm:"column:status;not null;default:0" json:"status"` // 0 正常 1 过期

	CreatedAt time.Time `json:"createdAt"`
}

// TableName returns the database table name.
func (FileShare) TableName() string {
	return "file_share"
}

// HasPassword reports whether a password is required.
func (s *FileShare) HasPassword() bool {
	return s.PasswordHash != ""
}
