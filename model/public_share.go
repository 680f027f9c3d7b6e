package model

import "time"

// PublicShare is an anonymous link to a single file.
type PublicShare struct {
	ID uint64 `gorm:"primaryKey" json:"id"`

	FileID uint64 `gorm:"column:file_id;not null;index" json:"fileId"`
	File   *File  `gorm:"foreignKey:FileID;references:ID" json:"file,omitempty"`

	UserID uint64 `gorm:"column:user_id;not null;index" json:"-"`

	Token        string `gorm:"column:token;type:varchar(64);not null;uniqueIndex" json:"token"`
	PasswordHash string `gorm:"column:password_hash;type:varchar(255);not null;default:''" json:"-"`

	ExpiresAt     *time.Time `gorm:"column:expires_at" json:"expiresAt"`
	AllowDownload bool       `gorm:"column:allow_download;not null" json:"allowDownload"`
	AllowPreview  bool       `gorm:"column:allow_preview;not null" json:"allowPreview"`
	MaxDownloads  *int       `gorm:"column:max_downloads" json:"maxDownloads"`
	DownloadCount int        `gorm:"column:download_count;not null;default:0" json:"downloadCount"`
	ViewCount     int        `gorm:"column:view_count;not null;default:0" json:"viewCount"`
	Description   string     `gorm:"column:description;type:text" json:"description"`
	IsActive      bool       `gorm:"column:is_active;not null;default:true" json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName returns the database table name.
func (PublicShare) TableName() string {
	return "public_shares"
}

// HasPassword reports whether the link is password protected.
func (s *PublicShare) HasPassword() bool {
	return s.PasswordHash != ""
}

// PastExpiry reports whether the expiry time has passed.
func (s *PublicShare) PastExpiry(now time.Time) bool {
	return s.ExpiresAt != nil && now.After(*s.ExpiresAt)
}

// CapReached reports whether the download cap is used up.
func (s *PublicShare) CapReached() bool {
	return s.MaxDownloads != nil && s.DownloadCount >= *s.MaxDownloads
}

// IsExpired reports whether the link can no longer be used.
func (s *PublicShare) IsExpired(now time.Time) bool {
	return !s.IsActive || s.PastExpiry(now) || s.CapReached()
}
