package model

import (
	"time"

	"gorm.io/datatypes"
)

// File buckets derived from the MIME type.
const (
	TypeImage        = "image"
	TypeVideo        = "video"
	TypeAudio        = "audio"
	TypeDocument     = "document"
	TypeSpreadsheet  = "spreadsheet"
	TypePresentation = "presentation"
	TypeArchive      = "archive"
	TypeText         = "text"
	TypeOther        = "other"
)

type File struct {
	ID uint64 `gorm:"primaryKey" json:"id"`

	Name         string `gorm:"column:name;size:255;not null;uniqueIndex:uk_file_owner_folder_name,priority:3" json:"name"`
	OriginalName string `gorm:"column:original_name;size:255;not null" json:"originalName"`
	StoredName   string `gorm:"column:stored_name;size:255;not null" json:"-"`

	Size     int64  `gorm:"column:size;not null" json:"size"`
	Type     string `gorm:"column:type;type:varchar(50);not null;index" json:"type"`
	MimeType string `gorm:"column:mime_type;type:varchar(100);not null" json:"mimeType"`

	FolderID uint64  `gorm:"column:folder_id;not null;index;uniqueIndex:uk_file_owner_folder_name,priority:2" json:"folderId"`
	Folder   *Folder `gorm:"foreignKey:FolderID;references:ID" json:"-"`

	UserID uint64 `gorm:"column:user_id;not null;index;uniqueIndex:uk_file_owner_folder_name,priority:1" json:"-"`

	// Path and ThumbnailPath are object keys inside the blob store.
	Path          string `gorm:"column:path;size:500;not null" json:"-"`
	ThumbnailPath string `gorm:"column:thumbnail_path;size:500;not null;default:''" json:"-"`

	Tags datatypes.JSONType[[]string] `gorm:"column:tags" json:"tags"`

	UploadedAt time.Time `gorm:"column:uploaded_at;autoCreateTime" json:"uploadedAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// TableName returns the database table name.
func (File) TableName() string {
	return "files"
}

// HasThumbnail reports whether a thumbnail object was recorded.
func (f *File) HasThumbnail() bool {
	return f.ThumbnailPath != ""
}

// TagList returns the stored tags, never nil.
func (f *File) TagList() []string {
	tags := f.Tags.Data()
	if tags == nil {
		return []string{}
	}
	return tags
}
