package dto

import (
	"bytes"
	"encoding/json"
)

// Optional records whether a JSON field was present, so null can be told
// apart from absent.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"` // username or email
	Password string `json:"password"`
}

type FriendSearchRequest struct {
	UserCode string `json:"userCode"`
}

type FriendRequestRequest struct {
	FriendID uint64 `json:"friendId"`
}

type CreateFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *uint64 `json:"parentId"`
}

type UpdateFolderRequest struct {
	Name     *string          `json:"name"`
	ParentID Optional[uint64] `json:"parentId"`
}

type MoveFolderRequest struct {
	ParentID *uint64 `json:"parentId"`
}

type RenameFileRequest struct {
	Name string `json:"name"`
}

type MoveFileRequest struct {
	FolderID uint64 `json:"folderId"`
}

type BatchMoveRequest struct {
	FileIDs  []uint64 `json:"fileIds"`
	FolderID uint64   `json:"folderId"`
}

type BatchDeleteRequest struct {
	FileIDs []uint64 `json:"fileIds"`
}

type UpdateTagsRequest struct {
	Tags []string `json:"tags"`
}

type SearchFilesRequest struct {
	Query     string  `form:"query"`
	Type      string  `form:"type"`
	FileType  string  `form:"fileType"`
	FolderID  *uint64 `form:"folderId"`
	SortBy    string  `form:"sortBy"`
	SortOrder string  `form:"sortOrder"`
	Page      int     `form:"page"`
	Limit     int     `form:"limit"`
}

type TrashIDsRequest struct {
	IDs []uint64 `json:"ids"`
}

type SendFriendShareRequest struct {
	FileID     uint64 `json:"fileId"`
	ReceiverID uint64 `json:"receiverId"`
	Message    string `json:"message"`
}

type SaveToFolderRequest struct {
	FolderID uint64 `json:"folderId"`
}

type CreatePublicShareRequest struct {
	FileID        uint64 `json:"fileId" binding:"required"`
	Password      string `json:"password"`
	ExpiresAt     string `json:"expiresAt" binding:"omitempty,share_expiry"`
	AllowDownload *bool  `json:"allowDownload"`
	AllowPreview  *bool  `json:"allowPreview"`
	MaxDownloads  *int   `json:"maxDownloads"`
	Description   string `json:"description"`
}

type UpdatePublicShareRequest struct {
	IsActive      *bool         `json:"isActive"`
	AllowDownload *bool         `json:"allowDownload"`
	AllowPreview  *bool         `json:"allowPreview"`
	Password      *string       `json:"password"`
	MaxDownloads  Optional[int] `json:"maxDownloads"`
	Description   *string       `json:"description"`
}

type CreateLinkRequest struct {
	Password     string `json:"password"`
	ExpireDays   int    `json:"expireDays" binding:"gte=0"`
	MaxDownloads *int   `json:"maxDownloads"`
}

type CleanupRequest struct {
	Type string `json:"type" binding:"required,oneof=orphaned_files missing_files empty_folders"`
}

type PageQuery struct {
	Page    int    `form:"page"`
	PerPage int    `form:"perPage"`
	Status  string `form:"status"`
}

// Normalize clamps paging values.
func (q *PageQuery) Normalize() {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PerPage <= 0 {
		q.PerPage = 20
	}
	if q.PerPage > 100 {
		q.PerPage = 100
	}
}
