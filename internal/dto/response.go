package dto

import (
	"CloudVault/internal/media"
	"CloudVault/model"
	"fmt"
	"time"
)

type UserView struct {
	ID        uint64    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Avatar    string    `json:"avatar"`
	Role      string    `json:"role,omitempty"`
	UserCode  string    `json:"userCode"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewUserView projects the full profile.
func NewUserView(u *model.User) UserView {
	return UserView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Avatar:    u.Avatar,
		Role:      u.Role,
		UserCode:  u.UserCode,
		CreatedAt: u.CreatedAt,
	}
}

// NewPublicUserView omits contact details and role.
func NewPublicUserView(u *model.User) UserView {
	if u == nil {
		return UserView{}
	}
	return UserView{
		ID:        u.ID,
		Username:  u.Username,
		Avatar:    u.Avatar,
		UserCode:  u.UserCode,
		CreatedAt: u.CreatedAt,
	}
}

type AuthResponse struct {
	User  UserView `json:"user"`
	Token string   `json:"token"`
}

type FriendView struct {
	FriendshipID uint64    `json:"friendshipId"`
	User         UserView  `json:"user"`
	Since        time.Time `json:"since"`
}

type FriendRequestView struct {
	ID        uint64    `json:"id"`
	User      UserView  `json:"user"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type FriendRequests struct {
	Received []FriendRequestView `json:"received"`
	Sent     []FriendRequestView `json:"sent"`
}

// FriendshipState describes an existing relation found by a search.
type FriendshipState struct {
	ID        uint64 `json:"id"`
	Status    string `json:"status"`
	Direction string `json:"direction"` // sent, received
}

type FriendSearchResult struct {
	User       UserView         `json:"user"`
	Friendship *FriendshipState `json:"friendship"`
}

type FileView struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	OriginalName string    `json:"originalName"`
	Size         int64     `json:"size"`
	Type         string    `json:"type"`
	DisplayType  string    `json:"displayType"`
	MimeType     string    `json:"mimeType"`
	FolderID     uint64    `json:"folderId"`
	Tags         []string  `json:"tags"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	UploadedAt   time.Time `json:"uploadedAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewFileView projects a file for its owner.
func NewFileView(f *model.File) FileView {
	v := FileView{
		ID:           f.ID,
		Name:         f.Name,
		OriginalName: f.OriginalName,
		Size:         f.Size,
		Type:         f.Type,
		DisplayType:  media.DisplayType(f.Type, f.Name),
		MimeType:     f.MimeType,
		FolderID:     f.FolderID,
		Tags:         f.TagList(),
		URL:          fmt.Sprintf("/api/files/%d/download", f.ID),
		UploadedAt:   f.UploadedAt,
		UpdatedAt:    f.UpdatedAt,
	}
	if f.HasThumbnail() {
		v.ThumbnailURL = fmt.Sprintf("/api/files/%d/thumbnail", f.ID)
	}
	return v
}

// NewFileViews projects a slice of files.
func NewFileViews(files []model.File) []FileView {
	out := make([]FileView, 0, len(files))
	for i := range files {
		out = append(out, NewFileView(&files[i]))
	}
	return out
}

type FolderDetail struct {
	model.Folder
	Path      string         `json:"path"`
	Children  []model.Folder `json:"children"`
	Files     []FileView     `json:"files"`
	FileCount int64          `json:"fileCount"`
	TotalSize int64          `json:"totalSize"`
}

type SearchResult struct {
	Files []FileView `json:"files"`
	Total int64      `json:"total"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
}

type Pagination struct {
	Page    int   `json:"page"`
	PerPage int   `json:"perPage"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
}

// NewPagination computes the page count.
func NewPagination(page, perPage int, total int64) Pagination {
	pages := 0
	if perPage > 0 {
		pages = int((total + int64(perPage) - 1) / int64(perPage))
	}
	return Pagination{Page: page, PerPage: perPage, Total: total, Pages: pages}
}

type FriendShareView struct {
	ID            uint64    `json:"id"`
	File          *FileView `json:"file"`
	Sender        UserView  `json:"sender"`
	Receiver      UserView  `json:"receiver"`
	Message       string    `json:"message"`
	Status        string    `json:"status"`
	SavedFolderID *uint64   `json:"savedFolderId"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// NewFriendShareView projects a transfer with its preloaded relations.
func NewFriendShareView(s *model.FriendFileShare) FriendShareView {
	v := FriendShareView{
		ID:            s.ID,
		Sender:        NewPublicUserView(s.Sender),
		Receiver:      NewPublicUserView(s.Receiver),
		Message:       s.Message,
		Status:        s.Status,
		SavedFolderID: s.SavedFolderID,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
	if s.File != nil {
		fv := NewFileView(s.File)
		v.File = &fv
	}
	return v
}

type FriendShareList struct {
	Shares     []FriendShareView `json:"shares"`
	Pagination Pagination        `json:"pagination"`
}

type PublicShareView struct {
	ID            uint64     `json:"id"`
	FileID        uint64     `json:"fileId"`
	Token         string     `json:"token"`
	ShareURL      string     `json:"shareUrl"`
	HasPassword   bool       `json:"hasPassword"`
	ExpiresAt     *time.Time `json:"expiresAt"`
	AllowDownload bool       `json:"allowDownload"`
	AllowPreview  bool       `json:"allowPreview"`
	MaxDownloads  *int       `json:"maxDownloads"`
	DownloadCount int        `json:"downloadCount"`
	ViewCount     int        `json:"viewCount"`
	Description   string     `json:"description"`
	IsActive      bool       `json:"isActive"`
	IsExpired     bool       `json:"isExpired"`
	File          *FileView  `json:"file,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// NewPublicShareView projects a share for its owner.
func NewPublicShareView(s *model.PublicShare, frontendURL string, now time.Time) PublicShareView {
	v := PublicShareView{
		ID:            s.ID,
		FileID:        s.FileID,
		Token:         s.Token,
		ShareURL:      frontendURL + "/share/" + s.Token,
		HasPassword:   s.HasPassword(),
		ExpiresAt:     s.ExpiresAt,
		AllowDownload: s.AllowDownload,
		AllowPreview:  s.AllowPreview,
		MaxDownloads:  s.MaxDownloads,
		DownloadCount: s.DownloadCount,
		ViewCount:     s.ViewCount,
		Description:   s.Description,
		IsActive:      s.IsActive,
		IsExpired:     s.IsExpired(now),
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
	if s.File != nil {
		fv := NewFileView(s.File)
		v.File = &fv
	}
	return v
}

type PublicShareList struct {
	Shares     []PublicShareView `json:"shares"`
	Pagination Pagination        `json:"pagination"`
}

// SharedFileInfo is what an anonymous visitor sees about a shared file.
type SharedFileInfo struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	Type        string `json:"type"`
	DisplayType string `json:"displayType"`
	MimeType    string `json:"mimeType"`
}

type PublicShareInfo struct {
	Token         string         `json:"token"`
	File          SharedFileInfo `json:"file"`
	Owner         string         `json:"owner"`
	Description   string         `json:"description"`
	AllowDownload bool           `json:"allowDownload"`
	AllowPreview  bool           `json:"allowPreview"`
	ExpiresAt     *time.Time     `json:"expiresAt"`
	MaxDownloads  *int           `json:"maxDownloads"`
	DownloadCount int            `json:"downloadCount"`
	ViewCount     int            `json:"viewCount"`
}

type LinkView struct {
	ID            uint64     `json:"id"`
	FileID        uint64     `json:"fileId"`
	ShareURL      string     `json:"shareUrl"`
	HasPassword   bool       `json:"hasPassword"`
	ExpiresAt     *time.Time `json:"expiresAt"`
	DownloadCount int        `json:"downloadCount"`
	MaxDownloads  *int       `json:"maxDownloads"`
	Status        int        `json:"status"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// NewLinkView projects a legacy private link.
func NewLinkView(s *model.FileShare) LinkView {
	return LinkView{
		ID:            s.ID,
		FileID:        s.FileID,
		ShareURL:      s.ShareURL,
		HasPassword:   s.HasPassword(),
		ExpiresAt:     s.ExpiresAt,
		DownloadCount: s.DownloadCount,
		MaxDownloads:  s.MaxDownloads,
		Status:        s.Status,
		CreatedAt:     s.CreatedAt,
	}
}

type CleanupResult struct {
	CleanupType  string `json:"cleanupType"`
	CleanedCount int    `json:"cleanedCount"`
	CleanedSize  int64  `json:"cleanedSize"`
}

type CountResult struct {
	Count int64 `json:"count"`
}
