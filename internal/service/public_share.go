package service

import (
	"CloudVault/config"
	"CloudVault/internal/dto"
	"CloudVault/internal/errs"
	"CloudVault/internal/repo"
	"CloudVault/internal/storage"
	"CloudVault/model"
	"CloudVault/utils"
	"context"
	"io"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"
)

const shareTokenCacheTTL = time.Hour

// ShareExpiryOptions maps the accepted expiresAt values to durations.
// A zero duration means the link never expires.
var ShareExpiryOptions = map[string]time.Duration{
	"never":  0,
	"1hour":  time.Hour,
	"1day":   24 * time.Hour,
	"7days":  7 * 24 * time.Hour,
	"30days": 30 * 24 * time.Hour,
}

// ValidShareExpiry reports whether v is an accepted expiry option.
func ValidShareExpiry(v string) bool {
	_, ok := ShareExpiryOptions[v]
	return ok
}

// CreatePublicShare creates an anonymous link to one of owner's files.
func CreatePublicShare(ctx context.Context, owner uint64, req dto.CreatePublicShareRequest) (*model.PublicShare, error) {
	expiry := strings.TrimSpace(req.ExpiresAt)
	if expiry == "" {
		expiry = "never"
	}
	ttl, ok := ShareExpiryOptions[expiry]
	if !ok {
		return nil, errs.Validation("expiresAt must be one of never, 1hour, 1day, 7days, 30days")
	}
	if req.MaxDownloads != nil && *req.MaxDownloads <= 0 {
		return nil, errs.Validation("maxDownloads must be positive")
	}
	db := repo.Db.WithContext(ctx)
	file, err := ownedFile(db, owner, req.FileID)
	if err != nil {
		return nil, err
	}
	token, err := utils.GenShareToken()
	if err != nil {
		return nil, errs.Internal("generate token", err)
	}
	share := &model.PublicShare{
		FileID:        file.ID,
		UserID:        owner,
		Token:         token,
		AllowDownload: req.AllowDownload == nil || *req.AllowDownload,
		AllowPreview:  req.AllowPreview == nil || *req.AllowPreview,
		MaxDownloads:  req.MaxDownloads,
		Description:   strings.TrimSpace(req.Description),
		IsActive:      true,
	}
	if ttl > 0 {
		at := Now().Add(ttl)
		share.ExpiresAt = &at
	}
	if req.Password != "" {
		if share.PasswordHash, err = utils.GetPwd(req.Password); err != nil {
			return nil, errs.Internal("hash password", err)
		}
	}
	if err := db.Create(share).Error; err != nil {
		return nil, errs.FromDB(err, "share token collision, retry")
	}
	share.File = file
	return share, nil
}

// ListPublicSharesForFile lists the links of one file.
func ListPublicSharesForFile(ctx context.Context, owner, fileID uint64) ([]model.PublicShare, error) {
	db := repo.Db.WithContext(ctx)
	if _, err := ownedFile(db, owner, fileID); err != nil {
		return nil, err
	}
	shares := make([]model.PublicShare, 0)
	if err := db.Where("file_id = ? AND user_id = ?", fileID, owner).
		Order("created_at DESC, id DESC").Find(&shares).Error; err != nil {
		return nil, errs.FromDB(err, "")
	}
	return shares, nil
}

// ListPublicShares lists every link of owner with its file.
func ListPublicShares(ctx context.Context, owner uint64, page dto.PageQuery) (*dto.PublicShareList, error) {
	page.Normalize()
	db := repo.Db.WithContext(ctx)
	var total int64
	if err := db.Model(&model.PublicShare{}).Where("user_id = ?", owner).Count(&total).Error; err != nil {
		return nil, errs.FromDB(err, "")
	}
	var shares []model.PublicShare
	if err := db.Preload("File").Where("user_id = ?", owner).
		Order("created_at DESC, id DESC").
		Offset((page.Page - 1) * page.PerPage).Limit(page.PerPage).
		Find(&shares).Error; err != nil {
		return nil, errs.FromDB(err, "")
	}
	now := Now()
	out := &dto.PublicShareList{
		Shares:     make([]dto.PublicShareView, 0, len(shares)),
		Pagination: dto.NewPagination(page.Page, page.PerPage, total),
	}
	for i := range shares {
		out.Shares = append(out.Shares, dto.NewPublicShareView(&shares[i], config.AppConfig.FrontendURL, now))
	}
	return out, nil
}

func ownedPublicShare(tx *gorm.DB, owner, id uint64) (*model.PublicShare, error) {
	var share model.PublicShare
	if err := tx.Where("id = ? AND user_id = ?", id, owner).First(&share).Error; err != nil {
		return nil, errs.FromDB(err, "share not found")
	}
	return &share, nil
}

// UpdatePublicShare applies a partial update. An empty password removes
// protection; a null maxDownloads removes the cap.
func UpdatePublicShare(ctx context.Context, owner, id uint64, req dto.UpdatePublicShareRequest) (*model.PublicShare, error) {
	db := repo.Db.WithContext(ctx)
	share, err := ownedPublicShare(db, owner, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.AllowDownload != nil {
		updates["allow_download"] = *req.AllowDownload
	}
	if req.AllowPreview != nil {
		updates["allow_preview"] = *req.AllowPreview
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Password != nil {
		hash := ""
		if *req.Password != "" {
			if hash, err = utils.GetPwd(*req.Password); err != nil {
				return nil, errs.Internal("hash password", err)
			}
		}
		updates["password_hash"] = hash
	}
	if req.MaxDownloads.Set {
		if req.MaxDownloads.Value == nil {
			updates["max_downloads"] = nil
		} else {
			if *req.MaxDownloads.Value <= 0 {
				return nil, errs.Validation("maxDownloads must be positive")
			}
			updates["max_downloads"] = *req.MaxDownloads.Value
		}
	}
	if len(updates) > 0 {
		if err := db.Model(share).Updates(updates).Error; err != nil {
			return nil, errs.FromDB(err, "")
		}
	}
	dropShareToken(ctx, share.Token)
	return ownedPublicShare(db, owner, id)
}

// DeletePublicShare deletes a link; its token stops working at once.
func DeletePublicShare(ctx context.Context, owner, id uint64) error {
	db := repo.Db.WithContext(ctx)
	share, err := ownedPublicShare(db, owner, id)
	if err != nil {
		return err
	}
	if err := db.Delete(share).Error; err != nil {
		return errs.FromDB(err, "")
	}
	dropShareToken(ctx, share.Token)
	return nil
}

func dropShareToken(ctx context.Context, token string) {
	if err := utils.InvalidateShareToken(ctx, token); err != nil {
		log.Printf("service: invalidate share token cache failed: %v", err)
	}
}

// loadShareByToken resolves a token through the cache, then the database.
func loadShareByToken(ctx context.Context, token string) (*model.PublicShare, error) {
	if token == "" {
		return nil, errs.NotFound("share not found")
	}
	db := repo.Db.WithContext(ctx)
	var share model.PublicShare
	if id, ok := utils.GetShareIDByToken(ctx, token); ok {
		err := db.Preload("File").Where("id = ? AND token = ?", id, token).First(&share).Error
		if err == nil {
			return &share, nil
		}
		dropShareToken(ctx, token)
	}
	if err := db.Preload("File").Where("token = ?", token).First(&share).Error; err != nil {
		return nil, errs.FromDB(err, "share not found")
	}
	if err := utils.SetShareIDByToken(ctx, token, share.ID, shareTokenCacheTTL); err != nil {
		log.Printf("service: cache share token failed: %v", err)
	}
	return &share, nil
}

// checkShareAccess applies the checks every token endpoint shares:
// active, not expired, password.
func checkShareAccess(ctx context.Context, token, password string) (*model.PublicShare, error) {
	share, err := loadShareByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !share.IsActive || share.File == nil {
		return nil, errs.NotFound("share not found")
	}
	if share.PastExpiry(Now()) {
		return nil, errs.Expired("this share link has expired")
	}
	if share.HasPassword() && !utils.CheckPwd(password, share.PasswordHash) {
		return nil, errs.Unauthenticated("password required or incorrect")
	}
	return share, nil
}

// GetPublicShare returns what a visitor may see and counts the view.
func GetPublicShare(ctx context.Context, token, password string) (*dto.PublicShareInfo, error) {
	share, err := checkShareAccess(ctx, token, password)
	if err != nil {
		return nil, err
	}
	db := repo.Db.WithContext(ctx)
	if err := db.Model(&model.PublicShare{}).Where("id = ?", share.ID).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error; err != nil {
		log.Printf("service: count share view failed: %v", err)
	} else {
		share.ViewCount++
	}
	var owner model.User
	ownerName := ""
	if err := db.Select("id", "username").First(&owner, share.UserID).Error; err == nil {
		ownerName = owner.Username
	}
	f := share.File
	return &dto.PublicShareInfo{
		Token: share.Token,
		File: dto.SharedFileInfo{
			Name:        f.Name,
			Size:        f.Size,
			Type:        f.Type,
			DisplayType: dto.NewFileView(f).DisplayType,
			MimeType:    f.MimeType,
		},
		Owner:         ownerName,
		Description:   share.Description,
		AllowDownload: share.AllowDownload,
		AllowPreview:  share.AllowPreview,
		ExpiresAt:     share.ExpiresAt,
		MaxDownloads:  share.MaxDownloads,
		DownloadCount: share.DownloadCount,
		ViewCount:     share.ViewCount,
	}, nil
}

// DownloadPublicShare opens the shared file and consumes one download.
// The counter is bumped with a conditional update so concurrent
// requests cannot exceed the cap.
func DownloadPublicShare(ctx context.Context, token, password string) (*model.File, io.ReadCloser, storage.ObjectInfo, error) {
	share, err := checkShareAccess(ctx, token, password)
	if err != nil {
		return nil, nil, storage.ObjectInfo{}, err
	}
	if !share.AllowDownload {
		return nil, nil, storage.ObjectInfo{}, errs.Authorization("downloads are disabled for this share")
	}
	if share.CapReached() {
		return nil, nil, storage.ObjectInfo{}, errs.LimitReached("download limit reached")
	}
	rc, info, err := openBlob(ctx, share.File.Path)
	if err != nil {
		return nil, nil, storage.ObjectInfo{}, err
	}
	res := repo.Db.WithContext(ctx).Model(&model.PublicShare{}).
		Where("id = ? AND (max_downloads IS NULL OR download_count < max_downloads)", share.ID).
		UpdateColumn("download_count", gorm.Expr("download_count + 1"))
	if res.Error != nil {
		_ = rc.Close()
		return nil, nil, storage.ObjectInfo{}, errs.FromDB(res.Error, "")
	}
	if res.RowsAffected == 0 {
		_ = rc.Close()
		return nil, nil, storage.ObjectInfo{}, errs.LimitReached("download limit reached")
	}
	return share.File, rc, info, nil
}

// PreviewPublicShare renders the shared file inline.
func PreviewPublicShare(ctx context.Context, token, password string) (*Preview, error) {
	share, err := checkShareAccess(ctx, token, password)
	if err != nil {
		return nil, err
	}
	if !share.AllowPreview {
		return nil, errs.Authorization("preview is disabled for this share")
	}
	return buildPreview(ctx, share.File)
}

// SavePublicShare copies a shared file into one of actor's folders.
func SavePublicShare(ctx context.Context, actor uint64, token, password string, folderID uint64) (*model.File, error) {
	share, err := checkShareAccess(ctx, token, password)
	if err != nil {
		return nil, err
	}
	if !share.AllowDownload {
		return nil, errs.Authorization("downloads are disabled for this share")
	}
	if share.CapReached() {
		return nil, errs.LimitReached("download limit reached")
	}
	return saveCopy(ctx, actor, folderID, share.File, nil)
}
