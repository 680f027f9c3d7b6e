package service

import (
	"CloudVault/internal/dto"
	"CloudVault/internal/errs"
	"CloudVault/internal/repo"
	"CloudVault/internal/storage"
	"CloudVault/model"
	"CloudVault/utils"
	"context"
	"io"
	"log"
	"strconv"
	"time"

	"gorm.io/gorm"
)

func shareKey(shareURL string) string {
	return "share:" + shareURL
}

// CreateFileShare creates a private link with an optional password,
// lifetime in days and download cap.
func CreateFileShare(ctx context.Context, owner, fileID uint64, req dto.CreateLinkRequest) (*model.FileShare, error) {
	if req.ExpireDays < 0 {
		return nil, errs.Validation("expireDays cannot be negative")
	}
	if req.MaxDownloads != nil && *req.MaxDownloads <= 0 {
		return nil, errs.Validation("maxDownloads must be positive")
	}
	db := repo.Db.WithContext(ctx)
	if _, err := ownedFile(db, owner, fileID); err != nil {
		return nil, err
	}
	share := &model.FileShare{
		ShareURL:     utils.GenShareURL(),
		FileID:       fileID,
		UserID:       owner,
		MaxDownloads: req.MaxDownloads,
		Status:       model.ShareStatusActive,
	}
	if req.Password != "" {
		hash, err := utils.GetPwd(req.Password)
		if err != nil {
			return nil, errs.Internal("hash password", err)
		}
		share.PasswordHash = hash
	}
	if req.ExpireDays > 0 {
		expireAt := Now().Add(time.Duration(req.ExpireDays) * 24 * time.Hour)
		share.ExpiresAt = &expireAt
	}
	if err := db.Create(share).Error; err != nil {
		return nil, errs.FromDB(err, "share url collision, retry")
	}

	if share.ExpiresAt != nil && repo.Redis != nil {
		ttl := share.ExpiresAt.Sub(Now())
		if err := repo.Redis.Set(ctx, shareKey(share.ShareURL), strconv.FormatUint(share.ID, 10), ttl).Err(); err != nil {
			log.Printf("service: set share expiry key failed: %v", err)
		}
	}
	return share, nil
}

// ListFileShares lists the private links of one file.
func ListFileShares(ctx context.Context, owner, fileID uint64) ([]model.FileShare, error) {
	db := repo.Db.WithContext(ctx)
	if _, err := ownedFile(db, owner, fileID); err != nil {
		return nil, err
	}
	shares := make([]model.FileShare, 0)
	if err := db.Where("file_id = ? AND user_id = ?", fileID, owner).
		Order("created_at DESC, id DESC").Find(&shares).Error; err != nil {
		return nil, errs.FromDB(err, "")
	}
	return shares, nil
}

// DeleteFileShare removes a private link.
func DeleteFileShare(ctx context.Context, owner, id uint64) error {
	db := repo.Db.WithContext(ctx)
	var share model.FileShare
	if err := db.Where("id = ? AND user_id = ?", id, owner).First(&share).Error; err != nil {
		return errs.FromDB(err, "share not found")
	}
	if err := db.Delete(&share).Error; err != nil {
		return errs.FromDB(err, "")
	}
	if repo.Redis != nil {
		if err := repo.Redis.Del(ctx, shareKey(share.ShareURL)).Err(); err != nil {
			log.Printf("service: drop share expiry key failed: %v", err)
		}
	}
	return nil
}

// DownloadFileShare validates a private link and opens its file.
func DownloadFileShare(ctx context.Context, shareURL, password string) (*model.File, io.ReadCloser, storage.ObjectInfo, error) {
	db := repo.Db.WithContext(ctx)
	var share model.FileShare
	if err := db.Preload("File").Where("share_url = ?", shareURL).First(&share).Error; err != nil {
		return nil, nil, storage.ObjectInfo{}, errs.FromDB(err, "share not found")
	}
	if share.File == nil {
		return nil, nil, storage.ObjectInfo{}, errs.NotFound("share not found")
	}
	if share.Status == model.ShareStatusExpired {
		return nil, nil, storage.ObjectInfo{}, errs.Expired("share expired")
	}
	if share.ExpiresAt != nil && Now().After(*share.ExpiresAt) {
		if err := db.Model(&share).Update("status", model.ShareStatusExpired).Error; err != nil {
			log.Printf("service: mark share %d expired failed: %v", share.ID, err)
		}
		return nil, nil, storage.ObjectInfo{}, errs.Expired("share expired")
	}
	if share.MaxDownloads != nil && share.DownloadCount >= *share.MaxDownloads {
		return nil, nil, storage.ObjectInfo{}, errs.LimitReached("download limit reached")
	}
	if share.HasPassword() && !utils.CheckPwd(password, share.PasswordHash) {
		return nil, nil, storage.ObjectInfo{}, errs.Unauthenticated("password required or incorrect")
	}

	rc, info, err := openBlob(ctx, share.File.Path)
	if err != nil {
		return nil, nil, storage.ObjectInfo{}, err
	}
	res := db.Model(&model.FileShare{}).
		Where("id = ? AND (max_downloads IS NULL OR download_count < max_downloads)", share.ID).
		UpdateColumn("download_count", gorm.Expr("download_count + 1"))
	if res.Error != nil || res.RowsAffected == 0 {
		_ = rc.Close()
		if res.Error != nil {
			return nil, nil, storage.ObjectInfo{}, errs.FromDB(res.Error, "")
		}
		return nil, nil, storage.ObjectInfo{}, errs.LimitReached("download limit reached")
	}
	return share.File, rc, info, nil
}
