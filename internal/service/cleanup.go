package service

import (
	"CloudVault/internal/dto"
	"CloudVault/internal/errs"
	"CloudVault/internal/repo"
	"CloudVault/internal/storage"
	"CloudVault/model"
	"context"
	"log"
	"time"

	"gorm.io/gorm"
)

const (
	CleanupOrphanedFiles = "orphaned_files"
	CleanupMissingFiles  = "missing_files"
	CleanupEmptyFolders  = "empty_folders"
)

const cleanupBatch = 200

// orphanGrace keeps blobs this young, their upload may not have written
// its row yet.
const orphanGrace = 15 * time.Minute

// Cleanup runs one maintenance pass synchronously.
func Cleanup(ctx context.Context, kind string) (*dto.CleanupResult, error) {
	var (
		count int
		size  int64
		err   error
	)
	switch kind {
	case CleanupOrphanedFiles:
		count, size, err = cleanOrphanedBlobs(ctx)
	case CleanupMissingFiles:
		count, size, err = cleanMissingFiles(ctx)
	case CleanupEmptyFolders:
		count, err = cleanEmptyFolders(ctx)
	default:
		return nil, errs.Validation("unknown cleanup type: " + kind)
	}
	if err != nil {
		return nil, err
	}
	log.Printf("service: cleanup %s removed %d items (%d bytes)", kind, count, size)
	return &dto.CleanupResult{CleanupType: kind, CleanedCount: count, CleanedSize: size}, nil
}

// cleanOrphanedBlobs removes stored objects no file row points at.
// Rows are loaded before listing and objects newer than orphanGrace are
// left alone, so an upload in flight keeps its blob.
func cleanOrphanedBlobs(ctx context.Context) (int, int64, error) {
	store, err := blobStore()
	if err != nil {
		return 0, 0, err
	}
	cutoff := Now().Add(-orphanGrace)

	referenced := make(map[string]struct{})
	var files []model.File
	err = repo.Db.WithContext(ctx).Select("id", "path", "thumbnail_path").
		FindInBatches(&files, cleanupBatch, func(tx *gorm.DB, batch int) error {
			for _, f := range files {
				referenced[f.Path] = struct{}{}
				if f.ThumbnailPath != "" {
					referenced[f.ThumbnailPath] = struct{}{}
				}
			}
			return nil
		}).Error
	if err != nil {
		return 0, 0, errs.FromDB(err, "")
	}

	objects, err := store.ListObjects(ctx, storage.Bucket, "")
	if err != nil {
		return 0, 0, errs.Storage("list blobs", err)
	}

	var count int
	var size int64
	for _, obj := range objects {
		if _, ok := referenced[obj.ObjectName]; ok {
			continue
		}
		if obj.LastModified.After(cutoff) {
			continue
		}
		if err := store.RemoveObject(ctx, storage.Bucket, obj.ObjectName); err != nil && !storage.IsNotFound(err) {
			log.Printf("service: remove orphaned blob %s failed: %v", obj.ObjectName, err)
			continue
		}
		count++
		size += obj.Size
	}
	return count, size, nil
}

// cleanMissingFiles deletes file rows whose blob is gone.
func cleanMissingFiles(ctx context.Context) (int, int64, error) {
	store, err := blobStore()
	if err != nil {
		return 0, 0, err
	}
	var missing []model.File
	var files []model.File
	err = repo.Db.WithContext(ctx).Select("id", "path", "thumbnail_path", "size").
		FindInBatches(&files, cleanupBatch, func(tx *gorm.DB, batch int) error {
			for _, f := range files {
				if _, err := store.StatObject(ctx, storage.Bucket, f.Path); err != nil {
					if !storage.IsNotFound(err) {
						return errs.Storage("stat blob", err)
					}
					missing = append(missing, f)
				}
			}
			return nil
		}).Error
	if err != nil {
		return 0, 0, errs.FromDB(err, "")
	}
	if len(missing) == 0 {
		return 0, 0, nil
	}

	ids := fileIDs(missing)
	if err := repo.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteFileRows(tx, ids)
	}); err != nil {
		return 0, 0, errs.FromDB(err, "")
	}
	var size int64
	thumbs := make([]string, 0)
	for _, f := range missing {
		size += f.Size
		if f.ThumbnailPath != "" {
			thumbs = append(thumbs, f.ThumbnailPath)
		}
	}
	removeBlobs(ctx, thumbs...)
	return len(missing), size, nil
}

// cleanEmptyFolders removes child folders holding nothing, repeating
// until a pass removes none so emptied parents go too.
func cleanEmptyFolders(ctx context.Context) (int, error) {
	db := repo.Db.WithContext(ctx)
	total := 0
	owners := make(map[uint64]struct{})
	for {
		var empty []model.Folder
		err := db.Where("is_parent = ?", false).
			Where("NOT EXISTS (SELECT 1 FROM folders c WHERE c.parent_id = folders.id)").
			Where("NOT EXISTS (SELECT 1 FROM files f WHERE f.folder_id = folders.id)").
			Find(&empty).Error
		if err != nil {
			return total, errs.FromDB(err, "")
		}
		if len(empty) == 0 {
			break
		}
		if err := db.Where("id IN ?", folderIDs(empty)).Delete(&model.Folder{}).Error; err != nil {
			return total, errs.FromDB(err, "")
		}
		for _, f := range empty {
			owners[f.UserID] = struct{}{}
		}
		total += len(empty)
	}
	for owner := range owners {
		invalidateFolderCache(ctx, owner)
	}
	return total, nil
}
