package service

import (
	"CloudVault/internal/errs"
	"CloudVault/internal/repo"
	"CloudVault/internal/storage"
	"CloudVault/model"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Now is the service clock. Tests replace it to move time forward.
var Now = time.Now

const (
	treeLockTTL  = 30 * time.Second
	treeLockWait = 5 * time.Second
)

// withTreeLock serializes folder tree mutations of one owner across
// processes. Without Redis it only runs fn.
func withTreeLock(ctx context.Context, owner uint64, fn func() error) error {
	if repo.Redis == nil {
		return fn()
	}
	lock := repo.NewRedisLock(repo.Redis, fmt.Sprintf("lock:tree:%d", owner), treeLockTTL)
	if err := lock.Lock(ctx, treeLockWait); err != nil {
		if errors.Is(err, repo.ErrLockBusy) {
			return errs.Conflict("another change to your folders is in progress, try again")
		}
		return errs.Internal("acquire tree lock", err)
	}
	defer func() {
		if err := lock.Unlock(context.Background()); err != nil {
			log.Printf("service: release tree lock for user %d failed: %v", owner, err)
		}
	}()
	return fn()
}

func objectKey(owner uint64, storedName string) string {
	return fmt.Sprintf("%d/%s", owner, storedName)
}

func thumbnailKey(owner uint64, storedName string) string {
	base := strings.TrimSuffix(storedName, path.Ext(storedName))
	return fmt.Sprintf("%d/thumb_%s.jpg", owner, base)
}

func blobStore() (storage.Store, error) {
	if storage.Default == nil {
		return nil, errs.Storage("storage not initialized", nil)
	}
	return storage.Default, nil
}

// openBlob opens a stored object, mapping a missing object to NotFound.
func openBlob(ctx context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	store, err := blobStore()
	if err != nil {
		return nil, storage.ObjectInfo{}, err
	}
	if key == "" {
		return nil, storage.ObjectInfo{}, errs.NotFound("file content is missing")
	}
	rc, info, err := store.GetObject(ctx, storage.Bucket, key)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, storage.ObjectInfo{}, errs.NotFound("file content is missing")
		}
		return nil, storage.ObjectInfo{}, errs.Storage("open blob", err)
	}
	return rc, info, nil
}

// removeBlobs deletes objects best effort; failures are only logged.
func removeBlobs(ctx context.Context, keys ...string) {
	store, err := blobStore()
	if err != nil {
		return
	}
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := store.RemoveObject(ctx, storage.Bucket, key); err != nil && !storage.IsNotFound(err) {
			log.Printf("service: remove blob %s failed: %v", key, err)
		}
	}
}

func fileBlobKeys(files []model.File) []string {
	keys := make([]string, 0, len(files)*2)
	for _, f := range files {
		keys = append(keys, f.Path)
		if f.ThumbnailPath != "" {
			keys = append(keys, f.ThumbnailPath)
		}
	}
	return keys
}

// ownedFolder loads a folder that must belong to owner.
func ownedFolder(tx *gorm.DB, owner, id uint64) (*model.Folder, error) {
	var folder model.Folder
	if err := tx.Where("id = ? AND user_id = ?", id, owner).First(&folder).Error; err != nil {
		return nil, errs.FromDB(err, "folder not found")
	}
	return &folder, nil
}

// ownedFile loads a file that must belong to owner.
func ownedFile(tx *gorm.DB, owner, id uint64) (*model.File, error) {
	var file model.File
	if err := tx.Where("id = ? AND user_id = ?", id, owner).First(&file).Error; err != nil {
		return nil, errs.FromDB(err, "file not found")
	}
	return &file, nil
}

func uniqueIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
