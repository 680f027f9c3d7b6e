package service

import (
	"CloudVault/internal/errs"
	"CloudVault/internal/repo"
	"CloudVault/internal/storage"
	"CloudVault/model"
	"CloudVault/utils"
	"context"
	"log"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// saveCopy copies src into a folder of receiver as an independent file.
// afterCreate runs in the same transaction as the insert; if anything
// fails the copied blobs are removed again.
func saveCopy(ctx context.Context, receiver, folderID uint64, src *model.File, afterCreate func(tx *gorm.DB, file *model.File) error) (*model.File, error) {
	db := repo.Db.WithContext(ctx)
	folder, err := uploadTarget(db, receiver, folderID)
	if err != nil {
		return nil, err
	}
	taken, err := fileNameTaken(db, receiver, folder.ID, src.Name, 0)
	if err != nil {
		return nil, errs.FromDB(err, "")
	}
	if taken {
		return nil, errs.Conflict("a file with this name already exists in the folder")
	}
	store, err := blobStore()
	if err != nil {
		return nil, err
	}

	storedName := utils.StoredName(src.OriginalName)
	key := objectKey(receiver, storedName)
	err = store.CopyObject(ctx,
		storage.CopyDest{Bucket: storage.Bucket, Object: key},
		storage.CopySource{Bucket: storage.Bucket, Object: src.Path},
	)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, errs.NotFound("file content is missing")
		}
		return nil, errs.Storage("copy file", err)
	}

	thumbKey := ""
	if src.HasThumbnail() {
		thumbKey = thumbnailKey(receiver, storedName)
		err := store.CopyObject(ctx,
			storage.CopyDest{Bucket: storage.Bucket, Object: thumbKey},
			storage.CopySource{Bucket: storage.Bucket, Object: src.ThumbnailPath},
		)
		if err != nil {
			log.Printf("service: copy thumbnail %s failed: %v", src.ThumbnailPath, err)
			thumbKey = ""
		}
	}

	file := &model.File{
		Name:          src.Name,
		OriginalName:  src.OriginalName,
		StoredName:    storedName,
		Size:          src.Size,
		Type:          src.Type,
		MimeType:      src.MimeType,
		FolderID:      folder.ID,
		UserID:        receiver,
		Path:          key,
		ThumbnailPath: thumbKey,
		Tags:          datatypes.NewJSONType([]string{}),
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(file).Error; err != nil {
			return err
		}
		if afterCreate != nil {
			return afterCreate(tx, file)
		}
		return nil
	})
	if err != nil {
		removeBlobs(context.Background(), key, thumbKey)
		return nil, errs.FromDB(err, "a file with this name already exists in the folder")
	}
	return file, nil
}
