package service

import (
	"CloudVault/config"
	"CloudVault/internal/errs"
	"CloudVault/internal/media"
	"CloudVault/internal/repo"
	"CloudVault/internal/storage"
	"CloudVault/model"
	"CloudVault/utils"
	"bufio"
	"bytes"
	"context"
	"io"
	"log"
	"sort"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const sniffLen = 512

func fileIDs(files []model.File) []uint64 {
	ids := make([]uint64, 0, len(files))
	for _, f := range files {
		ids = append(ids, f.ID)
	}
	return ids
}

// deleteFileRows removes files together with the links that point at them.
func deleteFileRows(tx *gorm.DB, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("file_id IN ?", ids).Delete(&model.PublicShare{}).Error; err != nil {
		return err
	}
	if err := tx.Where("file_id IN ?", ids).Delete(&model.FileShare{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&model.File{}).Error
}

func fileNameTaken(tx *gorm.DB, owner, folderID uint64, name string, exceptID uint64) (bool, error) {
	var count int64
	q := tx.Model(&model.File{}).Where("user_id = ? AND folder_id = ? AND name = ?", owner, folderID, name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

// uploadTarget loads a folder that can receive files.
func uploadTarget(tx *gorm.DB, owner, folderID uint64) (*model.Folder, error) {
	if folderID == 0 {
		return nil, errs.Validation("folder is required")
	}
	folder, err := ownedFolder(tx, owner, folderID)
	if err != nil {
		return nil, err
	}
	if folder.IsParent {
		return nil, errs.InvalidOperation("files cannot be stored in a top-level folder, choose a subfolder")
	}
	return folder, nil
}

// ListFiles returns the files of one folder, newest first. A nil folder
// lists every file of the owner.
func ListFiles(ctx context.Context, owner uint64, folderID *uint64) ([]model.File, error) {
	db := repo.Db.WithContext(ctx)
	query := db.Where("user_id = ?", owner)
	if folderID != nil {
		if _, err := ownedFolder(db, owner, *folderID); err != nil {
			return nil, err
		}
		query = query.Where("folder_id = ?", *folderID)
	}
	files := make([]model.File, 0)
	if err := query.Order("uploaded_at DESC, id DESC").Find(&files).Error; err != nil {
		return nil, errs.FromDB(err, "")
	}
	return files, nil
}

// GetFile returns one file of owner.
func GetFile(ctx context.Context, owner, id uint64) (*model.File, error) {
	return ownedFile(repo.Db.WithContext(ctx), owner, id)
}

// UploadFile stores r as a new file in folderID. size may be -1 when unknown.
func UploadFile(ctx context.Context, owner, folderID uint64, filename string, size int64, r io.Reader) (*model.File, error) {
	if r == nil {
		return nil, errs.Validation("no file uploaded")
	}
	name, ok := utils.CleanName(filename)
	if !ok {
		return nil, errs.Validation("invalid file name")
	}
	db := repo.Db.WithContext(ctx)
	folder, err := uploadTarget(db, owner, folderID)
	if err != nil {
		return nil, err
	}
	taken, err := fileNameTaken(db, owner, folder.ID, name, 0)
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

	br := bufio.NewReaderSize(r, sniffLen)
	head, _ := br.Peek(sniffLen)
	mimeType := media.DetectMIME(name, bytes.NewReader(head))

	storedName := utils.StoredName(name)
	key := objectKey(owner, storedName)
	if err := store.PutObject(ctx, storage.Bucket, key, br, size, storage.PutOptions{ContentType: mimeType}); err != nil {
		removeBlobs(context.Background(), key)
		return nil, errs.Storage("save file", err)
	}
	info, err := store.StatObject(ctx, storage.Bucket, key)
	if err != nil {
		removeBlobs(context.Background(), key)
		return nil, errs.Storage("save file", err)
	}

	file := &model.File{
		Name:         name,
		OriginalName: name,
		StoredName:   storedName,
		Size:         info.Size,
		Type:         media.FileType(mimeType),
		MimeType:     mimeType,
		FolderID:     folder.ID,
		UserID:       owner,
		Path:         key,
		Tags:         datatypes.NewJSONType([]string{}),
	}
	if media.IsImage(mimeType) {
		file.ThumbnailPath = makeThumbnail(ctx, owner, storedName, key)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		taken, err := fileNameTaken(tx, owner, folder.ID, name, 0)
		if err != nil {
			return err
		}
		if taken {
			return errs.Conflict("a file with this name already exists in the folder")
		}
		return tx.Create(file).Error
	})
	if err != nil {
		removeBlobs(context.Background(), key, file.ThumbnailPath)
		return nil, errs.FromDB(err, "a file with this name already exists in the folder")
	}
	return file, nil
}

// makeThumbnail renders and stores a thumbnail. It returns "" on failure.
func makeThumbnail(ctx context.Context, owner uint64, storedName, key string) string {
	rc, _, err := openBlob(ctx, key)
	if err != nil {
		log.Printf("service: thumbnail source %s: %v", key, err)
		return ""
	}
	defer rc.Close()
	w, h := 200, 200
	if cfg := config.StorageConfigInstance; cfg != nil && cfg.ThumbW > 0 && cfg.ThumbH > 0 {
		w, h = cfg.ThumbW, cfg.ThumbH
	}
	data, err := media.Thumbnail(rc, w, h)
	if err != nil {
		log.Printf("service: thumbnail for %s skipped: %v", key, err)
		return ""
	}
	thumbKey := thumbnailKey(owner, storedName)
	store, err := blobStore()
	if err != nil {
		return ""
	}
	if err := store.PutObject(ctx, storage.Bucket, thumbKey, bytes.NewReader(data), int64(len(data)),
		storage.PutOptions{ContentType: "image/jpeg"}); err != nil {
		log.Printf("service: store thumbnail %s failed: %v", thumbKey, err)
		return ""
	}
	return thumbKey
}

// RenameFile changes the display name of a file.
func RenameFile(ctx context.Context, owner, id uint64, name string) (*model.File, error) {
	clean, ok := utils.CleanName(name)
	if !ok {
		return nil, errs.Validation("invalid file name")
	}
	var file *model.File
	err := repo.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		file, err = ownedFile(tx, owner, id)
		if err != nil {
			return err
		}
		if file.Name == clean {
			return nil
		}
		taken, err := fileNameTaken(tx, owner, file.FolderID, clean, file.ID)
		if err != nil {
			return err
		}
		if taken {
			return errs.Conflict("a file with this name already exists in the folder")
		}
		file.Name = clean
		return tx.Model(file).Update("name", clean).Error
	})
	if err != nil {
		return nil, errs.FromDB(err, "a file with this name already exists in the folder")
	}
	return file, nil
}

// MoveFile moves one file into folderID.
func MoveFile(ctx context.Context, owner, id, folderID uint64) (*model.File, error) {
	if id == 0 {
		return nil, errs.Validation("file id is required")
	}
	if err := BatchMoveFiles(ctx, owner, []uint64{id}, folderID); err != nil {
		return nil, err
	}
	return GetFile(ctx, owner, id)
}

// BatchMoveFiles moves several files into folderID atomically.
func BatchMoveFiles(ctx context.Context, owner uint64, ids []uint64, folderID uint64) error {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return errs.Validation("no files selected")
	}
	err := repo.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		folder, err := uploadTarget(tx, owner, folderID)
		if err != nil {
			return err
		}
		var files []model.File
		if err := tx.Where("user_id = ? AND id IN ?", owner, ids).Find(&files).Error; err != nil {
			return err
		}
		if len(files) != len(ids) {
			return errs.NotFound("one or more files not found")
		}

		moving := make([]model.File, 0, len(files))
		for _, f := range files {
			if f.FolderID != folder.ID {
				moving = append(moving, f)
			}
		}
		if len(moving) == 0 {
			return nil
		}
		var existing []string
		if err := tx.Model(&model.File{}).
			Where("user_id = ? AND folder_id = ?", owner, folder.ID).
			Pluck("name", &existing).Error; err != nil {
			return err
		}
		names := make(map[string]bool, len(existing))
		for _, n := range existing {
			names[n] = true
		}
		var conflicts []string
		for _, f := range moving {
			if names[f.Name] {
				conflicts = append(conflicts, f.Name)
				continue
			}
			names[f.Name] = true
		}
		if len(conflicts) > 0 {
			sort.Strings(conflicts)
			return errs.Conflict("files with the same name already exist in the destination: " + strings.Join(conflicts, ", "))
		}
		return tx.Model(&model.File{}).
			Where("id IN ?", fileIDs(moving)).
			Update("folder_id", folder.ID).Error
	})
	return errs.FromDB(err, "a file with this name already exists in the destination")
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]bool{}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// UpdateFileTags replaces the tag list of a file.
func UpdateFileTags(ctx context.Context, owner, id uint64, tags []string) (*model.File, error) {
	db := repo.Db.WithContext(ctx)
	file, err := ownedFile(db, owner, id)
	if err != nil {
		return nil, err
	}
	file.Tags = datatypes.NewJSONType(normalizeTags(tags))
	if err := db.Model(file).Update("tags", file.Tags).Error; err != nil {
		return nil, errs.FromDB(err, "")
	}
	return file, nil
}

// DeleteFile moves one file to the trash.
func DeleteFile(ctx context.Context, owner, id uint64) error {
	return BatchDeleteFiles(ctx, owner, []uint64{id})
}

// BatchDeleteFiles records the files in the trash, deletes their rows and
// links, then removes the blobs best effort.
func BatchDeleteFiles(ctx context.Context, owner uint64, ids []uint64) error {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return errs.Validation("no files selected")
	}
	var files []model.File
	err := repo.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND id IN ?", owner, ids).Find(&files).Error; err != nil {
			return err
		}
		if len(files) != len(ids) {
			return errs.NotFound("one or more files not found")
		}
		paths := map[uint64]string{}
		now := Now()
		items := make([]model.TrashItem, 0, len(files))
		for _, f := range files {
			dir, ok := paths[f.FolderID]
			if !ok {
				p, err := FolderPath(tx, f.FolderID)
				if err != nil {
					return errs.FromDB(err, "folder not found")
				}
				paths[f.FolderID] = p
				dir = p
			}
			items = append(items, model.TrashItem{
				ItemType:     model.TrashItemFile,
				ItemID:       f.ID,
				Name:         f.Name,
				OriginalPath: dir + "/" + f.Name,
				Size:         f.Size,
				UserID:       owner,
				DeletedAt:    now,
			})
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		return deleteFileRows(tx, ids)
	})
	if err != nil {
		return errs.FromDB(err, "file not found")
	}
	removeBlobs(ctx, fileBlobKeys(files)...)
	return nil
}

// OpenFile returns a file's metadata and content stream.
func OpenFile(ctx context.Context, owner, id uint64) (*model.File, io.ReadCloser, storage.ObjectInfo, error) {
	file, err := GetFile(ctx, owner, id)
	if err != nil {
		return nil, nil, storage.ObjectInfo{}, err
	}
	rc, info, err := openBlob(ctx, file.Path)
	if err != nil {
		return nil, nil, storage.ObjectInfo{}, err
	}
	return file, rc, info, nil
}

// OpenThumbnail returns the thumbnail stream of an image file.
func OpenThumbnail(ctx context.Context, owner, id uint64) (io.ReadCloser, storage.ObjectInfo, error) {
	file, err := GetFile(ctx, owner, id)
	if err != nil {
		return nil, storage.ObjectInfo{}, err
	}
	if !file.HasThumbnail() {
		return nil, storage.ObjectInfo{}, errs.NotFound("thumbnail not found")
	}
	return openBlob(ctx, file.ThumbnailPath)
}

// PreviewFile renders a file for inline display.
func PreviewFile(ctx context.Context, owner, id uint64) (*Preview, error) {
	file, err := GetFile(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	return buildPreview(ctx, file)
}
