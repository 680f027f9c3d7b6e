package service

import (
	"CloudVault/internal/dto"
	"CloudVault/internal/errs"
	"CloudVault/internal/repo"
	"CloudVault/model"
	"CloudVault/utils"
	"context"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"
)

const folderListCacheTTL = 10 * time.Minute

func invalidateFolderCache(ctx context.Context, owner uint64) {
	if err := utils.InvalidateFolderListCache(ctx, owner); err != nil {
		log.Printf("service: invalidate folder cache for user %d failed: %v", owner, err)
	}
}

// folderNameTaken reports whether parentKey already holds name, ignoring exceptID.
func folderNameTaken(tx *gorm.DB, owner, parentKey uint64, name string, exceptID uint64) (bool, error) {
	var count int64
	q := tx.Model(&model.Folder{}).Where("user_id = ? AND parent_key = ? AND name = ?", owner, parentKey, name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func parentKeyOf(parentID *uint64) uint64 {
	if parentID == nil {
		return 0
	}
	return *parentID
}

// CreateFolder creates a folder under parentID, or at the top level when nil.
func CreateFolder(ctx context.Context, owner uint64, name string, parentID *uint64) (*model.Folder, error) {
	clean, ok := utils.CleanName(name)
	if !ok {
		return nil, errs.Validation("invalid folder name")
	}
	folder := &model.Folder{Name: clean, UserID: owner}
	folder.SetParent(parentID)

	err := withTreeLock(ctx, owner, func() error {
		return repo.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if parentID != nil {
				if _, err := ownedFolder(tx, owner, *parentID); err != nil {
					return errs.NotFound("parent folder not found")
				}
			}
			taken, err := folderNameTaken(tx, owner, folder.ParentKey, clean, 0)
			if err != nil {
				return err
			}
			if taken {
				return errs.Conflict("a folder with this name already exists here")
			}
			return tx.Create(folder).Error
		})
	})
	if err != nil {
		return nil, errs.FromDB(err, "a folder with this name already exists here")
	}
	invalidateFolderCache(ctx, owner)
	return folder, nil
}

// ListFolders returns every folder of owner in creation order.
func ListFolders(ctx context.Context, owner uint64) ([]model.Folder, error) {
	if cached, ok := utils.GetFolderListFromCache(ctx, owner); ok {
		return cached, nil
	}
	folders := make([]model.Folder, 0)
	if err := repo.Db.WithContext(ctx).
		Where("user_id = ?", owner).
		Order("created_at ASC, id ASC").
		Find(&folders).Error; err != nil {
		return nil, errs.FromDB(err, "")
	}
	if err := utils.SetFolderListToCache(ctx, owner, folders, folderListCacheTTL); err != nil {
		log.Printf("service: cache folder list for user %d failed: %v", owner, err)
	}
	return folders, nil
}

// GetFolder returns a folder with its direct children and subtree totals.
func GetFolder(ctx context.Context, owner, id uint64) (*dto.FolderDetail, error) {
	db := repo.Db.WithContext(ctx)
	folder, err := ownedFolder(db, owner, id)
	if err != nil {
		return nil, err
	}
	detail := &dto.FolderDetail{Folder: *folder, Children: make([]model.Folder, 0)}
	if err := db.Where("user_id = ? AND parent_id = ?", owner, id).
		Order("name ASC").Find(&detail.Children).Error; err != nil {
		return nil, errs.FromDB(err, "")
	}
	var files []model.File
	if err := db.Where("user_id = ? AND folder_id = ?", owner, id).
		Order("uploaded_at DESC").Find(&files).Error; err != nil {
		return nil, errs.FromDB(err, "")
	}
	detail.Files = dto.NewFileViews(files)

	subtree, err := collectSubtree(db, owner, id)
	if err != nil {
		return nil, errs.FromDB(err, "")
	}
	var totals struct {
		Count int64
		Size  int64
	}
	if err := db.Model(&model.File{}).
		Select("COUNT(*) AS count, COALESCE(SUM(size), 0) AS size").
		Where("user_id = ? AND folder_id IN ?", owner, folderIDs(subtree)).
		Scan(&totals).Error; err != nil {
		return nil, errs.FromDB(err, "")
	}
	detail.FileCount = totals.Count
	detail.TotalSize = totals.Size

	if detail.Path, err = FolderPath(db, id); err != nil {
		return nil, errs.FromDB(err, "")
	}
	return detail, nil
}

// RenameFolder changes a folder's name in place.
func RenameFolder(ctx context.Context, owner, id uint64, name string) (*model.Folder, error) {
	clean, ok := utils.CleanName(name)
	if !ok {
		return nil, errs.Validation("invalid folder name")
	}
	var folder *model.Folder
	err := withTreeLock(ctx, owner, func() error {
		return repo.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			folder, err = ownedFolder(tx, owner, id)
			if err != nil {
				return err
			}
			if folder.Name == clean {
				return nil
			}
			taken, err := folderNameTaken(tx, owner, folder.ParentKey, clean, folder.ID)
			if err != nil {
				return err
			}
			if taken {
				return errs.Conflict("a folder with this name already exists here")
			}
			folder.Name = clean
			return tx.Model(folder).Update("name", clean).Error
		})
	})
	if err != nil {
		return nil, errs.FromDB(err, "a folder with this name already exists here")
	}
	invalidateFolderCache(ctx, owner)
	return folder, nil
}

// MoveFolder reparents a folder; a nil parent moves it to the top level.
func MoveFolder(ctx context.Context, owner, id uint64, newParentID *uint64) (*model.Folder, error) {
	var folder *model.Folder
	err := withTreeLock(ctx, owner, func() error {
		return repo.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			folder, err = ownedFolder(tx, owner, id)
			if err != nil {
				return err
			}
			if newParentID != nil {
				if *newParentID == id {
					return errs.InvalidOperation("a folder cannot be moved into itself")
				}
				target, err := ownedFolder(tx, owner, *newParentID)
				if err != nil {
					return errs.NotFound("target folder not found")
				}
				inside, err := isDescendant(tx, target, id)
				if err != nil {
					return err
				}
				if inside {
					return errs.InvalidOperation("a folder cannot be moved into one of its subfolders")
				}
			}
			taken, err := folderNameTaken(tx, owner, parentKeyOf(newParentID), folder.Name, folder.ID)
			if err != nil {
				return err
			}
			if taken {
				return errs.Conflict("the destination already has a folder with this name")
			}
			folder.SetParent(newParentID)
			var parent interface{}
			if newParentID != nil {
				parent = *newParentID
			}
			return tx.Model(&model.Folder{}).Where("id = ?", folder.ID).Updates(map[string]interface{}{
				"parent_id":  parent,
				"parent_key": folder.ParentKey,
				"is_parent":  folder.IsParent,
			}).Error
		})
	})
	if err != nil {
		return nil, errs.FromDB(err, "the destination already has a folder with this name")
	}
	invalidateFolderCache(ctx, owner)
	return folder, nil
}

// isDescendant walks from candidate up to the root and reports whether
// ancestorID appears on the way.
func isDescendant(tx *gorm.DB, candidate *model.Folder, ancestorID uint64) (bool, error) {
	seen := map[uint64]bool{}
	current := candidate
	for current != nil {
		if current.ID == ancestorID {
			return true, nil
		}
		if seen[current.ID] {
			// corrupted data; refuse rather than loop
			return true, nil
		}
		seen[current.ID] = true
		if current.ParentID == nil {
			return false, nil
		}
		var parent model.Folder
		if err := tx.Select("id", "parent_id").First(&parent, *current.ParentID).Error; err != nil {
			return false, err
		}
		current = &parent
	}
	return false, nil
}

// UpdateFolder renames and/or moves a folder depending on which fields
// are present.
func UpdateFolder(ctx context.Context, owner, id uint64, req dto.UpdateFolderRequest) (*model.Folder, error) {
	if req.Name == nil && !req.ParentID.Set {
		return nil, errs.Validation("nothing to update")
	}
	var (
		folder *model.Folder
		err    error
	)
	if req.Name != nil {
		if folder, err = RenameFolder(ctx, owner, id, *req.Name); err != nil {
			return nil, err
		}
	}
	if req.ParentID.Set {
		if folder, err = MoveFolder(ctx, owner, id, req.ParentID.Value); err != nil {
			return nil, err
		}
	}
	return folder, nil
}

// FolderPath rebuilds "/A/B/C" by walking parent links.
func FolderPath(tx *gorm.DB, folderID uint64) (string, error) {
	var names []string
	seen := map[uint64]bool{}
	next := &folderID
	for next != nil && !seen[*next] {
		seen[*next] = true
		var f model.Folder
		if err := tx.Select("id", "name", "parent_id").First(&f, *next).Error; err != nil {
			return "", err
		}
		names = append(names, f.Name)
		next = f.ParentID
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return "/" + strings.Join(names, "/"), nil
}

// collectSubtree returns the folder and all its descendants, parents first.
func collectSubtree(tx *gorm.DB, owner, rootID uint64) ([]model.Folder, error) {
	var root model.Folder
	if err := tx.Where("id = ? AND user_id = ?", rootID, owner).First(&root).Error; err != nil {
		return nil, err
	}
	out := []model.Folder{root}
	seen := map[uint64]bool{root.ID: true}
	frontier := []uint64{root.ID}
	for len(frontier) > 0 {
		var children []model.Folder
		if err := tx.Where("user_id = ? AND parent_id IN ?", owner, frontier).
			Order("id ASC").Find(&children).Error; err != nil {
			return nil, err
		}
		frontier = frontier[:0]
		for _, c := range children {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			out = append(out, c)
			frontier = append(frontier, c.ID)
		}
	}
	return out, nil
}

func folderIDs(folders []model.Folder) []uint64 {
	ids := make([]uint64, 0, len(folders))
	for _, f := range folders {
		ids = append(ids, f.ID)
	}
	return ids
}

// DeleteFolder removes a folder. A non-empty folder has its whole subtree
// recorded in the trash first; blobs are removed after commit.
func DeleteFolder(ctx context.Context, owner, id uint64) error {
	var files []model.File
	err := withTreeLock(ctx, owner, func() error {
		return repo.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			subtree, err := collectSubtree(tx, owner, id)
			if err != nil {
				return errs.FromDB(err, "folder not found")
			}
			ids := folderIDs(subtree)
			if err := tx.Where("user_id = ? AND folder_id IN ?", owner, ids).Find(&files).Error; err != nil {
				return err
			}
			if len(subtree) == 1 && len(files) == 0 {
				return tx.Delete(&model.Folder{}, id).Error
			}

			rootPath, err := FolderPath(tx, id)
			if err != nil {
				return err
			}
			paths := map[uint64]string{id: rootPath}
			sizes := map[uint64]int64{}
			for _, f := range files {
				sizes[f.FolderID] += f.Size
			}
			now := Now()
			items := make([]model.TrashItem, 0, len(subtree)+len(files))
			for _, folder := range subtree {
				if folder.ID != id {
					paths[folder.ID] = paths[*folder.ParentID] + "/" + folder.Name
				}
				items = append(items, model.TrashItem{
					ItemType:     model.TrashItemFolder,
					ItemID:       folder.ID,
					Name:         folder.Name,
					OriginalPath: paths[folder.ID],
					Size:         sizes[folder.ID],
					UserID:       owner,
					DeletedAt:    now,
				})
			}
			for _, f := range files {
				items = append(items, model.TrashItem{
					ItemType:     model.TrashItemFile,
					ItemID:       f.ID,
					Name:         f.Name,
					OriginalPath: paths[f.FolderID] + "/" + f.Name,
					Size:         f.Size,
					UserID:       owner,
					DeletedAt:    now,
				})
			}
			if err := tx.CreateInBatches(items, 100).Error; err != nil {
				return err
			}
			if len(files) > 0 {
				if err := deleteFileRows(tx, fileIDs(files)); err != nil {
					return err
				}
			}
			return tx.Where("id IN ?", ids).Delete(&model.Folder{}).Error
		})
	})
	if err != nil {
		return errs.FromDB(err, "folder not found")
	}
	invalidateFolderCache(ctx, owner)
	removeBlobs(ctx, fileBlobKeys(files)...)
	return nil
}
