package service

import (
	"CloudVault/internal/errs"
	"CloudVault/internal/repo"
	"CloudVault/model"
	"context"

	"gorm.io/gorm"
)

// ListTrash returns the owner's trash records, newest first.
func ListTrash(ctx context.Context, owner uint64) ([]model.TrashItem, error) {
	items := make([]model.TrashItem, 0)
	if err := repo.Db.WithContext(ctx).
		Where("user_id = ?", owner).
		Order("deleted_at DESC, id DESC").
		Find(&items).Error; err != nil {
		return nil, errs.FromDB(err, "")
	}
	return items, nil
}

// deleteOwnedTrash removes the given records, all of which must belong to owner.
func deleteOwnedTrash(ctx context.Context, owner uint64, ids []uint64) (int64, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return 0, errs.Validation("no items selected")
	}
	var deleted int64
	err := repo.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.TrashItem{}).
			Where("user_id = ? AND id IN ?", owner, ids).
			Count(&count).Error; err != nil {
			return err
		}
		if count != int64(len(ids)) {
			return errs.NotFound("one or more trash items not found")
		}
		res := tx.Where("user_id = ? AND id IN ?", owner, ids).Delete(&model.TrashItem{})
		deleted = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, errs.FromDB(err, "trash item not found")
	}
	return deleted, nil
}

// RestoreTrash dismisses records from the trash. The content was already
// removed when it was deleted, so nothing is put back.
func RestoreTrash(ctx context.Context, owner uint64, ids []uint64) (int64, error) {
	return deleteOwnedTrash(ctx, owner, ids)
}

// PurgeTrash permanently deletes the selected records.
func PurgeTrash(ctx context.Context, owner uint64, ids []uint64) (int64, error) {
	return deleteOwnedTrash(ctx, owner, ids)
}

// EmptyTrash deletes every record of owner.
func EmptyTrash(ctx context.Context, owner uint64) (int64, error) {
	res := repo.Db.WithContext(ctx).Where("user_id = ?", owner).Delete(&model.TrashItem{})
	if res.Error != nil {
		return 0, errs.FromDB(res.Error, "")
	}
	return res.RowsAffected, nil
}
