package service

import (
	"CloudVault/internal/dto"
	"CloudVault/internal/errs"
	"CloudVault/internal/repo"
	"CloudVault/internal/storage"
	"CloudVault/internal/task"
	"CloudVault/model"
	"context"
	"io"
	"log"
	"strings"

	"gorm.io/gorm"
)

// SendFriendShare offers one of sender's files to a friend.
func SendFriendShare(ctx context.Context, sender uint64, req dto.SendFriendShareRequest) (*model.FriendFileShare, error) {
	if req.FileID == 0 || req.ReceiverID == 0 {
		return nil, errs.Validation("file and receiver are required")
	}
	if req.ReceiverID == sender {
		return nil, errs.Validation("you cannot share a file with yourself")
	}
	share := &model.FriendFileShare{
		FileID:     req.FileID,
		SenderID:   sender,
		ReceiverID: req.ReceiverID,
		Message:    strings.TrimSpace(req.Message),
		Status:     model.FriendSharePending,
	}
	var file *model.File
	err := repo.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		file, err = ownedFile(tx, sender, req.FileID)
		if err != nil {
			return err
		}
		ok, err := areFriends(tx, sender, req.ReceiverID)
		if err != nil {
			return err
		}
		if !ok {
			return errs.Authorization("you can only share files with friends")
		}
		var count int64
		if err := tx.Model(&model.FriendFileShare{}).
			Where("file_id = ? AND sender_id = ? AND receiver_id = ? AND status = ?",
				req.FileID, sender, req.ReceiverID, model.FriendSharePending).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errs.Conflict("this file is already waiting for your friend")
		}
		return tx.Create(share).Error
	})
	if err != nil {
		return nil, errs.FromDB(err, "file not found")
	}
	notifyFriendShare(ctx, share, file)
	return share, nil
}

// notifyFriendShare queues a mail for the receiver; failures are logged.
func notifyFriendShare(ctx context.Context, share *model.FriendFileShare, file *model.File) {
	var sender, receiver model.User
	db := repo.Db.WithContext(ctx)
	if err := db.First(&sender, share.SenderID).Error; err != nil {
		log.Printf("service: friend share %d notice skipped: %v", share.ID, err)
		return
	}
	if err := db.First(&receiver, share.ReceiverID).Error; err != nil {
		log.Printf("service: friend share %d notice skipped: %v", share.ID, err)
		return
	}
	notice := task.FriendShareNotice{
		ShareID:    share.ID,
		ReceiverID: receiver.ID,
		Recipient:  receiver.Email,
		Sender:     sender.Username,
		FileName:   file.Name,
		Message:    share.Message,
	}
	if _, err := task.EnqueueFriendShareNotice(ctx, notice); err != nil {
		log.Printf("service: enqueue friend share %d notice failed: %v", share.ID, err)
	}
}

func listFriendShares(ctx context.Context, query *gorm.DB, page dto.PageQuery) (*dto.FriendShareList, error) {
	page.Normalize()
	var total int64
	if err := query.Model(&model.FriendFileShare{}).Count(&total).Error; err != nil {
		return nil, errs.FromDB(err, "")
	}
	var rows []model.FriendFileShare
	if err := query.Preload("File").Preload("Sender").Preload("Receiver").
		Order("created_at DESC, id DESC").
		Offset((page.Page - 1) * page.PerPage).Limit(page.PerPage).
		Find(&rows).Error; err != nil {
		return nil, errs.FromDB(err, "")
	}
	out := &dto.FriendShareList{
		Shares:     make([]dto.FriendShareView, 0, len(rows)),
		Pagination: dto.NewPagination(page.Page, page.PerPage, total),
	}
	for i := range rows {
		out.Shares = append(out.Shares, dto.NewFriendShareView(&rows[i]))
	}
	return out, nil
}

// ReceivedFriendShares lists transfers addressed to receiver. Status
// defaults to pending; "all" disables the filter.
func ReceivedFriendShares(ctx context.Context, receiver uint64, page dto.PageQuery) (*dto.FriendShareList, error) {
	query := repo.Db.WithContext(ctx).Where("receiver_id = ?", receiver)
	status := strings.ToLower(strings.TrimSpace(page.Status))
	if status == "" {
		status = model.FriendSharePending
	}
	if status != "all" {
		query = query.Where("status = ?", status)
	}
	return listFriendShares(ctx, query, page)
}

// SentFriendShares lists transfers sent by sender.
func SentFriendShares(ctx context.Context, sender uint64, page dto.PageQuery) (*dto.FriendShareList, error) {
	query := repo.Db.WithContext(ctx).Where("sender_id = ?", sender)
	return listFriendShares(ctx, query, page)
}

func receivedShare(tx *gorm.DB, receiver, id uint64) (*model.FriendFileShare, error) {
	var share model.FriendFileShare
	if err := tx.Where("id = ? AND receiver_id = ?", id, receiver).First(&share).Error; err != nil {
		return nil, errs.FromDB(err, "share not found")
	}
	return &share, nil
}

func respondFriendShare(ctx context.Context, receiver, id uint64, status string) (*model.FriendFileShare, error) {
	var share *model.FriendFileShare
	err := repo.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		share, err = receivedShare(tx, receiver, id)
		if err != nil {
			return err
		}
		if share.Status != model.FriendSharePending {
			return errs.NotFound("share not found or already handled")
		}
		share.Status = status
		return tx.Model(share).Update("status", status).Error
	})
	if err != nil {
		return nil, errs.FromDB(err, "share not found")
	}
	return share, nil
}

// AcceptFriendShare accepts a pending transfer.
func AcceptFriendShare(ctx context.Context, receiver, id uint64) (*model.FriendFileShare, error) {
	return respondFriendShare(ctx, receiver, id, model.FriendShareAccepted)
}

// RejectFriendShare rejects a pending transfer.
func RejectFriendShare(ctx context.Context, receiver, id uint64) (*model.FriendFileShare, error) {
	return respondFriendShare(ctx, receiver, id, model.FriendShareRejected)
}

// SaveFriendShare copies an accepted transfer into one of receiver's folders.
func SaveFriendShare(ctx context.Context, receiver, id, folderID uint64) (*model.File, error) {
	db := repo.Db.WithContext(ctx)
	share, err := receivedShare(db, receiver, id)
	if err != nil {
		return nil, err
	}
	if share.Status != model.FriendShareAccepted {
		return nil, errs.InvalidOperation("only accepted shares can be saved")
	}
	var src model.File
	if err := db.Where("id = ? AND user_id = ?", share.FileID, share.SenderID).First(&src).Error; err != nil {
		return nil, errs.FromDB(err, "the shared file no longer exists")
	}
	return saveCopy(ctx, receiver, folderID, &src, func(tx *gorm.DB, file *model.File) error {
		res := tx.Model(&model.FriendFileShare{}).
			Where("id = ? AND status = ?", share.ID, model.FriendShareAccepted).
			Updates(map[string]interface{}{
				"status":          model.FriendShareSaved,
				"saved_folder_id": file.FolderID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.Conflict("share was already saved")
		}
		return nil
	})
}

// OpenFriendShare streams the shared file to its receiver.
func OpenFriendShare(ctx context.Context, receiver, id uint64) (*model.File, io.ReadCloser, storage.ObjectInfo, error) {
	db := repo.Db.WithContext(ctx)
	share, err := receivedShare(db, receiver, id)
	if err != nil {
		return nil, nil, storage.ObjectInfo{}, err
	}
	if share.Status != model.FriendShareAccepted && share.Status != model.FriendShareSaved {
		return nil, nil, storage.ObjectInfo{}, errs.Authorization("accept the share before downloading")
	}
	var src model.File
	if err := db.Where("id = ? AND user_id = ?", share.FileID, share.SenderID).First(&src).Error; err != nil {
		return nil, nil, storage.ObjectInfo{}, errs.FromDB(err, "the shared file no longer exists")
	}
	rc, info, err := openBlob(ctx, src.Path)
	if err != nil {
		return nil, nil, storage.ObjectInfo{}, err
	}
	return &src, rc, info, nil
}
