package service

import (
	"CloudVault/internal/dto"
	"CloudVault/internal/errs"
	"CloudVault/internal/repo"
	"CloudVault/model"
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// findFriendship returns the row linking a and b in either direction.
func findFriendship(tx *gorm.DB, a, b uint64) (*model.Friendship, error) {
	var f model.Friendship
	err := tx.Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)", a, b, b, a).
		First(&f).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

// AreFriends reports whether a and b have an accepted friendship.
func AreFriends(ctx context.Context, a, b uint64) (bool, error) {
	return areFriends(repo.Db.WithContext(ctx), a, b)
}

func areFriends(tx *gorm.DB, a, b uint64) (bool, error) {
	var count int64
	err := tx.Model(&model.Friendship{}).
		Where("status = ?", model.FriendshipAccepted).
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)", a, b, b, a).
		Count(&count).Error
	return count > 0, err
}

// SearchByCode looks a user up by friend code.
func SearchByCode(ctx context.Context, actor uint64, code string) (*dto.FriendSearchResult, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, errs.Validation("user code is required")
	}
	db := repo.Db.WithContext(ctx)
	me, err := GetUser(ctx, actor)
	if err != nil {
		return nil, err
	}
	if me.UserCode == code {
		return nil, errs.Validation("you cannot search for yourself")
	}
	var target model.User
	if err := db.Where("user_code = ?", code).First(&target).Error; err != nil {
		return nil, errs.FromDB(err, "no user with that code")
	}
	result := &dto.FriendSearchResult{User: dto.NewPublicUserView(&target)}
	f, err := findFriendship(db, actor, target.ID)
	if err != nil {
		return nil, errs.FromDB(err, "")
	}
	if f != nil {
		direction := "sent"
		if f.UserID != actor {
			direction = "received"
		}
		result.Friendship = &dto.FriendshipState{ID: f.ID, Status: f.Status, Direction: direction}
	}
	return result, nil
}

// SendFriendRequest creates a pending request from actor to friendID.
func SendFriendRequest(ctx context.Context, actor, friendID uint64) (*model.Friendship, error) {
	if friendID == 0 {
		return nil, errs.Validation("friend id is required")
	}
	if friendID == actor {
		return nil, errs.Validation("you cannot add yourself")
	}
	var created *model.Friendship
	err := repo.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var target model.User
		if err := tx.Select("id").First(&target, friendID).Error; err != nil {
			return errs.FromDB(err, "user not found")
		}
		existing, err := findFriendship(tx, actor, friendID)
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.Status == model.FriendshipAccepted {
				return errs.Conflict("you are already friends")
			}
			return errs.Conflict("a friend request already exists")
		}
		created = &model.Friendship{UserID: actor, FriendID: friendID, Status: model.FriendshipPending}
		return tx.Create(created).Error
	})
	if err != nil {
		return nil, errs.FromDB(err, "a friend request already exists")
	}
	return created, nil
}

// ListFriendRequests returns pending requests in both directions.
func ListFriendRequests(ctx context.Context, actor uint64) (*dto.FriendRequests, error) {
	db := repo.Db.WithContext(ctx)
	var received, sent []model.Friendship
	if err := db.Preload("User").
		Where("friend_id = ? AND status = ?", actor, model.FriendshipPending).
		Order("created_at DESC").Find(&received).Error; err != nil {
		return nil, errs.FromDB(err, "")
	}
	if err := db.Preload("Friend").
		Where("user_id = ? AND status = ?", actor, model.FriendshipPending).
		Order("created_at DESC").Find(&sent).Error; err != nil {
		return nil, errs.FromDB(err, "")
	}
	out := &dto.FriendRequests{
		Received: make([]dto.FriendRequestView, 0, len(received)),
		Sent:     make([]dto.FriendRequestView, 0, len(sent)),
	}
	for _, f := range received {
		out.Received = append(out.Received, dto.FriendRequestView{
			ID: f.ID, User: dto.NewPublicUserView(f.User), Status: f.Status, CreatedAt: f.CreatedAt,
		})
	}
	for _, f := range sent {
		out.Sent = append(out.Sent, dto.FriendRequestView{
			ID: f.ID, User: dto.NewPublicUserView(f.Friend), Status: f.Status, CreatedAt: f.CreatedAt,
		})
	}
	return out, nil
}

func pendingRequestFor(tx *gorm.DB, actor, requestID uint64) (*model.Friendship, error) {
	var f model.Friendship
	err := tx.Where("id = ? AND friend_id = ? AND status = ?", requestID, actor, model.FriendshipPending).
		First(&f).Error
	if err != nil {
		return nil, errs.FromDB(err, "friend request not found")
	}
	return &f, nil
}

// AcceptFriendRequest accepts a pending request addressed to actor.
func AcceptFriendRequest(ctx context.Context, actor, requestID uint64) error {
	return repo.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		f, err := pendingRequestFor(tx, actor, requestID)
		if err != nil {
			return err
		}
		return tx.Model(f).Update("status", model.FriendshipAccepted).Error
	})
}

// RejectFriendRequest removes a pending request addressed to actor.
func RejectFriendRequest(ctx context.Context, actor, requestID uint64) error {
	return repo.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		f, err := pendingRequestFor(tx, actor, requestID)
		if err != nil {
			return err
		}
		return tx.Delete(f).Error
	})
}

// ListFriends returns accepted friendships projected to the other party.
func ListFriends(ctx context.Context, actor uint64) ([]dto.FriendView, error) {
	var rows []model.Friendship
	err := repo.Db.WithContext(ctx).Preload("User").Preload("Friend").
		Where("status = ? AND (user_id = ? OR friend_id = ?)", model.FriendshipAccepted, actor, actor).
		Order("updated_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, errs.FromDB(err, "")
	}
	out := make([]dto.FriendView, 0, len(rows))
	for _, f := range rows {
		other := f.Friend
		if f.FriendID == actor {
			other = f.User
		}
		out = append(out, dto.FriendView{FriendshipID: f.ID, User: dto.NewPublicUserView(other), Since: f.UpdatedAt})
	}
	return out, nil
}

// RemoveFriend deletes the accepted friendship with friendUserID.
func RemoveFriend(ctx context.Context, actor, friendUserID uint64) error {
	res := repo.Db.WithContext(ctx).
		Where("status = ?", model.FriendshipAccepted).
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)", actor, friendUserID, friendUserID, actor).
		Delete(&model.Friendship{})
	if res.Error != nil {
		return errs.FromDB(res.Error, "")
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("friend not found")
	}
	return nil
}
