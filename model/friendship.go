package model

import "time"

const (
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
	FriendshipBlocked  = "blocked"
)

// Friendship is stored once per pair; UserID is the requester.
type Friendship struct {
	ID uint64 `gorm:"primaryKey" json:"id"`

	UserID uint64 `gorm:"column:user_id;not null;uniqueIndex:uk_friendship_pair,priority:1" json:"userId"`
	User   *User  `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`

	FriendID uint64 `gorm:"column:friend_id;not null;index;uniqueIndex:uk_friendship_pair,priority:2" json:"friendId"`
	Friend   *User  `gorm:"foreignKey:FriendID;references:ID" json:"friend,omitempty"`

	Status string `gorm:"column:status;type:varchar(20);not null;default:'pending'" json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName returns the database table name.
func (Friendship) TableName() string {
	return "friendships"
}

// Other returns the id of the party that is not userID.
func (f *Friendship) Other(userID uint64) uint64 {
	if f.UserID == userID {
		return f.FriendID
	}
	return f.UserID
}
