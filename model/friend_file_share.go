package model

import "time"

const (
	FriendSharePending  = "pending"
	FriendShareAccepted = "accepted"
	FriendShareRejected = "rejected"
	FriendShareSaved    = "saved"
)

type FriendFileShare struct {
	ID uint64 `gorm:"primaryKey" json:"id"`

	FileID uint64 `gorm:"column:file_id;not null;index" json:"fileId"`
	File   *File  `gorm:"foreignKey:FileID;references:ID" json:"file,omitempty"`

	SenderID uint64 `gorm:"column:sender_id;not null;index" json:"senderId"`
	Sender   *User  `gorm:"foreignKey:SenderID;references:ID" json:"sender,omitempty"`

	ReceiverID uint64 `gorm:"column:receiver_id;not null;index" json:"receiverId"`
	Receiver   *User  `gorm:"foreignKey:ReceiverID;references:ID" json:"receiver,omitempty"`

	Message       string  `gorm:"column:message;type:text" json:"message"`
	Status        string  `gorm:"column:status;type:varchar(20);not null;default:'pending';index" json:"status"`
	SavedFolderID *uint64 `gorm:"column:saved_folder_id" json:"savedFolderId"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName returns the database table name.
func (FriendFileShare) TableName() string {
	return "friend_file_shares"
}
