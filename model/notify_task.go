package model

import "time"

const (
	NotifyStatusPending  = "pending"
	NotifyStatusRunning  = "running"
	NotifyStatusRetrying = "retrying"
	NotifyStatusSent     = "sent"
	NotifyStatusFailed   = "failed"
)

// NotifyTask is an outgoing mail tracked through the worker queue.
type NotifyTask struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"`

	UserID uint64 `gorm:"column:user_id;index;not null" json:"user_id"`

	Kind      string `gorm:"column:kind;type:varchar(32);not null" json:"kind"` // friend_share
	Recipient string `gorm:"column:recipient;type:varchar(255);not null" json:"recipient"`
	Subject   string `gorm:"column:subject;type:varchar(255);not null" json:"subject"`
	Body      string `gorm:"column:body;type:text;not null" json:"body"`

	Status      string     `gorm:"column:status;type:varchar(32);index;not null" json:"status"`
	ErrorMsg    string     `gorm:"column:error_msg;type:text" json:"error_msg"`
	RetryCount  int        `gorm:"column:retry_count;default:0" json:"retry_count"`
	NextRetryAt *time.Time `gorm:"column:next_retry_at" json:"next_retry_at"`
	StartedAt   *time.Time `gorm:"column:started_at" json:"started_at"`
	FinishedAt  *time.Time `gorm:"column:finished_at" json:"finished_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (NotifyTask) TableName() string {
	return "notify_task"
}
