package model

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID uint64 `gorm:"primaryKey" json:"id"`

	Username string `gorm:"column:username;type:varchar(80);not null;uniqueIndex" json:"username"`

	Email string `gorm:"column:email;type:varchar(120);not null;uniqueIndex" json:"email"`

	PasswordHash string `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`

	Avatar string `gorm:"column:avatar;type:varchar(255);not null;default:''" json:"avatar"`
	Role   string `gorm:"column:role;type:varchar(20);not null;default:'user'" json:"role"`

	// UserCode is the public handle used for friend discovery.
	UserCode string `gorm:"column:user_code;type:varchar(8);not null;uniqueIndex" json:"userCode"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

// TableName returns the database table name.
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
