package model

import (
	"time"
)

type User struct {
	ID           uint64  `gorm:"primaryKey"`
	Email        string  `gorm:"type:varchar(255);uniqueIndex:idx_email"`
	Username     *string `gorm:"type:varchar(50);uniqueIndex:idx_username"`
	Name         *string `gorm:"type:varchar(100)"`
	PasswordHash string  `gorm:"type:varchar(255)"`
	IsOnline     bool    `gorm:"type:tinyint(1);default:0"`
	LastSeen     *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) TableName() string {
	return "users"
}

// DisplayName 取展示名：优先 Name，其次 Username，最后回落到 Email
func (u *User) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	if u.Username != nil && *u.Username != "" {
		return *u.Username
	}
	return u.Email
}
