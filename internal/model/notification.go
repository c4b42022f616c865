package model

import "time"

// Notification 站内通知；对外只暴露 DisguiseText，Title/Message 仅服务端可见
type Notification struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       uint64    `gorm:"index;not null" json:"userId"`
	Type         string    `gorm:"type:varchar(32);not null" json:"type"`
	Title        string    `gorm:"type:varchar(255)" json:"-"`
	Message      string    `gorm:"type:varchar(1024)" json:"-"`
	DisguiseText string    `gorm:"type:varchar(255);not null" json:"disguiseText"` // 创建时固定，之后不可变
	IsRead       bool      `gorm:"type:tinyint(1);default:0" json:"isRead"`
	CreatedAt    time.Time `gorm:"index" json:"createdAt"`
}

func (Notification) TableName() string { return "notifications" }
