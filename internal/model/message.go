package model

import "time"

// Message 消息表，Content 存密文；DeleteAfter 创建后不可变
type Message struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID uint64    `gorm:"index;not null" json:"conversationId"`
	SenderID       uint64    `gorm:"index;not null" json:"senderId"`
	Content        *string   `gorm:"type:text" json:"content"` // 纯附件消息可为空
	IsRead         bool      `gorm:"type:tinyint(1);default:0" json:"isRead"`
	IsDeleted      bool      `gorm:"type:tinyint(1);default:0;index" json:"isDeleted"`
	DeleteAfter    time.Time `gorm:"index;not null" json:"deleteAfter"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (Message) TableName() string { return "messages" }
