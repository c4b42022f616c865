package model

import "time"

const (
	ConversationStatusActive = "active"
	ConversationStatusClosed = "closed"
)

// Conversation 双人会话主表，User1ID/User2ID 为无序对
type Conversation struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	User1ID   uint64    `gorm:"index;not null" json:"user1Id"`
	User2ID   uint64    `gorm:"index;not null" json:"user2Id"`
	Status    string    `gorm:"type:varchar(16);not null;default:active;index" json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Conversation) TableName() string { return "conversations" }

// HasMember 判断用户是否属于该会话
func (c *Conversation) HasMember(userID uint64) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// PartnerOf 返回会话中另一方的用户 ID
func (c *Conversation) PartnerOf(userID uint64) uint64 {
	if c.User1ID == userID {
		return c.User2ID
	}
	return c.User1ID
}
