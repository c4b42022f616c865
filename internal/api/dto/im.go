package dto

import "time"

// SendMessageReq 发送消息请求体
type SendMessageReq struct {
	ConversationID uint64 `json:"conversationId" binding:"required"`
	Content        string `json:"content" binding:"required"`
}

// MessageDTO 消息明细响应，Content 为解密后的明文
type MessageDTO struct {
	ID             uint64    `json:"id"`
	ConversationID uint64    `json:"conversationId"`
	SenderID       uint64    `json:"senderId"`
	SenderName     string    `json:"senderName"`
	Content        string    `json:"content"`
	IsRead         bool      `json:"isRead"`
	CreatedAt      time.Time `json:"createdAt"`
}

// MarkAsReadReq 标记已读请求
type MarkAsReadReq struct {
	ConversationID uint64 `json:"conversationId" binding:"required"`
}
