package dto

import "time"

// NotificationDTO 通知响应；Message 字段始终填充伪装文案
type NotificationDTO struct {
	ID        uint64    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// MarkNotificationReadReq 标记通知已读
type MarkNotificationReadReq struct {
	NotificationID uint64 `json:"notificationId" binding:"required"`
}
