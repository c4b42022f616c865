package dto

import "time"

// MediaFileDTO 附件元数据响应；存储内部对象名不外露
type MediaFileDTO struct {
	ID             uint64    `json:"id"`
	ConversationID uint64    `json:"conversationId"`
	UploadedByID   uint64    `json:"uploadedById"`
	UploaderName   string    `json:"uploaderName,omitempty"`
	OriginalName   string    `json:"originalName"`
	MimeType       string    `json:"mimeType"`
	FileSize       int64     `json:"fileSize"`
	CreatedAt      time.Time `json:"createdAt"`
}
