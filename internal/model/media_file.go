package model

import "time"

// MediaFile 附件元数据；Filename 为对象存储内部名，OriginalName 为用户侧文件名
type MediaFile struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID uint64    `gorm:"index;not null" json:"conversationId"`
	UploadedByID   uint64    `gorm:"index;not null" json:"uploadedById"`
	Filename       string    `gorm:"type:varchar(255);not null" json:"filename"`
	OriginalName   string    `gorm:"type:varchar(255);not null" json:"originalName"`
	MimeType       string    `gorm:"type:varchar(100)" json:"mimeType"`
	FileSize       int64     `gorm:"not null" json:"fileSize"`
	IsDeleted      bool      `gorm:"type:tinyint(1);default:0;index" json:"isDeleted"`
	DeleteAfter    time.Time `gorm:"index;not null" json:"deleteAfter"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (MediaFile) TableName() string { return "media_files" }
