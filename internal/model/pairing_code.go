package model

import "time"

// 配对码状态：pending -> used 或 pending -> expired，单向迁移
const (
	CodeStatusPending = "pending"
	CodeStatusUsed    = "used"
	CodeStatusExpired = "expired"
)

// PairingCode 一次性配对码
type PairingCode struct {
	ID        uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Code      string     `gorm:"uniqueIndex;type:varchar(16)" json:"code"` // 规范化为大写
	CreatorID uint64     `gorm:"index;not null" json:"creatorId"`
	Status    string     `gorm:"type:varchar(16);not null;default:pending;index" json:"status"`
	ExpiresAt time.Time  `gorm:"index;not null" json:"expiresAt"`
	UsedBy    *uint64    `json:"usedBy"`
	UsedAt    *time.Time `json:"usedAt"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (PairingCode) TableName() string { return "pairing_codes" }
