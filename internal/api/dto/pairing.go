package dto

import "time"

// PairingCodeDTO 生成配对码响应
type PairingCodeDTO struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// RedeemCodeReq 兑换配对码请求
type RedeemCodeReq struct {
	Code string `json:"code" binding:"required"`
}

// RedeemResultDTO 兑换成功响应
type RedeemResultDTO struct {
	ConversationID uint64 `json:"conversationId"`
	PartnerName    string `json:"partnerName"`
}

// PartnerDTO 对方概要信息
type PartnerDTO struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	IsOnline bool   `json:"isOnline"`
}

// PairStatusDTO 配对状态查询响应
type PairStatusDTO struct {
	IsConnected    bool        `json:"isConnected"`
	ConversationID uint64      `json:"conversationId,omitempty"`
	Partner        *PartnerDTO `json:"partner,omitempty"`
	ConnectedAt    *time.Time  `json:"connectedAt,omitempty"`
}
