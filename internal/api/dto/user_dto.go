package dto

import "time"

// RegisterDTO 注册请求
type RegisterDTO struct {
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=6,max=64"`
	Username *string `json:"username,omitempty"`
	Name     *string `json:"name,omitempty"`
}

// CredentialDTO 登录凭据
type CredentialDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserDTO 用户信息
type UserDTO struct {
	ID        uint64     `json:"id"`
	Email     string     `json:"email"`
	Username  *string    `json:"username,omitempty"`
	Name      *string    `json:"name,omitempty"`
	IsOnline  bool       `json:"isOnline"`
	LastSeen  *time.Time `json:"lastSeen,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// LoginResultDTO 登录响应
type LoginResultDTO struct {
	Token string   `json:"token"`
	User  *UserDTO `json:"user"`
}
