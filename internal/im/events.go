package im

import (
	"time"

	json "github.com/goccy/go-json"
)

// 线上事件名。客户端 -> 服务端的指令与服务端 -> 客户端的推送一一对应。
const (
	EventAuthenticate        = "authenticate"
	EventAuthenticated       = "authenticated"
	EventAuthenticationError = "authentication_error"

	EventSendMessage    = "send_message"
	EventReceiveMessage = "receive_message"
	EventMessageError   = "message_error"

	EventFileUploaded = "file_uploaded"
	EventFileReceived = "file_received"

	EventTyping            = "typing"
	EventUserTyping        = "user_typing"
	EventStopTyping        = "stop_typing"
	EventUserStoppedTyping = "user_stopped_typing"

	EventMarkRead     = "mark_read"
	EventMessagesRead = "messages_read"

	EventPartnerOnline  = "partner_online"
	EventPartnerOffline = "partner_offline"
)

// Envelope 统一的帧格式 {event, data}
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type AuthenticatePayload struct {
	Token string `json:"token"`
}

type AuthenticatedPayload struct {
	UserID         uint64 `json:"userId"`
	ConversationID uint64 `json:"conversationId,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type SendMessagePayload struct {
	ConversationID uint64 `json:"conversationId"`
	Content        string `json:"content"`
}

type FileUploadedPayload struct {
	ConversationID uint64 `json:"conversationId"`
	FileID         uint64 `json:"fileId"`
}

type TypingPayload struct {
	ConversationID uint64 `json:"conversationId"`
}

type UserTypingPayload struct {
	ConversationID uint64 `json:"conversationId"`
	UserID         uint64 `json:"userId"`
	UserName       string `json:"userName,omitempty"`
}

type MarkReadPayload struct {
	ConversationID uint64 `json:"conversationId"`
}

type MessagesReadPayload struct {
	ConversationID uint64 `json:"conversationId"`
	ReaderID       uint64 `json:"readerId"`
	Count          int64  `json:"count"`
}

type PresencePayload struct {
	UserID   uint64     `json:"userId"`
	Name     string     `json:"name,omitempty"`
	IsOnline bool       `json:"isOnline"`
	LastSeen *time.Time `json:"lastSeen,omitempty"`
}
