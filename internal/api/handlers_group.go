package api

import "Duet/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	UserHandler         *handler.UserHandler
	PairingHandler      *handler.PairingHandler
	MessageHandler      *handler.MessageHandler
	MediaHandler        *handler.MediaHandler
	NotificationHandler *handler.NotificationHandler
	RetentionHandler    *handler.RetentionHandler
	WsHandler           *handler.WsHandler
}
