package handler

import (
	"Duet/internal/im"
	"Duet/internal/service"
	"context"
	log "log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WsHandler struct {
	hub *im.Hub
}

func NewWsHandler(hub *im.Hub) *WsHandler {
	return &WsHandler{hub: hub}
}

// Connect 升级 Websocket 并进入读循环。
// 带 token 查询参数时在升级后立即鉴权，否则等客户端发 authenticate 帧。
func (s *WsHandler) Connect(c *gin.Context) {
	token := c.Query("token")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WS 协议升级失败", "err", err)
		return
	}

	ctx := context.Background()
	sess := im.NewSession(conn)
	defer s.hub.Disconnect(ctx, sess)

	if token != "" {
		if err = s.hub.Authenticate(ctx, sess, token); err != nil {
			_ = sess.Send(im.EventAuthenticationError, &im.ErrorPayload{Message: service.AuthenticationError.Error()})
			return
		}
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		s.hub.Dispatch(ctx, sess, raw)
	}
}
