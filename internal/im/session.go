package im

import (
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

const writeTimeout = 10 * time.Second

// Conn 是 Session 对底层连接的最小依赖，gorilla 的 *websocket.Conn 天然满足
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Session 一条已升级的 Websocket 连接。写操作由互斥锁串行化，
// 鉴权通过前 userID 为零值。
type Session struct {
	conn Conn

	mu     sync.Mutex
	userID uint64
}

func NewSession(conn Conn) *Session {
	return &Session{conn: conn}
}

func (s *Session) UserID() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

func (s *Session) bind(userID uint64) {
	s.mu.Lock()
	s.userID = userID
	s.mu.Unlock()
}

// Send 序列化并写出一帧。写失败不上抛业务错误，由调用方决定是否断开。
func (s *Session) Send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(&Envelope{Event: event, Data: payload})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, frame)
}

func (s *Session) Close() {
	_ = s.conn.Close()
}
