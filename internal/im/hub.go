package im

import (
	"Duet/internal/api/dto"
	"Duet/internal/model"
	"Duet/internal/pkg/consts"
	"Duet/internal/pkg/security"
	"Duet/internal/registry"
	"Duet/internal/repository"
	"Duet/internal/service"
	"context"
	"errors"
	log "log/slog"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

// PresenceStore 在线状态的外部镜像（Redis），测试中可替换为空实现
type PresenceStore interface {
	SetOnline(ctx context.Context, userID uint64) error
	SetOffline(ctx context.Context, userID uint64) error
}

// Hub 实时中枢。维护 userID -> Session 的在线表，
// 所有推送都走 emitToUser 这一个出口。
type Hub struct {
	mu       sync.RWMutex
	sessions map[uint64]*Session

	userRepo       repository.UserRepo
	reg            *registry.ConversationRegistry
	messageService service.MessageService
	mediaService   service.MediaService
	notifService   service.NotificationService
	presence       PresenceStore
	now            func() time.Time
}

func NewHub(
	userRepo repository.UserRepo,
	reg *registry.ConversationRegistry,
	messageService service.MessageService,
	mediaService service.MediaService,
	notifService service.NotificationService,
	presence PresenceStore,
) *Hub {
	return &Hub{
		sessions:       make(map[uint64]*Session),
		userRepo:       userRepo,
		reg:            reg,
		messageService: messageService,
		mediaService:   mediaService,
		notifService:   notifService,
		presence:       presence,
		now:            time.Now,
	}
}

// Dispatch 解析一帧并路由到对应处理器。未鉴权的连接只接受 authenticate。
func (h *Hub) Dispatch(ctx context.Context, sess *Session, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		_ = sess.Send(EventMessageError, &ErrorPayload{Message: "malformed frame"})
		return
	}

	if sess.UserID() == 0 {
		if env.Event != EventAuthenticate {
			_ = sess.Send(EventAuthenticationError, &ErrorPayload{Message: "authentication required"})
			return
		}
		h.handleAuthenticate(ctx, sess, env.Data)
		return
	}

	switch env.Event {
	case EventAuthenticate:
		h.handleAuthenticate(ctx, sess, env.Data)
	case EventSendMessage:
		h.handleSendMessage(ctx, sess, env.Data)
	case EventFileUploaded:
		h.handleFileUploaded(ctx, sess, env.Data)
	case EventTyping:
		h.handleTyping(ctx, sess, env.Data, EventUserTyping)
	case EventStopTyping:
		h.handleTyping(ctx, sess, env.Data, EventUserStoppedTyping)
	case EventMarkRead:
		h.handleMarkRead(ctx, sess, env.Data)
	default:
		log.DebugContext(ctx, "忽略未知 WS 事件", "event", env.Event)
	}
}

// Authenticate 校验 Token 并登记会话。同一用户重复鉴权时新连接顶替旧连接。
func (h *Hub) Authenticate(ctx context.Context, sess *Session, token string) error {
	claims, err := security.ValidateToken(token)
	if err != nil {
		return service.AuthenticationError
	}
	userID := claims.UserID

	h.mu.Lock()
	if old, ok := h.sessions[userID]; ok && old != sess {
		old.Close()
	}
	h.sessions[userID] = sess
	h.mu.Unlock()
	sess.bind(userID)

	if err = h.userRepo.UpdateOnlineStatus(ctx, userID, true, nil); err != nil {
		log.WarnContext(ctx, "更新在线状态失败", "userID", userID, "err", err)
	}
	if err = h.presence.SetOnline(ctx, userID); err != nil {
		log.WarnContext(ctx, "Presence 镜像写入失败", "userID", userID, "err", err)
	}

	// 通知对端上线
	conv, err := h.reg.FindActiveFor(ctx, userID)
	if err != nil {
		log.WarnContext(ctx, "查询会话失败", "userID", userID, "err", err)
		conv = nil
	}
	var convID uint64
	if conv != nil {
		convID = conv.ID
		h.emitToUser(conv.PartnerOf(userID), EventPartnerOnline, &PresencePayload{
			UserID:   userID,
			Name:     h.displayName(ctx, userID),
			IsOnline: true,
		})
	}

	_ = sess.Send(EventAuthenticated, &AuthenticatedPayload{UserID: userID, ConversationID: convID})
	log.InfoContext(ctx, "用户 WS 已鉴权", "userID", userID)
	return nil
}

// Disconnect 连接收尾。仅当该连接仍是当前登记连接时才下线，
// 顶替场景下旧连接的断开不影响新连接的在线状态。
func (h *Hub) Disconnect(ctx context.Context, sess *Session) {
	userID := sess.UserID()
	sess.Close()
	if userID == 0 {
		return
	}

	h.mu.Lock()
	current, ok := h.sessions[userID]
	if !ok || current != sess {
		h.mu.Unlock()
		return
	}
	delete(h.sessions, userID)
	h.mu.Unlock()

	lastSeen := h.now()
	if err := h.userRepo.UpdateOnlineStatus(ctx, userID, false, &lastSeen); err != nil {
		log.WarnContext(ctx, "更新离线状态失败", "userID", userID, "err", err)
	}
	if err := h.presence.SetOffline(ctx, userID); err != nil {
		log.WarnContext(ctx, "Presence 镜像清理失败", "userID", userID, "err", err)
	}

	if conv, err := h.reg.FindActiveFor(ctx, userID); err == nil && conv != nil {
		h.emitToUser(conv.PartnerOf(userID), EventPartnerOffline, &PresencePayload{
			UserID:   userID,
			Name:     h.displayName(ctx, userID),
			IsOnline: false,
			LastSeen: &lastSeen,
		})
	}
	log.InfoContext(ctx, "用户 WS 已断开", "userID", userID)
}

// IsOnline 查询用户是否有存活连接
func (h *Hub) IsOnline(userID uint64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.sessions[userID]
	return ok
}

func (h *Hub) handleAuthenticate(ctx context.Context, sess *Session, raw json.RawMessage) {
	var p AuthenticatePayload
	if err := json.Unmarshal(raw, &p); err != nil || p.Token == "" {
		_ = sess.Send(EventAuthenticationError, &ErrorPayload{Message: "token required"})
		return
	}
	if err := h.Authenticate(ctx, sess, p.Token); err != nil {
		_ = sess.Send(EventAuthenticationError, &ErrorPayload{Message: "invalid token"})
	}
}

// handleSendMessage 消息入库后向房间广播，发送方自己也会收到回显帧；
// 对端不在线则转为伪装通知落库。
func (h *Hub) handleSendMessage(ctx context.Context, sess *Session, raw json.RawMessage) {
	var p SendMessagePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		_ = sess.Send(EventMessageError, &ErrorPayload{Message: "malformed payload"})
		return
	}
	senderID := sess.UserID()

	msg, err := h.messageService.SendMessage(ctx, senderID, &dto.SendMessageReq{
		ConversationID: p.ConversationID,
		Content:        p.Content,
	})
	if err != nil {
		_ = sess.Send(EventMessageError, &ErrorPayload{Message: err.Error()})
		return
	}

	conv, err := h.reg.Authorize(ctx, senderID, p.ConversationID)
	if err != nil || conv == nil {
		return
	}
	partnerID := conv.PartnerOf(senderID)

	delivered := h.emitToConversation(conv, EventReceiveMessage, msg)
	if !delivered[partnerID] {
		h.notifyOffline(ctx, partnerID, consts.NotificationTypeMessage, "新消息", msg.SenderName+" 发来一条消息")
	}
}

func (h *Hub) handleFileUploaded(ctx context.Context, sess *Session, raw json.RawMessage) {
	var p FileUploadedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		_ = sess.Send(EventMessageError, &ErrorPayload{Message: "malformed payload"})
		return
	}
	uploaderID := sess.UserID()

	fileDTO, err := h.mediaService.GetFileInfo(ctx, uploaderID, p.FileID)
	if err != nil {
		// 文件在广播前被并发删除属于正常竞态，静默跳过
		if errors.Is(err, service.ErrFileNotExist) {
			return
		}
		_ = sess.Send(EventMessageError, &ErrorPayload{Message: err.Error()})
		return
	}

	conv, err := h.reg.Authorize(ctx, uploaderID, p.ConversationID)
	if err != nil || conv == nil {
		return
	}
	partnerID := conv.PartnerOf(uploaderID)

	delivered := h.emitToConversation(conv, EventFileReceived, fileDTO)
	if !delivered[partnerID] {
		h.notifyOffline(ctx, partnerID, consts.NotificationTypeFile, "新附件", fileDTO.UploaderName+" 发来一个附件")
	}
}

// handleTyping 输入状态只做透传，服务端不落任何状态，不回显给发起者
func (h *Hub) handleTyping(ctx context.Context, sess *Session, raw json.RawMessage, outEvent string) {
	var p TypingPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return
	}
	userID := sess.UserID()

	conv, err := h.reg.Authorize(ctx, userID, p.ConversationID)
	if err != nil || conv == nil {
		return
	}
	h.emitToUser(conv.PartnerOf(userID), outEvent, &UserTypingPayload{
		ConversationID: p.ConversationID,
		UserID:         userID,
		UserName:       h.displayName(ctx, userID),
	})
}

// handleMarkRead 已读回执推给对端，让发送方即时看到已读状态
func (h *Hub) handleMarkRead(ctx context.Context, sess *Session, raw json.RawMessage) {
	var p MarkReadPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return
	}
	readerID := sess.UserID()

	count, err := h.messageService.MarkAsRead(ctx, readerID, p.ConversationID)
	if err != nil {
		_ = sess.Send(EventMessageError, &ErrorPayload{Message: err.Error()})
		return
	}
	if count == 0 {
		return
	}

	conv, err := h.reg.Authorize(ctx, readerID, p.ConversationID)
	if err != nil || conv == nil {
		return
	}
	h.emitToUser(conv.PartnerOf(readerID), EventMessagesRead, &MessagesReadPayload{
		ConversationID: p.ConversationID,
		ReaderID:       readerID,
		Count:          count,
	})
}

// emitToUser 向指定用户的存活连接推送一帧；返回是否成功送达。
// 写失败按对端不可达处理，连接收尾交给其读循环。
func (h *Hub) emitToUser(userID uint64, event string, data any) bool {
	h.mu.RLock()
	sess, ok := h.sessions[userID]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	if err := sess.Send(event, data); err != nil {
		log.Warn("WS 推送失败", "userID", userID, "event", event, "err", err)
		return false
	}
	return true
}

// emitToConversation 房间广播：给会话两端的存活连接各推一帧，
// 返回每个成员是否送达，调用方据此做离线补偿。
func (h *Hub) emitToConversation(conv *model.Conversation, event string, data any) map[uint64]bool {
	delivered := make(map[uint64]bool, 2)
	for _, id := range []uint64{conv.User1ID, conv.User2ID} {
		delivered[id] = h.emitToUser(id, event, data)
	}
	return delivered
}

func (h *Hub) displayName(ctx context.Context, userID uint64) string {
	user, err := h.userRepo.GetUserById(ctx, userID)
	if err != nil || user == nil {
		return ""
	}
	return user.DisplayName()
}

func (h *Hub) notifyOffline(ctx context.Context, userID uint64, ntype, title, message string) {
	if _, err := h.notifService.Create(ctx, userID, ntype, title, message); err != nil {
		log.WarnContext(ctx, "离线通知创建失败", "userID", userID, "err", err)
	}
}
