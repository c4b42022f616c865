package service

import (
	"Duet/internal/api/dto"
	"Duet/internal/model"
	"Duet/internal/pkg/security"
	"Duet/internal/registry"
	"Duet/internal/repository"
	"context"
	log "log/slog"
	"time"
)

// 解密失败时的占位文案，消息本体保留
const undecryptablePlaceholder = "[无法解密的消息]"

type MessageService interface {
	SendMessage(ctx context.Context, senderID uint64, req *dto.SendMessageReq) (*dto.MessageDTO, error)
	ListMessages(ctx context.Context, userID uint64, convID uint64) ([]*dto.MessageDTO, error)
	MarkAsRead(ctx context.Context, readerID uint64, convID uint64) (int64, error)
	DeleteMessage(ctx context.Context, userID uint64, messageID uint64) error
	UnreadCount(ctx context.Context, userID uint64) (int64, error)
}

type messageServiceImpl struct {
	messageRepo repository.MessageRepo
	userRepo    repository.UserRepo
	reg         *registry.ConversationRegistry
	cipher      security.MessageCipher
	messageTTL  time.Duration
	now         func() time.Time
}

func NewMessageService(
	messageRepo repository.MessageRepo,
	userRepo repository.UserRepo,
	reg *registry.ConversationRegistry,
	cipher security.MessageCipher,
	messageTTL time.Duration,
) MessageService {
	return &messageServiceImpl{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		reg:         reg,
		cipher:      cipher,
		messageTTL:  messageTTL,
		now:         time.Now,
	}
}

// SendMessage 加密入库并返回带明文的消息明细。
// 会话成员资格按消息逐条复核，而不是只在连接建立时检查一次。
func (s *messageServiceImpl) SendMessage(ctx context.Context, senderID uint64, req *dto.SendMessageReq) (*dto.MessageDTO, error) {
	conv, err := s.reg.Authorize(ctx, senderID, req.ConversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, ErrConversationNotFound
	}

	ciphertext, err := s.cipher.EncryptForPair(conv.User1ID, conv.User2ID, req.Content)
	if err != nil {
		return nil, err
	}

	now := s.now()
	msg := &model.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		Content:        &ciphertext,
		DeleteAfter:    now.Add(s.messageTTL),
		CreatedAt:      now,
	}
	if err = s.messageRepo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	senderName := ""
	if sender, err := s.userRepo.GetUserById(ctx, senderID); err == nil && sender != nil {
		senderName = sender.DisplayName()
	}

	return &dto.MessageDTO{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       senderID,
		SenderName:     senderName,
		Content:        req.Content,
		IsRead:         msg.IsRead,
		CreatedAt:      msg.CreatedAt,
	}, nil
}

// ListMessages 拉取会话消息并解密；被保留引擎软删的消息已在仓库层过滤
func (s *messageServiceImpl) ListMessages(ctx context.Context, userID uint64, convID uint64) ([]*dto.MessageDTO, error) {
	conv, err := s.reg.Authorize(ctx, userID, convID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, ErrConversationNotFound
	}

	msgs, err := s.messageRepo.ListByConversation(ctx, convID)
	if err != nil {
		return nil, err
	}

	names := s.loadNames(ctx, conv)

	res := make([]*dto.MessageDTO, 0, len(msgs))
	for _, m := range msgs {
		content := ""
		if m.Content != nil {
			content, err = s.cipher.DecryptForPair(conv.User1ID, conv.User2ID, *m.Content)
			if err != nil {
				log.WarnContext(ctx, "消息解密失败", "message", m.ID, "err", err)
				content = undecryptablePlaceholder
			}
		}
		res = append(res, &dto.MessageDTO{
			ID:             m.ID,
			ConversationID: m.ConversationID,
			SenderID:       m.SenderID,
			SenderName:     names[m.SenderID],
			Content:        content,
			IsRead:         m.IsRead,
			CreatedAt:      m.CreatedAt,
		})
	}
	return res, nil
}

// MarkAsRead 将非本人发送的消息置为已读，返回本次置位的条数
func (s *messageServiceImpl) MarkAsRead(ctx context.Context, readerID uint64, convID uint64) (int64, error) {
	conv, err := s.reg.Authorize(ctx, readerID, convID)
	if err != nil {
		return 0, err
	}
	if conv == nil {
		return 0, ErrConversationNotFound
	}
	return s.messageRepo.MarkConversationRead(ctx, convID, readerID)
}

// DeleteMessage 仅发送者本人可删
func (s *messageServiceImpl) DeleteMessage(ctx context.Context, userID uint64, messageID uint64) error {
	msg, err := s.messageRepo.GetMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if msg == nil || msg.IsDeleted {
		return ErrMessageNotFound
	}
	if msg.SenderID != userID {
		return UnauthorizedError
	}
	return s.messageRepo.SoftDelete(ctx, messageID)
}

func (s *messageServiceImpl) UnreadCount(ctx context.Context, userID uint64) (int64, error) {
	conv, err := s.reg.FindActiveFor(ctx, userID)
	if err != nil {
		return 0, err
	}
	if conv == nil {
		return 0, nil
	}
	return s.messageRepo.CountUnread(ctx, userID, conv.ID)
}

func (s *messageServiceImpl) loadNames(ctx context.Context, conv *model.Conversation) map[uint64]string {
	names := make(map[uint64]string, 2)
	users, err := s.userRepo.GetUserByIds(ctx, []uint64{conv.User1ID, conv.User2ID})
	if err != nil {
		return names
	}
	for _, u := range users {
		names[u.ID] = u.DisplayName()
	}
	return names
}
