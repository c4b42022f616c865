package registry

import (
	"Duet/internal/model"
	"Duet/internal/repository"
	"context"
	"sync"
)

// ConversationRegistry 维护「每人至多一个 active 会话」的 用户 -> 会话 查找表。
// 以持久层为准，内存缓存供 Presence Hub 的路由快路径使用。
// 显式构造注入，不做包级单例，测试间可干净重置。
type ConversationRegistry struct {
	mu       sync.RWMutex
	byUser   map[uint64]*model.Conversation
	convRepo repository.ConversationRepo
}

func NewConversationRegistry(convRepo repository.ConversationRepo) *ConversationRegistry {
	return &ConversationRegistry{
		byUser:   make(map[uint64]*model.Conversation),
		convRepo: convRepo,
	}
}

// FindActiveFor 返回用户当前的 active 会话；没有则返回 nil
func (r *ConversationRegistry) FindActiveFor(ctx context.Context, userID uint64) (*model.Conversation, error) {
	r.mu.RLock()
	conv, ok := r.byUser[userID]
	r.mu.RUnlock()
	if ok {
		return conv, nil
	}

	conv, err := r.convRepo.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if conv != nil {
		r.Bind(conv)
	}
	return conv, nil
}

// Authorize 校验 convID 是用户当前的 active 会话；通过则返回该会话，否则返回 nil
func (r *ConversationRegistry) Authorize(ctx context.Context, userID uint64, convID uint64) (*model.Conversation, error) {
	conv, err := r.FindActiveFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if conv == nil || conv.ID != convID || conv.Status != model.ConversationStatusActive {
		return nil, nil
	}
	return conv, nil
}

// Bind 配对成功后登记双方映射
func (r *ConversationRegistry) Bind(conv *model.Conversation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[conv.User1ID] = conv
	r.byUser[conv.User2ID] = conv
}

// Invalidate 会话状态变化后失效相关用户的缓存
func (r *ConversationRegistry) Invalidate(userIDs ...uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range userIDs {
		delete(r.byUser, id)
	}
}
