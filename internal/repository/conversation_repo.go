package repository

import (
	"Duet/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

type ConversationRepo interface {
	GetConversation(ctx context.Context, convID uint64) (*model.Conversation, error)
	FindActiveByUser(ctx context.Context, userID uint64) (*model.Conversation, error)
	IsMember(ctx context.Context, convID uint64, userID uint64) (bool, error)
	CloseConversation(ctx context.Context, convID uint64) (int64, error)
}

type conversationRepoImpl struct {
	db *gorm.DB
}

func NewConversationRepo(db *gorm.DB) ConversationRepo {
	return &conversationRepoImpl{db: db}
}

// GetConversation 根据会话 ID 获取会话
func (s *conversationRepoImpl) GetConversation(ctx context.Context, convID uint64) (*model.Conversation, error) {
	var conv model.Conversation
	err := s.db.WithContext(ctx).First(&conv, convID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}

// FindActiveByUser 查找用户当前的 active 会话，不存在返回 nil
func (s *conversationRepoImpl) FindActiveByUser(ctx context.Context, userID uint64) (*model.Conversation, error) {
	var conv model.Conversation
	err := s.db.WithContext(ctx).
		Where("(user1_id = ? OR user2_id = ?) AND status = ?", userID, userID, model.ConversationStatusActive).
		First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}

// IsMember 检查用户是否是会话成员
func (s *conversationRepoImpl) IsMember(ctx context.Context, convID uint64, userID uint64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Conversation{}).
		Where("id = ? AND (user1_id = ? OR user2_id = ?)", convID, userID, userID).
		Count(&count).Error
	return count > 0, err
}

// CloseConversation active -> closed 状态守卫更新
func (s *conversationRepoImpl) CloseConversation(ctx context.Context, convID uint64) (int64, error) {
	res := s.db.WithContext(ctx).Model(&model.Conversation{}).
		Where("id = ? AND status = ?", convID, model.ConversationStatusActive).
		Update("status", model.ConversationStatusClosed)
	return res.RowsAffected, res.Error
}
