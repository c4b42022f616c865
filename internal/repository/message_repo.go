package repository

import (
	"Duet/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type MessageRepo interface {
	CreateMessage(ctx context.Context, msg *model.Message) error
	GetMessage(ctx context.Context, id uint64) (*model.Message, error)
	ListByConversation(ctx context.Context, convID uint64) ([]*model.Message, error)
	MarkConversationRead(ctx context.Context, convID uint64, readerID uint64) (int64, error)
	SoftDelete(ctx context.Context, id uint64) error
	CountUnread(ctx context.Context, userID uint64, convID uint64) (int64, error)
	SoftDeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type messageRepoImpl struct {
	db *gorm.DB
}

func NewMessageRepo(db *gorm.DB) MessageRepo {
	return &messageRepoImpl{db: db}
}

func (s *messageRepoImpl) CreateMessage(ctx context.Context, msg *model.Message) error {
	return s.db.WithContext(ctx).Create(msg).Error
}

func (s *messageRepoImpl) GetMessage(ctx context.Context, id uint64) (*model.Message, error) {
	var msg model.Message
	err := s.db.WithContext(ctx).First(&msg, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

// ListByConversation 拉取会话内未删除的消息，按时间正序
func (s *messageRepoImpl) ListByConversation(ctx context.Context, convID uint64) ([]*model.Message, error) {
	var msgs []*model.Message
	err := s.db.WithContext(ctx).
		Where("conversation_id = ? AND is_deleted = ?", convID, false).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error
	return msgs, err
}

// MarkConversationRead 将非本人发送的未读消息全部置为已读
func (s *messageRepoImpl) MarkConversationRead(ctx context.Context, convID uint64, readerID uint64) (int64, error) {
	res := s.db.WithContext(ctx).Model(&model.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", convID, readerID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

// SoftDelete is_deleted 单向置位
func (s *messageRepoImpl) SoftDelete(ctx context.Context, id uint64) error {
	return s.db.WithContext(ctx).Model(&model.Message{}).
		Where("id = ?", id).
		Update("is_deleted", true).Error
}

func (s *messageRepoImpl) CountUnread(ctx context.Context, userID uint64, convID uint64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ? AND is_deleted = ?",
			convID, userID, false, false).
		Count(&count).Error
	return count, err
}

// SoftDeleteExpired 保留引擎第 1 步：delete_after 严格早于 now 的未删除消息批量软删
func (s *messageRepoImpl) SoftDeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&model.Message{}).
		Where("delete_after < ? AND is_deleted = ?", now, false).
		Update("is_deleted", true)
	return res.RowsAffected, res.Error
}
