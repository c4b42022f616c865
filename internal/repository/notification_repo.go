package repository

import (
	"Duet/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

type NotificationRepo interface {
	CreateNotification(ctx context.Context, n *model.Notification) error
	ListUnread(ctx context.Context, userID uint64) ([]*model.Notification, error)
	MarkRead(ctx context.Context, id uint64, userID uint64) (int64, error)
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type notificationRepoImpl struct {
	db *gorm.DB
}

func NewNotificationRepo(db *gorm.DB) NotificationRepo {
	return &notificationRepoImpl{db: db}
}

func (s *notificationRepoImpl) CreateNotification(ctx context.Context, n *model.Notification) error {
	return s.db.WithContext(ctx).Create(n).Error
}

func (s *notificationRepoImpl) ListUnread(ctx context.Context, userID uint64) ([]*model.Notification, error) {
	var list []*model.Notification
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_read = ?", userID, false).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (s *notificationRepoImpl) MarkRead(ctx context.Context, id uint64, userID uint64) (int64, error) {
	res := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

// DeleteCreatedBefore 保留引擎第 4 步：到期通知无条件硬删，不看已读状态
func (s *notificationRepoImpl) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&model.Notification{})
	return res.RowsAffected, res.Error
}
