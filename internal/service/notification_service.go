package service

import (
	"Duet/internal/api/dto"
	"Duet/internal/model"
	"Duet/internal/repository"
	"context"
	"math/rand"

	"github.com/jinzhu/copier"
)

// disguiseCatalog 伪装文案目录。对外只暴露这里面的字符串，
// 真实的 Title/Message 永远不出服务端。
var disguiseCatalog = []string{
	"System update available",
	"Sync completed",
	"New content available",
	"Backup completed",
	"Security scan finished",
	"Update ready to install",
	"Data synchronized",
	"Maintenance completed",
	"Performance optimized",
	"Cache cleared",
}

type NotificationService interface {
	Create(ctx context.Context, userID uint64, ntype, title, message string) (*model.Notification, error)
	ListUnread(ctx context.Context, userID uint64) ([]*dto.NotificationDTO, error)
	MarkRead(ctx context.Context, userID uint64, notificationID uint64) error
}

type notificationServiceImpl struct {
	notificationRepo repository.NotificationRepo
	pick             func(n int) int
}

func NewNotificationService(notificationRepo repository.NotificationRepo) NotificationService {
	return &notificationServiceImpl{
		notificationRepo: notificationRepo,
		pick:             rand.Intn,
	}
}

// Create 创建通知并在此刻固定伪装文案，之后不再变化
func (s *notificationServiceImpl) Create(ctx context.Context, userID uint64, ntype, title, message string) (*model.Notification, error) {
	n := &model.Notification{
		UserID:       userID,
		Type:         ntype,
		Title:        title,
		Message:      message,
		DisguiseText: disguiseCatalog[s.pick(len(disguiseCatalog))],
	}
	if err := s.notificationRepo.CreateNotification(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// ListUnread 通知读路径：Message 字段填充的是伪装文案
func (s *notificationServiceImpl) ListUnread(ctx context.Context, userID uint64) ([]*dto.NotificationDTO, error) {
	list, err := s.notificationRepo.ListUnread(ctx, userID)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.NotificationDTO, 0, len(list))
	for _, n := range list {
		d := &dto.NotificationDTO{}
		_ = copier.Copy(d, n)
		d.Message = n.DisguiseText
		res = append(res, d)
	}
	return res, nil
}

func (s *notificationServiceImpl) MarkRead(ctx context.Context, userID uint64, notificationID uint64) error {
	affected, err := s.notificationRepo.MarkRead(ctx, notificationID, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
