package repository

import (
	"Duet/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type MediaRepo interface {
	CreateFile(ctx context.Context, file *model.MediaFile) error
	GetFile(ctx context.Context, id uint64) (*model.MediaFile, error)
	ListByConversation(ctx context.Context, convID uint64) ([]*model.MediaFile, error)
	SoftDelete(ctx context.Context, id uint64) error
	ListExpired(ctx context.Context, now time.Time) ([]*model.MediaFile, error)
}

type mediaRepoImpl struct {
	db *gorm.DB
}

func NewMediaRepo(db *gorm.DB) MediaRepo {
	return &mediaRepoImpl{db: db}
}

func (s *mediaRepoImpl) CreateFile(ctx context.Context, file *model.MediaFile) error {
	return s.db.WithContext(ctx).Create(file).Error
}

func (s *mediaRepoImpl) GetFile(ctx context.Context, id uint64) (*model.MediaFile, error) {
	var file model.MediaFile
	err := s.db.WithContext(ctx).First(&file, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &file, nil
}

func (s *mediaRepoImpl) ListByConversation(ctx context.Context, convID uint64) ([]*model.MediaFile, error) {
	var files []*model.MediaFile
	err := s.db.WithContext(ctx).
		Where("conversation_id = ? AND is_deleted = ?", convID, false).
		Order("created_at DESC").
		Find(&files).Error
	return files, err
}

func (s *mediaRepoImpl) SoftDelete(ctx context.Context, id uint64) error {
	return s.db.WithContext(ctx).Model(&model.MediaFile{}).
		Where("id = ?", id).
		Update("is_deleted", true).Error
}

// ListExpired 保留引擎第 2 步先查明细，逐个处理对象存储里的 blob
func (s *mediaRepoImpl) ListExpired(ctx context.Context, now time.Time) ([]*model.MediaFile, error) {
	var files []*model.MediaFile
	err := s.db.WithContext(ctx).
		Where("delete_after < ? AND is_deleted = ?", now, false).
		Find(&files).Error
	return files, err
}
