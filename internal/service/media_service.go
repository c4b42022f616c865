package service

import (
	"Duet/internal/api/dto"
	"Duet/internal/model"
	"Duet/internal/registry"
	"Duet/internal/repository"
	"context"
	"io"
	log "log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

type MediaService interface {
	Upload(ctx context.Context, uploaderID uint64, convID uint64, originalName, contentType string, size int64, reader io.Reader) (*dto.MediaFileDTO, error)
	ListFiles(ctx context.Context, userID uint64, convID uint64) ([]*dto.MediaFileDTO, error)
	GetFileInfo(ctx context.Context, userID uint64, fileID uint64) (*dto.MediaFileDTO, error)
	OpenFile(ctx context.Context, userID uint64, fileID uint64) (*model.MediaFile, io.ReadCloser, error)
	DeleteFile(ctx context.Context, userID uint64, fileID uint64) error
}

type mediaServiceImpl struct {
	mediaRepo repository.MediaRepo
	userRepo  repository.UserRepo
	reg       *registry.ConversationRegistry
	blobs     BlobStore
	fileTTL   time.Duration
	maxSize   int64
	now       func() time.Time
}

func NewMediaService(
	mediaRepo repository.MediaRepo,
	userRepo repository.UserRepo,
	reg *registry.ConversationRegistry,
	blobs BlobStore,
	fileTTL time.Duration,
	maxSize int64,
) MediaService {
	return &mediaServiceImpl{
		mediaRepo: mediaRepo,
		userRepo:  userRepo,
		reg:       reg,
		blobs:     blobs,
		fileTTL:   fileTTL,
		maxSize:   maxSize,
		now:       time.Now,
	}
}

// Upload 先写对象存储再落元数据。对象名按日期加 UUID 生成，
// 不含原始文件名，外部拿不到可猜测的路径。
func (s *mediaServiceImpl) Upload(ctx context.Context, uploaderID uint64, convID uint64, originalName, contentType string, size int64, reader io.Reader) (*dto.MediaFileDTO, error) {
	conv, err := s.reg.Authorize(ctx, uploaderID, convID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, ErrConversationNotFound
	}

	if size <= 0 || size > s.maxSize {
		return nil, ErrFileTooLarge
	}

	now := s.now()
	objectName := now.Format("2006/01/02/") + uuid.NewString() + filepath.Ext(originalName)

	if err = s.blobs.Put(ctx, objectName, reader, size, contentType); err != nil {
		log.ErrorContext(ctx, "附件写入对象存储失败", "object", objectName, "err", err)
		return nil, ErrStorageFailure
	}

	file := &model.MediaFile{
		ConversationID: convID,
		UploadedByID:   uploaderID,
		Filename:       objectName,
		OriginalName:   originalName,
		MimeType:       contentType,
		FileSize:       size,
		DeleteAfter:    now.Add(s.fileTTL),
		CreatedAt:      now,
	}
	if err = s.mediaRepo.CreateFile(ctx, file); err != nil {
		// 元数据落库失败时回收已写入的 blob，避免孤儿对象
		if delErr := s.blobs.Delete(ctx, objectName); delErr != nil {
			log.WarnContext(ctx, "孤儿附件回收失败", "object", objectName, "err", delErr)
		}
		return nil, err
	}

	return s.toDTO(ctx, file), nil
}

func (s *mediaServiceImpl) ListFiles(ctx context.Context, userID uint64, convID uint64) ([]*dto.MediaFileDTO, error) {
	conv, err := s.reg.Authorize(ctx, userID, convID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, ErrConversationNotFound
	}

	files, err := s.mediaRepo.ListByConversation(ctx, convID)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.MediaFileDTO, 0, len(files))
	for _, f := range files {
		res = append(res, s.toDTO(ctx, f))
	}
	return res, nil
}

// GetFileInfo 仅返回附件元数据，用于实时推送
func (s *mediaServiceImpl) GetFileInfo(ctx context.Context, userID uint64, fileID uint64) (*dto.MediaFileDTO, error) {
	file, err := s.mediaRepo.GetFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file == nil || file.IsDeleted {
		return nil, ErrFileNotExist
	}

	conv, err := s.reg.Authorize(ctx, userID, file.ConversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, UnauthorizedError
	}
	return s.toDTO(ctx, file), nil
}

// OpenFile 校验会话成员资格后返回附件元数据和内容流，调用方负责关闭
func (s *mediaServiceImpl) OpenFile(ctx context.Context, userID uint64, fileID uint64) (*model.MediaFile, io.ReadCloser, error) {
	file, err := s.mediaRepo.GetFile(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}
	if file == nil || file.IsDeleted {
		return nil, nil, ErrFileNotExist
	}

	conv, err := s.reg.Authorize(ctx, userID, file.ConversationID)
	if err != nil {
		return nil, nil, err
	}
	if conv == nil {
		return nil, nil, UnauthorizedError
	}

	reader, err := s.blobs.Get(ctx, file.Filename)
	if err != nil {
		log.ErrorContext(ctx, "附件读取失败", "object", file.Filename, "err", err)
		return nil, nil, ErrStorageFailure
	}
	return file, reader, nil
}

// DeleteFile 仅上传者本人可删。blob 删除失败只记日志，
// 元数据照常软删，残留对象交给保留引擎兜底。
func (s *mediaServiceImpl) DeleteFile(ctx context.Context, userID uint64, fileID uint64) error {
	file, err := s.mediaRepo.GetFile(ctx, fileID)
	if err != nil {
		return err
	}
	if file == nil || file.IsDeleted {
		return ErrFileNotExist
	}
	if file.UploadedByID != userID {
		return UnauthorizedError
	}

	if err = s.blobs.Delete(ctx, file.Filename); err != nil {
		log.WarnContext(ctx, "附件 blob 删除失败", "object", file.Filename, "err", err)
	}
	return s.mediaRepo.SoftDelete(ctx, fileID)
}

func (s *mediaServiceImpl) toDTO(ctx context.Context, file *model.MediaFile) *dto.MediaFileDTO {
	uploaderName := ""
	if u, err := s.userRepo.GetUserById(ctx, file.UploadedByID); err == nil && u != nil {
		uploaderName = u.DisplayName()
	}
	return &dto.MediaFileDTO{
		ID:             file.ID,
		ConversationID: file.ConversationID,
		UploadedByID:   file.UploadedByID,
		UploaderName:   uploaderName,
		OriginalName:   file.OriginalName,
		MimeType:       file.MimeType,
		FileSize:       file.FileSize,
		CreatedAt:      file.CreatedAt,
	}
}
