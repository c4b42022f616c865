package service

import (
	"context"
	"io"

	pkgminio "Duet/internal/pkg/minio"
)

// BlobStore 附件内容的存取抽象，生产环境由 MinIO 承载
type BlobStore interface {
	Put(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	Get(ctx context.Context, objectName string) (io.ReadCloser, error)
	Delete(ctx context.Context, objectName string) error
}

type minioBlobStore struct{}

func NewMinioBlobStore() BlobStore {
	return &minioBlobStore{}
}

func (s *minioBlobStore) Put(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	_, err := pkgminio.UploadFile(ctx, objectName, reader, size, contentType)
	return err
}

func (s *minioBlobStore) Get(ctx context.Context, objectName string) (io.ReadCloser, error) {
	return pkgminio.GetFile(ctx, objectName)
}

func (s *minioBlobStore) Delete(ctx context.Context, objectName string) error {
	return pkgminio.DeleteFile(ctx, objectName)
}
