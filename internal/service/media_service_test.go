package service

import (
	"Duet/internal/model"
	"Duet/internal/registry"
	"Duet/internal/repository"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memBlobStore 内存对象存储，可按对象名注入删除故障
type memBlobStore struct {
	objects      map[string][]byte
	failDeletion bool
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{objects: make(map[string][]byte)}
}

func (s *memBlobStore) Put(_ context.Context, objectName string, reader io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.objects[objectName] = data
	return nil
}

func (s *memBlobStore) Get(_ context.Context, objectName string) (io.ReadCloser, error) {
	data, ok := s.objects[objectName]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memBlobStore) Delete(_ context.Context, objectName string) error {
	if s.failDeletion {
		return errors.New("storage unavailable")
	}
	delete(s.objects, objectName)
	return nil
}

type mediaFixture struct {
	db    *gorm.DB
	svc   *mediaServiceImpl
	blobs *memBlobStore
	alice *model.User
	bob   *model.User
	conv  *model.Conversation
}

func newMediaFixture(t *testing.T) *mediaFixture {
	t.Helper()
	db := newTestDB(t)
	reg := registry.NewConversationRegistry(repository.NewConversationRepo(db))
	blobs := newMemBlobStore()

	svc := NewMediaService(repository.NewMediaRepo(db), repository.NewUserRepo(db), reg, blobs, 30*24*time.Hour, 1024).(*mediaServiceImpl)

	alice := seedUser(t, db, "alice@example.com", "Alice")
	bob := seedUser(t, db, "bob@example.com", "Bob")
	conv := &model.Conversation{User1ID: alice.ID, User2ID: bob.ID, Status: model.ConversationStatusActive}
	require.NoError(t, db.Create(conv).Error)

	return &mediaFixture{db: db, svc: svc, blobs: blobs, alice: alice, bob: bob, conv: conv}
}

func (f *mediaFixture) upload(t *testing.T, userID uint64, name, content string) uint64 {
	t.Helper()
	dto, err := f.svc.Upload(context.Background(), userID, f.conv.ID, name, "text/plain", int64(len(content)), strings.NewReader(content))
	require.NoError(t, err)
	return dto.ID
}

func TestUploadAndDownload(t *testing.T) {
	f := newMediaFixture(t)
	ctx := context.Background()

	fileID := f.upload(t, f.alice.ID, "photo.jpg", "binary-stuff")

	// 对象名不透明，不含原始文件名
	var stored model.MediaFile
	require.NoError(t, f.db.First(&stored, fileID).Error)
	assert.NotContains(t, stored.Filename, "photo")
	assert.Equal(t, "photo.jpg", stored.OriginalName)

	// 对端可以下载
	file, reader, err := f.svc.OpenFile(ctx, f.bob.ID, fileID)
	require.NoError(t, err)
	defer func() { _ = reader.Close() }()
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "binary-stuff", string(data))
	assert.Equal(t, "photo.jpg", file.OriginalName)
}

func TestUploadSizeCap(t *testing.T) {
	f := newMediaFixture(t)

	big := strings.Repeat("x", 2048)
	_, err := f.svc.Upload(context.Background(), f.alice.ID, f.conv.ID, "big.bin", "application/octet-stream", int64(len(big)), strings.NewReader(big))
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = f.svc.Upload(context.Background(), f.alice.ID, f.conv.ID, "empty.bin", "application/octet-stream", 0, strings.NewReader(""))
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestUploadOutsideConversation(t *testing.T) {
	f := newMediaFixture(t)
	carol := seedUser(t, f.db, "carol@example.com", "Carol")

	_, err := f.svc.Upload(context.Background(), carol.ID, f.conv.ID, "x.bin", "application/octet-stream", 3, strings.NewReader("abc"))
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestOpenFileAccessCheck(t *testing.T) {
	f := newMediaFixture(t)
	carol := seedUser(t, f.db, "carol@example.com", "Carol")

	fileID := f.upload(t, f.alice.ID, "a.txt", "hi")

	_, _, err := f.svc.OpenFile(context.Background(), carol.ID, fileID)
	assert.ErrorIs(t, err, UnauthorizedError)
}

func TestDeleteFileUploaderOnly(t *testing.T) {
	f := newMediaFixture(t)
	ctx := context.Background()

	fileID := f.upload(t, f.alice.ID, "a.txt", "hi")

	err := f.svc.DeleteFile(ctx, f.bob.ID, fileID)
	assert.ErrorIs(t, err, UnauthorizedError)

	require.NoError(t, f.svc.DeleteFile(ctx, f.alice.ID, fileID))
	assert.Empty(t, f.blobs.objects)

	_, _, err = f.svc.OpenFile(ctx, f.alice.ID, fileID)
	assert.ErrorIs(t, err, ErrFileNotExist)
}

func TestDeleteFileBlobFailureStillSoftDeletes(t *testing.T) {
	f := newMediaFixture(t)
	ctx := context.Background()

	fileID := f.upload(t, f.alice.ID, "a.txt", "hi")
	f.blobs.failDeletion = true

	require.NoError(t, f.svc.DeleteFile(ctx, f.alice.ID, fileID))

	var stored model.MediaFile
	require.NoError(t, f.db.First(&stored, fileID).Error)
	assert.True(t, stored.IsDeleted)
}

func TestListFiles(t *testing.T) {
	f := newMediaFixture(t)

	f.upload(t, f.alice.ID, "a.txt", "a")
	f.upload(t, f.bob.ID, "b.txt", "b")

	files, err := f.svc.ListFiles(context.Background(), f.alice.ID, f.conv.ID)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}
