package job

import (
	"Duet/internal/model"
	"Duet/internal/repository"
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeBlobStore struct {
	deleted []string
	failOn  map[string]bool
}

func (f *fakeBlobStore) Put(context.Context, string, io.Reader, int64, string) error {
	return nil
}

func (f *fakeBlobStore) Get(context.Context, string) (io.ReadCloser, error) {
	return nil, errors.New("not backed by storage")
}

func (f *fakeBlobStore) Delete(_ context.Context, objectName string) error {
	if f.failOn[objectName] {
		return errors.New("storage unavailable")
	}
	f.deleted = append(f.deleted, objectName)
	return nil
}

type retentionFixture struct {
	db    *gorm.DB
	job   *RetentionJob
	blobs *fakeBlobStore
	now   time.Time
}

func newRetentionFixture(t *testing.T) *retentionFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "duet_test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.PairingCode{},
		&model.Message{},
		&model.MediaFile{},
		&model.Notification{},
	))

	blobs := &fakeBlobStore{failOn: make(map[string]bool)}
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	j := NewRetentionJob(
		repository.NewMessageRepo(db),
		repository.NewMediaRepo(db),
		repository.NewPairingRepo(db),
		repository.NewNotificationRepo(db),
		blobs,
		30*24*time.Hour,
	)
	j.now = func() time.Time { return now }

	return &retentionFixture{db: db, job: j, blobs: blobs, now: now}
}

func TestSweepExpiredMessages(t *testing.T) {
	f := newRetentionFixture(t)
	content := "x"

	expired := &model.Message{ConversationID: 1, SenderID: 1, Content: &content, DeleteAfter: f.now.Add(-time.Second)}
	boundary := &model.Message{ConversationID: 1, SenderID: 1, Content: &content, DeleteAfter: f.now}
	fresh := &model.Message{ConversationID: 1, SenderID: 1, Content: &content, DeleteAfter: f.now.Add(24 * time.Hour)}
	require.NoError(t, f.db.Create(expired).Error)
	require.NoError(t, f.db.Create(boundary).Error)
	require.NoError(t, f.db.Create(fresh).Error)

	res, err := f.job.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.MessagesDeleted)

	var stored model.Message
	require.NoError(t, f.db.First(&stored, expired.ID).Error)
	assert.True(t, stored.IsDeleted)

	// delete_after 恰好等于 now 的还活着
	stored = model.Message{}
	require.NoError(t, f.db.First(&stored, boundary.ID).Error)
	assert.False(t, stored.IsDeleted)
	stored = model.Message{}
	require.NoError(t, f.db.First(&stored, fresh.ID).Error)
	assert.False(t, stored.IsDeleted)
}

func TestSweepExpiredMediaDeletesBlobFirst(t *testing.T) {
	f := newRetentionFixture(t)

	expired := &model.MediaFile{ConversationID: 1, UploadedByID: 1, Filename: "2026/07/01/a.bin", OriginalName: "a.bin", FileSize: 1, DeleteAfter: f.now.Add(-time.Hour)}
	fresh := &model.MediaFile{ConversationID: 1, UploadedByID: 1, Filename: "2026/08/01/b.bin", OriginalName: "b.bin", FileSize: 1, DeleteAfter: f.now.Add(time.Hour)}
	require.NoError(t, f.db.Create(expired).Error)
	require.NoError(t, f.db.Create(fresh).Error)

	res, err := f.job.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.MediaFilesDeleted)
	assert.Equal(t, []string{"2026/07/01/a.bin"}, f.blobs.deleted)

	var stored model.MediaFile
	require.NoError(t, f.db.First(&stored, expired.ID).Error)
	assert.True(t, stored.IsDeleted)
	stored = model.MediaFile{}
	require.NoError(t, f.db.First(&stored, fresh.ID).Error)
	assert.False(t, stored.IsDeleted)
}

func TestSweepMediaBlobFailureStillRemovesMetadata(t *testing.T) {
	f := newRetentionFixture(t)

	expired := &model.MediaFile{ConversationID: 1, UploadedByID: 1, Filename: "2026/07/01/stuck.bin", OriginalName: "stuck.bin", FileSize: 1, DeleteAfter: f.now.Add(-time.Hour)}
	require.NoError(t, f.db.Create(expired).Error)
	f.blobs.failOn["2026/07/01/stuck.bin"] = true

	res, err := f.job.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.MediaFilesDeleted)

	// blob 删不掉，元数据也要先对用户不可见
	var stored model.MediaFile
	require.NoError(t, f.db.First(&stored, expired.ID).Error)
	assert.True(t, stored.IsDeleted)
}

func TestSweepExpiresPendingCodes(t *testing.T) {
	f := newRetentionFixture(t)

	stale := &model.PairingCode{Code: "AAAAAA", CreatorID: 1, Status: model.CodeStatusPending, ExpiresAt: f.now.Add(-time.Minute)}
	live := &model.PairingCode{Code: "BBBBBB", CreatorID: 2, Status: model.CodeStatusPending, ExpiresAt: f.now.Add(time.Hour)}
	used := &model.PairingCode{Code: "CCCCCC", CreatorID: 3, Status: model.CodeStatusUsed, ExpiresAt: f.now.Add(-time.Hour)}
	require.NoError(t, f.db.Create(stale).Error)
	require.NoError(t, f.db.Create(live).Error)
	require.NoError(t, f.db.Create(used).Error)

	res, err := f.job.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.CodesExpired)

	var pc model.PairingCode
	require.NoError(t, f.db.First(&pc, stale.ID).Error)
	assert.Equal(t, model.CodeStatusExpired, pc.Status)
	pc = model.PairingCode{}
	require.NoError(t, f.db.First(&pc, live.ID).Error)
	assert.Equal(t, model.CodeStatusPending, pc.Status)
	pc = model.PairingCode{}
	require.NoError(t, f.db.First(&pc, used.ID).Error)
	assert.Equal(t, model.CodeStatusUsed, pc.Status)
}

func TestSweepDeletesStaleNotifications(t *testing.T) {
	f := newRetentionFixture(t)

	stale := &model.Notification{UserID: 1, Type: "message", DisguiseText: "Sync completed", CreatedAt: f.now.Add(-31 * 24 * time.Hour)}
	fresh := &model.Notification{UserID: 1, Type: "message", DisguiseText: "Cache cleared", CreatedAt: f.now.Add(-29 * 24 * time.Hour)}
	require.NoError(t, f.db.Create(stale).Error)
	require.NoError(t, f.db.Create(fresh).Error)

	res, err := f.job.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.NotificationsDeleted)

	var count int64
	require.NoError(t, f.db.Model(&model.Notification{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSweepIdempotent(t *testing.T) {
	f := newRetentionFixture(t)
	content := "x"

	require.NoError(t, f.db.Create(&model.Message{ConversationID: 1, SenderID: 1, Content: &content, DeleteAfter: f.now.Add(-time.Second)}).Error)
	require.NoError(t, f.db.Create(&model.PairingCode{Code: "AAAAAA", CreatorID: 1, Status: model.CodeStatusPending, ExpiresAt: f.now.Add(-time.Minute)}).Error)

	first, err := f.job.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.MessagesDeleted)
	assert.Equal(t, int64(1), first.CodesExpired)

	second, err := f.job.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), second.MessagesDeleted)
	assert.Equal(t, int64(0), second.CodesExpired)
	assert.Equal(t, int64(0), second.MediaFilesDeleted)
	assert.Equal(t, int64(0), second.NotificationsDeleted)
}
