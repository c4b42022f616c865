package job

import (
	"Duet/internal/pkg/logger"
	"Duet/internal/repository"
	"Duet/internal/service"
	"context"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

// 单次清扫的整体超时
const sweepTimeout = 5 * time.Minute

// SweepResult 单次清扫各步骤的处理量
type SweepResult struct {
	MessagesDeleted      int64
	MediaFilesDeleted    int64
	CodesExpired         int64
	NotificationsDeleted int64
}

// RetentionJob 定时保留引擎。四个步骤互相隔离，
// 任何一步失败都不影响其余步骤继续执行。
type RetentionJob struct {
	messageRepo      repository.MessageRepo
	mediaRepo        repository.MediaRepo
	pairingRepo      repository.PairingRepo
	notificationRepo repository.NotificationRepo
	blobs            service.BlobStore
	notificationTTL  time.Duration
	now              func() time.Time
}

func NewRetentionJob(
	messageRepo repository.MessageRepo,
	mediaRepo repository.MediaRepo,
	pairingRepo repository.PairingRepo,
	notificationRepo repository.NotificationRepo,
	blobs service.BlobStore,
	notificationTTL time.Duration,
) *RetentionJob {
	return &RetentionJob{
		messageRepo:      messageRepo,
		mediaRepo:        mediaRepo,
		pairingRepo:      pairingRepo,
		notificationRepo: notificationRepo,
		blobs:            blobs,
		notificationTTL:  notificationTTL,
		now:              time.Now,
	}
}

// Run 实现 cron.Job
func (s *RetentionJob) Run() {
	traceID := "job-retention-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	if _, err := s.Sweep(ctx); err != nil {
		log.ErrorContext(ctx, "retention sweep error", "err", err)
	}
}

// RunNow 手动触发一次清扫
func (s *RetentionJob) RunNow(ctx context.Context) (*SweepResult, error) {
	return s.Sweep(ctx)
}

// Sweep 执行一轮清扫。时间判定统一取一次 now，
// 过期条件是严格早于 now，重复执行天然幂等。
func (s *RetentionJob) Sweep(ctx context.Context) (*SweepResult, error) {
	now := s.now()
	res := &SweepResult{}
	log.InfoContext(ctx, "start retention sweep")

	// 1. 过期消息软删
	deleted, err := s.messageRepo.SoftDeleteExpired(ctx, now)
	if err != nil {
		log.ErrorContext(ctx, "过期消息清理失败", "err", err)
	} else {
		res.MessagesDeleted = deleted
	}

	// 2. 过期附件：先删 blob 再软删元数据。
	// blob 删不掉也照样软删元数据，保证过期附件对用户立即不可见。
	files, err := s.mediaRepo.ListExpired(ctx, now)
	if err != nil {
		log.ErrorContext(ctx, "过期附件查询失败", "err", err)
	} else {
		for _, f := range files {
			if err = s.blobs.Delete(ctx, f.Filename); err != nil {
				log.WarnContext(ctx, "过期附件 blob 删除失败", "object", f.Filename, "err", err)
			}
			if err = s.mediaRepo.SoftDelete(ctx, f.ID); err != nil {
				log.ErrorContext(ctx, "过期附件元数据清理失败", "file", f.ID, "err", err)
				continue
			}
			res.MediaFilesDeleted++
		}
	}

	// 3. 超时未兑换的配对码置为 expired
	expired, err := s.pairingRepo.ExpirePendingBefore(ctx, now)
	if err != nil {
		log.ErrorContext(ctx, "过期配对码清理失败", "err", err)
	} else {
		res.CodesExpired = expired
	}

	// 4. 陈旧通知硬删
	removed, err := s.notificationRepo.DeleteCreatedBefore(ctx, now.Add(-s.notificationTTL))
	if err != nil {
		log.ErrorContext(ctx, "陈旧通知清理失败", "err", err)
	} else {
		res.NotificationsDeleted = removed
	}

	log.InfoContext(ctx, "retention sweep finished",
		"messages", res.MessagesDeleted,
		"mediaFiles", res.MediaFilesDeleted,
		"codes", res.CodesExpired,
		"notifications", res.NotificationsDeleted)
	return res, nil
}
