package cron

import (
	"Duet/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

type Manager struct {
	engine       *cron.Cron
	retentionJob *job.RetentionJob
	cronSpec     string
}

func NewCronManager(retentionJob *job.RetentionJob, cronSpec string) *Manager {
	return &Manager{
		engine:       cron.New(cron.WithSeconds()),
		retentionJob: retentionJob,
		cronSpec:     cronSpec,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	if _, err := s.engine.AddJob(s.cronSpec, s.retentionJob); err != nil {
		return err
	}
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动", "retention_spec", s.cronSpec)
	s.engine.Start()
}

func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	s.engine.Stop()
}
