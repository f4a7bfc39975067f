package cron

import (
	"Aviary/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

type Manager struct {
	engine               *cron.Cron
	guestCleanupJob      *job.GuestCleanupJob
	snapshotReconcileJob *job.SnapshotReconcileJob
}

func NewCronManager(
	guestCleanupJob *job.GuestCleanupJob,
	snapshotReconcileJob *job.SnapshotReconcileJob,
) *Manager {
	return &Manager{
		engine:               cron.New(cron.WithSeconds()),
		guestCleanupJob:      guestCleanupJob,
		snapshotReconcileJob: snapshotReconcileJob,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	if _, err := s.engine.AddJob("@every 10m", s.guestCleanupJob); err != nil {
		return err
	}
	if _, err := s.engine.AddJob("@daily", s.snapshotReconcileJob); err != nil {
		return err
	}
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	s.engine.Stop()
}
