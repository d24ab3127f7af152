// Package scheduler runs named background jobs on cron schedules.
package scheduler

import (
	"github.com/robfig/cron/v3"

	"cryptofolio/internal/logger"
)

// Job is a unit of background work the scheduler can run.
type Job interface {
	Name() string
	Run() error
}

// Scheduler wraps a cron runner and logs every job outcome.
type Scheduler struct {
	cron *cron.Cron
}

// New creates a stopped scheduler. Call Start after registering jobs.
func New() *Scheduler {
	return &Scheduler{cron: cron.New()}
}

// AddJob registers a job on a cron schedule ("@every 1m", "0 * * * *", ...).
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		if err := job.Run(); err != nil {
			logger.Get().Errorw("scheduled job failed", "job", job.Name(), "error", err)
			return
		}
		logger.Get().Debugw("scheduled job completed", "job", job.Name())
	})
	if err != nil {
		return err
	}

	logger.Get().Infow("scheduled job registered", "job", job.Name(), "schedule", schedule)
	return nil
}

// Start begins running registered jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for any running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
