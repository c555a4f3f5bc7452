package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"inkpress/api/internal/repository"
)

// Scheduler runs the periodic maintenance work in the API process: enqueuing
// reconciliation sweeps for the worker and pruning expired sessions.
type Scheduler struct {
	cron       *cron.Cron
	publisher  *Publisher
	sessions   *repository.SessionRepository
	sweepEvery time.Duration
	cleanup    bool
	log        zerolog.Logger
}

func NewScheduler(publisher *Publisher, sessions *repository.SessionRepository, sweepEvery time.Duration, cleanupSessions bool, log zerolog.Logger) *Scheduler {
	if sweepEvery <= 0 {
		sweepEvery = time.Hour
	}
	return &Scheduler{
		cron:       cron.New(cron.WithSeconds()),
		publisher:  publisher,
		sessions:   sessions,
		sweepEvery: sweepEvery,
		cleanup:    cleanupSessions,
		log:        log,
	}
}

func (s *Scheduler) Start() error {
	s.cron.Schedule(cron.Every(s.sweepEvery), cron.FuncJob(s.enqueueSweep))
	if s.cleanup {
		if _, err := s.cron.AddFunc("0 0 3 * * *", s.cleanupSessions); err != nil {
			return err
		}
	}

	s.cron.Start()
	return nil
}

// Stop waits for in-flight jobs, up to five seconds.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
	}
}

func (s *Scheduler) enqueueSweep() {
	if err := s.publisher.EnqueueSweep(context.Background()); err != nil {
		s.log.Error().Err(err).Msg("enqueue reconcile sweep failed")
	}
}

func (s *Scheduler) cleanupSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deleted, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("session cleanup failed")
		return
	}
	if deleted > 0 {
		s.log.Info().Int64("deleted", deleted).Msg("expired sessions removed")
	}
}
