package scheduler

import (
	"context"
	"time"

	"reminder_bot/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// tickTimeout bounds one full dispatch pass including all persistence
// writes. The backing store is remote, so a pass can be slow; a pass slower
// than the tick interval causes the next tick to be skipped, not overlapped.
const tickTimeout = 5 * time.Minute

// DispatchScheduler drives the dispatch loop on a fixed cron tick. Ticks are
// strictly serialized: cron.SkipIfStillRunning guarantees a tick that
// overruns its interval suppresses the next one, so two ticks can never read
// the same due record before either writes back.
type DispatchScheduler struct {
	cronEngine *cron.Cron
	dispatch   *app.DispatchService
	logger     *logrus.Entry
	cronSpec   string
	location   *time.Location
}

func NewDispatchScheduler(dispatch *app.DispatchService, logger *logrus.Entry, cronSpec string, location *time.Location) *DispatchScheduler {
	cronLogger := cron.PrintfLogger(logger)
	return &DispatchScheduler{
		cronEngine: cron.New(
			cron.WithLocation(location),
			cron.WithChain(cron.SkipIfStillRunning(cronLogger)),
		),
		dispatch: dispatch,
		logger:   logger,
		cronSpec: cronSpec,
		location: location,
	}
}

func (s *DispatchScheduler) Start() error {
	_, err := s.cronEngine.AddFunc(s.cronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
		defer cancel()

		now := time.Now().In(s.location)
		results, err := s.dispatch.RunTick(ctx, now)
		if err != nil {
			// The store was unreachable; due records keep their nextFireAt
			// and the next tick retries them.
			s.logger.WithError(err).Error("Dispatch tick failed")
			return
		}
		for _, res := range results {
			if res.Err != nil {
				s.logger.WithError(res.Err).WithFields(logrus.Fields{
					"reminder_id": res.Record.ID,
					"outcome":     res.Outcome,
				}).Warn("Reminder not fully processed this tick")
			}
		}
	})
	if err != nil {
		return err
	}

	s.cronEngine.Start()
	s.logger.WithField("cron_spec", s.cronSpec).Info("Dispatch scheduler started")
	return nil
}

// Stop halts the tick source and waits for an in-flight tick to finish.
func (s *DispatchScheduler) Stop() {
	s.logger.Info("Stopping dispatch scheduler...")
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("Dispatch scheduler gracefully stopped")
}
