// Package scheduler runs the periodic expiration scan.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultScanTimeout bounds a single run over every tenant.
const DefaultScanTimeout = 15 * time.Minute

// Scanner scans every tenant for upcoming expiries.
type Scanner interface {
	ScanAll(ctx context.Context) error
}

// Scheduler triggers Scanner on a cron schedule. Overlapping runs are skipped.
type Scheduler struct {
	cron    *cron.Cron
	scanner Scanner
	timeout time.Duration
	logger  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// New parses schedule (standard five field cron syntax or a descriptor such as @daily)
// evaluated in UTC.
func New(schedule string, scanner Scanner, timeout time.Duration, logger *zap.Logger) (*Scheduler, error) {
	if timeout <= 0 {
		timeout = DefaultScanTimeout
	}
	cl := cronLogger{logger: logger.Sugar()}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{cron: c, scanner: scanner, timeout: timeout, logger: logger, ctx: ctx, cancel: cancel}
	if _, err := c.AddFunc(schedule, s.run); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid expiration scan schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("expiration scan scheduled", zap.Time("next", s.Next()))
}

// Next returns the next planned run, or the zero time before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Stop cancels a running scan and waits for it to return or for ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	var done context.Context
	s.once.Do(func() {
		s.cancel()
		done = s.cron.Stop()
	})
	if done == nil {
		return nil
	}
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.scanner.ScanAll(ctx); err != nil {
		s.logger.Error("scheduled expiration scan failed", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return
	}
	s.logger.Info("scheduled expiration scan finished", zap.Duration("elapsed", time.Since(start)))
}

// cronLogger routes cron's own messages to zap. Routine scheduling chatter goes to
// debug.
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
