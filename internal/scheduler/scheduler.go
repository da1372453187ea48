// Package scheduler runs the periodic lifecycle sweep on a cron expression.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"notebase/internal/app"
)

var ErrAlreadyRunning = errors.New("sweep is already running")

const runHistoryLimit = 50

type RunRecord struct {
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ms"`
	Trigger   string        `json:"trigger"`
	Swept     int           `json:"swept"`
	Failed    int           `json:"failed"`
	Error     string        `json:"error,omitempty"`
}

type Status struct {
	Running   bool        `json:"running"`
	CronSpec  string      `json:"cron_spec"`
	NextRun   *time.Time  `json:"next_run,omitempty"`
	LastRuns  []RunRecord `json:"last_runs"`
	TotalRuns int64       `json:"total_runs"`
}

// Scheduler triggers the sweep on a cron schedule and on demand. Only one
// sweep runs at a time; a trigger that fires while one is in flight is
// skipped and logged, never queued.
type Scheduler struct {
	sweep    *app.SweepService
	logger   *zap.Logger
	cronSpec string

	cron    *cron.Cron
	entryID cron.EntryID

	running   atomic.Bool
	totalRuns atomic.Int64

	mu      sync.Mutex
	history []RunRecord
}

func New(sweep *app.SweepService, logger *zap.Logger, cronSpec string) *Scheduler {
	return &Scheduler{
		sweep:    sweep,
		logger:   logger,
		cronSpec: cronSpec,
		cron:     cron.New(),
	}
}

// Start registers the cron entry and starts the timer goroutine.
func (s *Scheduler) Start() error {
	id, err := s.cron.AddFunc(s.cronSpec, func() {
		if err := s.trigger(context.Background(), "cron"); errors.Is(err, ErrAlreadyRunning) {
			s.logger.Warn("scheduled sweep skipped, previous run still in flight")
		}
	})
	if err != nil {
		return err
	}
	s.entryID = id
	s.cron.Start()
	s.logger.Info("sweep scheduler started", zap.String("cron", s.cronSpec))
	return nil
}

// Stop halts the timer and waits for an in-flight sweep to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// RunNow triggers a sweep outside the schedule. Returns ErrAlreadyRunning
// when one is in flight.
func (s *Scheduler) RunNow(ctx context.Context) error {
	return s.trigger(ctx, "manual")
}

func (s *Scheduler) trigger(ctx context.Context, trigger string) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer s.running.Store(false)

	record := RunRecord{StartedAt: time.Now(), Trigger: trigger}
	summary, err := s.sweep.Run(ctx)
	record.Duration = time.Since(record.StartedAt)
	if err != nil {
		record.Error = err.Error()
		s.logger.Error("sweep run failed", zap.String("trigger", trigger), zap.Error(err))
	} else {
		record.Swept = summary.Swept
		record.Failed = summary.Failed
	}

	s.totalRuns.Add(1)
	s.mu.Lock()
	s.history = append(s.history, record)
	if len(s.history) > runHistoryLimit {
		s.history = s.history[len(s.history)-runHistoryLimit:]
	}
	s.mu.Unlock()
	return err
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	history := make([]RunRecord, len(s.history))
	copy(history, s.history)
	s.mu.Unlock()

	status := Status{
		Running:   s.running.Load(),
		CronSpec:  s.cronSpec,
		LastRuns:  history,
		TotalRuns: s.totalRuns.Load(),
	}
	if entry := s.cron.Entry(s.entryID); entry.ID != 0 && !entry.Next.IsZero() {
		next := entry.Next
		status.NextRun = &next
	}
	return status
}
