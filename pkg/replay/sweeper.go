package replay

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper prunes expired nonces on a cron schedule.
type Sweeper struct {
	pruner   Pruner
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
	now      func() time.Time
	onPrune  func(int)
}

// NewSweeper creates a sweeper for p. Schedule uses standard cron syntax
// or descriptors such as "@every 1m".
func NewSweeper(p Pruner, schedule string, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		pruner:   p,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger.With("component", "replay.sweeper"),
		now:      time.Now,
	}
}

// OnPrune registers fn to receive the count of each successful sweep.
// It must be called before Start.
func (s *Sweeper) OnPrune(fn func(removed int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onPrune = fn
}

// Start schedules pruning. An empty schedule disables the sweeper. The
// sweeper stops by itself when ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("sweep schedule not configured, skipping sweeper")
		return nil
	}
	if s.running {
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.runSweep(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("nonce sweeper started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// RunOnce prunes immediately and returns the number of removed nonces.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	return s.pruner.Prune(ctx, s.now())
}

func (s *Sweeper) runSweep(ctx context.Context) {
	removed, err := s.RunOnce(ctx)
	if err != nil {
		s.logger.Error("nonce sweep failed", "error", err)
		return
	}
	if s.onPrune != nil {
		s.onPrune(removed)
	}
	if removed > 0 {
		s.logger.Debug("nonce sweep completed", "removed", removed)
	}
}

// Stop stops the sweeper and waits for a running sweep to complete.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		<-s.cron.Stop().Done()
		s.running = false
		s.logger.Info("nonce sweeper stopped")
	}
}

// IsRunning returns true if the sweeper is scheduled.
func (s *Sweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled sweep, or nil if none is scheduled.
func (s *Sweeper) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
