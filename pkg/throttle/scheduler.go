package throttle

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// DecayScheduler runs periodic stress decay on a cron schedule so quiet nodes
// recover capacity between bursts.
type DecayScheduler struct {
	throttle *Throttle
	cron     *cron.Cron
	schedule string
	factor   float64
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewDecayScheduler creates a scheduler that applies the given decay factor on
// the cron schedule (standard 5-field syntax, e.g. "*/5 * * * *").
func NewDecayScheduler(t *Throttle, schedule string, factor float64, logger *slog.Logger) *DecayScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DecayScheduler{
		throttle: t,
		cron:     cron.New(),
		schedule: schedule,
		factor:   factor,
		logger:   logger.With("component", "throttle.scheduler"),
	}
}

// Start begins scheduled decay. If the schedule is empty, the scheduler does
// nothing. The scheduler stops itself when the context is cancelled.
func (s *DecayScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("decay schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.throttle.Decay(s.factor)
		s.logger.Debug("applied scheduled stress decay", "factor", s.factor)
	}); err != nil {
		return fmt.Errorf("failed to schedule decay: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("decay scheduler started",
		"schedule", s.schedule,
		"factor", s.factor,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop halts the scheduler. Safe to call multiple times.
func (s *DecayScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cron.Stop()
	s.running = false
	s.logger.Info("decay scheduler stopped")
}
