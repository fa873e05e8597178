package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ErlanBelekov/expense-tracker/internal/metrics"
	"github.com/robfig/cron/v3"
)

type otpClearer interface {
	ClearExpiredOTPs(ctx context.Context, cutoff time.Time) (int, error)
}

// Sweeper clears expired one-time codes on a cron schedule. Verification
// already rejects expired codes, so a missed cycle only delays cleanup.
type Sweeper struct {
	users    otpClearer
	schedule cron.Schedule
	spec     string
	logger   *slog.Logger
	now      func() time.Time
}

// New parses spec as a standard cron expression or a descriptor such as
// "@every 10m".
func New(users otpClearer, spec string, logger *slog.Logger) (*Sweeper, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse sweep schedule %q: %w", spec, err)
	}
	return &Sweeper{
		users:    users,
		schedule: schedule,
		spec:     spec,
		logger:   logger.With("component", "sweeper"),
		now:      time.Now,
	}, nil
}

func (s *Sweeper) WithClock(now func() time.Time) *Sweeper {
	s.now = now
	return s
}

// Next reports when the cycle after t is due.
func (s *Sweeper) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

// Start runs sweeps until ctx is cancelled, waiting for an in-flight sweep
// before returning.
func (s *Sweeper) Start(ctx context.Context) {
	c := cron.New()
	c.Schedule(s.schedule, cron.FuncJob(func() { s.Sweep(ctx) }))

	metrics.SweeperStartTime.SetToCurrentTime()
	s.logger.Info("sweeper started", "schedule", s.spec)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.Info("sweeper shut down")
}

// Sweep runs a single cycle and returns how many codes were cleared.
func (s *Sweeper) Sweep(ctx context.Context) int {
	start := time.Now()
	defer func() {
		metrics.SweeperCycleDuration.Observe(time.Since(start).Seconds())
	}()

	cleared, err := s.users.ClearExpiredOTPs(ctx, s.now())
	if err != nil {
		s.logger.ErrorContext(ctx, "clear expired otps", "error", err)
		return 0
	}

	metrics.SweeperClearedTotal.Add(float64(cleared))
	if cleared > 0 {
		s.logger.InfoContext(ctx, "cleared expired otps", "count", cleared)
	}
	return cleared
}
