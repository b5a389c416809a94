package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ericfisherdev/credtrust/internal/domain/port/driven"
)

// sweepResult is the outcome of one sweep.
type sweepResult struct {
	expired int64
	err     error
}

// sweepRequest represents a manual sweep trigger.
type sweepRequest struct {
	done chan sweepResult
}

// SweepService persists time-triggered expiry. Effective status is always
// computed at read time; the sweep only keeps the stored status from going
// stale for consumers that read it directly.
type SweepService struct {
	store    driven.CredentialStore
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger
	sweepCh  chan sweepRequest
	onSweep  []func(expired int64)
}

// NewSweepService creates a SweepService that runs every interval once started.
func NewSweepService(store driven.CredentialStore, interval time.Duration, logger *slog.Logger) *SweepService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SweepService{
		store:    store,
		interval: interval,
		now:      time.Now,
		logger:   logger,
		sweepCh:  make(chan sweepRequest),
	}
}

// WithClock replaces the time source.
func (s *SweepService) WithClock(now func() time.Time) *SweepService {
	s.now = now
	return s
}

// OnSweep registers fn to run after every successful sweep.
func (s *SweepService) OnSweep(fn func(expired int64)) *SweepService {
	s.onSweep = append(s.onSweep, fn)
	return s
}

// Start runs an immediate sweep, then sweeps on the configured interval. It
// also serves manual SweepNow requests. Start blocks until ctx is canceled.
func (s *SweepService) Start(ctx context.Context) {
	if _, err := s.Sweep(ctx); err != nil {
		s.logger.Error("initial expiry sweep failed", "error", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweep service stopped")
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.Error("expiry sweep failed", "error", err)
			}
		case req := <-s.sweepCh:
			n, err := s.Sweep(ctx)
			req.done <- sweepResult{expired: n, err: err}
		}
	}
}

// SweepNow asks the running loop for an immediate sweep and waits for it.
// It blocks until the sweep completes or ctx is canceled.
func (s *SweepService) SweepNow(ctx context.Context) (int64, error) {
	done := make(chan sweepResult, 1)

	select {
	case s.sweepCh <- sweepRequest{done: done}:
	case <-ctx.Done():
		return 0, ctx.Err()
	}

	select {
	case res := <-done:
		return res.expired, res.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Sweep marks every issued credential past its expiry as expired and returns
// the number of records changed.
func (s *SweepService) Sweep(ctx context.Context) (int64, error) {
	start := time.Now()

	n, err := s.store.ExpireDue(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("expire due credentials: %w", err)
	}

	s.logger.Info("expiry sweep complete",
		"expired", n,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	for _, fn := range s.onSweep {
		fn(n)
	}
	return n, nil
}
