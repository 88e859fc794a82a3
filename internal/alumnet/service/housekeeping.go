package service

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/aussiebroadwan/alumnet/internal/alumnet/store"
	"github.com/aussiebroadwan/alumnet/internal/alumnet/telemetry"
)

// DefaultMailRetention is how long delivered mail jobs are kept for batch
// status reporting.
const DefaultMailRetention = 90 * 24 * time.Hour

// HousekeepingService periodically flags invites past their expiry and prunes
// delivered mail. Lazy expiry on lookup still applies between sweeps.
type HousekeepingService struct {
	Store         store.Store
	Logger        *slog.Logger
	Interval      time.Duration
	MailRetention time.Duration

	started atomic.Bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewHousekeepingService creates the sweeper. If interval is 0 or negative,
// defaults to 1 hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:         store,
		Logger:        logger,
		Interval:      interval,
		MailRetention: DefaultMailRetention,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop() to shut it down.
func (s *HousekeepingService) Start() {
	s.started.Store(true)
	go s.run()
	s.Logger.Info("housekeeping service started", slog.Duration("interval", s.Interval))
}

// Stop blocks until an in-progress sweep has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

// Running reports whether the sweeper was started and has not exited.
func (s *HousekeepingService) Running() bool {
	return loopRunning(&s.started, s.doneCh)
}

func loopRunning(started *atomic.Bool, done <-chan struct{}) bool {
	if !started.Load() {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup runs one sweep. Each step is independent; a failure in one does
// not stop the others.
func (s *HousekeepingService) Cleanup(ctx context.Context) {
	now := time.Now()
	s.Logger.Debug("starting housekeeping cleanup")

	expired, err := s.Store.Invites().ExpireStaleInvites(ctx, now)
	if err != nil {
		s.Logger.Error("failed to expire stale invites", slog.Any("error", err))
	} else if expired > 0 {
		telemetry.InvitesExpiredTotal.WithLabelValues("sweep").Add(float64(expired))
	}

	pruned, err := s.Store.MailJobs().PruneMailJobs(ctx, now.Add(-s.MailRetention))
	if err != nil {
		s.Logger.Error("failed to prune delivered mail", slog.Any("error", err))
	}

	s.Logger.Info("housekeeping cleanup completed",
		slog.Int64("invites_expired", expired),
		slog.Int64("mail_pruned", pruned),
	)
}
