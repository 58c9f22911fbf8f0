package booking

import (
	"context"
	"time"

	"github.com/eleqt/eleqt-rides/internal/repo/postgres"
	"github.com/eleqt/eleqt-rides/pkg/events"
	"github.com/eleqt/eleqt-rides/pkg/logger"
)

// ReleaseSweeper returns claimed vehicles to the pool once their trips end.
// Deadlines are persisted rows, not in-process timers, so releases survive a
// restart. Each deadline is consumed when taken; a release that then fails
// is logged and left to an operator (the admin release endpoint).
type ReleaseSweeper struct {
	vehicles postgres.VehicleRepo
	bus      events.Publisher
	interval time.Duration

	now func() time.Time
}

func NewReleaseSweeper(vehicles postgres.VehicleRepo, bus events.Publisher, interval time.Duration) *ReleaseSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ReleaseSweeper{
		vehicles: vehicles,
		bus:      bus,
		interval: interval,
		now:      time.Now,
	}
}

// Run blocks, sweeping on every tick until the context is cancelled.
func (s *ReleaseSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.Info("vehicle release sweeper started", "interval", s.interval.String())
	for {
		select {
		case <-ctx.Done():
			logger.Info("vehicle release sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep releases every vehicle whose deadline has passed and reports how
// many it freed.
func (s *ReleaseSweeper) Sweep(ctx context.Context) int {
	due, err := s.vehicles.TakeDueReleases(ctx, s.now(), 100)
	if err != nil {
		logger.Error("failed to load due vehicle releases", "error", err)
		return 0
	}

	released := 0
	for _, rel := range due {
		if err := s.vehicles.Release(ctx, rel.VehicleID); err != nil {
			logger.Error("failed to release vehicle", "vehicle_id", rel.VehicleID, "error", err)
			continue
		}
		released++
		if s.bus != nil {
			if err := s.bus.Publish(ctx, events.VehicleReleased, events.VehicleReleasedEvent{
				VehicleID:  rel.VehicleID,
				ReleasedAt: s.now(),
			}); err != nil {
				logger.Warn("failed to publish vehicle release", "vehicle_id", rel.VehicleID, "error", err)
			}
		}
	}
	if released > 0 {
		logger.Info("released vehicles back to pool", "count", released)
	}
	return released
}
