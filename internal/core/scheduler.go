package core

// scheduler.go provides background maintenance for a running server:
//  1. Optionally reload the catalog when the cached snapshot is older than
//     RefreshInterval, so edits to the shared workbook show up without a
//     manual "Actualizar datos".
//  2. Purge export audit entries older than AuditRetention.
//
// The scheduler is long-running and stops with its context. Failed jobs are
// logged and retried on the next tick; they never stop the server.

import (
	"context"
	"log/slog"
	"time"
)

// MaintenanceConfig configures StartScheduler. Zero durations disable a job.
type MaintenanceConfig struct {
	RefreshInterval time.Duration // max snapshot age before a reload
	AuditRetention  time.Duration // how long audit entries are kept
	CheckInterval   time.Duration // how often the jobs run (default: 1m)
}

// StartScheduler runs the maintenance jobs every CheckInterval until ctx is
// cancelled. It blocks; call it in its own goroutine.
func (s *Service) StartScheduler(ctx context.Context, cfg MaintenanceConfig) {
	if cfg.RefreshInterval <= 0 && cfg.AuditRetention <= 0 {
		slog.Debug("scheduler disabled")
		return
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = time.Minute
	}

	slog.Info("scheduler started",
		"refresh_interval", cfg.RefreshInterval,
		"audit_retention", cfg.AuditRetention,
		"check_interval", cfg.CheckInterval,
	)

	ctx = ContextWithClient(ctx, ClientInfo{UserAgent: "scheduler"})
	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("scheduler stopped")
			return
		case now := <-ticker.C:
			s.runMaintenance(ctx, cfg, now)
		}
	}
}

// runMaintenance performs one cycle of the enabled jobs.
func (s *Service) runMaintenance(ctx context.Context, cfg MaintenanceConfig, now time.Time) {
	if cfg.RefreshInterval > 0 && s.snapshotStale(now, cfg.RefreshInterval) {
		start := time.Now()
		if ds, err := s.Refresh(ctx); err != nil {
			// The stale snapshot is gone; the next request retries the load.
			slog.Error("scheduled refresh failed", "error", err)
		} else {
			slog.Info("scheduled refresh",
				"snapshot_id", ds.SnapshotID,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		}
	}

	if cfg.AuditRetention > 0 {
		purged, err := s.audit.Purge(ctx, now.Add(-cfg.AuditRetention))
		if err != nil {
			slog.Error("audit purge failed", "error", err)
		} else if purged > 0 {
			slog.Info("purged audit entries", "entries_purged", purged)
		}
	}
}

// snapshotStale reports whether a cached snapshot exists and is older than
// maxAge. Nothing is reloaded before the first request loads the catalog.
func (s *Service) snapshotStale(now time.Time, maxAge time.Duration) bool {
	ds, ok := s.Current()
	return ok && now.Sub(ds.LoadedAt) >= maxAge
}
