package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMaintenance_RefreshesStaleSnapshot(t *testing.T) {
	svc, fetcher, audit := newTestService(t)
	ctx := context.Background()
	cfg := MaintenanceConfig{RefreshInterval: time.Hour}

	// Nothing cached yet: nothing to refresh.
	svc.runMaintenance(ctx, cfg, time.Now())
	assert.Zero(t, fetcher.calls.Load())

	first, err := svc.Dataset(ctx)
	require.NoError(t, err)

	svc.runMaintenance(ctx, cfg, first.LoadedAt.Add(30*time.Minute))
	assert.Equal(t, int32(1), fetcher.calls.Load(), "fresh snapshot kept")

	svc.runMaintenance(ctx, cfg, first.LoadedAt.Add(2*time.Hour))
	assert.Equal(t, int32(2), fetcher.calls.Load())

	cur, ok := svc.Current()
	require.True(t, ok)
	assert.NotEqual(t, first.SnapshotID, cur.SnapshotID)

	entries, err := audit.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ActionRefresh, entries[0].Action)
}

func TestRunMaintenance_PurgesAudit(t *testing.T) {
	svc, _, audit := newTestService(t)
	ctx := context.Background()

	_, err := audit.Record(ctx, AuditLogParams{Action: ActionExportParts, ProductCode: "A1"})
	require.NoError(t, err)

	svc.runMaintenance(ctx, MaintenanceConfig{AuditRetention: time.Hour}, time.Now())
	entries, _ := audit.Recent(ctx, 10)
	assert.Len(t, entries, 1, "recent entry kept")

	svc.runMaintenance(ctx, MaintenanceConfig{AuditRetention: time.Hour}, time.Now().Add(2*time.Hour))
	entries, _ = audit.Recent(ctx, 10)
	assert.Empty(t, entries)
}

func TestStartScheduler_DisabledReturns(t *testing.T) {
	svc, _, _ := newTestService(t)

	done := make(chan struct{})
	go func() {
		svc.StartScheduler(context.Background(), MaintenanceConfig{})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler with no jobs should return immediately")
	}
}

func TestMemoryAuditLog_Purge(t *testing.T) {
	log := NewMemoryAuditLog(10)
	ctx := context.Background()

	for _, code := range []string{"A1", "B2", "C3"} {
		_, err := log.Record(ctx, AuditLogParams{Action: ActionExportParts, ProductCode: code})
		require.NoError(t, err)
	}
	all, _ := log.Recent(ctx, 0)
	cutoff := all[0].CreatedAt // newest

	n, err := log.Purge(ctx, cutoff)
	require.NoError(t, err)

	left, _ := log.Recent(ctx, 0)
	assert.Equal(t, int64(3-len(left)), n)
	assert.Contains(t, codesOf(left), "C3")
}

func codesOf(entries []AuditEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ProductCode
	}
	return out
}
