package postgres

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printwatch/printwatch/internal/pwatchd/printer"
	printerpg "github.com/printwatch/printwatch/internal/pwatchd/printer/postgres"
	"github.com/printwatch/printwatch/internal/pwatchd/telemetry"
	"github.com/printwatch/printwatch/internal/pwatchd/testutil"
)

func setup(t *testing.T) (*Repository, uuid.UUID, *sql.DB, func()) {
	t.Helper()
	db, cleanup := testutil.SetupTestDB(t)

	// Events reference a printer row
	printerRepo := printerpg.NewRepository(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
	p, err := printer.New("workshop-x1", printer.Endpoint{
		IPAddress:    "192.168.1.50",
		AccessCode:   "12345678",
		SerialNumber: "01S00C123400001",
	}, "X1 Carbon")
	require.NoError(t, err)
	require.NoError(t, printerRepo.Save(context.Background(), p))

	return NewRepository(db), p.ID, db, cleanup
}

func testEvent(printerID uuid.UUID, eventType telemetry.EventType, occurredAt time.Time) telemetry.Event {
	return telemetry.Event{
		ID:         uuid.New(),
		PrinterID:  printerID,
		Type:       eventType,
		JobName:    "benchy.3mf",
		OccurredAt: occurredAt,
	}
}

func TestSaveAndListEvents(t *testing.T) {
	repo, printerID, _, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	now := time.Now()
	started := testEvent(printerID, telemetry.EventJobStarted, now.Add(-2*time.Hour))
	finished := testEvent(printerID, telemetry.EventJobFinished, now.Add(-time.Hour))
	hms := telemetry.Event{
		ID:         uuid.New(),
		PrinterID:  printerID,
		Type:       telemetry.EventHMSRaised,
		HMSCode:    "0300_0100_0001_0001",
		Severity:   3,
		OccurredAt: now,
		Context:    map[string]string{"severityLabel": "Common"},
	}

	for _, e := range []telemetry.Event{started, finished, hms} {
		require.NoError(t, repo.SaveEvent(ctx, e))
	}

	// Newest first
	all, err := repo.ListEvents(ctx, telemetry.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, hms.ID, all[0].ID)
	assert.Equal(t, started.ID, all[2].ID)
	assert.Equal(t, "Common", all[0].Context["severityLabel"])

	byType, err := repo.ListEvents(ctx, telemetry.Filter{
		Types: []telemetry.EventType{telemetry.EventJobStarted},
	})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, started.ID, byType[0].ID)

	recent, err := repo.ListEvents(ctx, telemetry.Filter{
		Since: now.Add(-90 * time.Minute),
	})
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	limited, err := repo.ListEvents(ctx, telemetry.Filter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	byPrinter, err := repo.ListEvents(ctx, telemetry.Filter{PrinterID: &printerID})
	require.NoError(t, err)
	assert.Len(t, byPrinter, 3)
}

func TestGetMetrics(t *testing.T) {
	repo, printerID, _, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	now := time.Now()
	events := []telemetry.Event{
		testEvent(printerID, telemetry.EventJobStarted, now.Add(-3*time.Hour)),
		testEvent(printerID, telemetry.EventJobFinished, now.Add(-2*time.Hour)),
		testEvent(printerID, telemetry.EventJobStarted, now.Add(-time.Hour)),
		testEvent(printerID, telemetry.EventJobFailed, now),
	}
	for _, e := range events {
		require.NoError(t, repo.SaveEvent(ctx, e))
	}

	metrics, err := repo.GetMetrics(ctx, printerID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), metrics.JobsStarted)
	assert.Equal(t, int64(1), metrics.JobsFinished)
	assert.Equal(t, int64(1), metrics.JobsFailed)
	assert.Equal(t, int64(0), metrics.HMSRaised)
	assert.WithinDuration(t, now, metrics.LastEventAt, time.Second)
}

func TestGetMetricsNoEvents(t *testing.T) {
	repo, printerID, _, cleanup := setup(t)
	defer cleanup()

	metrics, err := repo.GetMetrics(context.Background(), printerID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), metrics.JobsStarted)
	assert.True(t, metrics.LastEventAt.IsZero())
}

func TestPruneEventsBefore(t *testing.T) {
	repo, printerID, _, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	now := time.Now()
	old := testEvent(printerID, telemetry.EventJobStarted, now.Add(-48*time.Hour))
	fresh := testEvent(printerID, telemetry.EventJobFinished, now)
	require.NoError(t, repo.SaveEvent(ctx, old))
	require.NoError(t, repo.SaveEvent(ctx, fresh))

	pruned, err := repo.PruneEventsBefore(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	remaining, err := repo.ListEvents(ctx, telemetry.Filter{})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, fresh.ID, remaining[0].ID)
}
