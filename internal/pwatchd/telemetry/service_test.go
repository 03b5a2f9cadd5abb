package telemetry

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/printwatch/printwatch/internal/pwatchd/hms"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) SaveEvent(ctx context.Context, event Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockRepository) ListEvents(ctx context.Context, filter Filter) ([]Event, error) {
	args := m.Called(ctx, filter)
	if events := args.Get(0); events != nil {
		return events.([]Event), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) GetMetrics(ctx context.Context, printerID uuid.UUID) (*Metrics, error) {
	args := m.Called(ctx, printerID)
	if metrics := args.Get(0); metrics != nil {
		return metrics.(*Metrics), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) PruneEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func newTestService(repo Repository) Service {
	return NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRecordJobStarted(t *testing.T) {
	repo := &mockRepository{}
	svc := newTestService(repo)
	printerID := uuid.New()

	repo.On("SaveEvent", mock.Anything, mock.MatchedBy(func(e Event) bool {
		return e.Type == EventJobStarted &&
			e.PrinterID == printerID &&
			e.JobName == "benchy.3mf" &&
			!e.OccurredAt.IsZero()
	})).Return(nil)

	svc.RecordJobStarted(context.Background(), printerID, "benchy.3mf")
	repo.AssertExpectations(t)
}

func TestRecordJobFinished(t *testing.T) {
	tests := []struct {
		name     string
		failed   bool
		wantType EventType
	}{
		{"success maps to finished", false, EventJobFinished},
		{"failure maps to failed", true, EventJobFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepository{}
			svc := newTestService(repo)
			printerID := uuid.New()

			repo.On("SaveEvent", mock.Anything, mock.MatchedBy(func(e Event) bool {
				return e.Type == tt.wantType && e.JobName == "vase.3mf"
			})).Return(nil)

			svc.RecordJobFinished(context.Background(), printerID, "vase.3mf", tt.failed)
			repo.AssertExpectations(t)
		})
	}
}

func TestRecordHMSDecoratesEvents(t *testing.T) {
	repo := &mockRepository{}
	svc := newTestService(repo)
	printerID := uuid.New()

	errs := hms.FromReport([]hms.ReportEntry{
		{Attr: 0x0300_0100, Code: 0x0001_0001},
	})
	require.Len(t, errs, 1)

	repo.On("SaveEvent", mock.Anything, mock.MatchedBy(func(e Event) bool {
		return e.Type == EventHMSRaised &&
			e.HMSCode == "0300_0100_0001_0001" &&
			e.Severity == 1 &&
			e.Context["severityLabel"] == "Fatal" &&
			e.Context["wikiUrl"] != "" &&
			e.Context["description"] != ""
	})).Return(nil)

	svc.RecordHMS(context.Background(), printerID, "X1 Carbon", errs)
	repo.AssertExpectations(t)
}

func TestEventsAppliesDefaultLimit(t *testing.T) {
	repo := &mockRepository{}
	svc := newTestService(repo)

	repo.On("ListEvents", mock.Anything, mock.MatchedBy(func(f Filter) bool {
		return f.Limit == DefaultListLimit
	})).Return([]Event{}, nil)

	_, err := svc.Events(context.Background(), Filter{})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestPrinterMetrics(t *testing.T) {
	repo := &mockRepository{}
	svc := newTestService(repo)
	printerID := uuid.New()

	repo.On("GetMetrics", mock.Anything, printerID).Return(&Metrics{
		PrinterID:    printerID,
		JobsStarted:  12,
		JobsFinished: 10,
		JobsFailed:   2,
		HMSRaised:    5,
	}, nil)

	metrics, err := svc.PrinterMetrics(context.Background(), printerID)
	require.NoError(t, err)
	assert.Equal(t, int64(12), metrics.JobsStarted)
	assert.Equal(t, int64(2), metrics.JobsFailed)
}

func TestPruneUsesRetentionCutoff(t *testing.T) {
	repo := &mockRepository{}
	svc := newTestService(repo)

	repo.On("PruneEventsBefore", mock.Anything, mock.MatchedBy(func(cutoff time.Time) bool {
		// Cutoff should land roughly 24h in the past
		expected := time.Now().Add(-24 * time.Hour)
		return cutoff.Sub(expected).Abs() < time.Minute
	})).Return(int64(7), nil)

	pruned, err := svc.Prune(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(7), pruned)
}
