package telemetry

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/printwatch/printwatch/internal/pwatchd/errors"
	"github.com/printwatch/printwatch/internal/pwatchd/hms"
)

// DefaultListLimit bounds event queries that specify no limit
const DefaultListLimit = 100

type service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a telemetry service backed by the given
// repository
func NewService(repo Repository, logger *slog.Logger) Service {
	return &service{repo: repo, logger: logger}
}

// The Record methods run on report-handling goroutines where the
// device has already moved on, so persistence failures are logged
// rather than returned.

func (s *service) RecordJobStarted(ctx context.Context, printerID uuid.UUID, jobName string) {
	s.save(ctx, Event{
		ID:         uuid.New(),
		PrinterID:  printerID,
		Type:       EventJobStarted,
		JobName:    jobName,
		OccurredAt: time.Now(),
	})
}

func (s *service) RecordJobFinished(ctx context.Context, printerID uuid.UUID, jobName string, failed bool) {
	eventType := EventJobFinished
	if failed {
		eventType = EventJobFailed
	}
	s.save(ctx, Event{
		ID:         uuid.New(),
		PrinterID:  printerID,
		Type:       eventType,
		JobName:    jobName,
		OccurredAt: time.Now(),
	})
}

func (s *service) RecordHMS(ctx context.Context, printerID uuid.UUID, deviceModel string, errs []hms.Error) {
	now := time.Now()
	for _, e := range errs {
		class := e.Severity.Class()
		s.save(ctx, Event{
			ID:         uuid.New(),
			PrinterID:  printerID,
			Type:       EventHMSRaised,
			HMSCode:    e.Code.String(),
			Severity:   int(e.Severity),
			OccurredAt: now,
			Context: map[string]string{
				"severityLabel": class.Label,
				"description":   e.Description(),
				"wikiUrl":       e.WikiURL(deviceModel),
			},
		})
	}
}

func (s *service) save(ctx context.Context, event Event) {
	if err := s.repo.SaveEvent(ctx, event); err != nil {
		s.logger.Error("failed to save job event",
			"error", err,
			"type", event.Type,
			"printerID", event.PrinterID,
		)
	}
}

func (s *service) Events(ctx context.Context, filter Filter) ([]Event, error) {
	const op = "TelemetryService.Events"

	if filter.Limit <= 0 {
		filter.Limit = DefaultListLimit
	}

	events, err := s.repo.ListEvents(ctx, filter)
	if err != nil {
		return nil, errors.NewError("LIST_FAILED", "Failed to list job events", op, err)
	}
	return events, nil
}

func (s *service) PrinterMetrics(ctx context.Context, printerID uuid.UUID) (*Metrics, error) {
	const op = "TelemetryService.PrinterMetrics"

	metrics, err := s.repo.GetMetrics(ctx, printerID)
	if err != nil {
		return nil, errors.NewError("METRICS_FAILED", "Failed to aggregate printer metrics", op, err)
	}
	return metrics, nil
}

func (s *service) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	const op = "TelemetryService.Prune"

	cutoff := time.Now().Add(-retention)
	pruned, err := s.repo.PruneEventsBefore(ctx, cutoff)
	if err != nil {
		return 0, errors.NewError("PRUNE_FAILED", "Failed to prune job events", op, err)
	}

	if pruned > 0 {
		s.logger.Info("pruned job events", "count", pruned, "cutoff", cutoff)
	}
	return pruned, nil
}
