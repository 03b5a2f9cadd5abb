// Package postgres implements the telemetry repository using PostgreSQL
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/printwatch/printwatch/internal/pwatchd/database"
	"github.com/printwatch/printwatch/internal/pwatchd/telemetry"
)

// Repository implements telemetry.Repository using PostgreSQL
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new PostgreSQL telemetry repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// SaveEvent persists a single event
func (r *Repository) SaveEvent(ctx context.Context, event telemetry.Event) error {
	const op = "TelemetryRepository.SaveEvent"

	eventContext := []byte("{}")
	if event.Context != nil {
		var err error
		eventContext, err = json.Marshal(event.Context)
		if err != nil {
			return fmt.Errorf("error marshaling event context: %w", err)
		}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO job_events (
			id, printer_id, type, job_name, hms_code,
			severity, occurred_at, context
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		event.ID,
		event.PrinterID,
		event.Type,
		event.JobName,
		event.HMSCode,
		event.Severity,
		event.OccurredAt,
		eventContext,
	)
	if err != nil {
		return database.MapError(err, op)
	}
	return nil
}

// ListEvents retrieves events matching the filter, newest first
func (r *Repository) ListEvents(ctx context.Context, filter telemetry.Filter) ([]telemetry.Event, error) {
	const op = "TelemetryRepository.ListEvents"

	query := `
		SELECT id, printer_id, type, job_name, hms_code,
		       severity, occurred_at, context
		FROM job_events
	`
	var conditions []string
	var args []interface{}

	if filter.PrinterID != nil {
		args = append(args, *filter.PrinterID)
		conditions = append(conditions, fmt.Sprintf("printer_id = $%d", len(args)))
	}
	if len(filter.Types) > 0 {
		placeholders := make([]string, len(filter.Types))
		for i, eventType := range filter.Types {
			args = append(args, string(eventType))
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("type IN (%s)", strings.Join(placeholders, ", ")))
	}
	if !filter.Since.IsZero() {
		args = append(args, filter.Since)
		conditions = append(conditions, fmt.Sprintf("occurred_at >= $%d", len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY occurred_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, database.MapError(err, op)
	}
	defer rows.Close()

	var events []telemetry.Event
	for rows.Next() {
		var event telemetry.Event
		var eventContext []byte

		err := rows.Scan(
			&event.ID,
			&event.PrinterID,
			&event.Type,
			&event.JobName,
			&event.HMSCode,
			&event.Severity,
			&event.OccurredAt,
			&eventContext,
		)
		if err != nil {
			return nil, database.MapError(err, op)
		}

		if len(eventContext) > 0 {
			if err := json.Unmarshal(eventContext, &event.Context); err != nil {
				return nil, fmt.Errorf("error unmarshaling event context: %w", err)
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, database.MapError(err, op)
	}

	return events, nil
}

// GetMetrics aggregates event counts for one printer
func (r *Repository) GetMetrics(ctx context.Context, printerID uuid.UUID) (*telemetry.Metrics, error) {
	const op = "TelemetryRepository.GetMetrics"

	metrics := &telemetry.Metrics{PrinterID: printerID}
	var lastEventAt sql.NullTime

	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE type = 'JOB_STARTED'),
			COUNT(*) FILTER (WHERE type = 'JOB_FINISHED'),
			COUNT(*) FILTER (WHERE type = 'JOB_FAILED'),
			COUNT(*) FILTER (WHERE type = 'HMS_RAISED'),
			MAX(occurred_at)
		FROM job_events
		WHERE printer_id = $1
	`, printerID).Scan(
		&metrics.JobsStarted,
		&metrics.JobsFinished,
		&metrics.JobsFailed,
		&metrics.HMSRaised,
		&lastEventAt,
	)
	if err != nil {
		return nil, database.MapError(err, op)
	}

	if lastEventAt.Valid {
		metrics.LastEventAt = lastEventAt.Time
	}
	return metrics, nil
}

// PruneEventsBefore removes events older than the cutoff
func (r *Repository) PruneEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const op = "TelemetryRepository.PruneEventsBefore"

	result, err := r.db.ExecContext(ctx, `
		DELETE FROM job_events WHERE occurred_at < $1
	`, cutoff)
	if err != nil {
		return 0, database.MapError(err, op)
	}

	pruned, err := result.RowsAffected()
	if err != nil {
		return 0, database.MapError(err, op)
	}
	return pruned, nil
}
