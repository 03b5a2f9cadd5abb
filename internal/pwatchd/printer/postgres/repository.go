// Package postgres implements the printer repository using PostgreSQL
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/printwatch/printwatch/internal/pwatchd/database"
	"github.com/printwatch/printwatch/internal/pwatchd/printer"
)

// Repository implements the printer.Repository interface using PostgreSQL
type Repository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewRepository creates a new PostgreSQL printer repository
func NewRepository(db *sql.DB, logger *slog.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

const printerColumns = `
	id, name, ip_address, access_code, serial_number,
	model, state, last_seen, version, properties
`

// Save persists a printer, handling both creation and updates with
// optimistic locking. Domain methods bump Version before Save, so an
// update must replace the row holding the previous version.
func (r *Repository) Save(ctx context.Context, p *printer.Printer) error {
	const op = "PrinterRepository.Save"

	properties, err := json.Marshal(p.Properties)
	if err != nil {
		return fmt.Errorf("error marshaling properties: %w", err)
	}

	err = database.RunInTx(ctx, r.db, nil, func(tx *database.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM printers WHERE id = $1)
		`, p.ID).Scan(&exists)
		if err != nil {
			return err
		}

		if !exists {
			r.logger.Info("creating printer",
				"printerID", p.ID,
				"name", p.Name,
				"serial", p.Endpoint.SerialNumber,
				"operation", op,
			)
			_, err = tx.ExecContext(ctx, `
				INSERT INTO printers (
					id, name, ip_address, access_code, serial_number,
					model, state, last_seen, version, properties
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			`,
				p.ID,
				p.Name,
				p.Endpoint.IPAddress,
				p.Endpoint.AccessCode,
				p.Endpoint.SerialNumber,
				p.Model,
				p.State,
				p.LastSeen,
				p.Version,
				properties,
			)
			return err
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE printers
			SET name = $1,
				ip_address = $2,
				access_code = $3,
				model = $4,
				state = $5,
				last_seen = $6,
				version = $7,
				properties = $8
			WHERE id = $9
			  AND version = $10
		`,
			p.Name,
			p.Endpoint.IPAddress,
			p.Endpoint.AccessCode,
			p.Model,
			p.State,
			p.LastSeen,
			p.Version,
			properties,
			p.ID,
			p.Version-1,
		)
		if err != nil {
			return err
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			r.logger.Warn("version mismatch",
				"printerID", p.ID,
				"expectedVersion", p.Version-1,
				"operation", op,
			)
			return printer.ErrVersionMismatch{ID: p.ID.String()}
		}
		return nil
	})

	if err != nil {
		if _, ok := err.(printer.ErrVersionMismatch); ok {
			return err
		}
		return database.MapError(err, op)
	}
	return nil
}

// FindByID retrieves a printer by its unique identifier
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*printer.Printer, error) {
	const op = "PrinterRepository.FindByID"

	row := r.db.QueryRowContext(ctx, `
		SELECT `+printerColumns+`
		FROM printers
		WHERE id = $1
	`, id)
	return r.scanPrinter(row, op)
}

// FindBySerial retrieves a printer by its serial number
func (r *Repository) FindBySerial(ctx context.Context, serial string) (*printer.Printer, error) {
	const op = "PrinterRepository.FindBySerial"

	row := r.db.QueryRowContext(ctx, `
		SELECT `+printerColumns+`
		FROM printers
		WHERE serial_number = $1
	`, serial)
	return r.scanPrinter(row, op)
}

// FindByName retrieves a printer by its name
func (r *Repository) FindByName(ctx context.Context, name string) (*printer.Printer, error) {
	const op = "PrinterRepository.FindByName"

	row := r.db.QueryRowContext(ctx, `
		SELECT `+printerColumns+`
		FROM printers
		WHERE name = $1
	`, name)
	return r.scanPrinter(row, op)
}

// List retrieves printers matching the given filter
func (r *Repository) List(ctx context.Context, filter printer.Filter) ([]*printer.Printer, error) {
	const op = "PrinterRepository.List"

	query := `SELECT ` + printerColumns + ` FROM printers`
	var conditions []string
	var args []interface{}

	if filter.Model != "" {
		args = append(args, filter.Model)
		conditions = append(conditions, fmt.Sprintf("model = $%d", len(args)))
	}
	if len(filter.States) > 0 {
		placeholders := make([]string, len(filter.States))
		for i, state := range filter.States {
			args = append(args, string(state))
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("state IN (%s)", strings.Join(placeholders, ", ")))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, database.MapError(err, op)
	}
	defer rows.Close()

	var printers []*printer.Printer
	for rows.Next() {
		p, err := r.scanPrinter(rows, op)
		if err != nil {
			return nil, err
		}
		printers = append(printers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, database.MapError(err, op)
	}

	return printers, nil
}

// Delete removes a printer from storage
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "PrinterRepository.Delete"

	result, err := r.db.ExecContext(ctx, `DELETE FROM printers WHERE id = $1`, id)
	if err != nil {
		return database.MapError(err, op)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return database.MapError(err, op)
	}
	if rows == 0 {
		return database.MapError(sql.ErrNoRows, op)
	}
	return nil
}

// scanner matches both sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func (r *Repository) scanPrinter(row scanner, op string) (*printer.Printer, error) {
	var p printer.Printer
	var properties []byte

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Endpoint.IPAddress,
		&p.Endpoint.AccessCode,
		&p.Endpoint.SerialNumber,
		&p.Model,
		&p.State,
		&p.LastSeen,
		&p.Version,
		&properties,
	)
	if err != nil {
		return nil, database.MapError(err, op)
	}

	if len(properties) > 0 {
		if err := json.Unmarshal(properties, &p.Properties); err != nil {
			return nil, fmt.Errorf("error unmarshaling properties: %w", err)
		}
	}
	if p.Properties == nil {
		p.Properties = make(map[string]string)
	}

	return &p, nil
}
