// Package database provides utilities for database operations
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	werrors "github.com/printwatch/printwatch/internal/pwatchd/errors"
	"github.com/printwatch/printwatch/internal/pwatchd/migrations"
)

// Tx wraps a database transaction with additional functionality
type Tx struct {
	*sql.Tx
}

// TxOptions defines options for transaction execution
type TxOptions struct {
	// Isolation sets the transaction isolation level
	Isolation sql.IsolationLevel
	// ReadOnly indicates if the transaction is read-only
	ReadOnly bool
}

// Setup opens a connection pool, waits for the database to come up, and
// applies pending migrations. Retries with a fixed interval so the
// server can start before its database container.
func Setup(connStr string, maxRetries int, retryInterval time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	for attempt := 0; ; attempt++ {
		err = db.Ping()
		if err == nil {
			break
		}
		if attempt >= maxRetries {
			db.Close()
			return nil, fmt.Errorf("database not reachable after %d attempts: %w", attempt+1, err)
		}
		time.Sleep(retryInterval)
	}

	if err := migrations.NewManager(db).ApplyMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("error applying migrations: %w", err)
	}

	return db, nil
}

// RunInTx executes a function within a transaction
func RunInTx(ctx context.Context, db *sql.DB, opts *TxOptions, fn func(*Tx) error) error {
	var txOpts *sql.TxOptions
	if opts != nil {
		txOpts = &sql.TxOptions{
			Isolation: opts.Isolation,
			ReadOnly:  opts.ReadOnly,
		}
	}

	tx, err := db.BeginTx(ctx, txOpts)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	wtx := &Tx{Tx: tx}

	if err := fn(wtx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("error rolling back transaction: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}

	return nil
}

// MapError converts database-specific errors to domain errors
func MapError(err error, op string) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return werrors.NewError(
				"CONFLICT",
				"resource already exists",
				op,
				werrors.ErrConflict,
			)
		case "23503": // foreign_key_violation
			return werrors.NewError(
				"NOT_FOUND",
				"referenced resource not found",
				op,
				werrors.ErrNotFound,
			)
		case "23514": // check_violation
			return werrors.NewError(
				"INVALID_INPUT",
				pqErr.Message,
				op,
				werrors.ErrInvalidInput,
			)
		}
	}

	if errors.Is(err, sql.ErrNoRows) {
		return werrors.NewError(
			"NOT_FOUND",
			"resource not found",
			op,
			werrors.ErrNotFound,
		)
	}

	return werrors.NewError(
		"INTERNAL",
		"internal database error",
		op,
		err,
	)
}
