// Package service implements the business logic for printer management
package service

import (
	"log/slog"

	"github.com/printwatch/printwatch/internal/pwatchd/printer"
)

var _ printer.Service = (*Service)(nil)

// Service implements the printer.Service interface
type Service struct {
	repo      printer.Repository
	publisher printer.EventPublisher
	logger    *slog.Logger
}

// New creates a new printer service instance
func New(repo printer.Repository, publisher printer.EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}
