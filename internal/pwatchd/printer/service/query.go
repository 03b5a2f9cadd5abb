package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/printwatch/printwatch/internal/pwatchd/errors"
	"github.com/printwatch/printwatch/internal/pwatchd/printer"
)

// Get retrieves a printer by ID
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*printer.Printer, error) {
	const op = "PrinterService.Get"

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewError("NOT_FOUND", fmt.Sprintf("Printer not found: %s", id), op, err)
		}
		return nil, errors.NewError("LOOKUP_FAILED", "Failed to retrieve printer", op, err)
	}

	return p, nil
}

// GetByName retrieves a printer by name
func (s *Service) GetByName(ctx context.Context, name string) (*printer.Printer, error) {
	const op = "PrinterService.GetByName"

	p, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewError("NOT_FOUND", fmt.Sprintf("Printer not found: %s", name), op, err)
		}
		return nil, errors.NewError("LOOKUP_FAILED", "Failed to retrieve printer", op, err)
	}

	return p, nil
}

// GetBySerial retrieves a printer by its device serial number
func (s *Service) GetBySerial(ctx context.Context, serial string) (*printer.Printer, error) {
	const op = "PrinterService.GetBySerial"

	p, err := s.repo.FindBySerial(ctx, serial)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewError("NOT_FOUND", fmt.Sprintf("Printer not found: %s", serial), op, err)
		}
		return nil, errors.NewError("LOOKUP_FAILED", "Failed to retrieve printer", op, err)
	}

	return p, nil
}

// List retrieves printers matching the filter
func (s *Service) List(ctx context.Context, filter printer.Filter) ([]*printer.Printer, error) {
	const op = "PrinterService.List"

	printers, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, errors.NewError("LIST_FAILED", "Failed to list printers", op, err)
	}

	return printers, nil
}
