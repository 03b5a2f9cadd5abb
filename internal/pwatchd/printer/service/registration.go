package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/printwatch/printwatch/internal/pwatchd/errors"
	"github.com/printwatch/printwatch/internal/pwatchd/printer"
)

// Register creates a new printer with the given name, endpoint and model
func (s *Service) Register(ctx context.Context, name string, endpoint printer.Endpoint, model string) (*printer.Printer, error) {
	const op = "PrinterService.Register"

	// Serial numbers are the device identity; refuse duplicates early
	existing, err := s.repo.FindBySerial(ctx, endpoint.SerialNumber)
	if err != nil && !errors.IsNotFound(err) {
		return nil, errors.NewError("REGISTRATION_FAILED", "Failed to check existing printer", op, err)
	}
	if existing != nil {
		return nil, errors.NewError("PRINTER_EXISTS",
			fmt.Sprintf("Printer already exists with serial: %s", endpoint.SerialNumber),
			op, errors.ErrConflict)
	}

	// Create new printer through domain model
	p, err := printer.New(name, endpoint, model)
	if err != nil {
		// Domain model errors are already properly typed
		return nil, err
	}

	if err := s.repo.Save(ctx, p); err != nil {
		return nil, errors.NewError("SAVE_FAILED", "Failed to save printer", op, err)
	}

	s.publish(ctx, printer.Event{
		Type:      printer.EventRegistered,
		PrinterID: p.ID,
		Timestamp: time.Now(),
		Data: map[string]string{
			"name":    p.Name,
			"serial":  p.Endpoint.SerialNumber,
			"model":   p.Model,
			"state":   string(p.State),
			"version": fmt.Sprint(p.Version),
		},
	})

	return p, nil
}

// Delete removes a printer
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "PrinterService.Delete"

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.IsNotFound(err) {
			return errors.NewError("NOT_FOUND", fmt.Sprintf("Printer not found: %s", id), op, err)
		}
		return errors.NewError("DELETE_FAILED", "Failed to delete printer", op, err)
	}

	s.publish(ctx, printer.Event{
		Type:      printer.EventDeleted,
		PrinterID: id,
		Timestamp: time.Now(),
	})

	return nil
}

// publish sends an event without failing the calling operation
func (s *Service) publish(ctx context.Context, event printer.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish printer event",
			"error", err,
			"type", event.Type,
			"printerID", event.PrinterID,
		)
	}
}
