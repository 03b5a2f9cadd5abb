package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/printwatch/printwatch/internal/pwatchd/errors"
	"github.com/printwatch/printwatch/internal/pwatchd/printer"
)

// MarkOnline transitions a printer to the online state
func (s *Service) MarkOnline(ctx context.Context, id uuid.UUID) (*printer.Printer, error) {
	const op = "PrinterService.MarkOnline"

	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := p.MarkOnline(); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, p); err != nil {
		return nil, errors.NewError("SAVE_FAILED", "Failed to save printer", op, err)
	}

	s.publish(ctx, printer.Event{
		Type:      printer.EventOnline,
		PrinterID: p.ID,
		Timestamp: time.Now(),
		Data:      map[string]string{"serial": p.Endpoint.SerialNumber},
	})

	return p, nil
}

// MarkOffline transitions a printer to the offline state
func (s *Service) MarkOffline(ctx context.Context, id uuid.UUID) error {
	const op = "PrinterService.MarkOffline"

	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	p.MarkOffline()

	if err := s.repo.Save(ctx, p); err != nil {
		return errors.NewError("SAVE_FAILED", "Failed to save printer", op, err)
	}

	s.publish(ctx, printer.Event{
		Type:      printer.EventOffline,
		PrinterID: p.ID,
		Timestamp: time.Now(),
		Data:      map[string]string{"serial": p.Endpoint.SerialNumber},
	})

	return nil
}

// Disable transitions a printer to the disabled state
func (s *Service) Disable(ctx context.Context, id uuid.UUID) error {
	const op = "PrinterService.Disable"

	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	p.Disable()

	if err := s.repo.Save(ctx, p); err != nil {
		return errors.NewError("SAVE_FAILED", "Failed to save printer", op, err)
	}

	s.publish(ctx, printer.Event{
		Type:      printer.EventDisabled,
		PrinterID: p.ID,
		Timestamp: time.Now(),
	})

	return nil
}

// UpdateEndpoint replaces a printer's LAN coordinates
func (s *Service) UpdateEndpoint(ctx context.Context, id uuid.UUID, endpoint printer.Endpoint) (*printer.Printer, error) {
	const op = "PrinterService.UpdateEndpoint"

	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// Serial numbers are immutable device identity
	if endpoint.SerialNumber != p.Endpoint.SerialNumber {
		return nil, errors.NewError("INVALID_INPUT",
			fmt.Sprintf("serial number cannot change (have %s)", p.Endpoint.SerialNumber),
			op, errors.ErrInvalidInput)
	}

	if err := p.UpdateEndpoint(endpoint); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, p); err != nil {
		return nil, errors.NewError("SAVE_FAILED", "Failed to save printer", op, err)
	}

	s.publish(ctx, printer.Event{
		Type:      printer.EventEndpointChanged,
		PrinterID: p.ID,
		Timestamp: time.Now(),
		Data:      map[string]string{"ipAddress": endpoint.IPAddress},
	})

	return p, nil
}

// UpdateLastSeen updates the printer's last seen timestamp
func (s *Service) UpdateLastSeen(ctx context.Context, id uuid.UUID) error {
	const op = "PrinterService.UpdateLastSeen"

	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	p.UpdateLastSeen()

	if err := s.repo.Save(ctx, p); err != nil {
		return errors.NewError("SAVE_FAILED", "Failed to save printer", op, err)
	}

	return nil
}

// SetProperty sets a printer property
func (s *Service) SetProperty(ctx context.Context, id uuid.UUID, key, value string) error {
	const op = "PrinterService.SetProperty"

	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	p.SetProperty(key, value)

	if err := s.repo.Save(ctx, p); err != nil {
		return errors.NewError("SAVE_FAILED", "Failed to save printer", op, err)
	}

	return nil
}
