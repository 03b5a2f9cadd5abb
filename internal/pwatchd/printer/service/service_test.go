package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/printwatch/printwatch/internal/pwatchd/errors"
	"github.com/printwatch/printwatch/internal/pwatchd/printer"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Save(ctx context.Context, p *printer.Printer) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockRepository) FindByID(ctx context.Context, id uuid.UUID) (*printer.Printer, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*printer.Printer), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) FindBySerial(ctx context.Context, serial string) (*printer.Printer, error) {
	args := m.Called(ctx, serial)
	if p := args.Get(0); p != nil {
		return p.(*printer.Printer), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) FindByName(ctx context.Context, name string) (*printer.Printer, error) {
	args := m.Called(ctx, name)
	if p := args.Get(0); p != nil {
		return p.(*printer.Printer), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) List(ctx context.Context, filter printer.Filter) ([]*printer.Printer, error) {
	args := m.Called(ctx, filter)
	if printers := args.Get(0); printers != nil {
		return printers.([]*printer.Printer), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event printer.Event) error {
	return m.Called(ctx, event).Error(0)
}

func testEndpoint() printer.Endpoint {
	return printer.Endpoint{
		IPAddress:    "192.168.1.50",
		AccessCode:   "12345678",
		SerialNumber: "01S00C123400001",
	}
}

func newTestService(repo *mockRepository, pub *mockPublisher) *Service {
	return New(repo, pub, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRegister(t *testing.T) {
	repo := &mockRepository{}
	pub := &mockPublisher{}
	svc := newTestService(repo, pub)

	repo.On("FindBySerial", mock.Anything, "01S00C123400001").
		Return(nil, errors.NewError("NOT_FOUND", "not found", "op", errors.ErrNotFound))
	repo.On("Save", mock.Anything, mock.AnythingOfType("*printer.Printer")).Return(nil)
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(e printer.Event) bool {
		return e.Type == printer.EventRegistered
	})).Return(nil)

	p, err := svc.Register(context.Background(), "workshop-x1", testEndpoint(), "X1 Carbon")
	require.NoError(t, err)
	assert.Equal(t, "workshop-x1", p.Name)
	assert.Equal(t, printer.StateUnregistered, p.State)
	assert.Equal(t, 1, p.Version)

	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestRegisterDuplicateSerial(t *testing.T) {
	repo := &mockRepository{}
	pub := &mockPublisher{}
	svc := newTestService(repo, pub)

	existing, err := printer.New("other", testEndpoint(), "X1 Carbon")
	require.NoError(t, err)
	repo.On("FindBySerial", mock.Anything, "01S00C123400001").Return(existing, nil)

	_, err = svc.Register(context.Background(), "workshop-x1", testEndpoint(), "X1 Carbon")
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRegisterInvalidEndpoint(t *testing.T) {
	repo := &mockRepository{}
	pub := &mockPublisher{}
	svc := newTestService(repo, pub)

	repo.On("FindBySerial", mock.Anything, mock.Anything).
		Return(nil, errors.NewError("NOT_FOUND", "not found", "op", errors.ErrNotFound))

	endpoint := testEndpoint()
	endpoint.IPAddress = "not-an-ip"

	_, err := svc.Register(context.Background(), "workshop-x1", endpoint, "X1 Carbon")
	require.Error(t, err)

	var invalidEndpoint printer.ErrInvalidEndpoint
	assert.ErrorAs(t, err, &invalidEndpoint)
}

func TestRegisterPublishFailureDoesNotFail(t *testing.T) {
	repo := &mockRepository{}
	pub := &mockPublisher{}
	svc := newTestService(repo, pub)

	repo.On("FindBySerial", mock.Anything, mock.Anything).
		Return(nil, errors.NewError("NOT_FOUND", "not found", "op", errors.ErrNotFound))
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)
	pub.On("Publish", mock.Anything, mock.Anything).Return(assert.AnError)

	_, err := svc.Register(context.Background(), "workshop-x1", testEndpoint(), "X1 Carbon")
	assert.NoError(t, err)
}

func TestMarkOnline(t *testing.T) {
	repo := &mockRepository{}
	pub := &mockPublisher{}
	svc := newTestService(repo, pub)

	p, err := printer.New("workshop-x1", testEndpoint(), "X1 Carbon")
	require.NoError(t, err)

	repo.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	repo.On("Save", mock.Anything, p).Return(nil)
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(e printer.Event) bool {
		return e.Type == printer.EventOnline && e.PrinterID == p.ID
	})).Return(nil)

	updated, err := svc.MarkOnline(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, printer.StateOnline, updated.State)
	assert.Equal(t, 2, updated.Version)
}

func TestMarkOnlineDisabledPrinter(t *testing.T) {
	repo := &mockRepository{}
	pub := &mockPublisher{}
	svc := newTestService(repo, pub)

	p, err := printer.New("workshop-x1", testEndpoint(), "X1 Carbon")
	require.NoError(t, err)
	p.Disable()

	repo.On("FindByID", mock.Anything, p.ID).Return(p, nil)

	_, err = svc.MarkOnline(context.Background(), p.ID)
	require.Error(t, err)

	var invalidState printer.ErrInvalidState
	assert.ErrorAs(t, err, &invalidState)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestUpdateEndpointRejectsSerialChange(t *testing.T) {
	repo := &mockRepository{}
	pub := &mockPublisher{}
	svc := newTestService(repo, pub)

	p, err := printer.New("workshop-x1", testEndpoint(), "X1 Carbon")
	require.NoError(t, err)

	repo.On("FindByID", mock.Anything, p.ID).Return(p, nil)

	endpoint := testEndpoint()
	endpoint.SerialNumber = "DIFFERENT"

	_, err = svc.UpdateEndpoint(context.Background(), p.ID, endpoint)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestUpdateEndpoint(t *testing.T) {
	repo := &mockRepository{}
	pub := &mockPublisher{}
	svc := newTestService(repo, pub)

	p, err := printer.New("workshop-x1", testEndpoint(), "X1 Carbon")
	require.NoError(t, err)

	repo.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	repo.On("Save", mock.Anything, p).Return(nil)
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(e printer.Event) bool {
		return e.Type == printer.EventEndpointChanged
	})).Return(nil)

	endpoint := testEndpoint()
	endpoint.IPAddress = "192.168.1.99"

	updated, err := svc.UpdateEndpoint(context.Background(), p.ID, endpoint)
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.99", updated.Endpoint.IPAddress)
}

func TestGetNotFound(t *testing.T) {
	repo := &mockRepository{}
	pub := &mockPublisher{}
	svc := newTestService(repo, pub)
	id := uuid.New()

	repo.On("FindByID", mock.Anything, id).
		Return(nil, errors.NewError("NOT_FOUND", "not found", "op", errors.ErrNotFound))

	_, err := svc.Get(context.Background(), id)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestDelete(t *testing.T) {
	repo := &mockRepository{}
	pub := &mockPublisher{}
	svc := newTestService(repo, pub)
	id := uuid.New()

	repo.On("Delete", mock.Anything, id).Return(nil)
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(e printer.Event) bool {
		return e.Type == printer.EventDeleted && e.PrinterID == id
	})).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), id))
	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}
