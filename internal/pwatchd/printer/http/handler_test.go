package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/printwatch/printwatch/api/types/v1alpha1"
	"github.com/printwatch/printwatch/internal/pwatchd/bambu"
	"github.com/printwatch/printwatch/internal/pwatchd/config"
	"github.com/printwatch/printwatch/internal/pwatchd/errors"
	"github.com/printwatch/printwatch/internal/pwatchd/hms"
	"github.com/printwatch/printwatch/internal/pwatchd/printer"
	"github.com/printwatch/printwatch/internal/pwatchd/ratelimit"
	"github.com/printwatch/printwatch/internal/pwatchd/status"
	"github.com/printwatch/printwatch/internal/pwatchd/telemetry"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Register(ctx context.Context, name string, endpoint printer.Endpoint, model string) (*printer.Printer, error) {
	args := m.Called(ctx, name, endpoint, model)
	if p := args.Get(0); p != nil {
		return p.(*printer.Printer), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockService) Get(ctx context.Context, id uuid.UUID) (*printer.Printer, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*printer.Printer), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockService) GetByName(ctx context.Context, name string) (*printer.Printer, error) {
	args := m.Called(ctx, name)
	if p := args.Get(0); p != nil {
		return p.(*printer.Printer), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockService) GetBySerial(ctx context.Context, serial string) (*printer.Printer, error) {
	args := m.Called(ctx, serial)
	if p := args.Get(0); p != nil {
		return p.(*printer.Printer), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockService) List(ctx context.Context, filter printer.Filter) ([]*printer.Printer, error) {
	args := m.Called(ctx, filter)
	if printers := args.Get(0); printers != nil {
		return printers.([]*printer.Printer), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockService) UpdateEndpoint(ctx context.Context, id uuid.UUID, endpoint printer.Endpoint) (*printer.Printer, error) {
	args := m.Called(ctx, id, endpoint)
	if p := args.Get(0); p != nil {
		return p.(*printer.Printer), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockService) MarkOnline(ctx context.Context, id uuid.UUID) (*printer.Printer, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*printer.Printer), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockService) MarkOffline(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockService) Disable(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockService) UpdateLastSeen(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockService) SetProperty(ctx context.Context, id uuid.UUID, key, value string) error {
	return m.Called(ctx, id, key, value).Error(0)
}

func (m *mockService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockTelemetry struct {
	mock.Mock
}

func (m *mockTelemetry) RecordJobStarted(ctx context.Context, printerID uuid.UUID, jobName string) {
	m.Called(ctx, printerID, jobName)
}

func (m *mockTelemetry) RecordJobFinished(ctx context.Context, printerID uuid.UUID, jobName string, failed bool) {
	m.Called(ctx, printerID, jobName, failed)
}

func (m *mockTelemetry) RecordHMS(ctx context.Context, printerID uuid.UUID, deviceModel string, errs []hms.Error) {
	m.Called(ctx, printerID, deviceModel, errs)
}

func (m *mockTelemetry) Events(ctx context.Context, filter telemetry.Filter) ([]telemetry.Event, error) {
	args := m.Called(ctx, filter)
	if events := args.Get(0); events != nil {
		return events.([]telemetry.Event), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTelemetry) PrinterMetrics(ctx context.Context, printerID uuid.UUID) (*telemetry.Metrics, error) {
	args := m.Called(ctx, printerID)
	if metrics := args.Get(0); metrics != nil {
		return metrics.(*telemetry.Metrics), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTelemetry) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	args := m.Called(ctx, retention)
	return args.Get(0).(int64), args.Error(1)
}

// stubRateLimit allows everything; the middleware behavior is covered
// by the ratelimit package tests
type stubRateLimit struct{}

func (stubRateLimit) Allow(context.Context, ratelimit.LimitKey) error { return nil }
func (stubRateLimit) Status(context.Context, ratelimit.LimitKey) (*ratelimit.LimitStatus, error) {
	return &ratelimit.LimitStatus{}, nil
}
func (stubRateLimit) GetLimit(string) ratelimit.Limit                 { return ratelimit.Limit{} }
func (stubRateLimit) Reset(context.Context, ratelimit.LimitKey) error { return nil }
func (stubRateLimit) RegisterConfiguredLimits(config.RateLimitConfig) {}

type env struct {
	handler   *Handler
	service   *mockService
	telemetry *mockTelemetry
	status    *status.Store
	router    http.Handler
}

func newEnv(t *testing.T) *env {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := &mockService{}
	telemetrySvc := &mockTelemetry{}
	store := status.NewStore()
	links := bambu.NewManager(service, store, telemetrySvc, bambu.LinkOptions{}, logger)

	handler := NewHandler(service, telemetrySvc, store, links, stubRateLimit{}, logger)
	return &env{
		handler:   handler,
		service:   service,
		telemetry: telemetrySvc,
		status:    store,
		router:    handler.Router(),
	}
}

func testPrinter(t *testing.T) *printer.Printer {
	t.Helper()
	p, err := printer.New("workshop-x1", printer.Endpoint{
		IPAddress:    "192.168.1.50",
		AccessCode:   "12345678",
		SerialNumber: "01S00C123400001",
	}, "X1 Carbon")
	require.NoError(t, err)
	return p
}

func TestRegisterPrinter(t *testing.T) {
	e := newEnv(t)
	p := testPrinter(t)

	e.service.On("Register", mock.Anything, "workshop-x1", p.Endpoint, "X1 Carbon").Return(p, nil)

	body, err := json.Marshal(v1alpha1.PrinterRegistrationRequest{
		Name: "workshop-x1",
		Endpoint: v1alpha1.PrinterEndpoint{
			IPAddress:    "192.168.1.50",
			AccessCode:   "12345678",
			SerialNumber: "01S00C123400001",
		},
		Model: "X1 Carbon",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1alpha1/printers/", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp v1alpha1.Printer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "workshop-x1", resp.Name)
	assert.Equal(t, "Printer", resp.Kind)
	// The access code must never appear on the wire
	assert.Empty(t, resp.Spec.Endpoint.AccessCode)
}

func TestRegisterPrinterInvalidBody(t *testing.T) {
	e := newEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1alpha1/printers/", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterPrinterConflict(t *testing.T) {
	e := newEnv(t)

	e.service.On("Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.NewError("PRINTER_EXISTS", "Printer already exists", "PrinterService.Register", errors.ErrConflict))

	body := `{"name":"dup","endpoint":{"ipAddress":"192.168.1.50","accessCode":"x","serialNumber":"s"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1alpha1/printers/", bytes.NewReader([]byte(body)))
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetPrinterByID(t *testing.T) {
	e := newEnv(t)
	p := testPrinter(t)

	e.service.On("Get", mock.Anything, p.ID).Return(p, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1alpha1/printers/"+p.ID.String(), nil)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp v1alpha1.Printer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, p.ID, resp.ID)
}

func TestGetPrinterByNameFallback(t *testing.T) {
	e := newEnv(t)
	p := testPrinter(t)

	e.service.On("GetByName", mock.Anything, "workshop-x1").Return(p, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1alpha1/printers/workshop-x1", nil)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetPrinterNotFound(t *testing.T) {
	e := newEnv(t)
	id := uuid.New()

	e.service.On("Get", mock.Anything, id).
		Return(nil, errors.NewError("NOT_FOUND", "Printer not found", "PrinterService.Get", errors.ErrNotFound))

	req := httptest.NewRequest(http.MethodGet, "/api/v1alpha1/printers/"+id.String(), nil)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListPrintersWithFilter(t *testing.T) {
	e := newEnv(t)
	p := testPrinter(t)

	e.service.On("List", mock.Anything, printer.Filter{
		Model:  "X1 Carbon",
		States: []printer.State{printer.StateOnline},
	}).Return([]*printer.Printer{p}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1alpha1/printers/?model=X1+Carbon&state=ONLINE", nil)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp v1alpha1.PrinterList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "PrinterList", resp.Kind)
}

func TestGetStatusIncludesTelemetry(t *testing.T) {
	e := newEnv(t)
	p := testPrinter(t)

	e.service.On("Get", mock.Anything, p.ID).Return(p, nil)
	e.status.Set(p.ID, v1alpha1.TelemetrySnapshot{
		Connected:  true,
		GcodeState: "RUNNING",
		Progress:   75,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1alpha1/printers/"+p.ID.String()+"/status", nil)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp v1alpha1.PrinterStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Telemetry)
	assert.True(t, resp.Telemetry.Connected)
	assert.Equal(t, 75.0, resp.Telemetry.Progress)
	assert.True(t, resp.Healthy)
}

func TestGetStatusUnhealthyWithBlockingHMS(t *testing.T) {
	e := newEnv(t)
	p := testPrinter(t)

	e.service.On("Get", mock.Anything, p.ID).Return(p, nil)
	e.status.Set(p.ID, v1alpha1.TelemetrySnapshot{
		Connected: true,
		HMSErrors: []v1alpha1.HMSError{
			{Code: "0300_0100_0001_0001", Severity: 1, SeverityLabel: "Fatal"},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1alpha1/printers/"+p.ID.String()+"/status", nil)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp v1alpha1.PrinterStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Healthy)
}

func TestGetStatusWithoutTelemetry(t *testing.T) {
	e := newEnv(t)
	p := testPrinter(t)

	e.service.On("Get", mock.Anything, p.ID).Return(p, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1alpha1/printers/"+p.ID.String()+"/status", nil)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp v1alpha1.PrinterStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.Telemetry)
}

func TestGetHMSReturnsDecoratedErrors(t *testing.T) {
	e := newEnv(t)
	p := testPrinter(t)

	e.service.On("Get", mock.Anything, p.ID).Return(p, nil)

	active := hms.FromReport([]hms.ReportEntry{{Attr: 0x0300_0100, Code: 0x0001_0001}})
	e.status.Set(p.ID, v1alpha1.TelemetrySnapshot{
		Connected: true,
		HMSErrors: hms.ToAPI(active, p.Model),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1alpha1/printers/"+p.ID.String()+"/hms", nil)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []v1alpha1.HMSError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "0300_0100_0001_0001", resp[0].Code)
	assert.Equal(t, "Fatal", resp[0].SeverityLabel)
	assert.Contains(t, resp[0].WikiURL, "/x1/")
}

func TestGetHMSEmptyWhenNoErrors(t *testing.T) {
	e := newEnv(t)
	p := testPrinter(t)

	e.service.On("Get", mock.Anything, p.ID).Return(p, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1alpha1/printers/"+p.ID.String()+"/hms", nil)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestListPrinterEvents(t *testing.T) {
	e := newEnv(t)
	id := uuid.New()

	e.telemetry.On("Events", mock.Anything, mock.MatchedBy(func(f telemetry.Filter) bool {
		return f.PrinterID != nil && *f.PrinterID == id && f.Limit == 10
	})).Return([]telemetry.Event{
		{ID: uuid.New(), PrinterID: id, Type: telemetry.EventJobStarted, JobName: "benchy"},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1alpha1/printers/"+id.String()+"/events?limit=10", nil)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp v1alpha1.JobEventList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, v1alpha1.JobEventStarted, resp.Items[0].Type)
}

func TestGetPrinterMetrics(t *testing.T) {
	e := newEnv(t)
	id := uuid.New()

	e.telemetry.On("PrinterMetrics", mock.Anything, id).Return(&telemetry.Metrics{
		PrinterID:   id,
		JobsStarted: 3,
		JobsFailed:  1,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1alpha1/printers/"+id.String()+"/metrics", nil)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp v1alpha1.PrinterMetrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(3), resp.JobsStarted)
	assert.Equal(t, int64(1), resp.JobsFailed)
}

func TestDeletePrinter(t *testing.T) {
	e := newEnv(t)
	id := uuid.New()

	e.service.On("Delete", mock.Anything, id).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1alpha1/printers/"+id.String(), nil)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	e.service.AssertExpectations(t)
}

func TestInvalidPrinterID(t *testing.T) {
	e := newEnv(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1alpha1/printers/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	e := newEnv(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		e.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String(), path)
	}
}

func TestRequestIDHeader(t *testing.T) {
	e := newEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
