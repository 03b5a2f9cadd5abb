package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/printwatch/printwatch/api/types/v1alpha1"
)

const printersPath = "/api/v1alpha1/printers"

// RegisterPrinter registers a new printer with the server
func (c *Client) RegisterPrinter(ctx context.Context, req *v1alpha1.PrinterRegistrationRequest) (*v1alpha1.Printer, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, printersPath, nil, req)
	if err != nil {
		return nil, fmt.Errorf("error registering printer: %w", err)
	}

	var printer v1alpha1.Printer
	if err := decodeResponse(resp, &printer); err != nil {
		return nil, err
	}
	return &printer, nil
}

// GetPrinter fetches a printer by ID or name
func (c *Client) GetPrinter(ctx context.Context, nameOrID string) (*v1alpha1.Printer, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, printersPath+"/"+url.PathEscape(nameOrID), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("error getting printer: %w", err)
	}

	var printer v1alpha1.Printer
	if err := decodeResponse(resp, &printer); err != nil {
		return nil, err
	}
	return &printer, nil
}

// ListPrinters lists printers matching the filter
func (c *Client) ListPrinters(ctx context.Context, filter v1alpha1.PrinterFilter) ([]v1alpha1.Printer, error) {
	query := url.Values{}
	if filter.Model != "" {
		query.Set("model", filter.Model)
	}
	for _, state := range filter.States {
		query.Add("state", string(state))
	}

	resp, err := c.doRequest(ctx, http.MethodGet, printersPath, query, nil)
	if err != nil {
		return nil, fmt.Errorf("error listing printers: %w", err)
	}

	var list v1alpha1.PrinterList
	if err := decodeResponse(resp, &list); err != nil {
		return nil, err
	}
	return list.Items, nil
}

// UpdatePrinter updates a printer's endpoint or properties
func (c *Client) UpdatePrinter(ctx context.Context, id string, req *v1alpha1.PrinterUpdateRequest) (*v1alpha1.Printer, error) {
	resp, err := c.doRequest(ctx, http.MethodPut, printersPath+"/"+url.PathEscape(id), nil, req)
	if err != nil {
		return nil, fmt.Errorf("error updating printer: %w", err)
	}

	var printer v1alpha1.Printer
	if err := decodeResponse(resp, &printer); err != nil {
		return nil, err
	}
	return &printer, nil
}

// DeletePrinter removes a printer from the system
func (c *Client) DeletePrinter(ctx context.Context, id string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, printersPath+"/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return fmt.Errorf("error deleting printer: %w", err)
	}
	return decodeResponse(resp, nil)
}

// ConnectPrinter establishes the device link for a printer
func (c *Client) ConnectPrinter(ctx context.Context, id string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, printersPath+"/"+url.PathEscape(id)+"/connect", nil, nil)
	if err != nil {
		return fmt.Errorf("error connecting printer: %w", err)
	}
	return decodeResponse(resp, nil)
}

// DisconnectPrinter tears down the device link for a printer
func (c *Client) DisconnectPrinter(ctx context.Context, id string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, printersPath+"/"+url.PathEscape(id)+"/disconnect", nil, nil)
	if err != nil {
		return fmt.Errorf("error disconnecting printer: %w", err)
	}
	return decodeResponse(resp, nil)
}

// DisablePrinter takes a printer out of service
func (c *Client) DisablePrinter(ctx context.Context, id string) error {
	resp, err := c.doRequest(ctx, http.MethodPut, printersPath+"/"+url.PathEscape(id)+"/disable", nil, nil)
	if err != nil {
		return fmt.Errorf("error disabling printer: %w", err)
	}
	return decodeResponse(resp, nil)
}

// GetStatus fetches the live status of one printer
func (c *Client) GetStatus(ctx context.Context, id string) (*v1alpha1.PrinterStatusResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, printersPath+"/"+url.PathEscape(id)+"/status", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("error getting printer status: %w", err)
	}

	var status v1alpha1.PrinterStatusResponse
	if err := decodeResponse(resp, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ListStatus fetches the live status of every registered printer
func (c *Client) ListStatus(ctx context.Context) ([]v1alpha1.PrinterStatusResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, printersPath+"/status", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("error listing printer status: %w", err)
	}

	var statuses []v1alpha1.PrinterStatusResponse
	if err := decodeResponse(resp, &statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}

// GetHMS fetches the active HMS errors for a printer
func (c *Client) GetHMS(ctx context.Context, id string) ([]v1alpha1.HMSError, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, printersPath+"/"+url.PathEscape(id)+"/hms", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("error getting HMS errors: %w", err)
	}

	var errors []v1alpha1.HMSError
	if err := decodeResponse(resp, &errors); err != nil {
		return nil, err
	}
	return errors, nil
}

// EventOptions filters event listings
type EventOptions struct {
	// Types restricts results to the given event types
	Types []string
	// Since restricts results to events at or after this time
	Since time.Time
	// Limit caps the number of returned events
	Limit int
}

func (o EventOptions) query() url.Values {
	query := url.Values{}
	for _, t := range o.Types {
		query.Add("type", t)
	}
	if !o.Since.IsZero() {
		query.Set("since", o.Since.Format(time.RFC3339))
	}
	if o.Limit > 0 {
		query.Set("limit", strconv.Itoa(o.Limit))
	}
	return query
}

// ListEvents fetches job events across all printers
func (c *Client) ListEvents(ctx context.Context, opts EventOptions) ([]v1alpha1.JobEvent, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, printersPath+"/events", opts.query(), nil)
	if err != nil {
		return nil, fmt.Errorf("error listing events: %w", err)
	}

	var list v1alpha1.JobEventList
	if err := decodeResponse(resp, &list); err != nil {
		return nil, err
	}
	return list.Items, nil
}

// ListPrinterEvents fetches job events for one printer
func (c *Client) ListPrinterEvents(ctx context.Context, id string, opts EventOptions) ([]v1alpha1.JobEvent, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, printersPath+"/"+url.PathEscape(id)+"/events", opts.query(), nil)
	if err != nil {
		return nil, fmt.Errorf("error listing printer events: %w", err)
	}

	var list v1alpha1.JobEventList
	if err := decodeResponse(resp, &list); err != nil {
		return nil, err
	}
	return list.Items, nil
}

// GetMetrics fetches aggregated job metrics for one printer
func (c *Client) GetMetrics(ctx context.Context, id string) (*v1alpha1.PrinterMetrics, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, printersPath+"/"+url.PathEscape(id)+"/metrics", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("error getting printer metrics: %w", err)
	}

	var metrics v1alpha1.PrinterMetrics
	if err := decodeResponse(resp, &metrics); err != nil {
		return nil, err
	}
	return &metrics, nil
}
