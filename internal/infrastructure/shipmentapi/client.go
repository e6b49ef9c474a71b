// Package shipmentapi is the HTTP client for the shipment-record service.
package shipmentapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/cargo-tracking/internal/api/metrics"
	"github.com/99minutos/cargo-tracking/internal/core/domain"
)

const defaultTimeout = 5 * time.Second

// Client implements ports.ShipmentStateClient over the shipment REST API.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// shipmentResponse mirrors the JSON body of GET /shipments/{id}.
type shipmentResponse struct {
	ID             int64              `json:"id"`
	SenderUserID   string             `json:"senderUserId"`
	ReceiverUserID string             `json:"receiverUserId"`
	Destination    domain.Coordinates `json:"destination"`
	Status         string             `json:"status"`
}

type statusHistoryRequest struct {
	ShipmentID int64  `json:"shipmentId"`
	Status     string `json:"status"`
}

func (c *Client) Get(ctx context.Context, shipmentID int64) (*domain.ShipmentSnapshot, error) {
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/shipments/%d", shipmentID), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, domain.ErrShipmentNotFound
	default:
		return nil, c.unexpected("get shipment", resp)
	}

	var body shipmentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode shipment %d: %w: %w", shipmentID, domain.ErrDependencyUnavailable, err)
	}
	// An unknown status is the shipment service's fault, not the caller's.
	status, err := domain.ParseShipmentStatus(body.Status)
	if err != nil {
		metrics.DependencyErrorsTotal.WithLabelValues("shipment_api").Inc()
		return nil, fmt.Errorf("shipment %d: %w: unknown status %q", shipmentID, domain.ErrDependencyUnavailable, body.Status)
	}

	return &domain.ShipmentSnapshot{
		ID:             body.ID,
		SenderUserID:   body.SenderUserID,
		ReceiverUserID: body.ReceiverUserID,
		Receiver:       body.Destination,
		Status:         status,
	}, nil
}

// SetStatus updates the status and then records a status-history entry.
// Only the update decides the outcome. A rejected update, 400 included, is
// a dependency failure.
func (c *Client) SetStatus(ctx context.Context, shipmentID int64, status domain.ShipmentStatus) error {
	body, _ := json.Marshal(string(status))
	req, err := c.newRequest(ctx, http.MethodPut, fmt.Sprintf("/shipments/%d/status", shipmentID), body)
	if err != nil {
		return err
	}
	// The tracking pipeline publishes its own notification for this change.
	req.Header.Set(domain.StatusNotifiedHeader, "true")
	resp, err := c.send(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusOK:
	case http.StatusNotFound:
		return domain.ErrShipmentNotFound
	default:
		return c.unexpected("set status", resp)
	}

	if err := c.addHistory(ctx, shipmentID, status); err != nil {
		c.log.Warn().Err(err).
			Int64("shipment_id", shipmentID).
			Str("status", string(status)).
			Msg("status history write failed")
	}
	return nil
}

func (c *Client) addHistory(ctx context.Context, shipmentID int64, status domain.ShipmentStatus) error {
	body, _ := json.Marshal(statusHistoryRequest{ShipmentID: shipmentID, Status: string(status)})
	resp, err := c.do(ctx, http.MethodPost, "/shipments/status-history", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return c.unexpected("add status history", resp)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	return c.send(req)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) send(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.DependencyErrorsTotal.WithLabelValues("shipment_api").Inc()
		return nil, fmt.Errorf("%s %s: %w: %w", req.Method, req.URL.Path, domain.ErrDependencyUnavailable, err)
	}
	return resp, nil
}

func (c *Client) unexpected(op string, resp *http.Response) error {
	metrics.DependencyErrorsTotal.WithLabelValues("shipment_api").Inc()
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("%s: %w: status %d: %s", op, domain.ErrDependencyUnavailable, resp.StatusCode, bytes.TrimSpace(snippet))
}
