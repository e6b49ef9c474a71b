package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/cargo-tracking/internal/core/domain"
	"github.com/99minutos/cargo-tracking/internal/core/ports"
)

type stubShipmentService struct {
	createFn       func(ctx context.Context, in ports.CreateShipmentInput) (*domain.Shipment, error)
	getFn          func(ctx context.Context, id int64) (*domain.Shipment, error)
	updateStatusFn func(ctx context.Context, id int64, status string, notify bool) error
	addHistoryFn   func(ctx context.Context, id int64, status string) error
	historyFn      func(ctx context.Context, id int64) ([]domain.StatusHistoryEntry, error)
	recordFn       func(ctx context.Context, id int64, at domain.Coordinates) (domain.Evaluation, error)
	isDeliveredFn  func(ctx context.Context, id int64) (bool, error)
}

func (s *stubShipmentService) CreateShipment(ctx context.Context, in ports.CreateShipmentInput) (*domain.Shipment, error) {
	return s.createFn(ctx, in)
}

func (s *stubShipmentService) GetShipment(ctx context.Context, id int64) (*domain.Shipment, error) {
	return s.getFn(ctx, id)
}

func (s *stubShipmentService) UpdateStatus(ctx context.Context, id int64, status string, notify bool) error {
	return s.updateStatusFn(ctx, id, status, notify)
}

func (s *stubShipmentService) AddStatusHistory(ctx context.Context, id int64, status string) error {
	return s.addHistoryFn(ctx, id, status)
}

func (s *stubShipmentService) StatusHistory(ctx context.Context, id int64) ([]domain.StatusHistoryEntry, error) {
	return s.historyFn(ctx, id)
}

func (s *stubShipmentService) RecordLocation(ctx context.Context, id int64, at domain.Coordinates) (domain.Evaluation, error) {
	return s.recordFn(ctx, id, at)
}

func (s *stubShipmentService) IsDelivered(ctx context.Context, id int64) (bool, error) {
	return s.isDeliveredFn(ctx, id)
}

func withID(c echo.Context, id string) echo.Context {
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c
}

func TestShipmentHandler_Create(t *testing.T) {
	e := newTestEcho()
	h := NewShipmentHandler(&stubShipmentService{
		createFn: func(_ context.Context, in ports.CreateShipmentInput) (*domain.Shipment, error) {
			if in.ReceiverUserID != "r-1" || in.Destination.Latitude != 41.0082 {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.Shipment{
				ID:             12345,
				SenderUserID:   in.SenderUserID,
				ReceiverUserID: in.ReceiverUserID,
				Origin:         in.Origin,
				Destination:    in.Destination,
				Status:         domain.StatusCreated,
			}, nil
		},
	})

	c, rec := postJSON(e, "/shipments", `{"senderUserId":"s-1","receiverUserId":"r-1",`+
		`"origin":{"latitude":40.0,"longitude":29.0},"destination":{"latitude":41.0082,"longitude":28.9784}}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/shipments/12345" {
		t.Errorf("Location = %q", loc)
	}

	var resp shipmentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.ID != 12345 || resp.Status != "Created" || resp.Destination.Longitude != 28.9784 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestShipmentHandler_Create_MissingDestination(t *testing.T) {
	e := newTestEcho()
	h := NewShipmentHandler(&stubShipmentService{})

	c, _ := postJSON(e, "/shipments", `{"senderUserId":"s-1","receiverUserId":"r-1","origin":{"latitude":40,"longitude":29}}`)
	expectHTTPCode(t, h.Create(c), http.StatusBadRequest)
}

func TestShipmentHandler_UpdateStatus_BareString(t *testing.T) {
	e := newTestEcho()
	var (
		got      string
		notified bool
	)
	h := NewShipmentHandler(&stubShipmentService{
		updateStatusFn: func(_ context.Context, id int64, status string, notify bool) error {
			got, notified = status, notify
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodPut, "/shipments/1/status", strings.NewReader(`"Delivered"`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := withID(e.NewContext(req, rec), "1")

	if err := h.UpdateStatus(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got != "Delivered" {
		t.Errorf("status = %q", got)
	}
	if !notified {
		t.Error("expected a direct status change to notify the receiver")
	}
}

func TestShipmentHandler_UpdateStatus_AlreadyNotified(t *testing.T) {
	e := newTestEcho()
	notified := true
	h := NewShipmentHandler(&stubShipmentService{
		updateStatusFn: func(_ context.Context, _ int64, _ string, notify bool) error {
			notified = notify
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodPut, "/shipments/1/status", strings.NewReader(`"Delivered"`))
	req.Header.Set(domain.StatusNotifiedHeader, "true")
	c := withID(e.NewContext(req, httptest.NewRecorder()), "1")

	if err := h.UpdateStatus(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if notified {
		t.Error("expected no second notification when the caller already sent one")
	}
}

func TestShipmentHandler_UpdateStatus_Errors(t *testing.T) {
	e := newTestEcho()
	h := NewShipmentHandler(&stubShipmentService{
		updateStatusFn: func(_ context.Context, id int64, status string, _ bool) error {
			if id == 404 {
				return domain.ErrShipmentNotFound
			}
			_, err := domain.ParseShipmentStatus(status)
			return err
		},
	})

	req := httptest.NewRequest(http.MethodPut, "/shipments/1/status", strings.NewReader(`{"status":"Delivered"}`))
	c := withID(e.NewContext(req, httptest.NewRecorder()), "1")
	expectHTTPCode(t, h.UpdateStatus(c), http.StatusBadRequest)

	req = httptest.NewRequest(http.MethodPut, "/shipments/1/status", strings.NewReader(`"Lost"`))
	c = withID(e.NewContext(req, httptest.NewRecorder()), "1")
	if err := h.UpdateStatus(c); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}

	req = httptest.NewRequest(http.MethodPut, "/shipments/404/status", strings.NewReader(`"Delivered"`))
	c = withID(e.NewContext(req, httptest.NewRecorder()), "404")
	if err := h.UpdateStatus(c); !errors.Is(err, domain.ErrShipmentNotFound) {
		t.Fatalf("expected ErrShipmentNotFound, got %v", err)
	}
}

func TestShipmentHandler_AddStatusHistory_Validates(t *testing.T) {
	e := newTestEcho()
	called := false
	h := NewShipmentHandler(&stubShipmentService{
		addHistoryFn: func(context.Context, int64, string) error {
			called = true
			return nil
		},
	})

	c, _ := postJSON(e, "/shipments/status-history", `{"shipmentId":1,"status":"Lost"}`)
	expectHTTPCode(t, h.AddStatusHistory(c), http.StatusBadRequest)

	c, rec := postJSON(e, "/shipments/status-history", `{"shipmentId":1,"status":"InTransit"}`)
	if err := h.AddStatusHistory(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated || !called {
		t.Fatalf("expected 201 and a service call, got %d called=%v", rec.Code, called)
	}
}

func TestShipmentHandler_RecordLocation(t *testing.T) {
	e := newTestEcho()
	h := NewShipmentHandler(&stubShipmentService{
		recordFn: func(_ context.Context, id int64, at domain.Coordinates) (domain.Evaluation, error) {
			return domain.Evaluation{DistanceKm: 1.2, Current: domain.StatusInTransit, Recommended: domain.StatusDelivered}, nil
		},
	})

	c, rec := postJSON(e, "/shipments/3/locations", `{"latitude":41,"longitude":29}`)
	withID(c, "3")
	if err := h.RecordLocation(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp locationEvaluationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !resp.StatusChanged || resp.Status != "Delivered" || resp.ShipmentID != 3 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestShipmentHandler_IsDelivered(t *testing.T) {
	e := newTestEcho()
	h := NewShipmentHandler(&stubShipmentService{
		isDeliveredFn: func(context.Context, int64) (bool, error) { return true, nil },
	})

	rec := httptest.NewRecorder()
	c := withID(e.NewContext(httptest.NewRequest(http.MethodGet, "/shipments/3/delivered", nil), rec), "3")
	if err := h.IsDelivered(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"delivered":true`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestShipmentHandler_StatusHistory(t *testing.T) {
	e := newTestEcho()
	h := NewShipmentHandler(&stubShipmentService{
		historyFn: func(_ context.Context, id int64) ([]domain.StatusHistoryEntry, error) {
			return []domain.StatusHistoryEntry{
				{ShipmentID: id, Status: domain.StatusCreated},
				{ShipmentID: id, Status: domain.StatusInTransit},
			}, nil
		},
	})

	rec := httptest.NewRecorder()
	c := withID(e.NewContext(httptest.NewRequest(http.MethodGet, "/shipments/3/status-history", nil), rec), "3")
	if err := h.StatusHistory(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp []statusHistoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp) != 2 || resp[1].Status != "InTransit" {
		t.Errorf("unexpected response: %+v", resp)
	}
}
