package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func stringify(fields map[string]any) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = fmt.Sprint(v)
	}
	return out
}

func TestStatusChangeEvent_FieldsDecode(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	in := StatusChangeEvent{
		Type:           EventShipmentStatusChanged,
		ShipmentID:     42,
		NewStatus:      StatusDelivered,
		ReceiverUserID: "u-7",
		Timestamp:      ts,
	}

	out, err := DecodeStatusChangeEvent(stringify(in.Fields()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Type != in.Type || out.ShipmentID != in.ShipmentID || out.NewStatus != in.NewStatus ||
		out.ReceiverUserID != in.ReceiverUserID || !out.Timestamp.Equal(in.Timestamp) {
		t.Fatalf("expected %+v, got %+v", in, out)
	}
}

func TestDecodeStatusChangeEvent_UnknownType(t *testing.T) {
	e, err := DecodeStatusChangeEvent(map[string]string{
		"eventType":  "ShipmentTeleported",
		"shipmentId": "1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Type != EventUnknown {
		t.Fatalf("expected EventUnknown, got %s", e.Type)
	}
}

func TestDecodeStatusChangeEvent_BadShipmentID(t *testing.T) {
	_, err := DecodeStatusChangeEvent(map[string]string{
		"eventType":  string(EventShipmentStatusChanged),
		"shipmentId": "abc",
	})
	if !errors.Is(err, ErrMalformedEvent) {
		t.Fatalf("expected ErrMalformedEvent, got %v", err)
	}
}

func TestParseShipmentStatus(t *testing.T) {
	if s, err := ParseShipmentStatus("InTransit"); err != nil || s != StatusInTransit {
		t.Fatalf("expected InTransit, got %q %v", s, err)
	}
	if _, err := ParseShipmentStatus("in_transit"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestFormatStatusNotification(t *testing.T) {
	tests := []struct {
		status ShipmentStatus
		km     float64
		want   string
	}{
		{StatusDelivered, 0.01, "Your shipment has been delivered!"},
		{StatusInTransit, 2.44, "Your shipment is out for delivery, 2.4 km away."},
		{StatusInTransit, 12, "Your shipment is on its way, 12.0 km away."},
		{StatusCancelled, 0, "Your shipment status was updated: Cancelled"},
	}
	for _, tt := range tests {
		if got := FormatStatusNotification(tt.status, tt.km); got != tt.want {
			t.Errorf("status %s: expected %q, got %q", tt.status, tt.want, got)
		}
	}

	n := StatusNotification{ShipmentID: 5, NewStatus: StatusDelivered}
	if got := n.Text(); got != "Your shipment (ID: 5) status has been updated to: Delivered." {
		t.Errorf("unexpected fallback text %q", got)
	}
}
