package handler

import (
	"errors"
	"strings"
	"testing"
)

func TestValidator_Messages(t *testing.T) {
	v := NewValidator()

	cases := []struct {
		name string
		req  any
		want string
	}{
		{"json field name", &statusHistoryRequest{Status: "Delivered"}, "shipmentId must be greater than 0"},
		{"unknown status", &statusHistoryRequest{ShipmentID: 1, Status: "Lost"}, "status must be one of: Created InTransit Delivered Cancelled"},
		{"unknown role", &registerRequest{Username: "ana", Email: "a@b.io", Password: "longenough", Role: "driver"}, "role must be one of: admin courier customer"},
		{"missing latitude", &locationUpdateRequest{ShipmentID: 1, Longitude: ptr(1.0)}, "latitude is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(tc.req)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("message %q does not contain %q", err.Error(), tc.want)
			}
		})
	}
}

func TestValidator_Accepts(t *testing.T) {
	v := NewValidator()
	reqs := []any{
		&statusHistoryRequest{ShipmentID: 7, Status: "InTransit"},
		&registerRequest{Username: "ana", Email: "a@b.io", Password: "longenough"},
		&locationUpdateRequest{ShipmentID: 1, Latitude: ptr(0.0), Longitude: ptr(-180.0)},
	}
	for _, req := range reqs {
		if err := v.Validate(req); err != nil {
			t.Errorf("%T: unexpected error %v", req, err)
		}
	}
}

func ptr[T any](v T) *T { return &v }
