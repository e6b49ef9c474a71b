package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type coordinatesRequest struct {
	Latitude  *float64 `json:"latitude"  validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

type createShipmentRequest struct {
	SenderUserID   string             `json:"senderUserId"   validate:"required"`
	ReceiverUserID string             `json:"receiverUserId" validate:"required"`
	Origin         coordinatesRequest `json:"origin"`
	Destination    coordinatesRequest `json:"destination"`
}

type statusHistoryRequest struct {
	ShipmentID int64  `json:"shipmentId" validate:"gt=0"`
	Status     string `json:"status"     validate:"required,shipment_status"`
}

type shipmentResponse struct {
	ID             int64               `json:"id"`
	SenderUserID   string              `json:"senderUserId"`
	ReceiverUserID string              `json:"receiverUserId"`
	Origin         coordinatesResponse `json:"origin"`
	Destination    coordinatesResponse `json:"destination"`
	Status         string              `json:"status"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

type coordinatesResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type statusHistoryResponse struct {
	ShipmentID int64     `json:"shipmentId"`
	Status     string    `json:"status"`
	ChangedAt  time.Time `json:"changedAt"`
}

type locationEvaluationResponse struct {
	ShipmentID    int64   `json:"shipmentId"`
	DistanceKm    float64 `json:"distanceKm"`
	Status        string  `json:"status"`
	StatusChanged bool    `json:"statusChanged"`
}

type deliveredResponse struct {
	ShipmentID int64 `json:"shipmentId"`
	Delivered  bool  `json:"delivered"`
}
