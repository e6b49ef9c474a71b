package handler

import "time"

// locationUpdateRequest is the body of POST /tracking/update-location and
// POST /tracking/history. Coordinates are pointers so that 0 stays a valid
// value while a missing field is still rejected.
type locationUpdateRequest struct {
	ShipmentID int64      `json:"shipmentId" validate:"gt=0"`
	Latitude   *float64   `json:"latitude"   validate:"required,gte=-90,lte=90"`
	Longitude  *float64   `json:"longitude"  validate:"required,gte=-180,lte=180"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
}

type acceptedResponse struct {
	Message string `json:"message"`
}

type locationHistoryResponse struct {
	ShipmentID int64                  `json:"shipmentId"`
	Count      int                    `json:"count"`
	Records    []locationRecordOutput `json:"records"`
}

type locationRecordOutput struct {
	ID         string    `json:"id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	RecordedAt time.Time `json:"recordedAt"`
}

type lastLocationResponse struct {
	ShipmentID int64     `json:"shipmentId"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
