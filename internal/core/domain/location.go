package domain

import (
	"errors"
	"time"

	"github.com/99minutos/cargo-tracking/pkg/geo"
)

var ErrLocationNotFound = errors.New("location not found")

// LocationUpdate is a coordinate reported for a shipment. Its JSON form is
// the payload of the position broadcast channel.
type LocationUpdate struct {
	ShipmentID int64     `json:"shipmentId"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Timestamp  time.Time `json:"timestamp"`
}

func (u LocationUpdate) Coordinates() Coordinates {
	return Coordinates{Latitude: u.Latitude, Longitude: u.Longitude}
}

// LocationHistoryRecord is an immutable, append-only observation.
type LocationHistoryRecord struct {
	ID         string    `json:"id"`
	ShipmentID int64     `json:"shipmentId"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	RecordedAt time.Time `json:"recordedAt"`
}

// LastLocation is the cached most recent coordinate of a shipment.
type LastLocation struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DistanceTo returns the great-circle distance to o in kilometers.
func (c Coordinates) DistanceTo(o Coordinates) float64 {
	return geo.Distance(c.Latitude, c.Longitude, o.Latitude, o.Longitude)
}
