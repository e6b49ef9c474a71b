package domain

import (
	"errors"
	"strconv"
	"time"
)

// Real-time push event names.
const (
	PushLocationUpdate = "ReceiveLocationUpdate"
	PushStatusUpdate   = "ReceiveStatusUpdate"
	PushNotification   = "ReceiveNotification"
)

var ErrDispatch = errors.New("real-time dispatch failed")

func ShipmentGroup(shipmentID int64) string {
	return "shipment-" + strconv.FormatInt(shipmentID, 10)
}

func UserGroup(userID string) string {
	return "user-" + userID
}

// LocationPush is the payload of PushLocationUpdate.
type LocationPush struct {
	ShipmentID int64     `json:"shipmentId"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// StatusPush is the payload of PushStatusUpdate.
type StatusPush struct {
	ShipmentID int64          `json:"shipmentId"`
	NewStatus  ShipmentStatus `json:"newStatus"`
	Timestamp  time.Time      `json:"timestamp"`
}
