package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/cargo-tracking/internal/core/ports"
)

// TrackingHandler exposes location ingest and read-back.
type TrackingHandler struct {
	service ports.TrackingService
}

func NewTrackingHandler(service ports.TrackingService) *TrackingHandler {
	return &TrackingHandler{service: service}
}

// UpdateLocation handles POST /tracking/update-location.
//
// @Summary      Ingest a location update
// @Tags         tracking
// @Accept       json
// @Produce      json
// @Param        body  body      locationUpdateRequest  true  "Location update"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /tracking/update-location [post]
func (h *TrackingHandler) UpdateLocation(c echo.Context) error {
	var req locationUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.service.UpdateLocation(c.Request().Context(), toLocationInput(req)); err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, acceptedResponse{Message: "location accepted"})
}

// RecordHistory handles POST /tracking/history.
//
// @Summary      Record a location in history and run the delivery check
// @Tags         tracking
// @Accept       json
// @Produce      json
// @Param        body  body      locationUpdateRequest  true  "Location update"
// @Success      201   {object}  acceptedResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /tracking/history [post]
func (h *TrackingHandler) RecordHistory(c echo.Context) error {
	var req locationUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.service.RecordLocation(c.Request().Context(), toLocationInput(req)); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, acceptedResponse{Message: "location recorded"})
}

// History handles GET /tracking/:shipmentId/history.
//
// @Summary      List recorded locations, newest first
// @Tags         tracking
// @Produce      json
// @Param        shipmentId  path      int  true   "Shipment id"
// @Param        limit       query     int  false  "Maximum records (default 50, max 500)"
// @Success      200         {object}  locationHistoryResponse
// @Failure      400         {object}  errorResponse
// @Failure      500         {object}  errorResponse
// @Router       /tracking/{shipmentId}/history [get]
func (h *TrackingHandler) History(c echo.Context) error {
	id, err := pathShipmentID(c, "shipmentId")
	if err != nil {
		return err
	}

	var limit int64
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || limit < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
	}

	records, err := h.service.History(c.Request().Context(), id, limit)
	if err != nil {
		return err
	}

	out := make([]locationRecordOutput, 0, len(records))
	for _, r := range records {
		out = append(out, locationRecordOutput{
			ID:         r.ID,
			Latitude:   r.Latitude,
			Longitude:  r.Longitude,
			RecordedAt: r.RecordedAt,
		})
	}
	return c.JSON(http.StatusOK, locationHistoryResponse{ShipmentID: id, Count: len(out), Records: out})
}

// LastLocation handles GET /tracking/:shipmentId/last-location.
//
// @Summary      Last known location of a shipment
// @Tags         tracking
// @Produce      json
// @Param        shipmentId  path      int  true  "Shipment id"
// @Success      200         {object}  lastLocationResponse
// @Failure      404         {object}  errorResponse
// @Router       /tracking/{shipmentId}/last-location [get]
func (h *TrackingHandler) LastLocation(c echo.Context) error {
	id, err := pathShipmentID(c, "shipmentId")
	if err != nil {
		return err
	}

	loc, err := h.service.LastLocation(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, lastLocationResponse{
		ShipmentID: id,
		Latitude:   loc.Latitude,
		Longitude:  loc.Longitude,
		UpdatedAt:  loc.UpdatedAt,
	})
}

func toLocationInput(r locationUpdateRequest) ports.LocationUpdateInput {
	in := ports.LocationUpdateInput{
		ShipmentID: r.ShipmentID,
		Latitude:   *r.Latitude,
		Longitude:  *r.Longitude,
	}
	if r.Timestamp != nil {
		in.Timestamp = *r.Timestamp
	}
	return in
}
