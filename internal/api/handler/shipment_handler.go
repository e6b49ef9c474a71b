package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/cargo-tracking/internal/core/domain"
	"github.com/99minutos/cargo-tracking/internal/core/ports"
)

// ShipmentHandler handles HTTP requests for shipment operations.
type ShipmentHandler struct {
	service ports.ShipmentService
}

func NewShipmentHandler(service ports.ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{service: service}
}

// Create handles POST /shipments.
//
// @Summary      Create a new shipment
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createShipmentRequest  true  "Shipment details"
// @Success      201   {object}  shipmentResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /shipments [post]
func (h *ShipmentHandler) Create(c echo.Context) error {
	var req createShipmentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	shipment, err := h.service.CreateShipment(c.Request().Context(), ports.CreateShipmentInput{
		SenderUserID:   req.SenderUserID,
		ReceiverUserID: req.ReceiverUserID,
		Origin:         toCoordinates(req.Origin),
		Destination:    toCoordinates(req.Destination),
	})
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderLocation, "/shipments/"+strconv.FormatInt(shipment.ID, 10))
	return c.JSON(http.StatusCreated, toShipmentResponse(shipment))
}

// Get handles GET /shipments/:id.
//
// @Summary      Get a shipment by id
// @Tags         shipments
// @Produce      json
// @Param        id   path      int  true  "Shipment id"
// @Success      200  {object}  shipmentResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /shipments/{id} [get]
func (h *ShipmentHandler) Get(c echo.Context) error {
	id, err := pathShipmentID(c, "id")
	if err != nil {
		return err
	}

	shipment, err := h.service.GetShipment(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toShipmentResponse(shipment))
}

// UpdateStatus handles PUT /shipments/:id/status. The body is the new
// status as a bare JSON string. The receiver is notified unless the
// X-Status-Notified header says the caller already did.
//
// @Summary      Set the status of a shipment
// @Tags         shipments
// @Accept       json
// @Param        id    path  int     true  "Shipment id"
// @Param        body  body  string  true  "New status"
// @Param        X-Status-Notified  header  bool  false  "Caller already notified the receiver"
// @Success      204
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /shipments/{id}/status [put]
func (h *ShipmentHandler) UpdateStatus(c echo.Context) error {
	id, err := pathShipmentID(c, "id")
	if err != nil {
		return err
	}

	var status string
	if err := json.NewDecoder(c.Request().Body).Decode(&status); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "body must be a JSON string")
	}

	notify := c.Request().Header.Get(domain.StatusNotifiedHeader) != "true"
	if err := h.service.UpdateStatus(c.Request().Context(), id, status, notify); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// AddStatusHistory handles POST /shipments/status-history.
//
// @Summary      Append a status-history entry
// @Tags         shipments
// @Accept       json
// @Param        body  body  statusHistoryRequest  true  "History entry"
// @Success      201
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /shipments/status-history [post]
func (h *ShipmentHandler) AddStatusHistory(c echo.Context) error {
	var req statusHistoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.service.AddStatusHistory(c.Request().Context(), req.ShipmentID, req.Status); err != nil {
		return err
	}
	return c.NoContent(http.StatusCreated)
}

// StatusHistory handles GET /shipments/:id/status-history.
//
// @Summary      List status changes, oldest first
// @Tags         shipments
// @Produce      json
// @Param        id   path      int  true  "Shipment id"
// @Success      200  {array}   statusHistoryResponse
// @Failure      404  {object}  errorResponse
// @Router       /shipments/{id}/status-history [get]
func (h *ShipmentHandler) StatusHistory(c echo.Context) error {
	id, err := pathShipmentID(c, "id")
	if err != nil {
		return err
	}

	entries, err := h.service.StatusHistory(c.Request().Context(), id)
	if err != nil {
		return err
	}

	out := make([]statusHistoryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, statusHistoryResponse{ShipmentID: e.ShipmentID, Status: string(e.Status), ChangedAt: e.ChangedAt})
	}
	return c.JSON(http.StatusOK, out)
}

// RecordLocation handles POST /shipments/:id/locations.
//
// @Summary      Check a reported coordinate against the destination
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Param        id    path      int                 true  "Shipment id"
// @Param        body  body      coordinatesRequest  true  "Current coordinate"
// @Success      200   {object}  locationEvaluationResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /shipments/{id}/locations [post]
func (h *ShipmentHandler) RecordLocation(c echo.Context) error {
	id, err := pathShipmentID(c, "id")
	if err != nil {
		return err
	}
	var req coordinatesRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.service.RecordLocation(c.Request().Context(), id, toCoordinates(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, locationEvaluationResponse{
		ShipmentID:    id,
		DistanceKm:    res.DistanceKm,
		Status:        string(res.Recommended),
		StatusChanged: res.Changed(),
	})
}

// IsDelivered handles GET /shipments/:id/delivered.
//
// @Summary      Whether a shipment is delivered
// @Tags         shipments
// @Produce      json
// @Param        id   path      int  true  "Shipment id"
// @Success      200  {object}  deliveredResponse
// @Failure      404  {object}  errorResponse
// @Router       /shipments/{id}/delivered [get]
func (h *ShipmentHandler) IsDelivered(c echo.Context) error {
	id, err := pathShipmentID(c, "id")
	if err != nil {
		return err
	}

	delivered, err := h.service.IsDelivered(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deliveredResponse{ShipmentID: id, Delivered: delivered})
}

// --- mapping ---

func toCoordinates(r coordinatesRequest) domain.Coordinates {
	return domain.Coordinates{Latitude: *r.Latitude, Longitude: *r.Longitude}
}

func toShipmentResponse(s *domain.Shipment) shipmentResponse {
	return shipmentResponse{
		ID:             s.ID,
		SenderUserID:   s.SenderUserID,
		ReceiverUserID: s.ReceiverUserID,
		Origin:         coordinatesResponse{Latitude: s.Origin.Latitude, Longitude: s.Origin.Longitude},
		Destination:    coordinatesResponse{Latitude: s.Destination.Latitude, Longitude: s.Destination.Longitude},
		Status:         string(s.Status),
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}
