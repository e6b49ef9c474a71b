package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/cargo-tracking/internal/realtime"
)

// HubHandler upgrades requests to hub connections.
type HubHandler struct {
	hub *realtime.Hub
}

func NewHubHandler(hub *realtime.Hub) *HubHandler {
	return &HubHandler{hub: hub}
}

// Connect handles GET on a hub path. When the auth middleware resolved an
// identity the connection is joined to user-<id>.
//
// @Summary      Open a real-time hub connection (websocket)
// @Tags         realtime
// @Param        access_token  query  string  false  "JWT; its subject selects the personal channel"
// @Success      101
// @Router       /hubs/tracking [get]
// @Router       /hubs/notifications [get]
func (h *HubHandler) Connect(c echo.Context) error {
	return h.hub.ServeWS(c.Response(), c.Request(), ctxUserID(c))
}
