package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/cargo-tracking/internal/core/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	sendBuffer     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Command is a client request to change its shipment subscriptions.
type Command struct {
	Action     string `json:"action"` // "join" or "leave"
	ShipmentID int64  `json:"shipmentId"`
}

var errUnknownAction = errors.New("unknown action")

type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (c *wsClient) ID() string { return c.id }

func (c *wsClient) Send(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (c *wsClient) Close() {
	c.once.Do(func() { close(c.done) })
}

// ServeWS upgrades the request and serves the connection until it closes.
// A non-empty userID is auto-joined to its personal group.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("websocket upgrade: %w", err)
	}

	c := &wsClient{
		id:   nuid.Next(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
	log := h.log.With().Str("conn_id", c.id).Logger()

	h.Register(c, userID)
	defer h.Unregister(c.id)

	go c.writePump(log)
	c.readPump(h, log)
	return nil
}

func (c *wsClient) readPump(h *Hub, log zerolog.Logger) {
	defer func() {
		c.Close()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("websocket closed")
			}
			return
		}
		// A malformed command is skipped; the connection stays open.
		var cmd Command
		if err := json.Unmarshal(raw, &cmd); err != nil {
			log.Debug().Err(err).Msg("undecodable client command")
			continue
		}
		if err := h.apply(c.id, cmd); err != nil {
			log.Debug().Err(err).Str("action", cmd.Action).Msg("rejected client command")
		}
	}
}

func (c *wsClient) writePump(log zerolog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Debug().Err(err).Msg("websocket write failed")
				c.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		}
	}
}

// apply handles a subscription command. Clients may only manage shipment
// groups; personal groups are joined from the identity claim.
func (h *Hub) apply(connID string, cmd Command) error {
	if cmd.ShipmentID <= 0 {
		return fmt.Errorf("invalid shipment id %d", cmd.ShipmentID)
	}
	group := domain.ShipmentGroup(cmd.ShipmentID)

	switch cmd.Action {
	case "join":
		return h.Join(connID, group)
	case "leave":
		h.Leave(connID, group)
		return nil
	default:
		return fmt.Errorf("%w: %q", errUnknownAction, cmd.Action)
	}
}

// Decode parses a frame written by the hub. Intended for clients and tests.
func Decode(raw []byte) (Frame, error) {
	var f Frame
	err := json.Unmarshal(raw, &f)
	return f, err
}
