// Package messaging carries status notifications over NATS core subjects.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/99minutos/cargo-tracking/internal/core/domain"
)

// Config holds the broker connection settings.
type Config struct {
	URL      string
	User     string
	Password string
	Name     string
}

// Connect dials the broker once. Reconnects after a successful dial are
// handled by the client library.
func Connect(cfg Config, log zerolog.Logger) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("broker disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info().Str("url", c.ConnectedUrl()).Msg("broker reconnected")
		}),
	}
	if cfg.User != "" {
		opts = append(opts, nats.UserInfo(cfg.User, cfg.Password))
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect %s: %w", cfg.URL, err)
	}
	return conn, nil
}

// Close drains conn before closing it. A nil conn is ignored.
func Close(conn *nats.Conn) {
	if conn == nil {
		return
	}
	_ = conn.Drain()
	conn.Close()
}

// Notifier publishes status notifications on a subject. Until SetConn is
// called it reports the broker as unavailable.
type Notifier struct {
	conn    atomic.Pointer[nats.Conn]
	subject string
}

func NewNotifier(subject string) *Notifier {
	return &Notifier{subject: subject}
}

// SetConn installs the broker connection once it is established.
func (n *Notifier) SetConn(conn *nats.Conn) {
	n.conn.Store(conn)
}

// Connected reports whether a live broker connection is installed.
func (n *Notifier) Connected() bool {
	c := n.conn.Load()
	return c != nil && c.IsConnected()
}

func (n *Notifier) Notify(_ context.Context, msg domain.StatusNotification) error {
	conn := n.conn.Load()
	if conn == nil {
		return fmt.Errorf("notify: %w", domain.ErrDependencyUnavailable)
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	if err := conn.Publish(n.subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w: %w", n.subject, domain.ErrDependencyUnavailable, err)
	}
	return nil
}

// NotificationHandler processes one decoded notification.
type NotificationHandler func(ctx context.Context, n domain.StatusNotification) error

// Subscribe joins queue on subject so that each notification is handled by
// one instance of the group. It blocks until ctx is done and then drains
// the subscription.
func Subscribe(ctx context.Context, conn *nats.Conn, subject, queue string, handle NotificationHandler, log zerolog.Logger) error {
	sub, err := conn.QueueSubscribe(subject, queue, func(m *nats.Msg) {
		var n domain.StatusNotification
		if err := json.Unmarshal(m.Data, &n); err != nil {
			log.Warn().Err(err).Str("subject", m.Subject).Msg("invalid notification payload")
			return
		}
		if err := handle(ctx, n); err != nil {
			log.Error().Err(err).
				Int64("shipment_id", n.ShipmentID).
				Str("user_id", n.UserID).
				Msg("notification handling failed")
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	log.Info().Str("subject", subject).Str("queue", queue).Msg("listening for notifications")

	<-ctx.Done()
	return sub.Drain()
}
