// Command notification-api relays shipment status notifications from the
// broker to connected real-time clients.
//
// @title     Cargo Tracking API
// @version   1.0
// @BasePath  /
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/99minutos/cargo-tracking/internal/api"
	"github.com/99minutos/cargo-tracking/internal/api/handler"
	"github.com/99minutos/cargo-tracking/internal/core/service"
	"github.com/99minutos/cargo-tracking/internal/infrastructure/config"
	"github.com/99minutos/cargo-tracking/internal/infrastructure/connect"
	redisdb "github.com/99minutos/cargo-tracking/internal/infrastructure/db/redis"
	"github.com/99minutos/cargo-tracking/internal/infrastructure/messaging"
	"github.com/99minutos/cargo-tracking/internal/realtime"
	"github.com/99minutos/cargo-tracking/pkg/logger"
)

var errNotSubscribed = errors.New("notification subscription inactive")

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "notification-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("notification-api stopped with error")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	rdb := redisdb.NewClient(redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	defer rdb.Close()

	hub := realtime.NewHub(log, realtime.WithBackplane(redisdb.NewPubSub(rdb, log), cfg.Notification.BackplaneChannel))
	relay := service.NewNotificationRelay(hub, log)

	var subscribed atomic.Bool
	health := handler.NewHealthHandler(map[string]handler.Check{
		"redis": func(ctx context.Context) error { return redisdb.Ping(ctx, rdb, 0) },
		"broker": func(context.Context) error {
			if !subscribed.Load() {
				return errNotSubscribed
			}
			return nil
		},
	})

	e := api.NewNotificationRouter(api.NotificationRoutes{
		Hub:       handler.NewHubHandler(hub),
		Health:    health,
		JWTSecret: cfg.JWTSecret,
	}, log)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return api.Serve(gctx, e, ":"+cfg.Port, log)
	})

	g.Go(func() error {
		if err := hub.Run(gctx); err != nil {
			log.Error().Err(err).Msg("hub backplane stopped")
		}
		return nil
	})

	var conn *nats.Conn
	g.Go(func() error {
		err := connect.WithRetry(gctx, connect.Options{
			Name:     "nats",
			Attempts: cfg.Startup.ConnectAttempts,
			Delay:    cfg.Startup.ConnectDelay,
			Log:      log,
		}, func(context.Context) error {
			c, err := messaging.Connect(messaging.Config{
				URL:      cfg.NATS.URL,
				User:     cfg.NATS.User,
				Password: cfg.NATS.Password,
				Name:     "notification-api",
			}, log)
			if err != nil {
				return err
			}
			conn = c
			return nil
		})
		if err != nil {
			log.Error().Err(err).Msg("notification broker unreachable, relay disabled")
			return nil
		}

		subscribed.Store(true)
		defer subscribed.Store(false)
		err = messaging.Subscribe(gctx, conn, cfg.Notification.Subject, cfg.Notification.QueueGroup, relay.Handle, log)
		if err != nil {
			log.Error().Err(err).Msg("notification relay stopped")
		}
		return nil
	})

	err := g.Wait()
	messaging.Close(conn)
	if err != nil {
		return fmt.Errorf("notification-api: %w", err)
	}
	return nil
}
