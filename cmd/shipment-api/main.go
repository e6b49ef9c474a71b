// Command shipment-api owns shipment records, their status history and
// user accounts.
//
// @title                       Cargo Tracking API
// @version                     1.0
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/99minutos/cargo-tracking/internal/api"
	"github.com/99minutos/cargo-tracking/internal/api/handler"
	"github.com/99minutos/cargo-tracking/internal/core/domain"
	"github.com/99minutos/cargo-tracking/internal/core/service"
	"github.com/99minutos/cargo-tracking/internal/infrastructure/config"
	"github.com/99minutos/cargo-tracking/internal/infrastructure/connect"
	mongodb "github.com/99minutos/cargo-tracking/internal/infrastructure/db/mongo"
	"github.com/99minutos/cargo-tracking/internal/infrastructure/messaging"
	"github.com/99minutos/cargo-tracking/pkg/logger"
)

const tokenTTL = 24 * time.Hour

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "shipment-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("shipment-api stopped with error")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	client, db, err := mongodb.NewClient(mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	shipmentRepo := mongodb.NewShipmentRepository(db)
	userRepo := mongodb.NewUserRepository(db)

	notifier := messaging.NewNotifier(cfg.Notification.Subject)

	shipmentService := service.NewShipmentService(shipmentRepo, notifier, cfg.Shipment.LocationThresholdKm, log)
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, tokenTTL)

	health := handler.NewHealthHandler(map[string]handler.Check{
		"mongodb": func(ctx context.Context) error { return mongodb.Ping(ctx, client, 0) },
		"broker": func(context.Context) error {
			if !notifier.Connected() {
				return domain.ErrDependencyUnavailable
			}
			return nil
		},
	})

	e := api.NewShipmentRouter(api.ShipmentRoutes{
		Shipments: handler.NewShipmentHandler(shipmentService),
		Auth:      handler.NewAuthHandler(authService),
		Health:    health,
		JWTSecret: cfg.JWTSecret,
	}, log)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return api.Serve(gctx, e, ":"+cfg.Port, log)
	})

	g.Go(func() error {
		if err := shipmentRepo.EnsureIndexes(gctx); err != nil {
			log.Warn().Err(err).Msg("shipment indexes not created")
		}
		if err := userRepo.EnsureIndexes(gctx); err != nil {
			log.Warn().Err(err).Msg("user indexes not created")
		}
		return nil
	})

	// Status changes are still stored without the broker; only their
	// notifications are lost.
	var natsConn *nats.Conn
	g.Go(func() error {
		err := connect.WithRetry(gctx, connect.Options{
			Name:     "nats",
			Attempts: cfg.Startup.ConnectAttempts,
			Delay:    cfg.Startup.ConnectDelay,
			Log:      log,
		}, func(context.Context) error {
			conn, err := messaging.Connect(messaging.Config{
				URL:      cfg.NATS.URL,
				User:     cfg.NATS.User,
				Password: cfg.NATS.Password,
				Name:     "shipment-api",
			}, log)
			if err != nil {
				return err
			}
			natsConn = conn
			notifier.SetConn(conn)
			return nil
		})
		if err != nil {
			log.Error().Err(err).Msg("notification broker unreachable, notifications disabled")
		}
		return nil
	})

	err = g.Wait()
	messaging.Close(natsConn)
	if err != nil {
		return fmt.Errorf("shipment-api: %w", err)
	}
	return nil
}
