// Command tracking-api ingests location updates, detects deliveries and
// fans positions and status changes out to real-time subscribers.
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
	"github.com/99minutos/cargo-tracking/internal/core/domain"
	"github.com/99minutos/cargo-tracking/internal/core/service"
	"github.com/99minutos/cargo-tracking/internal/infrastructure/config"
	"github.com/99minutos/cargo-tracking/internal/infrastructure/connect"
	mongodb "github.com/99minutos/cargo-tracking/internal/infrastructure/db/mongo"
	redisdb "github.com/99minutos/cargo-tracking/internal/infrastructure/db/redis"
	"github.com/99minutos/cargo-tracking/internal/infrastructure/messaging"
	"github.com/99minutos/cargo-tracking/internal/infrastructure/queue"
	"github.com/99minutos/cargo-tracking/internal/infrastructure/shipmentapi"
	"github.com/99minutos/cargo-tracking/internal/realtime"
	"github.com/99minutos/cargo-tracking/pkg/logger"
)

var errWorkersDegraded = errors.New("background workers disabled")

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "tracking-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("tracking-api stopped with error")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	mongoClient, db, err := mongodb.NewClient(mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	rdb := redisdb.NewClient(redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	defer rdb.Close()

	history := mongodb.NewLocationHistoryRepository(db)
	pubsub := redisdb.NewPubSub(rdb, log)
	positions := redisdb.NewPositionChannel(pubsub, cfg.Tracking.PositionsChannel)
	stream := redisdb.NewEventStream(rdb, cfg.Tracking.StreamKey, cfg.Tracking.ConsumerGroup)
	cache := redisdb.NewLocationCache(rdb, cfg.Tracking.LocationCacheTTL)
	notifier := messaging.NewNotifier(cfg.Notification.Subject)
	shipments := shipmentapi.NewClient(cfg.Tracking.ShipmentAPIURL, cfg.Tracking.ShipmentAPITimeout, log)

	hub := realtime.NewHub(log, realtime.WithBackplane(pubsub, cfg.Tracking.BackplaneChannel))

	trackingService := service.NewTrackingService(service.TrackingDeps{
		Positions:          positions,
		History:            history,
		Shipments:          shipments,
		Events:             stream,
		Notifier:           notifier,
		Cache:              cache,
		IngestThresholdKm:  cfg.Tracking.IngestThresholdKm,
		HistoryThresholdKm: cfg.Tracking.HistoryThresholdKm,
	}, log)

	var degraded atomic.Bool
	health := handler.NewHealthHandler(map[string]handler.Check{
		"mongodb": func(ctx context.Context) error { return mongodb.Ping(ctx, mongoClient, 0) },
		"redis":   func(ctx context.Context) error { return redisdb.Ping(ctx, rdb, 0) },
		"broker": func(context.Context) error {
			if !notifier.Connected() {
				return domain.ErrDependencyUnavailable
			}
			return nil
		},
		"workers": func(context.Context) error {
			if degraded.Load() {
				return errWorkersDegraded
			}
			return nil
		},
	})

	e := api.NewTrackingRouter(api.TrackingRoutes{
		Tracking:  handler.NewTrackingHandler(trackingService),
		Hub:       handler.NewHubHandler(hub),
		Health:    health,
		JWTSecret: cfg.JWTSecret,
	}, log)

	retry := func(name string) connect.Options {
		return connect.Options{
			Name:     name,
			Attempts: cfg.Startup.ConnectAttempts,
			Delay:    cfg.Startup.ConnectDelay,
			Log:      log,
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return api.Serve(gctx, e, ":"+cfg.Port, log)
	})

	g.Go(func() error {
		if err := history.EnsureIndexes(gctx); err != nil {
			log.Warn().Err(err).Msg("location history indexes not created")
		}
		return nil
	})

	var natsConn *nats.Conn
	g.Go(func() error {
		err := connect.WithRetry(gctx, retry("nats"), func(context.Context) error {
			conn, err := messaging.Connect(messaging.Config{
				URL:      cfg.NATS.URL,
				User:     cfg.NATS.User,
				Password: cfg.NATS.Password,
				Name:     "tracking-api",
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

	g.Go(func() error {
		err := connect.WithRetry(gctx, retry("redis"), func(ctx context.Context) error {
			return redisdb.Ping(ctx, rdb, 0)
		})
		if err != nil {
			degraded.Store(true)
			log.Error().Err(err).Msg("event broker unreachable, background workers disabled")
			return nil
		}
		runWorkers(gctx, workers{
			hub:       hub,
			positions: positions,
			relay:     service.NewPositionRelay(cache, hub, log),
			consumer: service.NewEventConsumer(stream, hub, redisdb.NewDedupStore(rdb), service.EventConsumerConfig{
				Consumer:     cfg.Tracking.ConsumerName,
				BatchSize:    cfg.Tracking.BatchSize,
				PollInterval: cfg.Tracking.PollInterval,
				ClaimWindow:  cfg.Tracking.ClaimWindow,
			}, nil, log),
			relayWorkers: cfg.Tracking.RelayWorkers,
		}, log)
		return nil
	})

	err = g.Wait()
	messaging.Close(natsConn)
	if err != nil {
		return fmt.Errorf("tracking-api: %w", err)
	}
	return nil
}

type workers struct {
	hub          *realtime.Hub
	positions    *redisdb.PositionChannel
	relay        *service.PositionRelay
	consumer     *service.EventConsumer
	relayWorkers int
}

// runWorkers blocks until ctx is done. A failing worker is logged and does
// not take the others or the HTTP server down with it.
func runWorkers(ctx context.Context, w workers, log zerolog.Logger) {
	dispatcher := queue.NewDispatcher(w.relayWorkers, w.relay, log)
	dispatcher.Start(ctx)

	var g errgroup.Group
	g.Go(func() error {
		if err := w.hub.Run(ctx); err != nil {
			log.Error().Err(err).Msg("hub backplane stopped")
		}
		return nil
	})
	g.Go(func() error {
		err := w.positions.Subscribe(ctx, func(u domain.LocationUpdate) {
			dispatcher.Enqueue(u)
		})
		if err != nil {
			log.Error().Err(err).Msg("position relay stopped")
		}
		return nil
	})
	g.Go(func() error {
		if err := w.consumer.Run(ctx); err != nil {
			log.Error().Err(err).Msg("event consumer stopped")
		}
		return nil
	})
	_ = g.Wait()
}
