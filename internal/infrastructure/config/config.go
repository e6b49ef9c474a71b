package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET, default=change-me"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Mongo        MongoConfig
	Redis        RedisConfig
	NATS         NATSConfig
	Startup      StartupConfig
	Tracking     TrackingConfig
	Shipment     ShipmentConfig
	Notification NotificationConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=cargo_tracking"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type NATSConfig struct {
	URL      string `env:"NATS_URL,      default=nats://localhost:4222"`
	User     string `env:"NATS_USER"`
	Password string `env:"NATS_PASSWORD"`
}

// StartupConfig bounds the initial connection attempts to each broker.
type StartupConfig struct {
	ConnectAttempts int           `env:"BROKER_CONNECT_ATTEMPTS, default=5"`
	ConnectDelay    time.Duration `env:"BROKER_CONNECT_DELAY,    default=5s"`
}

type TrackingConfig struct {
	ShipmentAPIURL     string        `env:"SHIPMENT_API_URL,     default=http://localhost:8081"`
	ShipmentAPITimeout time.Duration `env:"SHIPMENT_API_TIMEOUT, default=5s"`

	StreamKey     string        `env:"EVENT_STREAM_KEY,     default=shipment_events"`
	ConsumerGroup string        `env:"EVENT_CONSUMER_GROUP, default=tracking_group"`
	ConsumerName  string        `env:"EVENT_CONSUMER_NAME,  default=tracking_consumer"`
	BatchSize     int64         `env:"EVENT_BATCH_SIZE,     default=10"`
	PollInterval  time.Duration `env:"EVENT_POLL_INTERVAL,  default=2s"`
	ClaimWindow   time.Duration `env:"EVENT_CLAIM_WINDOW,   default=30s"`

	PositionsChannel string        `env:"POSITIONS_CHANNEL, default=tracking_positions"`
	BackplaneChannel string        `env:"HUB_BACKPLANE_CHANNEL, default=tracking_hub"`
	RelayWorkers     int           `env:"RELAY_WORKERS,     default=8"`
	LocationCacheTTL time.Duration `env:"LOCATION_CACHE_TTL, default=24h"`

	IngestThresholdKm  float64 `env:"INGEST_DELIVERY_THRESHOLD_KM,  default=0.2"`
	HistoryThresholdKm float64 `env:"HISTORY_DELIVERY_THRESHOLD_KM, default=15"`
}

type ShipmentConfig struct {
	LocationThresholdKm float64 `env:"SHIPMENT_DELIVERY_THRESHOLD_KM, default=5"`
}

type NotificationConfig struct {
	Subject          string `env:"NOTIFICATION_SUBJECT,           default=shipment.status.updated"`
	QueueGroup       string `env:"NOTIFICATION_QUEUE_GROUP,       default=notification-service"`
	BackplaneChannel string `env:"NOTIFICATION_BACKPLANE_CHANNEL, default=notification_hub"`
}

// Load reads configuration from environment variables using go-envconfig.
// It panics on malformed values since nothing can start without config.
func Load() *Config {
	cfg, err := LoadFrom(envconfig.OsLookuper())
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadFrom reads configuration through l.
func LoadFrom(l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}
