package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/cargo-tracking/internal/core/domain"
)

const collectionLocationHistory = "location_history"

// LocationHistoryRepository is the append-only store of reported coordinates.
type LocationHistoryRepository struct {
	col *mongo.Collection
}

func NewLocationHistoryRepository(db *mongo.Database) *LocationHistoryRepository {
	return &LocationHistoryRepository{col: db.Collection(collectionLocationHistory)}
}

type locationDoc struct {
	ID         string    `bson:"_id"`
	ShipmentID int64     `bson:"shipment_id"`
	Latitude   float64   `bson:"latitude"`
	Longitude  float64   `bson:"longitude"`
	RecordedAt time.Time `bson:"recorded_at"`
}

// Append inserts rec. Records are never updated afterwards.
func (r *LocationHistoryRepository) Append(ctx context.Context, rec *domain.LocationHistoryRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := locationDoc{
		ID:         rec.ID,
		ShipmentID: rec.ShipmentID,
		Latitude:   rec.Latitude,
		Longitude:  rec.Longitude,
		RecordedAt: rec.RecordedAt.UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert location: %w", err)
	}
	return nil
}

// ListByShipment returns up to limit records for shipmentID, newest first.
func (r *LocationHistoryRepository) ListByShipment(ctx context.Context, shipmentID int64, limit int64) ([]domain.LocationHistoryRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "recorded_at", Value: -1}}).
		SetLimit(limit)

	cur, err := r.col.Find(ctx, bson.M{"shipment_id": shipmentID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find locations: %w", err)
	}
	defer cur.Close(ctx)

	var docs []locationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode locations: %w", err)
	}

	out := make([]domain.LocationHistoryRecord, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.LocationHistoryRecord{
			ID:         d.ID,
			ShipmentID: d.ShipmentID,
			Latitude:   d.Latitude,
			Longitude:  d.Longitude,
			RecordedAt: d.RecordedAt,
		})
	}
	return out, nil
}

// EnsureIndexes creates the per-shipment time index used by history reads.
func (r *LocationHistoryRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "shipment_id", Value: 1}, {Key: "recorded_at", Value: -1}},
	})
	return err
}
