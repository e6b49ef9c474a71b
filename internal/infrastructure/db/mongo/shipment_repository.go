package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/cargo-tracking/internal/core/domain"
)

const (
	collectionShipments     = "shipments"
	collectionStatusHistory = "shipment_status_history"
	collectionCounters      = "counters"
	shipmentSequence        = "shipments"
)

type ShipmentRepository struct {
	col      *mongo.Collection
	history  *mongo.Collection
	counters *mongo.Collection
}

func NewShipmentRepository(db *mongo.Database) *ShipmentRepository {
	return &ShipmentRepository{
		col:      db.Collection(collectionShipments),
		history:  db.Collection(collectionStatusHistory),
		counters: db.Collection(collectionCounters),
	}
}

// Create assigns the next sequence value to s.ID and inserts the document.
func (r *ShipmentRepository) Create(ctx context.Context, s *domain.Shipment) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.nextID(ctx)
	if err != nil {
		return err
	}
	s.ID = id

	if _, err := r.col.InsertOne(ctx, s); err != nil {
		return fmt.Errorf("insert shipment: %w", err)
	}
	return nil
}

func (r *ShipmentRepository) FindByID(ctx context.Context, id int64) (*domain.Shipment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var s domain.Shipment
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrShipmentNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *ShipmentRepository) UpdateStatus(ctx context.Context, id int64, status domain.ShipmentStatus, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": string(status), "updated_at": at.UTC()}},
	)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrShipmentNotFound
	}
	return nil
}

func (r *ShipmentRepository) AppendStatusHistory(ctx context.Context, entry domain.StatusHistoryEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	entry.ChangedAt = entry.ChangedAt.UTC()
	if _, err := r.history.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("insert status history: %w", err)
	}
	return nil
}

// ListStatusHistory returns the status changes of a shipment, oldest first.
func (r *ShipmentRepository) ListStatusHistory(ctx context.Context, id int64) ([]domain.StatusHistoryEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "changed_at", Value: 1}})
	cur, err := r.history.Find(ctx, bson.M{"shipment_id": id}, opts)
	if err != nil {
		return nil, fmt.Errorf("find status history: %w", err)
	}
	defer cur.Close(ctx)

	out := []domain.StatusHistoryEntry{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode status history: %w", err)
	}
	return out, nil
}

// EnsureIndexes creates necessary indexes on the shipment collections.
func (r *ShipmentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "sender_user_id", Value: 1}}},
		{Keys: bson.D{{Key: "receiver_user_id", Value: 1}}},
	}); err != nil {
		return err
	}
	_, err := r.history.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "shipment_id", Value: 1}, {Key: "changed_at", Value: 1}},
	})
	return err
}

func (r *ShipmentRepository) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": shipmentSequence},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next shipment id: %w", err)
	}
	return counter.Seq, nil
}
