package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	AuditDbName    = "printer_admin"
	AuditColName   = "booking_audit"
	AuditRetention = 180 * 24 * time.Hour
)

const (
	AuditStatusChanged      = "status_changed"
	AuditTechnicianAssigned = "technician_assigned"
	AuditActualCostUpdated  = "actual_cost_updated"
)

// AuditEntry records one successful admin mutation on a booking.
type AuditEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BookingID string             `bson:"booking_id" json:"booking_id" validate:"required"`
	Action    string             `bson:"action" json:"action" validate:"required"`
	Value     string             `bson:"value" json:"value"`
	Actor     string             `bson:"actor,omitempty" json:"actor,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	ExpiresAt time.Time          `bson:"expires_at" json:"-"` // TTL index field
}

type AuditActionCount struct {
	Action string `bson:"_id" json:"action"`
	Count  int64  `bson:"count" json:"count"`
}

type AuditRepo interface {
	RecordAudit(ctx context.Context, entry *AuditEntry) error
	ListAuditByBooking(ctx context.Context, bookingID string, limit int) ([]*AuditEntry, error)
	AuditStats(ctx context.Context, days int) ([]AuditActionCount, error)
	EnsureAuditIndexes(ctx context.Context) error
}

func (a *AuditEntry) BeforeCreate() error {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	a.ExpiresAt = a.CreatedAt.Add(AuditRetention)
	return nil
}

func (mdb *MongodbRepo) GetCollection(ctx context.Context, dbName, colName string) (*mongo.Collection, error) {
	if mdb.mongodbClient == nil {
		return nil, fmt.Errorf("mongodb client is not initialized")
	}
	return mdb.mongodbClient.Database(dbName).Collection(colName), nil
}

// EnsureAuditIndexes creates the lookup index and the TTL index
func (mdb *MongodbRepo) EnsureAuditIndexes(ctx context.Context) error {
	col, err := mdb.GetCollection(ctx, mdb.dbName, AuditColName)
	if err != nil {
		return err
	}

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "booking_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}

	if _, err := col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("error creating audit indexes: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) RecordAudit(ctx context.Context, entry *AuditEntry) error {
	if err := Validate.Struct(entry); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := entry.BeforeCreate(); err != nil {
		return fmt.Errorf("failed to prepare audit entry: %w", err)
	}

	col, err := mdb.GetCollection(ctx, mdb.dbName, AuditColName)
	if err != nil {
		return err
	}

	if _, err := col.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("error inserting audit entry: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) ListAuditByBooking(ctx context.Context, bookingID string, limit int) ([]*AuditEntry, error) {
	col, err := mdb.GetCollection(ctx, mdb.dbName, AuditColName)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := col.Find(ctx, bson.M{"booking_id": bookingID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding audit entries: %w", err)
	}
	defer cursor.Close(ctx)

	entries := make([]*AuditEntry, 0)
	for cursor.Next(ctx) {
		var entry AuditEntry
		if err := cursor.Decode(&entry); err != nil {
			return nil, fmt.Errorf("error decoding audit entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return entries, nil
}

// AuditStats counts mutations per action over the last days.
func (mdb *MongodbRepo) AuditStats(ctx context.Context, days int) ([]AuditActionCount, error) {
	col, err := mdb.GetCollection(ctx, mdb.dbName, AuditColName)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"created_at": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{"_id": "$action", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("error aggregating audit stats: %w", err)
	}
	defer cursor.Close(ctx)

	var stats []AuditActionCount
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, fmt.Errorf("error decoding audit stats: %w", err)
	}
	return stats, nil
}
