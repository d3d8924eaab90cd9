package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/windfall/vocal_service/internal/client"
)

const sessionsCollection = "sessions"

// MongoSessionRepository stores sessions as documents in the sessions collection.
type MongoSessionRepository struct {
	coll *mongo.Collection
}

func NewMongoSessionRepository(db *client.MongoClient) *MongoSessionRepository {
	return &MongoSessionRepository{coll: db.Collection(sessionsCollection)}
}

func (r *MongoSessionRepository) Create(ctx context.Context, session *Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, session); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *MongoSessionRepository) GetByID(ctx context.Context, id string) (*Session, error) {
	var session Session
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

func (r *MongoSessionRepository) List(ctx context.Context, limit int) ([]*Session, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var sessions []*Session
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode sessions: %w", err)
	}
	return sessions, nil
}

func (r *MongoSessionRepository) UpdateAnalysis(ctx context.Context, id string, analysis map[string]interface{}) error {
	update := bson.M{"$set": bson.M{
		"analysis":   analysis,
		"updated_at": time.Now().UTC(),
	}}
	res, err := r.coll.UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("failed to update session analysis: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoSessionRepository) Backend() string {
	return "mongo"
}
