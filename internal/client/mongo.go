package client

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoClient wraps a MongoDB connection bound to one database.
type MongoClient struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoClient connects to MongoDB and verifies the connection.
func NewMongoClient(ctx context.Context, uri, database string) (*MongoClient, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return &MongoClient{
		client: client,
		db:     client.Database(database),
	}, nil
}

// Collection returns a handle to the named collection.
func (c *MongoClient) Collection(name string) *mongo.Collection {
	return c.db.Collection(name)
}

// Ping checks MongoDB connectivity.
func (c *MongoClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (c *MongoClient) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
