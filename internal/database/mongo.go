package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	connectTimeout    = 10 * time.Second
	disconnectTimeout = 5 * time.Second
)

// MongoManager lazily establishes a single MongoDB connection and hands the
// same database handle to every caller for the life of the process.
type MongoManager struct {
	uri    string
	dbName string

	mu     sync.Mutex
	client *mongo.Client
	db     *mongo.Database

	// connect is swapped in tests.
	connect func(ctx context.Context, opts ...*options.ClientOptions) (*mongo.Client, error)
}

// NewMongoManager returns a manager that connects on first use.
func NewMongoManager(uri, dbName string) *MongoManager {
	return &MongoManager{
		uri:     uri,
		dbName:  dbName,
		connect: mongo.Connect,
	}
}

// Database returns the cached database handle, connecting on the first call.
// A failed attempt is not cached; the next call tries again.
func (m *MongoManager) Database(ctx context.Context) (*mongo.Database, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db != nil {
		return m.db, nil
	}
	if m.uri == "" {
		return nil, fmt.Errorf("mongo: connection uri not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := m.connect(ctx, options.Client().ApplyURI(m.uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}

	// Ping the primary to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}

	m.client = client
	m.db = client.Database(m.dbName)
	log.Info().Str("database", m.dbName).Msg("connected to MongoDB")
	return m.db, nil
}

// Client returns the underlying client, connecting if needed.
func (m *MongoManager) Client(ctx context.Context) (*mongo.Client, error) {
	if _, err := m.Database(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.client, nil
}

// Ping checks the primary, connecting first if needed.
func (m *MongoManager) Ping(ctx context.Context) error {
	client, err := m.Client(ctx)
	if err != nil {
		return err
	}
	return client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client if a connection was ever made.
func (m *MongoManager) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, disconnectTimeout)
	defer cancel()

	err := m.client.Disconnect(ctx)
	m.client = nil
	m.db = nil
	if err != nil {
		return fmt.Errorf("mongo: disconnect: %w", err)
	}
	log.Info().Msg("MongoDB connection closed")
	return nil
}

// EnsureIndexes creates the indexes the stores rely on. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		"auth": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "userId", Value: 1}}},
		},
		"follows": {
			{Keys: bson.D{{Key: "followerId", Value: 1}, {Key: "followingId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "followingId", Value: 1}}},
		},
		"posts": {
			{Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		"comments": {
			{Keys: bson.D{{Key: "postId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		"stories": {
			{Keys: bson.D{{Key: "expiresAt", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		"users": {
			{Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}},
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{"email": bson.M{"$type": "string"}}),
			},
		},
	}

	for collection, models := range specs {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("mongo: create %s indexes: %w", collection, err)
		}
	}
	return nil
}
