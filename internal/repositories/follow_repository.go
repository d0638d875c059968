package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/linkup/backend/internal/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const followsCollection = "follows"

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	ToggleFollow(ctx context.Context, followerID, followingID string) (*models.FollowResult, error)
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
	GetFollowersCount(ctx context.Context, userID string) (int64, error)
	GetFollowingCount(ctx context.Context, userID string) (int64, error)
}

// MongoFollowRepository stores one document per directed follow edge.
// Counts are always computed by query.
type MongoFollowRepository struct {
	collection *mongo.Collection
	clock      func() time.Time
}

// NewMongoFollowRepository creates a new MongoFollowRepository
func NewMongoFollowRepository(db *mongo.Database) *MongoFollowRepository {
	return &MongoFollowRepository{collection: db.Collection(followsCollection), clock: nowMillis}
}

// ToggleFollow removes the edge if it exists and creates it otherwise.
// Self-follows are not rejected here.
func (r *MongoFollowRepository) ToggleFollow(ctx context.Context, followerID, followingID string) (*models.FollowResult, error) {
	if followerID == "" || followingID == "" {
		return nil, newValidationError("followerId", "followingId")
	}
	edge := bson.M{"followerId": followerID, "followingId": followingID}

	res, err := r.collection.DeleteOne(ctx, edge)
	if err != nil {
		return nil, persistenceError("delete follow", err)
	}
	if res.DeletedCount > 0 {
		return &models.FollowResult{Following: false}, nil
	}

	_, err = r.collection.InsertOne(ctx, models.FollowDocument{
		ID:          uuid.NewString(),
		FollowerID:  followerID,
		FollowingID: followingID,
		CreatedAt:   r.clock(),
	})
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return nil, persistenceError("insert follow", err)
	}
	return &models.FollowResult{Following: true}, nil
}

// IsFollowing reports whether the edge exists
func (r *MongoFollowRepository) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	err := r.collection.FindOne(ctx, bson.M{"followerId": followerID, "followingId": followingID}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, persistenceError("find follow", err)
	}
	return true, nil
}

// GetFollowersCount counts incoming edges
func (r *MongoFollowRepository) GetFollowersCount(ctx context.Context, userID string) (int64, error) {
	return r.count(ctx, bson.M{"followingId": userID})
}

// GetFollowingCount counts outgoing edges
func (r *MongoFollowRepository) GetFollowingCount(ctx context.Context, userID string) (int64, error) {
	return r.count(ctx, bson.M{"followerId": userID})
}

func (r *MongoFollowRepository) count(ctx context.Context, filter bson.M) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, persistenceError("count follows", err)
	}
	return n, nil
}
