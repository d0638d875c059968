package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/linkup/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	ToggleLike(ctx context.Context, postID, userID string) (*models.LikeResult, error)
	IsLiked(ctx context.Context, postID, userID string) (bool, error)
}

// MongoLikeRepository keeps likes as the likedBy set of each post
type MongoLikeRepository struct {
	collection *mongo.Collection
}

// NewMongoLikeRepository creates a new MongoLikeRepository
func NewMongoLikeRepository(db *mongo.Database) *MongoLikeRepository {
	return &MongoLikeRepository{collection: db.Collection(postsCollection)}
}

// ToggleLike flips userID's membership in the liker set. The returned count
// is derived from the set read before the write and assumes the write lands.
func (r *MongoLikeRepository) ToggleLike(ctx context.Context, postID, userID string) (*models.LikeResult, error) {
	if userID == "" {
		return nil, newValidationError("userId")
	}

	likedBy, err := r.likedBy(ctx, postID)
	if err != nil {
		return nil, err
	}
	liked := contains(likedBy, userID)

	var update bson.M
	result := &models.LikeResult{}
	if liked {
		update = bson.M{"$pull": bson.M{"likedBy": userID}}
		result.Liked = false
		result.LikesCount = len(likedBy) - 1
	} else {
		update = bson.M{"$addToSet": bson.M{"likedBy": userID}}
		result.Liked = true
		result.LikesCount = len(likedBy) + 1
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": postID}, update)
	if err != nil {
		return nil, persistenceError("toggle like", err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}

// IsLiked reports whether userID is in the post's liker set
func (r *MongoLikeRepository) IsLiked(ctx context.Context, postID, userID string) (bool, error) {
	likedBy, err := r.likedBy(ctx, postID)
	if err != nil {
		return false, err
	}
	return contains(likedBy, userID), nil
}

func (r *MongoLikeRepository) likedBy(ctx context.Context, postID string) ([]string, error) {
	var doc struct {
		LikedBy []string `bson:"likedBy"`
	}
	opts := options.FindOne().SetProjection(bson.M{"likedBy": 1})
	err := r.collection.FindOne(ctx, bson.M{"_id": postID}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, persistenceError("find post", err)
	}
	return doc.LikedBy, nil
}

func contains(set []string, id string) bool {
	for _, v := range set {
		if v == id {
			return true
		}
	}
	return false
}
