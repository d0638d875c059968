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

const storiesCollection = "stories"

// StoryTTL is how long a story stays visible after creation.
const StoryTTL = 24 * time.Hour

// StoryRepository defines the interface for story data operations
type StoryRepository interface {
	CreateStory(ctx context.Context, authorID string, req models.CreateStoryRequest) (*models.Story, error)
	ListStories(ctx context.Context, viewerID string) ([]models.StoryView, error)
	DeleteStory(ctx context.Context, id, requesterID string) error
	PurgeExpiredStories(ctx context.Context) (int64, error)
	CountActiveStories(ctx context.Context) (int64, error)
}

// MongoStoryRepository implements StoryRepository for MongoDB
type MongoStoryRepository struct {
	collection *mongo.Collection
	clock      func() time.Time
}

// NewMongoStoryRepository creates a new MongoStoryRepository
func NewMongoStoryRepository(db *mongo.Database) *MongoStoryRepository {
	return &MongoStoryRepository{collection: db.Collection(storiesCollection), clock: nowMillis}
}

type storyRow struct {
	models.StoryDocument `bson:",inline"`
	User                 *models.UserDocument `bson:"user"`
}

// CreateStory inserts a story that expires StoryTTL after its creation
func (r *MongoStoryRepository) CreateStory(ctx context.Context, authorID string, req models.CreateStoryRequest) (*models.Story, error) {
	if authorID == "" {
		return nil, newValidationError("userId")
	}
	if req.Content == "" && req.ImageURL == "" && req.VideoURL == "" {
		return nil, newValidationError("content", "imageUrl", "videoUrl")
	}

	ts := r.clock()
	doc := models.StoryDocument{
		ID:        uuid.NewString(),
		UserID:    authorID,
		Content:   req.Content,
		ImageURL:  req.ImageURL,
		VideoURL:  req.VideoURL,
		ExpiresAt: ts.Add(StoryTTL),
		CreatedAt: ts,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return nil, persistenceError("insert story", err)
	}
	story := MapStory(doc)
	return &story, nil
}

// ListStories returns unexpired stories newest first. The viewer does not
// narrow the result; every active story is visible to everyone.
func (r *MongoStoryRepository) ListStories(ctx context.Context, viewerID string) ([]models.StoryView, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"expiresAt": bson.M{"$gt": r.clock()}}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}},
	}
	pipeline = append(pipeline, lookupAuthor()...)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, persistenceError("aggregate stories", err)
	}
	defer cursor.Close(ctx)

	var rows []storyRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, persistenceError("decode stories", err)
	}
	views := make([]models.StoryView, 0, len(rows))
	for _, row := range rows {
		views = append(views, models.StoryView{
			Story: MapStory(row.StoryDocument),
			User:  authorOf(row.User, row.UserID),
		})
	}
	return views, nil
}

// DeleteStory removes a story owned by requesterID
func (r *MongoStoryRepository) DeleteStory(ctx context.Context, id, requesterID string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "userId": requesterID})
	if err != nil {
		return persistenceError("delete story", err)
	}
	if res.DeletedCount > 0 {
		return nil
	}

	err = r.collection.FindOne(ctx, bson.M{"_id": id}).Err()
	switch {
	case err == nil:
		return ErrOwnership
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	default:
		return persistenceError("find story", err)
	}
}

// PurgeExpiredStories deletes stories whose expiry has passed
func (r *MongoStoryRepository) PurgeExpiredStories(ctx context.Context) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"expiresAt": bson.M{"$lte": r.clock()}})
	if err != nil {
		return 0, persistenceError("purge stories", err)
	}
	return res.DeletedCount, nil
}

// CountActiveStories counts stories that have not expired
func (r *MongoStoryRepository) CountActiveStories(ctx context.Context) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"expiresAt": bson.M{"$gt": r.clock()}})
	if err != nil {
		return 0, persistenceError("count stories", err)
	}
	return n, nil
}
