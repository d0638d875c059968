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

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, postID, authorID, content string) (*models.Comment, error)
	ListComments(ctx context.Context, postID string) ([]models.CommentView, error)
	DeleteComment(ctx context.Context, id, requesterID string) error
	CountComments(ctx context.Context) (int64, error)
}

// MongoCommentRepository implements CommentRepository for MongoDB. The
// parent post's commentsCount moves in the same transaction as the comment.
type MongoCommentRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
	posts      *mongo.Collection
	clock      func() time.Time
}

// NewMongoCommentRepository creates a new MongoCommentRepository
func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{
		db:         db,
		collection: db.Collection(commentsCollection),
		posts:      db.Collection(postsCollection),
		clock:      nowMillis,
	}
}

type commentRow struct {
	models.CommentDocument `bson:",inline"`
	User                   *models.UserDocument `bson:"user"`
}

// CreateComment inserts a comment and bumps the parent counter by one
func (r *MongoCommentRepository) CreateComment(ctx context.Context, postID, authorID, content string) (*models.Comment, error) {
	var missing []string
	if postID == "" {
		missing = append(missing, "postId")
	}
	if authorID == "" {
		missing = append(missing, "userId")
	}
	if content == "" {
		missing = append(missing, "content")
	}
	if len(missing) > 0 {
		return nil, newValidationError(missing...)
	}

	doc := models.CommentDocument{
		ID:        uuid.NewString(),
		PostID:    postID,
		UserID:    authorID,
		Content:   content,
		CreatedAt: r.clock(),
	}
	err := withTransaction(ctx, r.db, func(sc mongo.SessionContext) error {
		if err := r.bumpCount(sc, postID, 1); err != nil {
			return err
		}
		if _, err := r.collection.InsertOne(sc, doc); err != nil {
			return persistenceError("insert comment", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	comment := MapComment(doc)
	return &comment, nil
}

// ListComments returns the comments of a post newest first with their authors
func (r *MongoCommentRepository) ListComments(ctx context.Context, postID string) ([]models.CommentView, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"postId": postID}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}},
	}
	pipeline = append(pipeline, lookupAuthor()...)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, persistenceError("aggregate comments", err)
	}
	defer cursor.Close(ctx)

	var rows []commentRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, persistenceError("decode comments", err)
	}
	views := make([]models.CommentView, 0, len(rows))
	for _, row := range rows {
		views = append(views, models.CommentView{
			Comment: MapComment(row.CommentDocument),
			User:    authorOf(row.User, row.UserID),
		})
	}
	return views, nil
}

// DeleteComment removes a comment written by requesterID and decrements the
// parent counter
func (r *MongoCommentRepository) DeleteComment(ctx context.Context, id, requesterID string) error {
	var doc models.CommentDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return persistenceError("find comment", err)
	}
	if doc.UserID != requesterID {
		return ErrOwnership
	}

	return withTransaction(ctx, r.db, func(sc mongo.SessionContext) error {
		res, err := r.collection.DeleteOne(sc, bson.M{"_id": id, "userId": requesterID})
		if err != nil {
			return persistenceError("delete comment", err)
		}
		if res.DeletedCount == 0 {
			return ErrNotFound
		}
		// The post may already be gone with its comments; that is not an error.
		if err := r.bumpCount(sc, doc.PostID, -1); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		return nil
	})
}

// CountComments counts all comments
func (r *MongoCommentRepository) CountComments(ctx context.Context) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, persistenceError("count comments", err)
	}
	return n, nil
}

func (r *MongoCommentRepository) bumpCount(ctx context.Context, postID string, delta int) error {
	res, err := r.posts.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{"$inc": bson.M{"commentsCount": delta}})
	if err != nil {
		return persistenceError("update comment count", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
