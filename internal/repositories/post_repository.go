package repositories

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/anonto42/linkup/backend/internal/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	postsCollection    = "posts"
	commentsCollection = "comments"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, authorID string, req models.CreatePostRequest) (*models.Post, error)
	GetPostByID(ctx context.Context, id, viewerID string) (*models.PostView, error)
	ListPosts(ctx context.Context, viewerID string, page Page) (*models.PostPage, error)
	ListPostsByAuthor(ctx context.Context, authorID, viewerID string, page Page) (*models.PostPage, error)
	SearchPosts(ctx context.Context, query, viewerID string, limit int64) ([]models.PostView, error)
	DeletePost(ctx context.Context, id, requesterID string) error
	AdminDeletePost(ctx context.Context, id string) error
	CountPosts(ctx context.Context) (int64, error)
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
	comments   *mongo.Collection
	clock      func() time.Time
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{
		db:         db,
		collection: db.Collection(postsCollection),
		comments:   db.Collection(commentsCollection),
		clock:      nowMillis,
	}
}

// postRow is one row of the post read pipeline.
type postRow struct {
	models.PostDocument `bson:",inline"`
	User                *models.UserDocument `bson:"user"`
	IsLiked             bool                 `bson:"isLiked"`
}

func (row postRow) view() models.PostView {
	return models.PostView{
		Post:    MapPost(row.PostDocument),
		User:    authorOf(row.User, row.UserID),
		IsLiked: row.IsLiked,
	}
}

// authorOf maps a joined author, falling back to a bare user for dangling ids.
func authorOf(doc *models.UserDocument, id string) models.User {
	if doc == nil || doc.ID == "" {
		return MapUser(models.UserDocument{ID: id})
	}
	return MapUser(*doc)
}

// viewerStages appends the author join and the viewer's like flag.
func viewerStages(viewerID string) mongo.Pipeline {
	liked := bson.M{"$literal": false}
	if viewerID != "" {
		liked = bson.M{"$in": bson.A{viewerID, bson.M{"$ifNull": bson.A{"$likedBy", bson.A{}}}}}
	}
	stages := lookupAuthor()
	return append(stages, bson.D{{Key: "$addFields", Value: bson.M{"isLiked": liked}}})
}

// CreatePost inserts a post with an empty liker set and zero comments
func (r *MongoPostRepository) CreatePost(ctx context.Context, authorID string, req models.CreatePostRequest) (*models.Post, error) {
	var missing []string
	if authorID == "" {
		missing = append(missing, "userId")
	}
	if !req.HasBody() {
		missing = append(missing, "content")
	}
	if len(missing) > 0 {
		return nil, newValidationError(missing...)
	}

	ts := r.clock()
	doc := models.PostDocument{
		ID:            uuid.NewString(),
		UserID:        authorID,
		Content:       req.Content,
		ImageURL:      req.ImageURL,
		VideoURL:      req.VideoURL,
		LikedBy:       []string{},
		CommentsCount: 0,
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return nil, persistenceError("insert post", err)
	}
	post := MapPost(doc)
	return &post, nil
}

// GetPostByID retrieves a single post joined with its author
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id, viewerID string) (*models.PostView, error) {
	pipeline := mongo.Pipeline{{{Key: "$match", Value: bson.M{"_id": id}}}}
	pipeline = append(pipeline, viewerStages(viewerID)...)

	rows, err := r.aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	view := rows[0].view()
	return &view, nil
}

// ListPosts returns the global feed newest first
func (r *MongoPostRepository) ListPosts(ctx context.Context, viewerID string, page Page) (*models.PostPage, error) {
	return r.listPage(ctx, nil, viewerID, page)
}

// ListPostsByAuthor returns one author's posts newest first
func (r *MongoPostRepository) ListPostsByAuthor(ctx context.Context, authorID, viewerID string, page Page) (*models.PostPage, error) {
	return r.listPage(ctx, bson.M{"userId": authorID}, viewerID, page)
}

func (r *MongoPostRepository) listPage(ctx context.Context, match bson.M, viewerID string, page Page) (*models.PostPage, error) {
	pipeline, err := pageStages(match, page)
	if err != nil {
		return nil, err
	}
	pipeline = append(pipeline, viewerStages(viewerID)...)

	rows, err := r.aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	rows, next := trimPage(rows, page, func(row postRow) (time.Time, string) { return row.CreatedAt, row.ID })

	items := make([]models.PostView, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.view())
	}
	return &models.PostPage{Items: items, NextCursor: next}, nil
}

// SearchPosts scans post content with a case-insensitive regex
func (r *MongoPostRepository) SearchPosts(ctx context.Context, query, viewerID string, limit int64) ([]models.PostView, error) {
	if query == "" {
		return []models.PostView{}, nil
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"content": primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}
	pipeline = append(pipeline, viewerStages(viewerID)...)

	rows, err := r.aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	items := make([]models.PostView, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.view())
	}
	return items, nil
}

// DeletePost removes a post owned by requesterID together with its comments.
// Nothing is cascaded unless the post row itself was deleted.
func (r *MongoPostRepository) DeletePost(ctx context.Context, id, requesterID string) error {
	return withTransaction(ctx, r.db, func(sc mongo.SessionContext) error {
		res, err := r.collection.DeleteOne(sc, bson.M{"_id": id, "userId": requesterID})
		if err != nil {
			return persistenceError("delete post", err)
		}
		if res.DeletedCount == 0 {
			return r.missingOrForeign(sc, id)
		}
		return r.cascadeComments(sc, id)
	})
}

// AdminDeletePost removes any post and its comments
func (r *MongoPostRepository) AdminDeletePost(ctx context.Context, id string) error {
	return withTransaction(ctx, r.db, func(sc mongo.SessionContext) error {
		res, err := r.collection.DeleteOne(sc, bson.M{"_id": id})
		if err != nil {
			return persistenceError("delete post", err)
		}
		if res.DeletedCount == 0 {
			return ErrNotFound
		}
		return r.cascadeComments(sc, id)
	})
}

// CountPosts counts all posts
func (r *MongoPostRepository) CountPosts(ctx context.Context) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, persistenceError("count posts", err)
	}
	return n, nil
}

func (r *MongoPostRepository) cascadeComments(ctx context.Context, postID string) error {
	if _, err := r.comments.DeleteMany(ctx, bson.M{"postId": postID}); err != nil {
		return persistenceError("delete comments", err)
	}
	return nil
}

// missingOrForeign tells a missing post apart from one owned by someone else.
func (r *MongoPostRepository) missingOrForeign(ctx context.Context, id string) error {
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Err()
	switch {
	case err == nil:
		return ErrOwnership
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	default:
		return persistenceError("find post", err)
	}
}

func (r *MongoPostRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]postRow, error) {
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, persistenceError("aggregate posts", err)
	}
	defer cursor.Close(ctx)

	var rows []postRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, persistenceError("decode posts", err)
	}
	return rows, nil
}
