package repositories

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/anonto42/linkup/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const usersCollection = "users"

// UserRepository defines the interface for user data operations
type UserRepository interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpsertUser(ctx context.Context, user models.UpsertUser) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, req models.UpdateProfileRequest) (*models.User, error)
	SearchUsers(ctx context.Context, query string, limit int64) ([]models.User, error)
	ListUsers(ctx context.Context, page Page) (*models.UserPage, error)
	SetStatus(ctx context.Context, id, status string) error
	CountUsers(ctx context.Context, status string) (int64, error)
	GetFriends(ctx context.Context, id string) ([]models.User, error)
	GetPendingRequests(ctx context.Context, id string) ([]models.User, error)
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
	clock      func() time.Time
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection(usersCollection), clock: nowMillis}
}

// GetUserByID retrieves a user by ID
func (r *MongoUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var doc models.UserDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, persistenceError("find user", err)
	}
	user := MapUser(doc)
	return &user, nil
}

// UpsertUser creates the user or refreshes the given fields of an existing
// one. The friend graph of an existing user is never overwritten. An email
// already held by another user is ErrConflict.
func (r *MongoUserRepository) UpsertUser(ctx context.Context, in models.UpsertUser) (*models.User, error) {
	if in.ID == "" {
		return nil, newValidationError("id")
	}

	ts := r.clock()
	set := bson.M{"updatedAt": ts}
	onInsert := bson.M{
		"friends":        bson.A{},
		"friendRequests": bson.A{},
	}
	setIfPresent(set, "email", normalizeEmail(in.Email))
	setIfPresent(set, "firstName", in.FirstName)
	setIfPresent(set, "lastName", in.LastName)
	setIfPresent(set, "profileImageUrl", in.ProfileImageURL)
	setIfPresent(set, "bio", in.Bio)
	setIfPresent(set, "title", in.Title)

	if in.Role != "" {
		set["role"] = in.Role
	} else {
		onInsert["role"] = models.RoleUser
	}
	if in.Status != "" {
		set["status"] = in.Status
	} else {
		onInsert["status"] = models.StatusActive
	}
	if in.CreatedAt.IsZero() {
		onInsert["createdAt"] = ts
	} else {
		onInsert["createdAt"] = in.CreatedAt
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var doc models.UserDocument
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": in.ID}, bson.M{"$set": set, "$setOnInsert": onInsert}, opts).Decode(&doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrConflict
		}
		return nil, persistenceError("upsert user", err)
	}
	user := MapUser(doc)
	return &user, nil
}

// UpdateProfile sets the non-empty profile fields of the request
func (r *MongoUserRepository) UpdateProfile(ctx context.Context, id string, req models.UpdateProfileRequest) (*models.User, error) {
	set := bson.M{"updatedAt": r.clock()}
	setIfPresent(set, "firstName", req.FirstName)
	setIfPresent(set, "lastName", req.LastName)
	setIfPresent(set, "profileImageUrl", req.ProfileImageURL)
	setIfPresent(set, "bio", req.Bio)
	setIfPresent(set, "title", req.Title)
	setIfPresent(set, "address", req.Address)
	setIfPresent(set, "gender", req.Gender)
	setIfPresent(set, "phoneNumber", req.PhoneNumber)
	if req.DateOfBirth != nil {
		set["dateOfBirth"] = req.DateOfBirth.UTC()
	}
	if req.OtherLinks != nil {
		set["otherLinks"] = req.OtherLinks
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc models.UserDocument
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, persistenceError("update profile", err)
	}
	user := MapUser(doc)
	return &user, nil
}

// SearchUsers scans names, email and title with a case-insensitive regex
func (r *MongoUserRepository) SearchUsers(ctx context.Context, query string, limit int64) ([]models.User, error) {
	if query == "" {
		return []models.User{}, nil
	}
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"firstName": pattern},
		bson.M{"lastName": pattern},
		bson.M{"email": pattern},
		bson.M{"title": pattern},
	}}
	opts := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.findUsers(ctx, filter, opts)
}

// ListUsers returns users newest first, one page at a time
func (r *MongoUserRepository) ListUsers(ctx context.Context, page Page) (*models.UserPage, error) {
	pipeline, err := pageStages(nil, page)
	if err != nil {
		return nil, err
	}
	cursor, err := r.collection.Aggregate(ctx, undatedLast(pipeline))
	if err != nil {
		return nil, persistenceError("list users", err)
	}
	defer cursor.Close(ctx)

	var docs []models.UserDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, persistenceError("decode users", err)
	}
	docs, next := trimPage(docs, page, func(d models.UserDocument) (time.Time, string) { return d.CreatedAt, d.ID })

	users := make([]models.User, 0, len(docs))
	for _, doc := range docs {
		users = append(users, MapUser(doc))
	}
	return &models.UserPage{Items: users, NextCursor: next}, nil
}

// SetStatus changes the moderation status of a user
func (r *MongoUserRepository) SetStatus(ctx context.Context, id, status string) error {
	switch status {
	case models.StatusActive, models.StatusSuspended, models.StatusBanned:
	default:
		return newValidationError("status")
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status, "updatedAt": r.clock()}})
	if err != nil {
		return persistenceError("set status", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CountUsers counts users, optionally restricted to one status. Users without
// a stored status count as active.
func (r *MongoUserRepository) CountUsers(ctx context.Context, status string) (int64, error) {
	filter := bson.M{}
	switch status {
	case "":
	case models.StatusActive:
		filter = bson.M{"status": bson.M{"$in": bson.A{models.StatusActive, nil}}}
	default:
		filter = bson.M{"status": status}
	}
	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, persistenceError("count users", err)
	}
	return count, nil
}

// GetFriends resolves the friends set of a user
func (r *MongoUserRepository) GetFriends(ctx context.Context, id string) ([]models.User, error) {
	user, err := r.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.findByIDs(ctx, user.Friends)
}

// GetPendingRequests resolves the friend request inbox of a user
func (r *MongoUserRepository) GetPendingRequests(ctx context.Context, id string) ([]models.User, error) {
	user, err := r.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.findByIDs(ctx, user.FriendRequests)
}

func (r *MongoUserRepository) findByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	return r.findUsers(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
}

func (r *MongoUserRepository) findUsers(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.User, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, persistenceError("find users", err)
	}
	defer cursor.Close(ctx)

	var docs []models.UserDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, persistenceError("decode users", err)
	}
	users := make([]models.User, 0, len(docs))
	for _, doc := range docs {
		users = append(users, MapUser(doc))
	}
	return users, nil
}

func setIfPresent(set bson.M, key, value string) {
	if value != "" {
		set[key] = value
	}
}
