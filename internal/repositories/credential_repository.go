package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anonto42/linkup/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const credentialsCollection = "auth"

// CredentialRepository stores login credentials apart from user profiles
type CredentialRepository interface {
	CreateCredential(ctx context.Context, userID, email, passwordHash string) error
	GetCredentialByEmail(ctx context.Context, email string) (*models.CredentialDocument, error)
	DeleteCredential(ctx context.Context, userID string) error
}

// MongoCredentialRepository implements CredentialRepository for MongoDB
type MongoCredentialRepository struct {
	collection *mongo.Collection
	clock      func() time.Time
}

// NewMongoCredentialRepository creates a new MongoCredentialRepository
func NewMongoCredentialRepository(db *mongo.Database) *MongoCredentialRepository {
	return &MongoCredentialRepository{collection: db.Collection(credentialsCollection), clock: nowMillis}
}

// CreateCredential inserts the credential pair. A taken email is ErrConflict.
func (r *MongoCredentialRepository) CreateCredential(ctx context.Context, userID, email, passwordHash string) error {
	email = normalizeEmail(email)
	var missing []string
	if userID == "" {
		missing = append(missing, "userId")
	}
	if email == "" {
		missing = append(missing, "email")
	}
	if passwordHash == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return newValidationError(missing...)
	}

	n, err := r.collection.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return persistenceError("check email", err)
	}
	if n > 0 {
		return ErrConflict
	}

	ts := r.clock()
	_, err = r.collection.InsertOne(ctx, models.CredentialDocument{
		UserID:       userID,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		return persistenceError("insert credential", err)
	}
	return nil
}

// GetCredentialByEmail looks up the credential pair for an email
func (r *MongoCredentialRepository) GetCredentialByEmail(ctx context.Context, email string) (*models.CredentialDocument, error) {
	var doc models.CredentialDocument
	err := r.collection.FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, persistenceError("find credential", err)
	}
	return &doc, nil
}

// DeleteCredential removes the credential pair of a user
func (r *MongoCredentialRepository) DeleteCredential(ctx context.Context, userID string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"userId": userID})
	if err != nil {
		return persistenceError("delete credential", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
