package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// withTransaction runs fn inside one session transaction. Any error returned
// by fn aborts the transaction and is passed back unchanged.
func withTransaction(ctx context.Context, db *mongo.Database, fn func(sc mongo.SessionContext) error) error {
	session, err := db.Client().StartSession()
	if err != nil {
		return persistenceError("start session", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err == nil {
		return nil
	}
	if isDomainError(err) {
		return err
	}
	return persistenceError("transaction", err)
}

func isDomainError(err error) bool {
	for _, target := range []error{ErrNotFound, ErrConflict, ErrOwnership, ErrTransactionAborted, ErrValidation, ErrPersistence} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// lookupAuthor joins the author document of userId into the "user" field.
// Rows whose author is missing are kept with an empty user.
func lookupAuthor() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         usersCollection,
			"localField":   "userId",
			"foreignField": "_id",
			"as":           "user",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$user", "preserveNullAndEmptyArrays": true}}},
	}
}

func nowMillis() time.Time {
	// Mongo stores milliseconds; truncating keeps cursors and equality exact.
	return time.Now().UTC().Truncate(time.Millisecond)
}
