package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// FriendshipRepository manages pending requests and the symmetric friends sets
type FriendshipRepository interface {
	SendFriendRequest(ctx context.Context, fromID, toID string) (bool, error)
	AcceptFriendRequest(ctx context.Context, userID, requesterID string) error
	RejectFriendRequest(ctx context.Context, userID, requesterID string) (bool, error)
	RemoveFriend(ctx context.Context, userID, friendID string) error
}

// MongoFriendshipRepository implements FriendshipRepository on the users
// collection
type MongoFriendshipRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
}

// NewMongoFriendshipRepository creates a new MongoFriendshipRepository
func NewMongoFriendshipRepository(db *mongo.Database) *MongoFriendshipRepository {
	return &MongoFriendshipRepository{db: db, collection: db.Collection(usersCollection)}
}

// SendFriendRequest puts fromID into toID's inbox unless a request is already
// pending or the two are already friends. A false result is a no-op.
func (r *MongoFriendshipRepository) SendFriendRequest(ctx context.Context, fromID, toID string) (bool, error) {
	if fromID == "" || toID == "" || fromID == toID {
		return false, newValidationError("userId")
	}
	filter := bson.M{
		"_id":            toID,
		"friendRequests": bson.M{"$ne": fromID},
		"friends":        bson.M{"$ne": fromID},
	}
	res, err := r.collection.UpdateOne(ctx, filter, bson.M{"$addToSet": bson.M{"friendRequests": fromID}})
	if err != nil {
		return false, persistenceError("send friend request", err)
	}
	return res.ModifiedCount > 0, nil
}

// AcceptFriendRequest moves requesterID from userID's inbox into both friends
// sets. Either all three writes commit or none do.
func (r *MongoFriendshipRepository) AcceptFriendRequest(ctx context.Context, userID, requesterID string) error {
	return withTransaction(ctx, r.db, func(sc mongo.SessionContext) error {
		steps := []struct {
			filter bson.M
			update bson.M
		}{
			{bson.M{"_id": userID, "friendRequests": requesterID}, bson.M{"$pull": bson.M{"friendRequests": requesterID}}},
			{bson.M{"_id": userID}, bson.M{"$addToSet": bson.M{"friends": requesterID}}},
			{bson.M{"_id": requesterID}, bson.M{"$addToSet": bson.M{"friends": userID}}},
		}
		for _, step := range steps {
			if err := r.mustModify(sc, step.filter, step.update); err != nil {
				return err
			}
		}
		return nil
	})
}

// RejectFriendRequest drops requesterID from userID's inbox
func (r *MongoFriendshipRepository) RejectFriendRequest(ctx context.Context, userID, requesterID string) (bool, error) {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$pull": bson.M{"friendRequests": requesterID}})
	if err != nil {
		return false, persistenceError("reject friend request", err)
	}
	return res.ModifiedCount > 0, nil
}

// RemoveFriend removes both symmetric friend entries in one transaction
func (r *MongoFriendshipRepository) RemoveFriend(ctx context.Context, userID, friendID string) error {
	return withTransaction(ctx, r.db, func(sc mongo.SessionContext) error {
		if err := r.mustModify(sc, bson.M{"_id": userID}, bson.M{"$pull": bson.M{"friends": friendID}}); err != nil {
			return err
		}
		return r.mustModify(sc, bson.M{"_id": friendID}, bson.M{"$pull": bson.M{"friends": userID}})
	})
}

// mustModify aborts the surrounding transaction when the update changes nothing.
func (r *MongoFriendshipRepository) mustModify(ctx context.Context, filter, update bson.M) error {
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return persistenceError("update friends", err)
	}
	if res.ModifiedCount == 0 {
		return ErrTransactionAborted
	}
	return nil
}
