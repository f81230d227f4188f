package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/minired/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("not found")

// UserRepository defines the interface for user data operations.
//
// The relationship mutations are single-document set operations: $addToSet
// creates the array field when the record has none yet, and $pull on an
// absent member is a no-op, so every mutation is retry-safe on its own.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUID(ctx context.Context, uid string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUsers(ctx context.Context) ([]models.User, error)
	GetUsersByUIDs(ctx context.Context, uids []string) ([]models.User, error)

	AddOutgoingRequest(ctx context.Context, uid, target string) error
	RemoveOutgoingRequest(ctx context.Context, uid, target string) error
	AddIncomingRequest(ctx context.Context, uid, target string) error
	RemoveIncomingRequest(ctx context.Context, uid, target string) error
	PromoteIncomingToFriend(ctx context.Context, uid, target string) error
	PromoteOutgoingToFriend(ctx context.Context, uid, target string) error
	RemoveFriend(ctx context.Context, uid, target string) error

	SetPresence(ctx context.Context, uid string, online bool) error
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

// CreateUser creates a new user document keyed by UID
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	user.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("user %s already exists", user.UID)
	}
	return err
}

// GetUserByUID retrieves a user document by UID
func (r *MongoUserRepository) GetUserByUID(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": uid}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves the first user matching an email address.
// Duplicate emails are not expected and not disambiguated.
func (r *MongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	err := r.collection.FindOne(ctx, bson.M{"email": email}, opts).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUsers retrieves all user documents
func (r *MongoUserRepository) GetUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	cursor, err := r.collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUsersByUIDs retrieves the user documents for a set of UIDs
func (r *MongoUserRepository) GetUsersByUIDs(ctx context.Context, uids []string) ([]models.User, error) {
	var users []models.User
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": uids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// addToSet adds member to a relationship array. Upsert covers records
// written before the relationship fields existed.
func (r *MongoUserRepository) addToSet(ctx context.Context, uid, field, member string) error {
	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": uid},
		bson.M{"$addToSet": bson.M{field: member}}, opts)
	return err
}

// pull removes member from a relationship array; absent members are a no-op
func (r *MongoUserRepository) pull(ctx context.Context, uid, field, member string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": uid},
		bson.M{"$pull": bson.M{field: member}})
	return err
}

// AddOutgoingRequest records that uid has requested friendship with target
func (r *MongoUserRepository) AddOutgoingRequest(ctx context.Context, uid, target string) error {
	return r.addToSet(ctx, uid, "outgoingRequests", target)
}

// RemoveOutgoingRequest withdraws uid's request toward target
func (r *MongoUserRepository) RemoveOutgoingRequest(ctx context.Context, uid, target string) error {
	return r.pull(ctx, uid, "outgoingRequests", target)
}

// AddIncomingRequest records that target has requested friendship with uid
func (r *MongoUserRepository) AddIncomingRequest(ctx context.Context, uid, target string) error {
	return r.addToSet(ctx, uid, "incomingRequests", target)
}

// RemoveIncomingRequest drops target's request toward uid
func (r *MongoUserRepository) RemoveIncomingRequest(ctx context.Context, uid, target string) error {
	return r.pull(ctx, uid, "incomingRequests", target)
}

// PromoteIncomingToFriend moves target from uid's incoming requests into
// uid's friends in a single document update.
func (r *MongoUserRepository) PromoteIncomingToFriend(ctx context.Context, uid, target string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": uid}, bson.M{
		"$pull":     bson.M{"incomingRequests": target},
		"$addToSet": bson.M{"friends": target},
	})
	return err
}

// PromoteOutgoingToFriend moves target from uid's outgoing requests into
// uid's friends in a single document update.
func (r *MongoUserRepository) PromoteOutgoingToFriend(ctx context.Context, uid, target string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": uid}, bson.M{
		"$pull":     bson.M{"outgoingRequests": target},
		"$addToSet": bson.M{"friends": target},
	})
	return err
}

// RemoveFriend removes target from uid's friend set
func (r *MongoUserRepository) RemoveFriend(ctx context.Context, uid, target string) error {
	return r.pull(ctx, uid, "friends", target)
}

// SetPresence updates the online flag and lastActive timestamp
func (r *MongoUserRepository) SetPresence(ctx context.Context, uid string, online bool) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": uid}, bson.M{
		"$set": bson.M{"online": online, "lastActive": time.Now()},
	})
	return err
}
