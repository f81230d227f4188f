package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/minired/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	GetByRecipient(ctx context.Context, uid string, skip, limit int64) ([]models.Notification, error)
	GetUnreadCount(ctx context.Context, uid string) (int64, error)
	MarkAsRead(ctx context.Context, uid, notificationID string) error
	MarkAllAsRead(ctx context.Context, uid string) error
}

type mongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a new Mongo-backed NotificationRepository
func NewMongoNotificationRepository(db *mongo.Database) NotificationRepository {
	return &mongoNotificationRepository{collection: db.Collection("notifications")}
}

func (r *mongoNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	notification.ID = primitive.NewObjectID()
	notification.Timestamp = time.Now()
	notification.Read = false
	_, err := r.collection.InsertOne(ctx, notification)
	return err
}

func (r *mongoNotificationRepository) GetByRecipient(ctx context.Context, uid string, skip, limit int64) ([]models.Notification, error) {
	var notifications []models.Notification
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"to": uid}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *mongoNotificationRepository) GetUnreadCount(ctx context.Context, uid string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"to": uid, "read": false})
}

func (r *mongoNotificationRepository) MarkAsRead(ctx context.Context, uid, notificationID string) error {
	objID, err := primitive.ObjectIDFromHex(notificationID)
	if err != nil {
		return fmt.Errorf("invalid notification ID format: %w", err)
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID, "to": uid},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoNotificationRepository) MarkAllAsRead(ctx context.Context, uid string) error {
	_, err := r.collection.UpdateMany(ctx, bson.M{"to": uid, "read": false},
		bson.M{"$set": bson.M{"read": true}})
	return err
}
