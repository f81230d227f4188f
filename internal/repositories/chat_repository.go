package repositories

import (
	"context"
	"time"

	"github.com/anonto42/minired/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ChatRepository defines the interface for chat message operations
type ChatRepository interface {
	AppendMessage(ctx context.Context, msg *models.ChatMessage) error
	GetMessages(ctx context.Context, threadKey string, limit int64) ([]models.ChatMessage, error)
	// WatchThread streams messages inserted into the thread until ctx is
	// cancelled. The returned channel is closed when the stream ends.
	WatchThread(ctx context.Context, threadKey string) (<-chan models.ChatMessage, error)
}

// MongoChatRepository implements ChatRepository for MongoDB
type MongoChatRepository struct {
	collection *mongo.Collection
}

// NewMongoChatRepository creates a new MongoChatRepository
func NewMongoChatRepository(db *mongo.Database) *MongoChatRepository {
	return &MongoChatRepository{collection: db.Collection("chat_messages")}
}

// AppendMessage appends a message to its thread
func (r *MongoChatRepository) AppendMessage(ctx context.Context, msg *models.ChatMessage) error {
	msg.ID = primitive.NewObjectID()
	msg.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, msg)
	return err
}

// GetMessages retrieves a thread's messages ordered oldest first
func (r *MongoChatRepository) GetMessages(ctx context.Context, threadKey string, limit int64) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	findOptions := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"threadKey": threadKey}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// WatchThread opens a change stream filtered to inserts for one thread key
func (r *MongoChatRepository) WatchThread(ctx context.Context, threadKey string) (<-chan models.ChatMessage, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"operationType":          "insert",
			"fullDocument.threadKey": threadKey,
		}}},
	}
	stream, err := r.collection.Watch(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	out := make(chan models.ChatMessage)
	go func() {
		defer close(out)
		defer stream.Close(context.Background())
		for stream.Next(ctx) {
			var event struct {
				FullDocument models.ChatMessage `bson:"fullDocument"`
			}
			if err := stream.Decode(&event); err != nil {
				continue
			}
			select {
			case out <- event.FullDocument:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
