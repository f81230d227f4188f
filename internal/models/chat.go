package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatMessage represents one message in a chat thread. Messages are
// append-only; the thread key groups the conversation between two users
// independently of who opened it.
type ChatMessage struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ThreadKey string             `json:"thread_key" bson:"threadKey"`
	Sender    string             `json:"sender" bson:"sender"`     // sender UID
	Receiver  string             `json:"receiver" bson:"receiver"` // receiver UID
	Text      string             `json:"text" bson:"text"`
	CreatedAt time.Time          `json:"created_at" bson:"createdAt"`
}

// SendMessageRequest defines the request body for sending a chat message
type SendMessageRequest struct {
	Text string `json:"text" validate:"required,min=1,max=2000"`
}
