package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types, one per social action that can target another user.
const (
	NotificationTypeComment       = "comment"
	NotificationTypeLike          = "like"
	NotificationTypeMessage       = "message"
	NotificationTypeFriendRequest = "friend_request"
	NotificationTypeFriendAccept  = "friend_accept"
	NotificationTypeFriendRemove  = "friend_remove"
)

// Notification represents a notification document addressed to a user.
// To and From are always UIDs, never emails.
type Notification struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	To        string             `json:"to" bson:"to"`
	From      string             `json:"from" bson:"from"`
	Type      string             `json:"type" bson:"type"`
	Message   string             `json:"message" bson:"message"`
	Timestamp time.Time          `json:"timestamp" bson:"timestamp"`
	Read      bool               `json:"read" bson:"read"`
}
