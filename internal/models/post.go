package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a feed post stored in MongoDB.
//
// Likes are keyed by liker email and comments carry the author's email,
// while relationships key on UID. The mismatch is legacy from the first
// schema version; AuthorUID is the denormalized key every notification
// flow prefers, with an email lookup as fallback for old documents.
type Post struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Author    string             `json:"author" bson:"author"`        // author email
	AuthorUID string             `json:"author_uid" bson:"authorUid"` // may be empty on old documents
	Text      string             `json:"text" bson:"text"`
	Image     string             `json:"image,omitempty" bson:"image,omitempty"`
	Likes     []string           `json:"likes" bson:"likes"` // liker emails, set semantics
	Comments  []Comment          `json:"comments" bson:"comments"`
	CreatedAt time.Time          `json:"created_at" bson:"createdAt"`
}

// Comment is an embedded post comment. Append-only, no id or timestamp.
type Comment struct {
	Author string `json:"author" bson:"author"` // commenter email
	Text   string `json:"text" bson:"text"`
}

// CreatePostRequest defines the request body for creating a new post.
// The image arrives as a separate multipart part and is uploaded to the
// blob store before the post document is written.
type CreatePostRequest struct {
	Text string `json:"text" form:"text" validate:"max=1000"`
}

// CreateCommentRequest defines the request body for commenting on a post
type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=500"`
}
