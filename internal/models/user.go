package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User represents a user document in MongoDB, keyed by the stable UID.
// The friends/incomingRequests/outgoingRequests arrays are maintained with
// $addToSet/$pull so they behave as sets.
type User struct {
	UID              string    `json:"uid" bson:"_id"`
	Name             string    `json:"name" bson:"name"`
	LastName         string    `json:"last_name" bson:"lastName"`
	BirthDate        string    `json:"birth_date" bson:"birthDate"`
	Gender           string    `json:"gender" bson:"gender"`
	Email            string    `json:"email" bson:"email"`
	Password         string    `json:"-" bson:"password,omitempty"` // bcrypt hash, empty for Firebase-only accounts
	Friends          []string  `json:"friends" bson:"friends,omitempty"`
	IncomingRequests []string  `json:"incoming_requests" bson:"incomingRequests,omitempty"`
	OutgoingRequests []string  `json:"outgoing_requests" bson:"outgoingRequests,omitempty"`
	Online           bool      `json:"online" bson:"online"`
	LastActive       time.Time `json:"last_active" bson:"lastActive,omitempty"`
	CreatedAt        time.Time `json:"created_at" bson:"createdAt"`
}

// UserCompact is the projection returned in friend lists and search results.
type UserCompact struct {
	UID      string `json:"uid"`
	Name     string `json:"name"`
	LastName string `json:"last_name"`
	Email    string `json:"email"`
	Online   bool   `json:"online"`
}

// ToCompact strips private fields from a user record.
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		UID:      u.UID,
		Name:     u.Name,
		LastName: u.LastName,
		Email:    u.Email,
		Online:   u.Online,
	}
}

// Actor identifies the authenticated user performing an action. Email is
// carried alongside the UID because notification messages and the legacy
// like/comment keying are email-based.
type Actor struct {
	UID   string
	Email string
}

// RegisterRequest defines the request body for local account creation
type RegisterRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=50"`
	LastName  string `json:"last_name" validate:"required,min=1,max=50"`
	BirthDate string `json:"birth_date" validate:"required,datetime=2006-01-02"`
	Gender    string `json:"gender" validate:"required,oneof=male female other"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
}

// SignInRequest defines the request body for email/password login
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// FirebaseLoginRequest defines the request body for Firebase token exchange
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}
