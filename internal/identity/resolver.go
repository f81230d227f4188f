// Package identity resolves the legacy email-keyed author field on posts
// into a UID, so notification recipients are always addressed by UID.
package identity

import (
	"context"
	"errors"

	"github.com/anonto42/minired/backend/internal/models"
	"github.com/anonto42/minired/backend/internal/repositories"
)

// ErrNoMatch is returned when no user matches the author email. Callers
// skip the notification and let the primary action succeed.
var ErrNoMatch = errors.New("no user matches author email")

// Resolver resolves a post's author to a UID.
type Resolver struct {
	users repositories.UserRepository
}

// NewResolver creates a new Resolver
func NewResolver(users repositories.UserRepository) *Resolver {
	return &Resolver{users: users}
}

// ResolveAuthorUID returns the post's denormalized author UID when present,
// otherwise looks the author email up and returns the first match.
func (r *Resolver) ResolveAuthorUID(ctx context.Context, post *models.Post) (string, error) {
	if post.AuthorUID != "" {
		return post.AuthorUID, nil
	}
	if post.Author == "" {
		return "", ErrNoMatch
	}
	user, err := r.users.GetUserByEmail(ctx, post.Author)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", ErrNoMatch
		}
		return "", err
	}
	return user.UID, nil
}
