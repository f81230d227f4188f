// Package feed implements post creation, the like toggle and comment
// submission, each followed by its notification side effect.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/anonto42/minired/backend/internal/identity"
	"github.com/anonto42/minired/backend/internal/models"
	"github.com/anonto42/minired/backend/internal/relationship"
	"github.com/anonto42/minired/backend/internal/repositories"
	"github.com/anonto42/minired/backend/pkg/storage"
	"github.com/sirupsen/logrus"
)

// ErrEmptyPost is returned when a post has neither text nor image
var ErrEmptyPost = errors.New("post needs text or an image")

// ErrEmptyComment is returned when a comment is blank
var ErrEmptyComment = errors.New("comment text is empty")

// Service handles feed mutations. Notification delivery is best-effort:
// a failed author lookup or emit never fails the like or comment itself.
type Service struct {
	posts    repositories.PostRepository
	resolver *identity.Resolver
	emitter  relationship.Notifier
	blobs    storage.BlobStore
	log      *logrus.Entry
}

// NewService creates a new feed Service. blobs may be nil when image
// uploads are disabled.
func NewService(posts repositories.PostRepository, resolver *identity.Resolver, emitter relationship.Notifier, blobs storage.BlobStore) *Service {
	return &Service{
		posts:    posts,
		resolver: resolver,
		emitter:  emitter,
		blobs:    blobs,
		log:      logrus.WithField("component", "feed"),
	}
}

// CreatePost uploads the optional image to the blob store and inserts the
// post with empty likes and comments.
func (s *Service) CreatePost(ctx context.Context, author models.Actor, text string, image io.Reader, imageName string) (*models.Post, error) {
	text = strings.TrimSpace(text)
	if text == "" && image == nil {
		return nil, ErrEmptyPost
	}

	var imageURL string
	if image != nil {
		if s.blobs == nil {
			return nil, errors.New("image uploads are not configured")
		}
		url, err := s.blobs.Upload(ctx, image, "posts", imageName)
		if err != nil {
			return nil, fmt.Errorf("failed to upload post image: %w", err)
		}
		imageURL = url
	}

	post := &models.Post{
		Author:    author.Email,
		AuthorUID: author.UID,
		Text:      text,
		Image:     imageURL,
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// ToggleLike likes the post when the user has not liked it, and removes the
// like when they have. Returns whether the post ends up liked. Only the
// transition into liked notifies the author.
func (s *Service) ToggleLike(ctx context.Context, user models.Actor, postID string) (bool, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return false, err
	}

	if slices.Contains(post.Likes, user.Email) {
		if err := s.posts.RemoveLike(ctx, postID, user.Email); err != nil {
			return true, err
		}
		return false, nil
	}

	if err := s.posts.AddLike(ctx, postID, user.Email); err != nil {
		return false, err
	}
	s.notifyAuthor(ctx, post, user, models.NotificationTypeLike,
		fmt.Sprintf("%s liked your post", user.Email))
	return true, nil
}

// AddComment appends exactly one comment to the post's comment list and
// notifies the author.
func (s *Service) AddComment(ctx context.Context, user models.Actor, postID, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyComment
	}

	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{Author: user.Email, Text: text}
	if err := s.posts.AppendComment(ctx, postID, comment); err != nil {
		return nil, err
	}

	s.notifyAuthor(ctx, post, user, models.NotificationTypeComment,
		fmt.Sprintf("%s commented on your post", user.Email))
	return &comment, nil
}

// List returns the feed newest first
func (s *Service) List(ctx context.Context, skip, limit int64) ([]models.Post, error) {
	return s.posts.GetAllPosts(ctx, skip, limit)
}

// notifyAuthor resolves the post author to a UID and emits. An unresolvable
// author skips the notification silently; the emitter itself suppresses
// self-notification when the actor authored the post.
func (s *Service) notifyAuthor(ctx context.Context, post *models.Post, user models.Actor, notificationType, message string) {
	authorUID, err := s.resolver.ResolveAuthorUID(ctx, post)
	if err != nil {
		if !errors.Is(err, identity.ErrNoMatch) {
			s.log.WithField("post", post.ID.Hex()).WithError(err).Warn("author lookup failed, skipping notification")
		}
		return
	}
	s.emitter.Emit(ctx, authorUID, user.UID, notificationType, message)
}
