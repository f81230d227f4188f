package presence

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/minired/backend/internal/models"
	"github.com/anonto42/minired/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// presenceUserRepo records SetPresence calls and serves the document flag
type presenceUserRepo struct {
	repositories.UserRepository
	online map[string]bool
}

func newPresenceUserRepo() *presenceUserRepo {
	return &presenceUserRepo{online: make(map[string]bool)}
}

func (r *presenceUserRepo) SetPresence(_ context.Context, uid string, online bool) error {
	r.online[uid] = online
	return nil
}

func (r *presenceUserRepo) GetUserByUID(_ context.Context, uid string) (*models.User, error) {
	online, ok := r.online[uid]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &models.User{UID: uid, Online: online}, nil
}

func TestOnlineOfflineUpdatesUserDocument(t *testing.T) {
	repo := newPresenceUserRepo()
	tracker := NewTracker(repo, nil, time.Minute)
	ctx := context.Background()

	require.NoError(t, tracker.Online(ctx, "u1"))
	assert.True(t, repo.online["u1"])

	online, err := tracker.IsOnline(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, online)

	require.NoError(t, tracker.Offline(ctx, "u1"))
	assert.False(t, repo.online["u1"])

	online, err = tracker.IsOnline(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, online)
}

func TestIsOnlineUnknownUser(t *testing.T) {
	tracker := NewTracker(newPresenceUserRepo(), nil, time.Minute)

	_, err := tracker.IsOnline(context.Background(), "ghost")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestTouchWithoutRedisIsNoop(t *testing.T) {
	tracker := NewTracker(newPresenceUserRepo(), nil, time.Minute)

	// Must not panic when Redis is not configured.
	tracker.Touch(context.Background(), "u1")
}

func TestNewTrackerDefaultsTTL(t *testing.T) {
	tracker := NewTracker(newPresenceUserRepo(), nil, 0)
	assert.Equal(t, 5*time.Minute, tracker.ttl)
}
