package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/anonto42/minired/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryNotificationStore struct {
	created []models.Notification
	err     error
}

func (s *memoryNotificationStore) CreateNotification(_ context.Context, n *models.Notification) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, *n)
	return nil
}

func (s *memoryNotificationStore) GetByRecipient(context.Context, string, int64, int64) ([]models.Notification, error) {
	return nil, nil
}

func (s *memoryNotificationStore) GetUnreadCount(context.Context, string) (int64, error) {
	return 0, nil
}

func (s *memoryNotificationStore) MarkAsRead(context.Context, string, string) error { return nil }

func (s *memoryNotificationStore) MarkAllAsRead(context.Context, string) error { return nil }

type recordingPublisher struct {
	published map[string][][]byte
	err       error
}

func (p *recordingPublisher) PublishUser(_ context.Context, uid string, payload []byte) error {
	if p.err != nil {
		return p.err
	}
	if p.published == nil {
		p.published = make(map[string][][]byte)
	}
	p.published[uid] = append(p.published[uid], payload)
	return nil
}

func TestEmitStoresAndPublishes(t *testing.T) {
	store := &memoryNotificationStore{}
	publisher := &recordingPublisher{}
	e := NewEmitter(store, publisher)

	e.Emit(context.Background(), "u2", "u1", models.NotificationTypeLike, "u1 liked your post")

	require.Len(t, store.created, 1)
	assert.Equal(t, "u2", store.created[0].To)
	assert.Equal(t, "u1", store.created[0].From)
	assert.Equal(t, models.NotificationTypeLike, store.created[0].Type)

	require.Len(t, publisher.published["u2"], 1)
	var decoded models.Notification
	require.NoError(t, json.Unmarshal(publisher.published["u2"][0], &decoded))
	assert.Equal(t, "u1 liked your post", decoded.Message)
}

func TestEmitSkipsSelfNotification(t *testing.T) {
	store := &memoryNotificationStore{}
	e := NewEmitter(store, nil)

	e.Emit(context.Background(), "u1", "u1", models.NotificationTypeComment, "noise")
	e.Emit(context.Background(), "", "u1", models.NotificationTypeComment, "noise")

	assert.Empty(t, store.created)
}

func TestEmitSwallowsStoreErrors(t *testing.T) {
	store := &memoryNotificationStore{err: errors.New("store down")}
	publisher := &recordingPublisher{}
	e := NewEmitter(store, publisher)

	// Must not panic or surface the error; nothing is published either.
	e.Emit(context.Background(), "u2", "u1", models.NotificationTypeMessage, "hi")

	assert.Empty(t, publisher.published)
}

func TestEmitSwallowsPublishErrors(t *testing.T) {
	store := &memoryNotificationStore{}
	publisher := &recordingPublisher{err: errors.New("redis down")}
	e := NewEmitter(store, publisher)

	e.Emit(context.Background(), "u2", "u1", models.NotificationTypeMessage, "hi")

	// The record is still stored even when the push fails.
	assert.Len(t, store.created, 1)
}

func TestEmitWithoutPublisher(t *testing.T) {
	store := &memoryNotificationStore{}
	e := NewEmitter(store, nil)

	e.Emit(context.Background(), "u2", "u1", models.NotificationTypeComment, "hi")

	assert.Len(t, store.created, 1)
}
