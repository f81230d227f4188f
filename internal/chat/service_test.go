package chat

import (
	"context"
	"testing"

	"github.com/anonto42/minired/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryChatRepo struct {
	messages []models.ChatMessage
}

func (r *memoryChatRepo) AppendMessage(_ context.Context, msg *models.ChatMessage) error {
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *memoryChatRepo) GetMessages(_ context.Context, threadKey string, limit int64) ([]models.ChatMessage, error) {
	var out []models.ChatMessage
	for _, msg := range r.messages {
		if msg.ThreadKey == threadKey {
			out = append(out, msg)
		}
		if int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

func (r *memoryChatRepo) WatchThread(_ context.Context, _ string) (<-chan models.ChatMessage, error) {
	ch := make(chan models.ChatMessage)
	close(ch)
	return ch, nil
}

type recordingNotifier struct {
	emitted []emittedNotification
}

type emittedNotification struct {
	To, From, Type, Message string
}

func (n *recordingNotifier) Emit(_ context.Context, to, from, notificationType, message string) {
	n.emitted = append(n.emitted, emittedNotification{to, from, notificationType, message})
}

func TestThreadKeyIsOrderIndependent(t *testing.T) {
	assert.Equal(t, "a_b", ThreadKey("a", "b"))
	assert.Equal(t, "a_b", ThreadKey("b", "a"))
	assert.Equal(t, ThreadKey("u1", "u2"), ThreadKey("u2", "u1"))
}

func TestSendAppendsAndNotifies(t *testing.T) {
	repo := &memoryChatRepo{}
	notifier := &recordingNotifier{}
	s := NewService(repo, notifier)
	from := models.Actor{UID: "u1", Email: "u1@example.com"}

	msg, err := s.Send(context.Background(), from, "u2", "  hello  ")

	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Text)
	assert.Equal(t, ThreadKey("u1", "u2"), msg.ThreadKey)
	assert.Equal(t, "u1", msg.Sender)
	assert.Equal(t, "u2", msg.Receiver)
	require.Len(t, repo.messages, 1)

	require.Len(t, notifier.emitted, 1)
	assert.Equal(t, "u2", notifier.emitted[0].To)
	assert.Equal(t, "u1", notifier.emitted[0].From)
	assert.Equal(t, models.NotificationTypeMessage, notifier.emitted[0].Type)
}

func TestSendRejectsBlankMessage(t *testing.T) {
	s := NewService(&memoryChatRepo{}, &recordingNotifier{})

	_, err := s.Send(context.Background(), models.Actor{UID: "u1"}, "u2", "   ")

	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestHistorySharesOneThreadForBothDirections(t *testing.T) {
	repo := &memoryChatRepo{}
	notifier := &recordingNotifier{}
	s := NewService(repo, notifier)
	u1 := models.Actor{UID: "u1", Email: "u1@example.com"}
	u2 := models.Actor{UID: "u2", Email: "u2@example.com"}

	_, err := s.Send(context.Background(), u1, "u2", "hi")
	require.NoError(t, err)
	_, err = s.Send(context.Background(), u2, "u1", "hey")
	require.NoError(t, err)

	history, err := s.History(context.Background(), "u1", "u2", 50)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "hi", history[0].Text)
	assert.Equal(t, "hey", history[1].Text)

	// Same thread regardless of who asks.
	reversed, err := s.History(context.Background(), "u2", "u1", 50)
	require.NoError(t, err)
	assert.Equal(t, history, reversed)
}
