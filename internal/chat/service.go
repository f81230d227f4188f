// Package chat implements direct messaging between two users over a
// deterministic thread key.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anonto42/minired/backend/internal/models"
	"github.com/anonto42/minired/backend/internal/relationship"
	"github.com/anonto42/minired/backend/internal/repositories"
)

// ErrEmptyMessage is returned when a message is blank
var ErrEmptyMessage = errors.New("message text is empty")

// ThreadKey derives the conversation key for two users. The UIDs are
// sorted before joining, so both participants arrive at the same key.
func ThreadKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "_" + b
}

// Service handles chat threads and their message notifications.
type Service struct {
	messages repositories.ChatRepository
	emitter  relationship.Notifier
}

// NewService creates a new chat Service
func NewService(messages repositories.ChatRepository, emitter relationship.Notifier) *Service {
	return &Service{messages: messages, emitter: emitter}
}

// Send appends a message to the thread between from and to, then notifies
// the receiver.
func (s *Service) Send(ctx context.Context, from models.Actor, to, text string) (*models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	msg := &models.ChatMessage{
		ThreadKey: ThreadKey(from.UID, to),
		Sender:    from.UID,
		Receiver:  to,
		Text:      text,
	}
	if err := s.messages.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, to, from.UID, models.NotificationTypeMessage,
		fmt.Sprintf("%s sent you a message", from.Email))
	return msg, nil
}

// History returns the thread's messages oldest first
func (s *Service) History(ctx context.Context, a, b string, limit int64) ([]models.ChatMessage, error) {
	return s.messages.GetMessages(ctx, ThreadKey(a, b), limit)
}

// Subscribe streams messages appended to the thread until ctx is cancelled
func (s *Service) Subscribe(ctx context.Context, a, b string) (<-chan models.ChatMessage, error) {
	return s.messages.WatchThread(ctx, ThreadKey(a, b))
}
