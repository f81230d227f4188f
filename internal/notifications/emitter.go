// Package notifications produces and delivers the event records every
// social action addressed at another user leaves behind.
package notifications

import (
	"context"
	"encoding/json"

	"github.com/anonto42/minired/backend/internal/models"
	"github.com/anonto42/minired/backend/internal/repositories"
	"github.com/sirupsen/logrus"
)

// Publisher pushes a stored notification toward connected clients.
type Publisher interface {
	PublishUser(ctx context.Context, uid string, payload []byte) error
}

// Emitter writes notification records as a fire-and-forget side effect of
// social actions. Failures are logged and swallowed: notifications are
// advisory and must never fail or roll back the action they are attached to.
type Emitter struct {
	store     repositories.NotificationRepository
	publisher Publisher
	log       *logrus.Entry
}

// NewEmitter creates a new Emitter. publisher may be nil, in which case
// records are stored but not pushed.
func NewEmitter(store repositories.NotificationRepository, publisher Publisher) *Emitter {
	return &Emitter{
		store:     store,
		publisher: publisher,
		log:       logrus.WithField("component", "notifications"),
	}
}

// Emit appends a notification record addressed to `to`. Self-actions never
// notify: when to == from (or to is empty) nothing is written.
func (e *Emitter) Emit(ctx context.Context, to, from, notificationType, message string) {
	if to == "" || to == from {
		return
	}

	n := &models.Notification{
		To:      to,
		From:    from,
		Type:    notificationType,
		Message: message,
	}
	if err := e.store.CreateNotification(ctx, n); err != nil {
		e.log.WithFields(logrus.Fields{
			"to": to, "from": from, "type": notificationType,
		}).WithError(err).Warn("failed to store notification")
		return
	}

	if e.publisher == nil {
		return
	}
	payload, err := json.Marshal(n)
	if err != nil {
		e.log.WithError(err).Warn("failed to encode notification payload")
		return
	}
	if err := e.publisher.PublishUser(ctx, to, payload); err != nil {
		e.log.WithFields(logrus.Fields{
			"to": to, "type": notificationType,
		}).WithError(err).Warn("failed to publish notification")
	}
}
