// Package relationship owns the friend-request state machine between two
// user records and the consistency contract across their mirrored
// relationship sets.
package relationship

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/anonto42/minired/backend/internal/models"
	"github.com/anonto42/minired/backend/internal/repositories"
	"github.com/sirupsen/logrus"
)

// Relation classifies a directed pair, viewed from the acting user.
type Relation string

const (
	RelationNone     Relation = "none"
	RelationOutgoing Relation = "outgoing"
	RelationIncoming Relation = "incoming"
	RelationFriend   Relation = "friend"
)

var (
	// ErrSelfTarget is returned when a user targets themselves
	ErrSelfTarget = errors.New("cannot target yourself")
	// ErrTargetNotFound is returned when the target UID does not resolve
	ErrTargetNotFound = errors.New("target user not found")
	// ErrNoPendingRequest is returned by AcceptRequest when the target has
	// no pending request toward the acting user and is not already a friend
	ErrNoPendingRequest = errors.New("no pending friend request from this user")
)

// WriteError reports a failed store mutation inside a dual-record update.
// Partial means the first of the two writes already landed, leaving the
// pair inconsistent until the user reattempts the action.
type WriteError struct {
	Op      string
	UID     string
	Partial bool
	Err     error
}

func (e *WriteError) Error() string {
	if e.Partial {
		return fmt.Sprintf("%s: write for %s failed after first write succeeded: %v", e.Op, e.UID, e.Err)
	}
	return fmt.Sprintf("%s: write for %s failed: %v", e.Op, e.UID, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Notifier is the notification side-effect invoked after each mutating
// operation. Implementations must be best-effort: Emit never fails the
// operation it is attached to.
type Notifier interface {
	Emit(ctx context.Context, to, from, notificationType, message string)
}

// Manager mediates the four-state relationship machine between two users.
//
// Each mutating operation is two independent set mutations, one per user
// record, with no cross-record transaction. Every step is idempotent
// ($addToSet/$pull), so a failed second write is corrected by reattempting
// the same action; no automatic compensation is performed. Simultaneous
// mutual requests (A requests B while B requests A) are not reconciled and
// stay as two one-sided pairs until one side cancels.
type Manager struct {
	users   repositories.UserRepository
	emitter Notifier
	log     *logrus.Entry
}

// NewManager creates a new relationship Manager
func NewManager(users repositories.UserRepository, emitter Notifier) *Manager {
	return &Manager{
		users:   users,
		emitter: emitter,
		log:     logrus.WithField("component", "relationship"),
	}
}

// Relation classifies target against self's relationship sets. Friend wins
// over incoming, incoming over outgoing. Pure read, no side effects.
func (m *Manager) Relation(ctx context.Context, selfUID, targetUID string) (Relation, error) {
	user, err := m.users.GetUserByUID(ctx, selfUID)
	if err != nil {
		return RelationNone, err
	}
	switch {
	case slices.Contains(user.Friends, targetUID):
		return RelationFriend, nil
	case slices.Contains(user.IncomingRequests, targetUID):
		return RelationIncoming, nil
	case slices.Contains(user.OutgoingRequests, targetUID):
		return RelationOutgoing, nil
	default:
		return RelationNone, nil
	}
}

// SendRequest records a friend request from self toward target on both
// records and notifies the target.
func (m *Manager) SendRequest(ctx context.Context, self models.Actor, targetUID string) error {
	if targetUID == self.UID {
		return ErrSelfTarget
	}
	if _, err := m.users.GetUserByUID(ctx, targetUID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTargetNotFound
		}
		return err
	}

	if err := m.users.AddOutgoingRequest(ctx, self.UID, targetUID); err != nil {
		return &WriteError{Op: "send_request", UID: self.UID, Err: err}
	}
	if err := m.users.AddIncomingRequest(ctx, targetUID, self.UID); err != nil {
		m.log.WithFields(logrus.Fields{
			"self": self.UID, "target": targetUID,
		}).WithError(err).Warn("target-side write failed, pair left inconsistent until retried")
		return &WriteError{Op: "send_request", UID: targetUID, Partial: true, Err: err}
	}

	m.emitter.Emit(ctx, targetUID, self.UID, models.NotificationTypeFriendRequest,
		fmt.Sprintf("%s sent you a friend request", self.Email))
	return nil
}

// CancelRequest withdraws a pending request on both records. Removing an
// absent member is a no-op, so repeating a cancel changes nothing. No
// notification is emitted.
func (m *Manager) CancelRequest(ctx context.Context, self models.Actor, targetUID string) error {
	if targetUID == self.UID {
		return ErrSelfTarget
	}
	if err := m.users.RemoveOutgoingRequest(ctx, self.UID, targetUID); err != nil {
		return &WriteError{Op: "cancel_request", UID: self.UID, Err: err}
	}
	if err := m.users.RemoveIncomingRequest(ctx, targetUID, self.UID); err != nil {
		m.log.WithFields(logrus.Fields{
			"self": self.UID, "target": targetUID,
		}).WithError(err).Warn("target-side write failed, pair left inconsistent until retried")
		return &WriteError{Op: "cancel_request", UID: targetUID, Partial: true, Err: err}
	}
	return nil
}

// AcceptRequest promotes a pending incoming request into a friendship on
// both records and notifies the original requester. A target already in
// self's friends is accepted again rather than rejected: a partial accept
// leaves self promoted with the target still stuck at outgoing, and the
// retry must be able to re-run both idempotent writes to converge the pair.
func (m *Manager) AcceptRequest(ctx context.Context, self models.Actor, targetUID string) error {
	if targetUID == self.UID {
		return ErrSelfTarget
	}
	user, err := m.users.GetUserByUID(ctx, self.UID)
	if err != nil {
		return err
	}
	if !slices.Contains(user.IncomingRequests, targetUID) && !slices.Contains(user.Friends, targetUID) {
		return ErrNoPendingRequest
	}

	if err := m.users.PromoteIncomingToFriend(ctx, self.UID, targetUID); err != nil {
		return &WriteError{Op: "accept_request", UID: self.UID, Err: err}
	}
	if err := m.users.PromoteOutgoingToFriend(ctx, targetUID, self.UID); err != nil {
		m.log.WithFields(logrus.Fields{
			"self": self.UID, "target": targetUID,
		}).WithError(err).Warn("target-side write failed, pair left inconsistent until retried")
		return &WriteError{Op: "accept_request", UID: targetUID, Partial: true, Err: err}
	}

	m.emitter.Emit(ctx, targetUID, self.UID, models.NotificationTypeFriendAccept,
		fmt.Sprintf("%s accepted your friend request", self.Email))
	return nil
}

// RemoveFriend deletes the friendship from both records and notifies the
// removed user. The removals are order-independent and idempotent.
func (m *Manager) RemoveFriend(ctx context.Context, self models.Actor, targetUID string) error {
	if targetUID == self.UID {
		return ErrSelfTarget
	}
	if err := m.users.RemoveFriend(ctx, self.UID, targetUID); err != nil {
		return &WriteError{Op: "remove_friend", UID: self.UID, Err: err}
	}
	if err := m.users.RemoveFriend(ctx, targetUID, self.UID); err != nil {
		m.log.WithFields(logrus.Fields{
			"self": self.UID, "target": targetUID,
		}).WithError(err).Warn("target-side write failed, pair left inconsistent until retried")
		return &WriteError{Op: "remove_friend", UID: targetUID, Partial: true, Err: err}
	}

	m.emitter.Emit(ctx, targetUID, self.UID, models.NotificationTypeFriendRemove,
		fmt.Sprintf("%s removed you from their friends", self.Email))
	return nil
}

// Friends returns the resolved user records for self's friend set.
func (m *Manager) Friends(ctx context.Context, selfUID string) ([]models.UserCompact, error) {
	user, err := m.users.GetUserByUID(ctx, selfUID)
	if err != nil {
		return nil, err
	}
	if len(user.Friends) == 0 {
		return []models.UserCompact{}, nil
	}
	friends, err := m.users.GetUsersByUIDs(ctx, user.Friends)
	if err != nil {
		return nil, err
	}
	compact := make([]models.UserCompact, 0, len(friends))
	for i := range friends {
		compact = append(compact, friends[i].ToCompact())
	}
	return compact, nil
}

// PendingRequests returns the users who have requested friendship with self.
func (m *Manager) PendingRequests(ctx context.Context, selfUID string) ([]models.UserCompact, error) {
	user, err := m.users.GetUserByUID(ctx, selfUID)
	if err != nil {
		return nil, err
	}
	if len(user.IncomingRequests) == 0 {
		return []models.UserCompact{}, nil
	}
	requesters, err := m.users.GetUsersByUIDs(ctx, user.IncomingRequests)
	if err != nil {
		return nil, err
	}
	compact := make([]models.UserCompact, 0, len(requesters))
	for i := range requesters {
		compact = append(compact, requesters[i].ToCompact())
	}
	return compact, nil
}
