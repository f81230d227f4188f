// Package presence maintains the online flag and lastActive timestamp on
// user records.
package presence

import (
	"context"
	"time"

	"github.com/anonto42/minired/backend/internal/repositories"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const onlineKeyPrefix = "presence:online:"

// Tracker writes presence to the user document and mirrors it into Redis
// with a TTL. The document flag is the durable record; the Redis key expires
// on its own, so a session killed without an offline call only goes stale
// on the document side.
type Tracker struct {
	users repositories.UserRepository
	rdb   *redis.Client
	ttl   time.Duration
	log   *logrus.Entry
}

// NewTracker creates a new Tracker. rdb may be nil; presence then lives
// only on the user documents.
func NewTracker(users repositories.UserRepository, rdb *redis.Client, ttl time.Duration) *Tracker {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Tracker{
		users: users,
		rdb:   rdb,
		ttl:   ttl,
		log:   logrus.WithField("component", "presence"),
	}
}

// Online marks the user online and refreshes lastActive
func (t *Tracker) Online(ctx context.Context, uid string) error {
	if err := t.users.SetPresence(ctx, uid, true); err != nil {
		return err
	}
	if t.rdb != nil {
		if err := t.rdb.Set(ctx, onlineKeyPrefix+uid, "1", t.ttl).Err(); err != nil {
			t.log.WithField("uid", uid).WithError(err).Warn("failed to mirror presence to redis")
		}
	}
	return nil
}

// Offline marks the user offline. Best-effort: callers invoke it from a
// session-end hook that is not guaranteed to fire.
func (t *Tracker) Offline(ctx context.Context, uid string) error {
	if err := t.users.SetPresence(ctx, uid, false); err != nil {
		return err
	}
	if t.rdb != nil {
		if err := t.rdb.Del(ctx, onlineKeyPrefix+uid).Err(); err != nil {
			t.log.WithField("uid", uid).WithError(err).Warn("failed to clear presence in redis")
		}
	}
	return nil
}

// Touch refreshes the Redis TTL for an active session without touching the
// user document. Used by the websocket read loop.
func (t *Tracker) Touch(ctx context.Context, uid string) {
	if t.rdb == nil {
		return
	}
	if err := t.rdb.Expire(ctx, onlineKeyPrefix+uid, t.ttl).Err(); err != nil {
		t.log.WithField("uid", uid).WithError(err).Debug("failed to refresh presence ttl")
	}
}

// IsOnline reports whether a non-expired presence key exists for uid.
// Falls back to the document flag when Redis is not configured.
func (t *Tracker) IsOnline(ctx context.Context, uid string) (bool, error) {
	if t.rdb != nil {
		n, err := t.rdb.Exists(ctx, onlineKeyPrefix+uid).Result()
		if err == nil {
			return n > 0, nil
		}
		t.log.WithField("uid", uid).WithError(err).Debug("redis presence check failed, falling back to store")
	}
	user, err := t.users.GetUserByUID(ctx, uid)
	if err != nil {
		return false, err
	}
	return user.Online, nil
}
