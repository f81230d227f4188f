package notifications

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const userChannelPrefix = "notifications:user:"

// RedisPublisher publishes notification payloads into per-user Redis
// channels so any instance holding the websocket connection can deliver
// them.
type RedisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher creates a new RedisPublisher
func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

// PublishUser sends a notification payload to a user's channel
func (p *RedisPublisher) PublishUser(ctx context.Context, uid string, payload []byte) error {
	if p.rdb == nil {
		return nil
	}
	return p.rdb.Publish(ctx, userChannelPrefix+uid, payload).Err()
}

// StartSubscriber subscribes to the per-user channel pattern and invokes
// onMessage with the recipient UID and payload for each message, until ctx
// is cancelled.
func (p *RedisPublisher) StartSubscriber(ctx context.Context, onMessage func(uid string, payload []byte)) error {
	if p.rdb == nil {
		return nil
	}
	sub := p.rdb.PSubscribe(ctx, fmt.Sprintf("%s*", userChannelPrefix))
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				uid := strings.TrimPrefix(msg.Channel, userChannelPrefix)
				if uid == "" {
					logrus.WithField("channel", msg.Channel).Warn("notification message on unexpected channel")
					continue
				}
				onMessage(uid, []byte(msg.Payload))
			}
		}
	}()
	return nil
}
