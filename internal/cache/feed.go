package cache

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"

	"seabattle/internal/model"
)

// SessionFeed is the realtime change feed: every committed session change
// is published as a full snapshot on a per-code channel. Delivery is
// best-effort and at-least-once; consumers must treat each message as a
// full-state replace, never a diff.
type SessionFeed interface {
	Publish(ctx context.Context, session *model.Session) error
	Subscribe(ctx context.Context, code string) *Subscription
}

// Subscription delivers snapshots for one session code until closed.
type Subscription struct {
	C      <-chan *model.Session
	pubsub *redis.PubSub
}

// Close tears down the subscription and its channel.
func (s *Subscription) Close() error {
	return s.pubsub.Close()
}

type sessionFeed struct {
	client *redis.Client
}

func NewSessionFeed(client *redis.Client) SessionFeed {
	return &sessionFeed{client: client}
}

func feedChannel(code string) string {
	return "session.changes:" + code
}

func (f *sessionFeed) Publish(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return f.client.Publish(ctx, feedChannel(session.Code), data).Err()
}

func (f *sessionFeed) Subscribe(ctx context.Context, code string) *Subscription {
	pubsub := f.client.Subscribe(ctx, feedChannel(code))
	out := make(chan *model.Session, 16)

	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var session model.Session
			if err := json.Unmarshal([]byte(msg.Payload), &session); err != nil {
				log.Printf("Session feed: dropping malformed snapshot for %s: %v", code, err)
				continue
			}
			select {
			case out <- &session:
			case <-ctx.Done():
				return
			}
		}
	}()

	return &Subscription{C: out, pubsub: pubsub}
}
