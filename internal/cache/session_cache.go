package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"seabattle/internal/model"
)

// SessionCache keeps the latest committed session snapshot in Redis so
// reads and code-uniqueness checks skip the store. The store remains the
// source of truth; entries expire on their own.
type SessionCache interface {
	Set(ctx context.Context, session *model.Session) error
	Get(ctx context.Context, code string) (*model.Session, error)
	Exists(ctx context.Context, code string) (bool, error)
	Delete(ctx context.Context, code string) error
}

type sessionCache struct {
	client *redis.Client
}

const sessionTTL = 24 * time.Hour

func NewSessionCache(client *redis.Client) SessionCache {
	return &sessionCache{client: client}
}

func sessionKey(code string) string {
	return "session:" + code
}

func (c *sessionCache) Set(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, sessionKey(session.Code), data, sessionTTL).Err()
}

func (c *sessionCache) Get(ctx context.Context, code string) (*model.Session, error) {
	data, err := c.client.Get(ctx, sessionKey(code)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var session model.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *sessionCache) Exists(ctx context.Context, code string) (bool, error) {
	n, err := c.client.Exists(ctx, sessionKey(code)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *sessionCache) Delete(ctx context.Context, code string) error {
	return c.client.Del(ctx, sessionKey(code)).Err()
}
