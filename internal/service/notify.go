package service

import (
	"context"
	"log"

	"seabattle/internal/cache"
	"seabattle/internal/model"
)

// publishSnapshot pushes a committed snapshot to the cache and the realtime
// feed. Both are best-effort: the store already holds the truth, so
// failures are logged and swallowed.
func publishSnapshot(ctx context.Context, c cache.SessionCache, f cache.SessionFeed, session *model.Session) {
	if session == nil {
		return
	}
	if c != nil {
		if err := c.Set(ctx, session); err != nil {
			log.Printf("Failed to cache session %s: %v", session.Code, err)
		}
	}
	if f != nil {
		if err := f.Publish(ctx, session); err != nil {
			log.Printf("Failed to publish session %s: %v", session.Code, err)
		}
	}
}
