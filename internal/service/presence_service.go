package service

import (
	"context"
	"errors"
	"log"
	"time"

	"seabattle/internal/cache"
	"seabattle/internal/game"
	"seabattle/internal/model"
	"seabattle/internal/repository"
)

// PresenceService tracks slot liveness through heartbeats and turns a
// sustained opponent outage into forfeiture. Liveness judgments always
// derive from stored timestamps, never from client-side counters.
type PresenceService struct {
	repo  repository.SessionRepo
	cache cache.SessionCache
	feed  cache.SessionFeed

	heartbeatEvery time.Duration
	livenessWindow time.Duration
	forfeitAfter   time.Duration
	now            func() time.Time
}

// NewPresenceService creates a presence service. livenessWindow must
// exceed heartbeatEvery or every slot reads as disconnected between beats.
func NewPresenceService(
	repo repository.SessionRepo,
	sessionCache cache.SessionCache,
	feed cache.SessionFeed,
	heartbeatEvery, livenessWindow, forfeitAfter time.Duration,
) *PresenceService {
	return &PresenceService{
		repo:           repo,
		cache:          sessionCache,
		feed:           feed,
		heartbeatEvery: heartbeatEvery,
		livenessWindow: livenessWindow,
		forfeitAfter:   forfeitAfter,
		now:            time.Now,
	}
}

// Heartbeat records a liveness signal for the slot.
func (s *PresenceService) Heartbeat(ctx context.Context, code, slotID string) (*model.Session, error) {
	session, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	ref, ok := session.SlotRefOf(slotID)
	if !ok {
		return nil, &game.IllegalTransitionError{Reason: "player is not part of this game"}
	}

	updated, err := s.repo.Heartbeat(ctx, code, ref, slotID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	publishSnapshot(ctx, s.cache, s.feed, updated)
	return updated, nil
}

// MarkDisconnected records an explicit disconnect signal, emitted by a
// client tearing itself down.
func (s *PresenceService) MarkDisconnected(ctx context.Context, code, slotID string) (*model.Session, error) {
	session, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	ref, ok := session.SlotRefOf(slotID)
	if !ok {
		return nil, &game.IllegalTransitionError{Reason: "player is not part of this game"}
	}

	updated, err := s.repo.MarkDisconnected(ctx, code, ref, slotID)
	if err != nil {
		return nil, err
	}
	publishSnapshot(ctx, s.cache, s.feed, updated)
	return updated, nil
}

// OpponentPresence derives the liveness of slotID's opponent at time at.
// Bots are always connected. disconnectedFor counts from the opponent's
// last stored liveness signal.
func (s *PresenceService) OpponentPresence(session *model.Session, slotID string, at time.Time) (connected bool, disconnectedFor time.Duration) {
	opponent := session.Opponent(slotID)
	if opponent == nil {
		return false, 0
	}
	if opponent.Bot {
		return true, 0
	}

	lastSeen := session.CreatedAt
	if opponent.LastSeenAt != nil {
		lastSeen = *opponent.LastSeenAt
	}

	since := at.Sub(lastSeen)
	if opponent.Connected && since <= s.livenessWindow {
		return true, 0
	}
	return false, since
}

// Forfeit ends an active session in favor of the disconnected slot's
// opponent. The store re-checks the staleness threshold at commit time, so
// a heartbeat racing in cancels the forfeiture.
func (s *PresenceService) Forfeit(ctx context.Context, code, disconnectedSlotID string) (*model.Session, error) {
	session, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if session.Status.Terminal() {
		return nil, &game.IllegalTransitionError{Reason: "game is over"}
	}
	if session.Status != model.SessionActive {
		return nil, &game.IllegalTransitionError{Reason: "game is not active"}
	}
	loser, ok := session.SlotRefOf(disconnectedSlotID)
	if !ok {
		return nil, &game.IllegalTransitionError{Reason: "player is not part of this game"}
	}
	if session.Slot(disconnectedSlotID).Bot {
		return nil, &game.IllegalTransitionError{Reason: "bot opponents do not forfeit"}
	}
	winner := session.Opponent(disconnectedSlotID)

	staleBefore := s.now().Add(-s.forfeitAfter)
	updated, err := s.repo.Forfeit(ctx, code, loser, winner.ID, staleBefore)
	if err != nil {
		return nil, err
	}
	publishSnapshot(ctx, s.cache, s.feed, updated)
	return updated, nil
}

// RunHeartbeat emits heartbeats for the slot until the session ends or ctx
// is cancelled.
func (s *PresenceService) RunHeartbeat(ctx context.Context, code, slotID string) {
	ticker := time.NewTicker(s.heartbeatEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Heartbeat(ctx, code, slotID); err != nil {
				if errors.Is(err, repository.ErrConflict) || errors.Is(err, repository.ErrNotFound) {
					return
				}
				log.Printf("Heartbeat failed for game %s: %v", code, err)
			}
		}
	}
}

// RunMonitor watches the opponent's liveness for one connected client and
// triggers forfeiture after a sustained outage. It stops once the session
// leaves active play for good.
func (s *PresenceService) RunMonitor(ctx context.Context, code, slotID string) {
	ticker := time.NewTicker(s.heartbeatEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if done := s.checkOpponent(ctx, code, slotID); done {
				return
			}
		}
	}
}

func (s *PresenceService) checkOpponent(ctx context.Context, code, slotID string) (done bool) {
	session, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return true
		}
		log.Printf("Presence monitor: failed to fetch game %s: %v", code, err)
		return false
	}

	if session.Status.Terminal() {
		return true
	}
	if session.Status != model.SessionActive {
		return false
	}

	connected, disconnectedFor := s.OpponentPresence(session, slotID, s.now())
	if connected || disconnectedFor < s.forfeitAfter {
		return false
	}

	opponent := session.Opponent(slotID)
	if opponent == nil || opponent.Bot {
		return false
	}
	if _, err := s.Forfeit(ctx, code, opponent.ID); err != nil {
		// Lost races (opponent reconnected, peer forfeited first) are
		// expected; anything else is worth a line.
		if !errors.Is(err, repository.ErrConflict) && !game.IsIllegalTransition(err) {
			log.Printf("Presence monitor: forfeit failed in game %s: %v", code, err)
		}
	}
	return false
}
