package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seabattle/internal/game"
	"seabattle/internal/model"
	"seabattle/internal/repository"
)

func newPresenceService(repo repository.SessionRepo) *PresenceService {
	return NewPresenceService(repo, nil, nil, 5*time.Second, 10*time.Second, 30*time.Second)
}

func TestHeartbeat(t *testing.T) {
	t0 := time.Now().UTC()
	repo := newMemRepo()
	repo.seed(newActiveSession("GAME01", t0))
	svc := newPresenceService(repo)
	svc.now = func() time.Time { return t0.Add(7 * time.Second) }

	session, err := svc.Heartbeat(context.Background(), "GAME01", "player-b")
	require.NoError(t, err)

	assert.True(t, session.SlotB.Connected)
	require.NotNil(t, session.SlotB.LastSeenAt)
	assert.Equal(t, t0.Add(7*time.Second), *session.SlotB.LastSeenAt)
}

func TestHeartbeat_TerminalSession(t *testing.T) {
	repo := newMemRepo()
	session := newActiveSession("GAME01", time.Now())
	session.Status = model.SessionFinished
	session.Winner = "player-a"
	repo.seed(session)
	svc := newPresenceService(repo)

	_, err := svc.Heartbeat(context.Background(), "GAME01", "player-b")
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestMarkDisconnected(t *testing.T) {
	repo := newMemRepo()
	repo.seed(newActiveSession("GAME01", time.Now()))
	svc := newPresenceService(repo)

	session, err := svc.MarkDisconnected(context.Background(), "GAME01", "player-b")
	require.NoError(t, err)
	assert.False(t, session.SlotB.Connected)
	assert.True(t, session.SlotA.Connected)
}

func TestOpponentPresence(t *testing.T) {
	t0 := time.Now().UTC()
	svc := newPresenceService(newMemRepo())

	t.Run("within liveness window", func(t *testing.T) {
		session := newActiveSession("GAME01", t0)
		connected, _ := svc.OpponentPresence(session, "player-a", t0.Add(8*time.Second))
		assert.True(t, connected)
	})

	t.Run("stale heartbeat", func(t *testing.T) {
		session := newActiveSession("GAME01", t0)
		connected, since := svc.OpponentPresence(session, "player-a", t0.Add(15*time.Second))
		assert.False(t, connected)
		assert.Equal(t, 15*time.Second, since)
	})

	t.Run("explicit disconnect", func(t *testing.T) {
		session := newActiveSession("GAME01", t0)
		session.SlotB.Connected = false
		connected, _ := svc.OpponentPresence(session, "player-a", t0.Add(2*time.Second))
		assert.False(t, connected)
	})

	t.Run("bot is always connected", func(t *testing.T) {
		session := newActiveSession("GAME01", t0)
		session.SlotB.Bot = true
		session.SlotB.Connected = false
		session.SlotB.LastSeenAt = nil
		connected, _ := svc.OpponentPresence(session, "player-a", t0.Add(time.Hour))
		assert.True(t, connected)
	})
}

// Player B drops at t0. At t0+29s the game is still active; at t0+31s the
// monitor forfeits it to player A.
func TestPresenceMonitor_ForfeitAfterOutage(t *testing.T) {
	t0 := time.Now().UTC()
	repo := newMemRepo()
	session := newActiveSession("GAME01", t0)
	session.SlotB.Connected = false
	repo.seed(session)

	svc := newPresenceService(repo)
	ctx := context.Background()

	svc.now = func() time.Time { return t0.Add(29 * time.Second) }
	done := svc.checkOpponent(ctx, "GAME01", "player-a")
	assert.False(t, done)

	stored, err := repo.GetByCode(ctx, "GAME01")
	require.NoError(t, err)
	assert.Equal(t, model.SessionActive, stored.Status)

	svc.now = func() time.Time { return t0.Add(31 * time.Second) }
	svc.checkOpponent(ctx, "GAME01", "player-a")

	stored, err = repo.GetByCode(ctx, "GAME01")
	require.NoError(t, err)
	assert.Equal(t, model.SessionAbandoned, stored.Status)
	assert.Equal(t, "player-a", stored.Winner)
	assert.Empty(t, stored.TurnOwner)

	// The next check observes the terminal state and stops.
	done = svc.checkOpponent(ctx, "GAME01", "player-a")
	assert.True(t, done)
}

func TestPresenceMonitor_ReconnectCancelsForfeit(t *testing.T) {
	t0 := time.Now().UTC()
	repo := newMemRepo()
	session := newActiveSession("GAME01", t0)
	session.SlotB.Connected = false
	repo.seed(session)

	svc := newPresenceService(repo)
	ctx := context.Background()

	// B reconnects just before the threshold.
	svc.now = func() time.Time { return t0.Add(28 * time.Second) }
	_, err := svc.Heartbeat(ctx, "GAME01", "player-b")
	require.NoError(t, err)

	svc.now = func() time.Time { return t0.Add(31 * time.Second) }
	svc.checkOpponent(ctx, "GAME01", "player-a")

	stored, err := repo.GetByCode(ctx, "GAME01")
	require.NoError(t, err)
	assert.Equal(t, model.SessionActive, stored.Status)
	assert.Empty(t, stored.Winner)
}

func TestForfeit_StaleCheckAtCommit(t *testing.T) {
	t0 := time.Now().UTC()
	repo := newMemRepo()
	session := newActiveSession("GAME01", t0)
	session.SlotB.Connected = false
	fresh := t0.Add(25 * time.Second)
	session.SlotB.LastSeenAt = &fresh
	repo.seed(session)

	svc := newPresenceService(repo)
	svc.now = func() time.Time { return t0.Add(31 * time.Second) }

	// B's last heartbeat is 6s old, well inside the forfeit threshold: the
	// store rejects the write.
	_, err := svc.Forfeit(context.Background(), "GAME01", "player-b")
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestForfeit_Rejections(t *testing.T) {
	t0 := time.Now().UTC()
	ctx := context.Background()

	t.Run("not active", func(t *testing.T) {
		repo := newMemRepo()
		session := newSetupSession("GAME01")
		repo.seed(session)
		svc := newPresenceService(repo)

		_, err := svc.Forfeit(ctx, "GAME01", "player-b")
		assert.True(t, game.IsIllegalTransition(err))
	})

	t.Run("game over", func(t *testing.T) {
		repo := newMemRepo()
		session := newActiveSession("GAME01", t0)
		session.Status = model.SessionAbandoned
		session.Winner = "player-a"
		repo.seed(session)
		svc := newPresenceService(repo)

		_, err := svc.Forfeit(ctx, "GAME01", "player-b")
		assert.True(t, game.IsIllegalTransition(err))
	})

	t.Run("bot slot", func(t *testing.T) {
		repo := newMemRepo()
		session := newActiveSession("GAME01", t0)
		session.Mode = model.ModeBot
		session.SlotB.ID = "bot-1"
		session.SlotB.Bot = true
		repo.seed(session)
		svc := newPresenceService(repo)

		_, err := svc.Forfeit(ctx, "GAME01", "bot-1")
		assert.True(t, game.IsIllegalTransition(err))
	})

	t.Run("stranger", func(t *testing.T) {
		repo := newMemRepo()
		repo.seed(newActiveSession("GAME01", t0))
		svc := newPresenceService(repo)

		_, err := svc.Forfeit(ctx, "GAME01", "player-z")
		assert.True(t, game.IsIllegalTransition(err))
	})
}
