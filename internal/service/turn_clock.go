package service

import (
	"context"
	"errors"
	"log"
	"time"

	"seabattle/internal/game"
	"seabattle/internal/model"
	"seabattle/internal/repository"
)

// substituteAttacker dispatches the forced attack for a timed-out turn.
// *BattleService satisfies it; tests substitute a fake.
type substituteAttacker interface {
	RandomAttack(ctx context.Context, code, attackerID string) (game.AttackResult, *model.Session, error)
}

// TurnClock enforces the per-turn time budget for one client's slot. It
// compares a monotonic-now against the stored turnStartedAt, so correctness
// does not depend on the client's uptime, and fires at most one substitute
// attack per turn.
type TurnClock struct {
	repo      repository.SessionRepo
	battle    substituteAttacker
	turnLimit time.Duration
	tickEvery time.Duration
	now       func() time.Time
}

// NewTurnClock creates a turn clock checking once per second.
func NewTurnClock(repo repository.SessionRepo, battle *BattleService, turnLimit time.Duration) *TurnClock {
	return &TurnClock{
		repo:      repo,
		battle:    battle,
		turnLimit: turnLimit,
		tickEvery: time.Second,
		now:       time.Now,
	}
}

// turnState tracks the fired flag for the currently observed turn. It is
// reset on every turn-ownership change, including the first activation.
type turnState struct {
	owner     string
	startedAt time.Time
	fired     bool
}

// Run ticks until the session reaches a terminal state or ctx is
// cancelled. It is scoped to one connected client: it only ever fires for
// that client's own slot.
func (c *TurnClock) Run(ctx context.Context, code, slotID string) {
	ticker := time.NewTicker(c.tickEvery)
	defer ticker.Stop()

	var st turnState
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if done := c.tick(ctx, code, slotID, &st); done {
				return
			}
		}
	}
}

func (c *TurnClock) tick(ctx context.Context, code, slotID string, st *turnState) (done bool) {
	session, err := c.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return true
		}
		log.Printf("Turn clock: failed to fetch game %s: %v", code, err)
		return false
	}

	if session.Status.Terminal() {
		return true
	}
	if session.Status != model.SessionActive || session.TurnStartedAt == nil {
		return false
	}

	if session.TurnOwner != st.owner || !session.TurnStartedAt.Equal(st.startedAt) {
		*st = turnState{owner: session.TurnOwner, startedAt: *session.TurnStartedAt}
	}

	if session.TurnOwner != slotID || st.fired {
		return false
	}
	if c.now().Sub(st.startedAt) < c.turnLimit {
		return false
	}

	// Set before dispatch so a re-check cannot double-fire while the turn
	// flip is still propagating.
	st.fired = true
	if _, _, err := c.battle.RandomAttack(ctx, code, slotID); err != nil {
		// Roll back so the next tick can retry against fresh state.
		st.fired = false
		if !errors.Is(err, repository.ErrConflict) {
			log.Printf("Turn clock: substitute attack failed in game %s: %v", code, err)
		}
	}
	return false
}
