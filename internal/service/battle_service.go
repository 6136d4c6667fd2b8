package service

import (
	"context"
	"fmt"
	"log"
	mrand "math/rand"
	"sync"
	"time"

	"seabattle/internal/cache"
	"seabattle/internal/game"
	"seabattle/internal/model"
	"seabattle/internal/repository"
)

// BattleService resolves attacks against the shared session record. Every
// commit is conditioned on the turn-ownership and shot-history snapshot it
// was computed from, so two attacks racing from the same stale state can
// never both land.
type BattleService struct {
	repo  repository.SessionRepo
	cache cache.SessionCache
	feed  cache.SessionFeed

	mu  sync.Mutex
	rng *mrand.Rand
}

// NewBattleService creates a new battle service.
func NewBattleService(repo repository.SessionRepo, sessionCache cache.SessionCache, feed cache.SessionFeed) *BattleService {
	return &BattleService{
		repo:  repo,
		cache: sessionCache,
		feed:  feed,
		rng:   mrand.New(mrand.NewSource(time.Now().UnixNano())),
	}
}

// Attack validates and applies one attack by attackerID on targetCell.
func (s *BattleService) Attack(ctx context.Context, code, attackerID, targetCell string) (game.AttackResult, *model.Session, error) {
	session, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return game.AttackResult{}, nil, err
	}
	return s.attack(ctx, session, attackerID, targetCell)
}

// RandomAttack applies a uniformly random attack on an unshot cell on
// behalf of attackerID. The Turn Clock dispatches it for timed-out turns
// and the bot plays through it.
func (s *BattleService) RandomAttack(ctx context.Context, code, attackerID string) (game.AttackResult, *model.Session, error) {
	session, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return game.AttackResult{}, nil, err
	}
	slot := session.Slot(attackerID)
	if slot == nil {
		return game.AttackResult{}, nil, &game.IllegalTransitionError{Reason: "player is not part of this game"}
	}

	s.mu.Lock()
	cell, ok := game.RandomTarget(s.rng, slot.Shots)
	s.mu.Unlock()
	if !ok {
		return game.AttackResult{}, nil, fmt.Errorf("no cells left to attack in game %s", code)
	}
	return s.attack(ctx, session, attackerID, cell)
}

// attack checks every precondition against the given snapshot, each with
// its own rejection reason, then commits conditionally on those same
// preconditions still holding.
func (s *BattleService) attack(ctx context.Context, session *model.Session, attackerID, targetCell string) (game.AttackResult, *model.Session, error) {
	var none game.AttackResult

	if session.Status.Terminal() {
		return none, nil, &game.IllegalTransitionError{Reason: "game is over"}
	}
	if session.Status != model.SessionActive {
		return none, nil, &game.IllegalTransitionError{Reason: "game is not active"}
	}
	ref, ok := session.SlotRefOf(attackerID)
	if !ok {
		return none, nil, &game.IllegalTransitionError{Reason: "player is not part of this game"}
	}
	if session.TurnOwner != attackerID {
		return none, nil, &game.IllegalTransitionError{Reason: "not your turn"}
	}

	row, col, err := game.ParseCell(targetCell)
	if err != nil {
		return none, nil, err
	}
	if !game.InBounds(row, col) {
		return none, nil, &game.ValidationError{Reason: fmt.Sprintf("cell %s is out of bounds", targetCell)}
	}

	attacker := session.Slot(attackerID)
	if attacker.HasShot(targetCell) {
		return none, nil, &game.IllegalTransitionError{Reason: "cell already attacked"}
	}

	opponent := session.Opponent(attackerID)
	result := game.ResolveAttack(opponent.Fleet, attacker.Shots, targetCell)

	upd := repository.AttackUpdate{
		Cell: targetCell,
		Won:  result.Won,
		Now:  time.Now().UTC(),
	}
	if result.Won {
		upd.WinnerID = attackerID
	} else {
		upd.NextTurnOwner = opponent.ID
	}

	committed, err := s.repo.ApplyAttack(ctx, session.Code, ref, attackerID, upd)
	if err != nil {
		return none, nil, err
	}

	publishSnapshot(ctx, s.cache, s.feed, committed)

	// In bot mode the bot answers immediately once the turn flips to it.
	if committed.Mode == model.ModeBot && committed.Status == model.SessionActive &&
		opponent.Bot && committed.TurnOwner == opponent.ID {
		if _, _, err := s.RandomAttack(ctx, session.Code, opponent.ID); err != nil {
			log.Printf("Bot attack failed in game %s: %v", session.Code, err)
		}
	}

	return result, committed, nil
}
