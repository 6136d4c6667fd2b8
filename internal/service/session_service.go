package service

import (
	"context"
	"crypto/rand"
	"fmt"
	mrand "math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"seabattle/internal/cache"
	"seabattle/internal/game"
	"seabattle/internal/model"
	"seabattle/internal/repository"
)

// SessionService handles session lifecycle: creation, joining, lookup.
type SessionService struct {
	repo    repository.SessionRepo
	cache   cache.SessionCache
	feed    cache.SessionFeed
	authSvc *AuthService

	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSessionService creates a new session service.
func NewSessionService(
	repo repository.SessionRepo,
	sessionCache cache.SessionCache,
	feed cache.SessionFeed,
	authSvc *AuthService,
) *SessionService {
	return &SessionService{
		repo:    repo,
		cache:   sessionCache,
		feed:    feed,
		authSvc: authSvc,
		rng:     mrand.New(mrand.NewSource(time.Now().UnixNano())),
	}
}

// CreateSession starts a new match. Slot A holds the creator; in bot mode
// slot B is filled immediately with a generated fleet and marked ready.
func (s *SessionService) CreateSession(ctx context.Context, name string, mode model.GameMode) (*model.SessionGrant, error) {
	if mode != model.ModePVP && mode != model.ModeBot {
		return nil, &game.ValidationError{Reason: fmt.Sprintf("unknown game mode %q", mode)}
	}

	now := time.Now().UTC()
	slotA := &model.PlayerSlot{
		ID:         "player-" + uuid.New().String(),
		Name:       name,
		Shots:      []string{},
		Connected:  true,
		LastSeenAt: &now,
	}

	session := &model.Session{
		Mode:      mode,
		Status:    model.SessionSetup,
		SlotA:     slotA,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if mode == model.ModeBot {
		s.mu.Lock()
		fleet, err := game.GenerateBotFleet(s.rng)
		s.mu.Unlock()
		if err != nil {
			return nil, fmt.Errorf("failed to generate bot fleet: %w", err)
		}
		session.SlotB = &model.PlayerSlot{
			ID:        "bot-" + uuid.New().String(),
			Name:      "Bot",
			Bot:       true,
			Fleet:     fleet,
			Ready:     true,
			Shots:     []string{},
			Connected: true,
		}
	}

	// Code collisions trigger regeneration, bounded so a broken store
	// cannot hang the caller.
	for attempts := 0; attempts < 10; attempts++ {
		code, err := s.generateGameCode(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to generate game code: %w", err)
		}
		session.Code = code

		err = s.repo.Create(ctx, session)
		if err == repository.ErrDuplicateCode {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create session: %w", err)
		}

		token, err := s.authSvc.GenerateSlotToken(code, slotA.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to issue slot token: %w", err)
		}

		publishSnapshot(ctx, s.cache, s.feed, session)
		return &model.SessionGrant{
			Session:  session,
			SlotAuth: model.SlotAuth{SlotID: slotA.ID, Token: token},
		}, nil
	}
	return nil, fmt.Errorf("failed to allocate a unique game code")
}

// JoinSession fills slot B of a PvP session still in setup.
func (s *SessionService) JoinSession(ctx context.Context, code, name string) (*model.SessionGrant, error) {
	session, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if session.Mode != model.ModePVP {
		return nil, &game.IllegalTransitionError{Reason: "cannot join a bot game"}
	}
	if session.SlotB != nil {
		return nil, &game.IllegalTransitionError{Reason: "game is already full"}
	}
	if session.Status != model.SessionSetup {
		return nil, &game.IllegalTransitionError{Reason: "game is no longer joinable"}
	}

	now := time.Now().UTC()
	slot := &model.PlayerSlot{
		ID:         "player-" + uuid.New().String(),
		Name:       name,
		Shots:      []string{},
		Connected:  true,
		LastSeenAt: &now,
	}

	updated, err := s.repo.Join(ctx, code, slot)
	if err != nil {
		return nil, err
	}

	token, err := s.authSvc.GenerateSlotToken(code, slot.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue slot token: %w", err)
	}

	publishSnapshot(ctx, s.cache, s.feed, updated)
	return &model.SessionGrant{
		Session:  updated,
		SlotAuth: model.SlotAuth{SlotID: slot.ID, Token: token},
	}, nil
}

// GetSession retrieves a session snapshot, preferring the cache.
func (s *SessionService) GetSession(ctx context.Context, code string) (*model.Session, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, code); err == nil && cached != nil {
			return cached, nil
		}
	}
	return s.repo.GetByCode(ctx, code)
}

// generateGameCode creates a 6-char shareable code from an unambiguous
// alphabet, using the cache for a cheap pre-check. The store's unique
// index is the actual guarantee.
func (s *SessionService) generateGameCode(ctx context.Context) (string, error) {
	const chars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	const codeLen = 6

	for attempts := 0; attempts < 10; attempts++ {
		b := make([]byte, codeLen)
		if _, err := rand.Read(b); err != nil {
			return "", err
		}

		code := make([]byte, codeLen)
		for i := range code {
			code[i] = chars[int(b[i])%len(chars)]
		}
		codeStr := string(code)

		if s.cache != nil {
			exists, err := s.cache.Exists(ctx, codeStr)
			if err == nil && exists {
				continue
			}
		}
		return codeStr, nil
	}

	return "", fmt.Errorf("exhausted game code attempts")
}
