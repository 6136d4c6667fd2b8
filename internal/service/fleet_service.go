package service

import (
	"context"
	"time"

	"seabattle/internal/cache"
	"seabattle/internal/game"
	"seabattle/internal/model"
	"seabattle/internal/repository"
)

// FleetService handles setup-phase fleet building: submitting placements,
// retracting a ship, and locking the fleet in as ready.
type FleetService struct {
	repo  repository.SessionRepo
	cache cache.SessionCache
	feed  cache.SessionFeed
}

// NewFleetService creates a new fleet service.
func NewFleetService(repo repository.SessionRepo, sessionCache cache.SessionCache, feed cache.SessionFeed) *FleetService {
	return &FleetService{repo: repo, cache: sessionCache, feed: feed}
}

// checkSetup verifies the session is in setup and the slot may still edit
// its fleet, returning the slot's store reference.
func (s *FleetService) checkSetup(session *model.Session, slotID string) (model.SlotRef, error) {
	ref, ok := session.SlotRefOf(slotID)
	if !ok {
		return "", &game.IllegalTransitionError{Reason: "player is not part of this game"}
	}
	if session.Status != model.SessionSetup {
		return "", &game.IllegalTransitionError{Reason: "fleet can only change during setup"}
	}
	if session.Slot(slotID).Ready {
		return "", &game.IllegalTransitionError{Reason: "fleet is locked"}
	}
	return ref, nil
}

// SubmitFleet validates and stores a slot's placements. The fleet may be
// partial; completeness is only enforced by SetReady.
func (s *FleetService) SubmitFleet(ctx context.Context, code, slotID string, fleet []model.ShipPlacement) (*model.Session, error) {
	if err := game.ValidatePlacements(fleet); err != nil {
		return nil, err
	}

	session, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	ref, err := s.checkSetup(session, slotID)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.SubmitFleet(ctx, code, ref, slotID, fleet)
	if err != nil {
		return nil, err
	}
	publishSnapshot(ctx, s.cache, s.feed, updated)
	return updated, nil
}

// RetractShip removes one placed ship by kind before the fleet is locked.
func (s *FleetService) RetractShip(ctx context.Context, code, slotID string, kind model.ShipKind) (*model.Session, error) {
	if _, ok := game.CatalogEntry(kind); !ok {
		return nil, &game.ValidationError{Reason: "unknown ship kind " + string(kind)}
	}

	session, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	ref, err := s.checkSetup(session, slotID)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.RetractShip(ctx, code, ref, slotID, kind)
	if err != nil {
		return nil, err
	}
	publishSnapshot(ctx, s.cache, s.feed, updated)
	return updated, nil
}

// SetReady locks a complete fleet. When the second slot readies up, the
// session activates with slot A owning the first turn.
func (s *FleetService) SetReady(ctx context.Context, code, slotID string) (*model.Session, error) {
	session, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	ref, err := s.checkSetup(session, slotID)
	if err != nil {
		return nil, err
	}
	if err := game.ValidateFleet(session.Slot(slotID).Fleet); err != nil {
		return nil, err
	}

	updated, err := s.repo.SetReady(ctx, code, ref, slotID)
	if err != nil {
		return nil, err
	}

	if updated.BothReady() {
		active, err := s.repo.Activate(ctx, code, updated.SlotA.ID, time.Now().UTC())
		if err == nil {
			updated = active
		} else if err != repository.ErrConflict {
			// A lost activation race is fine: the peer committed the same
			// transition.
			return nil, err
		}
	}

	publishSnapshot(ctx, s.cache, s.feed, updated)
	return updated, nil
}
