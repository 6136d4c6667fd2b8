package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"seabattle/internal/model"
	"seabattle/internal/repository"
)

// memRepo is an in-memory repository.SessionRepo with the same conditional
// semantics as the Mongo store: a mutation whose precondition no longer
// holds returns ErrConflict, never a blind overwrite.
type memRepo struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
}

func newMemRepo() *memRepo {
	return &memRepo{sessions: make(map[string]*model.Session)}
}

func cloneSession(s *model.Session) *model.Session {
	out := new(model.Session)
	cloneInto(s, out)
	return out
}

func cloneSlot(p *model.PlayerSlot) *model.PlayerSlot {
	out := new(model.PlayerSlot)
	cloneInto(p, out)
	return out
}

func cloneInto(src, dst interface{}) {
	raw, err := json.Marshal(src)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		panic(err)
	}
}

// seed stores a session directly, bypassing the uniqueness check. Tests use
// it to start from a crafted state.
func (r *memRepo) seed(s *model.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.Code] = cloneSession(s)
}

// mutate applies one conditional update under the lock and returns the
// committed snapshot.
func (r *memRepo) mutate(code string, precond func(*model.Session) bool, apply func(*model.Session)) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.sessions[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !precond(stored) {
		return nil, repository.ErrConflict
	}
	apply(stored)
	return cloneSession(stored), nil
}

func (r *memRepo) Create(ctx context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[session.Code]; exists {
		return repository.ErrDuplicateCode
	}
	r.sessions[session.Code] = cloneSession(session)
	return nil
}

func (r *memRepo) GetByCode(ctx context.Context, code string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.sessions[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneSession(stored), nil
}

func (r *memRepo) Join(ctx context.Context, code string, slot *model.PlayerSlot) (*model.Session, error) {
	return r.mutate(code,
		func(s *model.Session) bool {
			return s.Status == model.SessionSetup && s.Mode == model.ModePVP && s.SlotB == nil
		},
		func(s *model.Session) {
			s.SlotB = cloneSlot(slot)
			s.UpdatedAt = time.Now().UTC()
		},
	)
}

func slotOf(s *model.Session, ref model.SlotRef) *model.PlayerSlot {
	if ref == model.SlotA {
		return s.SlotA
	}
	return s.SlotB
}

func editable(s *model.Session, ref model.SlotRef, slotID string) bool {
	slot := slotOf(s, ref)
	return s.Status == model.SessionSetup && slot != nil && slot.ID == slotID && !slot.Ready
}

func (r *memRepo) SubmitFleet(ctx context.Context, code string, ref model.SlotRef, slotID string, fleet []model.ShipPlacement) (*model.Session, error) {
	return r.mutate(code,
		func(s *model.Session) bool { return editable(s, ref, slotID) },
		func(s *model.Session) {
			slotOf(s, ref).Fleet = fleet
			s.UpdatedAt = time.Now().UTC()
		},
	)
}

func (r *memRepo) RetractShip(ctx context.Context, code string, ref model.SlotRef, slotID string, kind model.ShipKind) (*model.Session, error) {
	return r.mutate(code,
		func(s *model.Session) bool { return editable(s, ref, slotID) },
		func(s *model.Session) {
			slot := slotOf(s, ref)
			kept := slot.Fleet[:0]
			for _, p := range slot.Fleet {
				if p.Info.ID != kind {
					kept = append(kept, p)
				}
			}
			slot.Fleet = kept
			s.UpdatedAt = time.Now().UTC()
		},
	)
}

func (r *memRepo) SetReady(ctx context.Context, code string, ref model.SlotRef, slotID string) (*model.Session, error) {
	return r.mutate(code,
		func(s *model.Session) bool {
			return editable(s, ref, slotID) && len(slotOf(s, ref).Fleet) == 5
		},
		func(s *model.Session) {
			slotOf(s, ref).Ready = true
			s.UpdatedAt = time.Now().UTC()
		},
	)
}

func (r *memRepo) Activate(ctx context.Context, code string, turnOwner string, at time.Time) (*model.Session, error) {
	return r.mutate(code,
		func(s *model.Session) bool { return s.Status == model.SessionSetup && s.BothReady() },
		func(s *model.Session) {
			at := at.UTC()
			s.Status = model.SessionActive
			s.TurnOwner = turnOwner
			s.TurnStartedAt = &at
			s.UpdatedAt = at
		},
	)
}

func (r *memRepo) ApplyAttack(ctx context.Context, code string, ref model.SlotRef, attackerID string, upd repository.AttackUpdate) (*model.Session, error) {
	return r.mutate(code,
		func(s *model.Session) bool {
			slot := slotOf(s, ref)
			return s.Status == model.SessionActive && s.TurnOwner == attackerID &&
				slot != nil && slot.ID == attackerID && !slot.HasShot(upd.Cell)
		},
		func(s *model.Session) {
			now := upd.Now.UTC()
			slot := slotOf(s, ref)
			slot.Shots = append(slot.Shots, upd.Cell)
			if upd.Won {
				s.Status = model.SessionFinished
				s.Winner = upd.WinnerID
				s.TurnOwner = ""
				s.TurnStartedAt = nil
			} else {
				s.TurnOwner = upd.NextTurnOwner
				s.TurnStartedAt = &now
			}
			s.UpdatedAt = now
		},
	)
}

func (r *memRepo) Heartbeat(ctx context.Context, code string, ref model.SlotRef, slotID string, at time.Time) (*model.Session, error) {
	return r.mutate(code,
		func(s *model.Session) bool {
			slot := slotOf(s, ref)
			return slot != nil && slot.ID == slotID && !s.Status.Terminal()
		},
		func(s *model.Session) {
			at := at.UTC()
			slot := slotOf(s, ref)
			slot.LastSeenAt = &at
			slot.Connected = true
			s.UpdatedAt = at
		},
	)
}

func (r *memRepo) MarkDisconnected(ctx context.Context, code string, ref model.SlotRef, slotID string) (*model.Session, error) {
	return r.mutate(code,
		func(s *model.Session) bool {
			slot := slotOf(s, ref)
			return slot != nil && slot.ID == slotID
		},
		func(s *model.Session) {
			slotOf(s, ref).Connected = false
			s.UpdatedAt = time.Now().UTC()
		},
	)
}

func (r *memRepo) Forfeit(ctx context.Context, code string, loser model.SlotRef, winnerID string, staleBefore time.Time) (*model.Session, error) {
	return r.mutate(code,
		func(s *model.Session) bool {
			slot := slotOf(s, loser)
			return s.Status == model.SessionActive && slot != nil && !slot.Bot &&
				slot.LastSeenAt != nil && slot.LastSeenAt.Before(staleBefore.UTC())
		},
		func(s *model.Session) {
			s.Status = model.SessionAbandoned
			s.Winner = winnerID
			s.TurnOwner = ""
			s.TurnStartedAt = nil
			s.UpdatedAt = time.Now().UTC()
		},
	)
}

var _ repository.SessionRepo = (*memRepo)(nil)
