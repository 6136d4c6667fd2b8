package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"seabattle/internal/model"
)

// AttackUpdate carries the committed effect of one resolved attack.
type AttackUpdate struct {
	Cell          string
	Won           bool
	WinnerID      string // set when Won
	NextTurnOwner string // set when not Won
	Now           time.Time
}

// SessionRepo is the persistent session store. Every gameplay mutation is a
// conditional update: the filter re-states the precondition the caller
// computed against, and a write that matches nothing surfaces as
// ErrConflict rather than ever overwriting blindly.
type SessionRepo interface {
	Create(ctx context.Context, session *model.Session) error
	GetByCode(ctx context.Context, code string) (*model.Session, error)

	// Join fills slot B, provided the session is a PvP game still in setup
	// with slot B empty.
	Join(ctx context.Context, code string, slot *model.PlayerSlot) (*model.Session, error)

	// SubmitFleet replaces the slot's fleet while it is not yet ready.
	SubmitFleet(ctx context.Context, code string, ref model.SlotRef, slotID string, fleet []model.ShipPlacement) (*model.Session, error)

	// RetractShip removes one placement by kind while the slot is not ready.
	RetractShip(ctx context.Context, code string, ref model.SlotRef, slotID string, kind model.ShipKind) (*model.Session, error)

	// SetReady locks a complete (5-ship) fleet.
	SetReady(ctx context.Context, code string, ref model.SlotRef, slotID string) (*model.Session, error)

	// Activate moves setup -> active once both slots are ready, handing the
	// first turn to the given owner.
	Activate(ctx context.Context, code string, turnOwner string, at time.Time) (*model.Session, error)

	// ApplyAttack appends the attacker's shot and commits the turn flip or
	// the win, provided the session is still active, the attacker still
	// owns the turn, and the cell was not already in the attacker's shots.
	ApplyAttack(ctx context.Context, code string, ref model.SlotRef, attackerID string, upd AttackUpdate) (*model.Session, error)

	// Heartbeat refreshes a slot's liveness signal.
	Heartbeat(ctx context.Context, code string, ref model.SlotRef, slotID string, at time.Time) (*model.Session, error)

	// MarkDisconnected records an explicit disconnect signal for a slot.
	MarkDisconnected(ctx context.Context, code string, ref model.SlotRef, slotID string) (*model.Session, error)

	// Forfeit abandons an active session in favor of winnerID, provided the
	// losing slot's last liveness signal predates staleBefore.
	Forfeit(ctx context.Context, code string, loser model.SlotRef, winnerID string, staleBefore time.Time) (*model.Session, error)
}

type sessionRepo struct {
	collection *mongo.Collection
}

// field addresses a slot-local document field, e.g. field(SlotA, "shots")
// -> "slotA.shots".
func field(ref model.SlotRef, name string) string {
	return string(ref) + "." + name
}

// NewSessionRepo creates the Mongo-backed session store on the "games"
// collection and ensures its unique code index.
func NewSessionRepo(ctx context.Context, db *mongo.Database) (SessionRepo, error) {
	coll := db.Collection("games")
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to ensure games index: %w", err)
	}
	return &sessionRepo{collection: coll}, nil
}

func (r *sessionRepo) Create(ctx context.Context, session *model.Session) error {
	_, err := r.collection.InsertOne(ctx, session)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateCode
	}
	return err
}

func (r *sessionRepo) GetByCode(ctx context.Context, code string) (*model.Session, error) {
	var session model.Session
	err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&session)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// update runs one conditional update and returns the committed snapshot.
// A filter that matches nothing is ErrConflict when the session exists and
// ErrNotFound otherwise.
func (r *sessionRepo) update(ctx context.Context, code string, filter, update bson.M) (*model.Session, error) {
	filter["code"] = code
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var session model.Session
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&session)
	if err == mongo.ErrNoDocuments {
		if _, getErr := r.GetByCode(ctx, code); getErr == ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, ErrConflict
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) Join(ctx context.Context, code string, slot *model.PlayerSlot) (*model.Session, error) {
	return r.update(ctx, code,
		bson.M{
			"status": model.SessionSetup,
			"mode":   model.ModePVP,
			"slotB":  nil,
		},
		bson.M{"$set": bson.M{
			"slotB":     slot,
			"updatedAt": time.Now().UTC(),
		}},
	)
}

func (r *sessionRepo) SubmitFleet(ctx context.Context, code string, ref model.SlotRef, slotID string, fleet []model.ShipPlacement) (*model.Session, error) {
	return r.update(ctx, code,
		bson.M{
			"status":            model.SessionSetup,
			field(ref, "id"):    slotID,
			field(ref, "ready"): false,
		},
		bson.M{"$set": bson.M{
			field(ref, "fleet"): fleet,
			"updatedAt":         time.Now().UTC(),
		}},
	)
}

func (r *sessionRepo) RetractShip(ctx context.Context, code string, ref model.SlotRef, slotID string, kind model.ShipKind) (*model.Session, error) {
	return r.update(ctx, code,
		bson.M{
			"status":            model.SessionSetup,
			field(ref, "id"):    slotID,
			field(ref, "ready"): false,
		},
		bson.M{
			"$pull": bson.M{field(ref, "fleet"): bson.M{"info.id": kind}},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
}

func (r *sessionRepo) SetReady(ctx context.Context, code string, ref model.SlotRef, slotID string) (*model.Session, error) {
	return r.update(ctx, code,
		bson.M{
			"status":            model.SessionSetup,
			field(ref, "id"):    slotID,
			field(ref, "ready"): false,
			field(ref, "fleet"): bson.M{"$size": 5},
		},
		bson.M{"$set": bson.M{
			field(ref, "ready"): true,
			"updatedAt":         time.Now().UTC(),
		}},
	)
}

func (r *sessionRepo) Activate(ctx context.Context, code string, turnOwner string, at time.Time) (*model.Session, error) {
	return r.update(ctx, code,
		bson.M{
			"status":      model.SessionSetup,
			"slotA.ready": true,
			"slotB.ready": true,
		},
		bson.M{"$set": bson.M{
			"status":        model.SessionActive,
			"turnOwner":     turnOwner,
			"turnStartedAt": at.UTC(),
			"updatedAt":     at.UTC(),
		}},
	)
}

func (r *sessionRepo) ApplyAttack(ctx context.Context, code string, ref model.SlotRef, attackerID string, upd AttackUpdate) (*model.Session, error) {
	filter := bson.M{
		"status":            model.SessionActive,
		"turnOwner":         attackerID,
		field(ref, "id"):    attackerID,
		field(ref, "shots"): bson.M{"$ne": upd.Cell},
	}

	set := bson.M{"updatedAt": upd.Now.UTC()}
	update := bson.M{
		"$push": bson.M{field(ref, "shots"): upd.Cell},
		"$set":  set,
	}
	if upd.Won {
		set["status"] = model.SessionFinished
		set["winner"] = upd.WinnerID
		update["$unset"] = bson.M{"turnOwner": "", "turnStartedAt": ""}
	} else {
		set["turnOwner"] = upd.NextTurnOwner
		set["turnStartedAt"] = upd.Now.UTC()
	}

	return r.update(ctx, code, filter, update)
}

func (r *sessionRepo) Heartbeat(ctx context.Context, code string, ref model.SlotRef, slotID string, at time.Time) (*model.Session, error) {
	return r.update(ctx, code,
		bson.M{
			field(ref, "id"): slotID,
			"status":         bson.M{"$nin": []model.SessionStatus{model.SessionFinished, model.SessionAbandoned}},
		},
		bson.M{"$set": bson.M{
			field(ref, "lastSeenAt"): at.UTC(),
			field(ref, "connected"):  true,
			"updatedAt":              at.UTC(),
		}},
	)
}

func (r *sessionRepo) MarkDisconnected(ctx context.Context, code string, ref model.SlotRef, slotID string) (*model.Session, error) {
	return r.update(ctx, code,
		bson.M{field(ref, "id"): slotID},
		bson.M{"$set": bson.M{
			field(ref, "connected"): false,
			"updatedAt":             time.Now().UTC(),
		}},
	)
}

func (r *sessionRepo) Forfeit(ctx context.Context, code string, loser model.SlotRef, winnerID string, staleBefore time.Time) (*model.Session, error) {
	return r.update(ctx, code,
		bson.M{
			"status":                   model.SessionActive,
			field(loser, "bot"):        bson.M{"$ne": true},
			field(loser, "lastSeenAt"): bson.M{"$lt": staleBefore.UTC()},
		},
		bson.M{
			"$set": bson.M{
				"status":    model.SessionAbandoned,
				"winner":    winnerID,
				"updatedAt": time.Now().UTC(),
			},
			"$unset": bson.M{"turnOwner": "", "turnStartedAt": ""},
		},
	)
}
