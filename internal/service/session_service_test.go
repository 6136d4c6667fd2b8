package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seabattle/internal/game"
	"seabattle/internal/model"
	"seabattle/internal/repository"
)

func newSessionService(repo repository.SessionRepo) *SessionService {
	return NewSessionService(repo, nil, nil, NewAuthService("test-secret"))
}

func TestCreateSession_PVP(t *testing.T) {
	repo := newMemRepo()
	svc := newSessionService(repo)

	grant, err := svc.CreateSession(context.Background(), "Alice", model.ModePVP)
	require.NoError(t, err)

	assert.Len(t, grant.Session.Code, 6)
	assert.Equal(t, model.SessionSetup, grant.Session.Status)
	assert.Equal(t, model.ModePVP, grant.Session.Mode)
	assert.True(t, strings.HasPrefix(grant.Session.SlotA.ID, "player-"))
	assert.Equal(t, "Alice", grant.Session.SlotA.Name)
	assert.Nil(t, grant.Session.SlotB)
	assert.Empty(t, grant.Session.TurnOwner)

	assert.Equal(t, grant.Session.SlotA.ID, grant.SlotID)
	assert.NotEmpty(t, grant.Token)

	stored, err := repo.GetByCode(context.Background(), grant.Session.Code)
	require.NoError(t, err)
	assert.Equal(t, grant.Session.SlotA.ID, stored.SlotA.ID)
}

func TestCreateSession_Bot(t *testing.T) {
	svc := newSessionService(newMemRepo())

	grant, err := svc.CreateSession(context.Background(), "Alice", model.ModeBot)
	require.NoError(t, err)

	bot := grant.Session.SlotB
	require.NotNil(t, bot)
	assert.True(t, bot.Bot)
	assert.True(t, strings.HasPrefix(bot.ID, "bot-"))
	assert.True(t, bot.Ready)
	assert.NoError(t, game.ValidateFleet(bot.Fleet))
	assert.Equal(t, model.SessionSetup, grant.Session.Status)
}

func TestCreateSession_UnknownMode(t *testing.T) {
	svc := newSessionService(newMemRepo())

	_, err := svc.CreateSession(context.Background(), "Alice", model.GameMode("ranked"))
	assert.True(t, game.IsValidation(err))
}

func TestCreateSession_TokenRoundTrip(t *testing.T) {
	auth := NewAuthService("test-secret")
	svc := NewSessionService(newMemRepo(), nil, nil, auth)

	grant, err := svc.CreateSession(context.Background(), "Alice", model.ModePVP)
	require.NoError(t, err)

	claims, err := auth.ValidateSlotToken(grant.Token)
	require.NoError(t, err)
	assert.Equal(t, grant.Session.Code, claims.GameCode)
	assert.Equal(t, grant.SlotID, claims.SlotID)
}

func TestJoinSession(t *testing.T) {
	svc := newSessionService(newMemRepo())

	created, err := svc.CreateSession(context.Background(), "Alice", model.ModePVP)
	require.NoError(t, err)

	joined, err := svc.JoinSession(context.Background(), created.Session.Code, "Bob")
	require.NoError(t, err)

	require.NotNil(t, joined.Session.SlotB)
	assert.Equal(t, "Bob", joined.Session.SlotB.Name)
	assert.Equal(t, joined.Session.SlotB.ID, joined.SlotID)
	assert.NotEqual(t, created.SlotID, joined.SlotID)
	assert.Equal(t, model.SessionSetup, joined.Session.Status)
}

func TestJoinSession_Full(t *testing.T) {
	svc := newSessionService(newMemRepo())

	created, err := svc.CreateSession(context.Background(), "Alice", model.ModePVP)
	require.NoError(t, err)
	_, err = svc.JoinSession(context.Background(), created.Session.Code, "Bob")
	require.NoError(t, err)

	_, err = svc.JoinSession(context.Background(), created.Session.Code, "Carol")
	assert.True(t, game.IsIllegalTransition(err))
}

func TestJoinSession_BotGame(t *testing.T) {
	svc := newSessionService(newMemRepo())

	created, err := svc.CreateSession(context.Background(), "Alice", model.ModeBot)
	require.NoError(t, err)

	_, err = svc.JoinSession(context.Background(), created.Session.Code, "Bob")
	assert.True(t, game.IsIllegalTransition(err))
}

func TestJoinSession_NotFound(t *testing.T) {
	svc := newSessionService(newMemRepo())

	_, err := svc.JoinSession(context.Background(), "NOSUCH", "Bob")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetSession(t *testing.T) {
	repo := newMemRepo()
	svc := newSessionService(repo)

	created, err := svc.CreateSession(context.Background(), "Alice", model.ModePVP)
	require.NoError(t, err)

	got, err := svc.GetSession(context.Background(), created.Session.Code)
	require.NoError(t, err)
	assert.Equal(t, created.Session.Code, got.Code)

	_, err = svc.GetSession(context.Background(), "NOSUCH")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
