package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"seabattle/internal/model"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// AuthService issues and validates session-scoped slot tokens. A token
// binds one slot ID to one game code; it is the only proof of slot
// ownership the engine accepts.
type AuthService struct {
	jwtSecret []byte
}

// NewAuthService creates a new auth service.
func NewAuthService(secret string) *AuthService {
	return &AuthService{jwtSecret: []byte(secret)}
}

// GenerateSlotToken creates a token for a slot in a session.
func (s *AuthService) GenerateSlotToken(gameCode, slotID string) (string, error) {
	claims := &model.SlotClaims{
		GameCode: gameCode,
		SlotID:   slotID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateSlotToken validates a slot JWT and returns its claims.
func (s *AuthService) ValidateSlotToken(tokenString string) (*model.SlotClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.SlotClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.SlotClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
