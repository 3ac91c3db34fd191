// Package token issues and validates the platform's bearer tokens. A token
// carries the actor's ID, email, and role (donor or clinic); ownership-gated
// operations downstream trust these claims.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"donorlink/internal/platform/middleware"
	dErrors "donorlink/pkg/domain-errors"
)

const issuer = "donorlink"

// Claims represents the JWT claims for our access tokens.
type Claims struct {
	Email     string `json:"email"`
	ActorType string `json:"actor_type"`
	jwt.RegisteredClaims
}

// Service handles JWT creation and validation.
type Service struct {
	signingKey []byte
	ttl        time.Duration
}

func NewService(signingKey string, ttl time.Duration) *Service {
	return &Service{signingKey: []byte(signingKey), ttl: ttl}
}

// Issue signs a token for the given actor.
func (s *Service) Issue(actorID, email string, actorType middleware.ActorType) (string, error) {
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email:     email,
		ActorType: string(actorType),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actorID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    issuer,
			ID:        uuid.NewString(),
		},
	})
	return newToken.SignedString(s.signingKey)
}

// ValidateToken parses and verifies a token, returning middleware claims for
// the auth layer. Implements middleware.TokenValidator.
func (s *Service) ValidateToken(tokenString string) (*middleware.Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	actorType := middleware.ActorType(claims.ActorType)
	if actorType != middleware.ActorDonor && actorType != middleware.ActorClinic {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "unknown actor type")
	}

	return &middleware.Claims{
		ActorID:   claims.Subject,
		Email:     claims.Email,
		ActorType: actorType,
	}, nil
}
