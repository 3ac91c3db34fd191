package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	dErrors "donorlink/pkg/domain-errors"
)

// ActorType distinguishes the two authenticated roles on the platform.
type ActorType string

const (
	ActorDonor  ActorType = "donor"
	ActorClinic ActorType = "clinic"
)

// TokenValidator defines the interface for validating bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims represents the identity we expect from the token validator.
type Claims struct {
	ActorID   string
	Email     string
	ActorType ActorType
}

type contextKeyActorID struct{}
type contextKeyActorEmail struct{}
type contextKeyActorType struct{}

// GetActorID retrieves the authenticated actor's ID from the context.
func GetActorID(ctx context.Context) string {
	actorID, ok := ctx.Value(contextKeyActorID{}).(string)
	if !ok {
		return ""
	}
	return actorID
}

// GetActorEmail retrieves the authenticated actor's email from the context.
func GetActorEmail(ctx context.Context) string {
	email, ok := ctx.Value(contextKeyActorEmail{}).(string)
	if !ok {
		return ""
	}
	return email
}

// GetActorType retrieves the authenticated actor's role from the context.
func GetActorType(ctx context.Context) ActorType {
	actorType, ok := ctx.Value(contextKeyActorType{}).(ActorType)
	if !ok {
		return ""
	}
	return actorType
}

// WithActor injects actor identity into a context. Exported for tests and for
// non-HTTP callers (maintenance jobs) that act with a known identity.
func WithActor(ctx context.Context, actorID, email string, actorType ActorType) context.Context {
	ctx = context.WithValue(ctx, contextKeyActorID{}, actorID)
	ctx = context.WithValue(ctx, contextKeyActorEmail{}, email)
	return context.WithValue(ctx, contextKeyActorType{}, actorType)
}

// RequireAuth validates the bearer token and stores the actor identity in the
// request context. Requests without a valid token get a 401.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(r.Context(), "token validation failed", "error", err.Error())
				WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
				return
			}

			ctx := WithActor(r.Context(), claims.ActorID, claims.Email, claims.ActorType)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireActorType gates a route to a single role. Must run after RequireAuth.
func RequireActorType(actorType ActorType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetActorType(r.Context()) != actorType {
				WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "operation requires "+string(actorType)+" role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
