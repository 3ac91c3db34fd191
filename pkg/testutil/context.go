package testutil

import (
	"net/http"
	"time"

	"donorlink/internal/platform/middleware"
	"donorlink/pkg/requestcontext"
)

// WithActor adds actor identity to the request context. This simulates what
// the auth middleware would do for an authenticated request.
func WithActor(req *http.Request, actorID, email string, actorType middleware.ActorType) *http.Request {
	ctx := middleware.WithActor(req.Context(), actorID, email, actorType)
	return req.WithContext(ctx)
}

// WithTime pins the request time, letting tests assert exact derived dates.
func WithTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
