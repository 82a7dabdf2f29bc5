package middleware

import (
	"context"
	"net/http"
	"strings"

	h "chatvote/internal/delivery/http/helpers"
	"chatvote/internal/domain"
)

type contextKey string

const (
	actorIDKey     contextKey = "actorID"
	displayNameKey contextKey = "displayName"
)

// SetActor returns a context carrying the actor's id and display name.
// Used by the auth middleware and by tests.
func SetActor(ctx context.Context, actorID, displayName string) context.Context {
	ctx = context.WithValue(ctx, actorIDKey, actorID)
	return context.WithValue(ctx, displayNameKey, displayName)
}

// ActorFromContext returns the authenticated actor's id and display name.
func ActorFromContext(ctx context.Context) (actorID, displayName string, ok bool) {
	actorID, ok = ctx.Value(actorIDKey).(string)
	if !ok {
		return "", "", false
	}
	displayName, _ = ctx.Value(displayNameKey).(string)
	return actorID, displayName, true
}

// RequireAuth returns a wrapper that validates the Bearer token and sets the
// actor identity in the request context. If the token is missing or invalid,
// it responds with 401 and does not call next.
func RequireAuth(verifier domain.TokenVerifier) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing authorization header")
				return
			}
			const prefix = "Bearer "
			if !strings.HasPrefix(auth, prefix) {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid authorization format")
				return
			}
			token := strings.TrimSpace(auth[len(prefix):])
			if token == "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing token")
				return
			}
			actorID, displayName, err := verifier.Verify(token)
			if err != nil {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired token")
				return
			}
			r = r.WithContext(SetActor(r.Context(), actorID, displayName))
			next(w, r)
		}
	}
}
