package domain

import "time"

// TokenIssuer issues tokens (e.g. JWT) the gateway uses to assert an
// actor's identity to this service.
type TokenIssuer interface {
	Issue(actorID, displayName string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the actor's id and the
// display name the gateway attached to it.
type TokenVerifier interface {
	Verify(token string) (actorID, displayName string, err error)
}
