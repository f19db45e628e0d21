package port

import "context"

// SessionRepository backs guest sessions, flash messages for the
// server-rendered flow, and the checkout double-submit guard.
type SessionRepository interface {
	// Touch creates the session if needed and extends its TTL.
	Touch(ctx context.Context, sessionID string) error

	// AddFlash appends a flash message to the session.
	AddFlash(ctx context.Context, sessionID, message string) error

	// PopFlashes drains and returns the session's flash messages.
	PopFlashes(ctx context.Context, sessionID string) ([]string, error)

	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// ReleaseIdempotency removes the key so the operation may be retried
	// after a failed attempt.
	ReleaseIdempotency(ctx context.Context, key string) error
}

// TokenVerifier resolves a bearer token into a user id and roles.
type TokenVerifier interface {
	Verify(token string) (userID string, roles []string, err error)
}
