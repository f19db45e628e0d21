package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/rl1809/webshop/internal/core/domain"
	"github.com/rl1809/webshop/internal/port"
)

const sessionCookieName = "webshop_session"

// IdentityResolver turns an incoming request into an explicit
// domain.Identity: a verified bearer token yields an authenticated
// user, otherwise a guest session cookie (created on first contact)
// identifies the caller.
type IdentityResolver struct {
	verifier port.TokenVerifier
	sessions port.SessionRepository
}

func NewIdentityResolver(verifier port.TokenVerifier, sessions port.SessionRepository) *IdentityResolver {
	return &IdentityResolver{verifier: verifier, sessions: sessions}
}

func (ir *IdentityResolver) Resolve(w http.ResponseWriter, r *http.Request) domain.Identity {
	identity := domain.Identity{SessionID: ir.sessionID(w, r)}

	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		userID, roles, err := ir.verifier.Verify(token)
		if err != nil {
			slog.Warn("rejected bearer token", "error", err)
		} else {
			identity.UserID = userID
			for _, role := range roles {
				identity.Roles = append(identity.Roles, domain.Role(role))
			}
		}
	}
	return identity
}

func (ir *IdentityResolver) sessionID(w http.ResponseWriter, r *http.Request) string {
	var id string
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		id = cookie.Value
	} else {
		id = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookieName,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	if err := ir.sessions.Touch(r.Context(), id); err != nil {
		slog.Warn("failed to touch session", "session_id", id, "error", err)
	}
	return id
}
