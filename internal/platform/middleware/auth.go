package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"giftlist/pkg/requestcontext"
)

// SessionValidator validates a session token and resolves the principal.
type SessionValidator interface {
	ValidateToken(ctx context.Context, token string) (userID int64, sessionID string, err error)
}

// SessionCookieName is the cookie fallback for clients that cannot set an
// Authorization header.
const SessionCookieName = "giftlist_session"

// RequireSession rejects requests without a live session and injects the
// authenticated user into the request context. The 401 response carries an
// `Authorization: basic` header as a hint to clients; the API is served over
// HTTPS only.
func RequireSession(validator SessionValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				unauthorized(w, r, logger, "missing session token")
				return
			}

			userID, sessionID, err := validator.ValidateToken(r.Context(), token)
			if err != nil {
				unauthorized(w, r, logger, err.Error())
				return
			}

			ctx := requestcontext.WithUserID(r.Context(), userID)
			ctx = requestcontext.WithSessionID(ctx, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return after
	}
	if c, err := r.Cookie(SessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

func unauthorized(w http.ResponseWriter, r *http.Request, logger *slog.Logger, reason string) {
	logger.WarnContext(r.Context(), "unauthorized request",
		"path", r.URL.Path,
		"reason", reason,
		"request_id", requestcontext.RequestID(r.Context()),
	)
	w.Header().Set("Authorization", "basic")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"Unauthorized"}`))
}
