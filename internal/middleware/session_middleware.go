package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"kizuki-server/internal/session"
	"kizuki-server/pkg/response"
)

// SessionMiddleware attaches the caller's access token to the request
// context. The Authorization header wins over the session cookie. Requests
// without credentials pass through; the services decide what that means.
func SessionMiddleware(cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" && cookieName != "" {
				if cookie, err := r.Cookie(cookieName); err == nil {
					token = cookie.Value
				}
			}

			if token != "" {
				r = r.WithContext(session.WithToken(r.Context(), token))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession rejects requests the gate cannot resolve to a user.
func RequireSession(gate session.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := gate.Resolve(r.Context())
			if err != nil {
				if errors.Is(err, session.ErrNoSession) {
					response.Unauthorized(w, "unauthorized")
					return
				}
				response.InternalError(w, "session check failed")
				return
			}

			setUserID(r.Context(), identity.UserID)
			next.ServeHTTP(w, r)
		})
	}
}

type recordingGate struct {
	session.Gate
}

// RecordingGate wraps gate so every identity it resolves is attached to the
// request log line. Services that resolve the session themselves should be
// given the wrapped gate.
func RecordingGate(gate session.Gate) session.Gate {
	return recordingGate{Gate: gate}
}

func (g recordingGate) Resolve(ctx context.Context) (*session.Identity, error) {
	identity, err := g.Gate.Resolve(ctx)
	if err == nil {
		setUserID(ctx, identity.UserID)
	}
	return identity, err
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
