package middleware

import (
	"context"
	"errors"
	"net/http"

	"scratchbook-server/internal/domain"
	"scratchbook-server/pkg/jwt"
	"scratchbook-server/pkg/response"
)

type contextKey string

const callerKey contextKey = "caller"

// TokenCookie is the session cookie name.
const TokenCookie = "token"

// AuthMiddleware resolves the optional caller identity from the session
// cookie. A missing cookie is legal and yields the anonymous caller; a
// present but invalid or expired token rejects the request outright.
func AuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(TokenCookie)
			if err != nil {
				if errors.Is(err, http.ErrNoCookie) {
					next.ServeHTTP(w, r)
					return
				}
				response.BadRequest(w, "Unauthorized: Invalid token")
				return
			}

			claims, err := jwt.ValidateToken(cookie.Value, jwtSecret)
			if err != nil {
				response.BadRequest(w, "Unauthorized: Invalid token")
				return
			}

			caller := domain.Caller{ID: claims.UserID, Username: claims.Username}
			ctx := context.WithValue(r.Context(), callerKey, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetCaller returns the caller stored by AuthMiddleware, or the anonymous
// caller when no identity was resolved.
func GetCaller(r *http.Request) domain.Caller {
	caller, ok := r.Context().Value(callerKey).(domain.Caller)
	if !ok {
		return domain.Anonymous
	}
	return caller
}
