package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taskflow/taskflow-api/internal/api/shared"
	"github.com/taskflow/taskflow-api/internal/domain"
	"github.com/taskflow/taskflow-api/internal/platform/logger"
	"github.com/taskflow/taskflow-api/internal/service/auth"
	"github.com/taskflow/taskflow-api/internal/store"
)

// AuthMiddleware provides JWT authentication for routes. The session
// token travels in an HTTP-only cookie; a bearer Authorization header is
// accepted as a fallback for non-browser clients.
type AuthMiddleware struct {
	jwtService auth.JWTService
	userStore  store.UserStore
	cookieName string
}

// NewAuthMiddleware creates a new AuthMiddleware with the given
// dependencies.
func NewAuthMiddleware(
	jwtService auth.JWTService,
	userStore store.UserStore,
	cookieName string,
) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		userStore:  userStore,
		cookieName: cookieName,
	}
}

// Authenticate validates the session token, loads the account behind it
// and stores the user in the request context. Requests without a valid
// token are rejected; handlers behind this middleware can rely on
// shared.UserFromContext returning a non-nil user.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := m.extractToken(r)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
			return
		}

		claims, err := m.jwtService.ValidateAccessToken(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
			case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrWrongTokenType):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			default:
				logger.FromContext(r.Context()).Error("failed to validate token",
					slog.Any("error", err))
				shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
			}
			return
		}

		user, err := m.userStore.GetByID(r.Context(), claims.UserID)
		if err != nil {
			if store.IsNotFound(err) {
				// Token outlived the account.
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
				return
			}
			logger.FromContext(r.Context()).Error("failed to load authenticated user",
				slog.Any("error", err))
			shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
			return
		}

		next.ServeHTTP(w, r.WithContext(shared.WithUser(r.Context(), user)))
	})
}

// extractToken pulls the session token from the cookie or, failing
// that, the Authorization header.
func (m *AuthMiddleware) extractToken(r *http.Request) (string, error) {
	if cookie, err := r.Cookie(m.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", auth.ErrMissingToken
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", auth.ErrMissingToken
	}
	return parts[1], nil
}

// GetUser extracts the authenticated user from the request context.
func GetUser(r *http.Request) *domain.User {
	return shared.UserFromContext(r.Context())
}
