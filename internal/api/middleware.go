package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/mirrorlog/mirrorlog-server/internal/domain"
	apperrors "github.com/mirrorlog/mirrorlog-server/internal/errors"
	"github.com/mirrorlog/mirrorlog-server/internal/http/response"
)

type contextKey string

const userContextKey contextKey = "user"

// requireAuth verifies the access token and loads the requesting user
// into the request context. Deactivated accounts are rejected.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			response.Unauthorized(w, "missing authorization header", s.logger)
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			response.Unauthorized(w, "invalid authorization header format", s.logger)
			return
		}

		claims, err := s.tokens.VerifyAccessToken(token)
		if err != nil {
			response.Unauthorized(w, "invalid or expired token", s.logger)
			return
		}

		user, err := s.store.GetUser(r.Context(), claims.UserID)
		if err != nil {
			response.Unauthorized(w, "invalid or expired token", s.logger)
			return
		}
		if !user.IsActive {
			response.Forbidden(w, "account is deactivated", s.logger)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin restricts a route to admin users. Must run after requireAuth.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userFrom(r.Context())
		if !ok {
			response.Unauthorized(w, "authentication required", s.logger)
			return
		}
		if !user.IsAdmin() {
			response.Forbidden(w, "admin access required", s.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// userFrom extracts the authenticated user from the request context.
func userFrom(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userContextKey).(*domain.User)
	return user, ok
}

// requester returns the authenticated user or an unauthorized error.
func requester(ctx context.Context) (*domain.User, error) {
	user, ok := userFrom(ctx)
	if !ok {
		return nil, apperrors.Unauthorized("authentication required")
	}
	return user, nil
}
