package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mirrorlog/mirrorlog-server/internal/auth"
	"github.com/mirrorlog/mirrorlog-server/internal/domain"
	apperrors "github.com/mirrorlog/mirrorlog-server/internal/errors"
	"github.com/mirrorlog/mirrorlog-server/internal/store"
	"github.com/mirrorlog/mirrorlog-server/internal/validation"
)

// UserService handles account maintenance for the authenticated user and
// the admin user directory.
type UserService struct {
	store     *store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(st *store.Store, v *validation.Validator, logger *slog.Logger) *UserService {
	return &UserService{
		store:     st,
		validator: v,
		logger:    logger,
	}
}

// UpdateMeRequest carries optional account changes. Omitted fields are
// left untouched.
type UpdateMeRequest struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=32"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=8,max=1024"`
}

// DeleteMeRequest requires the account password as confirmation.
type DeleteMeRequest struct {
	Password string `json:"password" validate:"required"`
}

// GetMe returns the authenticated user's account.
func (s *UserService) GetMe(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

// UpdateMe applies partial changes to the authenticated user's account.
// Username and email uniqueness are re-checked by the store; a changed
// password is re-hashed.
func (s *UserService) UpdateMe(ctx context.Context, userID string, req UpdateMeRequest) (*domain.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		user.Username = strings.TrimSpace(*req.Username)
	}
	if req.Email != nil {
		user.Email = strings.TrimSpace(*req.Email)
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeValidation, "password could not be hashed")
		}
		user.PasswordHash = hash
	}
	user.Touch()

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("User updated", "user_id", userID)
	}

	return user.Public(), nil
}

// DeleteMe removes the authenticated user's account after confirming the
// password. The user's pages, logs, and tags are left behind.
func (s *UserService) DeleteMe(ctx context.Context, userID string, req DeleteMeRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.InvalidCredentials("password is incorrect")
	}

	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("User deleted own account", "user_id", userID)
	}

	return nil
}

// ListUsers returns every account, newest first. Restricted to admins.
func (s *UserService) ListUsers(ctx context.Context, requester *domain.User) ([]*domain.User, error) {
	if !requester.IsAdmin() {
		return nil, apperrors.Forbidden("admin role required")
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	public := make([]*domain.User, len(users))
	for i, u := range users {
		public[i] = u.Public()
	}
	return public, nil
}
