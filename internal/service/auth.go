// Package service implements MirrorLog's application logic on top of the
// store, keeping HTTP handlers thin.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mirrorlog/mirrorlog-server/internal/auth"
	"github.com/mirrorlog/mirrorlog-server/internal/domain"
	apperrors "github.com/mirrorlog/mirrorlog-server/internal/errors"
	"github.com/mirrorlog/mirrorlog-server/internal/id"
	"github.com/mirrorlog/mirrorlog-server/internal/store"
	"github.com/mirrorlog/mirrorlog-server/internal/validation"
)

// AuthService handles registration, login, and token lifecycle.
type AuthService struct {
	store     *store.Store
	tokens    *auth.TokenService
	validator *validation.Validator
	logger    *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(st *store.Store, tokens *auth.TokenService, v *validation.Validator, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:     st,
		tokens:    tokens,
		validator: v,
		logger:    logger,
	}
}

// RegisterRequest contains user registration data.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
}

// LoginRequest contains user credentials. The identifier may be a
// username or an email address.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// RefreshRequest carries the opaque refresh token to rotate.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// AuthResponse contains authentication tokens and user data.
type AuthResponse struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresIn    int64        `json:"expiresIn"` // Access token lifetime in seconds
}

// Register creates a new user account.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeValidation, "password could not be hashed")
	}

	userID, err := id.Generate("user")
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           userID,
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: passwordHash,
		Role:         domain.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("User registered", "user_id", userID, "username", user.Username)
	}

	return user.Public(), nil
}

// Login verifies credentials and issues a token pair. The refresh token
// hash is persisted on the user record so Refresh can rotate it.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.lookupByIdentifier(ctx, req.Identifier)
	if err != nil {
		// Same error for unknown user and bad password.
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.InvalidCredentials("invalid credentials")
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, apperrors.Forbidden("account is deactivated")
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, apperrors.InvalidCredentials("invalid credentials")
	}

	return s.issueTokens(ctx, user)
}

// Refresh rotates the token pair. The presented refresh token must match
// the hash stored on a user record.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.findUserByRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		return nil, apperrors.Forbidden("account is deactivated")
	}

	return s.issueTokens(ctx, user)
}

// Logout clears the user's stored refresh token, invalidating it.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	user.RefreshToken = ""
	user.Touch()

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("User logged out", "user_id", userID)
	}

	return nil
}

func (s *AuthService) lookupByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	if strings.Contains(identifier, "@") {
		return s.store.GetUserByEmail(ctx, identifier)
	}
	return s.store.GetUserByUsername(ctx, identifier)
}

func (s *AuthService) issueTokens(ctx context.Context, user *domain.User) (*AuthResponse, error) {
	accessToken, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	user.RefreshToken = auth.HashRefreshToken(refreshToken)
	user.Touch()

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("persist refresh token: %w", err)
	}

	return &AuthResponse{
		User:         user.Public(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.tokens.AccessTokenDuration().Seconds()),
	}, nil
}

// findUserByRefreshToken scans users for a matching refresh token hash.
// The user set of a personal server is small, so a scan beats carrying
// another index that must stay consistent with token rotation.
func (s *AuthService) findUserByRefreshToken(ctx context.Context, refreshToken string) (*domain.User, error) {
	hash := auth.HashRefreshToken(refreshToken)

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	for _, user := range users {
		if user.RefreshToken != "" && user.RefreshToken == hash {
			return user, nil
		}
	}

	return nil, apperrors.Unauthorized("invalid refresh token")
}
