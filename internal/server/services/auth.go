// Package services contains server-side business logic. This file
// implements AuthService: registration, login, token renewal, and the
// per-request user validation behind the auth middleware.
package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/avolkov/taskhub/internal/common"
	"github.com/avolkov/taskhub/internal/logging"
	"github.com/avolkov/taskhub/internal/server/auth"
	"github.com/avolkov/taskhub/internal/server/config"
	"github.com/avolkov/taskhub/internal/server/models"
	"github.com/avolkov/taskhub/internal/server/repositories/repomanager"
)

type AuthService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	logger        logging.Logger
	jwtSecret     []byte
	tokenValidity time.Duration
	bcryptCost    int
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger, cfg *config.Config) *AuthService {
	return &AuthService{
		db:            db,
		repomanager:   m,
		logger:        l.With("module", "auth_service"),
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.TokenValidityDuration,
		bcryptCost:    cfg.BcryptCost,
	}
}

// stripHash clears the password hash before a user leaves the service
// layer. Mandatory post-condition on every path that returns a User.
func stripHash(user *models.User) *models.User {
	user.PasswordHash = ""
	return user
}

// Register creates a new account. The email is normalized first; a clash
// with an existing account (including one differing only in case or
// whitespace) fails with ErrorAlreadyExists. The default role is the
// ordinary user role.
func (s *AuthService) Register(ctx context.Context, email, password, fullname string, role models.Role) (*models.User, error) {
	email = models.NormalizeEmail(email)

	if role == "" {
		role = models.RoleUsuario
	}

	repo := s.repomanager.Users(s.db)

	_, err := repo.GetByEmail(ctx, email)
	if err == nil {
		return nil, common.ErrorAlreadyExists
	}
	if !errors.Is(err, common.ErrorNotFound) {
		s.logger.Error(ctx, "registration lookup failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		s.logger.Error(ctx, "password hashing failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     fullname,
		Role:         role,
		IsActive:     true,
	}

	user, err = repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		s.logger.Error(ctx, "user creation failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "user registered", "email", user.Email)
	return stripHash(user), nil
}

// Login verifies credentials and issues a token. Unknown email, wrong
// password, and an inactive account are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = models.NormalizeEmail(email)

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "login lookup failed", "error", err.Error())
		return nil, "", common.ErrorInternal
	}

	if !user.IsActive {
		return nil, "", common.ErrorUnauthorized
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, "", common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(user, s.jwtSecret, s.tokenValidity)
	if err != nil {
		s.logger.Error(ctx, "token generation failed", "error", err.Error())
		return nil, "", common.ErrorInternal
	}

	s.logger.Info(ctx, "login ok", "email", user.Email)
	return stripHash(user), token, nil
}

// RenewToken re-issues a token for an already-authenticated identity.
// No password re-check.
func (s *AuthService) RenewToken(ctx context.Context, user *models.User) (string, error) {
	token, err := auth.GenerateToken(user, s.jwtSecret, s.tokenValidity)
	if err != nil {
		s.logger.Error(ctx, "token generation failed", "error", err.Error())
		return "", common.ErrorInternal
	}
	return token, nil
}

// ValidateUser re-confirms that the token's subject still exists and is
// active. Called on every authenticated request, so a deactivated account
// loses access even while its token is still cryptographically valid.
func (s *AuthService) ValidateUser(ctx context.Context, id string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorInvalidToken
		}
		s.logger.Error(ctx, "user validation failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	if !user.IsActive {
		return nil, common.ErrorInvalidToken
	}

	return stripHash(user), nil
}

// ParseToken verifies a raw token string with the service's signing secret.
func (s *AuthService) ParseToken(token string) (*auth.Claims, error) {
	return auth.ParseToken(token, s.jwtSecret)
}
