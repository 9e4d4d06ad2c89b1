package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/avolkov/taskhub/internal/common"
	"github.com/avolkov/taskhub/internal/logging"
	"github.com/avolkov/taskhub/internal/server/access"
	"github.com/avolkov/taskhub/internal/server/auth"
	"github.com/avolkov/taskhub/internal/server/config"
	"github.com/avolkov/taskhub/internal/server/models"
	"github.com/avolkov/taskhub/internal/server/repositories/repomanager"
)

// UserService implements the superadmin-only user management surface.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	bcryptCost  int
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger, cfg *config.Config) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		logger:      l.With("module", "user_service"),
		bcryptCost:  cfg.BcryptCost,
	}
}

// UserPatch is the partial-update input for a user. Nil fields are left
// untouched; none of the columns are nullable, so plain pointers suffice.
type UserPatch struct {
	Email    *string      `json:"email"`
	Password *string      `json:"password"`
	FullName *string      `json:"fullname"`
	Role     *models.Role `json:"role"`
	IsActive *bool        `json:"is_active"`
}

// Create adds a user on behalf of a superadmin. Unlike self-registration
// the role may be chosen freely.
func (s *UserService) Create(ctx context.Context, identity *models.User, email, password, fullname string, role models.Role) (*models.User, error) {
	if err := access.RequireRole(identity, models.RoleSuperAdmin); err != nil {
		return nil, err
	}

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
		s.logger.Error(ctx, "user lookup failed", "error", err.Error())
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

	s.logger.Info(ctx, "user created by admin", "email", user.Email)
	return stripHash(user), nil
}

func (s *UserService) List(ctx context.Context, identity *models.User) ([]*models.User, error) {
	if err := access.RequireRole(identity, models.RoleSuperAdmin); err != nil {
		return nil, err
	}

	result, err := s.repomanager.Users(s.db).List(ctx)
	if err != nil {
		s.logger.Error(ctx, "user list failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	for _, u := range result {
		stripHash(u)
	}
	return result, nil
}

func (s *UserService) Get(ctx context.Context, identity *models.User, id string) (*models.User, error) {
	if err := access.RequireRole(identity, models.RoleSuperAdmin); err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "user lookup failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	return stripHash(user), nil
}

// Update applies a partial update. A changed email is normalized and
// re-checked for uniqueness; a supplied password is re-hashed.
func (s *UserService) Update(ctx context.Context, identity *models.User, id string, patch *UserPatch) (*models.User, error) {
	if err := access.RequireRole(identity, models.RoleSuperAdmin); err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "user lookup failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	if patch.Email != nil {
		email := models.NormalizeEmail(*patch.Email)
		if email != user.Email {
			_, err := repo.GetByEmail(ctx, email)
			if err == nil {
				return nil, common.ErrorAlreadyExists
			}
			if !errors.Is(err, common.ErrorNotFound) {
				s.logger.Error(ctx, "user lookup failed", "error", err.Error())
				return nil, common.ErrorInternal
			}
		}
		user.Email = email
	}
	if patch.Password != nil {
		hash, err := auth.HashPassword(*patch.Password, s.bcryptCost)
		if err != nil {
			s.logger.Error(ctx, "password hashing failed", "error", err.Error())
			return nil, common.ErrorInternal
		}
		user.PasswordHash = hash
	}
	if patch.FullName != nil {
		user.FullName = *patch.FullName
	}
	if patch.Role != nil {
		user.Role = *patch.Role
	}
	if patch.IsActive != nil {
		user.IsActive = *patch.IsActive
	}

	user, err = repo.Update(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		s.logger.Error(ctx, "user update failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "user updated", "email", user.Email)
	return stripHash(user), nil
}

// Delete removes a user permanently. The user's projects, their tasks, and
// any attachments cascade away with the row.
func (s *UserService) Delete(ctx context.Context, identity *models.User, id string) error {
	if err := access.RequireRole(identity, models.RoleSuperAdmin); err != nil {
		return err
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		s.logger.Error(ctx, "user lookup failed", "error", err.Error())
		return common.ErrorInternal
	}

	if err := repo.Delete(ctx, user.ID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		s.logger.Error(ctx, "user delete failed", "error", err.Error())
		return common.ErrorInternal
	}

	s.logger.Info(ctx, "user deleted", "email", user.Email)
	return nil
}
