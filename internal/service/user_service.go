package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/nmby204/SGE/internal/models"
	appErrors "github.com/nmby204/SGE/pkg/errors"
)

type userRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	RevokeUserRefreshTokens(ctx context.Context, userID string) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// UserService provides user management use cases. All operations are reserved
// for administrators; the caller id is recorded in the audit trail.
type UserService struct {
	repo      userRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs a UserService instance.
func NewUserService(repo userRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, validator: validate, logger: logger}
}

// List returns users matching the filter plus pagination metadata.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return users, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Get returns a single user by id.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

// Create provisions a new user with a hashed password.
func (s *UserService) Create(ctx context.Context, actorID string, req models.CreateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}
	if !req.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}

	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email is already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	s.audit(ctx, actorID, models.AuditActionUserCreate, user.ID, nil, user)
	return user, nil
}

// Update applies non-nil fields to a user. Deactivating a user also revokes
// their refresh tokens so sessions end immediately.
func (s *UserService) Update(ctx context.Context, actorID, id string, req models.UpdateUserRequest) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	previous := *user
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
		}
		user.Role = *req.Role
	}
	deactivated := false
	if req.IsActive != nil {
		deactivated = user.IsActive && !*req.IsActive
		user.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}

	if deactivated {
		if err := s.repo.RevokeUserRefreshTokens(ctx, user.ID); err != nil {
			s.logger.Warn("failed to revoke sessions of deactivated user", zap.String("user_id", user.ID), zap.Error(err))
		}
	}

	s.audit(ctx, actorID, models.AuditActionUserUpdate, user.ID, &previous, user)
	return user, nil
}

// Delete deactivates a user and ends their sessions. Rows are never removed.
func (s *UserService) Delete(ctx context.Context, actorID, id string) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if actorID == id {
		return appErrors.Clone(appErrors.ErrForbidden, "cannot deactivate own account")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete user")
	}
	if err := s.repo.RevokeUserRefreshTokens(ctx, id); err != nil {
		s.logger.Warn("failed to revoke sessions of deleted user", zap.String("user_id", id), zap.Error(err))
	}

	s.audit(ctx, actorID, models.AuditActionUserDelete, id, user, nil)
	return nil
}

func (s *UserService) audit(ctx context.Context, actorID, action, resourceID string, oldValue, newValue *models.User) {
	entry := &models.AuditLog{
		Action:     action,
		Resource:   "users",
		ResourceID: &resourceID,
	}
	if actorID != "" {
		entry.UserID = &actorID
	}
	if oldValue != nil {
		if data, err := json.Marshal(oldValue); err == nil {
			entry.OldValues = data
		}
	}
	if newValue != nil {
		if data, err := json.Marshal(newValue); err == nil {
			entry.NewValues = data
		}
	}
	entry.CreatedAt = time.Now().UTC()
	if err := s.repo.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to record user audit log", zap.Error(err))
	}
}
