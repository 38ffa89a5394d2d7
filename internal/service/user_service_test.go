package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nmby204/SGE/internal/models"
	appErrors "github.com/nmby204/SGE/pkg/errors"
)

type mockUserRepo struct {
	byID    map[string]*models.User
	byEmail map[string]*models.User
	revoked []string
	audits  []models.AuditLog
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := m.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (m *mockUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	var out []models.User
	for _, user := range m.byID {
		out = append(out, *user)
	}
	return out, len(out), nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = "user-new"
	return nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	if m.byID == nil {
		m.byID = map[string]*models.User{}
	}
	copied := *user
	m.byID[user.ID] = &copied
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	if user, ok := m.byID[id]; ok {
		user.IsActive = false
	}
	return nil
}

func (m *mockUserRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	m.revoked = append(m.revoked, userID)
	return nil
}

func (m *mockUserRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.audits = append(m.audits, *log)
	return nil
}

func activeUser(id string, role models.UserRole) *models.User {
	return &models.User{
		ID:       id,
		Name:     "Ana Torres",
		Email:    "ana@school.edu",
		Role:     role,
		IsActive: true,
	}
}

func TestUserServiceCreateHashesPassword(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewUserService(repo, nil, nil)

	user, err := svc.Create(context.Background(), "admin-1", models.CreateUserRequest{
		Name:     "Ana Torres",
		Email:    "ana@school.edu",
		Password: "secret123",
		Role:     models.RoleProfessor,
	})
	require.NoError(t, err)
	assert.Equal(t, "user-new", user.ID)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))

	require.Len(t, repo.audits, 1)
	assert.Equal(t, models.AuditActionUserCreate, repo.audits[0].Action)
}

func TestUserServiceCreateRejectsDuplicateEmail(t *testing.T) {
	existing := activeUser("user-1", models.RoleProfessor)
	repo := &mockUserRepo{byEmail: map[string]*models.User{existing.Email: existing}}
	svc := NewUserService(repo, nil, nil)

	_, err := svc.Create(context.Background(), "admin-1", models.CreateUserRequest{
		Name:     "Ana Torres",
		Email:    existing.Email,
		Password: "secret123",
		Role:     models.RoleProfessor,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestUserServiceCreateRejectsUnknownRole(t *testing.T) {
	svc := NewUserService(&mockUserRepo{}, nil, nil)

	_, err := svc.Create(context.Background(), "admin-1", models.CreateUserRequest{
		Name:     "Ana Torres",
		Email:    "ana@school.edu",
		Password: "secret123",
		Role:     "principal",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUserServiceDeactivationRevokesSessions(t *testing.T) {
	repo := &mockUserRepo{byID: map[string]*models.User{"user-1": activeUser("user-1", models.RoleProfessor)}}
	svc := NewUserService(repo, nil, nil)

	inactive := false
	user, err := svc.Update(context.Background(), "admin-1", "user-1", models.UpdateUserRequest{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, user.IsActive)
	assert.Contains(t, repo.revoked, "user-1")
}

func TestUserServiceDeleteForbidsSelf(t *testing.T) {
	repo := &mockUserRepo{byID: map[string]*models.User{"admin-1": activeUser("admin-1", models.RoleAdmin)}}
	svc := NewUserService(repo, nil, nil)

	err := svc.Delete(context.Background(), "admin-1", "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.revoked)
}

func TestUserServiceDeleteRevokesSessions(t *testing.T) {
	repo := &mockUserRepo{byID: map[string]*models.User{"user-1": activeUser("user-1", models.RoleProfessor)}}
	svc := NewUserService(repo, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "admin-1", "user-1"))
	assert.Contains(t, repo.revoked, "user-1")
	require.Len(t, repo.audits, 1)
	assert.Equal(t, models.AuditActionUserDelete, repo.audits[0].Action)
}
