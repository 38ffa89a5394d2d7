package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/nmby204/SGE/internal/models"
)

func newUserRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func userMockRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "email", "password_hash", "role", "is_active",
		"last_login", "created_at", "updated_at",
	})
}

func TestUserRepositoryFindByEmail(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	now := time.Now()
	rows := userMockRows().
		AddRow("user-1", "Ana Torres", "ana@school.edu", "hash", "professor", true, nil, now, now)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, password_hash")).
		WithArgs("ana@school.edu").
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), "ana@school.edu")
	require.NoError(t, err)
	require.Equal(t, "user-1", user.ID)
	require.Equal(t, models.RoleProfessor, user.Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindByEmailNotFound(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, password_hash")).
		WithArgs("nobody@school.edu").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "nobody@school.edu")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	now := time.Now()
	role := models.RoleProfessor
	rows := userMockRows().
		AddRow("user-1", "Ana Torres", "ana@school.edu", "hash", "professor", true, nil, now, now)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, password_hash")).
		WithArgs(role, "%ana%").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs(role, "%ana%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	users, total, err := repo.List(context.Background(), models.UserFilter{
		Role:   &role,
		Search: "Ana",
	})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, users, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	user := &models.User{
		Name:         "Ana Torres",
		Email:        "ana@school.edu",
		PasswordHash: "hash",
		Role:         models.RoleProfessor,
		IsActive:     true,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	require.NotEmpty(t, user.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryDeleteIsSoft(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET is_active = FALSE")).
		WithArgs("user-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "user-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryRefreshTokenLifecycle(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO refresh_tokens")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	token := &models.RefreshToken{
		UserID:    "user-1",
		Token:     "opaque-token",
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	require.NoError(t, repo.CreateRefreshToken(context.Background(), token))
	require.NotEmpty(t, token.ID)

	rows := sqlmock.NewRows([]string{"id", "user_id", "token", "expires_at", "created_at", "revoked", "revoked_at", "ip_address", "user_agent"}).
		AddRow(token.ID, "user-1", "opaque-token", token.ExpiresAt, time.Now(), false, nil, "127.0.0.1", "go-test")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, token, expires_at")).
		WithArgs("opaque-token").
		WillReturnRows(rows)

	found, err := repo.FindRefreshToken(context.Background(), "opaque-token")
	require.NoError(t, err)
	require.Equal(t, "user-1", found.UserID)
	require.False(t, found.Revoked)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $2 WHERE id = $1")).
		WithArgs(token.ID, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.RevokeRefreshToken(context.Background(), token.ID, time.Now()))

	require.NoError(t, mock.ExpectationsWereMet())
}
