package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/nmby204/SGE/internal/models"
)

func newEvidenceRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func evidenceMockRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "professor_id", "course_name", "institution", "date", "hours",
		"file_url", "file_name", "drive_file_id", "storage_type", "status",
		"feedback", "is_active", "created_at", "updated_at",
		"professor_name", "professor_email",
	})
}

func TestEvidenceRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newEvidenceRepoMock(t)
	defer cleanup()

	repo := NewEvidenceRepository(db)
	now := time.Now()
	rows := evidenceMockRows().
		AddRow("ev-1", "prof-1", "Didactics Workshop", "UNAM", now, 20,
			"/uploads/certificate.pdf", nil, nil, "local", "pending",
			nil, true, now, now, "Ana Torres", "ana@school.edu")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT e.id, e.professor_id, e.course_name")).
		WithArgs("ev-1").
		WillReturnRows(rows)

	evidence, err := repo.FindByID(context.Background(), "ev-1")
	require.NoError(t, err)
	require.Equal(t, "ev-1", evidence.ID)
	require.Equal(t, models.EvidenceStatusPending, evidence.Status)
	require.NotNil(t, evidence.Professor)
	require.Equal(t, "Ana Torres", evidence.Professor.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEvidenceRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newEvidenceRepoMock(t)
	defer cleanup()

	repo := NewEvidenceRepository(db)
	now := time.Now()
	status := models.EvidenceStatusApproved
	start := now.AddDate(0, -1, 0)

	rows := evidenceMockRows().
		AddRow("ev-1", "prof-1", "Didactics Workshop", "UNAM", now, 20,
			"/uploads/certificate.pdf", nil, nil, "local", "approved",
			nil, true, now, now, "Ana Torres", "ana@school.edu")

	mock.ExpectQuery(`SELECT e\.id, .+ FROM evidences e JOIN users u .+ e\.professor_id = \$1 AND e\.status = \$2 AND e\.date >= \$3`).
		WithArgs("prof-1", status, start).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("prof-1", status, start).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	evidences, total, err := repo.List(context.Background(), models.EvidenceFilter{
		ProfessorID: "prof-1",
		Status:      &status,
		StartDate:   &start,
	})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, evidences, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEvidenceRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newEvidenceRepoMock(t)
	defer cleanup()

	repo := NewEvidenceRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO evidences")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	evidence := &models.Evidence{
		ProfessorID: "prof-1",
		CourseName:  "Didactics Workshop",
		Institution: "UNAM",
		Date:        time.Now(),
		Hours:       20,
		FileURL:     "/uploads/certificate.pdf",
		StorageType: models.StorageTypeLocal,
		Status:      models.EvidenceStatusPending,
		IsActive:    true,
	}
	require.NoError(t, repo.Create(context.Background(), evidence))
	require.NotEmpty(t, evidence.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEvidenceRepositoryReview(t *testing.T) {
	db, mock, cleanup := newEvidenceRepoMock(t)
	defer cleanup()

	repo := NewEvidenceRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE evidences SET status = $2, feedback = $3")).
		WithArgs("ev-1", models.EvidenceStatusRejected, "certificate is illegible", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Review(context.Background(), "ev-1", models.EvidenceStatusRejected, "certificate is illegible")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEvidenceRepositoryDeleteIsSoft(t *testing.T) {
	db, mock, cleanup := newEvidenceRepoMock(t)
	defer cleanup()

	repo := NewEvidenceRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE evidences SET is_active = FALSE")).
		WithArgs("ev-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "ev-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
