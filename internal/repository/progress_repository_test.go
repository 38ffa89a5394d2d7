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

func newProgressRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func progressMockRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "planning_id", "partial", "progress_percentage", "status",
		"achievements", "challenges", "adjustments", "due_date",
		"next_checkpoint", "is_active", "created_at", "updated_at",
	})
}

func TestProgressRepositoryListByPlanning(t *testing.T) {
	db, mock, cleanup := newProgressRepoMock(t)
	defer cleanup()

	repo := NewProgressRepository(db)
	now := time.Now()
	rows := progressMockRows().
		AddRow("prog-1", "plan-1", 1, 95, "fulfilled", nil, nil, nil, nil, nil, true, now, now).
		AddRow("prog-2", "plan-1", 2, 70, "partial", nil, nil, nil, nil, nil, true, now, now)

	mock.ExpectQuery(regexp.QuoteMeta("FROM partial_progress pp WHERE pp.planning_id = $1")).
		WithArgs("plan-1").
		WillReturnRows(rows)

	entries, err := repo.ListByPlanning(context.Background(), "plan-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, 1, entries[0].Partial)
	require.Equal(t, models.ProgressStatusPartial, entries[1].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressRepositoryListProfessorScope(t *testing.T) {
	db, mock, cleanup := newProgressRepoMock(t)
	defer cleanup()

	repo := NewProgressRepository(db)
	now := time.Now()
	rows := progressMockRows().
		AddRow("prog-1", "plan-1", 1, 50, "unfulfilled", nil, nil, nil, nil, nil, true, now, now)

	mock.ExpectQuery(regexp.QuoteMeta("JOIN didactic_plannings p ON p.id = pp.planning_id")).
		WithArgs("prof-1").
		WillReturnRows(rows)

	entries, err := repo.List(context.Background(), models.ProgressFilter{ProfessorID: "prof-1"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, models.ProgressStatusUnfulfilled, entries[0].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressRepositoryListApprovedOnly(t *testing.T) {
	db, mock, cleanup := newProgressRepoMock(t)
	defer cleanup()

	repo := NewProgressRepository(db)
	now := time.Now()
	rows := progressMockRows().
		AddRow("prog-1", "plan-1", 1, 95, "fulfilled", nil, nil, nil, nil, nil, true, now, now)

	mock.ExpectQuery(`p\.professor_id = \$1 AND p\.status = 'approved'`).
		WithArgs("prof-1").
		WillReturnRows(rows)

	entries, err := repo.List(context.Background(), models.ProgressFilter{ProfessorID: "prof-1", ApprovedOnly: true})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressRepositoryStats(t *testing.T) {
	db, mock, cleanup := newProgressRepoMock(t)
	defer cleanup()

	repo := NewProgressRepository(db)
	rows := sqlmock.NewRows([]string{"total", "fulfilled", "partial", "unfulfilled", "average_progress"}).
		AddRow(4, 2, 1, 1, 78.5)

	mock.ExpectQuery(regexp.QuoteMeta("COUNT(*) FILTER (WHERE pp.status = 'fulfilled')")).
		WithArgs("prof-1").
		WillReturnRows(rows)

	stats, err := repo.Stats(context.Background(), models.ProgressFilter{ProfessorID: "prof-1"})
	require.NoError(t, err)
	require.Equal(t, 4, stats.Total)
	require.Equal(t, 2, stats.Fulfilled)
	require.InDelta(t, 78.5, stats.AverageProgress, 0.01)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newProgressRepoMock(t)
	defer cleanup()

	repo := NewProgressRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO partial_progress")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	progress := &models.PartialProgress{
		PlanningID:         "plan-1",
		Partial:            1,
		ProgressPercentage: 92,
		Status:             models.ProgressStatusFulfilled,
		IsActive:           true,
	}
	require.NoError(t, repo.Create(context.Background(), progress))
	require.NotEmpty(t, progress.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
