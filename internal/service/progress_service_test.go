package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmby204/SGE/internal/models"
	appErrors "github.com/nmby204/SGE/pkg/errors"
)

type mockProgressRepo struct {
	byID    map[string]*models.PartialProgress
	created []*models.PartialProgress
	updated []*models.PartialProgress
	deleted []string
	listed  models.ProgressFilter
	stats   *models.ProgressStats
}

func (m *mockProgressRepo) FindByID(ctx context.Context, id string) (*models.PartialProgress, error) {
	progress, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *progress
	return &copied, nil
}

func (m *mockProgressRepo) ListByPlanning(ctx context.Context, planningID string) ([]models.PartialProgress, error) {
	return nil, nil
}

func (m *mockProgressRepo) List(ctx context.Context, filter models.ProgressFilter) ([]models.PartialProgress, error) {
	m.listed = filter
	return nil, nil
}

func (m *mockProgressRepo) Stats(ctx context.Context, filter models.ProgressFilter) (*models.ProgressStats, error) {
	m.listed = filter
	if m.stats != nil {
		return m.stats, nil
	}
	return &models.ProgressStats{}, nil
}

func (m *mockProgressRepo) Create(ctx context.Context, progress *models.PartialProgress) error {
	progress.ID = "prog-new"
	m.created = append(m.created, progress)
	return nil
}

func (m *mockProgressRepo) Update(ctx context.Context, progress *models.PartialProgress) error {
	m.updated = append(m.updated, progress)
	return nil
}

func (m *mockProgressRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

type mockPlanningLookup struct {
	plannings map[string]*models.Planning
}

func (m *mockPlanningLookup) FindByID(ctx context.Context, id string) (*models.Planning, error) {
	planning, ok := m.plannings[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return planning, nil
}

func approvedPlanningLookup() *mockPlanningLookup {
	return &mockPlanningLookup{plannings: map[string]*models.Planning{
		"plan-approved": {ID: "plan-approved", ProfessorID: "prof-1", Status: models.PlanningStatusApproved},
		"plan-pending":  {ID: "plan-pending", ProfessorID: "prof-1", Status: models.PlanningStatusPending},
	}}
}

func TestDeriveProgressStatusBands(t *testing.T) {
	assert.Equal(t, models.ProgressStatusFulfilled, models.DeriveProgressStatus(90))
	assert.Equal(t, models.ProgressStatusFulfilled, models.DeriveProgressStatus(100))
	assert.Equal(t, models.ProgressStatusPartial, models.DeriveProgressStatus(89))
	assert.Equal(t, models.ProgressStatusPartial, models.DeriveProgressStatus(60))
	assert.Equal(t, models.ProgressStatusUnfulfilled, models.DeriveProgressStatus(59))
	assert.Equal(t, models.ProgressStatusUnfulfilled, models.DeriveProgressStatus(0))
}

func TestProgressServiceCreateDerivesStatus(t *testing.T) {
	repo := &mockProgressRepo{}
	svc := NewProgressService(repo, approvedPlanningLookup(), nil, nil)

	progress, err := svc.Create(context.Background(), professorClaims("prof-1"), models.CreateProgressRequest{
		PlanningID:         "plan-approved",
		Partial:            1,
		ProgressPercentage: 75,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ProgressStatusPartial, progress.Status)
	require.Len(t, repo.created, 1)
}

func TestProgressServiceCreateRequiresApprovedPlanning(t *testing.T) {
	svc := NewProgressService(&mockProgressRepo{}, approvedPlanningLookup(), nil, nil)

	_, err := svc.Create(context.Background(), professorClaims("prof-1"), models.CreateProgressRequest{
		PlanningID:         "plan-pending",
		Partial:            1,
		ProgressPercentage: 50,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestProgressServiceReviewersBypassApprovalGate(t *testing.T) {
	repo := &mockProgressRepo{}
	svc := NewProgressService(repo, approvedPlanningLookup(), nil, nil)

	_, err := svc.Create(context.Background(), coordinatorClaims(), models.CreateProgressRequest{
		PlanningID:         "plan-pending",
		Partial:            1,
		ProgressPercentage: 40,
	})
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
}

func TestProgressServiceCreateForbidsOtherProfessors(t *testing.T) {
	svc := NewProgressService(&mockProgressRepo{}, approvedPlanningLookup(), nil, nil)

	_, err := svc.Create(context.Background(), professorClaims("prof-2"), models.CreateProgressRequest{
		PlanningID:         "plan-approved",
		Partial:            1,
		ProgressPercentage: 80,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestProgressServiceUpdateRederivesStatus(t *testing.T) {
	repo := &mockProgressRepo{byID: map[string]*models.PartialProgress{
		"prog-1": {
			ID:                 "prog-1",
			PlanningID:         "plan-approved",
			Partial:            1,
			ProgressPercentage: 50,
			Status:             models.ProgressStatusUnfulfilled,
		},
	}}
	svc := NewProgressService(repo, approvedPlanningLookup(), nil, nil)

	pct := 95
	progress, err := svc.Update(context.Background(), professorClaims("prof-1"), "prog-1", models.UpdateProgressRequest{
		ProgressPercentage: &pct,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ProgressStatusFulfilled, progress.Status)
}

func TestProgressServiceListRestrictsProfessorsToApproved(t *testing.T) {
	repo := &mockProgressRepo{}
	svc := NewProgressService(repo, approvedPlanningLookup(), nil, nil)

	_, err := svc.List(context.Background(), professorClaims("prof-1"), models.ProgressFilter{})
	require.NoError(t, err)
	assert.Equal(t, "prof-1", repo.listed.ProfessorID)
	assert.True(t, repo.listed.ApprovedOnly, "flat listing must keep the planning-approval view gate")

	_, err = svc.List(context.Background(), coordinatorClaims(), models.ProgressFilter{})
	require.NoError(t, err)
	assert.False(t, repo.listed.ApprovedOnly)
}

func TestProgressServiceStatsRestrictProfessorsToApproved(t *testing.T) {
	repo := &mockProgressRepo{stats: &models.ProgressStats{Total: 1}}
	svc := NewProgressService(repo, approvedPlanningLookup(), nil, nil)

	_, err := svc.Stats(context.Background(), professorClaims("prof-1"), models.ProgressFilter{})
	require.NoError(t, err)
	assert.True(t, repo.listed.ApprovedOnly)
}

func TestProgressServiceStatsScopesProfessor(t *testing.T) {
	repo := &mockProgressRepo{stats: &models.ProgressStats{Total: 3, AverageProgress: 71.5}}
	svc := NewProgressService(repo, approvedPlanningLookup(), nil, nil)

	stats, err := svc.Stats(context.Background(), professorClaims("prof-1"), models.ProgressFilter{ProfessorID: "prof-9"})
	require.NoError(t, err)
	assert.Equal(t, "prof-1", repo.listed.ProfessorID)
	assert.Equal(t, 3, stats.Total)
}
