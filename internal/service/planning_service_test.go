package service

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmby204/SGE/internal/models"
	appErrors "github.com/nmby204/SGE/pkg/errors"
	"github.com/nmby204/SGE/pkg/storage"
)

type mockPlanningRepo struct {
	byID     map[string]*models.Planning
	created  []*models.Planning
	updated  []*models.Planning
	reviewed []string
	deleted  []string
	history  []models.Planning
	listed   models.PlanningFilter
}

func (m *mockPlanningRepo) FindByID(ctx context.Context, id string) (*models.Planning, error) {
	planning, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *planning
	return &copied, nil
}

func (m *mockPlanningRepo) List(ctx context.Context, filter models.PlanningFilter) ([]models.Planning, int, error) {
	m.listed = filter
	return nil, 0, nil
}

func (m *mockPlanningRepo) History(ctx context.Context, courseName, excludeCycle string) ([]models.Planning, error) {
	return m.history, nil
}

func (m *mockPlanningRepo) Create(ctx context.Context, planning *models.Planning) error {
	planning.ID = "plan-new"
	m.created = append(m.created, planning)
	return nil
}

func (m *mockPlanningRepo) Update(ctx context.Context, planning *models.Planning) error {
	m.updated = append(m.updated, planning)
	if m.byID != nil {
		copied := *planning
		m.byID[planning.ID] = &copied
	}
	return nil
}

func (m *mockPlanningRepo) Review(ctx context.Context, id string, status models.PlanningStatus, feedback string) error {
	m.reviewed = append(m.reviewed, id)
	return nil
}

func (m *mockPlanningRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

type mockStore struct {
	saved []string
}

func (m *mockStore) Save(ctx context.Context, filename string, r io.Reader) (*storage.UploadResult, error) {
	m.saved = append(m.saved, filename)
	return &storage.UploadResult{URL: "/uploads/" + filename, ExternalID: filename, Size: 42}, nil
}

func (m *mockStore) Delete(ctx context.Context, externalID string) error {
	return nil
}

func professorClaims(id string) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Role: models.RoleProfessor}
}

func coordinatorClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "coord-1", Role: models.RoleCoordinator}
}

func validCreateRequest() models.CreatePlanningRequest {
	return models.CreatePlanningRequest{
		CourseName:  "Mathematics II",
		Partial:     1,
		Cycle:       "2025-2026",
		Content:     "Weekly breakdown",
		Objectives:  "Master derivatives",
		Methodology: "Flipped classroom",
		Evaluation:  "Two exams",
	}
}

func TestPlanningServiceCreateByProfessor(t *testing.T) {
	repo := &mockPlanningRepo{}
	store := &mockStore{}
	svc := NewPlanningService(repo, store, nil, nil)

	planning, err := svc.Create(context.Background(), professorClaims("prof-1"), validCreateRequest(), &FileUpload{
		Filename: "plan.pdf",
		Reader:   strings.NewReader("content"),
	})
	require.NoError(t, err)
	assert.Equal(t, "prof-1", planning.ProfessorID)
	assert.Equal(t, models.PlanningStatusPending, planning.Status)
	require.NotNil(t, planning.FileURL)
	assert.Equal(t, "/uploads/plan.pdf", *planning.FileURL)
	assert.Len(t, store.saved, 1)
}

func TestPlanningServiceCreateRejectsReviewers(t *testing.T) {
	svc := NewPlanningService(&mockPlanningRepo{}, &mockStore{}, nil, nil)

	_, err := svc.Create(context.Background(), coordinatorClaims(), validCreateRequest(), nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestPlanningServiceListPinsProfessorScope(t *testing.T) {
	repo := &mockPlanningRepo{}
	svc := NewPlanningService(repo, &mockStore{}, nil, nil)

	_, _, err := svc.List(context.Background(), professorClaims("prof-1"), models.PlanningFilter{
		ProfessorID: "someone-else",
	})
	require.NoError(t, err)
	assert.Equal(t, "prof-1", repo.listed.ProfessorID)

	_, _, err = svc.List(context.Background(), coordinatorClaims(), models.PlanningFilter{
		ProfessorID: "prof-2",
	})
	require.NoError(t, err)
	assert.Equal(t, "prof-2", repo.listed.ProfessorID)
}

func TestPlanningServiceGetForbidsOtherProfessors(t *testing.T) {
	repo := &mockPlanningRepo{byID: map[string]*models.Planning{
		"plan-1": {ID: "plan-1", ProfessorID: "prof-1", Status: models.PlanningStatusPending},
	}}
	svc := NewPlanningService(repo, &mockStore{}, nil, nil)

	_, err := svc.Get(context.Background(), professorClaims("prof-2"), "plan-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	planning, err := svc.Get(context.Background(), coordinatorClaims(), "plan-1")
	require.NoError(t, err)
	assert.Equal(t, "plan-1", planning.ID)
}

func TestPlanningServiceUpdateResubmitsAfterAdjustments(t *testing.T) {
	feedback := "Clarify objectives"
	repo := &mockPlanningRepo{byID: map[string]*models.Planning{
		"plan-1": {
			ID:          "plan-1",
			ProfessorID: "prof-1",
			Status:      models.PlanningStatusAdjustments,
			Feedback:    &feedback,
		},
	}}
	svc := NewPlanningService(repo, &mockStore{}, nil, nil)

	content := "Revised weekly breakdown"
	planning, err := svc.Update(context.Background(), professorClaims("prof-1"), "plan-1", models.UpdatePlanningRequest{
		Content: &content,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.PlanningStatusPending, planning.Status)
	assert.Nil(t, planning.Feedback)
	assert.Equal(t, content, planning.Content)
}

func TestPlanningServiceUpdateRejectsApproved(t *testing.T) {
	repo := &mockPlanningRepo{byID: map[string]*models.Planning{
		"plan-1": {ID: "plan-1", ProfessorID: "prof-1", Status: models.PlanningStatusApproved},
	}}
	svc := NewPlanningService(repo, &mockStore{}, nil, nil)

	content := "too late"
	_, err := svc.Update(context.Background(), professorClaims("prof-1"), "plan-1", models.UpdatePlanningRequest{
		Content: &content,
	}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestPlanningServiceReviewRequiresFeedback(t *testing.T) {
	repo := &mockPlanningRepo{byID: map[string]*models.Planning{
		"plan-1": {ID: "plan-1", ProfessorID: "prof-1", Status: models.PlanningStatusPending},
	}}
	svc := NewPlanningService(repo, &mockStore{}, nil, nil)

	_, err := svc.Review(context.Background(), coordinatorClaims(), "plan-1", models.ReviewPlanningRequest{
		Status: models.PlanningStatusApproved,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	planning, err := svc.Review(context.Background(), coordinatorClaims(), "plan-1", models.ReviewPlanningRequest{
		Status:   models.PlanningStatusApproved,
		Feedback: "Well structured",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PlanningStatusApproved, planning.Status)
	assert.Len(t, repo.reviewed, 1)
}

func TestPlanningServiceReviewForbidsProfessors(t *testing.T) {
	repo := &mockPlanningRepo{byID: map[string]*models.Planning{
		"plan-1": {ID: "plan-1", ProfessorID: "prof-1", Status: models.PlanningStatusPending},
	}}
	svc := NewPlanningService(repo, &mockStore{}, nil, nil)

	_, err := svc.Review(context.Background(), professorClaims("prof-1"), "plan-1", models.ReviewPlanningRequest{
		Status:   models.PlanningStatusApproved,
		Feedback: "self approval",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestPlanningServiceDeleteGates(t *testing.T) {
	repo := &mockPlanningRepo{byID: map[string]*models.Planning{
		"pending":  {ID: "pending", ProfessorID: "prof-1", Status: models.PlanningStatusPending},
		"approved": {ID: "approved", ProfessorID: "prof-1", Status: models.PlanningStatusApproved},
	}}
	svc := NewPlanningService(repo, &mockStore{}, nil, nil)

	err := svc.Delete(context.Background(), professorClaims("prof-1"), "pending")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.Delete(context.Background(), professorClaims("prof-1"), "approved"))
	require.NoError(t, svc.Delete(context.Background(), coordinatorClaims(), "pending"))
	assert.Equal(t, []string{"approved", "pending"}, repo.deleted)
}
