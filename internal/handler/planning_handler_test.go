package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmby204/SGE/internal/middleware"
	"github.com/nmby204/SGE/internal/models"
	"github.com/nmby204/SGE/internal/service"
	"github.com/nmby204/SGE/pkg/storage"
)

type planningRepoMock struct {
	planning   *models.Planning
	reviewedID string
	verdict    models.PlanningStatus
	feedback   string
}

func (m *planningRepoMock) FindByID(ctx context.Context, id string) (*models.Planning, error) {
	copied := *m.planning
	return &copied, nil
}

func (m *planningRepoMock) List(ctx context.Context, filter models.PlanningFilter) ([]models.Planning, int, error) {
	return []models.Planning{*m.planning}, 1, nil
}

func (m *planningRepoMock) History(ctx context.Context, courseName, excludeCycle string) ([]models.Planning, error) {
	return nil, nil
}

func (m *planningRepoMock) Create(ctx context.Context, planning *models.Planning) error {
	planning.ID = "plan-new"
	return nil
}

func (m *planningRepoMock) Update(ctx context.Context, planning *models.Planning) error {
	return nil
}

func (m *planningRepoMock) Review(ctx context.Context, id string, status models.PlanningStatus, feedback string) error {
	m.reviewedID = id
	m.verdict = status
	m.feedback = feedback
	return nil
}

func (m *planningRepoMock) Delete(ctx context.Context, id string) error { return nil }

type storeMock struct{}

func (storeMock) Save(ctx context.Context, filename string, r io.Reader) (*storage.UploadResult, error) {
	return &storage.UploadResult{URL: "/uploads/" + filename, Size: 1}, nil
}

func (storeMock) Delete(ctx context.Context, externalID string) error { return nil }

func newPlanningHandler(repo *planningRepoMock) *PlanningHandler {
	svc := service.NewPlanningService(repo, storeMock{}, nil, nil)
	return NewPlanningHandler(svc, service.NewMetricsService(), 0)
}

func pendingPlanning() *models.Planning {
	return &models.Planning{
		ID:          "plan-1",
		ProfessorID: "prof-1",
		CourseName:  "Algebra",
		Partial:     1,
		Cycle:       "2026-A",
		Status:      models.PlanningStatusPending,
		IsActive:    true,
	}
}

func TestPlanningHandlerReviewApproves(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &planningRepoMock{planning: pendingPlanning()}
	handler := newPlanningHandler(repo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(models.ReviewPlanningRequest{Status: models.PlanningStatusApproved, Feedback: "well structured"})
	req, _ := http.NewRequest(http.MethodPost, "/plannings/plan-1/review", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "plan-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "coord-1", Role: models.RoleCoordinator})

	handler.Review(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "plan-1", repo.reviewedID)
	assert.Equal(t, models.PlanningStatusApproved, repo.verdict)
	assert.Equal(t, "well structured", repo.feedback)
}

func TestPlanningHandlerReviewMissingFeedback(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newPlanningHandler(&planningRepoMock{planning: pendingPlanning()})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/plannings/plan-1/review", bytes.NewReader([]byte(`{"status":"approved"}`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "plan-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "coord-1", Role: models.RoleCoordinator})

	handler.Review(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlanningHandlerListRejectsUnknownStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newPlanningHandler(&planningRepoMock{planning: pendingPlanning()})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/plannings?status=archived", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "coord-1", Role: models.RoleCoordinator})

	handler.List(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlanningHandlerGetWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newPlanningHandler(&planningRepoMock{planning: pendingPlanning()})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/plannings/plan-1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "plan-1"}}

	handler.Get(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
