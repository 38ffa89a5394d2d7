package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmby204/SGE/internal/models"
	appErrors "github.com/nmby204/SGE/pkg/errors"
)

type mockEvidenceRepo struct {
	byID       map[string]*models.Evidence
	reviewedID string
	verdict    models.EvidenceStatus
	feedback   string
	deletedID  string
}

func (m *mockEvidenceRepo) FindByID(ctx context.Context, id string) (*models.Evidence, error) {
	evidence, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *evidence
	return &copied, nil
}

func (m *mockEvidenceRepo) List(ctx context.Context, filter models.EvidenceFilter) ([]models.Evidence, int, error) {
	var out []models.Evidence
	for _, evidence := range m.byID {
		if filter.ProfessorID != "" && evidence.ProfessorID != filter.ProfessorID {
			continue
		}
		out = append(out, *evidence)
	}
	return out, len(out), nil
}

func (m *mockEvidenceRepo) Create(ctx context.Context, evidence *models.Evidence) error {
	evidence.ID = "ev-new"
	return nil
}

func (m *mockEvidenceRepo) Update(ctx context.Context, evidence *models.Evidence) error {
	if m.byID == nil {
		m.byID = map[string]*models.Evidence{}
	}
	copied := *evidence
	m.byID[evidence.ID] = &copied
	return nil
}

func (m *mockEvidenceRepo) Review(ctx context.Context, id string, status models.EvidenceStatus, feedback string) error {
	m.reviewedID = id
	m.verdict = status
	m.feedback = feedback
	return nil
}

func (m *mockEvidenceRepo) Delete(ctx context.Context, id string) error {
	m.deletedID = id
	return nil
}

func pendingEvidence(professorID string) *models.Evidence {
	return &models.Evidence{
		ID:          "ev-1",
		ProfessorID: professorID,
		CourseName:  "Didactics Workshop",
		Institution: "UNAM",
		Date:        time.Date(2026, 5, 12, 0, 0, 0, 0, time.UTC),
		Hours:       20,
		FileURL:     "/uploads/certificate.pdf",
		StorageType: models.StorageTypeLocal,
		Status:      models.EvidenceStatusPending,
		IsActive:    true,
	}
}

func validEvidenceRequest() models.CreateEvidenceRequest {
	return models.CreateEvidenceRequest{
		CourseName:  "Didactics Workshop",
		Institution: "UNAM",
		Date:        time.Date(2026, 5, 12, 0, 0, 0, 0, time.UTC),
		Hours:       20,
	}
}

func TestEvidenceServiceCreateRequiresDocument(t *testing.T) {
	svc := NewEvidenceService(&mockEvidenceRepo{}, &mockStore{}, nil, nil)

	_, err := svc.Create(context.Background(), professorClaims("prof-1"), validEvidenceRequest(), nil)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.True(t, strings.Contains(appErr.Message, "document"))
}

func TestEvidenceServiceCreateWithUpload(t *testing.T) {
	repo := &mockEvidenceRepo{}
	svc := NewEvidenceService(repo, &mockStore{}, nil, nil)

	evidence, err := svc.Create(context.Background(), professorClaims("prof-1"), validEvidenceRequest(), &FileUpload{
		Filename: "certificate.pdf",
		Size:     42,
		Reader:   strings.NewReader("pdf-bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, "ev-new", evidence.ID)
	assert.Equal(t, models.EvidenceStatusPending, evidence.Status)
	assert.Equal(t, models.StorageTypeLocal, evidence.StorageType)
	assert.Equal(t, "/uploads/certificate.pdf", evidence.FileURL)
}

func TestEvidenceServiceCreateWithDriveReference(t *testing.T) {
	svc := NewEvidenceService(&mockEvidenceRepo{}, &mockStore{}, nil, nil)

	req := validEvidenceRequest()
	driveID := "drive-123"
	driveURL := "https://drive.example.com/drive-123"
	req.DriveFileID = &driveID
	req.DriveFileURL = &driveURL

	evidence, err := svc.Create(context.Background(), professorClaims("prof-1"), req, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StorageTypeDrive, evidence.StorageType)
	assert.Equal(t, driveURL, evidence.FileURL)
}

func TestEvidenceServiceCreateRejectsReviewers(t *testing.T) {
	svc := NewEvidenceService(&mockEvidenceRepo{}, &mockStore{}, nil, nil)

	_, err := svc.Create(context.Background(), coordinatorClaims(), validEvidenceRequest(), nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestEvidenceServiceUpdateRejectsReviewed(t *testing.T) {
	approved := pendingEvidence("prof-1")
	approved.Status = models.EvidenceStatusApproved
	repo := &mockEvidenceRepo{byID: map[string]*models.Evidence{"ev-1": approved}}
	svc := NewEvidenceService(repo, &mockStore{}, nil, nil)

	hours := 30
	_, err := svc.Update(context.Background(), professorClaims("prof-1"), "ev-1", models.UpdateEvidenceRequest{Hours: &hours}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestEvidenceServiceReviewRejectsUnknownVerdict(t *testing.T) {
	repo := &mockEvidenceRepo{byID: map[string]*models.Evidence{"ev-1": pendingEvidence("prof-1")}}
	svc := NewEvidenceService(repo, &mockStore{}, nil, nil)

	_, err := svc.Review(context.Background(), coordinatorClaims(), "ev-1", models.ReviewEvidenceRequest{
		Status:   "adjustments_required",
		Feedback: "wrong workflow",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestEvidenceServiceReviewRecordsVerdict(t *testing.T) {
	repo := &mockEvidenceRepo{byID: map[string]*models.Evidence{"ev-1": pendingEvidence("prof-1")}}
	svc := NewEvidenceService(repo, &mockStore{}, nil, nil)

	evidence, err := svc.Review(context.Background(), coordinatorClaims(), "ev-1", models.ReviewEvidenceRequest{
		Status:   models.EvidenceStatusRejected,
		Feedback: "certificate is illegible",
	})
	require.NoError(t, err)
	assert.Equal(t, models.EvidenceStatusRejected, evidence.Status)
	assert.Equal(t, "ev-1", repo.reviewedID)
	assert.Equal(t, "certificate is illegible", repo.feedback)
}

func TestEvidenceServiceDeleteForbidsOtherProfessors(t *testing.T) {
	repo := &mockEvidenceRepo{byID: map[string]*models.Evidence{"ev-1": pendingEvidence("prof-1")}}
	svc := NewEvidenceService(repo, &mockStore{}, nil, nil)

	err := svc.Delete(context.Background(), professorClaims("prof-2"), "ev-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deletedID)
}
