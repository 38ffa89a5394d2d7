package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmby204/SGE/internal/models"
	appErrors "github.com/nmby204/SGE/pkg/errors"
)

type mockReportRepo struct {
	compliance *models.ComplianceReport
	progress   []models.ProfessorProgress
	training   *models.TrainingReport
	calls      int
}

func (m *mockReportRepo) Compliance(ctx context.Context, filter models.ComplianceFilter) (*models.ComplianceReport, error) {
	m.calls++
	return m.compliance, nil
}

func (m *mockReportRepo) ProgressByProfessor(ctx context.Context, partial *int) ([]models.ProfessorProgress, error) {
	return m.progress, nil
}

func (m *mockReportRepo) Training(ctx context.Context, filter models.TrainingFilter) (*models.TrainingReport, error) {
	return m.training, nil
}

type mockReportProgress struct {
	stats *models.ProgressStats
}

func (m *mockReportProgress) Stats(ctx context.Context, filter models.ProgressFilter) (*models.ProgressStats, error) {
	return m.stats, nil
}

func testReportService() (*ReportService, *mockReportRepo) {
	repo := &mockReportRepo{
		compliance: &models.ComplianceReport{Total: 10, Approved: 8, Pending: 1, AdjustmentsRequired: 1, ComplianceRate: 80},
		progress: []models.ProfessorProgress{
			{ProfessorID: "prof-1", ProfessorName: "Ana Torres", Total: 3, Fulfilled: 2, AverageProgress: 85},
		},
		training: &models.TrainingReport{
			TotalCourses: 4,
			TotalHours:   60,
			ByProfessor:  []models.TrainingGroup{{Key: "Ana Torres", Courses: 4, Hours: 60}},
		},
	}
	progress := &mockReportProgress{stats: &models.ProgressStats{Total: 3, Fulfilled: 2, Partial: 1, AverageProgress: 85}}
	return NewReportService(repo, progress, nil, nil, ReportConfig{}), repo
}

func TestReportServiceCompliance(t *testing.T) {
	svc, _ := testReportService()

	report, err := svc.Compliance(context.Background(), models.ComplianceFilter{Cycle: "2025-2026"})
	require.NoError(t, err)
	assert.Equal(t, 10, report.Total)
	assert.InDelta(t, 80.0, report.ComplianceRate, 0.01)
}

func TestReportServiceProgressMergesBreakdown(t *testing.T) {
	svc, _ := testReportService()

	report, err := svc.Progress(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Total)
	require.Len(t, report.ByProfessor, 1)
	assert.Equal(t, "Ana Torres", report.ByProfessor[0].ProfessorName)
}

func TestReportServiceExportCSV(t *testing.T) {
	svc, _ := testReportService()

	result, err := svc.Export(context.Background(), models.ReportTypeCompliance, models.ReportFormatCSV, models.ComplianceFilter{}, nil, models.TrainingFilter{})
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))

	body := string(result.Content)
	assert.True(t, strings.HasPrefix(body, "\ufeff"), "csv exports carry a UTF-8 BOM for spreadsheet tools")
	assert.Contains(t, body, "Metric,Value")
	assert.Contains(t, body, "Approved,8")
}

func TestReportServiceExportPDF(t *testing.T) {
	svc, _ := testReportService()

	result, err := svc.Export(context.Background(), models.ReportTypeTraining, models.ReportFormatPDF, models.ComplianceFilter{}, nil, models.TrainingFilter{})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Content), "%PDF"))
}

func TestReportServiceExportRejectsUnknownFormat(t *testing.T) {
	svc, _ := testReportService()

	_, err := svc.Export(context.Background(), models.ReportTypeCompliance, "xlsx", models.ComplianceFilter{}, nil, models.TrainingFilter{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
