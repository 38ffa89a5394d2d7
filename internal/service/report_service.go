package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nmby204/SGE/internal/models"
	appErrors "github.com/nmby204/SGE/pkg/errors"
	"github.com/nmby204/SGE/pkg/export"
)

type reportRepository interface {
	Compliance(ctx context.Context, filter models.ComplianceFilter) (*models.ComplianceReport, error)
	ProgressByProfessor(ctx context.Context, partial *int) ([]models.ProfessorProgress, error)
	Training(ctx context.Context, filter models.TrainingFilter) (*models.TrainingReport, error)
}

type reportProgressRepository interface {
	Stats(ctx context.Context, filter models.ProgressFilter) (*models.ProgressStats, error)
}

// ReportConfig tunes report caching.
type ReportConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// ExportResult is a rendered report ready to stream to the client.
type ExportResult struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ReportService produces the compliance, progress, and training aggregates
// and renders them to CSV or PDF. Aggregates are cached in Redis when
// enabled; exports always render from fresh aggregates.
type ReportService struct {
	repo     reportRepository
	progress reportProgressRepository
	cache    *redis.Client
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
	config   ReportConfig
}

// NewReportService constructs a ReportService instance. The cache client may
// be nil; caching is then skipped entirely.
func NewReportService(repo reportRepository, progress reportProgressRepository, cache *redis.Client, logger *zap.Logger, config ReportConfig) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		repo:     repo,
		progress: progress,
		cache:    cache,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
		config:   config,
	}
}

// Compliance returns the planning review summary for a cycle/partial.
func (s *ReportService) Compliance(ctx context.Context, filter models.ComplianceFilter) (*models.ComplianceReport, error) {
	key := fmt.Sprintf("reports:compliance:%s:%s", filter.Cycle, intKey(filter.Partial))
	var cached models.ComplianceReport
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	report, err := s.repo.Compliance(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build compliance report")
	}

	s.cacheSet(ctx, key, report)
	return report, nil
}

// Progress returns the aggregated partial-progress report.
func (s *ReportService) Progress(ctx context.Context, partial *int) (*models.ProgressReport, error) {
	key := "reports:progress:" + intKey(partial)
	var cached models.ProgressReport
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	stats, err := s.progress.Stats(ctx, models.ProgressFilter{Partial: partial})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate progress")
	}
	byProfessor, err := s.repo.ProgressByProfessor(ctx, partial)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate progress by professor")
	}

	report := &models.ProgressReport{
		Total:           stats.Total,
		AverageProgress: stats.AverageProgress,
		StatusBreakdown: *stats,
		ByProfessor:     byProfessor,
	}
	s.cacheSet(ctx, key, report)
	return report, nil
}

// Training returns the approved-evidence summary for a date range.
func (s *ReportService) Training(ctx context.Context, filter models.TrainingFilter) (*models.TrainingReport, error) {
	key := fmt.Sprintf("reports:training:%s:%s", timeKey(filter.StartDate), timeKey(filter.EndDate))
	var cached models.TrainingReport
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	report, err := s.repo.Training(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build training report")
	}

	s.cacheSet(ctx, key, report)
	return report, nil
}

// Export renders one of the reports in the requested format.
func (s *ReportService) Export(ctx context.Context, reportType models.ReportType, format models.ReportFormat, compliance models.ComplianceFilter, partial *int, training models.TrainingFilter) (*ExportResult, error) {
	var (
		dataset export.Dataset
		title   string
	)

	switch reportType {
	case models.ReportTypeCompliance:
		report, err := s.Compliance(ctx, compliance)
		if err != nil {
			return nil, err
		}
		dataset = complianceDataset(report)
		title = "Planning Compliance Report"
	case models.ReportTypeProgress:
		report, err := s.Progress(ctx, partial)
		if err != nil {
			return nil, err
		}
		dataset = progressDataset(report)
		title = "Partial Progress Report"
	case models.ReportTypeTraining:
		report, err := s.Training(ctx, training)
		if err != nil {
			return nil, err
		}
		dataset = trainingDataset(report)
		title = "Training Evidence Report"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown report type")
	}

	stamp := time.Now().UTC().Format("20060102")
	switch format {
	case models.ReportFormatCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("%s-report-%s.csv", reportType, stamp),
			ContentType: "text/csv",
			Content:     content,
		}, nil
	case models.ReportFormatPDF:
		content, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("%s-report-%s.pdf", reportType, stamp),
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

func (s *ReportService) cacheGet(ctx context.Context, key string, out interface{}) bool {
	if s.cache == nil || !s.config.CacheEnabled {
		return false
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("report cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.logger.Warn("report cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *ReportService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil || !s.config.CacheEnabled {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.config.CacheTTL).Err(); err != nil {
		s.logger.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func complianceDataset(report *models.ComplianceReport) export.Dataset {
	return export.Dataset{
		Headers: []string{"Metric", "Value"},
		Rows: []map[string]string{
			{"Metric": "Total plannings", "Value": strconv.Itoa(report.Total)},
			{"Metric": "Approved", "Value": strconv.Itoa(report.Approved)},
			{"Metric": "Pending", "Value": strconv.Itoa(report.Pending)},
			{"Metric": "Adjustments required", "Value": strconv.Itoa(report.AdjustmentsRequired)},
			{"Metric": "Compliance rate", "Value": fmt.Sprintf("%.1f%%", report.ComplianceRate)},
		},
	}
}

func progressDataset(report *models.ProgressReport) export.Dataset {
	rows := make([]map[string]string, 0, len(report.ByProfessor))
	for _, entry := range report.ByProfessor {
		rows = append(rows, map[string]string{
			"Professor":        entry.ProfessorName,
			"Entries":          strconv.Itoa(entry.Total),
			"Fulfilled":        strconv.Itoa(entry.Fulfilled),
			"Average progress": fmt.Sprintf("%.1f%%", entry.AverageProgress),
		})
	}
	return export.Dataset{
		Headers: []string{"Professor", "Entries", "Fulfilled", "Average progress"},
		Rows:    rows,
	}
}

func trainingDataset(report *models.TrainingReport) export.Dataset {
	rows := make([]map[string]string, 0, len(report.ByProfessor))
	for _, group := range report.ByProfessor {
		rows = append(rows, map[string]string{
			"Professor": group.Key,
			"Courses":   strconv.Itoa(group.Courses),
			"Hours":     strconv.Itoa(group.Hours),
		})
	}
	return export.Dataset{
		Headers: []string{"Professor", "Courses", "Hours"},
		Rows:    rows,
	}
}

func intKey(v *int) string {
	if v == nil {
		return "all"
	}
	return strconv.Itoa(*v)
}

func timeKey(t *time.Time) string {
	if t == nil {
		return "open"
	}
	return t.Format("2006-01-02")
}
