package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/nmby204/SGE/internal/models"
)

// ReportRepository runs the aggregation queries behind reports.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository creates a new instance of ReportRepository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Compliance summarises planning review outcomes.
func (r *ReportRepository) Compliance(ctx context.Context, filter models.ComplianceFilter) (*models.ComplianceReport, error) {
	baseQuery := `FROM didactic_plannings p WHERE p.is_active = TRUE`
	var conditions []string
	var args []interface{}

	if filter.Cycle != "" {
		conditions = append(conditions, fmt.Sprintf("p.cycle = $%d", len(args)+1))
		args = append(args, filter.Cycle)
	}
	if filter.Partial != nil {
		conditions = append(conditions, fmt.Sprintf("p.partial = $%d", len(args)+1))
		args = append(args, *filter.Partial)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`SELECT COUNT(*) AS total,
COUNT(*) FILTER (WHERE p.status = 'approved') AS approved,
COUNT(*) FILTER (WHERE p.status = 'pending') AS pending,
COUNT(*) FILTER (WHERE p.status = 'adjustments_required') AS adjustments_required %s`, baseQuery)

	var row struct {
		Total               int `db:"total"`
		Approved            int `db:"approved"`
		Pending             int `db:"pending"`
		AdjustmentsRequired int `db:"adjustments_required"`
	}
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return nil, fmt.Errorf("compliance report: %w", err)
	}

	report := &models.ComplianceReport{
		Total:               row.Total,
		Approved:            row.Approved,
		Pending:             row.Pending,
		AdjustmentsRequired: row.AdjustmentsRequired,
	}
	if report.Total > 0 {
		report.ComplianceRate = float64(report.Approved) / float64(report.Total) * 100
	}
	return report, nil
}

// ProgressByProfessor aggregates partial-progress entries per professor.
func (r *ReportRepository) ProgressByProfessor(ctx context.Context, partial *int) ([]models.ProfessorProgress, error) {
	baseQuery := `FROM partial_progress pp
JOIN didactic_plannings p ON p.id = pp.planning_id
JOIN users u ON u.id = p.professor_id
WHERE pp.is_active = TRUE AND p.is_active = TRUE`
	var args []interface{}
	if partial != nil {
		baseQuery += " AND pp.partial = $1"
		args = append(args, *partial)
	}

	query := fmt.Sprintf(`SELECT u.id AS professor_id, u.name AS professor_name,
COUNT(*) AS total,
COUNT(*) FILTER (WHERE pp.status = 'fulfilled') AS fulfilled,
COALESCE(AVG(pp.progress_percentage), 0) AS average_progress
%s GROUP BY u.id, u.name ORDER BY u.name ASC`, baseQuery)

	var rows []struct {
		ProfessorID     string  `db:"professor_id"`
		ProfessorName   string  `db:"professor_name"`
		Total           int     `db:"total"`
		Fulfilled       int     `db:"fulfilled"`
		AverageProgress float64 `db:"average_progress"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("progress by professor: %w", err)
	}

	result := make([]models.ProfessorProgress, len(rows))
	for i, row := range rows {
		result[i] = models.ProfessorProgress{
			ProfessorID:     row.ProfessorID,
			ProfessorName:   row.ProfessorName,
			Total:           row.Total,
			Fulfilled:       row.Fulfilled,
			AverageProgress: row.AverageProgress,
		}
	}
	return result, nil
}

// Training aggregates approved evidence by professor and by institution.
func (r *ReportRepository) Training(ctx context.Context, filter models.TrainingFilter) (*models.TrainingReport, error) {
	baseQuery := `FROM evidences e JOIN users u ON u.id = e.professor_id WHERE e.is_active = TRUE AND e.status = 'approved'`
	var conditions []string
	var args []interface{}

	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("e.date >= $%d", len(args)+1))
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("e.date <= $%d", len(args)+1))
		args = append(args, *filter.EndDate)
	}
	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	totalQuery := fmt.Sprintf(`SELECT COUNT(*) AS total_courses, COALESCE(SUM(e.hours), 0) AS total_hours %s`, baseQuery)
	var totals struct {
		TotalCourses int `db:"total_courses"`
		TotalHours   int `db:"total_hours"`
	}
	if err := r.db.GetContext(ctx, &totals, totalQuery, args...); err != nil {
		return nil, fmt.Errorf("training totals: %w", err)
	}

	byProfessor, err := r.trainingGroups(ctx, baseQuery, "u.name", args)
	if err != nil {
		return nil, err
	}
	byInstitution, err := r.trainingGroups(ctx, baseQuery, "e.institution", args)
	if err != nil {
		return nil, err
	}

	return &models.TrainingReport{
		TotalCourses:  totals.TotalCourses,
		TotalHours:    totals.TotalHours,
		ByProfessor:   byProfessor,
		ByInstitution: byInstitution,
	}, nil
}

func (r *ReportRepository) trainingGroups(ctx context.Context, baseQuery, keyColumn string, args []interface{}) ([]models.TrainingGroup, error) {
	query := fmt.Sprintf(`SELECT %s AS key, COUNT(*) AS courses, COALESCE(SUM(e.hours), 0) AS hours %s GROUP BY %s ORDER BY hours DESC`, keyColumn, baseQuery, keyColumn)

	var rows []struct {
		Key     string `db:"key"`
		Courses int    `db:"courses"`
		Hours   int    `db:"hours"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("training groups by %s: %w", keyColumn, err)
	}

	groups := make([]models.TrainingGroup, len(rows))
	for i, row := range rows {
		groups[i] = models.TrainingGroup{Key: row.Key, Courses: row.Courses, Hours: row.Hours}
	}
	return groups, nil
}
