package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nmby204/SGE/internal/models"
)

// ProgressRepository provides database access for partial-progress entries.
type ProgressRepository struct {
	db *sqlx.DB
}

// NewProgressRepository creates a new instance of ProgressRepository.
func NewProgressRepository(db *sqlx.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

const progressColumns = `pp.id, pp.planning_id, pp.partial, pp.progress_percentage, pp.status, pp.achievements, pp.challenges, pp.adjustments, pp.due_date, pp.next_checkpoint, pp.is_active, pp.created_at, pp.updated_at`

// FindByID returns an active progress entry.
func (r *ProgressRepository) FindByID(ctx context.Context, id string) (*models.PartialProgress, error) {
	query := fmt.Sprintf(`SELECT %s FROM partial_progress pp WHERE pp.id = $1 AND pp.is_active = TRUE LIMIT 1`, progressColumns)
	var progress models.PartialProgress
	if err := r.db.GetContext(ctx, &progress, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find progress by id: %w", err)
	}
	return &progress, nil
}

// ListByPlanning returns active progress entries for one planning, ordered by
// partial.
func (r *ProgressRepository) ListByPlanning(ctx context.Context, planningID string) ([]models.PartialProgress, error) {
	query := fmt.Sprintf(`SELECT %s FROM partial_progress pp WHERE pp.planning_id = $1 AND pp.is_active = TRUE ORDER BY pp.partial ASC`, progressColumns)
	var entries []models.PartialProgress
	if err := r.db.SelectContext(ctx, &entries, query, planningID); err != nil {
		return nil, fmt.Errorf("list progress by planning: %w", err)
	}
	return entries, nil
}

// List returns active progress entries joined against their plannings so the
// ownership scope can be applied in SQL.
func (r *ProgressRepository) List(ctx context.Context, filter models.ProgressFilter) ([]models.PartialProgress, error) {
	baseQuery := fmt.Sprintf(`SELECT %s FROM partial_progress pp JOIN didactic_plannings p ON p.id = pp.planning_id WHERE pp.is_active = TRUE AND p.is_active = TRUE`, progressColumns)
	var conditions []string
	var args []interface{}

	if filter.PlanningID != "" {
		conditions = append(conditions, fmt.Sprintf("pp.planning_id = $%d", len(args)+1))
		args = append(args, filter.PlanningID)
	}
	if filter.ProfessorID != "" {
		conditions = append(conditions, fmt.Sprintf("p.professor_id = $%d", len(args)+1))
		args = append(args, filter.ProfessorID)
	}
	if filter.Partial != nil {
		conditions = append(conditions, fmt.Sprintf("pp.partial = $%d", len(args)+1))
		args = append(args, *filter.Partial)
	}
	if filter.ApprovedOnly {
		conditions = append(conditions, "p.status = 'approved'")
	}

	query := baseQuery
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY pp.partial ASC, pp.created_at DESC"

	var entries []models.PartialProgress
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	return entries, nil
}

// Stats aggregates progress entries matching the filter.
func (r *ProgressRepository) Stats(ctx context.Context, filter models.ProgressFilter) (*models.ProgressStats, error) {
	baseQuery := `FROM partial_progress pp JOIN didactic_plannings p ON p.id = pp.planning_id WHERE pp.is_active = TRUE AND p.is_active = TRUE`
	var conditions []string
	var args []interface{}

	if filter.ProfessorID != "" {
		conditions = append(conditions, fmt.Sprintf("p.professor_id = $%d", len(args)+1))
		args = append(args, filter.ProfessorID)
	}
	if filter.Partial != nil {
		conditions = append(conditions, fmt.Sprintf("pp.partial = $%d", len(args)+1))
		args = append(args, *filter.Partial)
	}
	if filter.ApprovedOnly {
		conditions = append(conditions, "p.status = 'approved'")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`SELECT COUNT(*) AS total,
COUNT(*) FILTER (WHERE pp.status = 'fulfilled') AS fulfilled,
COUNT(*) FILTER (WHERE pp.status = 'partial') AS partial,
COUNT(*) FILTER (WHERE pp.status = 'unfulfilled') AS unfulfilled,
COALESCE(AVG(pp.progress_percentage), 0) AS average_progress %s`, baseQuery)

	var stats struct {
		Total           int     `db:"total"`
		Fulfilled       int     `db:"fulfilled"`
		Partial         int     `db:"partial"`
		Unfulfilled     int     `db:"unfulfilled"`
		AverageProgress float64 `db:"average_progress"`
	}
	if err := r.db.GetContext(ctx, &stats, query, args...); err != nil {
		return nil, fmt.Errorf("progress stats: %w", err)
	}

	return &models.ProgressStats{
		Total:           stats.Total,
		Fulfilled:       stats.Fulfilled,
		Partial:         stats.Partial,
		Unfulfilled:     stats.Unfulfilled,
		AverageProgress: stats.AverageProgress,
	}, nil
}

// Create inserts a new progress entry.
func (r *ProgressRepository) Create(ctx context.Context, progress *models.PartialProgress) error {
	if progress.ID == "" {
		progress.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if progress.CreatedAt.IsZero() {
		progress.CreatedAt = now
	}
	progress.UpdatedAt = now

	const query = `INSERT INTO partial_progress (id, planning_id, partial, progress_percentage, status, achievements, challenges, adjustments, due_date, next_checkpoint, is_active, created_at, updated_at) VALUES (:id, :planning_id, :partial, :progress_percentage, :status, :achievements, :challenges, :adjustments, :due_date, :next_checkpoint, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, progress); err != nil {
		return fmt.Errorf("create progress: %w", err)
	}
	return nil
}

// Update persists mutable progress fields.
func (r *ProgressRepository) Update(ctx context.Context, progress *models.PartialProgress) error {
	progress.UpdatedAt = time.Now().UTC()
	const query = `UPDATE partial_progress SET partial = :partial, progress_percentage = :progress_percentage, status = :status, achievements = :achievements, challenges = :challenges, adjustments = :adjustments, due_date = :due_date, next_checkpoint = :next_checkpoint, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, progress); err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return nil
}

// Delete performs a soft delete.
func (r *ProgressRepository) Delete(ctx context.Context, id string) error {
	const query = `UPDATE partial_progress SET is_active = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	return nil
}
