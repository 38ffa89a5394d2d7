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

// PlanningRepository provides database access for didactic plannings.
type PlanningRepository struct {
	db *sqlx.DB
}

// NewPlanningRepository creates a new instance of PlanningRepository.
func NewPlanningRepository(db *sqlx.DB) *PlanningRepository {
	return &PlanningRepository{db: db}
}

const planningColumns = `p.id, p.professor_id, p.course_name, p.partial, p.cycle, p.content, p.objectives, p.methodology, p.evaluation, p.resources, p.status, p.feedback, p.file_url, p.file_name, p.file_size, p.drive_file_id, p.storage_type, p.submission_date, p.review_deadline, p.is_active, p.created_at, p.updated_at`

type planningRow struct {
	models.Planning
	ProfessorName  sql.NullString `db:"professor_name"`
	ProfessorEmail sql.NullString `db:"professor_email"`
}

func (row planningRow) toModel() models.Planning {
	planning := row.Planning
	if row.ProfessorName.Valid {
		planning.Professor = &models.ProfessorInfo{
			ID:    planning.ProfessorID,
			Name:  row.ProfessorName.String,
			Email: row.ProfessorEmail.String,
		}
	}
	return planning
}

// FindByID returns an active planning with its owner attached.
func (r *PlanningRepository) FindByID(ctx context.Context, id string) (*models.Planning, error) {
	query := fmt.Sprintf(`SELECT %s, u.name AS professor_name, u.email AS professor_email FROM didactic_plannings p JOIN users u ON u.id = p.professor_id WHERE p.id = $1 AND p.is_active = TRUE LIMIT 1`, planningColumns)
	var row planningRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find planning by id: %w", err)
	}
	planning := row.toModel()
	return &planning, nil
}

// List returns active plannings matching the filter with a total count. The
// caller is responsible for scoping ProfessorID before invoking this.
func (r *PlanningRepository) List(ctx context.Context, filter models.PlanningFilter) ([]models.Planning, int, error) {
	baseQuery := `FROM didactic_plannings p JOIN users u ON u.id = p.professor_id WHERE p.is_active = TRUE`
	var conditions []string
	var args []interface{}

	if filter.ProfessorID != "" {
		conditions = append(conditions, fmt.Sprintf("p.professor_id = $%d", len(args)+1))
		args = append(args, filter.ProfessorID)
	}
	if filter.CourseName != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(p.course_name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.CourseName)+"%")
	}
	if filter.Partial != nil {
		conditions = append(conditions, fmt.Sprintf("p.partial = $%d", len(args)+1))
		args = append(args, *filter.Partial)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("p.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Cycle != "" {
		conditions = append(conditions, fmt.Sprintf("p.cycle = $%d", len(args)+1))
		args = append(args, filter.Cycle)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"created_at":      "p.created_at",
		"submission_date": "p.submission_date",
		"course_name":     "p.course_name",
		"partial":         "p.partial",
		"cycle":           "p.cycle",
	}
	sortColumn, ok := allowedSorts[sortBy]
	if !ok {
		sortColumn = "p.created_at"
	}

	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s, u.name AS professor_name, u.email AS professor_email %s ORDER BY %s %s LIMIT %d OFFSET %d", planningColumns, baseQuery, sortColumn, sortOrder, pageSize, offset)

	var rows []planningRow
	if err := r.db.SelectContext(ctx, &rows, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list plannings: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count plannings: %w", err)
	}

	plannings := make([]models.Planning, len(rows))
	for i, row := range rows {
		plannings[i] = row.toModel()
	}
	return plannings, total, nil
}

// History returns prior-cycle plannings for a course name, most recent cycle
// first, partials in order.
func (r *PlanningRepository) History(ctx context.Context, courseName, excludeCycle string) ([]models.Planning, error) {
	query := fmt.Sprintf(`SELECT %s, u.name AS professor_name, u.email AS professor_email FROM didactic_plannings p JOIN users u ON u.id = p.professor_id WHERE p.is_active = TRUE AND LOWER(p.course_name) = LOWER($1)`, planningColumns)
	args := []interface{}{courseName}
	if excludeCycle != "" {
		query += " AND p.cycle <> $2"
		args = append(args, excludeCycle)
	}
	query += " ORDER BY p.cycle DESC, p.partial ASC"

	var rows []planningRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("planning history: %w", err)
	}

	plannings := make([]models.Planning, len(rows))
	for i, row := range rows {
		plannings[i] = row.toModel()
	}
	return plannings, nil
}

// Create inserts a new planning.
func (r *PlanningRepository) Create(ctx context.Context, planning *models.Planning) error {
	if planning.ID == "" {
		planning.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if planning.CreatedAt.IsZero() {
		planning.CreatedAt = now
	}
	planning.UpdatedAt = now
	if planning.SubmissionDate.IsZero() {
		planning.SubmissionDate = now
	}

	const query = `INSERT INTO didactic_plannings (id, professor_id, course_name, partial, cycle, content, objectives, methodology, evaluation, resources, status, feedback, file_url, file_name, file_size, drive_file_id, storage_type, submission_date, review_deadline, is_active, created_at, updated_at) VALUES (:id, :professor_id, :course_name, :partial, :cycle, :content, :objectives, :methodology, :evaluation, :resources, :status, :feedback, :file_url, :file_name, :file_size, :drive_file_id, :storage_type, :submission_date, :review_deadline, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, planning); err != nil {
		return fmt.Errorf("create planning: %w", err)
	}
	return nil
}

// Update persists content and attachment fields plus any status reset the
// service applied.
func (r *PlanningRepository) Update(ctx context.Context, planning *models.Planning) error {
	planning.UpdatedAt = time.Now().UTC()
	const query = `UPDATE didactic_plannings SET course_name = :course_name, partial = :partial, cycle = :cycle, content = :content, objectives = :objectives, methodology = :methodology, evaluation = :evaluation, resources = :resources, status = :status, feedback = :feedback, file_url = :file_url, file_name = :file_name, file_size = :file_size, drive_file_id = :drive_file_id, storage_type = :storage_type, review_deadline = :review_deadline, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, planning); err != nil {
		return fmt.Errorf("update planning: %w", err)
	}
	return nil
}

// Review overwrites status and feedback. Last write wins; concurrent reviews
// are not serialized.
func (r *PlanningRepository) Review(ctx context.Context, id string, status models.PlanningStatus, feedback string) error {
	const query = `UPDATE didactic_plannings SET status = $2, feedback = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, feedback, time.Now().UTC()); err != nil {
		return fmt.Errorf("review planning: %w", err)
	}
	return nil
}

// Delete performs a soft delete.
func (r *PlanningRepository) Delete(ctx context.Context, id string) error {
	const query = `UPDATE didactic_plannings SET is_active = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("delete planning: %w", err)
	}
	return nil
}
