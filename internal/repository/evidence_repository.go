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

// EvidenceRepository provides database access for training evidence.
type EvidenceRepository struct {
	db *sqlx.DB
}

// NewEvidenceRepository creates a new instance of EvidenceRepository.
func NewEvidenceRepository(db *sqlx.DB) *EvidenceRepository {
	return &EvidenceRepository{db: db}
}

const evidenceColumns = `e.id, e.professor_id, e.course_name, e.institution, e.date, e.hours, e.file_url, e.file_name, e.drive_file_id, e.storage_type, e.status, e.feedback, e.is_active, e.created_at, e.updated_at`

type evidenceRow struct {
	models.Evidence
	ProfessorName  sql.NullString `db:"professor_name"`
	ProfessorEmail sql.NullString `db:"professor_email"`
}

func (row evidenceRow) toModel() models.Evidence {
	evidence := row.Evidence
	if row.ProfessorName.Valid {
		evidence.Professor = &models.ProfessorInfo{
			ID:    evidence.ProfessorID,
			Name:  row.ProfessorName.String,
			Email: row.ProfessorEmail.String,
		}
	}
	return evidence
}

// FindByID returns an active evidence record with its owner attached.
func (r *EvidenceRepository) FindByID(ctx context.Context, id string) (*models.Evidence, error) {
	query := fmt.Sprintf(`SELECT %s, u.name AS professor_name, u.email AS professor_email FROM evidences e JOIN users u ON u.id = e.professor_id WHERE e.id = $1 AND e.is_active = TRUE LIMIT 1`, evidenceColumns)
	var row evidenceRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find evidence by id: %w", err)
	}
	evidence := row.toModel()
	return &evidence, nil
}

// List returns active evidence records matching the filter and a total count.
func (r *EvidenceRepository) List(ctx context.Context, filter models.EvidenceFilter) ([]models.Evidence, int, error) {
	baseQuery := `FROM evidences e JOIN users u ON u.id = e.professor_id WHERE e.is_active = TRUE`
	var conditions []string
	var args []interface{}

	if filter.ProfessorID != "" {
		conditions = append(conditions, fmt.Sprintf("e.professor_id = $%d", len(args)+1))
		args = append(args, filter.ProfessorID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("e.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
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

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"created_at": "e.created_at",
		"date":       "e.date",
		"hours":      "e.hours",
	}
	sortColumn, ok := allowedSorts[sortBy]
	if !ok {
		sortColumn = "e.created_at"
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

	listQuery := fmt.Sprintf("SELECT %s, u.name AS professor_name, u.email AS professor_email %s ORDER BY %s %s LIMIT %d OFFSET %d", evidenceColumns, baseQuery, sortColumn, sortOrder, pageSize, offset)

	var rows []evidenceRow
	if err := r.db.SelectContext(ctx, &rows, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list evidences: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count evidences: %w", err)
	}

	evidences := make([]models.Evidence, len(rows))
	for i, row := range rows {
		evidences[i] = row.toModel()
	}
	return evidences, total, nil
}

// Create inserts a new evidence record.
func (r *EvidenceRepository) Create(ctx context.Context, evidence *models.Evidence) error {
	if evidence.ID == "" {
		evidence.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if evidence.CreatedAt.IsZero() {
		evidence.CreatedAt = now
	}
	evidence.UpdatedAt = now

	const query = `INSERT INTO evidences (id, professor_id, course_name, institution, date, hours, file_url, file_name, drive_file_id, storage_type, status, feedback, is_active, created_at, updated_at) VALUES (:id, :professor_id, :course_name, :institution, :date, :hours, :file_url, :file_name, :drive_file_id, :storage_type, :status, :feedback, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, evidence); err != nil {
		return fmt.Errorf("create evidence: %w", err)
	}
	return nil
}

// Update persists mutable evidence fields.
func (r *EvidenceRepository) Update(ctx context.Context, evidence *models.Evidence) error {
	evidence.UpdatedAt = time.Now().UTC()
	const query = `UPDATE evidences SET course_name = :course_name, institution = :institution, date = :date, hours = :hours, file_url = :file_url, file_name = :file_name, drive_file_id = :drive_file_id, storage_type = :storage_type, status = :status, feedback = :feedback, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, evidence); err != nil {
		return fmt.Errorf("update evidence: %w", err)
	}
	return nil
}

// Review overwrites status and feedback.
func (r *EvidenceRepository) Review(ctx context.Context, id string, status models.EvidenceStatus, feedback string) error {
	const query = `UPDATE evidences SET status = $2, feedback = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, feedback, time.Now().UTC()); err != nil {
		return fmt.Errorf("review evidence: %w", err)
	}
	return nil
}

// Delete performs a soft delete.
func (r *EvidenceRepository) Delete(ctx context.Context, id string) error {
	const query = `UPDATE evidences SET is_active = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("delete evidence: %w", err)
	}
	return nil
}
