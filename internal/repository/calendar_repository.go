package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nmby204/SGE/internal/models"
)

// CalendarRepository synthesizes calendar events from planning, evidence, and
// progress rows. Nothing is stored; every listing recomputes from source
// tables so events always reflect current data.
type CalendarRepository struct {
	db *sqlx.DB
}

// NewCalendarRepository creates a new instance of CalendarRepository.
func NewCalendarRepository(db *sqlx.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// PlanningEvents maps submissions and review deadlines inside the window.
func (r *CalendarRepository) PlanningEvents(ctx context.Context, filter models.CalendarFilter) ([]models.CalendarEvent, error) {
	query := `SELECT p.id, p.course_name, p.partial, p.cycle, p.submission_date, p.review_deadline, u.name AS professor_name
FROM didactic_plannings p JOIN users u ON u.id = p.professor_id
WHERE p.is_active = TRUE AND (p.submission_date BETWEEN $1 AND $2 OR p.review_deadline BETWEEN $1 AND $2)`
	args := []interface{}{filter.From, filter.To}
	if filter.ProfessorID != "" {
		query += " AND p.professor_id = $3"
		args = append(args, filter.ProfessorID)
	}
	query += " ORDER BY p.submission_date ASC"

	var rows []struct {
		ID             string     `db:"id"`
		CourseName     string     `db:"course_name"`
		Partial        int        `db:"partial"`
		Cycle          string     `db:"cycle"`
		SubmissionDate time.Time  `db:"submission_date"`
		ReviewDeadline *time.Time `db:"review_deadline"`
		ProfessorName  string     `db:"professor_name"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("planning events: %w", err)
	}

	var events []models.CalendarEvent
	for _, row := range rows {
		if inWindow(row.SubmissionDate, filter.From, filter.To) {
			events = append(events, models.CalendarEvent{
				ID:          "planning:" + row.ID,
				Kind:        models.EventPlanningSubmission,
				Title:       fmt.Sprintf("Planning submitted: %s", row.CourseName),
				Description: fmt.Sprintf("%s, partial %d, cycle %s, by %s", row.CourseName, row.Partial, row.Cycle, row.ProfessorName),
				Start:       row.SubmissionDate,
				End:         endOfDay(row.SubmissionDate),
			})
		}
		if row.ReviewDeadline != nil && inWindow(*row.ReviewDeadline, filter.From, filter.To) {
			events = append(events, models.CalendarEvent{
				ID:          "planning-review:" + row.ID,
				Kind:        models.EventReviewDeadline,
				Title:       fmt.Sprintf("Review due: %s", row.CourseName),
				Description: fmt.Sprintf("Review pending for %s, partial %d, by %s", row.CourseName, row.Partial, row.ProfessorName),
				Start:       *row.ReviewDeadline,
				End:         endOfDay(*row.ReviewDeadline),
			})
		}
	}
	return events, nil
}

// EvidenceEvents maps training courses inside the window.
func (r *CalendarRepository) EvidenceEvents(ctx context.Context, filter models.CalendarFilter) ([]models.CalendarEvent, error) {
	query := `SELECT e.id, e.course_name, e.institution, e.hours, e.date, u.name AS professor_name
FROM evidences e JOIN users u ON u.id = e.professor_id
WHERE e.is_active = TRUE AND e.date BETWEEN $1 AND $2`
	args := []interface{}{filter.From, filter.To}
	if filter.ProfessorID != "" {
		query += " AND e.professor_id = $3"
		args = append(args, filter.ProfessorID)
	}
	query += " ORDER BY e.date ASC"

	var rows []struct {
		ID            string    `db:"id"`
		CourseName    string    `db:"course_name"`
		Institution   string    `db:"institution"`
		Hours         int       `db:"hours"`
		Date          time.Time `db:"date"`
		ProfessorName string    `db:"professor_name"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("evidence events: %w", err)
	}

	events := make([]models.CalendarEvent, len(rows))
	for i, row := range rows {
		events[i] = models.CalendarEvent{
			ID:          "evidence:" + row.ID,
			Kind:        models.EventTrainingEvidence,
			Title:       fmt.Sprintf("Training: %s", row.CourseName),
			Description: fmt.Sprintf("%s at %s, %d hours, by %s", row.CourseName, row.Institution, row.Hours, row.ProfessorName),
			Start:       row.Date,
			End:         endOfDay(row.Date),
			Location:    row.Institution,
		}
	}
	return events, nil
}

// ProgressEvents maps upcoming progress checkpoints inside the window.
func (r *CalendarRepository) ProgressEvents(ctx context.Context, filter models.CalendarFilter) ([]models.CalendarEvent, error) {
	query := `SELECT pp.id, pp.partial, pp.progress_percentage, pp.next_checkpoint, p.course_name
FROM partial_progress pp JOIN didactic_plannings p ON p.id = pp.planning_id
WHERE pp.is_active = TRUE AND p.is_active = TRUE AND pp.next_checkpoint BETWEEN $1 AND $2`
	args := []interface{}{filter.From, filter.To}
	if filter.ProfessorID != "" {
		query += " AND p.professor_id = $3"
		args = append(args, filter.ProfessorID)
	}
	query += " ORDER BY pp.next_checkpoint ASC"

	var rows []struct {
		ID                 string    `db:"id"`
		Partial            int       `db:"partial"`
		ProgressPercentage int       `db:"progress_percentage"`
		NextCheckpoint     time.Time `db:"next_checkpoint"`
		CourseName         string    `db:"course_name"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("progress events: %w", err)
	}

	events := make([]models.CalendarEvent, len(rows))
	for i, row := range rows {
		events[i] = models.CalendarEvent{
			ID:          "progress:" + row.ID,
			Kind:        models.EventProgressCheckpoint,
			Title:       fmt.Sprintf("Checkpoint: %s, partial %d", row.CourseName, row.Partial),
			Description: fmt.Sprintf("Current progress %d%%", row.ProgressPercentage),
			Start:       row.NextCheckpoint,
			End:         endOfDay(row.NextCheckpoint),
		}
	}
	return events, nil
}

func inWindow(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
