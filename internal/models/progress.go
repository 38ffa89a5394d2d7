package models

import "time"

// ProgressStatus is derived from the progress percentage; it is never trusted
// from client input.
type ProgressStatus string

const (
	ProgressStatusFulfilled   ProgressStatus = "fulfilled"
	ProgressStatusPartial     ProgressStatus = "partial"
	ProgressStatusUnfulfilled ProgressStatus = "unfulfilled"
)

// DeriveProgressStatus maps a percentage to its band. Thresholds are inclusive
// on the lower bound: >=90 fulfilled, >=60 partial, else unfulfilled.
func DeriveProgressStatus(percentage int) ProgressStatus {
	switch {
	case percentage >= 90:
		return ProgressStatusFulfilled
	case percentage >= 60:
		return ProgressStatusPartial
	default:
		return ProgressStatusUnfulfilled
	}
}

// PartialProgress is a mid-cycle progress report against one approved
// planning. It belongs exclusively to that planning.
type PartialProgress struct {
	ID                 string         `db:"id" json:"id"`
	PlanningID         string         `db:"planning_id" json:"planning_id"`
	Partial            int            `db:"partial" json:"partial"`
	ProgressPercentage int            `db:"progress_percentage" json:"progress_percentage"`
	Status             ProgressStatus `db:"status" json:"status"`
	Achievements       *string        `db:"achievements" json:"achievements,omitempty"`
	Challenges         *string        `db:"challenges" json:"challenges,omitempty"`
	Adjustments        *string        `db:"adjustments" json:"adjustments,omitempty"`
	DueDate            *time.Time     `db:"due_date" json:"due_date,omitempty"`
	NextCheckpoint     *time.Time     `db:"next_checkpoint" json:"next_checkpoint,omitempty"`
	IsActive           bool           `db:"is_active" json:"is_active"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updated_at"`

	Planning *Planning `db:"-" json:"planning,omitempty"`
}

// CreateProgressRequest is the payload for recording a progress entry. The
// status field is never accepted from clients; it is derived from the
// percentage.
type CreateProgressRequest struct {
	PlanningID         string     `json:"planning_id" validate:"required"`
	Partial            int        `json:"partial" validate:"required,min=1,max=3"`
	ProgressPercentage int        `json:"progress_percentage" validate:"min=0,max=100"`
	Achievements       *string    `json:"achievements,omitempty"`
	Challenges         *string    `json:"challenges,omitempty"`
	Adjustments        *string    `json:"adjustments,omitempty"`
	DueDate            *time.Time `json:"due_date,omitempty"`
	NextCheckpoint     *time.Time `json:"next_checkpoint,omitempty"`
}

// UpdateProgressRequest carries partial updates. A changed percentage
// re-derives the status.
type UpdateProgressRequest struct {
	ProgressPercentage *int       `json:"progress_percentage,omitempty" validate:"omitempty,min=0,max=100"`
	Achievements       *string    `json:"achievements,omitempty"`
	Challenges         *string    `json:"challenges,omitempty"`
	Adjustments        *string    `json:"adjustments,omitempty"`
	DueDate            *time.Time `json:"due_date,omitempty"`
	NextCheckpoint     *time.Time `json:"next_checkpoint,omitempty"`
}

// ProgressStats aggregates progress entries for reporting.
type ProgressStats struct {
	Total           int     `json:"total"`
	Fulfilled       int     `json:"fulfilled"`
	Partial         int     `json:"partial"`
	Unfulfilled     int     `json:"unfulfilled"`
	AverageProgress float64 `json:"average_progress"`
}

// ProgressFilter captures criteria for progress queries.
type ProgressFilter struct {
	PlanningID  string
	ProfessorID string
	Partial     *int
	// ApprovedOnly restricts results to entries whose parent planning is
	// approved. Set for professors, whose view gate depends on it.
	ApprovedOnly bool
}
