package models

import "time"

// PlanningStatus is the review state of a didactic planning.
type PlanningStatus string

const (
	PlanningStatusPending     PlanningStatus = "pending"
	PlanningStatusApproved    PlanningStatus = "approved"
	PlanningStatusAdjustments PlanningStatus = "adjustments_required"
)

// Valid reports whether the status is a known value.
func (s PlanningStatus) Valid() bool {
	switch s {
	case PlanningStatusPending, PlanningStatusApproved, PlanningStatusAdjustments:
		return true
	}
	return false
}

// Editable reports whether the owning professor may still modify content.
// Approved plannings are frozen; a re-review is required to reopen them.
func (s PlanningStatus) Editable() bool {
	return s == PlanningStatusPending || s == PlanningStatusAdjustments
}

// StorageType records where an attachment lives.
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeDrive StorageType = "google_drive"
)

// Planning is a didactic plan submitted by a professor for one grading partial
// of one school cycle. course_name is denormalized free text; there is no
// separate course entity.
type Planning struct {
	ID             string         `db:"id" json:"id"`
	ProfessorID    string         `db:"professor_id" json:"professor_id"`
	CourseName     string         `db:"course_name" json:"course_name"`
	Partial        int            `db:"partial" json:"partial"`
	Cycle          string         `db:"cycle" json:"cycle"`
	Content        string         `db:"content" json:"content"`
	Objectives     string         `db:"objectives" json:"objectives"`
	Methodology    string         `db:"methodology" json:"methodology"`
	Evaluation     string         `db:"evaluation" json:"evaluation"`
	Resources      *string        `db:"resources" json:"resources,omitempty"`
	Status         PlanningStatus `db:"status" json:"status"`
	Feedback       *string        `db:"feedback" json:"feedback,omitempty"`
	FileURL        *string        `db:"file_url" json:"file_url,omitempty"`
	FileName       *string        `db:"file_name" json:"file_name,omitempty"`
	FileSize       *int64         `db:"file_size" json:"file_size,omitempty"`
	DriveFileID    *string        `db:"drive_file_id" json:"drive_file_id,omitempty"`
	StorageType    StorageType    `db:"storage_type" json:"storage_type"`
	SubmissionDate time.Time      `db:"submission_date" json:"submission_date"`
	ReviewDeadline *time.Time     `db:"review_deadline" json:"review_deadline,omitempty"`
	IsActive       bool           `db:"is_active" json:"is_active"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`

	Professor *ProfessorInfo `db:"-" json:"professor,omitempty"`
}

// CreatePlanningRequest is the multipart form payload for submitting a
// planning. Attachment fields are filled by the handler, not the client.
type CreatePlanningRequest struct {
	CourseName     string     `json:"course_name" form:"course_name" validate:"required"`
	Partial        int        `json:"partial" form:"partial" validate:"required,min=1,max=3"`
	Cycle          string     `json:"cycle" form:"cycle" validate:"required"`
	Content        string     `json:"content" form:"content" validate:"required"`
	Objectives     string     `json:"objectives" form:"objectives" validate:"required"`
	Methodology    string     `json:"methodology" form:"methodology" validate:"required"`
	Evaluation     string     `json:"evaluation" form:"evaluation" validate:"required"`
	Resources      *string    `json:"resources,omitempty" form:"resources"`
	ReviewDeadline *time.Time `json:"review_deadline,omitempty" form:"review_deadline" time_format:"2006-01-02"`
	DriveFileID    *string    `json:"drive_file_id,omitempty" form:"drive_file_id"`
	DriveFileURL   *string    `json:"drive_file_url,omitempty" form:"drive_file_url"`
}

// UpdatePlanningRequest carries partial updates. Nil fields are left
// unchanged.
type UpdatePlanningRequest struct {
	CourseName     *string    `json:"course_name,omitempty" form:"course_name"`
	Partial        *int       `json:"partial,omitempty" form:"partial" validate:"omitempty,min=1,max=3"`
	Cycle          *string    `json:"cycle,omitempty" form:"cycle"`
	Content        *string    `json:"content,omitempty" form:"content"`
	Objectives     *string    `json:"objectives,omitempty" form:"objectives"`
	Methodology    *string    `json:"methodology,omitempty" form:"methodology"`
	Evaluation     *string    `json:"evaluation,omitempty" form:"evaluation"`
	Resources      *string    `json:"resources,omitempty" form:"resources"`
	ReviewDeadline *time.Time `json:"review_deadline,omitempty" form:"review_deadline" time_format:"2006-01-02"`
}

// ReviewPlanningRequest records a review verdict. Feedback is mandatory for
// every verdict including approval.
type ReviewPlanningRequest struct {
	Status   PlanningStatus `json:"status" validate:"required"`
	Feedback string         `json:"feedback" validate:"required"`
}

// PlanningFilter captures list criteria. ProfessorID is forced to the
// requester for professors before any client-supplied value is considered.
type PlanningFilter struct {
	ProfessorID string
	CourseName  string
	Partial     *int
	Status      *PlanningStatus
	Cycle       string
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}
