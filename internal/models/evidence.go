package models

import "time"

// EvidenceStatus is the review state of a training evidence record. Unlike
// plannings the outcome is binary: approved or rejected.
type EvidenceStatus string

const (
	EvidenceStatusPending  EvidenceStatus = "pending"
	EvidenceStatusApproved EvidenceStatus = "approved"
	EvidenceStatusRejected EvidenceStatus = "rejected"
)

// Valid reports whether the status is a known value.
func (s EvidenceStatus) Valid() bool {
	switch s {
	case EvidenceStatusPending, EvidenceStatusApproved, EvidenceStatusRejected:
		return true
	}
	return false
}

// Evidence records a professor's completed external training course with its
// supporting document.
type Evidence struct {
	ID          string         `db:"id" json:"id"`
	ProfessorID string         `db:"professor_id" json:"professor_id"`
	CourseName  string         `db:"course_name" json:"course_name"`
	Institution string         `db:"institution" json:"institution"`
	Date        time.Time      `db:"date" json:"date"`
	Hours       int            `db:"hours" json:"hours"`
	FileURL     string         `db:"file_url" json:"file_url"`
	FileName    *string        `db:"file_name" json:"file_name,omitempty"`
	DriveFileID *string        `db:"drive_file_id" json:"drive_file_id,omitempty"`
	StorageType StorageType    `db:"storage_type" json:"storage_type"`
	Status      EvidenceStatus `db:"status" json:"status"`
	Feedback    *string        `db:"feedback" json:"feedback,omitempty"`
	IsActive    bool           `db:"is_active" json:"is_active"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`

	Professor *ProfessorInfo `db:"-" json:"professor,omitempty"`
}

// CreateEvidenceRequest is the multipart form payload for registering a
// training course. A document is required: either an uploaded file or a
// drive reference.
type CreateEvidenceRequest struct {
	CourseName   string    `json:"course_name" form:"course_name" validate:"required"`
	Institution  string    `json:"institution" form:"institution" validate:"required"`
	Date         time.Time `json:"date" form:"date" time_format:"2006-01-02" validate:"required"`
	Hours        int       `json:"hours" form:"hours" validate:"required,min=1"`
	DriveFileID  *string   `json:"drive_file_id,omitempty" form:"drive_file_id"`
	DriveFileURL *string   `json:"drive_file_url,omitempty" form:"drive_file_url"`
}

// UpdateEvidenceRequest carries partial updates. Nil fields are left
// unchanged.
type UpdateEvidenceRequest struct {
	CourseName  *string    `json:"course_name,omitempty" form:"course_name"`
	Institution *string    `json:"institution,omitempty" form:"institution"`
	Date        *time.Time `json:"date,omitempty" form:"date" time_format:"2006-01-02"`
	Hours       *int       `json:"hours,omitempty" form:"hours" validate:"omitempty,min=1"`
}

// ReviewEvidenceRequest records a review verdict on an evidence record.
type ReviewEvidenceRequest struct {
	Status   EvidenceStatus `json:"status" validate:"required"`
	Feedback string         `json:"feedback" validate:"required"`
}

// EvidenceFilter captures list criteria for evidence records.
type EvidenceFilter struct {
	ProfessorID string
	Status      *EvidenceStatus
	StartDate   *time.Time
	EndDate     *time.Time
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}
