package models

import "time"

// ReportFormat selects the export rendering.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ReportType identifies the aggregate exported.
type ReportType string

const (
	ReportTypeCompliance ReportType = "planning"
	ReportTypeProgress   ReportType = "progress"
	ReportTypeTraining   ReportType = "training"
)

// ComplianceReport summarises planning review outcomes for a cycle/partial.
type ComplianceReport struct {
	Total               int     `json:"total"`
	Approved            int     `json:"approved"`
	Pending             int     `json:"pending"`
	AdjustmentsRequired int     `json:"adjustments_required"`
	ComplianceRate      float64 `json:"compliance_rate"`
}

// ProfessorProgress is the per-professor slice of the progress report.
type ProfessorProgress struct {
	ProfessorID     string  `json:"professor_id"`
	ProfessorName   string  `json:"professor_name"`
	Total           int     `json:"total"`
	Fulfilled       int     `json:"fulfilled"`
	AverageProgress float64 `json:"average_progress"`
}

// ProgressReport aggregates partial-progress entries.
type ProgressReport struct {
	Total           int                 `json:"total"`
	AverageProgress float64             `json:"average_progress"`
	StatusBreakdown ProgressStats       `json:"status_breakdown"`
	ByProfessor     []ProfessorProgress `json:"by_professor"`
}

// TrainingGroup accumulates approved evidence per professor or institution.
type TrainingGroup struct {
	Key     string `json:"key"`
	Courses int    `json:"courses"`
	Hours   int    `json:"hours"`
}

// TrainingReport aggregates approved training evidence.
type TrainingReport struct {
	TotalCourses  int             `json:"total_courses"`
	TotalHours    int             `json:"total_hours"`
	ByProfessor   []TrainingGroup `json:"by_professor"`
	ByInstitution []TrainingGroup `json:"by_institution"`
}

// ComplianceFilter scopes the compliance report.
type ComplianceFilter struct {
	Cycle   string
	Partial *int
}

// TrainingFilter scopes the training report to approved evidence in a range.
type TrainingFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
}
