package models

import "time"

// CalendarEventKind classifies synthesized calendar events.
type CalendarEventKind string

const (
	EventPlanningSubmission CalendarEventKind = "planning_submission"
	EventReviewDeadline     CalendarEventKind = "review_deadline"
	EventTrainingEvidence   CalendarEventKind = "training_evidence"
	EventProgressCheckpoint CalendarEventKind = "progress_checkpoint"
)

// CalendarEvent is synthesized from planning, evidence, and progress rows.
// Events are not stored; listing recomputes them from the source tables.
type CalendarEvent struct {
	ID          string            `json:"id"`
	Kind        CalendarEventKind `json:"kind"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Start       time.Time         `json:"start"`
	End         time.Time         `json:"end"`
	Location    string            `json:"location"`
}

// CalendarFilter scopes event synthesis. ProfessorID is forced for professors
// the same way row listings are.
type CalendarFilter struct {
	ProfessorID string
	Kind        CalendarEventKind
	From        time.Time
	To          time.Time
	MaxResults  int
}
