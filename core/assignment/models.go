package assignment

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

// Submission statuses
const (
	StatusSubmitted = "submitted" // waiting for teacher evaluation
	StatusChecked   = "checked"   // teacher has evaluated and given marks
)

type Assignment struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CourseID    string    `json:"course_id"`
	CreatedBy   string    `json:"created_by"`
	DueDate     time.Time `json:"due_date"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

type Submission struct {
	ID           string     `json:"id"`
	AssignmentID string     `json:"assignment_id"`
	StudentID    string     `json:"student_id"`
	AnswerText   string     `json:"answer_text"`
	Marks        *float64   `json:"marks"`
	Status       string     `json:"status"`
	SubmittedAt  time.Time  `json:"submitted_at"` // UTC
	EvaluatedAt  *time.Time `json:"evaluated_at"` // UTC
}

func (s *Submission) IsChecked() bool {
	return s.Status == StatusChecked
}

// NewAssignment contains information needed to create a new Assignment.
type NewAssignment struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description" validate:"required"`
	CourseID    string    `json:"course_id" validate:"required"`
	DueDate     time.Time `json:"due_date" validate:"required"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	return validate.Struct(na)
}

// NewSubmission contains information needed for a student to submit an answer.
type NewSubmission struct {
	AssignmentID string `json:"assignment_id" validate:"required"`
	AnswerText   string `json:"answer_text" validate:"required"`
}

func (ns *NewSubmission) Validate(validate *validator.Validate) error {
	ns.AnswerText = core.CleanString(ns.AnswerText)
	return validate.Struct(ns)
}

// Evaluation contains information needed for a teacher to grade a Submission.
type Evaluation struct {
	SubmissionID string   `json:"submission_id" validate:"required"`
	Marks        *float64 `json:"marks" validate:"required,gte=0"`
}

func (ev Evaluation) Validate(validate *validator.Validate) error {
	return validate.Struct(ev)
}
