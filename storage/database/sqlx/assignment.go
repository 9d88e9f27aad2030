package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
)

type assignmentRepository struct {
	db *sqlx.DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *sql.DB) *assignmentRepository {
	return &assignmentRepository{db: sqlx.NewDb(db, "postgres")}
}

type assignmentRow struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	CourseID    string    `db:"course_id"`
	CreatedBy   string    `db:"created_by"`
	DueDate     time.Time `db:"due_date"`
	CreatedAt   time.Time `db:"created_at"`
}

type submissionRow struct {
	ID           string          `db:"id"`
	AssignmentID string          `db:"assignment_id"`
	StudentID    string          `db:"student_id"`
	AnswerText   string          `db:"answer_text"`
	Marks        sql.NullFloat64 `db:"marks"`
	Status       string          `db:"status"`
	SubmittedAt  time.Time       `db:"submitted_at"`
	EvaluatedAt  sql.NullTime    `db:"evaluated_at"`
}

func (repo assignmentRepository) rowSub(sub assignment.Submission) submissionRow {
	row := submissionRow{
		ID:           sub.ID,
		AssignmentID: sub.AssignmentID,
		StudentID:    sub.StudentID,
		AnswerText:   sub.AnswerText,
		Status:       sub.Status,
		SubmittedAt:  sub.SubmittedAt.UTC(),
	}
	if sub.Marks != nil {
		row.Marks = sql.NullFloat64{Float64: *sub.Marks, Valid: true}
	}
	if sub.EvaluatedAt != nil {
		row.EvaluatedAt = sql.NullTime{Time: sub.EvaluatedAt.UTC(), Valid: true}
	}
	return row
}

func (repo assignmentRepository) unrowSub(row submissionRow) assignment.Submission {
	sub := assignment.Submission{
		ID:           row.ID,
		AssignmentID: row.AssignmentID,
		StudentID:    row.StudentID,
		AnswerText:   row.AnswerText,
		Status:       row.Status,
		SubmittedAt:  row.SubmittedAt,
	}
	if row.Marks.Valid {
		sub.Marks = &row.Marks.Float64
	}
	if row.EvaluatedAt.Valid {
		sub.EvaluatedAt = &row.EvaluatedAt.Time
	}
	return sub
}

func (repo assignmentRepository) CreateAssignment(ctx context.Context, asg assignment.Assignment) (assignment.Assignment, error) {
	asg.ID = uuid.New().String()
	query := `
INSERT INTO assignment (id, title, description, course_id, created_by, due_date, created_at)
VALUES (:id, :title, :description, :course_id, :created_by, :due_date, :created_at)`
	row := assignmentRow(asg)
	row.DueDate = row.DueDate.UTC()
	row.CreatedAt = row.CreatedAt.UTC()
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return asg, nil
}

func (repo assignmentRepository) GetAssignmentByID(ctx context.Context, id string) (assignment.Assignment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	var row assignmentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM assignment WHERE id = $1`, id); err != nil {
		return assignment.Assignment{}, trapNoRowsErr(err, assignment.ErrNotFound, "getting assignment by ID")
	}
	return assignment.Assignment(row), nil
}

func (repo assignmentRepository) QueryAssignmentsByCourse(ctx context.Context, courseID string) ([]assignment.Assignment, error) {
	ord := core.DBOrdering{Field: "due_date", Ascending: true}
	var rows []assignmentRow
	query := `SELECT * FROM assignment WHERE course_id = $1 ORDER BY ` + ord.String()
	if err := repo.db.SelectContext(ctx, &rows, query, courseID); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	asgs := make([]assignment.Assignment, 0, len(rows))
	for _, row := range rows {
		asgs = append(asgs, assignment.Assignment(row))
	}
	return asgs, nil
}

func (repo assignmentRepository) CreateSubmission(ctx context.Context, sub assignment.Submission) (assignment.Submission, error) {
	sub.ID = uuid.New().String()
	query := `
INSERT INTO submission (id, assignment_id, student_id, answer_text, marks, status, submitted_at, evaluated_at)
VALUES (:id, :assignment_id, :student_id, :answer_text, :marks, :status, :submitted_at, :evaluated_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, repo.rowSub(sub)); err != nil {
		if isUniqueViolation(err, "submission_assignment_student_key") {
			return assignment.Submission{}, assignment.ErrDuplicateSubmission
		}
		return assignment.Submission{}, errors.Wrap(err, "inserting submission")
	}
	return sub, nil
}

func (repo assignmentRepository) GetSubmissionByID(ctx context.Context, id string) (assignment.Submission, error) {
	if _, err := uuid.Parse(id); err != nil {
		return assignment.Submission{}, assignment.ErrSubmissionNotFound
	}
	var row submissionRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM submission WHERE id = $1`, id); err != nil {
		return assignment.Submission{}, trapNoRowsErr(err, assignment.ErrSubmissionNotFound, "getting submission by ID")
	}
	return repo.unrowSub(row), nil
}

func (repo assignmentRepository) GetSubmission(ctx context.Context, assignmentID, studentID string) (assignment.Submission, error) {
	var row submissionRow
	query := `SELECT * FROM submission WHERE assignment_id = $1 AND student_id = $2`
	if err := repo.db.GetContext(ctx, &row, query, assignmentID, studentID); err != nil {
		return assignment.Submission{}, trapNoRowsErr(err, assignment.ErrSubmissionNotFound, "getting submission")
	}
	return repo.unrowSub(row), nil
}

func (repo assignmentRepository) QuerySubmissionsByAssignment(ctx context.Context, assignmentID string) ([]assignment.Submission, error) {
	ord := core.DBOrdering{Field: "submitted_at", Ascending: false}
	var rows []submissionRow
	query := `SELECT * FROM submission WHERE assignment_id = $1 ORDER BY ` + ord.String()
	if err := repo.db.SelectContext(ctx, &rows, query, assignmentID); err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	subs := make([]assignment.Submission, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, repo.unrowSub(row))
	}
	return subs, nil
}

func (repo assignmentRepository) UpdateSubmission(ctx context.Context, sub assignment.Submission) (assignment.Submission, error) {
	query := `
UPDATE submission SET marks = :marks, status = :status, evaluated_at = :evaluated_at
WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, repo.rowSub(sub))
	if err != nil {
		return assignment.Submission{}, errors.Wrap(err, "updating submission")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return assignment.Submission{}, assignment.ErrSubmissionNotFound
	}
	return sub, nil
}
