package quiz

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

type Test struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CourseID  string    `json:"course_id"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type Question struct {
	ID            string   `json:"id"`
	TestID        string   `json:"test_id"`
	Text          string   `json:"question_text"`
	Options       []string `json:"options"` // ordered
	CorrectAnswer string   `json:"correct_answer"`
}

// StudentQuestion is a Question as exposed to test takers: the correct
// answer is stripped.
type StudentQuestion struct {
	ID      string   `json:"id"`
	TestID  string   `json:"test_id"`
	Text    string   `json:"question_text"`
	Options []string `json:"options"`
}

func (q Question) ForStudent() StudentQuestion {
	return StudentQuestion{ID: q.ID, TestID: q.TestID, Text: q.Text, Options: q.Options}
}

// Answer is a graded answer within a TestResult.
type Answer struct {
	QuestionID     string `json:"question_id"`
	SelectedAnswer string `json:"selected_answer"`
	IsCorrect      bool   `json:"is_correct"`
}

// TestResult records one grading of a student's test submission. Repeated
// submissions each append a new TestResult.
type TestResult struct {
	ID        string    `json:"id"`
	TestID    string    `json:"test_id"`
	StudentID string    `json:"student_id"`
	Score     int       `json:"score"` // 0-100
	Answers   []Answer  `json:"answers"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// NewTest contains information needed to create a new Test.
type NewTest struct {
	Title    string `json:"title" validate:"required"`
	CourseID string `json:"course_id" validate:"required"`
}

func (nt *NewTest) Validate(validate *validator.Validate) error {
	nt.Title = core.CleanString(nt.Title)
	return validate.Struct(nt)
}

// NewQuestion contains information needed to add a Question to a Test.
// The correct answer must be one of the options.
type NewQuestion struct {
	TestID        string   `json:"test_id" validate:"required"`
	Text          string   `json:"question_text" validate:"required"`
	Options       []string `json:"options" validate:"required,min=1,dive,required"`
	CorrectAnswer string   `json:"correct_answer" validate:"required"`
}

func (nq *NewQuestion) Validate(validate *validator.Validate) error {
	nq.Text = core.CleanString(nq.Text)
	return validate.Struct(nq)
}

// SubmittedAnswer is a student's answer to one question.
type SubmittedAnswer struct {
	QuestionID     string `json:"question_id" validate:"required"`
	SelectedAnswer string `json:"selected_answer" validate:"required"`
}

// TestSubmission contains a student's answers for grading. A partial (or
// empty) answer set is accepted and scored against the test's full question
// count.
type TestSubmission struct {
	TestID  string            `json:"test_id" validate:"required"`
	Answers []SubmittedAnswer `json:"answers" validate:"omitempty,dive"`
}

func (ts TestSubmission) Validate(validate *validator.Validate) error {
	return validate.Struct(ts)
}
