package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/quiz"
)

type quizRepository struct {
	db *sqlx.DB
}

var _ quiz.Repository = (*quizRepository)(nil) // interface compliance check

func NewQuizRepository(db *sql.DB) *quizRepository {
	return &quizRepository{db: sqlx.NewDb(db, "postgres")}
}

type testRow struct {
	ID        string    `db:"id"`
	Title     string    `db:"title"`
	CourseID  string    `db:"course_id"`
	CreatedBy string    `db:"created_by"`
	CreatedAt time.Time `db:"created_at"`
}

type questionRow struct {
	ID            string    `db:"id"`
	TestID        string    `db:"test_id"`
	Text          string    `db:"question_text"`
	Options       []byte    `db:"options"` // jsonb
	CorrectAnswer string    `db:"correct_answer"`
	CreatedAt     time.Time `db:"created_at"`
}

type testResultRow struct {
	ID        string    `db:"id"`
	TestID    string    `db:"test_id"`
	StudentID string    `db:"student_id"`
	Score     int       `db:"score"`
	Answers   []byte    `db:"answers"` // jsonb
	CreatedAt time.Time `db:"created_at"`
}

func (repo quizRepository) unrowQuestion(row questionRow) (quiz.Question, error) {
	q := quiz.Question{
		ID:            row.ID,
		TestID:        row.TestID,
		Text:          row.Text,
		CorrectAnswer: row.CorrectAnswer,
	}
	if err := json.Unmarshal(row.Options, &q.Options); err != nil {
		return quiz.Question{}, errors.Wrap(err, "decoding question options")
	}
	return q, nil
}

func (repo quizRepository) unrowResult(row testResultRow) (quiz.TestResult, error) {
	res := quiz.TestResult{
		ID:        row.ID,
		TestID:    row.TestID,
		StudentID: row.StudentID,
		Score:     row.Score,
		CreatedAt: row.CreatedAt,
	}
	if err := json.Unmarshal(row.Answers, &res.Answers); err != nil {
		return quiz.TestResult{}, errors.Wrap(err, "decoding result answers")
	}
	return res, nil
}

func (repo quizRepository) CreateTest(ctx context.Context, tst quiz.Test) (quiz.Test, error) {
	tst.ID = uuid.New().String()
	query := `
INSERT INTO test (id, title, course_id, created_by, created_at)
VALUES (:id, :title, :course_id, :created_by, :created_at)`
	row := testRow(tst)
	row.CreatedAt = row.CreatedAt.UTC()
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		return quiz.Test{}, errors.Wrap(err, "inserting test")
	}
	return tst, nil
}

func (repo quizRepository) GetTestByID(ctx context.Context, id string) (quiz.Test, error) {
	if _, err := uuid.Parse(id); err != nil {
		return quiz.Test{}, quiz.ErrNotFound
	}
	var row testRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM test WHERE id = $1`, id); err != nil {
		return quiz.Test{}, trapNoRowsErr(err, quiz.ErrNotFound, "getting test by ID")
	}
	return quiz.Test(row), nil
}

func (repo quizRepository) CreateQuestion(ctx context.Context, q quiz.Question) (quiz.Question, error) {
	q.ID = uuid.New().String()
	options, err := json.Marshal(q.Options)
	if err != nil {
		return quiz.Question{}, errors.Wrap(err, "encoding question options")
	}
	row := questionRow{
		ID:            q.ID,
		TestID:        q.TestID,
		Text:          q.Text,
		Options:       options,
		CorrectAnswer: q.CorrectAnswer,
		CreatedAt:     time.Now().UTC(),
	}
	query := `
INSERT INTO question (id, test_id, question_text, options, correct_answer, created_at)
VALUES (:id, :test_id, :question_text, :options, :correct_answer, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		return quiz.Question{}, errors.Wrap(err, "inserting question")
	}
	return q, nil
}

func (repo quizRepository) QueryQuestionsByTest(ctx context.Context, testID string) ([]quiz.Question, error) {
	ord := core.DBOrdering{Field: "created_at", Ascending: true}
	var rows []questionRow
	query := `SELECT * FROM question WHERE test_id = $1 ORDER BY ` + ord.String()
	if err := repo.db.SelectContext(ctx, &rows, query, testID); err != nil {
		return nil, errors.Wrap(err, "querying questions")
	}
	questions := make([]quiz.Question, 0, len(rows))
	for _, row := range rows {
		q, err := repo.unrowQuestion(row)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func (repo quizRepository) CreateTestResult(ctx context.Context, res quiz.TestResult) (quiz.TestResult, error) {
	res.ID = uuid.New().String()
	answers, err := json.Marshal(res.Answers)
	if err != nil {
		return quiz.TestResult{}, errors.Wrap(err, "encoding result answers")
	}
	row := testResultRow{
		ID:        res.ID,
		TestID:    res.TestID,
		StudentID: res.StudentID,
		Score:     res.Score,
		Answers:   answers,
		CreatedAt: res.CreatedAt.UTC(),
	}
	query := `
INSERT INTO test_result (id, test_id, student_id, score, answers, created_at)
VALUES (:id, :test_id, :student_id, :score, :answers, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		return quiz.TestResult{}, errors.Wrap(err, "inserting test result")
	}
	return res, nil
}

func (repo quizRepository) QueryTestResults(ctx context.Context, testID, studentID string) ([]quiz.TestResult, error) {
	ord := core.DBOrdering{Field: "created_at", Ascending: true}
	var rows []testResultRow
	query := `SELECT * FROM test_result WHERE test_id = $1 AND student_id = $2 ORDER BY ` + ord.String()
	if err := repo.db.SelectContext(ctx, &rows, query, testID, studentID); err != nil {
		return nil, errors.Wrap(err, "querying test results")
	}
	results := make([]quiz.TestResult, 0, len(rows))
	for _, row := range rows {
		res, err := repo.unrowResult(row)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}
