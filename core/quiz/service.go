package quiz

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound = errors.New("test not found")
)

type (
	Repository interface {
		CreateTest(ctx context.Context, tst Test) (Test, error)
		GetTestByID(ctx context.Context, id string) (Test, error)
		CreateQuestion(ctx context.Context, q Question) (Question, error)
		// QueryQuestionsByTest returns the test's questions in creation order.
		QueryQuestionsByTest(ctx context.Context, testID string) ([]Question, error)
		CreateTestResult(ctx context.Context, res TestResult) (TestResult, error)
		QueryTestResults(ctx context.Context, testID, studentID string) ([]TestResult, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CreateTest(ctx context.Context, teacherID string, nt NewTest) (Test, error) {
	tst := Test{
		Title:     nt.Title,
		CourseID:  nt.CourseID,
		CreatedBy: teacherID,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateTest(ctx, tst)
}

func (svc *Service) AddQuestion(ctx context.Context, nq NewQuestion) (Question, error) {
	if _, err := svc.repo.GetTestByID(ctx, nq.TestID); err != nil {
		return Question{}, errors.Wrap(err, "finding test by ID")
	}
	q := Question{
		TestID:        nq.TestID,
		Text:          nq.Text,
		Options:       nq.Options,
		CorrectAnswer: nq.CorrectAnswer,
	}
	return svc.repo.CreateQuestion(ctx, q)
}

// GetTest returns a test and its questions with correct answers stripped.
func (svc *Service) GetTest(ctx context.Context, id string) (Test, []StudentQuestion, error) {
	tst, err := svc.repo.GetTestByID(ctx, id)
	if err != nil {
		return Test{}, nil, errors.Wrap(err, "finding test by ID")
	}
	questions, err := svc.repo.QueryQuestionsByTest(ctx, id)
	if err != nil {
		return Test{}, nil, errors.Wrap(err, "querying questions")
	}

	sqs := make([]StudentQuestion, 0, len(questions))
	for _, q := range questions {
		sqs = append(sqs, q.ForStudent())
	}
	return tst, sqs, nil
}

// Submit grades a student's answers against the test's stored correct
// answers and persists a new TestResult.
//
// The score is the rounded percentage of correct answers over the test's
// full question count: a partial submission is implicitly penalized, and
// answers to unknown question IDs count as incorrect. A test with no
// questions scores 0.
func (svc *Service) Submit(ctx context.Context, studentID string, ts TestSubmission) (TestResult, error) {
	if _, err := svc.repo.GetTestByID(ctx, ts.TestID); err != nil {
		return TestResult{}, errors.Wrap(err, "finding test by ID")
	}
	questions, err := svc.repo.QueryQuestionsByTest(ctx, ts.TestID)
	if err != nil {
		return TestResult{}, errors.Wrap(err, "querying questions")
	}

	correctAnswers := make(map[string]string, len(questions))
	for _, q := range questions {
		correctAnswers[q.ID] = q.CorrectAnswer
	}

	var correctCount int
	answers := make([]Answer, 0, len(ts.Answers))
	for _, ans := range ts.Answers {
		correct, known := correctAnswers[ans.QuestionID]
		isCorrect := known && ans.SelectedAnswer == correct
		if isCorrect {
			correctCount++
		}
		answers = append(answers, Answer{
			QuestionID:     ans.QuestionID,
			SelectedAnswer: ans.SelectedAnswer,
			IsCorrect:      isCorrect,
		})
	}

	var score int
	if len(questions) > 0 {
		score = int(math.Round(float64(correctCount) / float64(len(questions)) * 100))
	}

	res := TestResult{
		TestID:    ts.TestID,
		StudentID: studentID,
		Score:     score,
		Answers:   answers,
		CreatedAt: time.Now().UTC(),
	}
	res, err = svc.repo.CreateTestResult(ctx, res)
	if err != nil {
		return TestResult{}, errors.Wrap(err, "creating test result")
	}
	return res, nil
}

func (svc *Service) QueryResults(ctx context.Context, testID, studentID string) ([]TestResult, error) {
	return svc.repo.QueryTestResults(ctx, testID, studentID)
}

// TotalQuestions returns the test's question count; used when reporting a
// submission's score breakdown.
func (svc *Service) TotalQuestions(ctx context.Context, testID string) (int, error) {
	questions, err := svc.repo.QueryQuestionsByTest(ctx, testID)
	if err != nil {
		return 0, errors.Wrap(err, "querying questions")
	}
	return len(questions), nil
}
