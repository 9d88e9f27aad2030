package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core/quiz"
)

type quizRepository struct {
	db *quizTable
}

var _ quiz.Repository = (*quizRepository)(nil) // interface compliance check

func NewQuizRepository(db *DB) *quizRepository {
	return &quizRepository{db: db.quiz}
}

func (repo *quizRepository) CreateTest(_ context.Context, tst quiz.Test) (quiz.Test, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	tst.ID = uuid.New().String()
	repo.db.tests[tst.ID] = &tst
	return tst, nil
}

func (repo *quizRepository) GetTestByID(_ context.Context, id string) (quiz.Test, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if tst, ok := repo.db.tests[id]; ok {
		return *tst, nil
	}
	return quiz.Test{}, quiz.ErrNotFound
}

func (repo *quizRepository) CreateQuestion(_ context.Context, q quiz.Question) (quiz.Question, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	q.ID = uuid.New().String()
	repo.db.questions = append(repo.db.questions, &q)
	return q, nil
}

func (repo *quizRepository) QueryQuestionsByTest(_ context.Context, testID string) ([]quiz.Question, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	questions := make([]quiz.Question, 0)
	for _, q := range repo.db.questions {
		if q.TestID == testID {
			questions = append(questions, *q)
		}
	}
	return questions, nil
}

func (repo *quizRepository) CreateTestResult(_ context.Context, res quiz.TestResult) (quiz.TestResult, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	res.ID = uuid.New().String()
	repo.db.results = append(repo.db.results, &res)
	return res, nil
}

func (repo *quizRepository) QueryTestResults(_ context.Context, testID, studentID string) ([]quiz.TestResult, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	results := make([]quiz.TestResult, 0)
	for _, res := range repo.db.results {
		if res.TestID == testID && res.StudentID == studentID {
			results = append(results, *res)
		}
	}
	return results, nil
}
