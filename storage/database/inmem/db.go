package inmemdb

import (
	"sync"

	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/quiz"
	"github.com/trezcool/darasa/core/user"
)

type (
	DB struct {
		user       *userTable
		course     *courseTable
		assignment *assignmentTable
		quiz       *quizTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	courseTable struct {
		sync.RWMutex
		courses  map[string]*course.Course
		lectures map[string]*course.Lecture
		progress map[string]*course.Progress
	}

	assignmentTable struct {
		sync.RWMutex
		assignments map[string]*assignment.Assignment
		submissions map[string]*assignment.Submission
		// submissionKeys enforces the unique (assignment, student) pair.
		submissionKeys map[submissionKey]string
	}

	submissionKey struct {
		assignmentID string
		studentID    string
	}

	quizTable struct {
		sync.RWMutex
		tests     map[string]*quiz.Test
		questions []*quiz.Question // creation order
		results   []*quiz.TestResult
	}
)

// Reset drops all stored records. Intended for tests.
func (db *DB) Reset() {
	db.user.Lock()
	db.user.table = make(map[string]*user.User)
	db.user.Unlock()

	db.course.Lock()
	db.course.courses = make(map[string]*course.Course)
	db.course.lectures = make(map[string]*course.Lecture)
	db.course.progress = make(map[string]*course.Progress)
	db.course.Unlock()

	db.assignment.Lock()
	db.assignment.assignments = make(map[string]*assignment.Assignment)
	db.assignment.submissions = make(map[string]*assignment.Submission)
	db.assignment.submissionKeys = make(map[submissionKey]string)
	db.assignment.Unlock()

	db.quiz.Lock()
	db.quiz.tests = make(map[string]*quiz.Test)
	db.quiz.questions = nil
	db.quiz.results = nil
	db.quiz.Unlock()
}

func Open() (*DB, error) {
	db := &DB{
		user: &userTable{table: make(map[string]*user.User)},
		course: &courseTable{
			courses:  make(map[string]*course.Course),
			lectures: make(map[string]*course.Lecture),
			progress: make(map[string]*course.Progress),
		},
		assignment: &assignmentTable{
			assignments:    make(map[string]*assignment.Assignment),
			submissions:    make(map[string]*assignment.Submission),
			submissionKeys: make(map[submissionKey]string),
		},
		quiz: &quizTable{tests: make(map[string]*quiz.Test)},
	}
	return db, nil
}
