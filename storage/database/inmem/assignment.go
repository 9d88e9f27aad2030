package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core/assignment"
)

type assignmentRepository struct {
	db *assignmentTable
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *DB) *assignmentRepository {
	return &assignmentRepository{db: db.assignment}
}

func (repo *assignmentRepository) CreateAssignment(_ context.Context, asg assignment.Assignment) (assignment.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	asg.ID = uuid.New().String()
	repo.db.assignments[asg.ID] = &asg
	return asg, nil
}

func (repo *assignmentRepository) GetAssignmentByID(_ context.Context, id string) (assignment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if asg, ok := repo.db.assignments[id]; ok {
		return *asg, nil
	}
	return assignment.Assignment{}, assignment.ErrNotFound
}

func (repo *assignmentRepository) QueryAssignmentsByCourse(_ context.Context, courseID string) ([]assignment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	asgs := make([]assignment.Assignment, 0)
	for _, asg := range repo.db.assignments {
		if asg.CourseID == courseID {
			asgs = append(asgs, *asg)
		}
	}
	sort.Slice(asgs, func(i, j int) bool { return asgs[i].DueDate.Before(asgs[j].DueDate) })
	return asgs, nil
}

// CreateSubmission enforces the at-most-one-per-(assignment, student)
// invariant under the write lock.
func (repo *assignmentRepository) CreateSubmission(_ context.Context, sub assignment.Submission) (assignment.Submission, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := submissionKey{assignmentID: sub.AssignmentID, studentID: sub.StudentID}
	if _, exists := repo.db.submissionKeys[key]; exists {
		return assignment.Submission{}, assignment.ErrDuplicateSubmission
	}
	sub.ID = uuid.New().String()
	repo.db.submissions[sub.ID] = &sub
	repo.db.submissionKeys[key] = sub.ID
	return sub, nil
}

func (repo *assignmentRepository) GetSubmissionByID(_ context.Context, id string) (assignment.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sub, ok := repo.db.submissions[id]; ok {
		return *sub, nil
	}
	return assignment.Submission{}, assignment.ErrSubmissionNotFound
}

func (repo *assignmentRepository) GetSubmission(_ context.Context, assignmentID, studentID string) (assignment.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	key := submissionKey{assignmentID: assignmentID, studentID: studentID}
	if id, ok := repo.db.submissionKeys[key]; ok {
		return *repo.db.submissions[id], nil
	}
	return assignment.Submission{}, assignment.ErrSubmissionNotFound
}

func (repo *assignmentRepository) QuerySubmissionsByAssignment(_ context.Context, assignmentID string) ([]assignment.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subs := make([]assignment.Submission, 0)
	for _, sub := range repo.db.submissions {
		if sub.AssignmentID == assignmentID {
			subs = append(subs, *sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].SubmittedAt.After(subs[j].SubmittedAt) })
	return subs, nil
}

func (repo *assignmentRepository) UpdateSubmission(_ context.Context, sub assignment.Submission) (assignment.Submission, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.submissions[sub.ID]
	if !ok {
		return assignment.Submission{}, assignment.ErrSubmissionNotFound
	}
	orig.Marks = sub.Marks
	orig.Status = sub.Status
	orig.EvaluatedAt = sub.EvaluatedAt
	return *orig, nil
}
