package assignment

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

var (
	// errors
	ErrNotFound            = errors.New("assignment not found")
	ErrSubmissionNotFound  = errors.New("submission not found")
	ErrDuplicateSubmission = errors.New("this assignment has already been submitted")
	ErrAlreadyEvaluated    = errors.New("this submission has already been evaluated")
)

type (
	Repository interface {
		CreateAssignment(ctx context.Context, asg Assignment) (Assignment, error)
		GetAssignmentByID(ctx context.Context, id string) (Assignment, error)
		// QueryAssignmentsByCourse returns the course's assignments sorted by
		// DueDate ascending.
		QueryAssignmentsByCourse(ctx context.Context, courseID string) ([]Assignment, error)

		// CreateSubmission persists a new Submission; the store enforces the
		// at-most-one-per-(assignment, student) invariant and returns
		// ErrDuplicateSubmission on violation.
		CreateSubmission(ctx context.Context, sub Submission) (Submission, error)
		GetSubmissionByID(ctx context.Context, id string) (Submission, error)
		GetSubmission(ctx context.Context, assignmentID, studentID string) (Submission, error)
		// QuerySubmissionsByAssignment returns submissions sorted by
		// SubmittedAt descending.
		QuerySubmissionsByAssignment(ctx context.Context, assignmentID string) ([]Submission, error)
		UpdateSubmission(ctx context.Context, sub Submission) (Submission, error)
	}

	// UserGetter resolves user records for evaluation notifications.
	UserGetter interface {
		GetByID(ctx context.Context, id string) (user.User, error)
	}

	Service struct {
		repo    Repository
		users   UserGetter
		mailSvc core.EmailService
		conf    *core.Config
	}
)

func NewService(repo Repository, users UserGetter, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{repo: repo, users: users, mailSvc: mailSvc, conf: conf}
}

func (svc *Service) Create(ctx context.Context, teacherID string, na NewAssignment) (Assignment, error) {
	asg := Assignment{
		Title:       na.Title,
		Description: na.Description,
		CourseID:    na.CourseID,
		CreatedBy:   teacherID,
		DueDate:     na.DueDate.UTC(),
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreateAssignment(ctx, asg)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Assignment, error) {
	return svc.repo.GetAssignmentByID(ctx, id)
}

func (svc *Service) QueryByCourse(ctx context.Context, courseID string) ([]Assignment, error) {
	return svc.repo.QueryAssignmentsByCourse(ctx, courseID)
}

// Submit records a student's answer for an assignment. A student may submit
// at most once per assignment; the uniqueness invariant is enforced by the
// store so concurrent duplicate requests cannot both succeed.
func (svc *Service) Submit(ctx context.Context, studentID string, ns NewSubmission) (Submission, error) {
	if _, err := svc.repo.GetAssignmentByID(ctx, ns.AssignmentID); err != nil {
		return Submission{}, errors.Wrap(err, "finding assignment by ID")
	}

	sub := Submission{
		AssignmentID: ns.AssignmentID,
		StudentID:    studentID,
		AnswerText:   ns.AnswerText,
		Status:       StatusSubmitted,
		SubmittedAt:  time.Now().UTC(),
	}
	sub, err := svc.repo.CreateSubmission(ctx, sub)
	if err != nil {
		if errors.Cause(err) == ErrDuplicateSubmission {
			return Submission{}, core.NewValidationError(err, core.FieldError{
				Field: "assignment_id", Error: ErrDuplicateSubmission.Error(),
			})
		}
		return Submission{}, errors.Wrap(err, "creating submission")
	}
	return sub, nil
}

// Evaluate grades a Submission, moving it to the "checked" status. Whether a
// checked submission may be graded again is a config policy
// (Assignment.AllowReevaluation); when allowed, the previous marks are
// overwritten.
func (svc *Service) Evaluate(ctx context.Context, ev Evaluation) (Submission, error) {
	sub, err := svc.repo.GetSubmissionByID(ctx, ev.SubmissionID)
	if err != nil {
		return Submission{}, errors.Wrap(err, "finding submission by ID")
	}
	if sub.IsChecked() && !svc.conf.Assignment.AllowReevaluation {
		return Submission{}, core.NewValidationError(ErrAlreadyEvaluated, core.FieldError{
			Field: "submission_id", Error: ErrAlreadyEvaluated.Error(),
		})
	}

	now := time.Now().UTC()
	sub.Marks = ev.Marks
	sub.Status = StatusChecked
	sub.EvaluatedAt = &now

	sub, err = svc.repo.UpdateSubmission(ctx, sub)
	if err != nil {
		return Submission{}, errors.Wrap(err, "updating submission")
	}

	svc.notifyStudent(ctx, sub)
	return sub, nil
}

func (svc *Service) QuerySubmissions(ctx context.Context, assignmentID string) ([]Submission, error) {
	return svc.repo.QuerySubmissionsByAssignment(ctx, assignmentID)
}

// GetOwnSubmission returns the student's submission for an assignment.
func (svc *Service) GetOwnSubmission(ctx context.Context, assignmentID, studentID string) (Submission, error) {
	return svc.repo.GetSubmission(ctx, assignmentID, studentID)
}

func (svc *Service) notifyStudent(ctx context.Context, sub Submission) {
	usr, err := svc.users.GetByID(ctx, sub.StudentID)
	if err != nil {
		return // notification is best effort
	}
	asg, err := svc.repo.GetAssignmentByID(ctx, sub.AssignmentID)
	if err != nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      fmt.Sprintf("Your submission for %q has been evaluated", asg.Title),
		TemplateName: "submission-evaluated",
		TemplateData: struct {
			Name, AssignmentTitle string
			Marks                 float64
		}{usr.Name, asg.Title, *sub.Marks},
	})
}
