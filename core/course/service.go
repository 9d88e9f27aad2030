package course

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound        = errors.New("course not found")
	ErrLectureNotFound = errors.New("lecture not found")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		QueryAllCourses(ctx context.Context) ([]Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)
		CreateLecture(ctx context.Context, lect Lecture) (Lecture, error)
		// QueryLecturesByCourse returns the course's lectures sorted by
		// Lecture.Order ascending.
		QueryLecturesByCourse(ctx context.Context, courseID string) ([]Lecture, error)
		CreateProgress(ctx context.Context, prog Progress) (Progress, error)
		// QueryCompletedLectures returns the student's completed Progress
		// records for the course.
		QueryCompletedLectures(ctx context.Context, courseID, studentID string) ([]Progress, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, teacherID string, nc NewCourse) (Course, error) {
	crs := Course{
		Title:       nc.Title,
		Description: nc.Description,
		TeacherID:   teacherID,
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryAllCourses(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *Service) AddLecture(ctx context.Context, nl NewLecture) (Lecture, error) {
	if _, err := svc.repo.GetCourseByID(ctx, nl.CourseID); err != nil {
		return Lecture{}, errors.Wrap(err, "finding course by ID")
	}
	lect := Lecture{
		CourseID: nl.CourseID,
		Title:    nl.Title,
		VideoURL: nl.VideoURL,
		Order:    nl.Order,
	}
	return svc.repo.CreateLecture(ctx, lect)
}

func (svc *Service) QueryLectures(ctx context.Context, courseID string) ([]Lecture, error) {
	return svc.repo.QueryLecturesByCourse(ctx, courseID)
}

func (svc *Service) CompleteLecture(ctx context.Context, studentID string, lc LectureCompletion) (Progress, error) {
	prog := Progress{
		StudentID:   studentID,
		CourseID:    lc.CourseID,
		LectureID:   lc.LectureID,
		Completed:   true,
		CompletedAt: time.Now().UTC(),
	}
	return svc.repo.CreateProgress(ctx, prog)
}

// GetCourseProgress computes the student's completion percentage over the
// course's lectures; a course with no lectures is 0% complete.
func (svc *Service) GetCourseProgress(ctx context.Context, courseID, studentID string) (CourseProgress, error) {
	lectures, err := svc.repo.QueryLecturesByCourse(ctx, courseID)
	if err != nil {
		return CourseProgress{}, errors.Wrap(err, "querying lectures")
	}
	completed, err := svc.repo.QueryCompletedLectures(ctx, courseID, studentID)
	if err != nil {
		return CourseProgress{}, errors.Wrap(err, "querying completed lectures")
	}

	prog := CourseProgress{
		CourseID:          courseID,
		StudentID:         studentID,
		TotalLectures:     len(lectures),
		CompletedLectures: len(completed),
	}
	if prog.TotalLectures > 0 {
		prog.ProgressPercentage = int(math.Round(float64(prog.CompletedLectures) / float64(prog.TotalLectures) * 100))
	}
	return prog, nil
}
