package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core/course"
)

type courseRepository struct {
	db *courseTable
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) *courseRepository {
	return &courseRepository{db: db.course}
}

func (repo *courseRepository) CreateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	crs.ID = uuid.New().String()
	repo.db.courses[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) QueryAllCourses(_ context.Context) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := make([]course.Course, 0, len(repo.db.courses))
	for _, crs := range repo.db.courses {
		courses = append(courses, *crs)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].CreatedAt.Before(courses[j].CreatedAt) })
	return courses, nil
}

func (repo *courseRepository) GetCourseByID(_ context.Context, id string) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if crs, ok := repo.db.courses[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) CreateLecture(_ context.Context, lect course.Lecture) (course.Lecture, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	lect.ID = uuid.New().String()
	repo.db.lectures[lect.ID] = &lect
	return lect, nil
}

func (repo *courseRepository) QueryLecturesByCourse(_ context.Context, courseID string) ([]course.Lecture, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	lectures := make([]course.Lecture, 0)
	for _, lect := range repo.db.lectures {
		if lect.CourseID == courseID {
			lectures = append(lectures, *lect)
		}
	}
	sort.Slice(lectures, func(i, j int) bool { return lectures[i].Order < lectures[j].Order })
	return lectures, nil
}

func (repo *courseRepository) CreateProgress(_ context.Context, prog course.Progress) (course.Progress, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// completing the same lecture twice keeps a single record
	for _, existing := range repo.db.progress {
		if existing.StudentID == prog.StudentID && existing.LectureID == prog.LectureID {
			return *existing, nil
		}
	}
	prog.ID = uuid.New().String()
	repo.db.progress[prog.ID] = &prog
	return prog, nil
}

func (repo *courseRepository) QueryCompletedLectures(_ context.Context, courseID, studentID string) ([]course.Progress, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	records := make([]course.Progress, 0)
	for _, prog := range repo.db.progress {
		if prog.CourseID == courseID && prog.StudentID == studentID && prog.Completed {
			records = append(records, *prog)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].CompletedAt.Before(records[j].CompletedAt) })
	return records, nil
}
