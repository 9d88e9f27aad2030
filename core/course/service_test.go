package course_test

import (
	"context"
	"testing"

	"github.com/trezcool/darasa/core/course"
	inmemdb "github.com/trezcool/darasa/storage/database/inmem"
	testutil "github.com/trezcool/darasa/tests"
)

func setup(t *testing.T) (*course.Service, course.Repository) {
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	repo := inmemdb.NewCourseRepository(db)
	return course.NewService(repo), repo
}

func TestService_CompleteLecture_idempotent(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	studentID := "student-1"

	crs := testutil.CreateCourse(t, repo, "Algebra", "teacher-1")
	lect := testutil.CreateLecture(t, repo, crs.ID, "Intro", 1)

	completion := course.LectureCompletion{CourseID: crs.ID, LectureID: lect.ID}
	first, err := svc.CompleteLecture(ctx, studentID, completion)
	if err != nil {
		t.Fatalf("CompleteLecture() failed: %v", err)
	}
	second, err := svc.CompleteLecture(ctx, studentID, completion)
	if err != nil {
		t.Fatalf("CompleteLecture() failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("repeat completion created a new record: %v != %v", second.ID, first.ID)
	}

	completed, err := repo.QueryCompletedLectures(ctx, crs.ID, studentID)
	if err != nil {
		t.Fatalf("QueryCompletedLectures() failed: %v", err)
	}
	if len(completed) != 1 {
		t.Errorf("got %d progress records; want 1", len(completed))
	}
}

func TestService_GetCourseProgress(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	studentID := "student-1"

	crs := testutil.CreateCourse(t, repo, "Algebra", "teacher-1")
	lect1 := testutil.CreateLecture(t, repo, crs.ID, "Intro", 1)
	testutil.CreateLecture(t, repo, crs.ID, "Variables", 2)
	lect3 := testutil.CreateLecture(t, repo, crs.ID, "Equations", 3)

	empty := testutil.CreateCourse(t, repo, "Biology", "teacher-1")

	check := func(t *testing.T, courseID string, wantCompleted, wantPct int) {
		t.Helper()
		prog, err := svc.GetCourseProgress(ctx, courseID, studentID)
		if err != nil {
			t.Fatalf("GetCourseProgress() failed: %v", err)
		}
		if prog.CompletedLectures != wantCompleted {
			t.Errorf("completedLectures = %v; want %v", prog.CompletedLectures, wantCompleted)
		}
		if prog.ProgressPercentage != wantPct {
			t.Errorf("progressPercentage = %v; want %v", prog.ProgressPercentage, wantPct)
		}
	}

	check(t, empty.ID, 0, 0)
	check(t, crs.ID, 0, 0)

	if _, err := svc.CompleteLecture(ctx, studentID, course.LectureCompletion{CourseID: crs.ID, LectureID: lect1.ID}); err != nil {
		t.Fatalf("CompleteLecture() failed: %v", err)
	}
	check(t, crs.ID, 1, 33)

	if _, err := svc.CompleteLecture(ctx, studentID, course.LectureCompletion{CourseID: crs.ID, LectureID: lect3.ID}); err != nil {
		t.Fatalf("CompleteLecture() failed: %v", err)
	}
	check(t, crs.ID, 2, 67)
}

func TestService_QueryLectures_sortedByOrder(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	crs := testutil.CreateCourse(t, repo, "Algebra", "teacher-1")

	// created out of order on purpose
	testutil.CreateLecture(t, repo, crs.ID, "Equations", 3)
	testutil.CreateLecture(t, repo, crs.ID, "Intro", 1)
	testutil.CreateLecture(t, repo, crs.ID, "Variables", 2)

	lectures, err := svc.QueryLectures(ctx, crs.ID)
	if err != nil {
		t.Fatalf("QueryLectures() failed: %v", err)
	}
	if len(lectures) != 3 {
		t.Fatalf("got %d lectures; want 3", len(lectures))
	}
	for i, want := range []int{1, 2, 3} {
		if lectures[i].Order != want {
			t.Errorf("lectures[%d].Order = %v; want %v", i, lectures[i].Order, want)
		}
	}
}
