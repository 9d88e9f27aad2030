package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
)

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sql.DB) *courseRepository {
	return &courseRepository{db: sqlx.NewDb(db, "postgres")}
}

type courseRow struct {
	ID          string         `db:"id"`
	Title       string         `db:"title"`
	Description string         `db:"description"`
	TeacherID   sql.NullString `db:"teacher_id"`
	CreatedAt   time.Time      `db:"created_at"`
}

type lectureRow struct {
	ID       string `db:"id"`
	CourseID string `db:"course_id"`
	Title    string `db:"title"`
	VideoURL string `db:"video_url"`
	Order    int    `db:"order"`
}

type progressRow struct {
	ID          string    `db:"id"`
	StudentID   string    `db:"student_id"`
	CourseID    string    `db:"course_id"`
	LectureID   string    `db:"lecture_id"`
	Completed   bool      `db:"completed"`
	CompletedAt time.Time `db:"completed_at"`
}

func (repo courseRepository) unrowCourse(row courseRow) course.Course {
	return course.Course{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		TeacherID:   row.TeacherID.String,
		CreatedAt:   row.CreatedAt,
	}
}

func (repo courseRepository) unrowLecture(row lectureRow) course.Lecture {
	return course.Lecture(row)
}

func (repo courseRepository) unrowProgress(row progressRow) course.Progress {
	return course.Progress(row)
}

func (repo courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	crs.ID = uuid.New().String()
	query := `
INSERT INTO course (id, title, description, teacher_id, created_at)
VALUES (:id, :title, :description, :teacher_id, :created_at)`
	row := courseRow{
		ID:          crs.ID,
		Title:       crs.Title,
		Description: crs.Description,
		TeacherID:   sql.NullString{String: crs.TeacherID, Valid: crs.TeacherID != ""},
		CreatedAt:   crs.CreatedAt.UTC(),
	}
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return crs, nil
}

func (repo courseRepository) QueryAllCourses(ctx context.Context) ([]course.Course, error) {
	ord := core.DBOrdering{Field: "created_at", Ascending: true}
	var rows []courseRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM course ORDER BY `+ord.String()); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, repo.unrowCourse(row))
	}
	return courses, nil
}

func (repo courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	if _, err := uuid.Parse(id); err != nil {
		return course.Course{}, course.ErrNotFound
	}
	var row courseRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM course WHERE id = $1`, id); err != nil {
		return course.Course{}, trapNoRowsErr(err, course.ErrNotFound, "getting course by ID")
	}
	return repo.unrowCourse(row), nil
}

func (repo courseRepository) CreateLecture(ctx context.Context, lect course.Lecture) (course.Lecture, error) {
	lect.ID = uuid.New().String()
	query := `
INSERT INTO lecture (id, course_id, title, video_url, "order")
VALUES (:id, :course_id, :title, :video_url, :order)`
	if _, err := repo.db.NamedExecContext(ctx, query, lectureRow(lect)); err != nil {
		return course.Lecture{}, errors.Wrap(err, "inserting lecture")
	}
	return lect, nil
}

func (repo courseRepository) QueryLecturesByCourse(ctx context.Context, courseID string) ([]course.Lecture, error) {
	ord := core.DBOrdering{Field: `"order"`, Ascending: true}
	var rows []lectureRow
	query := `SELECT * FROM lecture WHERE course_id = $1 ORDER BY ` + ord.String()
	if err := repo.db.SelectContext(ctx, &rows, query, courseID); err != nil {
		return nil, errors.Wrap(err, "querying lectures")
	}
	lectures := make([]course.Lecture, 0, len(rows))
	for _, row := range rows {
		lectures = append(lectures, repo.unrowLecture(row))
	}
	return lectures, nil
}

func (repo courseRepository) CreateProgress(ctx context.Context, prog course.Progress) (course.Progress, error) {
	prog.ID = uuid.New().String()
	query := `
INSERT INTO progress (id, student_id, course_id, lecture_id, completed, completed_at)
VALUES (:id, :student_id, :course_id, :lecture_id, :completed, :completed_at)
ON CONFLICT ON CONSTRAINT progress_student_lecture_key DO NOTHING`
	row := progressRow(prog)
	row.CompletedAt = row.CompletedAt.UTC()
	res, err := repo.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return course.Progress{}, errors.Wrap(err, "inserting progress")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// completing the same lecture twice keeps a single record
		var existing progressRow
		query = `SELECT * FROM progress WHERE student_id = $1 AND lecture_id = $2`
		if err := repo.db.GetContext(ctx, &existing, query, prog.StudentID, prog.LectureID); err != nil {
			return course.Progress{}, errors.Wrap(err, "getting progress")
		}
		return course.Progress(existing), nil
	}
	return prog, nil
}

func (repo courseRepository) QueryCompletedLectures(ctx context.Context, courseID, studentID string) ([]course.Progress, error) {
	var rows []progressRow
	query := `SELECT * FROM progress WHERE course_id = $1 AND student_id = $2 AND completed`
	if err := repo.db.SelectContext(ctx, &rows, query, courseID, studentID); err != nil {
		return nil, errors.Wrap(err, "querying progress")
	}
	progs := make([]course.Progress, 0, len(rows))
	for _, row := range rows {
		progs = append(progs, repo.unrowProgress(row))
	}
	return progs, nil
}
