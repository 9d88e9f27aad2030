package course

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	TeacherID   string    `json:"teacher_id"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

type Lecture struct {
	ID       string `json:"id"`
	CourseID string `json:"course_id"`
	Title    string `json:"title"`
	VideoURL string `json:"video_url"`
	Order    int    `json:"order"`
}

type Progress struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"student_id"`
	CourseID    string    `json:"course_id"`
	LectureID   string    `json:"lecture_id"`
	Completed   bool      `json:"completed"`
	CompletedAt time.Time `json:"completed_at"` // UTC
}

// CourseProgress summarizes a student's completion of a course's lectures.
type CourseProgress struct {
	CourseID           string `json:"course_id"`
	StudentID          string `json:"student_id"`
	TotalLectures      int    `json:"total_lectures"`
	CompletedLectures  int    `json:"completed_lectures"`
	ProgressPercentage int    `json:"progress_percentage"`
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	return validate.Struct(nc)
}

// NewLecture contains information needed to create a new Lecture.
type NewLecture struct {
	CourseID string `json:"course_id" validate:"required"`
	Title    string `json:"title" validate:"required"`
	VideoURL string `json:"video_url" validate:"required,url"`
	Order    int    `json:"order" validate:"omitempty,gte=1"`
}

func (nl *NewLecture) Validate(validate *validator.Validate) error {
	nl.Title = core.CleanString(nl.Title)
	nl.VideoURL = core.CleanString(nl.VideoURL)
	if nl.Order == 0 {
		nl.Order = 1
	}
	return validate.Struct(nl)
}

// LectureCompletion marks a lecture as completed by a student.
type LectureCompletion struct {
	CourseID  string `json:"course_id" validate:"required"`
	LectureID string `json:"lecture_id" validate:"required"`
}

func (lc LectureCompletion) Validate(validate *validator.Validate) error {
	return validate.Struct(lc)
}
