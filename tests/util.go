package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/quiz"
	"github.com/trezcool/darasa/core/user"
)

// NewConfig returns a test configuration with deterministic knobs.
func NewConfig(t *testing.T) *core.Config {
	conf, err := core.NewConfig(t.TempDir())
	if err != nil {
		t.Fatalf("NewConfig() failed: %v", err)
	}
	conf.Env = "TEST"
	conf.TestMode = true
	conf.Debug = false
	return conf
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd, role string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Email:     email,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateCourse(t *testing.T, repo course.Repository, title, teacherID string) course.Course {
	crs, err := repo.CreateCourse(context.Background(), course.Course{
		Title:     title,
		TeacherID: teacherID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

func CreateLecture(t *testing.T, repo course.Repository, courseID, title string, order int) course.Lecture {
	lect, err := repo.CreateLecture(context.Background(), course.Lecture{
		CourseID: courseID,
		Title:    title,
		VideoURL: "https://videos.test.cd/" + title,
		Order:    order,
	})
	if err != nil {
		t.Fatalf("CreateLecture() failed: %v", err)
	}
	return lect
}

func CreateAssignment(t *testing.T, repo assignment.Repository, courseID, createdBy, title string, dueDate time.Time) assignment.Assignment {
	asg, err := repo.CreateAssignment(context.Background(), assignment.Assignment{
		Title:       title,
		Description: title + " description",
		CourseID:    courseID,
		CreatedBy:   createdBy,
		DueDate:     dueDate.UTC(),
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateAssignment() failed: %v", err)
	}
	return asg
}

func CreateTest(t *testing.T, repo quiz.Repository, courseID, createdBy, title string) quiz.Test {
	tst, err := repo.CreateTest(context.Background(), quiz.Test{
		Title:     title,
		CourseID:  courseID,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateTest() failed: %v", err)
	}
	return tst
}

func CreateQuestion(t *testing.T, repo quiz.Repository, testID, text string, options []string, correct string) quiz.Question {
	q, err := repo.CreateQuestion(context.Background(), quiz.Question{
		TestID:        testID,
		Text:          text,
		Options:       options,
		CorrectAnswer: correct,
	})
	if err != nil {
		t.Fatalf("CreateQuestion() failed: %v", err)
	}
	return q
}
