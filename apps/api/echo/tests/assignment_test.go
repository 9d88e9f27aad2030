package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/user"
	emailsvc "github.com/trezcool/darasa/services/email"
	testutil "github.com/trezcool/darasa/tests"
)

func Test_assignmentApi_create(t *testing.T) {
	db.Reset()

	student := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", user.RoleStudent, true)
	teacher := testutil.CreateUser(t, usrRepo, "Prof", "prof@test.cd", "", user.RoleTeacher, true)
	crs := testutil.CreateCourse(t, crsRepo, "Algebra", teacher.ID)

	dueDate := time.Now().AddDate(0, 0, 7).UTC()
	reqMsg := "this field is required"
	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "teacher required", token: getToken(t, student), wantCode: http.StatusForbidden,
			body:     marchallObj(t, assignment.NewAssignment{Title: "Homework 1", Description: "Solve", CourseID: crs.ID, DueDate: dueDate}),
			wantData: marchallObj(t, httpErr{Error: "permission denied: teacher role required"}),
		},
		{
			name: "required fields", token: getToken(t, teacher), wantCode: http.StatusBadRequest, body: []byte("{}"),
			wantData: marchallObj(t, map[string]string{
				"title":       reqMsg,
				"description": reqMsg,
				"course_id":   reqMsg,
				"due_date":    reqMsg,
			}),
		},
		{
			name: "assignment created", token: getToken(t, teacher), wantCode: http.StatusCreated,
			body: marchallObj(t, assignment.NewAssignment{Title: "Homework 1", Description: "Solve all equations", CourseID: crs.ID, DueDate: dueDate}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/assignments"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var asg assignment.Assignment
				if err := json.Unmarshal(rec.Body.Bytes(), &asg); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if asg.ID == "" {
					t.Error("failed! empty assignment ID")
				}
				if asg.CreatedBy != teacher.ID {
					t.Errorf("failed! createdBy = %v; want %v", asg.CreatedBy, teacher.ID)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_assignmentApi_queryByCourse(t *testing.T) {
	db.Reset()

	student := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", user.RoleStudent, true)
	teacher := testutil.CreateUser(t, usrRepo, "Prof", "prof@test.cd", "", user.RoleTeacher, true)
	crs := testutil.CreateCourse(t, crsRepo, "Algebra", teacher.ID)
	other := testutil.CreateCourse(t, crsRepo, "Biology", teacher.ID)

	now := time.Now()
	// created out of due date order on purpose
	later := testutil.CreateAssignment(t, asgRepo, crs.ID, teacher.ID, "Homework 2", now.AddDate(0, 0, 14))
	sooner := testutil.CreateAssignment(t, asgRepo, crs.ID, teacher.ID, "Homework 1", now.AddDate(0, 0, 7))

	tests := []httpTest{
		{
			name: "auth required", path: "/v1/assignments/course/" + crs.ID,
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "sorted by due date", path: "/v1/assignments/course/" + crs.ID, token: getToken(t, student),
			wantCode: http.StatusOK, wantData: marchallList(t, sooner, later),
		},
		{
			name: "empty course", path: "/v1/assignments/course/" + other.ID, token: getToken(t, teacher),
			wantCode: http.StatusOK, wantData: marchallList(t, []interface{}{}...),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_assignmentApi_submit(t *testing.T) {
	db.Reset()

	student := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", user.RoleStudent, true)
	teacher := testutil.CreateUser(t, usrRepo, "Prof", "prof@test.cd", "", user.RoleTeacher, true)
	crs := testutil.CreateCourse(t, crsRepo, "Algebra", teacher.ID)
	asg := testutil.CreateAssignment(t, asgRepo, crs.ID, teacher.ID, "Homework 1", time.Now().AddDate(0, 0, 7))

	studentToken := getToken(t, student)
	submission := marchallObj(t, assignment.NewSubmission{AssignmentID: asg.ID, AnswerText: "x = 42"})

	reqMsg := "this field is required"
	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "student required", token: getToken(t, teacher), wantCode: http.StatusForbidden,
			body:     submission,
			wantData: marchallObj(t, httpErr{Error: "permission denied: student role required"}),
		},
		{
			name: "required fields", token: studentToken, wantCode: http.StatusBadRequest, body: []byte("{}"),
			wantData: marchallObj(t, map[string]string{"assignment_id": reqMsg, "answer_text": reqMsg}),
		},
		{
			name: "blank answer", token: studentToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, assignment.NewSubmission{AssignmentID: asg.ID, AnswerText: "   "}),
			wantData: marchallObj(t, map[string]string{"answer_text": reqMsg}),
		},
		{
			name: "unknown assignment", token: studentToken, wantCode: http.StatusNotFound,
			body:     marchallObj(t, assignment.NewSubmission{AssignmentID: "7c9cd3a1-2f3e-4b88-ae29-2c1ac1a7b99d", AnswerText: "x = 42"}),
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{name: "answer submitted", token: studentToken, wantCode: http.StatusCreated, body: submission},
		{
			name: "second submission rejected", token: studentToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, assignment.NewSubmission{AssignmentID: asg.ID, AnswerText: "x = 43"}),
			wantData: marchallObj(t, map[string]string{"assignment_id": "this assignment has already been submitted"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/assignments/submit"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var sub assignment.Submission
				if err := json.Unmarshal(rec.Body.Bytes(), &sub); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if sub.ID == "" {
					t.Error("failed! empty submission ID")
				}
				if sub.Status != assignment.StatusSubmitted {
					t.Errorf("failed! status = %v; want %v", sub.Status, assignment.StatusSubmitted)
				}
				if sub.Marks != nil {
					t.Errorf("failed! marks = %v; want nil", *sub.Marks)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_assignmentApi_evaluate(t *testing.T) {
	db.Reset()

	student := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", user.RoleStudent, true)
	teacher := testutil.CreateUser(t, usrRepo, "Prof", "prof@test.cd", "", user.RoleTeacher, true)
	crs := testutil.CreateCourse(t, crsRepo, "Algebra", teacher.ID)
	asg := testutil.CreateAssignment(t, asgRepo, crs.ID, teacher.ID, "Homework 1", time.Now().AddDate(0, 0, 7))

	sub, err := asgSvc.Submit(context.Background(), student.ID, assignment.NewSubmission{AssignmentID: asg.ID, AnswerText: "x = 42"})
	if err != nil {
		t.Fatalf("Submit(): %v", err)
	}

	fPtr := func(f float64) *float64 { return &f }
	teacherToken := getToken(t, teacher)
	reqMsg := "this field is required"

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "teacher required", token: getToken(t, student), wantCode: http.StatusForbidden,
			body:     marchallObj(t, assignment.Evaluation{SubmissionID: sub.ID, Marks: fPtr(85)}),
			wantData: marchallObj(t, httpErr{Error: "permission denied: teacher role required"}),
		},
		{
			name: "required fields", token: teacherToken, wantCode: http.StatusBadRequest, body: []byte("{}"),
			wantData: marchallObj(t, map[string]string{"submission_id": reqMsg, "marks": reqMsg}),
		},
		{
			name: "negative marks", token: teacherToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, assignment.Evaluation{SubmissionID: sub.ID, Marks: fPtr(-5)}),
			wantData: marchallObj(t, map[string]string{"marks": "marks must be 0 or greater"}),
		},
		{
			name: "unknown submission", token: teacherToken, wantCode: http.StatusNotFound,
			body:     marchallObj(t, assignment.Evaluation{SubmissionID: "7c9cd3a1-2f3e-4b88-ae29-2c1ac1a7b99d", Marks: fPtr(85)}),
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{name: "submission evaluated", token: teacherToken, wantCode: http.StatusOK, body: marchallObj(t, assignment.Evaluation{SubmissionID: sub.ID, Marks: fPtr(85)}), extra: 85.0},
		{name: "re-evaluation overwrites marks", token: teacherToken, wantCode: http.StatusOK, body: marchallObj(t, assignment.Evaluation{SubmissionID: sub.ID, Marks: fPtr(90)}), extra: 90.0},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/assignments/evaluate"

		t.Run(tt.name, func(t *testing.T) {
			emailsvc.SentMessages = nil // reset

			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var evaluated assignment.Submission
				if err := json.Unmarshal(rec.Body.Bytes(), &evaluated); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if evaluated.Status != assignment.StatusChecked {
					t.Errorf("failed! status = %v; want %v", evaluated.Status, assignment.StatusChecked)
				}
				if wantMarks := tt.extra.(float64); evaluated.Marks == nil || *evaluated.Marks != wantMarks {
					t.Errorf("failed! marks = %v; want %v", evaluated.Marks, wantMarks)
				}
				if evaluated.EvaluatedAt == nil {
					t.Error("failed! evaluatedAt not set")
				}
				if len(emailsvc.SentMessages) != 1 {
					t.Errorf("failed! len(SentMessages) = %d; want 1", len(emailsvc.SentMessages))
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_assignmentApi_querySubmissions(t *testing.T) {
	db.Reset()

	student1 := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", user.RoleStudent, true)
	student2 := testutil.CreateUser(t, usrRepo, "King", "king@test.cd", "", user.RoleStudent, true)
	teacher := testutil.CreateUser(t, usrRepo, "Prof", "prof@test.cd", "", user.RoleTeacher, true)
	crs := testutil.CreateCourse(t, crsRepo, "Algebra", teacher.ID)
	asg := testutil.CreateAssignment(t, asgRepo, crs.ID, teacher.ID, "Homework 1", time.Now().AddDate(0, 0, 7))
	empty := testutil.CreateAssignment(t, asgRepo, crs.ID, teacher.ID, "Homework 2", time.Now().AddDate(0, 0, 14))

	sub1, err := asgSvc.Submit(context.Background(), student1.ID, assignment.NewSubmission{AssignmentID: asg.ID, AnswerText: "x = 42"})
	if err != nil {
		t.Fatalf("Submit(): %v", err)
	}
	sub2, err := asgSvc.Submit(context.Background(), student2.ID, assignment.NewSubmission{AssignmentID: asg.ID, AnswerText: "x = 43"})
	if err != nil {
		t.Fatalf("Submit(): %v", err)
	}

	teacherToken := getToken(t, teacher)
	tests := []httpTest{
		{
			name: "auth required", path: "/v1/assignments/" + asg.ID + "/submissions",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "teacher required", path: "/v1/assignments/" + asg.ID + "/submissions", token: getToken(t, student1),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied: teacher role required"}),
		},
		{
			name: "unknown assignment", path: "/v1/assignments/7c9cd3a1-2f3e-4b88-ae29-2c1ac1a7b99d/submissions", token: teacherToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "latest first", path: "/v1/assignments/" + asg.ID + "/submissions", token: teacherToken,
			wantCode: http.StatusOK, wantData: marchallList(t, sub2, sub1),
		},
		{
			name: "no submissions yet", path: "/v1/assignments/" + empty.ID + "/submissions", token: teacherToken,
			wantCode: http.StatusOK, wantData: marchallList(t, []interface{}{}...),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_assignmentApi_mySubmission(t *testing.T) {
	db.Reset()

	student1 := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", user.RoleStudent, true)
	student2 := testutil.CreateUser(t, usrRepo, "King", "king@test.cd", "", user.RoleStudent, true)
	teacher := testutil.CreateUser(t, usrRepo, "Prof", "prof@test.cd", "", user.RoleTeacher, true)
	crs := testutil.CreateCourse(t, crsRepo, "Algebra", teacher.ID)
	asg := testutil.CreateAssignment(t, asgRepo, crs.ID, teacher.ID, "Homework 1", time.Now().AddDate(0, 0, 7))

	sub, err := asgSvc.Submit(context.Background(), student1.ID, assignment.NewSubmission{AssignmentID: asg.ID, AnswerText: "x = 42"})
	if err != nil {
		t.Fatalf("Submit(): %v", err)
	}

	path := "/v1/assignments/" + asg.ID + "/my-submission"
	tests := []httpTest{
		{name: "auth required", path: path, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "student required", path: path, token: getToken(t, teacher),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied: student role required"}),
		},
		{
			name: "own submission", path: path, token: getToken(t, student1),
			wantCode: http.StatusOK, wantData: marchallObj(t, sub),
		},
		{
			name: "nothing submitted yet", path: path, token: getToken(t, student2),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
