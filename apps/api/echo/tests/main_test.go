package tests

import (
	"fmt"
	"os"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/quiz"
	"github.com/trezcool/darasa/core/user"
	emailsvc "github.com/trezcool/darasa/services/email"
	inmemdb "github.com/trezcool/darasa/storage/database/inmem"
)

var (
	app  *echoapi.Server
	conf *core.Config
	db   *inmemdb.DB

	usrRepo  user.Repository
	crsRepo  course.Repository
	asgRepo  assignment.Repository
	quizRepo quiz.Repository

	usrSvc  *user.Service
	asgSvc  *assignment.Service
	quizSvc *quiz.Service

	errMissingToken = httpErr{Error: "authorization token missing"}
)

func TestMain(m *testing.M) {
	var err error

	conf, err = core.NewConfig(core.Getwd())
	if err != nil {
		fmt.Printf("core.NewConfig(): %v", err)
		os.Exit(1)
	}
	conf.Env = "TEST"
	conf.TestMode = true
	conf.Debug = false

	core.InitMail(conf)
	user.InitResetTokens(conf)

	// set up DB & repos
	db, err = inmemdb.Open()
	if err != nil {
		fmt.Printf("inmemdb.Open(): %v", err)
		os.Exit(1)
	}
	usrRepo = inmemdb.NewUserRepository(db)
	crsRepo = inmemdb.NewCourseRepository(db)
	asgRepo = inmemdb.NewAssignmentRepository(db)
	quizRepo = inmemdb.NewQuizRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc = user.NewService(usrRepo, mailSvc, conf)
	crsSvc := course.NewService(crsRepo)
	asgSvc = assignment.NewService(asgRepo, usrSvc, mailSvc, conf)
	quizSvc = quiz.NewService(quizRepo)

	// set up validation
	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	user.RegisterValidators(validate, translator)
	quiz.RegisterValidators(validate, translator)

	// set up server
	app = echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        testLogger{},
			Validate:      validate,
			Translator:    translator,
			UserSvc:       usrSvc,
			CourseSvc:     crsSvc,
			AssignmentSvc: asgSvc,
			QuizSvc:       quizSvc,
		},
	)

	os.Exit(m.Run())
}

type testLogger struct{}

func (testLogger) Enable(bool)                        {}
func (testLogger) Debug(string, ...interface{})       {}
func (testLogger) Info(string, ...interface{})        {}
func (testLogger) Warn(string, ...interface{})        {}
func (testLogger) Error(string, ...interface{})       {}
func (testLogger) Fatal(msg string, _ ...interface{}) { panic(msg) }
