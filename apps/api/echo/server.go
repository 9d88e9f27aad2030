package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/quiz"
	"github.com/trezcool/darasa/core/user"
)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator

		UserSvc       *user.Service
		CourseSvc     *course.Service
		AssignmentSvc *assignment.Service
		QuizSvc       *quiz.Service
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	initAuth(deps.Conf)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.SignalShutdown)
	s.app.HideBanner = true

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.deps.UserSvc, s.deps.Validate)
	registerCourseAPI(v1, jwt, s.deps.CourseSvc, s.deps.Validate)
	registerAssignmentAPI(v1, jwt, s.deps.AssignmentSvc, s.deps.Validate)
	registerQuizAPI(v1, jwt, s.deps.QuizSvc, s.deps.Validate)
}

func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address()); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

// Errors reports fatal server errors.
func (s *Server) Errors() <-chan error { return s.errors }

// ShutdownSignal reports OS signals requesting a graceful shutdown.
func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

// SignalShutdown requests a graceful shutdown; used when an integrity issue
// is caught and the app cannot safely continue.
func (s *Server) SignalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Darasa API!")
}
