package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/quiz"
	"github.com/trezcool/darasa/core/user"
)

type quizApi struct {
	svc      *quiz.Service
	validate *validator.Validate
}

func registerQuizAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *quiz.Service, validate *validator.Validate) {
	api := quizApi{svc: svc, validate: validate}

	tg := g.Group("/tests", jwt)
	tg.POST("", api.create, roleMiddleware(user.RoleTeacher))
	tg.POST("/question", api.addQuestion, roleMiddleware(user.RoleTeacher))
	tg.POST("/submit", api.submit, roleMiddleware(user.RoleStudent))
	tg.GET("/:id", api.retrieve)
	tg.GET("/:id/results", api.queryResults, roleMiddleware(user.RoleStudent))
}

// Handlers

func (api *quizApi) create(ctx echo.Context) error {
	var data quiz.NewTest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	tst, err := api.svc.CreateTest(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "creating test")
	}
	return ctx.JSON(http.StatusCreated, tst)
}

func (api *quizApi) addQuestion(ctx echo.Context) error {
	var data quiz.NewQuestion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuestion")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	q, err := api.svc.AddQuestion(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == quiz.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "adding question")
	}
	return ctx.JSON(http.StatusCreated, q.ForStudent())
}

func (api *quizApi) retrieve(ctx echo.Context) error {
	tst, questions, err := api.svc.GetTest(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == quiz.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting test")
	}
	return ctx.JSON(http.StatusOK, TestResponse{Test: tst, Questions: questions})
}

func (api *quizApi) submit(ctx echo.Context) error {
	var data quiz.TestSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TestSubmission")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	res, err := api.svc.Submit(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		if errors.Cause(err) == quiz.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "submitting test")
	}

	total, err := api.svc.TotalQuestions(ctx.Request().Context(), data.TestID)
	if err != nil {
		return errors.Wrap(err, "counting questions")
	}
	var correct int
	for _, ans := range res.Answers {
		if ans.IsCorrect {
			correct++
		}
	}
	return ctx.JSON(http.StatusOK, TestSubmitResponse{
		Score:          res.Score,
		CorrectAnswers: correct,
		TotalQuestions: total,
		Answers:        res.Answers,
	})
}

func (api *quizApi) queryResults(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	results, err := api.svc.QueryResults(ctx.Request().Context(), ctx.Param("id"), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying test results")
	}
	if results == nil {
		results = []quiz.TestResult{}
	}
	return ctx.JSON(http.StatusOK, results)
}

type (
	TestResponse struct {
		quiz.Test
		Questions []quiz.StudentQuestion `json:"questions"`
	}

	TestSubmitResponse struct {
		Score          int           `json:"score"`
		CorrectAnswers int           `json:"correct_answers"`
		TotalQuestions int           `json:"total_questions"`
		Answers        []quiz.Answer `json:"answers"`
	}
)
