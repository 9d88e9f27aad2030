package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/user"
)

type assignmentApi struct {
	svc      *assignment.Service
	validate *validator.Validate
}

func registerAssignmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *assignment.Service, validate *validator.Validate) {
	api := assignmentApi{svc: svc, validate: validate}

	ag := g.Group("/assignments", jwt)
	ag.POST("", api.create, roleMiddleware(user.RoleTeacher))
	ag.GET("/course/:courseId", api.queryByCourse)
	ag.POST("/submit", api.submit, roleMiddleware(user.RoleStudent))
	ag.POST("/evaluate", api.evaluate, roleMiddleware(user.RoleTeacher))
	ag.GET("/:id/submissions", api.querySubmissions, roleMiddleware(user.RoleTeacher))
	ag.GET("/:id/my-submission", api.mySubmission, roleMiddleware(user.RoleStudent))
}

// Handlers

func (api *assignmentApi) create(ctx echo.Context) error {
	var data assignment.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	asg, err := api.svc.Create(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	return ctx.JSON(http.StatusCreated, asg)
}

func (api *assignmentApi) queryByCourse(ctx echo.Context) error {
	asgs, err := api.svc.QueryByCourse(ctx.Request().Context(), ctx.Param("courseId"))
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	if asgs == nil {
		asgs = []assignment.Assignment{}
	}
	return ctx.JSON(http.StatusOK, asgs)
}

func (api *assignmentApi) submit(ctx echo.Context) error {
	var data assignment.NewSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	sub, err := api.svc.Submit(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		if errors.Cause(err) == assignment.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *assignmentApi) evaluate(ctx echo.Context) error {
	var data assignment.Evaluation
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Evaluation")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sub, err := api.svc.Evaluate(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == assignment.ErrSubmissionNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *assignmentApi) querySubmissions(ctx echo.Context) error {
	if _, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == assignment.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding assignment by ID")
	}

	subs, err := api.svc.QuerySubmissions(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying submissions")
	}
	if subs == nil {
		subs = []assignment.Submission{}
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *assignmentApi) mySubmission(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	sub, err := api.svc.GetOwnSubmission(ctx.Request().Context(), ctx.Param("id"), claims.Subject)
	if err != nil {
		if errors.Cause(err) == assignment.ErrSubmissionNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting submission")
	}
	return ctx.JSON(http.StatusOK, sub)
}
