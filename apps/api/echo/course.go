package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/user"
)

type courseApi struct {
	svc      *course.Service
	validate *validator.Validate
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *course.Service, validate *validator.Validate) {
	api := courseApi{svc: svc, validate: validate}

	cg := g.Group("/courses", jwt)
	cg.POST("", api.create, roleMiddleware(user.RoleTeacher))
	cg.GET("", api.query)

	lg := g.Group("/lectures", jwt)
	lg.POST("", api.addLecture, roleMiddleware(user.RoleTeacher))
	lg.GET("/course/:courseId", api.queryLectures)

	pg := g.Group("/progress", jwt, roleMiddleware(user.RoleStudent))
	pg.POST("/complete", api.completeLecture)
	pg.GET("/course/:courseId", api.courseProgress)
}

// Handlers

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	crs, err := api.svc.Create(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) query(ctx echo.Context) error {
	courses, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) addLecture(ctx echo.Context) error {
	var data course.NewLecture
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLecture")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	lect, err := api.svc.AddLecture(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "adding lecture")
	}
	return ctx.JSON(http.StatusCreated, lect)
}

func (api *courseApi) queryLectures(ctx echo.Context) error {
	lectures, err := api.svc.QueryLectures(ctx.Request().Context(), ctx.Param("courseId"))
	if err != nil {
		return errors.Wrap(err, "querying lectures")
	}
	if lectures == nil {
		lectures = []course.Lecture{}
	}
	return ctx.JSON(http.StatusOK, lectures)
}

func (api *courseApi) completeLecture(ctx echo.Context) error {
	var data course.LectureCompletion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LectureCompletion")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	prog, err := api.svc.CompleteLecture(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "completing lecture")
	}
	return ctx.JSON(http.StatusCreated, prog)
}

func (api *courseApi) courseProgress(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	prog, err := api.svc.GetCourseProgress(ctx.Request().Context(), ctx.Param("courseId"), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "getting course progress")
	}
	return ctx.JSON(http.StatusOK, prog)
}
