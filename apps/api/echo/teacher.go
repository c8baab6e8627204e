package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/JUSAIR-JSR/MEA-Student-portal/core"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core/account"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core/exam"
)

type teacherApi struct {
	svc *exam.Service
}

func registerTeacherAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *exam.Service) {
	api := teacherApi{svc: svc}

	tg := g.Group("/teacher", jwt, roleMiddleware(account.RoleTeacher))
	tg.GET("/results", api.results)
	tg.PUT("/update-result/:id", api.updateResult)
	tg.DELETE("/delete-result/:id", api.deleteResult)
}

// Handlers

func (api *teacherApi) results(ctx echo.Context) error {
	ident, err := getContextIdentity(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}
	results, err := api.svc.TeacherResults(ident.ID)
	if err != nil {
		return errors.Wrap(err, "querying teacher results")
	}
	return ctx.JSON(http.StatusOK, results)
}

func (api *teacherApi) updateResult(ctx echo.Context) error {
	var data UpdateResultRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateResultRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	ident, err := getContextIdentity(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}
	res, err := api.svc.UpdateResultMarks(ident.ID, ctx.Param("id"), data.Marks, data.Grade)
	if err != nil {
		return errors.Wrap(err, "updating result")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *teacherApi) deleteResult(ctx echo.Context) error {
	ident, err := getContextIdentity(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}
	if err = api.svc.DeleteResult(ident, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting result")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// UpdateResultRequest adjusts the marks (and optionally the grade) of a result.
type UpdateResultRequest struct {
	Marks float64 `json:"marks"`
	Grade string  `json:"grade"`
}

func (ur *UpdateResultRequest) Validate() error {
	ur.Grade = core.CleanString(ur.Grade)
	return core.Validate.Struct(ur)
}
