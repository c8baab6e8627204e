package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/JUSAIR-JSR/MEA-Student-portal/core/account"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core/exam"
)

type examApi struct {
	svc *exam.Service
}

func registerExamAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *exam.Service) {
	api := examApi{svc: svc}

	admin := roleMiddleware(account.RoleAdmin)
	teacher := roleMiddleware(account.RoleTeacher)

	eg := g.Group("/exam", jwt)
	eg.POST("/create", api.create, admin)
	eg.GET("", api.query)
	eg.PUT("/assign/:id", api.assign, admin)
	eg.PUT("/remove-assignment", api.removeAssignment, admin)
	eg.PUT("/publish/:id", api.togglePublish, admin)
	eg.PUT("/update/:id", api.update, admin)
	eg.DELETE("/delete/:id", api.destroy, admin)
	eg.GET("/assigned", api.assignedExams, teacher)
	eg.GET("/:id/students", api.examStudents, teacher)

	rg := g.Group("/result", jwt)
	rg.POST("/:examId", api.saveResult, teacher)
	rg.DELETE("/:id", api.deleteResult, roleMiddleware(account.RoleTeacher, account.RoleAdmin))
}

// Handlers

func (api *examApi) create(ctx echo.Context) error {
	var data exam.NewExam
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewExam")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	ident, err := getContextIdentity(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}
	exm, err := api.svc.Create(ident.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating exam")
	}
	return ctx.JSON(http.StatusCreated, exm)
}

// query lists the exams visible to the caller's role.
func (api *examApi) query(ctx echo.Context) error {
	ident, err := getContextIdentity(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}
	exams, err := api.svc.QueryForIdentity(ident)
	if err != nil {
		return errors.Wrap(err, "querying exams")
	}
	if exams == nil {
		exams = []exam.Exam{}
	}
	return ctx.JSON(http.StatusOK, exams)
}

func (api *examApi) assign(ctx echo.Context) error {
	var data exam.AssignExam
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignExam")
	}
	exm, err := api.svc.Assign(ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "assigning exam")
	}
	return ctx.JSON(http.StatusOK, exm)
}

func (api *examApi) removeAssignment(ctx echo.Context) error {
	var data exam.RemoveAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RemoveAssignment")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	exm, err := api.svc.RemoveAssignment(data)
	if err != nil {
		return errors.Wrap(err, "removing assignment")
	}
	return ctx.JSON(http.StatusOK, exm)
}

func (api *examApi) togglePublish(ctx echo.Context) error {
	exm, err := api.svc.TogglePublish(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "toggling exam publication")
	}
	return ctx.JSON(http.StatusOK, exm)
}

func (api *examApi) update(ctx echo.Context) error {
	var data exam.UpdateExam
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateExam")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	exm, err := api.svc.Update(ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating exam")
	}
	return ctx.JSON(http.StatusOK, exm)
}

func (api *examApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting exam")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *examApi) assignedExams(ctx echo.Context) error {
	ident, err := getContextIdentity(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}
	exams, err := api.svc.AssignedExams(ident.ID)
	if err != nil {
		return errors.Wrap(err, "querying assigned exams")
	}
	if exams == nil {
		exams = []exam.Exam{}
	}
	return ctx.JSON(http.StatusOK, exams)
}

// examStudents returns the exam roster merged with any existing results.
func (api *examApi) examStudents(ctx echo.Context) error {
	ident, err := getContextIdentity(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}
	roster, err := api.svc.Roster(ctx.Param("id"), ident.ID)
	if err != nil {
		return errors.Wrap(err, "loading exam roster")
	}
	return ctx.JSON(http.StatusOK, roster)
}

func (api *examApi) saveResult(ctx echo.Context) error {
	var data exam.SaveResult
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SaveResult")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	ident, err := getContextIdentity(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}
	res, err := api.svc.SaveResult(ident.ID, ctx.Param("examId"), data)
	if err != nil {
		return errors.Wrap(err, "saving result")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *examApi) deleteResult(ctx echo.Context) error {
	ident, err := getContextIdentity(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}
	if err = api.svc.DeleteResult(ident, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting result")
	}
	return ctx.NoContent(http.StatusNoContent)
}
