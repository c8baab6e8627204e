package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/JUSAIR-JSR/MEA-Student-portal/core/account"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core/exam"
)

type studentApi struct {
	svc     *account.Service
	examSvc *exam.Service
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *account.Service, examSvc *exam.Service) {
	api := studentApi{svc: svc, examSvc: examSvc}

	sg := g.Group("/student", jwt, roleMiddleware(account.RoleStudent))
	sg.GET("/assigned-exams", api.assignedExams)
	sg.GET("/my-results", api.myResults)
	sg.GET("/profile", api.profile)
	sg.GET("/notifications", api.notifications)
}

// Handlers

// assignedExams lists the caller's assigned AND published exams.
func (api *studentApi) assignedExams(ctx echo.Context) error {
	ident, err := getContextIdentity(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}
	exams, err := api.examSvc.QueryForIdentity(ident)
	if err != nil {
		return errors.Wrap(err, "querying assigned exams")
	}
	if exams == nil {
		exams = []exam.Exam{}
	}
	return ctx.JSON(http.StatusOK, exams)
}

func (api *studentApi) myResults(ctx echo.Context) error {
	ident, err := getContextIdentity(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}
	results, err := api.examSvc.MyResults(ident.ID)
	if err != nil {
		return errors.Wrap(err, "querying student results")
	}
	return ctx.JSON(http.StatusOK, results)
}

func (api *studentApi) profile(ctx echo.Context) error {
	ident, err := getContextIdentity(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}
	profile, err := api.svc.Me(ident)
	if err != nil {
		return errors.Wrap(err, "loading profile")
	}
	return ctx.JSON(http.StatusOK, profile)
}

// notifications feeds the student dashboard with their upcoming published exams.
func (api *studentApi) notifications(ctx echo.Context) error {
	ident, err := getContextIdentity(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context identity")
	}
	exams, err := api.examSvc.UpcomingExams(ident.ID, time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "querying upcoming exams")
	}
	return ctx.JSON(http.StatusOK, exams)
}
