package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/JUSAIR-JSR/MEA-Student-portal/core/stats"
)

type statsApi struct {
	svc *stats.Service
}

// registerStatsAPI mounts the dashboard aggregations on the admin group.
func registerStatsAPI(ag *echo.Group, svc *stats.Service) {
	api := statsApi{svc: svc}

	sg := ag.Group("/stats")
	sg.GET("/overview", api.overview)
	sg.GET("/passfail", api.passFail)
	sg.GET("/subject-average", api.subjectAverages)
	sg.GET("/department-performance", api.departmentPerformance)
	sg.GET("/top-performers", api.topPerformers)
	sg.GET("/monthly-trends", api.monthlyTrends)
	sg.GET("/recent-activity", api.recentActivity)
}

// Handlers

func (api *statsApi) overview(ctx echo.Context) error {
	ov, err := api.svc.Overview()
	if err != nil {
		return errors.Wrap(err, "computing overview")
	}
	return ctx.JSON(http.StatusOK, ov)
}

func (api *statsApi) passFail(ctx echo.Context) error {
	pf, err := api.svc.PassFail()
	if err != nil {
		return errors.Wrap(err, "computing pass/fail stats")
	}
	return ctx.JSON(http.StatusOK, pf)
}

func (api *statsApi) subjectAverages(ctx echo.Context) error {
	avgs, err := api.svc.SubjectAverages()
	if err != nil {
		return errors.Wrap(err, "computing subject averages")
	}
	if avgs == nil {
		avgs = []stats.SubjectAverage{}
	}
	return ctx.JSON(http.StatusOK, avgs)
}

func (api *statsApi) departmentPerformance(ctx echo.Context) error {
	perfs, err := api.svc.DepartmentPerformance()
	if err != nil {
		return errors.Wrap(err, "computing department performance")
	}
	if perfs == nil {
		perfs = []stats.DepartmentPerformance{}
	}
	return ctx.JSON(http.StatusOK, perfs)
}

func (api *statsApi) topPerformers(ctx echo.Context) error {
	performers, err := api.svc.TopPerformers()
	if err != nil {
		return errors.Wrap(err, "computing top performers")
	}
	if performers == nil {
		performers = []stats.TopPerformer{}
	}
	return ctx.JSON(http.StatusOK, performers)
}

func (api *statsApi) monthlyTrends(ctx echo.Context) error {
	trends, err := api.svc.MonthlyTrends()
	if err != nil {
		return errors.Wrap(err, "computing monthly trends")
	}
	return ctx.JSON(http.StatusOK, trends)
}

func (api *statsApi) recentActivity(ctx echo.Context) error {
	feed, err := api.svc.RecentActivity()
	if err != nil {
		return errors.Wrap(err, "computing recent activity")
	}
	return ctx.JSON(http.StatusOK, feed)
}
