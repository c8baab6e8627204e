package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/JUSAIR-JSR/MEA-Student-portal/core/account"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core/notification"
)

type notificationApi struct {
	svc *notification.Service
}

func registerNotificationAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *notification.Service) {
	api := notificationApi{svc: svc}

	ng := g.Group("/notifications", jwt)

	// the published feed is readable by any authenticated user
	ng.GET("/published/all", api.published)

	admin := roleMiddleware(account.RoleAdmin)
	ng.POST("", api.create, admin)
	ng.GET("", api.query, admin)
	ng.PUT("/:id", api.update, admin)
	ng.DELETE("/:id", api.destroy, admin)
	ng.PUT("/toggle/:id", api.toggle, admin)
}

// Handlers

func (api *notificationApi) create(ctx echo.Context) error {
	var data notification.NewNotification
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewNotification")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	ntf, err := api.svc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating notification")
	}
	return ctx.JSON(http.StatusCreated, ntf)
}

func (api *notificationApi) query(ctx echo.Context) error {
	ntfs, err := api.svc.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying notifications")
	}
	return ctx.JSON(http.StatusOK, ntfs)
}

func (api *notificationApi) published(ctx echo.Context) error {
	ntfs, err := api.svc.Published()
	if err != nil {
		return errors.Wrap(err, "querying published notifications")
	}
	return ctx.JSON(http.StatusOK, ntfs)
}

func (api *notificationApi) update(ctx echo.Context) error {
	var data notification.UpdateNotification
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateNotification")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	ntf, err := api.svc.Update(ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating notification")
	}
	return ctx.JSON(http.StatusOK, ntf)
}

func (api *notificationApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting notification")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *notificationApi) toggle(ctx echo.Context) error {
	ntf, err := api.svc.Toggle(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "toggling notification publication")
	}
	return ctx.JSON(http.StatusOK, ntf)
}
