package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bouncearound/daycare/core"
	"github.com/bouncearound/daycare/core/activity"
	"github.com/bouncearound/daycare/core/user"
)

type activityApi struct {
	opts *Options
}

func registerActivityAPI(g *echo.Group, auth echo.MiddlewareFunc, opts *Options) {
	api := activityApi{opts: opts}
	staff := roleMiddleware(user.RoleAdmin, user.RoleStaff)

	ag := g.Group("/activities", auth)
	ag.GET("", api.list)
	ag.POST("", api.create, staff)
	ag.GET("/:id", api.retrieve)
	ag.PUT("/:id", api.update, staff)
	ag.DELETE("/:id", api.destroy, staff)
}

func (api *activityApi) create(ctx echo.Context) error {
	var data activity.NewActivity
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewActivity")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	a, err := api.opts.ActivitySvc.Create(ctx.Request().Context(), data, claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *activityApi) list(ctx echo.Context) error {
	filter := new(activity.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()
	page, err := bindPagination(ctx)
	if err != nil {
		return err
	}

	activities, total, err := api.opts.ActivitySvc.Filter(ctx.Request().Context(), *filter, page)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, core.NewPage(activities, total, page))
}

func (api *activityApi) retrieve(ctx echo.Context) error {
	a, err := api.opts.ActivitySvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *activityApi) update(ctx echo.Context) error {
	var data activity.UpdateActivity
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateActivity")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	a, err := api.opts.ActivitySvc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *activityApi) destroy(ctx echo.Context) error {
	if err := api.opts.ActivitySvc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
