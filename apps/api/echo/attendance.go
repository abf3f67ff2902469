package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bouncearound/daycare/core"
	"github.com/bouncearound/daycare/core/attendance"
	"github.com/bouncearound/daycare/core/user"
)

type attendanceApi struct {
	opts *Options
}

func registerAttendanceAPI(g *echo.Group, auth echo.MiddlewareFunc, opts *Options) {
	api := attendanceApi{opts: opts}
	staff := roleMiddleware(user.RoleAdmin, user.RoleStaff)

	ag := g.Group("/attendance", auth)
	ag.GET("", api.list)
	ag.POST("/check-in", api.checkIn, staff)
	ag.POST("/:id/check-out", api.checkOut, staff)
	ag.GET("/today", api.today)
	ag.GET("/late-pickups", api.latePickups)
	ag.GET("/child/:childID", api.childHistory)
	ag.GET("/:id", api.retrieve)
	ag.DELETE("/:id", api.destroy, adminMiddleware())
}

func (api *attendanceApi) checkIn(ctx echo.Context) error {
	var data attendance.CheckIn
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CheckIn")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	a, err := api.opts.AttendanceSvc.CheckIn(ctx.Request().Context(), data, claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *attendanceApi) checkOut(ctx echo.Context) error {
	var data attendance.CheckOut
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CheckOut")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	a, err := api.opts.AttendanceSvc.CheckOut(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *attendanceApi) list(ctx echo.Context) error {
	filter := new(attendance.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()
	page, err := bindPagination(ctx)
	if err != nil {
		return err
	}

	records, total, err := api.opts.AttendanceSvc.Filter(ctx.Request().Context(), *filter, page)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, core.NewPage(records, total, page))
}

func (api *attendanceApi) today(ctx echo.Context) error {
	openOnly := ctx.QueryParam("open_only") == "true"
	page, err := bindPagination(ctx)
	if err != nil {
		return err
	}

	records, total, err := api.opts.AttendanceSvc.Today(ctx.Request().Context(), openOnly, page)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, core.NewPage(records, total, page))
}

func (api *attendanceApi) latePickups(ctx echo.Context) error {
	filter := new(attendance.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()
	page, err := bindPagination(ctx)
	if err != nil {
		return err
	}

	records, total, err := api.opts.AttendanceSvc.LatePickups(ctx.Request().Context(), *filter, page)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, core.NewPage(records, total, page))
}

func (api *attendanceApi) childHistory(ctx echo.Context) error {
	filter := new(attendance.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()
	page, err := bindPagination(ctx)
	if err != nil {
		return err
	}

	records, total, err := api.opts.AttendanceSvc.ChildHistory(ctx.Request().Context(), ctx.Param("childID"), *filter, page)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, core.NewPage(records, total, page))
}

func (api *attendanceApi) retrieve(ctx echo.Context) error {
	a, err := api.opts.AttendanceSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *attendanceApi) destroy(ctx echo.Context) error {
	if err := api.opts.AttendanceSvc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
