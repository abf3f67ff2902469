package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bouncearound/daycare/core"
	"github.com/bouncearound/daycare/core/parent"
	"github.com/bouncearound/daycare/core/user"
)

type parentApi struct {
	opts *Options
}

func registerParentAPI(g *echo.Group, auth echo.MiddlewareFunc, opts *Options) {
	api := parentApi{opts: opts}
	staff := roleMiddleware(user.RoleAdmin, user.RoleStaff)

	pg := g.Group("/parents", auth)
	pg.GET("", api.list)
	pg.POST("", api.create, staff)
	pg.GET("/:id", api.retrieve)
	pg.PUT("/:id", api.update, staff)
	pg.DELETE("/:id", api.destroy, adminMiddleware())
	pg.GET("/:id/children", api.listLinks)
	pg.POST("/:id/children", api.linkChild, staff)
	pg.DELETE("/:id/children/:linkID", api.unlinkChild, staff)
}

func (api *parentApi) create(ctx echo.Context) error {
	var data parent.NewParent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewParent")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	p, err := api.opts.ParentSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating parent")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *parentApi) list(ctx echo.Context) error {
	filter := new(parent.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()
	page, err := bindPagination(ctx)
	if err != nil {
		return err
	}

	parents, total, err := api.opts.ParentSvc.Filter(ctx.Request().Context(), *filter, page)
	if err != nil {
		return errors.Wrap(err, "filtering parents")
	}
	return ctx.JSON(http.StatusOK, core.NewPage(parents, total, page))
}

func (api *parentApi) retrieve(ctx echo.Context) error {
	p, err := api.opts.ParentSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *parentApi) update(ctx echo.Context) error {
	var data parent.UpdateParent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateParent")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	p, err := api.opts.ParentSvc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *parentApi) destroy(ctx echo.Context) error {
	if err := api.opts.ParentSvc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *parentApi) linkChild(ctx echo.Context) error {
	var data parent.NewChildLink
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewChildLink")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	link, err := api.opts.ParentSvc.LinkChild(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, link)
}

func (api *parentApi) listLinks(ctx echo.Context) error {
	links, err := api.opts.ParentSvc.ListChildLinks(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, links)
}

func (api *parentApi) unlinkChild(ctx echo.Context) error {
	if err := api.opts.ParentSvc.UnlinkChild(ctx.Request().Context(), ctx.Param("id"), ctx.Param("linkID")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
