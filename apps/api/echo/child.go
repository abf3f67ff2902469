package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bouncearound/daycare/core"
	"github.com/bouncearound/daycare/core/child"
	"github.com/bouncearound/daycare/core/user"
)

type childApi struct {
	opts *Options
}

func registerChildAPI(g *echo.Group, auth echo.MiddlewareFunc, opts *Options) {
	api := childApi{opts: opts}
	staff := roleMiddleware(user.RoleAdmin, user.RoleStaff)

	cg := g.Group("/children", auth)
	cg.GET("", api.list)
	cg.POST("", api.create, staff)
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update, staff)
	cg.POST("/:id/active", api.setActive, staff)
	cg.DELETE("/:id", api.destroy, adminMiddleware())
	cg.GET("/:id/emergency-contacts", api.listContacts)
	cg.GET("/:id/authorized-pickups", api.listPickups)

	ecg := g.Group("/emergency-contacts", auth)
	ecg.POST("", api.createContact, staff)
	ecg.GET("/:id", api.retrieveContact)
	ecg.PUT("/:id", api.updateContact, staff)
	ecg.DELETE("/:id", api.destroyContact, staff)

	apg := g.Group("/authorized-pickups", auth)
	apg.POST("", api.createPickup, staff)
	apg.GET("/:id", api.retrievePickup)
	apg.PUT("/:id", api.updatePickup, staff)
	apg.POST("/:id/active", api.setPickupActive, staff)
	apg.DELETE("/:id", api.destroyPickup, adminMiddleware())
}

func (api *childApi) create(ctx echo.Context) error {
	var data child.NewChild
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewChild")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	c, err := api.opts.ChildSvc.Create(ctx.Request().Context(), data, claims.Subject)
	if err != nil {
		return errors.Wrap(err, "creating child")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *childApi) list(ctx echo.Context) error {
	filter := new(child.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()
	page, err := bindPagination(ctx)
	if err != nil {
		return err
	}

	children, total, err := api.opts.ChildSvc.Filter(ctx.Request().Context(), *filter, page)
	if err != nil {
		return errors.Wrap(err, "filtering children")
	}
	return ctx.JSON(http.StatusOK, core.NewPage(children, total, page))
}

func (api *childApi) retrieve(ctx echo.Context) error {
	c, err := api.opts.ChildSvc.GetChild(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *childApi) update(ctx echo.Context) error {
	var data child.UpdateChild
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateChild")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	c, err := api.opts.ChildSvc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *childApi) setActive(ctx echo.Context) error {
	var data ActiveRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ActiveRequest")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	c, err := api.opts.ChildSvc.SetActive(ctx.Request().Context(), ctx.Param("id"), *data.IsActive)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *childApi) destroy(ctx echo.Context) error {
	if err := api.opts.ChildSvc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *childApi) createContact(ctx echo.Context) error {
	var data child.NewEmergencyContact
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEmergencyContact")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	ec, err := api.opts.ChildSvc.CreateContact(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, ec)
}

func (api *childApi) listContacts(ctx echo.Context) error {
	contacts, err := api.opts.ChildSvc.ListContacts(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, contacts)
}

func (api *childApi) retrieveContact(ctx echo.Context) error {
	ec, err := api.opts.ChildSvc.GetContact(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ec)
}

func (api *childApi) updateContact(ctx echo.Context) error {
	var data child.UpdateEmergencyContact
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateEmergencyContact")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	ec, err := api.opts.ChildSvc.UpdateContact(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ec)
}

func (api *childApi) destroyContact(ctx echo.Context) error {
	if err := api.opts.ChildSvc.DeleteContact(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *childApi) createPickup(ctx echo.Context) error {
	var data child.NewAuthorizedPickup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAuthorizedPickup")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	ap, err := api.opts.ChildSvc.CreatePickup(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, ap)
}

func (api *childApi) listPickups(ctx echo.Context) error {
	pickups, err := api.opts.ChildSvc.ListPickups(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, pickups)
}

func (api *childApi) retrievePickup(ctx echo.Context) error {
	ap, err := api.opts.ChildSvc.GetPickup(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ap)
}

func (api *childApi) updatePickup(ctx echo.Context) error {
	var data child.UpdateAuthorizedPickup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAuthorizedPickup")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	ap, err := api.opts.ChildSvc.UpdatePickup(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ap)
}

func (api *childApi) setPickupActive(ctx echo.Context) error {
	var data ActiveRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ActiveRequest")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	ap, err := api.opts.ChildSvc.SetPickupActive(ctx.Request().Context(), ctx.Param("id"), *data.IsActive)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ap)
}

func (api *childApi) destroyPickup(ctx echo.Context) error {
	if err := api.opts.ChildSvc.DeletePickup(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
