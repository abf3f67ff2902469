package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bouncearound/daycare/core/compliance"
	"github.com/bouncearound/daycare/core/user"
)

type complianceApi struct {
	opts *Options
}

func registerComplianceAPI(g *echo.Group, auth echo.MiddlewareFunc, opts *Options) {
	api := complianceApi{opts: opts}
	staff := roleMiddleware(user.RoleAdmin, user.RoleStaff)

	ig := g.Group("/immunizations", auth)
	ig.POST("", api.createImmunization, staff)
	ig.GET("/expiring", api.expiringImmunizations)
	ig.GET("/:id", api.retrieveImmunization)
	ig.PUT("/:id", api.updateImmunization, staff)
	ig.DELETE("/:id", api.destroyImmunization, staff)

	cg := g.Group("/staff-credentials", auth)
	cg.POST("", api.createCredential, adminMiddleware())
	cg.GET("/expiring", api.expiringCredentials)
	cg.GET("/expired", api.expiredCredentials)
	cg.GET("/:id", api.retrieveCredential)
	cg.PUT("/:id", api.updateCredential, adminMiddleware())
	cg.DELETE("/:id", api.destroyCredential, adminMiddleware())

	fg := g.Group("/enrollment-forms", auth)
	fg.POST("", api.createForm, staff)
	fg.GET("/incomplete", api.incompleteForms)
	fg.GET("/:id", api.retrieveForm)
	fg.PUT("/:id", api.updateForm, staff)

	// per-child / per-user views
	g.GET("/children/:id/immunizations", api.childImmunizations, auth)
	g.GET("/children/:id/enrollment-form", api.childForm, auth)
	g.GET("/children/:id/compliance", api.childStatus, auth)
	g.GET("/users/:id/credentials", api.userCredentials, auth, staff)
}

func (api *complianceApi) windowDays(ctx echo.Context) int {
	days, _ := strconv.Atoi(ctx.QueryParam("window_days"))
	return days
}

func (api *complianceApi) createImmunization(ctx echo.Context) error {
	var data compliance.NewImmunization
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewImmunization")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	rec, err := api.opts.ComplianceSvc.CreateImmunization(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *complianceApi) retrieveImmunization(ctx echo.Context) error {
	rec, err := api.opts.ComplianceSvc.GetImmunization(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *complianceApi) childImmunizations(ctx echo.Context) error {
	records, err := api.opts.ComplianceSvc.ListChildImmunizations(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *complianceApi) expiringImmunizations(ctx echo.Context) error {
	records, err := api.opts.ComplianceSvc.ExpiringImmunizations(ctx.Request().Context(), api.windowDays(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *complianceApi) updateImmunization(ctx echo.Context) error {
	var data compliance.UpdateImmunization
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateImmunization")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	rec, err := api.opts.ComplianceSvc.UpdateImmunization(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *complianceApi) destroyImmunization(ctx echo.Context) error {
	if err := api.opts.ComplianceSvc.DeleteImmunization(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *complianceApi) createCredential(ctx echo.Context) error {
	var data compliance.NewCredential
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCredential")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	cred, err := api.opts.ComplianceSvc.CreateCredential(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, cred)
}

func (api *complianceApi) retrieveCredential(ctx echo.Context) error {
	cred, err := api.opts.ComplianceSvc.GetCredential(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cred)
}

func (api *complianceApi) userCredentials(ctx echo.Context) error {
	creds, err := api.opts.ComplianceSvc.ListUserCredentials(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, creds)
}

func (api *complianceApi) expiringCredentials(ctx echo.Context) error {
	creds, err := api.opts.ComplianceSvc.ExpiringCredentials(ctx.Request().Context(), api.windowDays(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, creds)
}

func (api *complianceApi) expiredCredentials(ctx echo.Context) error {
	creds, err := api.opts.ComplianceSvc.ExpiredCredentials(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, creds)
}

func (api *complianceApi) updateCredential(ctx echo.Context) error {
	var data compliance.UpdateCredential
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCredential")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	cred, err := api.opts.ComplianceSvc.UpdateCredential(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cred)
}

func (api *complianceApi) destroyCredential(ctx echo.Context) error {
	if err := api.opts.ComplianceSvc.DeleteCredential(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *complianceApi) createForm(ctx echo.Context) error {
	var data compliance.NewEnrollmentForm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEnrollmentForm")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	form, err := api.opts.ComplianceSvc.CreateForm(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, form)
}

func (api *complianceApi) retrieveForm(ctx echo.Context) error {
	form, err := api.opts.ComplianceSvc.GetForm(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, form)
}

func (api *complianceApi) childForm(ctx echo.Context) error {
	form, err := api.opts.ComplianceSvc.GetChildForm(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, form)
}

func (api *complianceApi) incompleteForms(ctx echo.Context) error {
	forms, err := api.opts.ComplianceSvc.IncompleteForms(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, forms)
}

func (api *complianceApi) updateForm(ctx echo.Context) error {
	var data compliance.UpdateEnrollmentForm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateEnrollmentForm")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	form, err := api.opts.ComplianceSvc.UpdateForm(ctx.Request().Context(), ctx.Param("id"), data, claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, form)
}

func (api *complianceApi) childStatus(ctx echo.Context) error {
	status, err := api.opts.ComplianceSvc.ChildStatus(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, status)
}
