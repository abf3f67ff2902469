package echoapi

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bouncearound/daycare/core"
)

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}

	ActiveRequest struct {
		IsActive *bool `json:"is_active" validate:"required"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}

func (pr *PasswordResetRequest) Validate(validate *validator.Validate) error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return validate.Struct(pr)
}

func (ar *ActiveRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(ar)
}

// bindPagination reads page/page_size query params and clamps them.
func bindPagination(ctx echo.Context) (core.Pagination, error) {
	var page core.Pagination
	if err := ctx.Bind(&page); err != nil {
		return core.Pagination{}, errors.Wrap(err, "binding pagination")
	}
	page.Clamp()
	return page, nil
}
