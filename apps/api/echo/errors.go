package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bouncearound/daycare/core"
	"github.com/bouncearound/daycare/core/activity"
	"github.com/bouncearound/daycare/core/attendance"
	"github.com/bouncearound/daycare/core/child"
	"github.com/bouncearound/daycare/core/compliance"
	"github.com/bouncearound/daycare/core/parent"
	"github.com/bouncearound/daycare/core/user"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
	errMissingToken         = echo.NewHTTPError(http.StatusUnauthorized, "missing or malformed token")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
)

// notFoundErrs maps domain sentinel errors to 404s.
var notFoundErrs = []error{
	user.ErrNotFound,
	child.ErrNotFound,
	child.ErrContactNotFound,
	child.ErrPickupNotFound,
	parent.ErrNotFound,
	parent.ErrLinkNotFound,
	attendance.ErrNotFound,
	activity.ErrNotFound,
	compliance.ErrImmunizationNotFound,
	compliance.ErrCredentialNotFound,
	compliance.ErrFormNotFound,
}

func isNotFound(err error) bool {
	for _, nf := range notFoundErrs {
		if err == nf {
			return true
		}
	}
	return false
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that renders
// all errors as {"detail": <string | {field: message}>}.
// signalShutdown is called to gracefully stop the Server whenever a
// core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var detail interface{}

		cause := errors.Cause(err)
		switch origErr := cause.(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			detail = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			detail = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				detail = fldErrs
			} else {
				detail = origErr.Error()
			}
			code = http.StatusBadRequest
		case *core.ConflictError:
			code = http.StatusBadRequest
			detail = origErr.Error()
		default:
			if isNotFound(cause) {
				code = http.StatusNotFound
				detail = cause.Error()
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			detail = msg

			var usr user.User
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				usr.ID = claims.Subject
				usr.Email = claims.Email
			}
			logger.Error(msg, errors.Wrap(err, msg), usr)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead {
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, echo.Map{"detail": detail})
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
