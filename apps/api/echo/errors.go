package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/JUSAIR-JSR/MEA-Student-portal/core"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core/account"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core/exam"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core/notification"
)

var (
	errUnauthorized       = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errHttpForbidden      = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errGoogleTokenInvalid = echo.NewHTTPError(http.StatusUnauthorized, "google sign-in verification failed")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that maps our
// domain errors onto status codes. signalShutdown is called to gracefully stop
// the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch cause := errors.Cause(err); cause {
		case account.ErrNotFound, exam.ErrNotFound, exam.ErrResultNotFound, notification.ErrNotFound:
			code = http.StatusNotFound
			message = cause.Error()
		case account.ErrEmailExists, account.ErrRollNoExists:
			code = http.StatusConflict
			message = cause.Error()
		case account.ErrInvalidCredentials:
			code = http.StatusUnauthorized
			message = cause.Error()
		case account.ErrWrongLoginMethod, account.ErrInvalidRole:
			code = http.StatusBadRequest
			message = cause.Error()
		case account.ErrNotAuthorized, exam.ErrNotAssigned, exam.ErrNotOwner:
			code = http.StatusForbidden
			message = cause.Error()
		default:
			code, message = handleGenericError(err, cause, ctx, logger, signalShutdown)
		}

		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

func handleGenericError(
	err, cause error,
	ctx echo.Context,
	logger core.Logger,
	signalShutdown func(),
) (int, interface{}) {
	switch origErr := cause.(type) {
	case *echo.HTTPError:
		if origErr == middleware.ErrJWTMissing {
			return http.StatusUnauthorized, origErr.Message
		}
		if origErr.Internal != nil {
			if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
				origErr = herr
			}
		}
		return origErr.Code, origErr.Message
	case validator.ValidationErrors:
		fldErrs := make(map[string]string, len(origErr))
		for _, vErr := range origErr {
			fldErrs[vErr.Field()] = vErr.Translate(core.Translator)
		}
		return http.StatusBadRequest, fldErrs
	case *core.ValidationError:
		if origErr.Fields != nil {
			fldErrs := make(map[string]string, len(origErr.Fields))
			for _, fErr := range origErr.Fields {
				fldErrs[fErr.Field] = fErr.Error
			}
			return http.StatusBadRequest, fldErrs
		}
		return http.StatusBadRequest, origErr.Error()
	default: // any other error is a server error
		msg := http.StatusText(http.StatusInternalServerError)

		var ident account.Identity
		if ctxIdent, cErr := getContextIdentity(ctx); cErr == nil {
			ident = ctxIdent
		}
		logger.Error(msg, errors.Wrap(err, msg), ident)

		// shutting down...
		if core.IsShutdown(err) {
			signalShutdown()
		}

		if ctx.Echo().Debug {
			return http.StatusInternalServerError, err.Error()
		}
		return http.StatusInternalServerError, msg
	}
}
