package http

import (
	"errors"
	"net/http"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/delivery"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/generated/servers"
	"orderflow/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// StatusFor maps an application error to its HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, commands.ErrPaymentNotSucceeded):
		return http.StatusPaymentRequired
	case errors.Is(err, commands.ErrPaymentVerificationFailed),
		errors.Is(err, commands.ErrCancelFailed),
		errors.Is(err, delivery.ErrProviderRejected):
		return http.StatusBadGateway
	case errors.Is(err, commands.ErrSubmissionInProgress),
		errors.Is(err, commands.ErrUnknownProvider),
		errors.Is(err, order.ErrNoDeliveryAttached):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the JSON error body. Server errors hide the cause from the client.
func (s *Server) fail(ctx echo.Context, err error, message string) error {
	code := StatusFor(err)
	if code >= http.StatusInternalServerError {
		s.logger.ErrorContext(ctx.Request().Context(), message,
			"error", err, "method", ctx.Request().Method, "path", ctx.Path())
	} else {
		message = message + ": " + err.Error()
	}
	return ctx.JSON(code, servers.Error{Code: int32(code), Message: message})
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, servers.Error{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

// HTTPErrorHandler renders echo errors (routing, binding) in the API error shape.
func HTTPErrorHandler(err error, ctx echo.Context) {
	if ctx.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
	}

	_ = ctx.JSON(code, servers.Error{Code: int32(code), Message: message})
}
