package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// StatusError lets services pick the HTTP status for an error.
type StatusError struct {
	Code int
	Err  error
}

func (e *StatusError) Error() string { return e.Err.Error() }

func (e *StatusError) Unwrap() error { return e.Err }

func NotFound(err error) error { return &StatusError{Code: fiber.StatusNotFound, Err: err} }

func BadRequest(err error) error { return &StatusError{Code: fiber.StatusBadRequest, Err: err} }

// ErrorHandlerMiddleware turns handler errors into the BaseResponse envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		code, body := resolve(err)
		return ctx.Status(code).JSON(body)
	}
}

func resolve(err error) (int, interface{}) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return fiber.StatusBadRequest, BaseResponse[map[string]string]{
			Success: false,
			Code:    fiber.StatusBadRequest,
			Message: "Validation failed",
			Data:    verr.Fields,
		}
	}

	var serr *StatusError
	if errors.As(err, &serr) {
		return serr.Code, ErrorResponse(serr.Code, serr.Err.Error())
	}

	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		return ferr.Code, ErrorResponse(ferr.Code, ferr.Message)
	}

	return fiber.StatusInternalServerError, ErrorResponse(fiber.StatusInternalServerError, "Internal server error")
}
