package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"audiobook/types"
)

// Error is the JSON error body every failed request gets.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
}

func (e Error) Error() string {
	return e.Message
}

func NewError(code int, err string) Error {
	return Error{
		Code:    code,
		Message: err,
	}
}

func ErrBadRequest() Error {
	return Error{
		Code:    fiber.StatusBadRequest,
		Message: "invalid JSON request",
	}
}

// ErrorHandler maps domain errors onto HTTP statuses. Degraded answers
// never reach this path: they are successful responses with a caveat, and
// the status codes here are what lets a client tell the difference.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if apiError, ok := err.(Error); ok {
		return c.Status(apiError.Code).JSON(apiError)
	}
	if valError, ok := err.(types.ValidationError); ok {
		return c.Status(valError.Status).JSON(valError)
	}

	var code int
	switch {
	case errors.Is(err, types.ErrEmptyInput),
		errors.Is(err, types.ErrEmptyQuery),
		errors.Is(err, types.ErrInvalidConfig),
		errors.Is(err, types.ErrUnsupportedFormat),
		errors.Is(err, types.ErrExtractionFailed):
		code = fiber.StatusBadRequest
	case errors.Is(err, types.ErrNoActiveCollection):
		code = fiber.StatusConflict
	case errors.Is(err, types.ErrNoEvidence):
		code = fiber.StatusNotFound
	case errors.Is(err, types.ErrEmbeddingUnavailable),
		errors.Is(err, types.ErrLLMUnavailable),
		errors.Is(err, types.ErrLLMQuotaExceeded):
		code = fiber.StatusServiceUnavailable
	case errors.Is(err, types.ErrIndexingFailed):
		code = fiber.StatusInternalServerError
	default:
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
		} else {
			code = fiber.StatusInternalServerError
		}
	}

	return c.Status(code).JSON(NewError(code, err.Error()))
}
