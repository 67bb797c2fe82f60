package http

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/pinmeasure/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, index_out_of_range, not_found, internal_error
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// classify maps a service error onto a status and error code.
func classify(err error) APIError {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return APIError{Status: 404, Code: "not_found", Message: err.Error()}
	case errors.Is(err, domain.ErrIndexOutOfRange):
		return APIError{Status: 400, Code: "index_out_of_range", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidCoordinate),
		errors.Is(err, domain.ErrInvalidCommand),
		errors.Is(err, domain.ErrUnknownMode):
		return APIError{Status: 400, Code: "bad_request", Message: err.Error()}
	default:
		return APIError{Status: 500, Code: "internal_error", Message: "internal error"}
	}
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errFromService renders an error returned by the session service.
func errFromService(c *fiber.Ctx, err error) error {
	e := classify(err)
	if e.Status >= 500 {
		LoggerFromCtx(c.UserContext()).Error("request failed", "path", c.Path(), "error", err)
	}
	return newError(c, e.Status, e.Code, e.Message)
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	slog.Error("internal error", "path", c.Path(), "error", msg)
	return newError(c, 500, "internal_error", msg)
}
