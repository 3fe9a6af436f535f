package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/citrusfield/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`  // bad_request, not_found, conflict, provider_error, internal_error, ...
	Error     string `json:"error"` // human-readable message
	Details   string `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code, message, details string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Error:     message,
		Details:   details,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg, "")
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg, "")
}

// errConflict returns a 409 error.
func errConflict(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusConflict, "conflict", msg, "")
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg, "")
}

// errFromDomain maps a service error onto a response.
func errFromDomain(c *fiber.Ctx, err error) error {
	var pe *domain.ProviderError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return errNotFound(c, err.Error())
	case errors.Is(err, domain.ErrInvalidBoundary),
		errors.Is(err, domain.ErrMissingEndpoints):
		return errBadRequest(c, err.Error())
	case errors.Is(err, domain.ErrAlreadyDone),
		errors.Is(err, domain.ErrSuperseded):
		return errConflict(c, err.Error())
	case errors.Is(err, domain.ErrRouteDataMissing):
		return newError(c, fiber.StatusBadGateway, "route_data_missing", err.Error(), "")
	case errors.Is(err, domain.ErrProviderNotConfigured):
		return newError(c, fiber.StatusServiceUnavailable, "provider_not_configured", err.Error(), "")
	case errors.As(err, &pe):
		return newError(c, fiber.StatusBadGateway, "provider_error", pe.Error(), pe.Details)
	case errors.Is(err, context.DeadlineExceeded):
		return newError(c, fiber.StatusGatewayTimeout, "timeout", "request timed out", "")
	}
	LoggerFromCtx(c.UserContext()).Error("request failed", "path", c.Path(), "error", err)
	return errInternal(c, "internal error")
}

// logProviderFailure records a provider failure with its payload.
func logProviderFailure(c *fiber.Ctx, provider string, err error) {
	attrs := []any{"provider", provider, "error", err}
	var pe *domain.ProviderError
	if errors.As(err, &pe) {
		attrs = append(attrs, "status", pe.StatusCode, "details", pe.Details)
	}
	LoggerFromCtx(c.UserContext()).Error("provider request failed", attrs...)
}

func providerFailed(err error) bool {
	var pe *domain.ProviderError
	return errors.As(err, &pe) || errors.Is(err, domain.ErrRouteDataMissing)
}
