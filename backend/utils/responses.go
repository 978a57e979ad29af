package utils

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/iceweasel13/solana-bomber/backend/models"
	"github.com/iceweasel13/solana-bomber/bomber/economy"
)

const (
	// IdentityKey is the fiber Locals key holding the caller identity
	IdentityKey = "identity"
	// errorCodeKey keeps the code of an error envelope for the audit log
	errorCodeKey = "error_code"
)

func SendJSON(c *fiber.Ctx, statusCode int, data any) error {
	return c.Status(statusCode).JSON(data)
}

func SendSuccess(c *fiber.Ctx, data any, message string) error {
	return SendJSON(c, http.StatusOK, models.NewSuccessResponse(data, message))
}

func SendCreated(c *fiber.Ctx, data any, message string) error {
	return SendJSON(c, http.StatusCreated, models.NewSuccessResponse(data, message))
}

// SendError writes an error envelope with a stable code.
func SendError(c *fiber.Ctx, statusCode int, code, message string, details map[string]string) error {
	c.Locals(errorCodeKey, code)
	return SendJSON(c, statusCode, models.NewErrorResponse(code, message, details))
}

// ResponseErrorCode returns the code of the error envelope already written
// for this request, or the bare status text.
func ResponseErrorCode(c *fiber.Ctx) string {
	if code, ok := c.Locals(errorCodeKey).(string); ok {
		return code
	}
	return http.StatusText(c.Response().StatusCode())
}

func SendBadRequest(c *fiber.Ctx, message string, details map[string]string) error {
	return SendError(c, http.StatusBadRequest, "BAD_REQUEST", message, details)
}

func SendUnauthorized(c *fiber.Ctx, message string) error {
	return SendError(c, http.StatusUnauthorized, "UNAUTHORIZED", message, nil)
}

func SendForbidden(c *fiber.Ctx, message string) error {
	return SendError(c, http.StatusForbidden, "FORBIDDEN", message, nil)
}

func SendNotFound(c *fiber.Ctx, message string) error {
	return SendError(c, http.StatusNotFound, "NOT_FOUND", message, nil)
}

func SendInternalServerError(c *fiber.Ctx, message string) error {
	return SendError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", message, nil)
}

// HandleValidationErrors answers 400 with one detail per offending field.
func HandleValidationErrors(c *fiber.Ctx, errors []models.FieldValidationError) error {
	details := make(map[string]string, len(errors))
	for _, err := range errors {
		details[err.Field] = err.Message
	}
	return SendBadRequest(c, "Validation failed", details)
}

// inputErrors are preconditions the request itself violates. They map to 400;
// every other precondition maps to 409.
var inputErrors = []error{
	economy.ErrInvalidIdentity,
	economy.ErrInvalidHeroQuantity,
	economy.ErrInvalidHeroIndex,
	economy.ErrInvalidGridCoordinates,
	economy.ErrEmptyBatch,
	economy.ErrDuplicatePlacement,
	economy.ErrCannotReferSelf,
	economy.ErrInvalidBurnPercentage,
	economy.ErrInvalidReferralFee,
	economy.ErrInvalidHalvingInterval,
	economy.ErrInvalidRewardsPrecision,
}

// StatusForError maps a service error to its HTTP status
func StatusForError(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	ge, ok := economy.AsGameError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch ge.Kind {
	case economy.KindNotFound:
		return http.StatusNotFound
	case economy.KindAuthorization:
		return http.StatusForbidden
	case economy.KindArithmetic:
		return http.StatusInternalServerError
	}
	for _, input := range inputErrors {
		if errors.Is(err, input) {
			return http.StatusBadRequest
		}
	}
	return http.StatusConflict
}

// SendGameError sends the envelope for an error returned by the game service
func SendGameError(c *fiber.Ctx, err error) error {
	status := StatusForError(err)
	ge, ok := economy.AsGameError(err)
	if !ok || status == http.StatusInternalServerError {
		slog.Error("Game operation failed",
			slog.String("type", "error"),
			slog.String("path", c.Path()),
			slog.String("identity", GetIdentity(c)),
			slog.Any("error", err))
		if status == http.StatusGatewayTimeout {
			return SendError(c, status, "TIMEOUT", "Operation timed out", nil)
		}
		if ok {
			return SendError(c, status, ge.Code, ge.Message, nil)
		}
		return SendInternalServerError(c, "Internal Server Error")
	}
	return SendError(c, status, ge.Code, err.Error(), nil)
}

// GetIdentity returns the caller identity set by the identity middleware
func GetIdentity(c *fiber.Ctx) string {
	id, _ := c.Locals(IdentityKey).(string)
	return id
}

// GetIPAddress returns the client address. X-Forwarded-For is honoured only
// when the request came through a configured trusted proxy.
func GetIPAddress(c *fiber.Ctx) string {
	return c.IP()
}
