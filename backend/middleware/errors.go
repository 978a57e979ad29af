package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/iceweasel13/solana-bomber/backend/utils"
	"github.com/iceweasel13/solana-bomber/bomber/economy"
)

// CustomErrorHandler renders errors that escaped a handler in the same
// envelope the handlers use.
func CustomErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return utils.SendError(c, fe.Code, codeForStatus(fe.Code), fe.Message, nil)
	}

	if _, ok := economy.AsGameError(err); ok {
		return utils.SendGameError(c, err)
	}

	slog.Error("Unhandled request error",
		slog.String("type", "error"),
		slog.String("method", c.Method()),
		slog.String("path", c.Path()),
		slog.Any("error", err))
	return utils.SendInternalServerError(c, "Internal Server Error")
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	default:
		return "ERROR"
	}
}

var securityHeaders = map[string]string{
	fiber.HeaderXContentTypeOptions:   "nosniff",
	fiber.HeaderXFrameOptions:         "DENY",
	fiber.HeaderContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
	fiber.HeaderCacheControl:          "no-store",
	fiber.HeaderReferrerPolicy:        "no-referrer",
}

// SecurityHeaders marks every response as an uncacheable JSON API answer.
func SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		for k, v := range securityHeaders {
			c.Set(k, v)
		}
		return c.Next()
	}
}
