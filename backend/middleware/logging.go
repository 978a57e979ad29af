package middleware

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/iceweasel13/solana-bomber/backend/utils"
	"github.com/iceweasel13/solana-bomber/bomber/logger"
)

// LoggingMiddleware logs one line per request. Routes are logged by their
// template so /api/heroes/3 and /api/heroes/4 group together.
func LoggingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		level := slog.LevelDebug
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}

		attrs := []slog.Attr{
			slog.String("type", "http"),
			slog.String("method", c.Method()),
			slog.String("route", c.Route().Path),
			slog.Int("status", status),
			slog.Duration("took", time.Since(start)),
			slog.String("ip", utils.GetIPAddress(c)),
		}
		if id := utils.GetIdentity(c); id != "" {
			attrs = append(attrs, slog.String("owner", id))
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}

		slog.LogAttrs(c.UserContext(), level, c.Method()+" "+c.Path(), attrs...)
		return err
	}
}

// AuditLogMiddleware records an admin action as an operation of the calling
// authority, prefixed with admin_.
func AuditLogMiddleware(action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		failure := err
		if failure == nil && c.Response().StatusCode() >= fiber.StatusBadRequest {
			failure = errors.New(utils.ResponseErrorCode(c))
		}
		logger.LogOperation("admin_"+action, utils.GetIdentity(c), time.Since(start), failure)
		return err
	}
}
