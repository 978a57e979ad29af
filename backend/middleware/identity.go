package middleware

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/iceweasel13/solana-bomber/backend/utils"
	"github.com/iceweasel13/solana-bomber/bomber/config"
)

// IdentityRequired reads the caller identity set by the fronting gateway and
// stores it in the request context.
func IdentityRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Get(config.IdentityHeader))
		if id == "" || !utils.ValidIdentityRegex.MatchString(id) {
			slog.Debug("Identity required: missing or malformed header",
				slog.String("path", c.Path()),
				slog.String("ip", utils.GetIPAddress(c)))
			return utils.SendUnauthorized(c, "Caller identity required")
		}

		c.Locals(utils.IdentityKey, id)
		return c.Next()
	}
}

// AuthorityFunc returns the current game authority.
type AuthorityFunc func(ctx context.Context) (string, error)

// AdminRequired ensures the caller is the game authority. The service checks
// again inside the transaction; this only rejects early.
func AdminRequired(authority AuthorityFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := utils.GetIdentity(c)
		if id == "" {
			slog.Warn("Admin required: no identity in context")
			return utils.SendForbidden(c, "Access denied")
		}

		current, err := authority(c.UserContext())
		if err != nil {
			return utils.SendGameError(c, err)
		}

		if id != current {
			slog.Warn("Admin required: caller is not the authority",
				slog.String("identity", id),
				slog.String("path", c.Path()))
			return utils.SendForbidden(c, "Admin access required")
		}

		return c.Next()
	}
}
