// Package backend wires the HTTP API in front of the game service.
package backend

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/iceweasel13/solana-bomber/backend/handlers"
	"github.com/iceweasel13/solana-bomber/backend/middleware"
	"github.com/iceweasel13/solana-bomber/backend/utils"
	"github.com/iceweasel13/solana-bomber/bomber"
	"github.com/iceweasel13/solana-bomber/bomber/config"
)

// New builds the fiber application. ctx bounds the rate limiter's cleanup loop.
func New(ctx context.Context, cfg bomber.ServerConfig, webApp *handlers.WebApp) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:                 "Bomber API",
		ServerHeader:            "Bomber",
		ErrorHandler:            middleware.CustomErrorHandler,
		EnableTrustedProxyCheck: len(cfg.TrustedProxy) > 0,
		ProxyHeader:             proxyHeader(cfg.TrustedProxy),
		EnableIPValidation:      true,
		TrustedProxies:          cfg.TrustedProxy,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(middleware.SecurityHeaders())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: "GET,POST,PATCH,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept," + config.IdentityHeader,
	}))
	app.Use(middleware.LoggingMiddleware())

	setupRoutes(ctx, app, cfg, webApp)
	return app
}

// setupRoutes configures all application routes
func setupRoutes(ctx context.Context, app *fiber.App, cfg bomber.ServerConfig, webApp *handlers.WebApp) {
	app.Get("/health", handlers.HealthCheck(webApp))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Bomber API",
			"version": webApp.Version,
			"status":  "running",
		})
	})

	// Public read-only views
	app.Get("/api/game", handlers.GameInfo(webApp))
	app.Get("/api/leaderboard", handlers.Leaderboard(webApp))

	// Admin routes, registered before /api so the player group middleware never sees them
	admin := app.Group("/admin/api")
	admin.Use(middleware.IdentityRequired())
	admin.Use(middleware.AdminRequired(webApp.Authority))

	admin.Patch("/config", middleware.AuditLogMiddleware("update_config"), handlers.UpdateConfig(webApp))
	admin.Post("/treasury", middleware.AuditLogMiddleware("set_treasury"), handlers.SetTreasury(webApp))
	admin.Post("/start", middleware.AuditLogMiddleware("start_game"), handlers.StartGame(webApp))
	admin.Post("/pause", middleware.AuditLogMiddleware("set_paused"), handlers.SetPaused(webApp))
	admin.Post("/minting", middleware.AuditLogMiddleware("set_minting"), handlers.SetMinting(webApp))
	admin.Post("/upgrades", middleware.AuditLogMiddleware("set_upgrades"), handlers.SetUpgrades(webApp))

	// Player routes
	api := app.Group("/api")
	api.Use(middleware.IdentityRequired())
	api.Use(middleware.RateLimit(ctx, cfg.RateLimit, config.RateLimitWindow))

	api.Post("/house", handlers.PurchaseHouse(webApp))
	api.Post("/house/upgrade", handlers.UpgradeHouse(webApp))
	api.Post("/referrer", handlers.SetReferrer(webApp))
	api.Post("/heroes/buy", handlers.BuyHeroes(webApp))
	api.Get("/heroes/:index", handlers.HeroDetails(webApp))

	grid := api.Group("/grid")
	grid.Get("/", handlers.GridState(webApp))
	grid.Post("/place", handlers.PlaceHero(webApp))
	grid.Post("/remove", handlers.RemoveHero(webApp))
	grid.Post("/bulk", handlers.BulkPlace(webApp))

	mining := api.Group("/mining")
	mining.Post("/move", handlers.MoveToMining(webApp))
	mining.Post("/bulk", handlers.BulkMoveToMining(webApp))

	api.Post("/claim", handlers.Claim(webApp))
	api.Get("/claims", handlers.ClaimHistory(webApp))
	api.Post("/recover", handlers.RecoverHP(webApp))
	api.Get("/rewards/pending", handlers.PendingRewards(webApp))
	api.Get("/stats", handlers.PlayerStats(webApp))

	app.Use(func(c *fiber.Ctx) error {
		return utils.SendNotFound(c, "The requested endpoint does not exist")
	})
}

func proxyHeader(trusted []string) string {
	if len(trusted) == 0 {
		return ""
	}
	return fiber.HeaderXForwardedFor
}
