package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	webmodels "github.com/iceweasel13/solana-bomber/backend/models"
	"github.com/iceweasel13/solana-bomber/backend/utils"
	"github.com/iceweasel13/solana-bomber/bomber/database/models"
	"github.com/iceweasel13/solana-bomber/bomber/economy/global"
	"github.com/iceweasel13/solana-bomber/bomber/economy/heroes"
	"github.com/iceweasel13/solana-bomber/bomber/economy/house"
	"github.com/iceweasel13/solana-bomber/bomber/economy/profile"
)

// Game is the game service surface the API exposes.
type Game interface {
	StartGame(ctx context.Context, caller string) error
	SetPaused(ctx context.Context, caller string, paused bool) error
	SetMintingEnabled(ctx context.Context, caller string, enabled bool) error
	SetUpgradesEnabled(ctx context.Context, caller string, enabled bool) error
	SetTreasury(ctx context.Context, caller, treasury string) error
	UpdateConfig(ctx context.Context, caller string, u global.ParamsUpdate) (global.Params, error)

	PurchaseHouse(ctx context.Context, owner string) (*profile.Profile, error)
	SetReferrer(ctx context.Context, owner, referrer string) error
	BuyHeroes(ctx context.Context, owner string, quantity int) ([]heroes.Hero, error)
	PlaceHero(ctx context.Context, owner string, pl house.Placement) error
	BulkPlace(ctx context.Context, owner string, batch []house.Placement) error
	RemoveHero(ctx context.Context, owner string, x, y uint8) (uint16, error)
	MoveToMining(ctx context.Context, owner string, index uint16) error
	BulkMoveToMining(ctx context.Context, owner string, indices []uint16) error
	Claim(ctx context.Context, owner string) (profile.ClaimReceipt, error)
	RecoverHP(ctx context.Context, owner string) (profile.RecoveryReport, error)
	UpgradeHouse(ctx context.Context, owner string) (uint64, error)

	GameInfo(ctx context.Context) (global.Info, error)
	PendingRewards(ctx context.Context, owner string) (profile.Pending, error)
	PlayerStats(ctx context.Context, owner string) (profile.Stats, error)
	HeroDetails(ctx context.Context, owner string, index uint16) (profile.HeroDetails, error)
	GridState(ctx context.Context, owner string) (profile.GridState, error)
	ClaimHistory(ctx context.Context, owner string, limit int) ([]*models.ClaimRecord, error)
	Leaderboard(ctx context.Context, limit int) ([]*models.PlayerProfile, error)
}

// WebApp represents the web application with all dependencies
type WebApp struct {
	Game    Game
	Ping    func(ctx context.Context) error
	Version string
	Commit  string
}

// Authority returns the current game authority for the admin middleware.
func (w *WebApp) Authority(ctx context.Context) (string, error) {
	info, err := w.Game.GameInfo(ctx)
	if err != nil {
		return "", err
	}
	return info.Authority, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", map[string]string{
			"error": err.Error(),
		})
	}
	return nil
}

// =============================================================================
// SYSTEM
// =============================================================================

func HealthCheck(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		health := webmodels.NewHealthCheck(webApp.Version, webApp.Commit)
		if webApp.Ping != nil {
			health.Check("database", webApp.Ping(c.UserContext()))
		}
		if !health.Healthy {
			return utils.SendJSON(c, fiber.StatusServiceUnavailable, health)
		}
		return utils.SendSuccess(c, health, "Health check successful")
	}
}

// =============================================================================
// PLAYER OPERATIONS
// =============================================================================

func PurchaseHouse(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := webApp.Game.PurchaseHouse(c.UserContext(), utils.GetIdentity(c))
		if err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendCreated(c, p, "House purchased")
	}
}

func SetReferrer(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req webmodels.SetReferrerRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		if errs := utils.ValidateIdentity("referrer", req.Referrer); len(errs) > 0 {
			return utils.HandleValidationErrors(c, errs)
		}

		if err := webApp.Game.SetReferrer(c.UserContext(), utils.GetIdentity(c), req.Referrer); err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendSuccess(c, req, "Referrer set")
	}
}

func BuyHeroes(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req webmodels.BuyHeroesRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}

		minted, err := webApp.Game.BuyHeroes(c.UserContext(), utils.GetIdentity(c), req.Quantity)
		if err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendCreated(c, minted, "Heroes minted")
	}
}

func PlaceHero(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req webmodels.PlaceHeroRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		if errs := utils.ValidatePlaceHero("", &req); len(errs) > 0 {
			return utils.HandleValidationErrors(c, errs)
		}

		if err := webApp.Game.PlaceHero(c.UserContext(), utils.GetIdentity(c), req.Placement()); err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendSuccess(c, req.Placement(), "Hero placed")
	}
}

func BulkPlace(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req webmodels.BulkPlaceRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		if errs := utils.ValidateBulkPlace(&req); len(errs) > 0 {
			return utils.HandleValidationErrors(c, errs)
		}

		batch := make([]house.Placement, len(req.Placements))
		for i, pl := range req.Placements {
			batch[i] = pl.Placement()
		}
		if err := webApp.Game.BulkPlace(c.UserContext(), utils.GetIdentity(c), batch); err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendSuccess(c, batch, "Heroes placed")
	}
}

func RemoveHero(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req webmodels.RemoveHeroRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		if errs := utils.ValidateRemoveHero(&req); len(errs) > 0 {
			return utils.HandleValidationErrors(c, errs)
		}

		idx, err := webApp.Game.RemoveHero(c.UserContext(), utils.GetIdentity(c), uint8(*req.X), uint8(*req.Y))
		if err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendSuccess(c, webmodels.RemoveHeroResponse{HeroIndex: idx}, "Hero removed")
	}
}

func MoveToMining(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req webmodels.MoveToMiningRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		if errs := utils.ValidateMoveToMining(&req); len(errs) > 0 {
			return utils.HandleValidationErrors(c, errs)
		}

		if err := webApp.Game.MoveToMining(c.UserContext(), utils.GetIdentity(c), uint16(*req.HeroIndex)); err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendSuccess(c, req, "Hero moved to the mining map")
	}
}

func BulkMoveToMining(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req webmodels.BulkMoveRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		if errs := utils.ValidateBulkMove(&req); len(errs) > 0 {
			return utils.HandleValidationErrors(c, errs)
		}

		indices := make([]uint16, len(req.HeroIndices))
		for i, idx := range req.HeroIndices {
			indices[i] = uint16(idx)
		}
		if err := webApp.Game.BulkMoveToMining(c.UserContext(), utils.GetIdentity(c), indices); err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendSuccess(c, req, "Heroes moved to the mining map")
	}
}

func Claim(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		receipt, err := webApp.Game.Claim(c.UserContext(), utils.GetIdentity(c))
		if err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendSuccess(c, receipt, "Rewards claimed")
	}
}

func RecoverHP(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		report, err := webApp.Game.RecoverHP(c.UserContext(), utils.GetIdentity(c))
		if err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendSuccess(c, report, "Heroes recovered")
	}
}

func UpgradeHouse(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cost, err := webApp.Game.UpgradeHouse(c.UserContext(), utils.GetIdentity(c))
		if err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendSuccess(c, webmodels.UpgradeHouseResponse{Cost: cost}, "House upgraded")
	}
}

// =============================================================================
// PLAYER QUERIES
// =============================================================================

func PendingRewards(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pending, err := webApp.Game.PendingRewards(c.UserContext(), utils.GetIdentity(c))
		if err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendSuccess(c, pending, "")
	}
}

func PlayerStats(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := webApp.Game.PlayerStats(c.UserContext(), utils.GetIdentity(c))
		if err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendSuccess(c, stats, "")
	}
}

func HeroDetails(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		indexStr := c.Params("index")
		index, err := strconv.ParseUint(indexStr, 10, 16)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "INVALID_HERO_INDEX", "Invalid hero index", map[string]string{
				"index": indexStr,
			})
		}

		details, err := webApp.Game.HeroDetails(c.UserContext(), utils.GetIdentity(c), uint16(index))
		if err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendSuccess(c, details, "")
	}
}

func GridState(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		grid, err := webApp.Game.GridState(c.UserContext(), utils.GetIdentity(c))
		if err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendSuccess(c, grid, "")
	}
}

func ClaimHistory(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		history, err := webApp.Game.ClaimHistory(c.UserContext(), utils.GetIdentity(c), c.QueryInt("limit"))
		if err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendSuccess(c, history, "")
	}
}

func GameInfo(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		info, err := webApp.Game.GameInfo(c.UserContext())
		if err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendSuccess(c, info, "")
	}
}

func Leaderboard(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		board, err := webApp.Game.Leaderboard(c.UserContext(), c.QueryInt("limit"))
		if err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendSuccess(c, board, "")
	}
}

// =============================================================================
// ADMIN
// =============================================================================

func UpdateConfig(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req global.ParamsUpdate
		if err := parseBody(c, &req); err != nil {
			return err
		}

		params, err := webApp.Game.UpdateConfig(c.UserContext(), utils.GetIdentity(c), req)
		if err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendSuccess(c, params, "Configuration updated")
	}
}

func SetTreasury(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req webmodels.SetTreasuryRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		if errs := utils.ValidateIdentity("treasury", req.Treasury); len(errs) > 0 {
			return utils.HandleValidationErrors(c, errs)
		}

		if err := webApp.Game.SetTreasury(c.UserContext(), utils.GetIdentity(c), req.Treasury); err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendSuccess(c, req, "Treasury updated")
	}
}

func StartGame(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := webApp.Game.StartGame(c.UserContext(), utils.GetIdentity(c)); err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendSuccess(c, nil, "Game started")
	}
}

func SetPaused(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req webmodels.PauseRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		if req.Paused == nil {
			return utils.HandleValidationErrors(c, []webmodels.FieldValidationError{{Field: "paused", Message: "Field is required"}})
		}

		if err := webApp.Game.SetPaused(c.UserContext(), utils.GetIdentity(c), *req.Paused); err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendSuccess(c, req, "Pause state updated")
	}
}

func toggle(set func(ctx context.Context, caller string, enabled bool) error, message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req webmodels.ToggleRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		if req.Enabled == nil {
			return utils.HandleValidationErrors(c, []webmodels.FieldValidationError{{Field: "enabled", Message: "Field is required"}})
		}

		if err := set(c.UserContext(), utils.GetIdentity(c), *req.Enabled); err != nil {
			return utils.SendGameError(c, err)
		}
		return utils.SendSuccess(c, req, message)
	}
}

func SetMinting(webApp *WebApp) fiber.Handler {
	return toggle(func(ctx context.Context, caller string, on bool) error {
		return webApp.Game.SetMintingEnabled(ctx, caller, on)
	}, "Minting toggle updated")
}

func SetUpgrades(webApp *WebApp) fiber.Handler {
	return toggle(func(ctx context.Context, caller string, on bool) error {
		return webApp.Game.SetUpgradesEnabled(ctx, caller, on)
	}, "House upgrade toggle updated")
}
