package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/iceweasel13/solana-bomber/backend/utils"
)

// toggleGame records toggle calls. Every other Game method is left nil.
type toggleGame struct {
	Game
	minting  *bool
	upgrades *bool
}

func (g *toggleGame) SetMintingEnabled(_ context.Context, _ string, on bool) error {
	g.minting = &on
	return nil
}

func (g *toggleGame) SetUpgradesEnabled(_ context.Context, _ string, on bool) error {
	g.upgrades = &on
	return nil
}

func TestToggles_ResolveGameAtRequestTime(t *testing.T) {
	webApp := &WebApp{}

	app := fiber.New()
	asAdmin := func(c *fiber.Ctx) error {
		c.Locals(utils.IdentityKey, "admin")
		return c.Next()
	}
	// built before the game is attached
	app.Post("/minting", asAdmin, SetMinting(webApp))
	app.Post("/upgrades", asAdmin, SetUpgrades(webApp))

	game := &toggleGame{}
	webApp.Game = game

	tests := []struct {
		path string
		body string
		got  func() *bool
		want bool
	}{
		{"/minting", `{"enabled":false}`, func() *bool { return game.minting }, false},
		{"/upgrades", `{"enabled":true}`, func() *bool { return game.upgrades }, true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req, -1)
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, want 200", resp.StatusCode)
			}
			if got := tt.got(); got == nil || *got != tt.want {
				t.Errorf("toggle = %v, want %v", got, tt.want)
			}
		})
	}
}
