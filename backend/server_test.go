package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/iceweasel13/solana-bomber/backend/handlers"
	"github.com/iceweasel13/solana-bomber/bomber"
	"github.com/iceweasel13/solana-bomber/bomber/config"
	"github.com/iceweasel13/solana-bomber/bomber/database/memory"
	"github.com/iceweasel13/solana-bomber/bomber/economy/claim"
	"github.com/iceweasel13/solana-bomber/bomber/economy/global"
	"github.com/iceweasel13/solana-bomber/bomber/services"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	svc, err := services.NewGameService(memory.New(), claim.NewManager(time.Minute), 16, nil)
	if err != nil {
		t.Fatal(err)
	}
	params := global.DefaultParams()
	params.InitialHousePrice = 1_000
	if _, err := svc.InitializeGame(ctx, "admin", "treasury", "mint", params); err != nil {
		t.Fatal(err)
	}

	cfg := bomber.ServerConfig{AllowOrigins: "*", RateLimit: 1_000}
	return New(ctx, cfg, &handlers.WebApp{Game: svc, Version: "test"})
}

func do(t *testing.T, app *fiber.App, method, path, identity, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if identity != "" {
		req.Header.Set(config.IdentityHeader, identity)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &env)
	return resp.StatusCode, env
}

func TestServer_Routes(t *testing.T) {
	app := newTestApp(t)

	steps := []struct {
		name     string
		method   string
		path     string
		identity string
		body     string
		want     int
		wantCode string
	}{
		{"game info is public", http.MethodGet, "/api/game", "", "", http.StatusOK, ""},
		{"missing identity", http.MethodPost, "/api/house", "", "", http.StatusUnauthorized, ""},
		{"malformed identity", http.MethodPost, "/api/house", "bad id!", "", http.StatusUnauthorized, ""},
		{"not started", http.MethodPost, "/api/house", "alice", "", http.StatusConflict, "GAME_NOT_STARTED"},
		{"start by stranger", http.MethodPost, "/admin/api/start", "mallory", "", http.StatusForbidden, ""},
		{"start", http.MethodPost, "/admin/api/start", "admin", "", http.StatusOK, ""},
		{"purchase house", http.MethodPost, "/api/house", "alice", "", http.StatusCreated, ""},
		{"second house", http.MethodPost, "/api/house", "alice", "", http.StatusConflict, "PROFILE_ALREADY_EXISTS"},
		{"refer self", http.MethodPost, "/api/referrer", "alice", `{"referrer":"alice"}`, http.StatusBadRequest, "CANNOT_REFER_SELF"},
		{"bad hero quantity", http.MethodPost, "/api/heroes/buy", "alice", `{"quantity":0}`, http.StatusBadRequest, "INVALID_HERO_QUANTITY"},
		{"place without coordinates", http.MethodPost, "/api/grid/place", "alice", `{"hero_index":0}`, http.StatusBadRequest, ""},
		{"non numeric hero index", http.MethodGet, "/api/heroes/abc", "alice", "", http.StatusBadRequest, "INVALID_HERO_INDEX"},
		{"grid", http.MethodGet, "/api/grid", "alice", "", http.StatusOK, ""},
		{"stats", http.MethodGet, "/api/stats", "alice", "", http.StatusOK, ""},
		{"stats without house", http.MethodGet, "/api/stats", "carol", "", http.StatusNotFound, "PROFILE_NOT_FOUND"},
		{"claim with nothing mining", http.MethodPost, "/api/claim", "alice", "", http.StatusConflict, "NO_HEROES_ON_MAP"},
		{"invalid burn", http.MethodPatch, "/admin/api/config", "admin", `{"burn_pct":20000}`, http.StatusBadRequest, "INVALID_BURN_PERCENTAGE"},
		{"update config", http.MethodPatch, "/admin/api/config", "admin", `{"burn_pct":500}`, http.StatusOK, ""},
		{"pause without body field", http.MethodPost, "/admin/api/pause", "admin", `{}`, http.StatusBadRequest, ""},
		{"pause", http.MethodPost, "/admin/api/pause", "admin", `{"paused":true}`, http.StatusOK, ""},
		{"paused purchase", http.MethodPost, "/api/house", "bob", "", http.StatusConflict, "GAME_PAUSED"},
		{"unknown route", http.MethodGet, "/nope", "", "", http.StatusNotFound, "NOT_FOUND"},
	}

	// Steps share one app and run in order.
	for _, s := range steps {
		t.Run(s.name, func(t *testing.T) {
			status, env := do(t, app, s.method, s.path, s.identity, s.body)
			if status != s.want {
				t.Fatalf("status = %d, want %d (error %+v)", status, s.want, env.Error)
			}
			if s.wantCode != "" && (env.Error == nil || env.Error.Code != s.wantCode) {
				t.Errorf("error = %+v, want code %s", env.Error, s.wantCode)
			}
		})
	}
}

func TestServer_GameInfoReportsAuthority(t *testing.T) {
	app := newTestApp(t)

	status, env := do(t, app, http.MethodGet, "/api/game", "", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	var info struct {
		Authority   string `json:"authority"`
		GameStarted bool   `json:"game_started"`
	}
	if err := json.Unmarshal(env.Data, &info); err != nil {
		t.Fatal(err)
	}
	if info.Authority != "admin" || info.GameStarted {
		t.Errorf("info = %+v", info)
	}
}

func TestServer_RateLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc, err := services.NewGameService(memory.New(), claim.NewManager(time.Minute), 16, nil)
	if err != nil {
		t.Fatal(err)
	}
	app := New(ctx, bomber.ServerConfig{AllowOrigins: "*", RateLimit: 2}, &handlers.WebApp{Game: svc})

	var last int
	for i := 0; i < 3; i++ {
		last, _ = do(t, app, http.MethodGet, "/api/stats", "alice", "")
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want %d", last, http.StatusTooManyRequests)
	}
}

func TestServer_Health(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tests := []struct {
		name    string
		ping    func(context.Context) error
		want    int
		healthy bool
	}{
		{"database up", func(context.Context) error { return nil }, http.StatusOK, true},
		{"database down", func(context.Context) error { return errors.New("connection refused") }, http.StatusServiceUnavailable, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := New(ctx, bomber.ServerConfig{AllowOrigins: "*", RateLimit: 10}, &handlers.WebApp{Ping: tt.ping, Version: "v1"})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.want)
			}

			raw, _ := io.ReadAll(resp.Body)
			var health struct {
				Healthy      bool              `json:"healthy"`
				Dependencies map[string]string `json:"dependencies"`
			}
			if tt.healthy {
				var env envelope
				if err := json.Unmarshal(raw, &env); err != nil {
					t.Fatal(err)
				}
				raw = env.Data
			}
			if err := json.Unmarshal(raw, &health); err != nil {
				t.Fatal(err)
			}
			if health.Healthy != tt.healthy || health.Dependencies["database"] == "" {
				t.Errorf("health = %+v", health)
			}
		})
	}
}
