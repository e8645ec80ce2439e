package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/talgya/cytogenesis/internal/config"
	"github.com/talgya/cytogenesis/internal/engine"
	"github.com/talgya/cytogenesis/internal/entropy"
	"github.com/talgya/cytogenesis/internal/game"
)

func testServer(t *testing.T, played bool) *Server {
	t.Helper()
	p := config.Default()
	p.NumberLevels = 3
	s, err := game.NewSession(p, "tester")
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if played {
		if _, err := s.PlayRound(entropy.NewSeeded(6), 100000); err != nil {
			t.Fatalf("play: %v", err)
		}
	}
	return &Server{Session: s, Eng: engine.NewEngine(), AdminKey: "secret"}
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestStatus(t *testing.T) {
	srv := testServer(t, true)
	rec := get(t, srv.Handler(), "/api/v1/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["player"] != "tester" || body["phase"] != "shopping" {
		t.Fatalf("unexpected status %v", body)
	}
	if body["level"].(float64) != 1 || body["rounds_played"].(float64) != 1 {
		t.Fatalf("level %v rounds %v", body["level"], body["rounds_played"])
	}
}

func TestGridAndCells(t *testing.T) {
	h := testServer(t, false).Handler()
	if rec := get(t, h, "/api/v1/grid"); rec.Code != http.StatusNotFound {
		t.Fatalf("grid before any round: status %d", rec.Code)
	}

	h = testServer(t, true).Handler()
	rec := get(t, h, "/api/v1/grid")
	if rec.Code != http.StatusOK {
		t.Fatalf("grid status %d", rec.Code)
	}
	var grid struct {
		Radius int               `json:"radius"`
		Tiles  []engine.TileView `json:"tiles"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&grid); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if grid.Radius != 0 || len(grid.Tiles) != 1 {
		t.Fatalf("level 0 grid: radius %d, %d tiles", grid.Radius, len(grid.Tiles))
	}

	rec = get(t, h, "/api/v1/cells")
	var cells struct {
		Done  bool              `json:"done"`
		Cells []engine.CellView `json:"cells"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&cells); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !cells.Done || len(cells.Cells) != 1 {
		t.Fatalf("cells view %+v", cells)
	}
}

func TestProcessChart(t *testing.T) {
	h := testServer(t, true).Handler()
	rec := get(t, h, "/api/v1/process.png")
	if rec.Code != http.StatusOK {
		t.Fatalf("chart status %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type %q", ct)
	}
}

func TestHighscoresWithoutDB(t *testing.T) {
	h := testServer(t, false).Handler()
	if rec := get(t, h, "/api/v1/highscores"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d, want 503", rec.Code)
	}
	rec := get(t, h, "/api/v1/rounds")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("rounds without DB: %d %q", rec.Code, rec.Body.String())
	}
}

func TestSpeedAuth(t *testing.T) {
	srv := testServer(t, false)
	h := srv.Handler()

	post := func(token string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/speed", strings.NewReader(`{"speed": 3}`))
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := post(""); code != http.StatusUnauthorized {
		t.Fatalf("no token: status %d", code)
	}
	if code := post("wrong"); code != http.StatusUnauthorized {
		t.Fatalf("wrong token: status %d", code)
	}
	if code := post("secret"); code != http.StatusOK {
		t.Fatalf("valid token: status %d", code)
	}
	if srv.Eng.Speed() != 3 {
		t.Fatalf("speed %v, want 3", srv.Eng.Speed())
	}

	srv.AdminKey = ""
	h = srv.Handler()
	if code := post("secret"); code != http.StatusForbidden {
		t.Fatalf("disabled admin: status %d", code)
	}
}

func TestRateLimiter(t *testing.T) {
	now := time.Unix(1000, 0)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("first two requests must pass")
	}
	if rl.Allow("a") {
		t.Fatal("third request must be limited")
	}
	if !rl.Allow("b") {
		t.Fatal("clients are limited independently")
	}
	if got := rl.RetryAfter("a"); got != 61 {
		t.Fatalf("RetryAfter = %d, want 61", got)
	}

	now = now.Add(time.Minute)
	if !rl.Allow("a") {
		t.Fatal("window reset must refill the bucket")
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	if got := clientIP(req); got != "10.0.0.1" {
		t.Fatalf("clientIP = %q", got)
	}
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := clientIP(req); got != "203.0.113.7" {
		t.Fatalf("clientIP with XFF = %q", got)
	}
}

func TestShopView(t *testing.T) {
	h := testServer(t, true).Handler()
	rec := get(t, h, "/api/v1/shop")
	if rec.Code != http.StatusOK {
		t.Fatalf("shop status %d", rec.Code)
	}
	var body struct {
		Open   bool    `json:"open"`
		Offers []struct {
			Rarity int     `json:"rarity"`
			Price  float64 `json:"price"`
		} `json:"offers"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Open || len(body.Offers) != 3 {
		t.Fatalf("shop view %+v", body)
	}
	for _, o := range body.Offers {
		if o.Price <= 0 {
			t.Fatalf("offer priced %v", o.Price)
		}
	}
}
