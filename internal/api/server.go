// Package api serves read-only views of the running game for presentation layers.
// GET endpoints are public. POST endpoints require a bearer token.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/cytogenesis/internal/engine"
	"github.com/talgya/cytogenesis/internal/game"
	"github.com/talgya/cytogenesis/internal/persistence"
	"github.com/talgya/cytogenesis/internal/shop"
	"github.com/talgya/cytogenesis/internal/telemetry"
)

// Server serves the game state over HTTP.
type Server struct {
	Session  *game.Session
	Eng      *engine.Engine
	DB       *persistence.DB // optional
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	chartLimiter := NewRateLimiter(60, time.Minute)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/grid", s.handleGrid)
	mux.HandleFunc("/api/v1/cells", s.handleCells)
	mux.HandleFunc("/api/v1/process", s.handleProcess)
	mux.HandleFunc("/api/v1/process.png", RateLimitMiddleware(chartLimiter, s.handleProcessChart))
	mux.HandleFunc("/api/v1/rounds", s.handleRounds)
	mux.HandleFunc("/api/v1/highscores", s.handleHighscores)
	mux.HandleFunc("/api/v1/shop", s.handleShop)

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))

	return corsMiddleware(mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := http.ListenAndServe(addr, s.Handler()); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// CYTO_CORS_ORIGINS is a comma-separated list; localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CYTO_CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no CYTO_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

// snapshot returns the current (or last) round view.
func (s *Server) snapshot() (engine.View, bool) {
	r := s.Session.Round()
	if r == nil {
		return engine.View{}, false
	}
	return r.Snapshot(), true
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	p := s.Session.Params()
	status := map[string]any{
		"name":          "CytoGenesis",
		"session":       s.Session.ID,
		"player":        s.Session.Player,
		"phase":         game.PhaseName(s.Session.Phase()),
		"level":         p.CurrentLevel,
		"number_levels": p.NumberLevels,
		"credits":       s.Session.Credits(),
		"run_biomass":   s.Session.RunBiomass(),
		"rounds_played": len(s.Session.Outcomes()),
		"params":        p,
	}
	if s.Eng != nil {
		status["speed"] = s.Eng.Speed()
		status["running"] = s.Eng.Running()
	}
	if rd := s.Session.Round(); rd != nil {
		res := rd.Result()
		status["tick"] = res.Ticks
		status["biomass"] = res.Biomass
		status["substrate"] = res.Substrate
		status["cells"] = res.Cells
	}
	writeJSON(w, status)
}

func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	v, ok := s.snapshot()
	if !ok {
		http.Error(w, "no round started", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{
		"level":  v.Level,
		"tick":   v.Tick,
		"radius": v.Radius,
		"tiles":  v.Tiles,
	})
}

func (s *Server) handleCells(w http.ResponseWriter, r *http.Request) {
	v, ok := s.snapshot()
	if !ok {
		http.Error(w, "no round started", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{
		"level": v.Level,
		"tick":  v.Tick,
		"done":  v.Done,
		"cells": v.Cells,
	})
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	v, ok := s.snapshot()
	if !ok {
		writeJSON(w, telemetry.Series{})
		return
	}
	writeJSON(w, v.Series)
}

func (s *Server) handleProcessChart(w http.ResponseWriter, r *http.Request) {
	v, ok := s.snapshot()
	if !ok {
		http.Error(w, "no round started", http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := telemetry.RenderChart(&buf, v.Series); err != nil {
		if errors.Is(err, telemetry.ErrTooFewSamples) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		slog.Error("chart render failed", "error", err)
		http.Error(w, "chart render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

func (s *Server) handleRounds(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		outcomes := s.Session.Outcomes()
		if outcomes == nil {
			outcomes = []game.RoundOutcome{}
		}
		writeJSON(w, outcomes)
		return
	}

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}
	rows, err := s.DB.RecentRounds(limit)
	if err != nil {
		slog.Error("rounds query failed", "error", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []persistence.RoundRow{}
	}
	writeJSON(w, rows)
}

func (s *Server) handleHighscores(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	levels := s.Session.Params().NumberLevels
	if l := r.URL.Query().Get("levels"); l != "" {
		v, err := strconv.Atoi(l)
		if err != nil || v < 1 {
			http.Error(w, "levels must be a positive integer", http.StatusBadRequest)
			return
		}
		levels = v
	}
	rows, err := s.DB.Highscores(levels)
	if err != nil {
		slog.Error("highscores query failed", "error", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []persistence.HighscoreRow{}
	}
	writeJSON(w, map[string]any{"levels": levels, "scores": rows})
}

func (s *Server) handleShop(w http.ResponseWriter, r *http.Request) {
	offers := s.Session.Offers()
	if offers == nil {
		offers = []shop.Offer{}
	}
	writeJSON(w, map[string]any{
		"open":    s.Session.Phase() == game.PhaseShopping,
		"credits": s.Session.Credits(),
		"offers":  offers,
	})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if s.Eng == nil {
		http.Error(w, "engine not available", http.StatusServiceUnavailable)
		return
	}
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Eng.SetSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
