// Command reactorsim plays CytoGenesis headless: it runs every colonization round,
// sells the harvest, records the results, and serves the live state over HTTP.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/talgya/cytogenesis/internal/api"
	"github.com/talgya/cytogenesis/internal/config"
	"github.com/talgya/cytogenesis/internal/engine"
	"github.com/talgya/cytogenesis/internal/entropy"
	"github.com/talgya/cytogenesis/internal/game"
	"github.com/talgya/cytogenesis/internal/persistence"
	"github.com/talgya/cytogenesis/internal/shop"
)

func main() {
	cfg := newRunConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if err := run(cfg); err != nil {
		slog.Error("reactorsim failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *runConfig) error {
	// ── Parameters ────────────────────────────────────────────────────
	params := config.Default()
	if cfg.ConfigPath != "" {
		p, err := config.Load(cfg.ConfigPath)
		if err != nil {
			return err
		}
		params = p
		slog.Info("parameters loaded", "path", cfg.ConfigPath)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = entropy.CryptoSeed()
	}
	src := entropy.NewSeeded(seed)

	// ── Database ──────────────────────────────────────────────────────
	var db *persistence.DB
	if cfg.DBPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
		var err error
		db, err = persistence.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()
		slog.Info("database opened", "path", cfg.DBPath)
	}

	player := cfg.Player
	if db != nil {
		if player == "" {
			if saved, err := db.GetMeta("player_name"); err == nil {
				player = saved
			}
		} else if err := db.SaveMeta("player_name", player); err != nil {
			slog.Warn("failed to save player name", "error", err)
		}
	}

	// ── Session ───────────────────────────────────────────────────────
	session, err := game.NewSession(params, player)
	if err != nil {
		return err
	}
	session.Workers = cfg.Workers
	if cfg.ShopPath != "" {
		items, err := shop.LoadCatalogue(cfg.ShopPath)
		if err != nil {
			return err
		}
		session.Catalogue = items
		slog.Info("shop catalogue loaded", "path", cfg.ShopPath, "items", len(items))
	}
	session.OnRoundComplete = func(out game.RoundOutcome, r *engine.Round) {
		if db == nil {
			return
		}
		if err := db.SaveRoundComplete(session, out, r.Tracker.Samples()); err != nil {
			slog.Error("round save failed", "error", err)
		}
	}

	slog.Info("game ready",
		"session", session.ID,
		"player", session.Player,
		"levels", params.NumberLevels,
		"seed", seed,
		"workers", cfg.Workers,
	)

	eng := engine.NewEngine()
	eng.SetSpeed(cfg.Speed)

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.Port > 0 {
		if cfg.AdminKey == "" {
			slog.Warn("CYTO_ADMIN_KEY not set, admin POST endpoints disabled")
		}
		apiServer := &api.Server{
			Session:  session,
			Eng:      eng,
			DB:       db,
			Port:     cfg.Port,
			AdminKey: cfg.AdminKey,
		}
		apiServer.Start()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// ── Play ──────────────────────────────────────────────────────────
	if cfg.Fast {
		for !session.Finished() {
			if _, err := session.PlayRound(src, cfg.MaxTicks); err != nil {
				return err
			}
		}
	} else {
		var runErr error
		eng.OnFrame = func(frame uint64) bool {
			phase, err := session.Advance(src)
			if err != nil {
				runErr = err
				return false
			}
			return phase != game.PhaseFinished
		}
		eng.OnSecond = func(frame uint64) {
			if r := session.Round(); r != nil {
				res := r.Result()
				slog.Debug("progress",
					"phase", game.PhaseName(session.Phase()),
					"level", res.Level,
					"tick", res.Ticks,
					"cells", res.Cells,
					"biomass", humanize.FormatFloat("#,###.###", res.Biomass),
				)
			}
		}
		go func() {
			sig := <-sigCh
			slog.Info("received signal, shutting down", "signal", sig)
			eng.Stop()
		}()

		eng.Run()
		if runErr != nil {
			return runErr
		}
	}

	// ── Results ───────────────────────────────────────────────────────
	score := session.Credits()
	if db != nil {
		if err := db.SaveSession(session); err != nil {
			slog.Error("session save failed", "error", err)
		}
		if session.Finished() {
			table, idx, err := db.UpdateHighscores(params.NumberLevels, score, session.Player)
			if err != nil {
				slog.Error("highscore update failed", "error", err)
			} else {
				slog.Info("highscores updated", "entries", len(table), "rank", idx+1)
			}
		}
	}

	fmt.Printf("\n%s harvested %s biomass over %d rounds and earned %s credits.\n",
		session.Player,
		humanize.FormatFloat("#,###.##", session.RunBiomass()),
		len(session.Outcomes()),
		humanize.FormatFloat("#,###.##", score),
	)
	return nil
}
